// Package engine implements the connection state machine:
// start → polling → oid-discovery → idle → busy → bad/closed, driving one
// request at a time over a transport.Conn and enforcing invariants I1–I3.
package engine

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fsvxavier/pgengine/hooks"
	"github.com/fsvxavier/pgengine/oid"
	"github.com/fsvxavier/pgengine/pgerr"
	"github.com/fsvxavier/pgengine/transport"
)

// State is a connection's position in its lifecycle. Only idle,
// busy, bad and closed are observable from outside Open/Exec; start,
// polling and oid-discovery happen inside Open.
type State int32

const (
	StateStart State = iota
	StateOIDDiscovery
	StateIdle
	StateBusy
	StateBad
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateOIDDiscovery:
		return "oid-discovery"
	case StateIdle:
		return "idle"
	case StateBusy:
		return "busy"
	case StateBad:
		return "bad"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// RowFunc receives one drained row's field descriptions and raw cell
// bytes. Decoding into application types happens one
// layer up, in package request.
type RowFunc func(fields []transport.FieldDescription, values [][]byte) error

// Conn is a single connection driven through the state machine. It is
// move-only in spirit: callers must not use a Conn from more than one
// goroutine concurrently.
type Conn struct {
	wire       *transport.Conn
	state      State
	oidMap     *oid.Map
	errContext string
	createdAt  time.Time
	lastUsedAt time.Time
	hooks      *hooks.Manager
}

// Open drives "start" → "polling" → "oid-discovery" → "idle", failing the
// connection with oid-request-failed if the map does not become Ready.
// hm may be nil, in which case no lifecycle hooks fire.
func Open(ctx context.Context, cfg *pgconn.Config, m *oid.Map, hm *hooks.Manager) (*Conn, error) {
	wire, err := transport.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	c := &Conn{wire: wire, state: StateOIDDiscovery, oidMap: m, createdAt: now, lastUsedAt: now, hooks: hm}

	if !m.IsEmpty() {
		names := m.Pending()
		resolved, err := wire.DiscoverOIDs(ctx, names)
		for name, got := range resolved {
			m.Resolve(name, oid.OID(got))
		}
		if err != nil {
			c.state = StateBad
			_ = wire.Close(ctx)
			return nil, err
		}
		if !m.Ready() {
			c.state = StateBad
			_ = wire.Close(ctx)
			return nil, pgerr.Newf(pgerr.KindOIDRequestFailed, "oid map incomplete after discovery")
		}
	}

	c.state = StateIdle

	execCtx := hooks.NewExecutionContext(ctx, "connection-opened", "")
	if err := c.hooks.ExecuteHooks(hooks.ConnectionOpenedHook, execCtx); err != nil {
		c.state = StateBad
		_ = wire.Close(ctx)
		return nil, err
	}
	return c, nil
}

// State returns the connection's current lifecycle state.
func (c *Conn) State() State { return c.state }

// OIDMap returns the connection's OID map, used by the codec to resolve
// parameter and array-element OIDs.
func (c *Conn) OIDMap() *oid.Map { return c.oidMap }

// CreatedAt and LastUsedAt back the pool's idle-TTL/lifetime eviction
// check.
func (c *Conn) CreatedAt() time.Time  { return c.createdAt }
func (c *Conn) LastUsedAt() time.Time { return c.lastUsedAt }

// IsBad reports whether the connection is in the terminal bad state.
func (c *Conn) IsBad() bool { return c.state == StateBad }

// IsIdleTxStatus reports whether the backend's transaction status is
// idle, the condition a connection must satisfy to be pool-eligible or
// returned to a transaction session's owner.
func (c *Conn) IsIdleTxStatus() bool {
	return c.wire.TxStatus() == 'I'
}

// Healthy reports whether the underlying handle is usable: not bad, not
// closed, and not mid-transaction.
func (c *Conn) Healthy() bool {
	return c.state == StateIdle && !c.wire.IsClosed() && c.IsIdleTxStatus()
}

// Exec drives "send_in_progress → flush_wait → send_done → read_wait →
// result_collected → idle" for one binary extended-query request. onRow is invoked once
// per delivered row in order; invariant I1 is enforced by requiring
// StateIdle on entry, I2 by always fully draining before returning to
// idle. A connection inside an open transaction returns to idle so a
// transaction session can keep using it; I3 is enforced by pool.Release
// and the pool's eviction check, which refuse a non-idle tx status.
func (c *Conn) Exec(ctx context.Context, sql string, params []transport.Param, onRow RowFunc) (transport.CommandTag, error) {
	if c.state != StateIdle {
		return transport.CommandTag{}, pgerr.Newf(pgerr.KindConnBusy, "connection not idle (state=%s)", c.state)
	}
	c.state = StateBusy

	rr := c.wire.ExecParams(ctx, sql, params)
	fds := rr.FieldDescriptions()

	var rowErr error
	for rr.NextRow() {
		if onRow != nil {
			if err := onRow(fds, rr.Values()); err != nil && rowErr == nil {
				rowErr = err
			}
		}
	}

	tag, closeErr := rr.Close()

	c.lastUsedAt = time.Now()
	switch {
	case closeErr != nil:
		c.errContext = closeErr.Error()
		if pgerr.IsBad(closeErr) {
			c.state = StateBad
		} else {
			c.settleIdleOrBad()
		}
		return tag, closeErr
	case rowErr != nil:
		c.errContext = rowErr.Error()
		c.settleIdleOrBad()
		return tag, pgerr.New(pgerr.KindBadResultProcess, rowErr)
	default:
		c.settleIdleOrBad()
		return tag, nil
	}
}

// settleIdleOrBad returns the connection to idle when its backend
// transaction status is idle ('I') or inside an open transaction ('T');
// any other status (a failed transaction, 'E') marks it bad.
func (c *Conn) settleIdleOrBad() {
	switch c.wire.TxStatus() {
	case 'I', 'T':
		c.state = StateIdle
	default:
		c.state = StateBad
	}
}

// Cancel aborts the in-flight operation and marks the connection bad:
// after cancellation the connection is treated as bad and closed on
// release, since the backend's response stream is no longer trustworthy.
func (c *Conn) Cancel(ctx context.Context) error {
	c.state = StateBad
	return c.wire.CancelRequest(ctx)
}

// MarkBad forces the connection into the bad state, e.g. when a caller
// outside Exec observes a transport failure, firing ConnectionBadHook.
func (c *Conn) MarkBad(ctx context.Context) {
	c.state = StateBad
	execCtx := hooks.NewExecutionContext(ctx, "connection-bad", "")
	_ = c.hooks.ExecuteHooks(hooks.ConnectionBadHook, execCtx)
}

// Close releases the handle.
func (c *Conn) Close(ctx context.Context) error {
	c.state = StateClosed
	return c.wire.Close(ctx)
}

// ErrorContext returns the last raw error-context string observed on this
// connection.
func (c *Conn) ErrorContext() string { return c.errContext }
