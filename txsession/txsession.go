// Package txsession implements the transaction session of spec §4.7: a
// session that borrows a pooled connection exclusively between BEGIN and
// COMMIT/ROLLBACK.
package txsession

import (
	"context"
	"strings"

	"github.com/fsvxavier/pgengine/engine"
	"github.com/fsvxavier/pgengine/pgerr"
	"github.com/fsvxavier/pgengine/pool"
	"github.com/fsvxavier/pgengine/transport"
)

type IsoLevel int

const (
	IsoLevelDefault IsoLevel = iota
	IsoLevelSerializable
	IsoLevelRepeatableRead
	IsoLevelReadCommitted
	IsoLevelReadUncommitted
)

type AccessMode int

const (
	AccessModeDefault AccessMode = iota
	AccessModeReadWrite
	AccessModeReadOnly
)

type Deferrable int

const (
	DeferrableDefault Deferrable = iota
	DeferrableDeferrable
	DeferrableNotDeferrable
)

// Options holds the BEGIN statement's options: "any
// unspecified option is omitted from the SQL text".
type Options struct {
	IsoLevel   IsoLevel
	Access     AccessMode
	Deferrable Deferrable
}

func buildBeginSQL(opts Options) string {
	var b strings.Builder
	b.WriteString("BEGIN")
	if lvl := isoLevelSQL(opts.IsoLevel); lvl != "" {
		b.WriteString(" ISOLATION LEVEL ")
		b.WriteString(lvl)
	}
	switch opts.Access {
	case AccessModeReadWrite:
		b.WriteString(" READ WRITE")
	case AccessModeReadOnly:
		b.WriteString(" READ ONLY")
	}
	switch opts.Deferrable {
	case DeferrableDeferrable:
		b.WriteString(" DEFERRABLE")
	case DeferrableNotDeferrable:
		b.WriteString(" NOT DEFERRABLE")
	}
	return b.String()
}

func isoLevelSQL(l IsoLevel) string {
	switch l {
	case IsoLevelSerializable:
		return "SERIALIZABLE"
	case IsoLevelRepeatableRead:
		return "REPEATABLE READ"
	case IsoLevelReadCommitted:
		return "READ COMMITTED"
	case IsoLevelReadUncommitted:
		return "READ UNCOMMITTED"
	default:
		return ""
	}
}

// Session owns a connection exclusively between BEGIN and
// COMMIT/ROLLBACK.
type Session struct {
	conn *engine.Conn
	pool *pool.Pool
	open bool
}

// Begin acquires a connection from p, issues the BEGIN-with-options
// statement, and returns a Session owning that connection.
func Begin(ctx context.Context, p *pool.Pool, opts Options) (*Session, error) {
	conn, err := p.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Exec(ctx, buildBeginSQL(opts), nil, nil); err != nil {
		p.Release(ctx, conn, err)
		return nil, err
	}
	return &Session{conn: conn, pool: p, open: true}, nil
}

// Exec runs a statement within the open transaction, delegating to the
// session's borrowed connection.
func (s *Session) Exec(ctx context.Context, sql string, params []transport.Param, onRow engine.RowFunc) (transport.CommandTag, error) {
	if !s.open {
		return transport.CommandTag{}, pgerr.Newf(pgerr.KindConnBad, "transaction session is not open")
	}
	return s.conn.Exec(ctx, sql, params, onRow)
}

// Commit issues COMMIT and releases the connection to the pool (spec
// §4.7: "release the connection to the pool on success").
func (s *Session) Commit(ctx context.Context) error {
	return s.finish(ctx, "COMMIT")
}

// Rollback issues ROLLBACK and releases the connection to the pool.
func (s *Session) Rollback(ctx context.Context) error {
	return s.finish(ctx, "ROLLBACK")
}

func (s *Session) finish(ctx context.Context, sql string) error {
	if !s.open {
		return pgerr.Newf(pgerr.KindConnBad, "transaction session is not open")
	}
	_, err := s.conn.Exec(ctx, sql, nil, nil)
	s.open = false
	s.pool.Release(ctx, s.conn, err)
	return err
}

// Close must be called (typically via defer) if the session might still
// be open when control leaves its scope: spec §4.7 T2 requires that a
// session dropped with an open transaction close its connection rather
// than return it to the pool. Calling Close after Commit/Rollback is a
// no-op.
func (s *Session) Close(ctx context.Context) {
	if !s.open {
		return
	}
	s.conn.MarkBad(ctx)
	s.open = false
	s.pool.Release(ctx, s.conn, pgerr.Newf(pgerr.KindConnBad, "transaction session dropped without commit or rollback"))
}
