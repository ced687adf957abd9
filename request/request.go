// Package request implements the full query request: the composition
// acquire → send → drain → release, wrapped by a deadline and a sink
// adapter.
package request

import (
	"context"

	"github.com/fsvxavier/pgengine/codec"
	"github.com/fsvxavier/pgengine/deadline"
	"github.com/fsvxavier/pgengine/engine"
	"github.com/fsvxavier/pgengine/oid"
	"github.com/fsvxavier/pgengine/pool"
	"github.com/fsvxavier/pgengine/transport"
)

// Query is (text, params): params is an ordered tuple of typed values.
type Query struct {
	SQL    string
	Params []codec.Value
}

// bind converts Params into wire-ready transport.Param values against m.
func (q Query) bind(m *oid.Map) ([]transport.Param, error) {
	out := make([]transport.Param, len(q.Params))
	for i, v := range q.Params {
		data, err := codec.Send(v, m)
		if err != nil {
			return nil, err
		}
		out[i] = transport.Param{OID: uint32(m.OIDFor(v.TypeKey())), Data: data}
	}
	return out, nil
}

// Do runs the full acquire → send → drain → release composition,
// delivering rows to sink.
func Do(ctx context.Context, p *pool.Pool, q Query, constraint deadline.Constraint, sink Sink) (transport.CommandTag, error) {
	opCtx, cancel := constraint.WithContext(ctx)
	defer cancel()

	conn, err := p.Acquire(opCtx)
	if err != nil {
		return transport.CommandTag{}, deadline.Rewrite(opCtx, err)
	}

	params, err := q.bind(conn.OIDMap())
	if err != nil {
		p.Release(ctx, conn, err)
		return transport.CommandTag{}, err
	}

	var rowFn func(fields []transport.FieldDescription, values [][]byte) error
	if sink != nil {
		rowFn = sink.Row
	}

	tag, execErr := conn.Exec(opCtx, q.SQL, params, rowFn)
	execErr = deadline.Rewrite(opCtx, execErr)

	p.Release(ctx, conn, execErr)
	return tag, execErr
}

// Execute sends q and discards all rows.
func Execute(ctx context.Context, p *pool.Pool, q Query, constraint deadline.Constraint) (transport.CommandTag, error) {
	return Do(ctx, p, q, constraint, discard{})
}

// PoolConn is a connection on loan from a Pool, returned by GetConnection
// to callers that want to drive Exec calls directly rather than through
// Do/Execute.
type PoolConn struct {
	Conn *engine.Conn
	pool *pool.Pool
}

// Release returns the connection to its pool, destroying it if outcomeErr
// is non-nil or it is otherwise ineligible.
func (pc *PoolConn) Release(ctx context.Context, outcomeErr error) {
	pc.pool.Release(ctx, pc.Conn, outcomeErr)
}

// GetConnection hands back a connection acquired from p under constraint.
// Callers must call Release when done.
func GetConnection(ctx context.Context, p *pool.Pool, constraint deadline.Constraint) (*PoolConn, error) {
	opCtx, cancel := constraint.WithContext(ctx)
	defer cancel()
	conn, err := p.Acquire(opCtx)
	if err != nil {
		return nil, deadline.Rewrite(opCtx, err)
	}
	return &PoolConn{Conn: conn, pool: p}, nil
}
