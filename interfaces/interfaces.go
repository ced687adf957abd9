// Package interfaces collects the provider/pool/connection contracts
// callers program against. Concrete implementations live in package
// provider, pool and engine; this package exists so those packages (and
// callers) share one vocabulary without import cycles. The hook
// manager's own vocabulary lives in package hooks, which engine and pool
// both import directly.
package interfaces

import (
	"context"

	"github.com/fsvxavier/pgengine/deadline"
	"github.com/fsvxavier/pgengine/engine"
	"github.com/fsvxavier/pgengine/pool"
	"github.com/fsvxavier/pgengine/request"
	"github.com/fsvxavier/pgengine/transport"
)

// IPool is the subset of pool.Pool a provider and request layer depend
// on, named so tests can substitute a fake pool.
type IPool interface {
	Acquire(ctx context.Context) (*engine.Conn, error)
	Release(ctx context.Context, c *engine.Conn, outcomeErr error)
	Stats() pool.Stats
	Close(ctx context.Context)
}

// IRequester is the provider-facing surface of package request: submit a
// query, get back a command tag, using a pool obtained from a
// provider.Provider.
type IRequester interface {
	Do(ctx context.Context, p *pool.Pool, q request.Query, tc deadline.Constraint, sink request.Sink) (transport.CommandTag, error)
}
