// Package pool implements the bounded connection pool: an
// idle set, an in-use count, a FIFO wait queue, and idle-TTL/lifetime
// eviction, all mutated under a single mutex ("strand"). Config.ThreadSafe
// is carried for compatibility with the caller's configuration shape but
// is not branched on here: the mutex is always held.
package pool

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/fsvxavier/pgengine/engine"
	"github.com/fsvxavier/pgengine/hooks"
	"github.com/fsvxavier/pgengine/pgerr"
)

// Config mirrors spec §4.3's pool configuration tuple.
type Config struct {
	Capacity      int
	QueueCapacity int
	IdleTimeout   time.Duration
	Lifetime      time.Duration
	ThreadSafe    bool
}

// Factory constructs a new, fully established connection, used by the pool whenever it grows below Capacity.
type Factory func(ctx context.Context) (*engine.Conn, error)

// Stats reports the pool's current occupancy, for metrics/logging.
type Stats struct {
	Idle    int
	InUse   int
	Total   int
	Waiting int
}

type waiter struct {
	ctx    context.Context
	result chan acquireResult
}

type acquireResult struct {
	conn *engine.Conn
	err  error
}

// Pool is the bounded, FIFO-fair connection pool described by spec §4.3.
type Pool struct {
	cfg     Config
	factory Factory
	hooks   *hooks.Manager

	mu      sync.Mutex
	idle    *list.List // front = oldest
	total   int
	waiters *list.List // front = next to serve
	closed  bool
}

// New builds a Pool; connections are constructed lazily via factory. hm may
// be nil, in which case no lifecycle hooks fire.
func New(cfg Config, factory Factory, hm *hooks.Manager) *Pool {
	return &Pool{
		cfg:     cfg,
		factory: factory,
		hooks:   hm,
		idle:    list.New(),
		waiters: list.New(),
	}
}

// Acquire wraps acquire with BeforeAcquireHook/AfterAcquireHook: a
// BeforeAcquireHook failure aborts before touching the pool; an
// AfterAcquireHook failure on a successful acquire releases the
// just-acquired connection as bad and reports the hook's error.
func (p *Pool) Acquire(ctx context.Context) (*engine.Conn, error) {
	beforeCtx := hooks.NewExecutionContext(ctx, "pool-acquire", "")
	if err := p.hooks.ExecuteHooks(hooks.BeforeAcquireHook, beforeCtx); err != nil {
		return nil, err
	}

	c, err := p.acquire(ctx)
	if err != nil {
		return nil, err
	}

	afterCtx := hooks.NewExecutionContext(ctx, "pool-acquire", "")
	if err := p.hooks.ExecuteHooks(hooks.AfterAcquireHook, afterCtx); err != nil {
		p.Release(ctx, c, err)
		return nil, err
	}
	return c, nil
}

// acquire implements spec §4.3 "Acquire": reuse an evictable-checked idle
// connection, else grow under Capacity, else enqueue up to
// QueueCapacity, else fail with pool-queue-overflow. ctx's deadline is
// the waiter's own timer (spec: "each waiter has its own deadline timer;
// on firing, the waiter is removed and completed with timeout").
func (p *Pool) acquire(ctx context.Context) (*engine.Conn, error) {
	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return nil, pgerr.Newf(pgerr.KindPoolClosed, "pool is closed")
		}

		if el := p.idle.Front(); el != nil {
			p.idle.Remove(el)
			c := el.Value.(*engine.Conn)
			p.mu.Unlock()
			if p.evictionNeeded(c) {
				_ = c.Close(ctx)
				p.mu.Lock()
				p.total--
				p.mu.Unlock()
				continue
			}
			return c, nil
		}

		if p.total < p.cfg.Capacity {
			p.total++
			p.mu.Unlock()
			c, err := p.factory(ctx)
			if err != nil {
				p.mu.Lock()
				p.total--
				p.serveNextWaiterLocked()
				p.mu.Unlock()
				return nil, err
			}
			return c, nil
		}

		if p.waiters.Len() >= p.cfg.QueueCapacity {
			p.mu.Unlock()
			return nil, pgerr.Newf(pgerr.KindPoolQueueOverflow, "pool wait queue full (capacity %d)", p.cfg.QueueCapacity)
		}

		w := &waiter{ctx: ctx, result: make(chan acquireResult, 1)}
		el := p.waiters.PushBack(w)
		p.mu.Unlock()

		select {
		case res := <-w.result:
			if res.err != nil {
				return nil, res.err
			}
			return res.conn, nil
		case <-ctx.Done():
			p.mu.Lock()
			p.waiters.Remove(el)
			p.mu.Unlock()
			return nil, pgerr.New(pgerr.KindTimedOut, ctx.Err())
		}
	}
}

func (p *Pool) evictionNeeded(c *engine.Conn) bool {
	now := time.Now()
	if p.cfg.Lifetime > 0 && now.Sub(c.CreatedAt()) > p.cfg.Lifetime {
		return true
	}
	if p.cfg.IdleTimeout > 0 && now.Sub(c.LastUsedAt()) > p.cfg.IdleTimeout {
		return true
	}
	return !c.Healthy()
}

// Release implements spec §4.3 "Release": a bad, errored, or
// non-idle-transaction connection is destroyed (waking the next waiter to
// construct a replacement); otherwise it rejoins the idle set.
func (p *Pool) Release(ctx context.Context, c *engine.Conn, outcomeErr error) {
	if outcomeErr != nil || c.IsBad() || !c.IsIdleTxStatus() {
		_ = c.Close(ctx)
		p.mu.Lock()
		p.total--
		p.serveNextWaiterLocked()
		p.mu.Unlock()
		return
	}

	p.mu.Lock()
	if w := p.popWaiterLocked(); w != nil {
		p.mu.Unlock()
		select {
		case w.result <- acquireResult{conn: c}:
		case <-w.ctx.Done():
			// Waiter gave up between pop and send; return the connection
			// to idle instead of leaking it.
			p.mu.Lock()
			p.idle.PushBack(c)
			p.mu.Unlock()
		}
		return
	}
	p.idle.PushBack(c)
	p.mu.Unlock()
}

// serveNextWaiterLocked constructs a replacement connection for the next
// waiter, if any, after a connection was destroyed. Must hold p.mu.
func (p *Pool) serveNextWaiterLocked() {
	w := p.popWaiterLocked()
	if w == nil {
		return
	}
	if p.total >= p.cfg.Capacity {
		// No room yet (a concurrent acquire may free it up); re-enqueue
		// at the front so FIFO order among the remaining waiters holds.
		p.waiters.PushFront(w)
		return
	}
	p.total++
	go func() {
		c, err := p.factory(w.ctx)
		if err != nil {
			p.mu.Lock()
			p.total--
			p.mu.Unlock()
		}
		select {
		case w.result <- acquireResult{conn: c, err: err}:
		case <-w.ctx.Done():
			if err == nil {
				p.Release(context.Background(), c, nil)
			}
		}
	}()
}

// popWaiterLocked removes and returns the oldest waiter, or nil. Must
// hold p.mu.
func (p *Pool) popWaiterLocked() *waiter {
	el := p.waiters.Front()
	if el == nil {
		return nil
	}
	p.waiters.Remove(el)
	return el.Value.(*waiter)
}

// Stats reports current occupancy.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		Idle:    p.idle.Len(),
		InUse:   p.total - p.idle.Len(),
		Total:   p.total,
		Waiting: p.waiters.Len(),
	}
}

// Close closes every idle connection and marks the pool closed; waiters
// still queued fail their next Acquire check via ctx (the pool does not
// forcibly cancel outstanding waiter contexts).
func (p *Pool) Close(ctx context.Context) {
	p.mu.Lock()
	p.closed = true
	var toClose []*engine.Conn
	for el := p.idle.Front(); el != nil; el = el.Next() {
		toClose = append(toClose, el.Value.(*engine.Conn))
	}
	p.idle.Init()
	p.mu.Unlock()

	for _, c := range toClose {
		_ = c.Close(ctx)
	}
}
