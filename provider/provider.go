// Package provider wires config, transport, engine, pool, failover,
// logging and metrics into the "connection provider" of spec §4.4/§4.6:
// a factory that produces an established connection directly, via a
// pool, or via a role-based dispatcher, plus the pool's rebind_role hook
// the failover coordinator drives a role-based try through.
package provider

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fsvxavier/pgengine/config"
	"github.com/fsvxavier/pgengine/engine"
	"github.com/fsvxavier/pgengine/failover"
	"github.com/fsvxavier/pgengine/hooks"
	"github.com/fsvxavier/pgengine/logging"
	"github.com/fsvxavier/pgengine/metrics"
	"github.com/fsvxavier/pgengine/oid"
	"github.com/fsvxavier/pgengine/pgerr"
	"github.com/fsvxavier/pgengine/pool"
)

// Source is the IO-agnostic half of a provider (spec glossary
// "Connection source"): it holds configuration and produces one
// established connection per call, independent of any pool.
type Source struct {
	cfg     *config.Config
	logger  logging.Logger
	metrics *metrics.Collectors
	hooks   *hooks.Manager
	keys    []oid.TypeKey
}

// NewSource resolves cfg's declared user type names against the codec's
// global registry and returns a Source ready to use as a pool.Factory.
// Returns an error if a declared name was never registered (the caller
// forgot to register its user-defined type).
func NewSource(cfg *config.Config, logger logging.Logger) (*Source, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	keys := make([]oid.TypeKey, 0, len(cfg.UserTypeNames()))
	for _, name := range cfg.UserTypeNames() {
		key, ok := oid.Global().Lookup(name)
		if !ok {
			return nil, pgerr.Newf(pgerr.KindOIDRequestFailed, "user type %q was never registered with the codec", name)
		}
		keys = append(keys, key)
	}
	return &Source{cfg: cfg, logger: logger, keys: keys}, nil
}

// Connect performs the full start → polling → oid-discovery → idle
// sequence (engine.Open), recording establishment latency and failures
// when a metrics.Collectors has been attached via SetMetrics.
func (s *Source) Connect(ctx context.Context) (*engine.Conn, error) {
	start := time.Now()
	m := oid.NewMap(oid.Global(), s.keys...)
	c, err := engine.Open(ctx, s.cfg.PGConfig(), m, s.hooks)
	elapsed := time.Since(start)
	if s.metrics != nil {
		s.metrics.ConnectDuration.Observe(elapsed.Seconds())
	}
	if err != nil {
		if s.metrics != nil {
			s.metrics.ConnectFailures.Inc()
		}
		s.logger.Warn(ctx, "connection establishment failed", logging.Err(err), logging.Duration("elapsed", elapsed))
		return nil, err
	}
	s.logger.Info(ctx, "connection established", logging.Duration("elapsed", elapsed))
	return c, nil
}

// SetMetrics attaches collectors this Source's Connect calls report to.
func (s *Source) SetMetrics(m *metrics.Collectors) { s.metrics = m }

// SetHooks attaches the lifecycle hook manager this Source's Connect calls
// fire ConnectionOpenedHook/ConnectionBadHook against. A nil hm (the
// default) means no hooks fire.
func (s *Source) SetHooks(hm *hooks.Manager) { s.hooks = hm }

// roleHandle pairs a role's pool with the Source that feeds it, so
// Provider can retrofit a shared metrics.Collectors onto every role
// after construction.
type roleHandle struct {
	src  *Source
	pool *pool.Pool
}

// Provider is the pooled connection provider: one pool.Pool per
// configured role (just {master} when failover is disabled), matching
// spec §4.6's requirement that "the provider source MUST support that
// role" by failing fast in New when a declared role has no resolvable
// DSN.
type Provider struct {
	logger  logging.Logger
	metrics *metrics.Collectors
	hooks   *hooks.Manager
	roles   map[failover.Role]*roleHandle
	primary failover.Role
}

const defaultRole failover.Role = failover.RoleMaster

// New builds a Provider: a pool for the primary DSN under RoleMaster, and
// (when cfg.Failover().Enabled) one additional pool per declared
// non-master role, each against its RoleDSNs entry. When reg is non-nil,
// a metrics.Collectors is built and wired into every role's Source and
// into the provider's own pool-occupancy gauges (aggregated across
// roles).
func New(cfg *config.Config, logger logging.Logger, reg prometheus.Registerer) (*Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Nop()
	}

	hm := hooks.New(cfg.Hook().Timeout)

	p := &Provider{logger: logger, hooks: hm, roles: make(map[failover.Role]*roleHandle), primary: defaultRole}

	masterSrc, err := NewSource(cfg, logger)
	if err != nil {
		return nil, err
	}
	masterSrc.SetHooks(hm)
	p.roles[defaultRole] = &roleHandle{src: masterSrc, pool: newPool(cfg, masterSrc, hm)}

	if cfg.Failover().Enabled {
		for _, role := range cfg.Failover().Roles {
			if role == defaultRole {
				continue
			}
			dsn, ok := cfg.Failover().RoleDSNs[role]
			if !ok {
				return nil, pgerr.Newf(pgerr.KindUnknown, "role %q declared in failover config but has no DSN", role)
			}
			roleCfg, err := config.New(dsn, config.WithPool(cfg.Pool()), config.WithUserTypes(cfg.UserTypeNames()...))
			if err != nil {
				return nil, err
			}
			src, err := NewSource(roleCfg, logger)
			if err != nil {
				return nil, err
			}
			src.SetHooks(hm)
			p.roles[role] = &roleHandle{src: src, pool: newPool(roleCfg, src, hm)}
		}
	}

	if reg != nil {
		m := metrics.New(reg, p.aggregateStats)
		p.metrics = m
		for _, rh := range p.roles {
			rh.src.SetMetrics(m)
		}
	}
	return p, nil
}

func newPool(cfg *config.Config, src *Source, hm *hooks.Manager) *pool.Pool {
	pc := cfg.Pool()
	return pool.New(pool.Config{
		Capacity:      pc.Capacity,
		QueueCapacity: pc.QueueCapacity,
		IdleTimeout:   pc.IdleTimeout,
		Lifetime:      pc.Lifetime,
		ThreadSafe:    pc.ThreadSafe,
	}, src.Connect, hm)
}

// Hooks returns the provider's shared lifecycle hook manager, the same
// instance wired into every role's Source and pool.Pool.
func (p *Provider) Hooks() *hooks.Manager { return p.hooks }

func (p *Provider) aggregateStats() metrics.Stats {
	var s metrics.Stats
	for _, rh := range p.roles {
		st := rh.pool.Stats()
		s.Idle += st.Idle
		s.InUse += st.InUse
		s.Waiting += st.Waiting
	}
	return s
}

// Pool returns the pool.Pool backing role, or the primary pool if role is
// unknown to this Provider.
func (p *Provider) Pool(role failover.Role) *pool.Pool {
	if rh, ok := p.roles[role]; ok {
		return rh.pool
	}
	return p.roles[p.primary].pool
}

// Acquire implements interfaces.IPool against the primary (master) role.
func (p *Provider) Acquire(ctx context.Context) (*engine.Conn, error) {
	return p.Pool(p.primary).Acquire(ctx)
}

// Release implements interfaces.IPool against the primary role's pool.
func (p *Provider) Release(ctx context.Context, c *engine.Conn, outcomeErr error) {
	p.Pool(p.primary).Release(ctx, c, outcomeErr)
}

// Stats reports the primary role's pool occupancy.
func (p *Provider) Stats() pool.Stats { return p.Pool(p.primary).Stats() }

// Close closes every role's pool.
func (p *Provider) Close(ctx context.Context) {
	for _, rh := range p.roles {
		rh.pool.Close(ctx)
	}
}

// RoleBound is a Provider pinned to one role, the shape
// RoleBasedStrategy.Run rebinds a try's connection provider to (spec
// §4.6: "A new try rebinds the connection provider to the selected role
// via the provider's rebind_role").
type RoleBound struct {
	p    *Provider
	role failover.Role
}

// RebindRole returns a RoleBound pinned to role. The provider source MUST
// support that role (have a configured pool for it); callers that pass
// an unconfigured role silently fall back to the primary pool, matching
// Pool's lookup behavior.
func (p *Provider) RebindRole(role failover.Role) *RoleBound {
	return &RoleBound{p: p, role: role}
}

func (r *RoleBound) Acquire(ctx context.Context) (*engine.Conn, error) {
	return r.p.Pool(r.role).Acquire(ctx)
}

func (r *RoleBound) Release(ctx context.Context, c *engine.Conn, outcomeErr error) {
	r.p.Pool(r.role).Release(ctx, c, outcomeErr)
}

func (r *RoleBound) Stats() pool.Stats { return r.p.Pool(r.role).Stats() }

func (r *RoleBound) Role() failover.Role { return r.role }
