// Package config builds the engine's connection configuration: DSN
// parsing plus pool, retry, failover and hook sub-configs, assembled with
// functional options in the teacher's DefaultConfig/ConfigOption shape.
package config

import (
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fsvxavier/pgengine/failover"
	"github.com/fsvxavier/pgengine/pgerr"
)

// PoolConfig mirrors spec §4.3's pool configuration tuple.
type PoolConfig struct {
	Capacity      int
	QueueCapacity int
	IdleTimeout   time.Duration
	Lifetime      time.Duration
	ThreadSafe    bool
}

// RetryConfig configures the failover retry-count strategy (spec §4.6).
type RetryConfig struct {
	Tries           int
	Conditions      []pgerr.Condition
	CloseConnection bool
}

// FailoverConfig configures the role-based fallback strategy (spec §4.6).
// Disabled by default: most callers talk to a single node and never need
// role fallback.
type FailoverConfig struct {
	Enabled bool
	Roles   []failover.Role
	// RoleDSNs maps a role tag to the DSN its pool connects to. RoleMaster
	// always uses the primary DSN passed to New; any other declared role
	// absent from this map makes provider.New fail.
	RoleDSNs        map[failover.Role]string
	CloseConnection bool
}

// HookConfig bounds how long a single hook callback may run before the
// hook manager reports it as failed.
type HookConfig struct {
	Timeout time.Duration
}

// Config is the engine's connection configuration: a DSN plus pool,
// retry, failover and hook sub-configs, each with a documented default.
// Built via New and functional Options; Validate() is mandatory before a
// provider will open a pool.
type Config struct {
	dsn      string
	pgConfig *pgconn.Config

	pool     PoolConfig
	retry    RetryConfig
	failover FailoverConfig
	hook     HookConfig

	userTypeNames []string
}

// Option mutates a Config under construction.
type Option func(*Config)

// New parses dsn as a libpq-style connection string (pgpass/service-file
// aware, per transport.ParseConfig) and applies opts over sensible
// defaults.
func New(dsn string, opts ...Option) (*Config, error) {
	pgCfg, err := pgconn.ParseConfig(dsn)
	if err != nil {
		return nil, pgerr.New(pgerr.KindBadConnectionStatus, err)
	}

	c := &Config{
		dsn:      dsn,
		pgConfig: pgCfg,
		pool: PoolConfig{
			Capacity:      10,
			QueueCapacity: 32,
			IdleTimeout:   30 * time.Minute,
			Lifetime:      time.Hour,
			ThreadSafe:    true,
		},
		retry: RetryConfig{
			Tries:           1,
			CloseConnection: true,
		},
		hook: HookConfig{
			Timeout: 5 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// WithPool overrides the pool sizing/eviction sub-config.
func WithPool(p PoolConfig) Option {
	return func(c *Config) { c.pool = p }
}

// WithRetry overrides the retry-count failover sub-config.
func WithRetry(r RetryConfig) Option {
	return func(c *Config) { c.retry = r }
}

// WithFailover enables role-based fallback across roles, in order, e.g.
// [master, replica, replica].
func WithFailover(f FailoverConfig) Option {
	return func(c *Config) { c.failover = f }
}

// WithHookTimeout overrides how long a single hook callback may run.
func WithHookTimeout(d time.Duration) Option {
	return func(c *Config) { c.hook.Timeout = d }
}

// WithUserTypes declares PostgreSQL type names requiring OID discovery
// at connection establishment (spec §3 "OID map"). Each name must have
// been registered via codec.RegisterCompositeType or an equivalent
// user-type registration so the codec's registry knows the TypeKey.
func WithUserTypes(names ...string) Option {
	return func(c *Config) { c.userTypeNames = append(c.userTypeNames, names...) }
}

// WithConnectTimeout overrides the non-blocking connect's deadline.
func WithConnectTimeout(d time.Duration) Option {
	return func(c *Config) { c.pgConfig.ConnectTimeout = d }
}

func (c *Config) DSN() string               { return c.dsn }
func (c *Config) PGConfig() *pgconn.Config  { return c.pgConfig }
func (c *Config) Pool() PoolConfig          { return c.pool }
func (c *Config) Retry() RetryConfig        { return c.retry }
func (c *Config) Failover() FailoverConfig  { return c.failover }
func (c *Config) Hook() HookConfig          { return c.hook }
func (c *Config) UserTypeNames() []string   { return c.userTypeNames }

// Validate rejects a Config a provider must refuse to open a pool for.
func (c *Config) Validate() error {
	if c.pgConfig == nil {
		return pgerr.Newf(pgerr.KindUnknown, "pgengine: config has no parsed connection string")
	}
	if c.pool.Capacity <= 0 {
		return pgerr.Newf(pgerr.KindUnknown, "pgengine: pool capacity must be > 0, got %d", c.pool.Capacity)
	}
	if c.pool.QueueCapacity < 0 {
		return pgerr.Newf(pgerr.KindUnknown, "pgengine: pool queue capacity cannot be negative")
	}
	if c.retry.Tries < 1 {
		return pgerr.Newf(pgerr.KindUnknown, "pgengine: retry tries must be >= 1, got %d", c.retry.Tries)
	}
	if c.failover.Enabled && len(c.failover.Roles) == 0 {
		return pgerr.Newf(pgerr.KindUnknown, "pgengine: failover enabled but no roles declared")
	}
	return nil
}
