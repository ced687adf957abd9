// Package failover implements a retry-count strategy and a role-based
// fallback strategy for recovering from transient connection errors.
package failover

import (
	"context"
	"sync"
	"time"

	"github.com/fsvxavier/pgengine/deadline"
	"github.com/fsvxavier/pgengine/hooks"
	"github.com/fsvxavier/pgengine/pgerr"
)

// Operation is one attempt of a failover-guarded action, given the time
// budget allotted to that attempt.
type Operation func(ctx context.Context, budget time.Duration) error

// RetryStrategy retries while tries-remaining ≥ 1 and (Conditions is
// empty or the error matches one of them), dividing the remaining time
// budget evenly across remaining tries.
type RetryStrategy struct {
	Tries           int
	Conditions      []pgerr.Condition
	OnRetry         func(attempt int, err error)
	CloseConnection bool // documents intent to the caller; enforced by the caller releasing/closing the connection between tries
	Hooks           *hooks.Manager
}

// Run executes op under the strategy against a total time budget.
func (s RetryStrategy) Run(ctx context.Context, budget time.Duration, op Operation) error {
	tries := s.Tries
	if tries < 1 {
		tries = 1
	}

	var elapsed time.Duration
	var lastErr error
	for i := 0; i < tries; i++ {
		remaining := tries - i
		share := deadline.Divide(budget, elapsed, remaining)

		attemptCtx := ctx
		var cancel context.CancelFunc
		if budget > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, share)
		}

		start := time.Now()
		err := op(attemptCtx, share)
		if cancel != nil {
			cancel()
		}
		elapsed += time.Since(start)
		lastErr = err

		if err == nil {
			return nil
		}
		if i == tries-1 {
			break
		}
		if !pgerr.Matches(err, s.Conditions) {
			break
		}

		retryCtx := hooks.NewExecutionContext(ctx, "retry", "")
		retryCtx.Error = err
		if hookErr := s.Hooks.ExecuteHooks(hooks.BeforeRetryHook, retryCtx); hookErr != nil {
			return hookErr
		}
		if s.OnRetry != nil {
			s.OnRetry(i+1, err)
		}
	}
	return lastErr
}

// Role is a nominal role tag used by the role-based strategy. The registry is an open set: RegisterRole adds
// custom roles beyond the built-in master/replica.
type Role string

const (
	RoleMaster  Role = "master"
	RoleReplica Role = "replica"
)

type roleRegistry struct {
	mu          sync.RWMutex
	recoverable map[Role][]pgerr.Condition
}

var roles = &roleRegistry{
	recoverable: map[Role][]pgerr.Condition{
		RoleMaster: {
			pgerr.ConditionConnectError,
			pgerr.ConditionTypeMismatch,
			pgerr.ConditionTransportError,
			pgerr.ConditionDatabaseReadOnly,
		},
		RoleReplica: {
			pgerr.ConditionConnectError,
			pgerr.ConditionTypeMismatch,
			pgerr.ConditionTransportError,
		},
	},
}

// RegisterRole binds a role tag to the set of conditions it can recover
// from. Re-registering an existing role replaces its condition set.
func RegisterRole(role Role, conditions []pgerr.Condition) {
	roles.mu.Lock()
	defer roles.mu.Unlock()
	roles.recoverable[role] = conditions
}

// CanRecover is the can_recover(role, error) customization point (spec
// §4.6): true if role is registered and err matches one of its
// conditions.
func CanRecover(role Role, err error) bool {
	roles.mu.RLock()
	conditions, ok := roles.recoverable[role]
	roles.mu.RUnlock()
	if !ok {
		return false
	}
	return pgerr.Matches(err, conditions)
}

// RoleOperation is one attempt of a role-based try, bound to the role
// selected for that attempt.
type RoleOperation func(ctx context.Context, role Role) error

// RoleBasedStrategy, on error, advances through Roles[i+1:], skipping
// roles that cannot recover the observed error, rebinding the connection
// provider to the chosen role.
type RoleBasedStrategy struct {
	Roles           []Role
	OnFallback      func(from, to Role, err error)
	CloseConnection bool
	Hooks           *hooks.Manager
}

// Run executes op against Roles[0], falling forward on recoverable
// errors.
func (s RoleBasedStrategy) Run(ctx context.Context, op RoleOperation) error {
	if len(s.Roles) == 0 {
		return pgerr.Newf(pgerr.KindUnknown, "role-based strategy requires at least one role")
	}

	i := 0
	for {
		role := s.Roles[i]
		err := op(ctx, role)
		if err == nil {
			return nil
		}

		next := -1
		for j := i + 1; j < len(s.Roles); j++ {
			if CanRecover(s.Roles[j], err) {
				next = j
				break
			}
		}
		if next == -1 {
			return err
		}

		failoverCtx := hooks.NewExecutionContext(ctx, "failover", "")
		failoverCtx.Error = err
		failoverCtx.Metadata = map[string]any{"from": string(role), "to": string(s.Roles[next])}
		if hookErr := s.Hooks.ExecuteHooks(hooks.BeforeFailoverHook, failoverCtx); hookErr != nil {
			return hookErr
		}
		if s.OnFallback != nil {
			s.OnFallback(role, s.Roles[next], err)
		}
		i = next
	}
}
