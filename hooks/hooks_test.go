package hooks_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fsvxavier/pgengine/hooks"
)

func execCtx() *hooks.ExecutionContext {
	return hooks.NewExecutionContext(context.Background(), "test-op", "SELECT 1")
}

func TestRegisterAndExecuteHook(t *testing.T) {
	m := hooks.New(time.Second)
	called := false
	require.NoError(t, m.RegisterHook(hooks.BeforeExecHook, func(ctx *hooks.ExecutionContext) *hooks.HookResult {
		called = true
		return &hooks.HookResult{Continue: true}
	}))

	require.NoError(t, m.ExecuteHooks(hooks.BeforeExecHook, execCtx()))
	assert.True(t, called)
}

func TestHookErrorAbortsExecution(t *testing.T) {
	m := hooks.New(time.Second)
	wantErr := errors.New("hook failed")
	require.NoError(t, m.RegisterHook(hooks.BeforeExecHook, func(ctx *hooks.ExecutionContext) *hooks.HookResult {
		return &hooks.HookResult{Error: wantErr}
	}))

	err := m.ExecuteHooks(hooks.BeforeExecHook, execCtx())
	assert.ErrorIs(t, err, wantErr)
}

func TestHookContinueFalseAbortsExecution(t *testing.T) {
	m := hooks.New(time.Second)
	require.NoError(t, m.RegisterHook(hooks.BeforeExecHook, func(ctx *hooks.ExecutionContext) *hooks.HookResult {
		return &hooks.HookResult{Continue: false}
	}))

	err := m.ExecuteHooks(hooks.BeforeExecHook, execCtx())
	assert.Error(t, err)
}

func TestHookTimeout(t *testing.T) {
	m := hooks.New(10 * time.Millisecond)
	require.NoError(t, m.RegisterHook(hooks.BeforeExecHook, func(ctx *hooks.ExecutionContext) *hooks.HookResult {
		time.Sleep(100 * time.Millisecond)
		return &hooks.HookResult{Continue: true}
	}))

	err := m.ExecuteHooks(hooks.BeforeExecHook, execCtx())
	assert.Error(t, err)
}

func TestHookPanicRecovered(t *testing.T) {
	m := hooks.New(time.Second)
	require.NoError(t, m.RegisterHook(hooks.BeforeExecHook, func(ctx *hooks.ExecutionContext) *hooks.HookResult {
		panic("boom")
	}))

	err := m.ExecuteHooks(hooks.BeforeExecHook, execCtx())
	assert.Error(t, err)
}

func TestRegisterHookRejectsNil(t *testing.T) {
	m := hooks.New(time.Second)
	assert.Error(t, m.RegisterHook(hooks.BeforeExecHook, nil))
}

func TestCustomHookRegisterAndUnregister(t *testing.T) {
	m := hooks.New(time.Second)
	called := false
	require.NoError(t, m.RegisterCustomHook(hooks.AfterExecHook, "audit", func(ctx *hooks.ExecutionContext) *hooks.HookResult {
		called = true
		return &hooks.HookResult{Continue: true}
	}))

	require.NoError(t, m.ExecuteHooks(hooks.AfterExecHook, execCtx()))
	assert.True(t, called)

	require.NoError(t, m.UnregisterCustomHook(hooks.AfterExecHook, "audit"))
	called = false
	require.NoError(t, m.ExecuteHooks(hooks.AfterExecHook, execCtx()))
	assert.False(t, called)
}

func TestRegisterCustomHookRejectsEmptyName(t *testing.T) {
	m := hooks.New(time.Second)
	err := m.RegisterCustomHook(hooks.AfterExecHook, "", func(ctx *hooks.ExecutionContext) *hooks.HookResult {
		return &hooks.HookResult{Continue: true}
	})
	assert.Error(t, err)
}

func TestSetEnabledGatesExecution(t *testing.T) {
	m := hooks.New(time.Second)
	called := false
	require.NoError(t, m.RegisterHook(hooks.BeforeExecHook, func(ctx *hooks.ExecutionContext) *hooks.HookResult {
		called = true
		return &hooks.HookResult{Continue: true}
	}))

	m.SetEnabled(false)
	assert.False(t, m.IsEnabled())
	require.NoError(t, m.ExecuteHooks(hooks.BeforeExecHook, execCtx()))
	assert.False(t, called)
}

func TestUnregisterHook(t *testing.T) {
	m := hooks.New(time.Second)
	called := false
	require.NoError(t, m.RegisterHook(hooks.BeforeExecHook, func(ctx *hooks.ExecutionContext) *hooks.HookResult {
		called = true
		return &hooks.HookResult{Continue: true}
	}))
	require.NoError(t, m.UnregisterHook(hooks.BeforeExecHook))
	require.NoError(t, m.ExecuteHooks(hooks.BeforeExecHook, execCtx()))
	assert.False(t, called)
}

func TestFinishStampsExecutionContext(t *testing.T) {
	ctx := execCtx()
	time.Sleep(time.Millisecond)
	wantErr := errors.New("boom")
	hooks.Finish(ctx, wantErr, 5)

	assert.Equal(t, wantErr, ctx.Error)
	assert.Equal(t, int64(5), ctx.RowsAffected)
	assert.Greater(t, ctx.Duration, time.Duration(0))
}

func TestNilManagerExecuteHooksIsNoOp(t *testing.T) {
	var m *hooks.Manager
	assert.False(t, m.IsEnabled())
	assert.NotPanics(t, func() {
		assert.NoError(t, m.ExecuteHooks(hooks.BeforeAcquireHook, execCtx()))
	})
}
