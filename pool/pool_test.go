package pool_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fsvxavier/pgengine/engine"
	"github.com/fsvxavier/pgengine/pgerr"
	"github.com/fsvxavier/pgengine/pool"
)

func neverCalledFactory(t *testing.T) pool.Factory {
	return func(ctx context.Context) (*engine.Conn, error) {
		t.Fatal("factory should not be invoked")
		return nil, nil
	}
}

func TestAcquireOnClosedPoolFailsImmediately(t *testing.T) {
	p := pool.New(pool.Config{Capacity: 1, QueueCapacity: 1}, neverCalledFactory(t), nil)
	p.Close(context.Background())

	_, err := p.Acquire(context.Background())
	var e *pgerr.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, pgerr.KindPoolClosed, e.Kind)
}

func TestAcquireWithZeroCapacityOverflowsImmediately(t *testing.T) {
	p := pool.New(pool.Config{Capacity: 0, QueueCapacity: 0}, neverCalledFactory(t), nil)

	_, err := p.Acquire(context.Background())
	var e *pgerr.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, pgerr.KindPoolQueueOverflow, e.Kind)
}

func TestStatsOnFreshPool(t *testing.T) {
	p := pool.New(pool.Config{Capacity: 5, QueueCapacity: 5}, neverCalledFactory(t), nil)
	stats := p.Stats()
	assert.Equal(t, pool.Stats{Idle: 0, InUse: 0, Total: 0, Waiting: 0}, stats)
}

func TestCloseOnEmptyIdlePoolIsSafe(t *testing.T) {
	p := pool.New(pool.Config{Capacity: 1, QueueCapacity: 1}, neverCalledFactory(t), nil)
	assert.NotPanics(t, func() { p.Close(context.Background()) })

	_, err := p.Acquire(context.Background())
	assert.Error(t, err)
}
