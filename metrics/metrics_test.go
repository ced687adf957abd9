package metrics_test

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fsvxavier/pgengine/metrics"
	"github.com/fsvxavier/pgengine/pgerr"
)

func TestNewRegistersAllCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.New(reg, func() metrics.Stats {
		return metrics.Stats{Idle: 2, InUse: 3, Waiting: 1}
	})

	require.NotNil(t, c)
	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)
}

func TestPoolGaugeFuncsReflectStatsFn(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.New(reg, func() metrics.Stats {
		return metrics.Stats{Idle: 2, InUse: 3, Waiting: 1}
	})

	assert.Equal(t, float64(5), testutil.ToFloat64(c.PoolConnections))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.PoolWaiting))
}

func TestObserveRequestErrorLabelsByKind(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.New(reg, nil)

	c.ObserveRequestError(pgerr.New(pgerr.KindTimedOut, nil))
	c.ObserveRequestError(errors.New("plain"))

	assert.Equal(t, float64(1), testutil.ToFloat64(c.RequestErrors.WithLabelValues(pgerr.KindTimedOut.String())))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.RequestErrors.WithLabelValues(pgerr.KindUnknown.String())))
}

func TestObserveRequestErrorIgnoresNil(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.New(reg, nil)
	assert.NotPanics(t, func() { c.ObserveRequestError(nil) })
}

func TestObserveRequestErrorOnNilCollectorsIsNoOp(t *testing.T) {
	var c *metrics.Collectors
	assert.NotPanics(t, func() { c.ObserveRequestError(errors.New("boom")) })
}
