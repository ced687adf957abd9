package deadline_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fsvxavier/pgengine/deadline"
	"github.com/fsvxavier/pgengine/pgerr"
)

func TestConstraintDeadline(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	_, ok := deadline.None().Deadline(now)
	assert.False(t, ok)

	d, ok := deadline.After(5 * time.Second).Deadline(now)
	assert.True(t, ok)
	assert.Equal(t, now.Add(5*time.Second), d)

	at := now.Add(time.Hour)
	d, ok = deadline.At(at).Deadline(now)
	assert.True(t, ok)
	assert.Equal(t, at, d)
}

func TestWithContextNoneIsCancelOnly(t *testing.T) {
	ctx, cancel := deadline.None().WithContext(context.Background())
	defer cancel()
	_, hasDeadline := ctx.Deadline()
	assert.False(t, hasDeadline)
}

func TestWithContextAfterSetsDeadline(t *testing.T) {
	ctx, cancel := deadline.After(time.Minute).WithContext(context.Background())
	defer cancel()
	dl, ok := ctx.Deadline()
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), dl, 2*time.Second)
}

func TestRewriteTimeoutVsAborted(t *testing.T) {
	parentCtx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	<-parentCtx.Done()

	err := deadline.Rewrite(parentCtx, errors.New("operation aborted"))
	var e *pgerr.Error
	assert.ErrorAs(t, err, &e)
	assert.Equal(t, pgerr.KindTimedOut, e.Kind)

	cancelCtx, cancelFn := context.WithCancel(context.Background())
	cancelFn()
	err = deadline.Rewrite(cancelCtx, errors.New("cancelled"))
	assert.ErrorAs(t, err, &e)
	assert.Equal(t, pgerr.KindOperationAborted, e.Kind)

	plainCtx := context.Background()
	original := errors.New("unrelated failure")
	assert.Same(t, original, deadline.Rewrite(plainCtx, original))

	assert.Nil(t, deadline.Rewrite(plainCtx, nil))
}

func TestDivideEvenSplit(t *testing.T) {
	assert.Equal(t, 0*time.Second, deadline.Divide(0, 0, 3))
	assert.Equal(t, 5*time.Second, deadline.Divide(15*time.Second, 0, 3))
	assert.Equal(t, 5*time.Second, deadline.Divide(15*time.Second, 5*time.Second, 2))
	assert.Equal(t, time.Duration(0), deadline.Divide(5*time.Second, 10*time.Second, 1))
	assert.Equal(t, time.Duration(0), deadline.Divide(time.Second, 0, 0))
}
