package pgerr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fsvxavier/pgengine/pgerr"
)

func TestKindString(t *testing.T) {
	assert.Equal(t, "timed-out", pgerr.KindTimedOut.String())
	assert.Equal(t, "connection-bad", pgerr.KindConnBad.String())
	assert.Equal(t, "unknown", pgerr.Kind(9999).String())
}

func TestErrorMessageShapes(t *testing.T) {
	cause := errors.New("boom")

	e := pgerr.New(pgerr.KindStartFailed, cause)
	assert.Contains(t, e.Error(), "start-failed")
	assert.Contains(t, e.Error(), "boom")

	f := pgerr.Newf(pgerr.KindBadObjectSize, "expected %d got %d", 4, 8)
	assert.Contains(t, f.Error(), "bad-object-size")
	assert.Contains(t, f.Error(), "expected 4 got 8")

	fatal := pgerr.Fatal(pgerr.SQLSTATEReadOnlySQLTransaction, "cannot execute in a read-only transaction")
	assert.Contains(t, fatal.Error(), string(pgerr.SQLSTATEReadOnlySQLTransaction))
	assert.Contains(t, fatal.Error(), "read-only")
}

func TestErrorIsAndUnwrap(t *testing.T) {
	cause := errors.New("socket gone")
	e := pgerr.New(pgerr.KindSocketFailed, cause)

	assert.ErrorIs(t, e, pgerr.New(pgerr.KindSocketFailed, nil))
	assert.False(t, errors.Is(e, pgerr.New(pgerr.KindConnBad, nil)))
	assert.Equal(t, cause, errors.Unwrap(e))
}

func TestOfExtractsKind(t *testing.T) {
	assert.Equal(t, pgerr.KindPoolClosed, pgerr.Of(pgerr.Newf(pgerr.KindPoolClosed, "closed")))
	assert.Equal(t, pgerr.KindUnknown, pgerr.Of(errors.New("plain error")))
	assert.Equal(t, pgerr.KindUnknown, pgerr.Of(nil))
}

func TestMatchesConditions(t *testing.T) {
	timedOut := pgerr.New(pgerr.KindTimedOut, nil)
	assert.True(t, pgerr.Matches(timedOut, nil))
	assert.True(t, pgerr.Matches(timedOut, []pgerr.Condition{pgerr.ConditionTimeout}))
	assert.False(t, pgerr.Matches(timedOut, []pgerr.Condition{pgerr.ConditionSQLError}))

	assert.False(t, pgerr.Matches(errors.New("not ours"), []pgerr.Condition{pgerr.ConditionTimeout}))

	readOnly := pgerr.Fatal(pgerr.SQLSTATEReadOnlySQLTransaction, "read only")
	assert.True(t, pgerr.Matches(readOnly, []pgerr.Condition{pgerr.ConditionDatabaseReadOnly}))
	assert.True(t, pgerr.Matches(readOnly, []pgerr.Condition{pgerr.ConditionSQLError}))
}

func TestIsBad(t *testing.T) {
	assert.True(t, pgerr.IsBad(pgerr.New(pgerr.KindSocketFailed, nil)))
	assert.False(t, pgerr.IsBad(pgerr.New(pgerr.KindBadResultProcess, nil)))
	assert.False(t, pgerr.IsBad(nil))
	assert.True(t, pgerr.IsBad(errors.New("not ours, treated as bad")))
}

func TestWithContext(t *testing.T) {
	e := pgerr.New(pgerr.KindBadResponse, nil).WithContext("server said X")
	assert.Contains(t, e.Error(), "server said X")
}
