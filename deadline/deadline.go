// Package deadline unifies duration and absolute-time constraints behind
// context.Context: a timer racing an I/O completion, whichever fires
// first wins and the other is moot. This package reduces a Constraint to
// a context.Context deadline and rewrites the resulting error to
// distinguish a local timeout from an upstream cancellation.
package deadline

import (
	"context"
	"time"

	"github.com/fsvxavier/pgengine/pgerr"
)

// Kind is the shape of a time constraint: absent, relative, or absolute.
type Kind int

const (
	KindNone Kind = iota
	KindDuration
	KindAbsolute
)

// Constraint is exactly one of none / duration-from-now / absolute time
// point.
type Constraint struct {
	kind Kind
	dur  time.Duration
	at   time.Time
}

// None is the absent time constraint.
func None() Constraint { return Constraint{kind: KindNone} }

// After builds a duration-from-now constraint.
func After(d time.Duration) Constraint { return Constraint{kind: KindDuration, dur: d} }

// At builds an absolute-time-point constraint.
func At(t time.Time) Constraint { return Constraint{kind: KindAbsolute, at: t} }

// Deadline reduces the constraint to an absolute deadline relative to
// now, or reports ok=false for KindNone.
func (c Constraint) Deadline(now time.Time) (time.Time, bool) {
	switch c.kind {
	case KindDuration:
		return now.Add(c.dur), true
	case KindAbsolute:
		return c.at, true
	default:
		return time.Time{}, false
	}
}

// WithContext attaches the constraint's deadline to parent, returning a
// context whose cancellation plays the role of the timer: if it fires
// before the wrapped operation finishes, I/O run under this context (package
// request passes it down to the connection's Exec) is interrupted and
// ctx.Err() becomes context.DeadlineExceeded.
func (c Constraint) WithContext(parent context.Context) (context.Context, context.CancelFunc) {
	deadlineAt, ok := c.Deadline(time.Now())
	if !ok {
		return context.WithCancel(parent)
	}
	return context.WithDeadline(parent, deadlineAt)
}

// Rewrite applies the completion dispatch rule: if the deadline expired,
// any non-nil error is wrapped as timed-out; if ctx was cancelled for
// another reason, it is wrapped as operation-aborted; otherwise the error
// passes through unchanged. ctx is the context returned
// by WithContext, inspected after the guarded operation has returned err.
func Rewrite(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() == context.DeadlineExceeded {
		return pgerr.New(pgerr.KindTimedOut, err)
	}
	if ctx.Err() == context.Canceled {
		return pgerr.New(pgerr.KindOperationAborted, err)
	}
	return err
}

// Divide splits a retry budget T across n remaining tries, yielding
// max(0, (T − elapsed) / remaining).
func Divide(total time.Duration, elapsed time.Duration, remaining int) time.Duration {
	if remaining <= 0 {
		return 0
	}
	left := total - elapsed
	if left < 0 {
		left = 0
	}
	return left / time.Duration(remaining)
}
