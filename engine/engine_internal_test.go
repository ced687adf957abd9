package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStateString(t *testing.T) {
	cases := map[State]string{
		StateStart:        "start",
		StateOIDDiscovery: "oid-discovery",
		StateIdle:         "idle",
		StateBusy:         "busy",
		StateBad:          "bad",
		StateClosed:       "closed",
		State(999):        "unknown",
	}
	for s, want := range cases {
		assert.Equal(t, want, s.String())
	}
}

func TestIsBadReflectsState(t *testing.T) {
	c := &Conn{state: StateIdle}
	assert.False(t, c.IsBad())

	c.MarkBad(context.Background())
	assert.True(t, c.IsBad())
	assert.Equal(t, StateBad, c.State())
}

func TestCreatedAtAndLastUsedAt(t *testing.T) {
	created := time.Now().Add(-time.Hour)
	used := time.Now().Add(-time.Minute)
	c := &Conn{createdAt: created, lastUsedAt: used}

	assert.Equal(t, created, c.CreatedAt())
	assert.Equal(t, used, c.LastUsedAt())
}

func TestErrorContext(t *testing.T) {
	c := &Conn{errContext: "boom"}
	assert.Equal(t, "boom", c.ErrorContext())
}
