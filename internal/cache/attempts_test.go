package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAttemptTracker_RecordFailure(t *testing.T) {
	tr := NewAttemptTracker(10, time.Minute)

	assert.Equal(t, 1, tr.RecordFailure("a@example.com"))
	assert.Equal(t, 2, tr.RecordFailure("a@example.com"))
	assert.Equal(t, 1, tr.RecordFailure("b@example.com"))

	a, ok := tr.Get("a@example.com")
	assert.True(t, ok)
	assert.Equal(t, 2, a.Count)
	assert.True(t, a.ExpiresAt.After(time.Now()))
}

func TestAttemptTracker_Reset(t *testing.T) {
	tr := NewAttemptTracker(10, time.Minute)

	tr.RecordFailure("a@example.com")
	tr.Reset("a@example.com")

	_, ok := tr.Get("a@example.com")
	assert.False(t, ok)
	assert.Equal(t, 0, tr.Len())

	// Resetting an unknown key is a no-op.
	tr.Reset("unknown")
}

func TestAttemptTracker_ExpiredEntriesPurgedOnRead(t *testing.T) {
	tr := NewAttemptTracker(10, time.Minute)
	base := time.Now()
	now := base
	tr.now = func() time.Time { return now }

	tr.RecordFailure("a@example.com")
	tr.RecordFailure("b@example.com")

	now = base.Add(30 * time.Second)
	_, ok := tr.Get("a@example.com")
	assert.True(t, ok)

	now = base.Add(2 * time.Minute)
	_, ok = tr.Get("a@example.com")
	assert.False(t, ok)
	assert.Equal(t, 0, tr.Len())
}

func TestAttemptTracker_FailureRefreshesWindow(t *testing.T) {
	tr := NewAttemptTracker(10, time.Minute)
	base := time.Now()
	now := base
	tr.now = func() time.Time { return now }

	tr.RecordFailure("a@example.com")

	now = base.Add(45 * time.Second)
	assert.Equal(t, 2, tr.RecordFailure("a@example.com"))

	// The first failure would have expired by now; the refreshed TTL keeps
	// the counter alive.
	now = base.Add(90 * time.Second)
	a, ok := tr.Get("a@example.com")
	assert.True(t, ok)
	assert.Equal(t, 2, a.Count)
}

func TestAttemptTracker_CapacityEvictsSoonestExpiry(t *testing.T) {
	tr := NewAttemptTracker(2, time.Minute)
	base := time.Now()
	now := base
	tr.now = func() time.Time { return now }

	tr.RecordFailure("first@example.com")
	now = base.Add(10 * time.Second)
	tr.RecordFailure("second@example.com")

	// At capacity: the entry closest to expiry (the first) makes room.
	now = base.Add(20 * time.Second)
	tr.RecordFailure("third@example.com")

	assert.Equal(t, 2, tr.Len())

	_, ok := tr.Get("first@example.com")
	assert.False(t, ok)
	_, ok = tr.Get("second@example.com")
	assert.True(t, ok)
	_, ok = tr.Get("third@example.com")
	assert.True(t, ok)
}

func TestAttemptTracker_MinimumCapacity(t *testing.T) {
	tr := NewAttemptTracker(0, time.Minute)

	tr.RecordFailure("a@example.com")
	tr.RecordFailure("b@example.com")

	assert.Equal(t, 1, tr.Len())
}
