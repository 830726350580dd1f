// Package cache holds the process-local mutable state: the bounded
// login-attempt tracker. The tracker is intentionally not persisted; losing
// it on restart is acceptable because throttling is a best-effort mitigation,
// not a durable security boundary.
package cache

import (
	"container/heap"
	"sync"
	"time"
)

// Attempt is the counter snapshot for one identifier.
type Attempt struct {
	Count       int
	LastAttempt time.Time
	ExpiresAt   time.Time
}

type entry struct {
	key       string
	count     int
	last      time.Time
	expiresAt time.Time
	index     int
}

// AttemptTracker is a bounded TTL map keyed by account identifier. When the
// capacity is reached, the entry with the soonest TTL is evicted to make
// room. Expired entries are lazily purged on every read.
type AttemptTracker struct {
	mu       sync.Mutex
	entries  map[string]*entry
	heap     expiryHeap
	capacity int
	window   time.Duration
	now      func() time.Time
}

func NewAttemptTracker(capacity int, window time.Duration) *AttemptTracker {
	if capacity < 1 {
		capacity = 1
	}
	return &AttemptTracker{
		entries:  make(map[string]*entry, capacity),
		capacity: capacity,
		window:   window,
		now:      time.Now,
	}
}

// RecordFailure increments the counter for key and refreshes its TTL to
// now+window. It returns the new count.
func (t *AttemptTracker) RecordFailure(key string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.purgeLocked(now)

	if e, ok := t.entries[key]; ok {
		e.count++
		e.last = now
		e.expiresAt = now.Add(t.window)
		heap.Fix(&t.heap, e.index)
		return e.count
	}

	if len(t.entries) >= t.capacity {
		t.evictSoonestLocked()
	}

	e := &entry{key: key, count: 1, last: now, expiresAt: now.Add(t.window)}
	t.entries[key] = e
	heap.Push(&t.heap, e)
	return 1
}

// Get returns the current counter for key, if any live entry exists.
func (t *AttemptTracker) Get(key string) (Attempt, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.purgeLocked(t.now())

	e, ok := t.entries[key]
	if !ok {
		return Attempt{}, false
	}
	return Attempt{Count: e.count, LastAttempt: e.last, ExpiresAt: e.expiresAt}, true
}

// Reset clears the counter for key.
func (t *AttemptTracker) Reset(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if e, ok := t.entries[key]; ok {
		heap.Remove(&t.heap, e.index)
		delete(t.entries, key)
	}
}

// Len reports the number of tracked identifiers.
func (t *AttemptTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

func (t *AttemptTracker) purgeLocked(now time.Time) {
	for t.heap.Len() > 0 && !t.heap[0].expiresAt.After(now) {
		e := heap.Pop(&t.heap).(*entry)
		delete(t.entries, e.key)
	}
}

func (t *AttemptTracker) evictSoonestLocked() {
	if t.heap.Len() == 0 {
		return
	}
	e := heap.Pop(&t.heap).(*entry)
	delete(t.entries, e.key)
}

type expiryHeap []*entry

func (h expiryHeap) Len() int            { return len(h) }
func (h expiryHeap) Less(i, j int) bool  { return h[i].expiresAt.Before(h[j].expiresAt) }
func (h expiryHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *expiryHeap) Push(x interface{}) { e := x.(*entry); e.index = len(*h); *h = append(*h, e) }
func (h *expiryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}
