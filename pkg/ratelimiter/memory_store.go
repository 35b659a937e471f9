package ratelimiter

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// window tracks the fixed-window counter state for one key.
type window struct {
	count   int
	startAt time.Time
	length  time.Duration
}

func (w *window) expired(now time.Time) bool {
	return now.Sub(w.startAt) >= w.length
}

// MemoryStore implements Store using in-process memory.
//
// Expired windows are reset lazily on access; windows for keys that stop
// making requests are swept opportunistically once the map grows past a
// threshold, so no background timer is required.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window

	// sweepThreshold triggers a stale sweep when the map grows past it.
	sweepThreshold int

	// Observability metrics
	windowsCreated atomic.Int64
	windowsRemoved atomic.Int64
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithSweepThreshold sets the map size that triggers a stale-window sweep.
func WithSweepThreshold(n int) MemoryStoreOption {
	return func(ms *MemoryStore) {
		if n > 0 {
			ms.sweepThreshold = n
		}
	}
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	ms := &MemoryStore{
		windows:        make(map[string]*window),
		sweepThreshold: 10000,
	}
	for _, opt := range opts {
		opt(ms)
	}
	return ms
}

// Increment bumps the counter for key, resetting the window first if it has
// elapsed. The whole read-modify-write runs under the store mutex so
// concurrent requests for the same key never lose updates.
func (ms *MemoryStore) Increment(ctx context.Context, key string, length time.Duration) (int, time.Time, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()
	w, exists := ms.windows[key]

	if !exists {
		if len(ms.windows) >= ms.sweepThreshold {
			ms.removeStale(now)
		}
		w = &window{startAt: now, length: length}
		ms.windows[key] = w
		ms.windowsCreated.Add(1)
	} else if w.expired(now) {
		w.count = 0
		w.startAt = now
		w.length = length
	}

	w.count++
	return w.count, w.startAt.Add(w.length), nil
}

// Decrement refunds one request from the current window.
// A refund against an elapsed or missing window is a no-op: the budget it
// would restore no longer exists.
func (ms *MemoryStore) Decrement(ctx context.Context, key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	w, exists := ms.windows[key]
	if !exists || w.expired(time.Now()) {
		return nil
	}
	if w.count > 0 {
		w.count--
	}
	return nil
}

// Reset discards the counter for key.
func (ms *MemoryStore) Reset(ctx context.Context, key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.windows, key)
	return nil
}

// Len returns the number of tracked windows, live or stale.
func (ms *MemoryStore) Len() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return len(ms.windows)
}

// removeStale drops elapsed windows. Caller must hold ms.mu.
func (ms *MemoryStore) removeStale(now time.Time) {
	removed := 0
	for key, w := range ms.windows {
		if w.expired(now) {
			delete(ms.windows, key)
			removed++
		}
	}
	if removed > 0 {
		ms.windowsRemoved.Add(int64(removed))
	}
}
