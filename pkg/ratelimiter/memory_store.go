package ratelimiter

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStore implements Store with per-key timestamp slices. Suitable for
// single-process deployments and tests; production uses the Redis store.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string][]time.Time

	cleanupInterval time.Duration
	maxWindow       time.Duration
	stopCleanup     chan struct{}
	closeOnce       sync.Once
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithCleanupInterval sets how often stale keys are evicted.
// Set to 0 to disable background cleanup.
func WithCleanupInterval(interval time.Duration) MemoryStoreOption {
	return func(s *MemoryStore) {
		s.cleanupInterval = interval
	}
}

// NewMemoryStore creates an in-memory store with background cleanup.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		windows:         make(map[string][]time.Time),
		cleanupInterval: time.Minute,
		maxWindow:       time.Hour,
		stopCleanup:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.cleanupInterval > 0 {
		go s.cleanupLoop()
	}

	return s
}

// RecordIfAllowed implements Store.
func (s *MemoryStore) RecordIfAllowed(ctx context.Context, key string, now time.Time, window time.Duration, limit int) (bool, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := now.Add(-window)
	kept := slices.DeleteFunc(s.windows[key], func(ts time.Time) bool {
		return !ts.After(cutoff)
	})

	if len(kept) >= limit {
		s.windows[key] = kept
		return false, int64(len(kept)), nil
	}

	kept = append(kept, now)
	s.windows[key] = kept
	return true, int64(len(kept)), nil
}

// Reset implements Store.
func (s *MemoryStore) Reset(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.windows, key)
	return nil
}

func (s *MemoryStore) cleanupLoop() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.removeStale()
		case <-s.stopCleanup:
			return
		}
	}
}

// removeStale drops keys whose newest timestamp fell out of the largest
// supported window, bounding memory for churning identifiers.
func (s *MemoryStore) removeStale() {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-s.maxWindow)
	for key, stamps := range s.windows {
		if len(stamps) == 0 || !stamps[len(stamps)-1].After(cutoff) {
			delete(s.windows, key)
		}
	}
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *MemoryStore) Close() {
	s.closeOnce.Do(func() {
		close(s.stopCleanup)
	})
}
