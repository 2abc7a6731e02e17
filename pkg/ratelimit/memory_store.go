package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps window counters in a mutex-guarded map. It is the fast,
// volatile, single-instance backend; state is lost on restart and not shared
// across processes.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*entry

	sweepInterval time.Duration
	stopSweep     chan struct{}
	sweepOnce     sync.Once
}

type entry struct {
	count        int64
	resetAt      time.Time
	firstRequest time.Time
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithSweepInterval sets how often expired entries are removed.
func WithSweepInterval(interval time.Duration) MemoryStoreOption {
	return func(s *MemoryStore) {
		if interval > 0 {
			s.sweepInterval = interval
		}
	}
}

// NewMemoryStore creates an in-memory store with a background sweep of
// expired entries (every 5 minutes by default). Call Close to stop the sweep
// goroutine.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		entries:       make(map[string]*entry),
		sweepInterval: 5 * time.Minute,
		stopSweep:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	go s.sweepLoop()

	return s
}

func (s *MemoryStore) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	e, exists := s.entries[key]

	// An expired entry is replaced, not mutated, so a stale resetAt can
	// never leak into a fresh window.
	if !exists || !now.Before(e.resetAt) {
		e = &entry{
			count:        1,
			resetAt:      now.Add(window),
			firstRequest: now,
		}
		s.entries[key] = e
		return e.count, e.resetAt, nil
	}

	e.count++
	return e.count, e.resetAt, nil
}

func (s *MemoryStore) Decrement(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.entries[key]
	if !exists || !time.Now().Before(e.resetAt) || e.count == 0 {
		return nil
	}

	e.count--
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, key string) (int64, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.entries[key]
	if !exists || !time.Now().Before(e.resetAt) {
		return 0, time.Time{}, nil
	}

	return e.count, e.resetAt, nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

func (s *MemoryStore) Sweep(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var removed int64
	for key, e := range s.entries {
		if !now.Before(e.resetAt) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed, nil
}

func (s *MemoryStore) sweepLoop() {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_, _ = s.Sweep(context.Background())
		case <-s.stopSweep:
			return
		}
	}
}

// Close stops the background sweep goroutine.
func (s *MemoryStore) Close() error {
	s.sweepOnce.Do(func() {
		close(s.stopSweep)
	})
	return nil
}
