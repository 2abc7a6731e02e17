package ratelimit

import (
	"context"
	"time"
)

// Limiter enforces a single policy against a store.
type Limiter struct {
	store  Store
	config Config
}

// New creates a limiter for the given policy.
func New(store Store, cfg Config) (*Limiter, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if cfg.Max <= 0 {
		return nil, ErrInvalidMax
	}
	if cfg.Window <= 0 {
		return nil, ErrInvalidWindow
	}
	return &Limiter{store: store, config: cfg}, nil
}

// Config returns the limiter's policy.
func (l *Limiter) Config() Config {
	return l.config
}

// Allow performs the check-and-increment for key. The increment happens
// unconditionally; callers honoring the policy's counting exemptions refund
// it via Refund once the request outcome is known.
func (l *Limiter) Allow(ctx context.Context, key string) (*Result, error) {
	if key == "" {
		return nil, ErrKeyRequired
	}

	count, resetAt, err := l.store.Increment(ctx, key, l.config.Window)
	if err != nil {
		return nil, err
	}

	return l.result(count, resetAt), nil
}

// Status reports the current window state for key without counting a request.
func (l *Limiter) Status(ctx context.Context, key string) (*Result, error) {
	if key == "" {
		return nil, ErrKeyRequired
	}

	count, resetAt, err := l.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if resetAt.IsZero() {
		resetAt = time.Now().Add(l.config.Window)
	}

	res := l.result(count, resetAt)
	res.Allowed = count < int64(l.config.Max)
	return res, nil
}

// Refund returns one slot to the current window, used to exempt a request
// from counting after its outcome is known.
func (l *Limiter) Refund(ctx context.Context, key string) error {
	if key == "" {
		return ErrKeyRequired
	}
	return l.store.Decrement(ctx, key)
}

// Reset clears the window for key.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	if key == "" {
		return ErrKeyRequired
	}
	return l.store.Delete(ctx, key)
}

func (l *Limiter) result(count int64, resetAt time.Time) *Result {
	return &Result{
		Allowed:   count <= int64(l.config.Max),
		Limit:     l.config.Max,
		Count:     count,
		Remaining: max(0, l.config.Max-int(count)),
		ResetAt:   resetAt,
	}
}
