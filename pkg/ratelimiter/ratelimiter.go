// Package ratelimiter provides fixed-window rate limiting keyed by client
// identity.
//
// Each protected route carries its own (window, limit) pair. When a window
// elapses the counter resets to zero rather than sliding continuously, which
// is simpler and sufficient for abuse deterrence at the cost of allowing a
// burst at window boundaries. Counters live in process memory: the budget is
// per server instance, and horizontal scaling would need a shared store.
package ratelimiter

import (
	"context"
	"fmt"
	"time"
)

// Config defines the request budget for one rule.
type Config struct {
	// Limit is the maximum number of requests allowed per window.
	Limit int
	// Window is the fixed window duration.
	Window time.Duration
}

// Validate reports whether the config describes a usable budget.
func (c Config) Validate() error {
	if c.Limit <= 0 {
		return fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidConfig, c.Limit)
	}
	if c.Window <= 0 {
		return fmt.Errorf("%w: window must be positive, got %v", ErrInvalidConfig, c.Window)
	}
	return nil
}

// Result describes the outcome of a single Allow call.
type Result struct {
	// Limit is the configured budget for the rule.
	Limit int
	// Remaining is the budget left in the current window. Negative when the
	// request that produced this result was rejected.
	Remaining int
	// ResetAt is when the current window elapses and the counter resets.
	ResetAt time.Time
}

// Allowed reports whether the request fits the budget.
func (r *Result) Allowed() bool {
	return r.Remaining >= 0
}

// RetryAfter returns how long the client should wait before retrying.
// Zero when the request was allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed() {
		return 0
	}
	return time.Until(r.ResetAt)
}

// Store persists per-key window counters.
// Implementations must make Increment atomic with respect to other requests
// for the same key.
type Store interface {
	// Increment bumps the counter for key within the current window, creating
	// the window lazily, and returns the new count and when the window resets.
	Increment(ctx context.Context, key string, window time.Duration) (count int, resetAt time.Time, err error)
	// Decrement refunds one request from the current window, never dropping
	// the counter below zero.
	Decrement(ctx context.Context, key string) error
	// Reset discards the counter for key.
	Reset(ctx context.Context, key string) error
}

// Limiter enforces one named budget over a Store.
type Limiter struct {
	store  Store
	config Config
}

// New creates a limiter for the given budget.
func New(store Store, config Config) (*Limiter, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store is required", ErrInvalidConfig)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Limiter{store: store, config: config}, nil
}

// Allow records a request for key and reports whether it fits the budget.
// The request is counted even when rejected; rejected requests still consume
// nothing extra because the counter is already over the limit.
func (l *Limiter) Allow(ctx context.Context, key string) (*Result, error) {
	count, resetAt, err := l.store.Increment(ctx, key, l.config.Window)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	return &Result{
		Limit:     l.config.Limit,
		Remaining: l.config.Limit - count,
		ResetAt:   resetAt,
	}, nil
}

// Forgive refunds one previously counted request for key.
// The login rule uses this so successful logins do not consume budget and a
// legitimately busy admin is never locked out by their own activity.
func (l *Limiter) Forgive(ctx context.Context, key string) error {
	if err := l.store.Decrement(ctx, key); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return nil
}

// Reset clears the counter for key, an administrative override.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	return l.store.Reset(ctx, key)
}
