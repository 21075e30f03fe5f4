// Package ratelimit serializes access to a shared upstream so consecutive
// requests are spaced out by a minimum interval plus a fixed safety margin.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter gates callers so that two consecutive Wait returns are separated
// by at least the configured minimum interval plus the safety delay. All
// goroutines sharing a Limiter share the same clock.
type Limiter interface {
	// Wait blocks until the caller may proceed or ctx is done. On success
	// it returns nil and the caller owns the next request slot.
	Wait(ctx context.Context) error
}

type config struct {
	minInterval time.Duration
	safetyDelay time.Duration
}

// Option customizes the limiter returned by New.
type Option func(*config)

type limiter struct {
	mu          sync.Mutex
	minInterval time.Duration
	safetyDelay time.Duration
	lastRequest time.Time
}

var _ Limiter = (*limiter)(nil)

// New builds a Limiter. Defaults: 10s minimum interval, 500ms safety delay.
func New(opts ...Option) Limiter {
	cfg := config{
		minInterval: 10 * time.Second,
		safetyDelay: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &limiter{
		minInterval: cfg.minInterval,
		safetyDelay: cfg.safetyDelay,
	}
}

func (l *limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.lastRequest.IsZero() {
		if wait := l.minInterval - time.Since(l.lastRequest); wait > 0 {
			if err := sleep(ctx, wait); err != nil {
				return err
			}
		}
	}

	if err := sleep(ctx, l.safetyDelay); err != nil {
		return err
	}

	// Stamped after the safety delay so the gap between two grants is
	// always at least minInterval+safetyDelay.
	l.lastRequest = time.Now()
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// WithMinInterval sets the minimum spacing between granted requests.
func WithMinInterval(d time.Duration) Option {
	return func(c *config) {
		c.minInterval = d
	}
}

// WithSafetyDelay sets the fixed pause applied before every grant.
func WithSafetyDelay(d time.Duration) Option {
	return func(c *config) {
		c.safetyDelay = d
	}
}
