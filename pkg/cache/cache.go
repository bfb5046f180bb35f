// Package cache provides a content-addressed memoization cache with
// singleflight deduplication, time-based expiry, and an LRU capacity bound.
// It guards expensive, otherwise-deterministic analysis computations.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/quillflow/quill/internal/logging"
)

// Hooks receives cache access events, e.g. to feed metrics.
type Hooks struct {
	OnHit  func(key string)
	OnMiss func(key string)
}

// ResultCache memoizes computed values by fingerprint key.
// Concurrent callers for the same key collapse into a single computation;
// errors are never stored (no negative caching).
type ResultCache[V any] struct {
	entries *expirable.LRU[string, V]
	group   singleflight.Group
	hooks   Hooks
	logger  *slog.Logger
}

// Option configures a ResultCache.
type Option[V any] func(*ResultCache[V])

// WithHooks registers access hooks.
func WithHooks[V any](hooks Hooks) Option[V] {
	return func(c *ResultCache[V]) {
		c.hooks = hooks
	}
}

// WithLogger configures a logger for the cache.
func WithLogger[V any](logger *slog.Logger) Option[V] {
	return func(c *ResultCache[V]) {
		c.logger = logger
	}
}

// New creates a ResultCache bounded to size entries, each live for ttl.
// A size of 0 means an unbounded entry count (expiry still applies).
func New[V any](size int, ttl time.Duration, opts ...Option[V]) *ResultCache[V] {
	c := &ResultCache[V]{
		entries: expirable.NewLRU[string, V](size, nil, ttl),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrCompute returns the live value for key, or invokes compute exactly once
// among all concurrent callers sharing key and stores its result with a fresh
// expiry. A failed compute stores nothing and propagates the error to every
// waiter attached to that flight.
func (c *ResultCache[V]) GetOrCompute(ctx context.Context, key string, compute func(ctx context.Context) (V, error)) (V, error) {
	if v, ok := c.entries.Get(key); ok {
		c.hit(key)
		return v, nil
	}

	// computed stays false for callers that join an in-flight computation or
	// land on the re-check; those are hits for accounting purposes.
	var computed bool
	v, err, shared := c.group.Do(key, func() (any, error) {
		// Re-check inside the flight: a concurrent caller may have
		// completed and stored between our Get and Do.
		if v, ok := c.entries.Get(key); ok {
			return v, nil
		}
		computed = true
		c.miss(key)

		v, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		c.entries.Add(key, v)
		return v, nil
	})
	if err != nil {
		// Drop the flight so the next caller retries the computation.
		c.group.Forget(key)
		var zero V
		return zero, err
	}

	if !computed {
		c.hit(key)
	}
	if shared {
		c.logger.Debug("computation deduplicated", "key", key)
	}
	return v.(V), nil
}

// Remove evicts the entry for key, if present.
func (c *ResultCache[V]) Remove(key string) {
	c.entries.Remove(key)
}

// Len returns the number of live entries.
func (c *ResultCache[V]) Len() int {
	return c.entries.Len()
}

func (c *ResultCache[V]) hit(key string) {
	if c.hooks.OnHit != nil {
		c.hooks.OnHit(key)
	}
}

func (c *ResultCache[V]) miss(key string) {
	if c.hooks.OnMiss != nil {
		c.hooks.OnMiss(key)
	}
}
