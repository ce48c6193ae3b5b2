// Package cache is the result-cache abstraction used by the search service.
//
// A Store is a keyed, time-bounded memo. Entries are written once and live
// until their TTL lapses; there is deliberately no invalidation hook tied to
// catalog writes, so a product edit becomes visible in cached search results
// only after the TTL of those results has passed. Callers that need fresher
// data must shorten the TTL, not evict.
//
// Two drivers ship with the package: an in-process TTL map (NewMemory) and
// Redis (NewRedis). Each application instance owns its own memory store, so
// identical queries against two instances may each compute once.
package cache

import (
	"context"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

// Store is implemented by every cache driver.
type Store interface {
	// Get decodes the value stored under key into dest. It reports false
	// when the key is absent or expired.
	Get(ctx context.Context, key string, dest any) (bool, error)

	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error

	// Delete removes keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// Flush removes every key owned by this store.
	Flush(ctx context.Context) error

	// Driver names the backend for metrics and logs ("memory", "redis").
	Driver() string
}

// Remember is a read-through lookup. On a hit the cached value is returned
// with hit=true. On a miss compute runs and, only if it succeeds, its result
// is stored for ttl. A compute error is returned as-is and nothing is
// cached. Cache read/write faults degrade to recomputation and are logged.
//
// Concurrent misses on the same key may each run compute; that is accepted.
func Remember[T any](ctx context.Context, s Store, key string, ttl time.Duration, compute func(context.Context) (T, error)) (T, bool, error) {
	var cached T
	ok, err := s.Get(ctx, key, &cached)
	if err != nil {
		logger.WithCtx(ctx).Warn("cache read failed", "driver", s.Driver(), "key", key, "error", err)
	}
	metrics.RecordCache(s.Driver(), ok)
	if ok {
		return cached, true, nil
	}

	fresh, err := compute(ctx)
	if err != nil {
		var zero T
		return zero, false, err
	}

	if err := s.Set(ctx, key, fresh, ttl); err != nil {
		logger.WithCtx(ctx).Warn("cache write failed", "driver", s.Driver(), "key", key, "error", err)
	}
	return fresh, false, nil
}
