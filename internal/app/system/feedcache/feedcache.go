// Package feedcache provides a small process-wide TTL cache for computed
// feed pages.
//
// Entries are never invalidated by writes; they simply age out after the
// TTL. The mutex guards only the map: values are computed outside the lock,
// so two concurrent misses on the same key both compute and the last writer
// wins.
package feedcache

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Clock supplies the current time. Inject a manual clock in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

var lookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "inkwell_feed_cache_lookups_total",
	Help: "Feed cache lookups partitioned by cache name and result (hit or miss).",
}, []string{"cache", "result"})

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache maps keys to values that expire TTL after they were stored.
// It is safe for concurrent use.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]entry[V]
	ttl     time.Duration
	clock   Clock

	hits   prometheus.Counter
	misses prometheus.Counter
}

// New creates a cache. name labels the hit/miss metrics; a nil clock means
// the system clock.
func New[K comparable, V any](name string, ttl time.Duration, clock Clock) *Cache[K, V] {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Cache[K, V]{
		entries: make(map[K]entry[V]),
		ttl:     ttl,
		clock:   clock,
		hits:    lookups.WithLabelValues(name, "hit"),
		misses:  lookups.WithLabelValues(name, "miss"),
	}
}

// TTL returns the configured time-to-live.
func (c *Cache[K, V]) TTL() time.Duration { return c.ttl }

// Get returns the fresh value for key, if any.
// An entry is fresh while now is strictly before its expiry.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || !c.clock.Now().Before(e.expiresAt) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key with a fresh expiry and drops any entries that
// have already expired.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = entry[V]{value: value, expiresAt: now.Add(c.ttl)}
}

// Len returns the number of stored entries, fresh or not.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// GetOrLoad returns the fresh value for key, or calls load and stores its
// result. Errors from load are returned and nothing is stored.
func (c *Cache[K, V]) GetOrLoad(ctx context.Context, key K, load func(context.Context) (V, error)) (V, error) {
	return c.GetOrLoadAs(ctx, key, func(ctx context.Context) (K, V, error) {
		v, err := load(ctx)
		return key, v, err
	})
}

// GetOrLoadAs is GetOrLoad for loaders that resolve key to a canonical one.
// The loaded value is stored under the key load returns, so many requested
// keys that resolve alike share one entry.
func (c *Cache[K, V]) GetOrLoadAs(ctx context.Context, key K, load func(context.Context) (K, V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		c.hits.Inc()
		return v, nil
	}
	c.misses.Inc()

	stored, v, err := load(ctx)
	if err != nil {
		var zero V
		return zero, err
	}
	c.Set(stored, v)
	return v, nil
}
