package cachemanager

import (
	"context"
	"sync/atomic"
	"time"
)

// Loader produces the value for a key on a cache miss.
type Loader[V any] func(ctx context.Context, key string) (V, error)

// ReadThroughCache answers from the cache and falls back to a Loader, storing
// what it loads. Loader errors are returned and never cached.
type ReadThroughCache[V any] struct {
	cache CacheManager[V]
	load  Loader[V]
	ttl   time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

// NewReadThroughCache returns a cache that stores loaded values in cache for ttl.
func NewReadThroughCache[V any](cache CacheManager[V], ttl time.Duration, load Loader[V]) *ReadThroughCache[V] {
	return &ReadThroughCache[V]{
		cache: cache,
		load:  load,
		ttl:   ttl,
	}
}

// Get returns the cached value for key, loading and storing it on a miss.
func (r *ReadThroughCache[V]) Get(ctx context.Context, key string) (V, error) {
	if value, ok := r.cache.Get(ctx, key); ok {
		r.hits.Add(1)
		return value, nil
	}
	r.misses.Add(1)

	value, err := r.load(ctx, key)
	if err != nil {
		return value, err
	}

	r.cache.Set(ctx, key, value, r.ttl)
	return value, nil
}

// Stats returns the hit and miss counts since construction.
func (r *ReadThroughCache[V]) Stats() (hits, misses int64) {
	return r.hits.Load(), r.misses.Load()
}
