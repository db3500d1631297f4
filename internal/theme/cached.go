package theme

import (
	"context"

	"github.com/dsabanin/pygmentskit/internal/cachemanager"
)

// resolution is what the cache stores per selector, misses included.
type resolution struct {
	Scope Scope
	Found bool
}

// Cached memoizes another Theme's resolutions, including misses. A parse asks
// the same handful of selectors over and over.
type Cached struct {
	name  string
	inner Theme
	cache *cachemanager.ReadThroughCache[resolution]
}

var _ Theme = (*Cached)(nil)

// NewCached wraps inner. Entries never expire, so inner must not change
// afterwards.
func NewCached(name string, inner Theme) *Cached {
	store := cachemanager.NewInMemoryCacheManager[resolution](
		"theme:"+name, cachemanager.NoExpiration, cachemanager.DefaultCleanupInterval)

	return &Cached{
		name:  name,
		inner: inner,
		cache: cachemanager.NewReadThroughCache[resolution](store, cachemanager.NoExpiration,
			func(_ context.Context, selector string) (resolution, error) {
				scope, ok := inner.ResolveScope(selector)
				return resolution{Scope: scope, Found: ok}, nil
			}),
	}
}

// Name returns the name the theme was loaded under.
func (c *Cached) Name() string {
	return c.name
}

// ResolveScope implements Theme.
func (c *Cached) ResolveScope(selector string) (Scope, bool) {
	// The loader never fails.
	res, _ := c.cache.Get(context.Background(), selector)
	return res.Scope, res.Found
}

// Stats returns cache hits and misses.
func (c *Cached) Stats() (hits, misses int64) {
	return c.cache.Stats()
}
