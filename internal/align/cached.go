package align

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultScoreCacheSize is the number of (fragment, query) costs kept when a
// non-positive size is requested.
const DefaultScoreCacheSize = 4096

type pairKey struct {
	fragment string
	query    string
}

// CachedScorer memoizes the costs of an inner Scorer in an LRU cache.
// Only per-fragment costs are cached; ranking is always recomputed.
// Safe for concurrent use.
type CachedScorer struct {
	inner Scorer
	cache *lru.Cache[pairKey, float64]
}

// NewCachedScorer wraps inner with an LRU of the given size.
func NewCachedScorer(inner Scorer, size int) *CachedScorer {
	if size <= 0 {
		size = DefaultScoreCacheSize
	}
	cache, _ := lru.New[pairKey, float64](size)
	return &CachedScorer{
		inner: inner,
		cache: cache,
	}
}

// Score returns the cached cost if present, otherwise computes and stores it.
func (c *CachedScorer) Score(fragment, query string) float64 {
	key := pairKey{fragment: fragment, query: query}
	if cost, ok := c.cache.Get(key); ok {
		return cost
	}

	cost := c.inner.Score(fragment, query)
	c.cache.Add(key, cost)
	return cost
}

// Len returns the number of cached costs.
func (c *CachedScorer) Len() int {
	return c.cache.Len()
}

// Purge drops every cached cost.
func (c *CachedScorer) Purge() {
	c.cache.Purge()
}
