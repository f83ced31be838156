package align

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

// countingScorer counts calls to the wrapped scorer.
type countingScorer struct {
	inner Scorer
	calls atomic.Int32
}

func (c *countingScorer) Score(fragment, query string) float64 {
	c.calls.Add(1)
	return c.inner.Score(fragment, query)
}

func TestCachedScorer_HitSkipsInner(t *testing.T) {
	// Given: a cached scorer around a counting scorer
	inner := &countingScorer{inner: NewDefault(true)}
	cached := NewCachedScorer(inner, 16)

	// When: scoring the same pair twice
	first := cached.Score("React Hooks", "react")
	second := cached.Score("React Hooks", "react")

	// Then: the inner scorer ran once and both costs agree
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), inner.calls.Load())
	assert.Equal(t, 1, cached.Len())
}

func TestCachedScorer_DistinctPairs(t *testing.T) {
	inner := &countingScorer{inner: NewDefault(true)}
	cached := NewCachedScorer(inner, 16)

	cached.Score("ab", "a")
	cached.Score("a", "ab")

	assert.Equal(t, int32(2), inner.calls.Load())
	assert.Equal(t, 2, cached.Len())
}

func TestCachedScorer_EvictsOldest(t *testing.T) {
	cached := NewCachedScorer(NewDefault(true), 2)

	cached.Score("a", "q")
	cached.Score("b", "q")
	cached.Score("c", "q")

	assert.Equal(t, 2, cached.Len())
}

func TestCachedScorer_DefaultSize(t *testing.T) {
	cached := NewCachedScorer(NewDefault(true), 0)
	assert.NotNil(t, cached)

	cached.Purge()
	assert.Equal(t, 0, cached.Len())
}

func TestCachedScorer_ConcurrentUse(t *testing.T) {
	cached := NewCachedScorer(NewDefault(false), 64)
	want := NewDefault(false).Score("Persisting State in React", "per in")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, cached.Score("Persisting State in React", "per in"))
		}()
	}
	wg.Wait()
}
