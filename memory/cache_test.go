package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cachedStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore("agent-1", WithQueryCache())
	require.NotNil(t, s.cache)
	// Pin the cache clock so tests never straddle a bucket boundary.
	pinned := time.Now()
	s.cache.now = func() time.Time { return pinned }
	for i := 0; i < 6; i++ {
		s.RecordInteraction(Interaction{
			Prompt:   "deploy the staging cluster",
			Response: "done",
			Success:  true,
			Duration: time.Second,
			Tags:     []string{"devops"},
		})
	}
	return s
}

func TestQueryCache_Hit(t *testing.T) {
	s := cachedStore(t)
	q := Query{Keywords: []string{"deploy", "staging"}}

	first := s.RelevantMemories(q, 3)
	s.cache.wait()
	second := s.RelevantMemories(q, 3)

	assert.Equal(t, first, second)

	cached, ok := s.cache.get(s.version, q, 3)
	require.True(t, ok)
	assert.Equal(t, first, cached)

}

func TestQueryCache_ExpiresWithTimeBucket(t *testing.T) {
	s := cachedStore(t)
	q := Query{Keywords: []string{"deploy"}}

	s.RelevantMemories(q, 3)
	s.cache.wait()

	_, ok := s.cache.get(s.version, q, 3)
	require.True(t, ok)

	// Advancing the clock past the bucket makes the entry unaddressable,
	// so recency decay can never serve stale scores.
	pinned := s.cache.now()
	s.cache.now = func() time.Time { return pinned.Add(cacheBucket + time.Second) }

	_, ok = s.cache.get(s.version, q, 3)
	assert.False(t, ok)
}

func TestQueryCache_InvalidatedByMutation(t *testing.T) {
	s := cachedStore(t)
	q := Query{Keywords: []string{"deploy"}}

	s.RelevantMemories(q, 3)
	s.cache.wait()
	before := s.version

	s.RecordInteraction(Interaction{
		Prompt:  "deploy yet another service",
		Success: true,
	})

	assert.NotEqual(t, before, s.version)
	_, ok := s.cache.get(s.version, q, 3)
	assert.False(t, ok)

	// The fresh query sees the new interaction.
	results := s.RelevantMemories(q, 10)
	assert.Len(t, results, 7)
}

func TestQueryCache_ReturnsCopies(t *testing.T) {
	s := cachedStore(t)
	q := Query{Keywords: []string{"deploy"}}

	first := s.RelevantMemories(q, 1)
	require.Len(t, first, 1)
	s.cache.wait()

	// Mutating a returned result must not leak into the cache.
	first[0].Tags[0] = "tampered"
	first[0].Prompt = "tampered"

	second := s.RelevantMemories(q, 1)
	require.Len(t, second, 1)
	assert.Equal(t, "devops", second[0].Tags[0])
	assert.Equal(t, "deploy the staging cluster", second[0].Prompt)
}

func TestQueryCache_Disabled(t *testing.T) {
	s := NewStore("agent-1")
	assert.Nil(t, s.cache)

	s.RecordInteraction(Interaction{Prompt: "deploy now", Success: true})

	// Queries work identically without a cache.
	results := s.RelevantMemories(Query{Keywords: []string{"deploy"}}, 5)
	assert.Len(t, results, 1)

	// nil receiver methods are safe no-ops.
	var c *queryCache
	_, ok := c.get(1, Query{}, 5)
	assert.False(t, ok)
	c.set(1, Query{}, 5, nil)
	c.wait()
}

func TestCacheKey_DistinguishesQueries(t *testing.T) {
	base := cacheKey(1, 7, Query{Keywords: []string{"a", "b"}, Domain: "ops"}, 5)

	assert.NotEqual(t, base, cacheKey(2, 7, Query{Keywords: []string{"a", "b"}, Domain: "ops"}, 5))
	assert.NotEqual(t, base, cacheKey(1, 8, Query{Keywords: []string{"a", "b"}, Domain: "ops"}, 5))
	assert.NotEqual(t, base, cacheKey(1, 7, Query{Keywords: []string{"a"}, Domain: "ops"}, 5))
	assert.NotEqual(t, base, cacheKey(1, 7, Query{Keywords: []string{"a", "b"}}, 5))
	assert.NotEqual(t, base, cacheKey(1, 7, Query{Keywords: []string{"a", "b"}, Domain: "ops"}, 3))
}
