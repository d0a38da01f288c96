package memory

import (
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto"
)

// queryCache memoizes relevance query results. Keys embed the store's
// mutation version, so any append, feedback, or compression invalidates
// prior entries by construction, plus a coarse time bucket, so recency
// decay cannot serve stale scores on a quiescent store. A nil *queryCache
// is a disabled cache.
type queryCache struct {
	cache *ristretto.Cache
	now   func() time.Time
}

// cacheBucket bounds how long an entry stays addressable. Recency decays
// over a 30-day horizon, so a minute of staleness is far below scoring
// resolution.
const cacheBucket = time.Minute

func newQueryCache() (*queryCache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10_000,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &queryCache{cache: cache, now: time.Now}, nil
}

func (c *queryCache) get(version uint64, q Query, limit int) ([]Result, bool) {
	if c == nil {
		return nil, false
	}
	val, ok := c.cache.Get(cacheKey(version, c.bucket(), q, limit))
	if !ok {
		return nil, false
	}
	results, ok := val.([]Result)
	if !ok {
		return nil, false
	}
	return cloneResults(results), true
}

func (c *queryCache) set(version uint64, q Query, limit int, results []Result) {
	if c == nil {
		return
	}
	c.cache.Set(cacheKey(version, c.bucket(), q, limit), cloneResults(results), int64(len(results))+1)
}

// wait flushes buffered writes. Test helper; ristretto applies sets
// asynchronously.
func (c *queryCache) wait() {
	if c != nil {
		c.cache.Wait()
	}
}

func (c *queryCache) bucket() int64 {
	return c.now().UnixNano() / int64(cacheBucket)
}

func cacheKey(version uint64, bucket int64, q Query, limit int) string {
	return fmt.Sprintf("%d|%d|%s|%.4f|%d|%s",
		version, bucket, q.Domain, q.threshold(), limit, strings.Join(q.Keywords, ","))
}

// cloneResults deep-copies results so cached entries never alias live
// store records.
func cloneResults(results []Result) []Result {
	if results == nil {
		return nil
	}
	out := make([]Result, len(results))
	for i, r := range results {
		out[i] = r
		if r.Tags != nil {
			out[i].Tags = append([]string(nil), r.Tags...)
		}
		if r.Feedback != nil {
			fb := *r.Feedback
			out[i].Feedback = &fb
		}
	}
	return out
}
