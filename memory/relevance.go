package memory

import (
	"sort"
	"strings"
)

// Default query parameters.
const (
	// DefaultThreshold is the minimum relevance score a result must reach.
	DefaultThreshold = 0.3

	// DefaultLimit is the maximum number of results returned.
	DefaultLimit = 5
)

// Relevance weights. Each term of the score is optional and contributes
// zero when its inputs are absent; the sum is capped at 1.0. These values
// are a behavioral contract.
const (
	keywordWeight = 0.4
	domainWeight  = 0.3
	recencyWeight = 0.2
	successWeight = 0.1

	// recencyHorizonDays is where the linear recency term reaches zero.
	recencyHorizonDays = 30
)

// Query selects relevant past interactions.
type Query struct {
	// Keywords are matched case-insensitively as substrings against the
	// interaction's prompt and response text.
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`

	// Domain matches against interaction tags.
	Domain string `json:"domain,omitempty" yaml:"domain,omitempty"`

	// Threshold is the minimum relevance score, DefaultThreshold when zero.
	Threshold float64 `json:"threshold,omitempty" yaml:"threshold,omitempty"`
}

func (q Query) threshold() float64 {
	if q.Threshold <= 0 {
		return DefaultThreshold
	}
	return q.Threshold
}

// RelevantMemories returns up to limit successful past interactions scoring
// at or above the query threshold, ordered by descending relevance. Equal
// scores preserve insertion order. Failed interactions are never returned.
//
// A limit of zero or less uses DefaultLimit.
func (s *Store) RelevantMemories(q Query, limit int) []Result {
	if limit <= 0 {
		limit = DefaultLimit
	}

	if cached, ok := s.cache.get(s.version, q, limit); ok {
		return cached
	}

	threshold := q.threshold()
	var results []Result
	n := s.interactions.len()
	for i := 0; i < n; i++ {
		in := s.interactions.at(i)
		if !in.Success {
			continue
		}
		score := relevanceScore(in, q.Keywords, q.Domain)
		if score >= threshold {
			results = append(results, Result{Interaction: *in, Score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}

	s.cache.set(s.version, q, limit, results)
	// Hand back copies so callers never alias live store records.
	return cloneResults(results)
}

// relevanceScore computes the bounded [0, 1] relevance of an interaction:
// keyword overlap x0.4, domain tag match +0.3, linear recency over 30 days
// x0.2, success +0.1.
func relevanceScore(in *Interaction, keywords []string, domain string) float64 {
	var score float64

	if len(keywords) > 0 {
		text := strings.ToLower(in.Prompt + " " + in.Response)
		matched := 0
		for _, kw := range keywords {
			if kw == "" {
				continue
			}
			if strings.Contains(text, strings.ToLower(kw)) {
				matched++
			}
		}
		score += float64(matched) / float64(len(keywords)) * keywordWeight
	}

	if domain != "" && in.HasTag(domain) {
		score += domainWeight
	}

	recency := 1 - in.AgeInDays()/recencyHorizonDays
	if recency > 0 {
		score += recency * recencyWeight
	}

	if in.Success {
		score += successWeight
	}

	if score > 1 {
		score = 1
	}
	return score
}
