package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelevantMemories_NeverReturnsFailures(t *testing.T) {
	s := NewStore("agent-1")

	s.RecordInteraction(Interaction{Prompt: "deploy staging", Response: "done", Success: true})
	s.RecordInteraction(Interaction{Prompt: "deploy staging", Response: "failed", Success: false})
	s.RecordInteraction(Interaction{Prompt: "deploy staging", Response: "done again", Success: true})

	results := s.RelevantMemories(Query{Keywords: []string{"deploy", "staging"}}, 10)

	require.Len(t, results, 2)
	for _, r := range results {
		assert.True(t, r.Success, "failed interactions must never be returned")
	}
}

func TestRelevantMemories_KeywordOverlap(t *testing.T) {
	s := NewStore("agent-1")

	s.RecordInteraction(Interaction{Prompt: "deploy the staging cluster", Success: true})
	s.RecordInteraction(Interaction{Prompt: "write release notes", Success: true})

	results := s.RelevantMemories(Query{Keywords: []string{"deploy", "staging"}}, 5)

	require.Len(t, results, 1)
	assert.Contains(t, results[0].Prompt, "deploy")
	// Full overlap 0.4 + fresh recency ~0.2 + success 0.1.
	assert.InDelta(t, 0.7, results[0].Score, 0.01)
}

func TestRelevantMemories_DomainBonus(t *testing.T) {
	s := NewStore("agent-1")

	s.RecordInteraction(Interaction{Prompt: "scale the deployment", Success: true, Tags: []string{"kubernetes"}})
	s.RecordInteraction(Interaction{Prompt: "scale the deployment", Success: true})

	results := s.RelevantMemories(Query{Keywords: []string{"scale"}, Domain: "kubernetes"}, 5)

	require.Len(t, results, 2)
	assert.True(t, results[0].HasTag("kubernetes"))
	assert.InDelta(t, domainWeight, results[0].Score-results[1].Score, 0.01)
}

func TestRelevantMemories_Threshold(t *testing.T) {
	s := NewStore("agent-1")

	// Old interaction: no recency, keyword overlap 0.5*0.4=0.2 + success 0.1 = 0.3.
	s.RecordInteraction(Interaction{
		Prompt:    "deploy something",
		Success:   true,
		Timestamp: time.Now().Add(-60 * 24 * time.Hour),
	})

	// Meets the default 0.3 threshold exactly.
	results := s.RelevantMemories(Query{Keywords: []string{"deploy", "rollback"}}, 5)
	assert.Len(t, results, 1)

	// A higher threshold filters it out.
	results = s.RelevantMemories(Query{Keywords: []string{"deploy", "rollback"}, Threshold: 0.5}, 5)
	assert.Empty(t, results)
}

func TestRelevantMemories_RecencyDecay(t *testing.T) {
	s := NewStore("agent-1")

	s.RecordInteraction(Interaction{
		Prompt:    "rotate the api keys",
		Success:   true,
		Timestamp: time.Now().Add(-15 * 24 * time.Hour), // half horizon
	})

	results := s.RelevantMemories(Query{Keywords: []string{"rotate"}}, 5)

	require.Len(t, results, 1)
	// 0.4 keyword + 0.5*0.2 recency + 0.1 success.
	assert.InDelta(t, 0.6, results[0].Score, 0.01)
}

func TestRelevantMemories_SortAndLimit(t *testing.T) {
	s := NewStore("agent-1")

	// Past the recency horizon the recency term is exactly zero, so alpha
	// and delta score identically and the stable sort's insertion-order
	// tie-break is actually exercised.
	old := time.Now().Add(-40 * 24 * time.Hour)
	s.RecordInteraction(Interaction{Prompt: "deploy alpha", Success: true, Timestamp: old})
	s.RecordInteraction(Interaction{Prompt: "deploy beta and gamma staging", Success: true, Timestamp: old})
	s.RecordInteraction(Interaction{Prompt: "deploy delta", Success: true, Timestamp: old})

	results := s.RelevantMemories(Query{Keywords: []string{"deploy", "staging"}}, 2)

	require.Len(t, results, 2)
	// Highest score first; equal scores keep insertion order.
	assert.Contains(t, results[0].Prompt, "staging")
	assert.Contains(t, results[1].Prompt, "alpha")
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
}

func TestRelevantMemories_ScoreCap(t *testing.T) {
	s := NewStore("agent-1")

	s.RecordInteraction(Interaction{
		Prompt:  "deploy staging cluster with rollback plan",
		Success: true,
		Tags:    []string{"deployment"},
	})

	results := s.RelevantMemories(Query{
		Keywords: []string{"deploy", "staging", "cluster", "rollback"},
		Domain:   "deployment",
	}, 5)

	require.Len(t, results, 1)
	assert.LessOrEqual(t, results[0].Score, 1.0)
}

func TestRelevantMemories_CaseInsensitive(t *testing.T) {
	s := NewStore("agent-1")

	s.RecordInteraction(Interaction{Prompt: "Deploy STAGING cluster", Success: true})

	results := s.RelevantMemories(Query{Keywords: []string{"deploy", "staging"}}, 5)
	assert.Len(t, results, 1)
}

func TestRelevantMemories_DefaultLimit(t *testing.T) {
	s := NewStore("agent-1")

	for i := 0; i < 10; i++ {
		s.RecordInteraction(Interaction{Prompt: "deploy the service", Success: true})
	}

	results := s.RelevantMemories(Query{Keywords: []string{"deploy"}}, 0)
	assert.Len(t, results, DefaultLimit)
}
