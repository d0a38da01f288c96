package memory

import (
	"time"
)

// Capacity limits on stored interaction history. These are structural: the
// interaction sequence is a fixed-capacity ring, and prompt/response text is
// truncated on record.
const (
	// MaxInteractions is the maximum number of retained interactions.
	MaxInteractions = 100

	// MaxPromptLen is the maximum stored prompt length in characters.
	MaxPromptLen = 500

	// MaxResponseLen is the maximum stored response length in characters.
	MaxResponseLen = 1000
)

// Expertise levels returned by Store.DomainExpertise.
const (
	LevelNovice       = "novice"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
	LevelExpert       = "expert"
)

// Trend classifications returned by Store.PerformanceTrends.
const (
	TrendImproving        = "improving"
	TrendDeclining        = "declining"
	TrendStable           = "stable"
	TrendInsufficientData = "insufficient_data"
)

// Feedback is caller-supplied judgement attached to a recorded interaction.
type Feedback struct {
	// Rating is a 1-10 quality rating, 0 when absent.
	Rating int `json:"rating,omitempty" yaml:"rating,omitempty"`

	// Category groups the feedback for per-category expertise tracking.
	Category string `json:"category,omitempty" yaml:"category,omitempty"`

	// Helpful indicates whether the response helped. Nil when the caller
	// gave no helpfulness signal; only a present boolean nudges the
	// adaptation score.
	Helpful *bool `json:"helpful,omitempty" yaml:"helpful,omitempty"`
}

// Interaction is one recorded agent exchange.
type Interaction struct {
	// ID is the unique interaction identifier, a ULID assigned on record.
	// ULIDs are lexically sortable, so IDs preserve insertion order.
	ID string `json:"id" yaml:"id"`

	// Timestamp is when the exchange happened. Defaults to record time.
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`

	// Prompt is the request text, truncated to MaxPromptLen on record.
	Prompt string `json:"prompt" yaml:"prompt"`

	// Response is the reply text, truncated to MaxResponseLen on record.
	Response string `json:"response" yaml:"response"`

	// Success indicates whether the exchange achieved its goal.
	Success bool `json:"success" yaml:"success"`

	// Duration is how long the exchange took.
	Duration time.Duration `json:"duration" yaml:"duration"`

	// Tokens is the token count consumed by the exchange.
	Tokens int `json:"tokens,omitempty" yaml:"tokens,omitempty"`

	// ContextID links the exchange to a knowledge.Context, if any.
	ContextID string `json:"context_id,omitempty" yaml:"context_id,omitempty"`

	// Feedback is attached after the fact via Store.RecordFeedback.
	Feedback *Feedback `json:"feedback,omitempty" yaml:"feedback,omitempty"`

	// Tags label the exchange with domains for relevance and expertise
	// selection.
	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// AgeInDays returns the fractional number of days since the interaction.
func (i *Interaction) AgeInDays() float64 {
	return time.Since(i.Timestamp).Hours() / 24
}

// HasTag returns true if the interaction carries the given tag.
func (i *Interaction) HasTag(tag string) bool {
	for _, t := range i.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Result is an interaction paired with its relevance score, as returned by
// Store.RelevantMemories. Results are ordered by descending score; equal
// scores preserve insertion order.
type Result struct {
	Interaction

	// Score is the relevance of this interaction to the query, in [0, 1].
	Score float64 `json:"score" yaml:"score"`
}

// KnowledgeEntry is one learned concept in a knowledge domain.
type KnowledgeEntry struct {
	// Value is the concept payload. Any JSON-serializable value.
	Value any `json:"value" yaml:"value"`

	// Confidence is the belief strength in [0, 1].
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// Source records where the knowledge came from.
	Source string `json:"source" yaml:"source"`

	// Reinforcements counts how many times the concept was re-asserted.
	Reinforcements int `json:"reinforcements" yaml:"reinforcements"`

	// Tags label the entry.
	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`

	// Timestamp is when the entry was last asserted.
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// ConceptNode is one reinforced concept in the lightweight knowledge graph.
type ConceptNode struct {
	// Concept is the concept name.
	Concept string `json:"concept" yaml:"concept"`

	// Value is the concept payload as first asserted.
	Value any `json:"value" yaml:"value"`

	// Confidence grows by 0.05 per reinforcement, capped at 0.95.
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// Reinforcements counts assertions of this concept.
	Reinforcements int `json:"reinforcements" yaml:"reinforcements"`
}

// KnowledgeGraph is a per-domain list of reinforced concept entries. It is
// not a general graph database; the only structure is the domain grouping.
type KnowledgeGraph struct {
	// Concepts maps a domain to its reinforced concept nodes.
	Concepts map[string][]ConceptNode `json:"concepts,omitempty" yaml:"concepts,omitempty"`
}

// Patterns holds recurring-usage signals extracted from interactions.
type Patterns struct {
	// Keywords is the top-10 prompt keyword frequency map.
	Keywords map[string]int `json:"keywords,omitempty" yaml:"keywords,omitempty"`

	// CommonHours is the top-5 hour-of-day frequency map.
	CommonHours map[int]int `json:"common_hours,omitempty" yaml:"common_hours,omitempty"`
}

// Performance holds rolling performance metrics derived from interactions.
type Performance struct {
	// SuccessRate is successes over total within the retained window,
	// recomputed after every interaction.
	SuccessRate float64 `json:"success_rate" yaml:"success_rate"`

	// AverageResponseTime is the mean duration over the retained window.
	AverageResponseTime time.Duration `json:"average_response_time" yaml:"average_response_time"`

	// TotalInteractions counts every interaction ever recorded, including
	// evicted ones.
	TotalInteractions int `json:"total_interactions" yaml:"total_interactions"`

	// ErrorCount counts every failed interaction ever recorded.
	ErrorCount int `json:"error_count" yaml:"error_count"`

	// ImprovementTrend is the latest trend classification.
	ImprovementTrend string `json:"improvement_trend" yaml:"improvement_trend"`
}

// RatingStat is a running mean rating for one feedback category.
type RatingStat struct {
	// Rating is the running mean of ratings received.
	Rating float64 `json:"rating" yaml:"rating"`

	// Count is the number of ratings folded into the mean.
	Count int `json:"count" yaml:"count"`
}

// Learning holds slow-moving adaptation signals.
type Learning struct {
	// AdaptationScore measures how well the agent responds to feedback,
	// clamped to [0.1, 0.95].
	AdaptationScore float64 `json:"adaptation_score" yaml:"adaptation_score"`

	// DomainExpertise tracks a running mean rating per feedback category.
	DomainExpertise map[string]RatingStat `json:"domain_expertise,omitempty" yaml:"domain_expertise,omitempty"`
}

// Adaptation score bounds and nudge sizes.
const (
	adaptationFloor   = 0.1
	adaptationCeiling = 0.95
	adaptationReward  = 0.02
	adaptationPenalty = 0.05
)

// Expertise summarizes an agent's standing in one domain.
type Expertise struct {
	// Level is one of novice, intermediate, advanced, expert.
	Level string `json:"level" yaml:"level"`

	// Confidence is the belief strength of the classification.
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// Experience is the number of interactions matched to the domain.
	Experience int `json:"experience" yaml:"experience"`

	// SuccessRate is the success rate over the matched subset.
	SuccessRate float64 `json:"success_rate" yaml:"success_rate"`

	// AverageDuration is the mean duration over the matched subset.
	AverageDuration time.Duration `json:"average_duration" yaml:"average_duration"`
}

// TrendReport summarizes recent performance direction.
type TrendReport struct {
	// Trend is improving, declining, stable, or insufficient_data.
	Trend string `json:"trend" yaml:"trend"`

	// Confidence is the belief strength of the classification,
	// min(0.9, 0.5 + |SuccessDiff| + |TimeDiff|). It is populated for
	// every classified trend, stable included; only insufficient_data
	// reports zero.
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// SuccessDiff is recent success rate minus older success rate.
	SuccessDiff float64 `json:"success_diff" yaml:"success_diff"`

	// TimeDiff is the relative speedup: positive means getting faster.
	TimeDiff float64 `json:"time_diff" yaml:"time_diff"`
}

// Stats is a point-in-time summary of a Store.
type Stats struct {
	// Interactions is the number of currently retained interactions.
	Interactions int `json:"interactions" yaml:"interactions"`

	// SuccessRate is the current windowed success rate.
	SuccessRate float64 `json:"success_rate" yaml:"success_rate"`

	// Domains is the number of knowledge domains with at least one entry.
	Domains int `json:"domains" yaml:"domains"`

	// Concepts is the total number of knowledge graph concept nodes.
	Concepts int `json:"concepts" yaml:"concepts"`

	// AdaptationScore is the current adaptation score.
	AdaptationScore float64 `json:"adaptation_score" yaml:"adaptation_score"`
}
