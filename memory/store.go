package memory

import (
	"math/rand"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Pattern map bounds. Keyword and hour frequency maps are pruned to these
// sizes after every update.
const (
	maxPatternKeywords = 10
	maxPatternHours    = 5
)

// minKeywordLen is the shortest prompt word counted as a keyword.
const minKeywordLen = 4

// Store accumulates interaction memory for one agent/user/session triple.
// Create one with NewStore; the zero value is not usable.
type Store struct {
	// ID is the unique store identifier.
	ID string `json:"id" yaml:"id"`

	// AgentID scopes the store to one agent. Required.
	AgentID string `json:"agent_id" yaml:"agent_id"`

	// UserID optionally scopes the store to one user.
	UserID string `json:"user_id,omitempty" yaml:"user_id,omitempty"`

	// SessionID optionally scopes the store to one session.
	SessionID string `json:"session_id,omitempty" yaml:"session_id,omitempty"`

	// Knowledge maps domain to concept to learned entry.
	Knowledge map[string]map[string]KnowledgeEntry `json:"knowledge,omitempty" yaml:"knowledge,omitempty"`

	// Graph is the lightweight reinforced-concept graph.
	Graph KnowledgeGraph `json:"knowledge_graph" yaml:"knowledge_graph"`

	// Patterns holds recurring-usage signals.
	Patterns Patterns `json:"patterns" yaml:"patterns"`

	// Performance holds rolling performance metrics.
	Performance Performance `json:"performance" yaml:"performance"`

	// Learning holds slow-moving adaptation signals.
	Learning Learning `json:"learning" yaml:"learning"`

	interactions *interactionRing
	entropy      *ulid.MonotonicEntropy
	cache        *queryCache
	version      uint64 // bumped on every mutation, part of cache keys
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithUser scopes the store to a user.
func WithUser(userID string) Option {
	return func(s *Store) { s.UserID = userID }
}

// WithSession scopes the store to a session.
func WithSession(sessionID string) Option {
	return func(s *Store) { s.SessionID = sessionID }
}

// WithQueryCache enables the in-process relevance query cache. Cached
// results are invalidated by any store mutation.
func WithQueryCache() Option {
	return func(s *Store) {
		cache, err := newQueryCache()
		if err != nil {
			// A cache that cannot be built is a disabled cache.
			return
		}
		s.cache = cache
	}
}

// NewStore creates an empty Store scoped to the given agent.
func NewStore(agentID string, opts ...Option) *Store {
	s := &Store{
		ID:           uuid.New().String(),
		AgentID:      agentID,
		Knowledge:    make(map[string]map[string]KnowledgeEntry),
		Graph:        KnowledgeGraph{Concepts: make(map[string][]ConceptNode)},
		Patterns:     Patterns{Keywords: make(map[string]int), CommonHours: make(map[int]int)},
		Performance:  Performance{ImprovementTrend: TrendInsufficientData},
		Learning:     Learning{AdaptationScore: 0.5, DomainExpertise: make(map[string]RatingStat)},
		interactions: newInteractionRing(MaxInteractions),
		entropy:      ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordInteraction appends an interaction, assigning a ULID identifier and
// a timestamp when absent, truncating prompt and response to their limits,
// and updating patterns and performance metrics. Appending past
// MaxInteractions evicts the oldest record.
//
// The stored copy is returned.
func (s *Store) RecordInteraction(in Interaction) Interaction {
	if in.Timestamp.IsZero() {
		in.Timestamp = time.Now()
	}
	if in.ID == "" {
		in.ID = s.newID(in.Timestamp)
	}
	in.Prompt = truncate(in.Prompt, MaxPromptLen)
	in.Response = truncate(in.Response, MaxResponseLen)

	s.interactions.push(in)

	s.updatePatterns(in)
	s.updatePerformance(in)
	s.bump()

	return in
}

// Interactions returns the retained interactions in insertion order.
func (s *Store) Interactions() []Interaction {
	return s.interactions.snapshot()
}

// Len returns the number of retained interactions.
func (s *Store) Len() int {
	return s.interactions.len()
}

// KnowledgeOption configures an AddKnowledge call.
type KnowledgeOption func(*KnowledgeEntry)

// WithConfidence sets the initial confidence, clamped to [0, 1].
func WithConfidence(confidence float64) KnowledgeOption {
	return func(e *KnowledgeEntry) {
		if confidence < 0 {
			confidence = 0
		}
		if confidence > 1 {
			confidence = 1
		}
		e.Confidence = confidence
	}
}

// WithSource names where the knowledge came from.
func WithSource(source string) KnowledgeOption {
	return func(e *KnowledgeEntry) { e.Source = source }
}

// WithTags labels the knowledge entry.
func WithTags(tags ...string) KnowledgeOption {
	return func(e *KnowledgeEntry) { e.Tags = tags }
}

// AddKnowledge upserts a learned concept and reinforces the knowledge graph.
//
// The knowledge entry is replaced wholesale except for its reinforcement
// count, which is preserved across upserts. The graph node for the concept
// is reinforced: its count increments and its confidence rises by 0.05 per
// assertion, capped at 0.95. A concept seen for the first time enters the
// graph with one reinforcement.
func (s *Store) AddKnowledge(domain, concept string, value any, opts ...KnowledgeOption) {
	entry := KnowledgeEntry{
		Value:      value,
		Confidence: 0.7,
		Source:     "interaction",
		Timestamp:  time.Now(),
	}
	for _, opt := range opts {
		opt(&entry)
	}

	if s.Knowledge[domain] == nil {
		s.Knowledge[domain] = make(map[string]KnowledgeEntry)
	}
	if prior, ok := s.Knowledge[domain][concept]; ok {
		entry.Reinforcements = prior.Reinforcements
	}
	s.Knowledge[domain][concept] = entry

	s.reinforceConcept(domain, concept, value, entry.Confidence)
	s.bump()
}

func (s *Store) reinforceConcept(domain, concept string, value any, confidence float64) {
	if s.Graph.Concepts == nil {
		s.Graph.Concepts = make(map[string][]ConceptNode)
	}

	nodes := s.Graph.Concepts[domain]
	for i := range nodes {
		if nodes[i].Concept == concept {
			nodes[i].Reinforcements++
			nodes[i].Confidence = nodes[i].Confidence + 0.05
			if nodes[i].Confidence > 0.95 {
				nodes[i].Confidence = 0.95
			}
			return
		}
	}

	s.Graph.Concepts[domain] = append(nodes, ConceptNode{
		Concept:        concept,
		Value:          value,
		Confidence:     confidence,
		Reinforcements: 1,
	})
}

// FeedbackEvent references an interaction and carries the caller's
// judgement of it.
type FeedbackEvent struct {
	// InteractionID identifies the interaction the feedback applies to.
	InteractionID string `json:"interaction_id" yaml:"interaction_id"`

	// Rating is a 1-10 quality rating, 0 when absent.
	Rating int `json:"rating,omitempty" yaml:"rating,omitempty"`

	// Category groups the feedback for per-category expertise tracking.
	Category string `json:"category,omitempty" yaml:"category,omitempty"`

	// Helpful indicates whether the response helped, when present.
	Helpful *bool `json:"helpful,omitempty" yaml:"helpful,omitempty"`
}

// RecordFeedback attaches feedback to the matching interaction. A feedback
// event referencing an unknown interaction is a silent no-op and returns
// false.
//
// A present Helpful value nudges the adaptation score: +0.02 when helpful,
// -0.05 when not, clamped to [0.1, 0.95]. A category with a positive rating
// folds into the running mean rating for that category.
func (s *Store) RecordFeedback(fb FeedbackEvent) bool {
	var target *Interaction
	for i := 0; i < s.interactions.len(); i++ {
		if in := s.interactions.at(i); in.ID == fb.InteractionID {
			target = in
			break
		}
	}
	if target == nil {
		return false
	}

	target.Feedback = &Feedback{
		Rating:   fb.Rating,
		Category: fb.Category,
		Helpful:  fb.Helpful,
	}

	if fb.Helpful != nil {
		if *fb.Helpful {
			s.Learning.AdaptationScore += adaptationReward
		} else {
			s.Learning.AdaptationScore -= adaptationPenalty
		}
		s.Learning.AdaptationScore = clampFloat(s.Learning.AdaptationScore, adaptationFloor, adaptationCeiling)
	}

	if fb.Category != "" && fb.Rating > 0 {
		if s.Learning.DomainExpertise == nil {
			s.Learning.DomainExpertise = make(map[string]RatingStat)
		}
		stat := s.Learning.DomainExpertise[fb.Category]
		stat.Rating = (stat.Rating*float64(stat.Count) + float64(fb.Rating)) / float64(stat.Count+1)
		stat.Count++
		s.Learning.DomainExpertise[fb.Category] = stat
	}

	s.bump()
	return true
}

// TopKeywords returns the tracked prompt keywords in descending frequency
// order, ties broken alphabetically.
func (s *Store) TopKeywords() []string {
	keys := make([]string, 0, len(s.Patterns.Keywords))
	for k := range s.Patterns.Keywords {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ci, cj := s.Patterns.Keywords[keys[i]], s.Patterns.Keywords[keys[j]]
		if ci != cj {
			return ci > cj
		}
		return keys[i] < keys[j]
	})
	return keys
}

// CommonHours returns the tracked hours of day in descending frequency
// order, ties broken by earlier hour.
func (s *Store) CommonHours() []int {
	hours := make([]int, 0, len(s.Patterns.CommonHours))
	for h := range s.Patterns.CommonHours {
		hours = append(hours, h)
	}
	sort.Slice(hours, func(i, j int) bool {
		ci, cj := s.Patterns.CommonHours[hours[i]], s.Patterns.CommonHours[hours[j]]
		if ci != cj {
			return ci > cj
		}
		return hours[i] < hours[j]
	})
	return hours
}

// Stats returns a point-in-time summary of the store.
func (s *Store) Stats() Stats {
	concepts := 0
	for _, nodes := range s.Graph.Concepts {
		concepts += len(nodes)
	}
	return Stats{
		Interactions:    s.interactions.len(),
		SuccessRate:     s.Performance.SuccessRate,
		Domains:         len(s.Knowledge),
		Concepts:        concepts,
		AdaptationScore: s.Learning.AdaptationScore,
	}
}

func (s *Store) newID(ts time.Time) string {
	return ulid.MustNew(ulid.Timestamp(ts), s.entropy).String()
}

func (s *Store) updatePatterns(in Interaction) {
	if s.Patterns.Keywords == nil {
		s.Patterns.Keywords = make(map[string]int)
	}
	if s.Patterns.CommonHours == nil {
		s.Patterns.CommonHours = make(map[int]int)
	}

	for _, kw := range extractKeywords(in.Prompt) {
		s.Patterns.Keywords[kw]++
	}
	pruneKeywords(s.Patterns.Keywords, maxPatternKeywords)

	s.Patterns.CommonHours[in.Timestamp.Hour()]++
	pruneHours(s.Patterns.CommonHours, maxPatternHours)
}

func (s *Store) updatePerformance(in Interaction) {
	s.Performance.TotalInteractions++
	if !in.Success {
		s.Performance.ErrorCount++
	}

	var successes int
	var total time.Duration
	n := s.interactions.len()
	for i := 0; i < n; i++ {
		rec := s.interactions.at(i)
		if rec.Success {
			successes++
		}
		total += rec.Duration
	}
	s.Performance.SuccessRate = float64(successes) / float64(n)
	s.Performance.AverageResponseTime = total / time.Duration(n)

	s.Performance.ImprovementTrend = s.PerformanceTrends(DefaultTrendWindow).Trend
}

func (s *Store) bump() {
	s.version++
}

// extractKeywords lowercases the text and returns words longer than
// minKeywordLen-1 characters, split on non-letter/digit runs.
func extractKeywords(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	out := fields[:0]
	for _, f := range fields {
		if len(f) >= minKeywordLen {
			out = append(out, f)
		}
	}
	return out
}

// pruneKeywords trims a frequency map to its n highest-count entries,
// dropping low-count keys first, ties dropped in reverse alphabetical order.
func pruneKeywords(m map[string]int, n int) {
	if len(m) <= n {
		return
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if m[keys[i]] != m[keys[j]] {
			return m[keys[i]] > m[keys[j]]
		}
		return keys[i] < keys[j]
	})
	for _, k := range keys[n:] {
		delete(m, k)
	}
}

func pruneHours(m map[int]int, n int) {
	if len(m) <= n {
		return
	}
	hours := make([]int, 0, len(m))
	for h := range m {
		hours = append(hours, h)
	}
	sort.Slice(hours, func(i, j int) bool {
		if m[hours[i]] != m[hours[j]] {
			return m[hours[i]] > m[hours[j]]
		}
		return hours[i] < hours[j]
	})
	for _, h := range hours[n:] {
		delete(m, h)
	}
}

// truncate limits a string to max characters, never splitting a rune.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	count := 0
	for i := range s {
		if count == max {
			return s[:i]
		}
		count++
	}
	return s
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
