package memory

import (
	"encoding/json"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/mnemo-ai/engine"
)

// Snapshot is the canonical serialized form of a Store: a field-for-field
// copy of its state with interactions materialized in insertion order.
// Restoring a snapshot reconstructs a store whose scoring, trend, and
// compression behavior is identical to the original.
type Snapshot struct {
	ID           string                                `json:"id" yaml:"id"`
	AgentID      string                                `json:"agent_id" yaml:"agent_id"`
	UserID       string                                `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	SessionID    string                                `json:"session_id,omitempty" yaml:"session_id,omitempty"`
	Interactions []Interaction                         `json:"interactions,omitempty" yaml:"interactions,omitempty"`
	Knowledge    map[string]map[string]KnowledgeEntry `json:"knowledge,omitempty" yaml:"knowledge,omitempty"`
	Graph        KnowledgeGraph                        `json:"knowledge_graph" yaml:"knowledge_graph"`
	Patterns     Patterns                              `json:"patterns" yaml:"patterns"`
	Performance  Performance                           `json:"performance" yaml:"performance"`
	Learning     Learning                              `json:"learning" yaml:"learning"`
}

// Validate checks the snapshot invariants before a store is built from it.
func (snap *Snapshot) Validate() error {
	const op = "memory.Snapshot.Validate"

	if snap.AgentID == "" {
		return engine.NewValidationError(op, engine.ErrInvalidType).
			WithContext(map[string]any{"field": "agent_id", "value": "empty"})
	}
	if len(snap.Interactions) > MaxInteractions {
		return engine.NewValidationError(op, engine.ErrOutOfRange).
			WithContext(map[string]any{"field": "interactions", "value": len(snap.Interactions)})
	}
	if snap.Performance.SuccessRate < 0 || snap.Performance.SuccessRate > 1 {
		return engine.NewValidationError(op, engine.ErrOutOfRange).
			WithContext(map[string]any{"field": "performance.success_rate", "value": snap.Performance.SuccessRate})
	}
	if score := snap.Learning.AdaptationScore; score != 0 && (score < adaptationFloor || score > adaptationCeiling) {
		return engine.NewValidationError(op, engine.ErrOutOfRange).
			WithContext(map[string]any{"field": "learning.adaptation_score", "value": score})
	}
	for domain, entries := range snap.Knowledge {
		for concept, entry := range entries {
			if entry.Confidence < 0 || entry.Confidence > 1 {
				return engine.NewValidationError(op, engine.ErrOutOfRange).
					WithContext(map[string]any{
						"field": "knowledge.confidence",
						"value": entry.Confidence,
						"key":   domain + "/" + concept,
					})
			}
		}
	}
	return nil
}

// Snapshot captures the current store state.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		ID:           s.ID,
		AgentID:      s.AgentID,
		UserID:       s.UserID,
		SessionID:    s.SessionID,
		Interactions: s.interactions.snapshot(),
		Knowledge:    s.Knowledge,
		Graph:        s.Graph,
		Patterns:     s.Patterns,
		Performance:  s.Performance,
		Learning:     s.Learning,
	}
}

// ToJSON serializes the store to its canonical JSON form.
func (s *Store) ToJSON() ([]byte, error) {
	data, err := json.Marshal(s.Snapshot())
	if err != nil {
		return nil, engine.NewInternalError("Store.ToJSON", err)
	}
	return data, nil
}

// FromJSON reconstructs a Store from its canonical JSON form. A parse
// failure yields a deserialization error; a payload that parses but
// violates the store invariants yields a validation error. Neither failure
// mode affects previously loaded stores.
func FromJSON(data []byte, opts ...Option) (*Store, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, engine.NewDeserializationError("memory.FromJSON", err)
	}
	return FromSnapshot(snap, opts...)
}

// FromSnapshot builds a Store from a validated snapshot.
func FromSnapshot(snap Snapshot, opts ...Option) (*Store, error) {
	if err := snap.Validate(); err != nil {
		return nil, err
	}

	s := NewStore(snap.AgentID, opts...)
	if snap.ID != "" {
		s.ID = snap.ID
	}
	s.UserID = snap.UserID
	s.SessionID = snap.SessionID
	if snap.Knowledge != nil {
		s.Knowledge = snap.Knowledge
	}
	if snap.Graph.Concepts != nil {
		s.Graph = snap.Graph
	}
	if snap.Patterns.Keywords != nil || snap.Patterns.CommonHours != nil {
		s.Patterns = snap.Patterns
	}
	s.Performance = snap.Performance
	if snap.Learning.AdaptationScore != 0 || snap.Learning.DomainExpertise != nil {
		s.Learning = snap.Learning
	}
	s.interactions.replace(snap.Interactions)
	return s, nil
}

// Clone produces a new Store with a freshly generated identifier,
// otherwise deep-copying all state, then applying the given overrides.
func (s *Store) Clone(overrides ...func(*Store)) *Store {
	snap := s.Snapshot()

	// Deep copy through the serialized form so clone and original share
	// no mutable state.
	data, err := json.Marshal(snap)
	if err == nil {
		var copied Snapshot
		if json.Unmarshal(data, &copied) == nil {
			snap = copied
		}
	}

	clone := &Store{
		ID:           uuid.New().String(),
		AgentID:      snap.AgentID,
		UserID:       snap.UserID,
		SessionID:    snap.SessionID,
		Knowledge:    snap.Knowledge,
		Graph:        snap.Graph,
		Patterns:     snap.Patterns,
		Performance:  snap.Performance,
		Learning:     snap.Learning,
		interactions: newInteractionRing(MaxInteractions),
		entropy:      ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
	if clone.Knowledge == nil {
		clone.Knowledge = make(map[string]map[string]KnowledgeEntry)
	}
	if clone.Graph.Concepts == nil {
		clone.Graph.Concepts = make(map[string][]ConceptNode)
	}
	if clone.Patterns.Keywords == nil {
		clone.Patterns.Keywords = make(map[string]int)
	}
	if clone.Patterns.CommonHours == nil {
		clone.Patterns.CommonHours = make(map[int]int)
	}
	if clone.Learning.DomainExpertise == nil {
		clone.Learning.DomainExpertise = make(map[string]RatingStat)
	}
	clone.interactions.replace(snap.Interactions)
	if s.cache != nil {
		if cache, err := newQueryCache(); err == nil {
			clone.cache = cache
		}
	}

	for _, override := range overrides {
		override(clone)
	}
	return clone
}
