package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/mnemo-ai/engine/memory"
)

// Store wraps a memory.Store with metric and trace instrumentation. The
// embedded store remains fully usable; only the operations worth observing
// are shadowed here.
type Store struct {
	*memory.Store

	obs   *Observer
	attrs metric.MeasurementOption
}

// Instrument wraps the store. The agent id is attached to every measurement.
func (o *Observer) Instrument(s *memory.Store) *Store {
	return &Store{
		Store: s,
		obs:   o,
		attrs: metric.WithAttributes(attribute.String("agent.id", s.AgentID)),
	}
}

// RecordInteraction records the interaction and counts it, marking an
// eviction when the store was already at capacity.
func (s *Store) RecordInteraction(ctx context.Context, in memory.Interaction) memory.Interaction {
	atCapacity := s.Store.Len() == memory.MaxInteractions

	out := s.Store.RecordInteraction(in)

	if s.obs.enabled() && s.obs.metrics != nil {
		s.obs.metrics.interactions.Add(ctx, 1, s.attrs)
		if atCapacity {
			s.obs.metrics.evictions.Add(ctx, 1, s.attrs)
		}
	}
	return out
}

// AddKnowledge upserts the knowledge entry and counts the graph
// reinforcement.
func (s *Store) AddKnowledge(ctx context.Context, domain, concept string, value any, opts ...memory.KnowledgeOption) {
	s.Store.AddKnowledge(domain, concept, value, opts...)

	if s.obs.enabled() && s.obs.metrics != nil {
		s.obs.metrics.reinforcements.Add(ctx, 1, metric.WithAttributes(
			attribute.String("agent.id", s.Store.AgentID),
			attribute.String("domain", domain),
		))
	}
}

// RelevantMemories runs the query inside a span and records its latency
// and result count.
func (s *Store) RelevantMemories(ctx context.Context, q memory.Query, limit int) []memory.Result {
	if !s.obs.enabled() {
		return s.Store.RelevantMemories(q, limit)
	}

	var span trace.Span
	if s.obs.tracer != nil {
		ctx, span = s.obs.tracer.Start(ctx, "memory.relevant_memories")
		defer span.End()

		span.SetAttributes(
			attribute.String("agent.id", s.Store.AgentID),
			attribute.Int("query.keywords", len(q.Keywords)),
			attribute.String("query.domain", q.Domain),
			attribute.Int("query.limit", limit),
		)
	}

	start := time.Now()
	results := s.Store.RelevantMemories(q, limit)
	elapsed := time.Since(start)

	if span != nil {
		span.SetAttributes(attribute.Int("query.results", len(results)))
	}
	if s.obs.metrics != nil {
		s.obs.metrics.queryDuration.Record(ctx, float64(elapsed.Microseconds())/1000, s.attrs)
		s.obs.metrics.queryResults.Record(ctx, int64(len(results)), s.attrs)
	}
	return results
}

// Compress compacts the history and counts the dropped interactions.
func (s *Store) Compress(ctx context.Context, opts memory.CompressOptions) memory.CompressResult {
	result := s.Store.Compress(opts)

	if s.obs.enabled() && s.obs.metrics != nil && result.Dropped > 0 {
		s.obs.metrics.compressedDropped.Add(ctx, int64(result.Dropped), s.attrs)
	}
	return result
}
