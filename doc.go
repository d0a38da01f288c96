// Package engine provides the adaptive memory retention and relevance engine
// for agent-generated knowledge.
//
// The engine decides which pieces of agent knowledge matter, how their
// importance decays or grows over time, how relevant stored interactions are
// to a new query, and how interaction history is compressed under growth
// pressure. It is a pure in-memory library: no operation performs network or
// file I/O, and every call is a bounded synchronous computation.
//
// # Core Concepts
//
// The engine is organized around three cooperating entities:
//
//   - knowledge.Context: a hierarchical, taggable unit of stored knowledge
//     with a recomputable importance score
//   - memory.Store: per-agent interaction history with relevance retrieval,
//     trend analysis, compression, and a lightweight knowledge graph
//   - agent.State: one agent's live task, capability set, and rolling
//     performance and memory-pressure metrics
//
// The root package defines the shared error taxonomy used across those
// packages. Optional configuration loading lives in the config package, and
// optional OpenTelemetry instrumentation lives in the telemetry package.
//
// # Concurrency
//
// Entities are single-writer: all operations on one Context, one Store, or
// one State mutate in-memory state and return immediately. The engine
// performs no locking; callers that share an entity across goroutines must
// serialize access externally (per-agent mutex or single-writer actor).
//
// # Getting Started
//
//	store := memory.NewStore("agent-1")
//	store.RecordInteraction(memory.Interaction{
//		Prompt:   "deploy the staging branch",
//		Response: "deployed via pipeline 42",
//		Success:  true,
//		Duration: 1200 * time.Millisecond,
//		Tags:     []string{"deployment"},
//	})
//
//	results := store.RelevantMemories(memory.Query{
//		Keywords: []string{"deploy", "staging"},
//		Domain:   "deployment",
//	}, 5)
package engine
