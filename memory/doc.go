// Package memory provides per-agent interaction memory with relevance
// retrieval, expertise and trend analysis, compression under growth
// pressure, and a lightweight knowledge graph.
//
// A Store accumulates interaction records for one agent/user/session triple.
// The interaction history is structurally bounded at MaxInteractions entries;
// appending past the cap evicts the oldest record. Stored prompts and
// responses are truncated to fixed limits on record.
//
// Retrieval is lexical and heuristic, not semantic: relevance is a bounded
// [0, 1] weighted sum of keyword overlap, domain tag match, recency, and
// success. The weights are a behavioral contract preserved from the original
// scoring model and must not be tuned casually.
//
// Stores are single-writer. All operations are synchronous in-memory
// computations over small bounded collections; callers sharing a Store
// across goroutines must serialize access externally. The optional relevance
// query cache is internally thread-safe and safe to leave enabled.
package memory
