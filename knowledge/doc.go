// Package knowledge defines the hierarchical knowledge unit (Context) and the
// importance model that scores it.
//
// A Context is a taggable, hierarchical piece of agent knowledge: a project,
// epic, task, session, or agent node with parent/children/reference links and
// an integer importance score in [0, 100]. Importance is never silently
// changed by structural operations; it is recomputed on demand from
// structural and temporal signals via CalculateImportance or
// Context.UpdateImportance.
//
// The scoring constants in ImportanceFactors are a behavioral contract:
// downstream consumers and fixtures depend on the exact defaults, so they
// must not be tuned without flagging the change.
package knowledge
