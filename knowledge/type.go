package knowledge

import "fmt"

// ContextType represents the kind of knowledge unit a Context holds.
type ContextType string

const (
	// TypeProject is a top-level project context.
	// Projects anchor the hierarchy and carry the largest importance bonus.
	TypeProject ContextType = "project"

	// TypeEpic is a multi-task body of work within a project.
	TypeEpic ContextType = "epic"

	// TypeTask is a single unit of work.
	TypeTask ContextType = "task"

	// TypeSession is a transient working session.
	// Sessions are the most disposable context kind.
	TypeSession ContextType = "session"

	// TypeAgent is an agent-owned context holding agent-scoped knowledge.
	TypeAgent ContextType = "agent"
)

// typeBonuses maps context types to the fixed importance bonus applied
// during scoring. The values are part of the scoring contract.
var typeBonuses = map[ContextType]float64{
	TypeProject: 20,
	TypeEpic:    15,
	TypeTask:    10,
	TypeAgent:   8,
	TypeSession: 5,
}

// IsValid returns true if the context type is one of the known kinds.
func (t ContextType) IsValid() bool {
	switch t {
	case TypeProject, TypeEpic, TypeTask, TypeSession, TypeAgent:
		return true
	default:
		return false
	}
}

// Bonus returns the fixed importance bonus associated with the type.
// Returns 0.0 for invalid types.
func (t ContextType) Bonus() float64 {
	if bonus, ok := typeBonuses[t]; ok {
		return bonus
	}
	return 0.0
}

// String returns the string representation of the context type.
func (t ContextType) String() string {
	return string(t)
}

// ParseContextType parses a string into a ContextType value.
// Returns an error if the string is not a valid context type.
func ParseContextType(s string) (ContextType, error) {
	t := ContextType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid context type: %s", s)
	}
	return t, nil
}

// AllContextTypes returns all valid context types in descending bonus order.
func AllContextTypes() []ContextType {
	return []ContextType{
		TypeProject,
		TypeEpic,
		TypeTask,
		TypeAgent,
		TypeSession,
	}
}
