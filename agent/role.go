package agent

import (
	"fmt"
	"strings"
)

// Role identifies what kind of work an agent performs. Each role seeds a
// default capability set at construction time.
type Role string

const (
	// RoleOrchestrator coordinates other agents and decomposes work.
	RoleOrchestrator Role = "orchestrator"

	// RoleDeveloper writes and modifies code.
	RoleDeveloper Role = "developer"

	// RoleReviewer reviews changes produced by other agents.
	RoleReviewer Role = "reviewer"

	// RoleTester designs and runs verification work.
	RoleTester Role = "tester"

	// RoleResearcher gathers and summarizes external information.
	RoleResearcher Role = "researcher"
)

// defaultCapabilities seeds each role's capability set. Resolved once at
// construction; later Add/RemoveCapability calls do not consult it.
var defaultCapabilities = map[Role][]string{
	RoleOrchestrator: {"task_decomposition", "delegation", "progress_tracking"},
	RoleDeveloper:    {"code_generation", "refactoring", "debugging"},
	RoleReviewer:     {"code_review", "style_enforcement", "risk_assessment"},
	RoleTester:       {"test_design", "regression_analysis", "coverage_review"},
	RoleResearcher:   {"web_search", "summarization", "citation_tracking"},
}

// IsValid returns true if the role is a known value.
func (r Role) IsValid() bool {
	_, ok := defaultCapabilities[r]
	return ok
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DefaultCapabilities returns a copy of the role's seed capability set.
// Unknown roles yield nil.
func (r Role) DefaultCapabilities() []string {
	caps, ok := defaultCapabilities[r]
	if !ok {
		return nil
	}
	return append([]string(nil), caps...)
}

// ParseRole converts a string to a Role, case-insensitively.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", fmt.Errorf("invalid role: %s", s)
	}
	return r, nil
}

// AllRoles returns all valid roles.
func AllRoles() []Role {
	return []Role{
		RoleOrchestrator,
		RoleDeveloper,
		RoleReviewer,
		RoleTester,
		RoleResearcher,
	}
}
