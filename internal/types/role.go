// Package types provides type definitions for structured data used throughout the career-advisor system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Role represents one target role in the fixed reference catalog.
// Roles are immutable for the lifetime of the process; every entity
// reference in a generated assessment must resolve to one of these.
type Role struct {
	ID               string         `json:"id"`
	Title            string         `json:"title"`
	Summary          string         `json:"summary"`
	CoreSkills       []string       `json:"core_skills"`
	NiceToHaveSkills []string       `json:"nice_to_have_skills,omitempty"`
	Responsibilities []string       `json:"responsibilities,omitempty"`
	StarterPlan      []string       `json:"starter_plan,omitempty"`
	ProofProjects    []ProofProject `json:"proof_projects,omitempty"`
	Tags             []string       `json:"tags,omitempty"`
}

// ProofProject is a portfolio project attached to a role. Generated project
// briefs must reuse these titles verbatim.
type ProofProject struct {
	Title        string   `json:"title"`
	Deliverables []string `json:"deliverables,omitempty"`
}

// ScoredRole pairs a catalog role with its relevance score for one request.
// Scores are recomputed per request and never cached.
type ScoredRole struct {
	Role  Role `json:"role"`
	Score int  `json:"score"`
}
