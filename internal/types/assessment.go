//nolint:revive // types is a standard Go package name pattern
package types

// Plan window labels. Every repaired assessment carries exactly one plan
// entry per label, in this order.
const (
	Window30Days = "30_days"
	Window60Days = "60_days"
	Window90Days = "90_days"
)

// PlanWindowOrder is the canonical ordering of plan horizon labels.
var PlanWindowOrder = []string{Window30Days, Window60Days, Window90Days}

// Confidence levels used by assessment scalar fields.
const (
	ConfidenceLow    = "low"
	ConfidenceMedium = "medium"
	ConfidenceHigh   = "high"
)

// RawAssessment is the decoded shape of the generator's output. Values of
// this type are untrusted: fields may be missing, windows may be absent or
// duplicated, and role references may point at roles that do not exist.
// It must pass through repair and grounding before leaving the pipeline.
// Slice fields carry omitempty so a partially-filled value round-trips
// through the schema instead of emitting JSON nulls.
type RawAssessment struct {
	Summary          string          `json:"summary"`
	Confidence       string          `json:"confidence,omitempty"`
	Factors          []Factor        `json:"factors,omitempty"`
	Plan             []PlanWindow    `json:"plan,omitempty"`
	ImmediateActions []string        `json:"immediate_actions,omitempty"`
	DataConfidence   *DataConfidence `json:"data_confidence,omitempty"`
	ProjectBriefs    []ProjectBrief  `json:"project_briefs,omitempty"`
}

// Factor is one entry in the scored fit breakdown. RelatedRoleIDs is the
// adjacency list tying the factor back to catalog roles.
type Factor struct {
	Name           string   `json:"name"`
	Score          int      `json:"score"`
	Evidence       string   `json:"evidence"`
	RelatedRoleIDs []string `json:"related_role_ids,omitempty"`
}

// PlanWindow holds the tasks for one plan horizon.
type PlanWindow struct {
	Window string   `json:"window"`
	Tasks  []string `json:"tasks"`
}

// DataConfidence is the secondary confidence signal describing how much the
// assessment could rely on the submitted profile.
type DataConfidence struct {
	Level string `json:"level"`
	Hint  string `json:"hint,omitempty"`
}

// ProjectBrief proposes a portfolio project targeted at one catalog role.
// When the target role defines proof projects, Title must equal one of their
// titles verbatim.
type ProjectBrief struct {
	Title        string   `json:"title"`
	TargetRoleID string   `json:"target_role_id"`
	Deliverables []string `json:"deliverables,omitempty"`
}

// RepairedAssessment is an assessment that has passed schema validation and
// structural repair: all scalar defaults applied, factor and plan-window
// cardinality satisfied. Its role references are still unverified.
type RepairedAssessment struct {
	RawAssessment
}

// GroundedAssessment is the final pipeline output: every role reference has
// been verified against the grounding set supplied for the request.
type GroundedAssessment struct {
	RepairedAssessment

	// GroundingRoleIDs lists the catalog roles this assessment was anchored
	// to, in rank order.
	GroundingRoleIDs []string `json:"grounding_role_ids"`

	// Degraded is set when the assessment was produced without any grounding
	// roles and therefore carries generic, lower-confidence content.
	Degraded bool `json:"degraded,omitempty"`

	// DroppedReferences records role references removed because they did not
	// resolve against the grounding set.
	DroppedReferences []string `json:"dropped_references,omitempty"`
}
