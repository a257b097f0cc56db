//nolint:revive // types is a standard Go package name pattern
package types

// Goal is the user's self-declared objective for the assessment.
type Goal string

// Goal values accepted from the profile form.
const (
	GoalAdvance Goal = "advance"
	GoalPivot   Goal = "pivot"
	GoalExplore Goal = "explore"
)

// Profile is the free-form user input a single assessment is built from.
// It lives for one request only and is never persisted by this service.
type Profile struct {
	JobTitle        string   `json:"job_title" validate:"required"`
	Industry        string   `json:"industry,omitempty"`
	Skills          []string `json:"skills" validate:"required,min=1,dive,required"`
	YearsExperience int      `json:"years_experience,omitempty" validate:"gte=0"`
	Interests       []string `json:"interests,omitempty"`
	Goal            Goal     `json:"goal,omitempty" validate:"omitempty,oneof=advance pivot explore"`
}

// EarlyCareer reports whether the profile signals an exploration or
// early-career audience, which nudges scoring toward seniority-neutral roles.
func (p *Profile) EarlyCareer() bool {
	return p.Goal == GoalExplore || p.YearsExperience < 2
}
