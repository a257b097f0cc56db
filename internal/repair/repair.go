package repair

import (
	"encoding/json"
	"fmt"

	"github.com/jonathan/career-advisor/internal/llm"
	"github.com/jonathan/career-advisor/internal/schemas"
	"github.com/jonathan/career-advisor/internal/types"
)

// Structural repair policy. Repairs are idempotent and grounding-only: no
// step introduces text that is not already present in the raw result or in
// the grounding roles, apart from the clearly generic placeholders below.
const (
	// MinFactors is the minimum itemized-breakdown cardinality the UI
	// contract expects.
	MinFactors = 5
	// NeutralFactorScore is assigned to synthesized placeholder factors.
	NeutralFactorScore = 50
	// MaxWindowTasks caps tasks backfilled into a missing plan window.
	MaxWindowTasks = 5
	// MinWindowTasks is the floor every plan window is padded up to.
	MinWindowTasks = 3
)

// placeholderEvidence clearly labels factors synthesized by repair rather
// than produced by the model.
const placeholderEvidence = "No additional evidence was produced for this factor."

// genericPlanTasks is the ungrounded fallback used only when no grounding
// role is available to draw tasks from.
var genericPlanTasks = []string{
	"Define your target role",
	"Collect three job postings for roles that interest you",
	"List the transferable skills from your current work",
}

// genericImprovementHint accompanies a defaulted low data confidence.
const genericImprovementHint = "Add more skills, interests, and experience detail to your profile to improve accuracy."

// ValidateAndRepair parses raw generator output, verifies it against the
// assessment schema, and repairs structural omissions using only data from
// the grounding set. It returns *ParseError for malformed output (the
// caller decides whether to retry) and *UngroundedOutputError only when
// there is neither grounding nor usable payload.
func ValidateAndRepair(rawText string, grounding []types.ScoredRole) (*types.RepairedAssessment, error) {
	cleaned := llm.CleanJSONBlock(rawText)

	if err := schemas.ValidateAssessment(cleaned); err != nil {
		return nil, &ParseError{Message: "generator output failed schema validation", Cause: err}
	}

	var a types.RawAssessment
	if err := json.Unmarshal([]byte(cleaned), &a); err != nil {
		return nil, &ParseError{Message: "generator output is not a valid assessment", Cause: err}
	}

	if len(grounding) == 0 && isEmpty(&a) {
		return nil, &UngroundedOutputError{Message: "no grounding roles and no usable structured payload"}
	}

	pool := groundedTaskPool(grounding)

	repairConfidence(&a)
	repairFactors(&a)
	repairPlan(&a, pool)
	repairImmediateActions(&a, pool)
	repairDataConfidence(&a)

	return &types.RepairedAssessment{RawAssessment: a}, nil
}

// isEmpty reports whether the payload carries nothing repair could build on.
func isEmpty(a *types.RawAssessment) bool {
	return a.Summary == "" &&
		len(a.Factors) == 0 &&
		len(a.Plan) == 0 &&
		len(a.ImmediateActions) == 0 &&
		len(a.ProjectBriefs) == 0
}

// groundedTaskPool collects the only text repair may backfill from: the top
// grounding role's starter-plan tasks followed by its proof-project titles.
func groundedTaskPool(grounding []types.ScoredRole) []string {
	if len(grounding) == 0 {
		return nil
	}
	top := grounding[0].Role
	pool := make([]string, 0, len(top.StarterPlan)+len(top.ProofProjects))
	pool = append(pool, top.StarterPlan...)
	for _, project := range top.ProofProjects {
		pool = append(pool, project.Title)
	}
	return pool
}

// repairConfidence sets the missing scalar confidence to a fixed neutral
// default, never inferred from content.
func repairConfidence(a *types.RawAssessment) {
	if a.Confidence == "" {
		a.Confidence = types.ConfidenceMedium
	}
}

// repairFactors pads the itemized breakdown up to MinFactors with neutral,
// clearly-labeled placeholder entries.
func repairFactors(a *types.RawAssessment) {
	for i := len(a.Factors); i < MinFactors; i++ {
		a.Factors = append(a.Factors, types.Factor{
			Name:     fmt.Sprintf("Additional factor %d", i+1),
			Score:    NeutralFactorScore,
			Evidence: placeholderEvidence,
		})
	}
}

// repairPlan normalizes the plan to exactly one entry per horizon label in
// canonical order. Missing windows are backfilled from the grounded task
// pool, capped at MaxWindowTasks; short windows are padded to MinWindowTasks
// from the same pool, then from the generic placeholders.
func repairPlan(a *types.RawAssessment, pool []string) {
	byWindow := make(map[string][]string, len(types.PlanWindowOrder))
	for _, entry := range a.Plan {
		if _, seen := byWindow[entry.Window]; seen {
			continue // first occurrence wins
		}
		byWindow[entry.Window] = entry.Tasks
	}

	plan := make([]types.PlanWindow, 0, len(types.PlanWindowOrder))
	for _, window := range types.PlanWindowOrder {
		tasks, ok := byWindow[window]
		if !ok {
			tasks = backfillTasks(pool)
		}
		tasks = padTasks(tasks, pool)
		plan = append(plan, types.PlanWindow{Window: window, Tasks: tasks})
	}
	a.Plan = plan
}

// backfillTasks builds a full task list for a missing window.
func backfillTasks(pool []string) []string {
	if len(pool) == 0 {
		tasks := make([]string, len(genericPlanTasks))
		copy(tasks, genericPlanTasks)
		return tasks
	}
	n := min(len(pool), MaxWindowTasks)
	tasks := make([]string, n)
	copy(tasks, pool[:n])
	return tasks
}

// padTasks appends grounded (then generic) tasks not already present until
// the window holds at least MinWindowTasks.
func padTasks(tasks, pool []string) []string {
	if len(tasks) >= MinWindowTasks {
		return tasks
	}

	present := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		present[t] = true
	}

	for _, source := range [][]string{pool, genericPlanTasks} {
		for _, candidate := range source {
			if len(tasks) >= MinWindowTasks {
				return tasks
			}
			if present[candidate] {
				continue
			}
			tasks = append(tasks, candidate)
			present[candidate] = true
		}
	}
	return tasks
}

// repairImmediateActions backfills an empty immediate-action list from the
// grounded task pool, or the generic placeholders when no grounding exists.
func repairImmediateActions(a *types.RawAssessment, pool []string) {
	if len(a.ImmediateActions) > 0 {
		return
	}
	a.ImmediateActions = backfillTasks(pool)
}

// repairDataConfidence defaults the secondary confidence to low with an
// improvement hint, signaling uncertainty rather than asserting confidence.
func repairDataConfidence(a *types.RawAssessment) {
	if a.DataConfidence == nil {
		a.DataConfidence = &types.DataConfidence{
			Level: types.ConfidenceLow,
			Hint:  genericImprovementHint,
		}
		return
	}
	if a.DataConfidence.Level == "" {
		a.DataConfidence.Level = types.ConfidenceLow
		if a.DataConfidence.Hint == "" {
			a.DataConfidence.Hint = genericImprovementHint
		}
	}
}
