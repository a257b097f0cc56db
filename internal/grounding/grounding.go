// Package grounding enforces that every role reference in a repaired
// assessment resolves against the grounding set supplied for the request.
// References that do not resolve are dropped, never corrected by guessing.
package grounding

import (
	"github.com/jonathan/career-advisor/internal/ranking"
	"github.com/jonathan/career-advisor/internal/types"
)

// Enforce checks every role reference in the repaired assessment against
// the grounding set. Unresolvable references are dropped. Project briefs
// must additionally reuse one of the target role's proof-project titles
// verbatim when that role defines any; failing briefs are excluded.
//
// It returns *InsufficientGroundingError when dropping leaves the result
// below minimum grounded coverage (no surviving adjacency, or an emptied
// brief set); the caller decides whether to re-invoke generation.
func Enforce(rep *types.RepairedAssessment, grounding []types.ScoredRole) (*types.GroundedAssessment, error) {
	byID := make(map[string]types.Role, len(grounding))
	for _, c := range grounding {
		byID[c.Role.ID] = c.Role
	}

	out := types.GroundedAssessment{
		RepairedAssessment: *rep,
		GroundingRoleIDs:   ranking.GroundingIDs(grounding),
	}

	// No grounding available: strip every reference and mark the result as
	// a degraded, lower-confidence fallback instead of failing.
	if len(grounding) == 0 {
		out.Degraded = true
		out.DroppedReferences = stripAllReferences(&out)
		if out.DataConfidence != nil {
			out.DataConfidence.Level = types.ConfidenceLow
		}
		return &out, nil
	}

	var dropped []string
	referenced := 0
	surviving := 0

	factors := make([]types.Factor, len(rep.Factors))
	copy(factors, rep.Factors)
	for i := range factors {
		var kept []string
		for _, id := range factors[i].RelatedRoleIDs {
			referenced++
			if _, ok := byID[id]; ok {
				kept = append(kept, id)
				surviving++
			} else {
				dropped = append(dropped, id)
			}
		}
		factors[i].RelatedRoleIDs = kept
	}
	out.Factors = factors

	briefs, briefDropped := filterBriefs(rep.ProjectBriefs, byID)
	dropped = append(dropped, briefDropped...)
	out.ProjectBriefs = briefs
	out.DroppedReferences = dropped

	if surviving == 0 {
		return nil, &InsufficientGroundingError{
			Reason:  "no grounded role adjacency survived reference checking",
			Dropped: dropped,
		}
	}
	if len(rep.ProjectBriefs) > 0 && len(briefs) == 0 {
		return nil, &InsufficientGroundingError{
			Reason:  "every project brief failed grounding checks",
			Dropped: dropped,
		}
	}

	return &out, nil
}

// filterBriefs keeps only briefs whose target role exists in the grounding
// set and whose title matches one of that role's proof-project titles
// verbatim (when the role defines proof projects).
func filterBriefs(briefs []types.ProjectBrief, byID map[string]types.Role) ([]types.ProjectBrief, []string) {
	var kept []types.ProjectBrief
	var dropped []string
	for _, brief := range briefs {
		role, ok := byID[brief.TargetRoleID]
		if !ok {
			dropped = append(dropped, brief.TargetRoleID)
			continue
		}
		if len(role.ProofProjects) > 0 && !hasProofTitle(role, brief.Title) {
			dropped = append(dropped, brief.TargetRoleID)
			continue
		}
		kept = append(kept, brief)
	}
	return kept, dropped
}

func hasProofTitle(role types.Role, title string) bool {
	for _, project := range role.ProofProjects {
		if project.Title == title {
			return true
		}
	}
	return false
}

// stripAllReferences removes every role reference and brief from an
// assessment produced without grounding, returning what was removed.
func stripAllReferences(out *types.GroundedAssessment) []string {
	var dropped []string
	factors := make([]types.Factor, len(out.Factors))
	copy(factors, out.Factors)
	for i := range factors {
		dropped = append(dropped, factors[i].RelatedRoleIDs...)
		factors[i].RelatedRoleIDs = nil
	}
	out.Factors = factors
	for _, brief := range out.ProjectBriefs {
		dropped = append(dropped, brief.TargetRoleID)
	}
	out.ProjectBriefs = nil
	return dropped
}
