// Package ranking scores catalog roles against a user profile.
package ranking

import (
	"sort"

	"github.com/jonathan/career-advisor/internal/catalog"
	"github.com/jonathan/career-advisor/internal/types"
)

// DefaultTopK is the number of candidate roles handed to generation. The
// top-K list is the only grounding the generator may reference.
const DefaultTopK = 6

// Ranker scores and orders catalog roles for one profile. It is pure:
// identical inputs produce identical output, and the catalog is never
// mutated.
type Ranker struct {
	weights Weights
	topK    int
}

// NewRanker builds a ranker. A zero or negative topK falls back to
// DefaultTopK.
func NewRanker(weights Weights, topK int) *Ranker {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Ranker{weights: weights, topK: topK}
}

// Rank scores every role in the library and returns the top-K by total
// score, descending. Ties keep catalog iteration order (stable sort). An
// empty library yields an empty slice; downstream treats that as "no
// grounding available".
func (r *Ranker) Rank(profile *types.Profile, lib *catalog.Library) []types.ScoredRole {
	roles := lib.Roles()
	scored := make([]types.ScoredRole, 0, len(roles))
	for i := range roles {
		role := &roles[i]
		score := scoreSkillOverlap(role, profile.Skills, r.weights.SkillOverlap) +
			scoreTagOverlap(role, profile.Skills, r.weights.TagOverlap) +
			scoreTitleRelevance(role, profile.JobTitle, r.weights.TitleRelevance) +
			scoreInterestOverlap(role, profile.Interests, r.weights.InterestOverlap) +
			scoreEarlyCareerBonus(role, profile, r.weights.EarlyCareerBonus)

		scored = append(scored, types.ScoredRole{Role: *role, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > r.topK {
		scored = scored[:r.topK]
	}
	return scored
}

// GroundingIDs extracts the role identifiers from a ranked candidate list,
// preserving rank order.
func GroundingIDs(candidates []types.ScoredRole) []string {
	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.Role.ID)
	}
	return ids
}
