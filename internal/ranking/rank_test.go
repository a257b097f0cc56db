package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/career-advisor/internal/catalog"
	"github.com/jonathan/career-advisor/internal/types"
)

func testLibrary(t *testing.T, roles ...types.Role) *catalog.Library {
	t.Helper()
	lib, err := catalog.FromRoles(roles)
	require.NoError(t, err)
	return lib
}

func TestRank_DataEntryClerkProfile(t *testing.T) {
	catalog.Invalidate()
	lib, err := catalog.Default()
	require.NoError(t, err)

	profile := &types.Profile{
		JobTitle:        "Data Entry Clerk",
		Skills:          []string{"Excel", "Data Entry"},
		YearsExperience: 1,
	}

	ranked := NewRanker(DefaultWeights(), DefaultTopK).Rank(profile, lib)
	require.Len(t, ranked, DefaultTopK)

	assert.Equal(t, "data-quality-specialist", ranked[0].Role.ID,
		"both declared skills plus tags and the specialist bonus should put data quality on top")

	ids := GroundingIDs(ranked)
	assert.Contains(t, ids, "automation-analyst", "Excel overlap should carry automation analyst into the candidates")
	assert.NotContains(t, ids, "junior-data-engineer", "role with no overlap should fall below the cut")
}

func TestRank_ScoresDescending(t *testing.T) {
	catalog.Invalidate()
	lib, err := catalog.Default()
	require.NoError(t, err)

	profile := &types.Profile{
		JobTitle: "Office Manager",
		Skills:   []string{"Excel", "Scheduling"},
	}

	ranked := NewRanker(DefaultWeights(), DefaultTopK).Rank(profile, lib)
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Score, ranked[i].Score)
	}
}

func TestRank_StableTieOrder(t *testing.T) {
	roleA := types.Role{ID: "role-a", Title: "Analyst A", CoreSkills: []string{"SQL"}}
	roleB := types.Role{ID: "role-b", Title: "Analyst B", CoreSkills: []string{"SQL"}}
	lib := testLibrary(t, roleA, roleB)

	profile := &types.Profile{
		JobTitle:        "Engineer",
		Skills:          []string{"SQL"},
		YearsExperience: 10,
	}

	ranked := NewRanker(DefaultWeights(), DefaultTopK).Rank(profile, lib)
	require.Len(t, ranked, 2)
	assert.Equal(t, ranked[0].Score, ranked[1].Score)
	assert.Equal(t, "role-a", ranked[0].Role.ID, "ties keep catalog order")
	assert.Equal(t, "role-b", ranked[1].Role.ID)
}

func TestRank_TopKTruncation(t *testing.T) {
	roles := []types.Role{
		{ID: "r1", Title: "Role 1", CoreSkills: []string{"Excel"}},
		{ID: "r2", Title: "Role 2", CoreSkills: []string{"Excel"}},
		{ID: "r3", Title: "Role 3", CoreSkills: []string{"Excel"}},
	}
	lib := testLibrary(t, roles...)

	profile := &types.Profile{JobTitle: "Clerk", Skills: []string{"Excel"}, YearsExperience: 5}

	ranked := NewRanker(DefaultWeights(), 2).Rank(profile, lib)
	assert.Len(t, ranked, 2)
}

func TestRank_EmptyLibrary(t *testing.T) {
	lib := testLibrary(t)
	profile := &types.Profile{JobTitle: "Clerk", Skills: []string{"Excel"}}

	ranked := NewRanker(DefaultWeights(), DefaultTopK).Rank(profile, lib)
	assert.Empty(t, ranked)
}

func TestRank_PureAndRepeatable(t *testing.T) {
	role := types.Role{ID: "r1", Title: "Reporting Analyst", CoreSkills: []string{"Excel", "SQL"}, Tags: []string{"excel"}}
	lib := testLibrary(t, role)
	profile := &types.Profile{JobTitle: "Clerk", Skills: []string{"Excel"}, YearsExperience: 1}

	ranker := NewRanker(DefaultWeights(), DefaultTopK)
	first := ranker.Rank(profile, lib)
	second := ranker.Rank(profile, lib)

	assert.Equal(t, first, second, "identical inputs must produce identical output")
	assert.Equal(t, "Reporting Analyst", lib.Roles()[0].Title, "catalog must not be mutated")
}

func TestScoreSkillOverlap_BidirectionalSubstring(t *testing.T) {
	role := &types.Role{CoreSkills: []string{"Microsoft Excel", "SQL"}}

	// User skill contained in core skill.
	assert.Equal(t, 10, scoreSkillOverlap(role, []string{"excel"}, 10))
	// Core skill contained in user skill.
	assert.Equal(t, 10, scoreSkillOverlap(role, []string{"Advanced SQL querying"}, 10))
	// One point per core skill, not per user skill.
	assert.Equal(t, 20, scoreSkillOverlap(role, []string{"excel", "sql"}, 10))
	assert.Equal(t, 0, scoreSkillOverlap(role, []string{"welding"}, 10))
}

func TestScoreEarlyCareerBonus(t *testing.T) {
	role := &types.Role{Title: "Operations Coordinator"}
	senior := &types.Profile{JobTitle: "Director", Skills: []string{"x"}, YearsExperience: 12, Goal: types.GoalAdvance}
	explorer := &types.Profile{JobTitle: "Director", Skills: []string{"x"}, YearsExperience: 12, Goal: types.GoalExplore}
	junior := &types.Profile{JobTitle: "Assistant", Skills: []string{"x"}, YearsExperience: 1}

	assert.Equal(t, 0, scoreEarlyCareerBonus(role, senior, 5))
	assert.Equal(t, 5, scoreEarlyCareerBonus(role, explorer, 5), "explore goal qualifies regardless of experience")
	assert.Equal(t, 5, scoreEarlyCareerBonus(role, junior, 5))

	seniorTitle := &types.Role{Title: "Head of Operations"}
	assert.Equal(t, 0, scoreEarlyCareerBonus(seniorTitle, junior, 5), "bonus only applies to seniority-neutral titles")
}
