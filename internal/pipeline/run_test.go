package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/career-advisor/internal/catalog"
	"github.com/jonathan/career-advisor/internal/llm"
	"github.com/jonathan/career-advisor/internal/ranking"
	"github.com/jonathan/career-advisor/internal/types"
)

// scriptedGenerator returns queued responses in order, recording every
// prompt it was called with.
type scriptedGenerator struct {
	responses []string
	errs      []error
	prompts   []string
}

func (g *scriptedGenerator) GenerateJSON(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	g.prompts = append(g.prompts, prompt)
	i := len(g.prompts) - 1
	if i < len(g.errs) && g.errs[i] != nil {
		return "", g.errs[i]
	}
	if i < len(g.responses) {
		return g.responses[i], nil
	}
	return "", errors.New("no scripted response left")
}

const validResponse = `{
  "summary": "Strong transfer potential into automation work.",
  "confidence": "high",
  "factors": [{"name": "Skill overlap", "score": 80, "evidence": "Excel daily", "related_role_ids": ["automation-analyst"]}],
  "plan": [
    {"window": "30_days", "tasks": ["a", "b", "c"]},
    {"window": "60_days", "tasks": ["d", "e", "f"]},
    {"window": "90_days", "tasks": ["g", "h", "i"]}
  ],
  "immediate_actions": ["Update resume"],
  "data_confidence": {"level": "medium"}
}`

const ghostResponse = `{
  "summary": "Looks good.",
  "factors": [{"name": "f", "score": 50, "evidence": "e", "related_role_ids": ["senior-cloud-architect"]}],
  "plan": [{"window": "30_days", "tasks": ["a", "b", "c"]}],
  "immediate_actions": ["x"]
}`

func testLibrary(t *testing.T) *catalog.Library {
	t.Helper()
	lib, err := catalog.FromRoles([]types.Role{
		{
			ID:          "automation-analyst",
			Title:       "Automation Analyst",
			CoreSkills:  []string{"Excel"},
			StarterPlan: []string{"Automate one recurring report", "Map a workflow", "Learn Power Query"},
			ProofProjects: []types.ProofProject{
				{Title: "Invoice Reconciliation Autopilot"},
			},
		},
	})
	require.NoError(t, err)
	return lib
}

func testProfile() *types.Profile {
	return &types.Profile{
		JobTitle:        "Data Entry Clerk",
		Skills:          []string{"Excel"},
		YearsExperience: 1,
	}
}

func newTestPipeline(gen Generator) *Pipeline {
	return New(gen, ranking.NewRanker(ranking.DefaultWeights(), ranking.DefaultTopK), zap.NewNop(), DefaultMaxAttempts)
}

func TestRun_SuccessFirstAttempt(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{validResponse}}
	pipe := newTestPipeline(gen)

	result, err := pipe.Run(context.Background(), testProfile(), testLibrary(t))
	require.NoError(t, err)
	require.Len(t, gen.prompts, 1)

	assert.Equal(t, []string{"automation-analyst"}, result.GroundingRoleIDs)
	assert.Equal(t, "high", result.Confidence)
	assert.Len(t, result.Plan, 3)
	assert.False(t, result.Degraded)

	// The prompt carries the candidate roles and the profile.
	assert.Contains(t, gen.prompts[0], "automation-analyst")
	assert.Contains(t, gen.prompts[0], "Data Entry Clerk")
	assert.NotContains(t, gen.prompts[0], "STRICT GROUNDING")
}

func TestRun_ParseFailureThenSuccess(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{"not json at all", validResponse}}
	pipe := newTestPipeline(gen)

	result, err := pipe.Run(context.Background(), testProfile(), testLibrary(t))
	require.NoError(t, err)
	assert.Len(t, gen.prompts, 2, "a malformed response consumes one attempt")
	assert.Equal(t, []string{"automation-analyst"}, result.GroundingRoleIDs)
}

func TestRun_AllAttemptsMalformed(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{"garbage", "more garbage"}}
	pipe := newTestPipeline(gen)

	result, err := pipe.Run(context.Background(), testProfile(), testLibrary(t))
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Len(t, gen.prompts, DefaultMaxAttempts)

	var exhausted *GenerationExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, DefaultMaxAttempts, exhausted.Attempts)
}

func TestRun_TransportFailureThenSuccess(t *testing.T) {
	gen := &scriptedGenerator{
		errs:      []error{errors.New("deadline exceeded")},
		responses: []string{"", validResponse},
	}
	pipe := newTestPipeline(gen)

	_, err := pipe.Run(context.Background(), testProfile(), testLibrary(t))
	require.NoError(t, err)
	assert.Len(t, gen.prompts, 2, "transport failures share the attempt budget")
}

func TestRun_GroundingRetryReinforcesPrompt(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{ghostResponse, validResponse}}
	pipe := newTestPipeline(gen)

	result, err := pipe.Run(context.Background(), testProfile(), testLibrary(t))
	require.NoError(t, err)
	require.Len(t, gen.prompts, 2)

	assert.NotContains(t, gen.prompts[0], "STRICT GROUNDING")
	assert.Contains(t, gen.prompts[1], "STRICT GROUNDING",
		"the retry after a grounding failure carries the reinforced instruction")
	assert.Equal(t, []string{"automation-analyst"}, result.GroundingRoleIDs)
}

func TestRun_GroundingBudgetExhausted(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{ghostResponse, ghostResponse}}
	pipe := newTestPipeline(gen)

	result, err := pipe.Run(context.Background(), testProfile(), testLibrary(t))
	require.Error(t, err)
	assert.Nil(t, result, "an ungrounded result is never returned")

	var groundingErr *GroundingFailureError
	require.ErrorAs(t, err, &groundingErr)
	assert.Equal(t, DefaultMaxAttempts, groundingErr.Attempts)
}

func TestRun_EmptyOutputWithoutCandidatesIsTerminal(t *testing.T) {
	emptyLib, err := catalog.FromRoles(nil)
	require.NoError(t, err)

	gen := &scriptedGenerator{responses: []string{`{}`, `{}`}}
	pipe := newTestPipeline(gen)

	_, err = pipe.Run(context.Background(), testProfile(), emptyLib)
	require.Error(t, err)
	assert.Len(t, gen.prompts, 1, "an ungrounded empty payload is terminal, not retried")
}

func TestRun_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := &scriptedGenerator{responses: []string{validResponse}}
	pipe := newTestPipeline(gen)

	_, err := pipe.Run(ctx, testProfile(), testLibrary(t))
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, gen.prompts, "no generation call after cancellation")
}

func TestBuildAssessmentPrompt_ContainsContract(t *testing.T) {
	lib := testLibrary(t)
	candidates := ranking.NewRanker(ranking.DefaultWeights(), ranking.DefaultTopK).Rank(testProfile(), lib)

	pipe := newTestPipeline(&scriptedGenerator{})
	prompt, err := pipe.buildAssessmentPrompt(testProfile(), candidates, false)
	require.NoError(t, err)

	assert.Contains(t, prompt, "CANDIDATE ROLES")
	assert.Contains(t, prompt, "USER PROFILE")
	assert.Contains(t, prompt, "Invoice Reconciliation Autopilot",
		"proof-project titles are part of the grounding handed to the model")
	assert.True(t, strings.Contains(prompt, `"id": "automation-analyst"`))
}
