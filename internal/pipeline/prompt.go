package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/career-advisor/internal/prompts"
	"github.com/jonathan/career-advisor/internal/types"
)

const promptFile = "advisor.json"

// promptSet holds the templates a pipeline generates from. The templates
// are embedded, so loading them is done once at construction and a missing
// key is a programmer error.
type promptSet struct {
	system        string
	userTemplate  string
	reinforcement string
}

func loadPromptSet() promptSet {
	return promptSet{
		system:        prompts.MustGet(promptFile, "assessment_system"),
		userTemplate:  prompts.MustGet(promptFile, "assessment_user"),
		reinforcement: prompts.MustGet(promptFile, "grounding_reinforcement"),
	}
}

// candidateRole is the slim view of a catalog role shared with the
// generator: enough to ground the assessment, nothing more.
type candidateRole struct {
	ID            string              `json:"id"`
	Title         string              `json:"title"`
	Summary       string              `json:"summary"`
	CoreSkills    []string            `json:"core_skills"`
	StarterPlan   []string            `json:"starter_plan,omitempty"`
	ProofProjects []types.ProofProject `json:"proof_projects,omitempty"`
	Tags          []string            `json:"tags,omitempty"`
}

// buildAssessmentPrompt assembles the full generation prompt from the
// preloaded templates, the candidate roles, and the user profile. When
// reinforced is set, the strict-grounding instruction is appended; it is
// used on retries after a grounding failure.
func (p *Pipeline) buildAssessmentPrompt(profile *types.Profile, candidates []types.ScoredRole, reinforced bool) (string, error) {
	roles := make([]candidateRole, 0, len(candidates))
	for _, c := range candidates {
		roles = append(roles, candidateRole{
			ID:            c.Role.ID,
			Title:         c.Role.Title,
			Summary:       c.Role.Summary,
			CoreSkills:    c.Role.CoreSkills,
			StarterPlan:   c.Role.StarterPlan,
			ProofProjects: c.Role.ProofProjects,
			Tags:          c.Role.Tags,
		})
	}

	rolesJSON, err := json.MarshalIndent(roles, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal candidate roles: %w", err)
	}
	profileJSON, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal profile: %w", err)
	}

	user := prompts.Format(p.prompts.userTemplate, map[string]string{
		"CandidateRoles": string(rolesJSON),
		"Profile":        string(profileJSON),
	})

	var sb strings.Builder
	sb.WriteString(p.prompts.system)
	if reinforced {
		sb.WriteString("\n\n")
		sb.WriteString(p.prompts.reinforcement)
	}
	sb.WriteString("\n\n")
	sb.WriteString(user)
	return sb.String(), nil
}
