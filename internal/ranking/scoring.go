// Package ranking scores catalog roles against a user profile.
package ranking

import (
	"strings"

	"github.com/jonathan/career-advisor/internal/types"
)

// Weights holds the score contribution of each independent signal. The
// defaults encode current product tuning; relative ordering matters more
// than the exact values.
type Weights struct {
	SkillOverlap     int `json:"skill_overlap"`
	TagOverlap       int `json:"tag_overlap"`
	TitleRelevance   int `json:"title_relevance"`
	InterestOverlap  int `json:"interest_overlap"`
	EarlyCareerBonus int `json:"early_career_bonus"`
}

// DefaultWeights returns the standard signal weights.
func DefaultWeights() Weights {
	return Weights{
		SkillOverlap:     10,
		TagOverlap:       5,
		TitleRelevance:   5,
		InterestOverlap:  5,
		EarlyCareerBonus: 5,
	}
}

// seniorityNeutralKeywords mark titles that suit an early-career or
// exploration audience.
var seniorityNeutralKeywords = []string{"coordinator", "analyst", "associate", "specialist"}

// scoreSkillOverlap awards points per core skill that matches any declared
// user skill. Matching is bidirectional substring, case-insensitive: it
// over-matches on purpose to favor recall over precision.
func scoreSkillOverlap(role *types.Role, skills []string, weight int) int {
	score := 0
	for _, core := range role.CoreSkills {
		coreLower := strings.ToLower(core)
		for _, skill := range skills {
			skillLower := strings.ToLower(skill)
			if skillLower == "" {
				continue
			}
			if strings.Contains(coreLower, skillLower) || strings.Contains(skillLower, coreLower) {
				score += weight
				break
			}
		}
	}
	return score
}

// scoreTagOverlap awards points per role tag contained in any user skill.
func scoreTagOverlap(role *types.Role, skills []string, weight int) int {
	score := 0
	for _, tag := range role.Tags {
		tagLower := strings.ToLower(tag)
		for _, skill := range skills {
			if strings.Contains(strings.ToLower(skill), tagLower) {
				score += weight
				break
			}
		}
	}
	return score
}

// scoreTitleRelevance awards points when the role title contains the user's
// current job title.
func scoreTitleRelevance(role *types.Role, jobTitle string, weight int) int {
	title := strings.TrimSpace(strings.ToLower(jobTitle))
	if title == "" {
		return 0
	}
	if strings.Contains(strings.ToLower(role.Title), title) {
		return weight
	}
	return 0
}

// scoreInterestOverlap awards points per declared interest that matches a
// role tag or responsibility-area label.
func scoreInterestOverlap(role *types.Role, interests []string, weight int) int {
	score := 0
	for _, interest := range interests {
		interestLower := strings.ToLower(strings.TrimSpace(interest))
		if interestLower == "" {
			continue
		}
		matched := false
		for _, tag := range role.Tags {
			tagLower := strings.ToLower(tag)
			if strings.Contains(interestLower, tagLower) || strings.Contains(tagLower, interestLower) {
				matched = true
				break
			}
		}
		if !matched {
			for _, resp := range role.Responsibilities {
				respLower := strings.ToLower(resp)
				if strings.Contains(respLower, interestLower) || strings.Contains(interestLower, respLower) {
					matched = true
					break
				}
			}
		}
		if matched {
			score += weight
		}
	}
	return score
}

// scoreEarlyCareerBonus awards a flat bonus to seniority-neutral titles when
// the profile signals exploration or early-career.
func scoreEarlyCareerBonus(role *types.Role, profile *types.Profile, weight int) int {
	if !profile.EarlyCareer() {
		return 0
	}
	titleLower := strings.ToLower(role.Title)
	for _, keyword := range seniorityNeutralKeywords {
		if strings.Contains(titleLower, keyword) {
			return weight
		}
	}
	return 0
}
