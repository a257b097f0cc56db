package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAssessment_MinimalDocument(t *testing.T) {
	assert.NoError(t, ValidateAssessment(`{}`), "all top-level fields are optional; repair fills the gaps")
}

func TestValidateAssessment_FullDocument(t *testing.T) {
	doc := `{
	  "summary": "Good fit.",
	  "confidence": "high",
	  "factors": [{"name": "Skills", "score": 80, "evidence": "e", "related_role_ids": ["r1"]}],
	  "plan": [{"window": "30_days", "tasks": ["a"]}],
	  "immediate_actions": ["x"],
	  "data_confidence": {"level": "medium", "hint": "h"},
	  "project_briefs": [{"title": "T", "target_role_id": "r1", "deliverables": ["d"]}]
	}`
	assert.NoError(t, ValidateAssessment(doc))
}

func TestValidateAssessment_NullArraysAccepted(t *testing.T) {
	// Null-valued optional fields are structural omissions for the repair
	// layer, not type errors.
	doc := `{
	  "summary": "Good fit.",
	  "factors": null,
	  "plan": [{"window": "30_days", "tasks": null}],
	  "immediate_actions": null,
	  "data_confidence": null,
	  "project_briefs": null
	}`
	assert.NoError(t, ValidateAssessment(doc))
}

func TestValidateAssessment_RejectsWrongTypes(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"summary not a string", `{"summary": 42}`},
		{"factor score not a number", `{"factors": [{"name": "f", "score": "high"}]}`},
		{"factor missing name", `{"factors": [{"score": 50}]}`},
		{"unknown plan window", `{"plan": [{"window": "45_days", "tasks": ["a"]}]}`},
		{"brief missing target", `{"project_briefs": [{"title": "T"}]}`},
		{"root not an object", `["not", "an", "object"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAssessment(tt.doc)
			require.Error(t, err)
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.NotEmpty(t, validationErr.Errors)
		})
	}
}

func TestValidateAssessment_NotJSON(t *testing.T) {
	err := ValidateAssessment(`this is not json`)
	require.Error(t, err)
	var loadErr *SchemaLoadError
	assert.ErrorAs(t, err, &loadErr, "unparseable content is a load error, not a validation error")
}

func TestValidationError_MessageListsFields(t *testing.T) {
	err := ValidateAssessment(`{"factors": [{"score": 50}]}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}
