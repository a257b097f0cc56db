// Package llm provides the generative text client used to produce
// assessments. The service is treated as an opaque function from prompt to
// raw text; everything it returns is untrusted until validated.
package llm

import "time"

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for simple tasks: classification, short extraction
	TierLite ModelTier = "lite"
	// TierStandard is for structured output: assessments, project briefs
	TierStandard ModelTier = "standard"
	// TierAdvanced is for complex reasoning when standard output keeps failing validation
	TierAdvanced ModelTier = "advanced"
)

// DefaultTimeout bounds a single generation call. The pipeline treats a
// timeout like a parse failure: retryable within the attempt budget.
const DefaultTimeout = 45 * time.Second

// Config holds the model configuration for the application
type Config struct {
	Models  map[ModelTier]string
	Timeout time.Duration
}

// DefaultConfig returns the default Gemini configuration.
func DefaultConfig() *Config {
	return &Config{
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Timeout: DefaultTimeout,
	}
}

// GetModel returns the model name for a given tier, falling back to
// standard, then lite.
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}
