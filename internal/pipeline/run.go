package pipeline

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/jonathan/career-advisor/internal/catalog"
	"github.com/jonathan/career-advisor/internal/grounding"
	"github.com/jonathan/career-advisor/internal/llm"
	"github.com/jonathan/career-advisor/internal/ranking"
	"github.com/jonathan/career-advisor/internal/repair"
	"github.com/jonathan/career-advisor/internal/types"
)

// DefaultMaxAttempts bounds the external generation calls per request,
// shared between parse/transport failures and grounding retries.
const DefaultMaxAttempts = 2

// Generator is the one-shot call into the external generative service.
// *llm.GeminiClient satisfies it; tests substitute fakes.
type Generator interface {
	GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
}

// Pipeline runs the full grounded generation flow for one request. It holds
// no per-request state and is safe for concurrent use.
type Pipeline struct {
	gen         Generator
	ranker      *ranking.Ranker
	prompts     promptSet
	log         *zap.Logger
	maxAttempts int
}

// New builds a pipeline and loads the embedded prompt templates; it panics
// if a required template is missing. A zero or negative maxAttempts falls
// back to DefaultMaxAttempts; a nil logger falls back to a no-op logger.
func New(gen Generator, ranker *ranking.Ranker, log *zap.Logger, maxAttempts int) *Pipeline {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		gen:         gen,
		ranker:      ranker,
		prompts:     loadPromptSet(),
		log:         log,
		maxAttempts: maxAttempts,
	}
}

// Run ranks the catalog for the profile, invokes generation, and pushes the
// raw output through validation, repair, and grounding enforcement.
//
// The attempt loop is explicit: parse failures, transport/timeout failures,
// and insufficient grounding all consume attempts from the same budget.
// Grounding retries reinforce the prompt with a verbatim-identifier
// instruction. Terminal failures are returned as distinct error kinds and
// a partially processed result is never returned.
func (p *Pipeline) Run(ctx context.Context, profile *types.Profile, lib *catalog.Library) (*types.GroundedAssessment, error) {
	candidates := p.ranker.Rank(profile, lib)
	p.log.Info("ranked candidate roles",
		zap.Int("catalog_size", lib.Len()),
		zap.Int("candidates", len(candidates)),
	)

	var lastErr error
	groundingFailed := false
	reinforced := false

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		prompt, err := p.buildAssessmentPrompt(profile, candidates, reinforced)
		if err != nil {
			return nil, err
		}

		raw, err := p.gen.GenerateJSON(ctx, prompt, llm.TierStandard)
		if err != nil {
			// Transport and timeout failures are treated like parse
			// failures: retryable within the budget.
			p.log.Warn("generation call failed",
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			lastErr = err
			continue
		}

		repaired, err := repair.ValidateAndRepair(raw, candidates)
		if err != nil {
			var parseErr *repair.ParseError
			if errors.As(err, &parseErr) {
				p.log.Warn("generator output failed validation",
					zap.Int("attempt", attempt),
					zap.Error(err),
				)
				lastErr = err
				continue
			}
			// UngroundedOutputError and anything else is terminal.
			return nil, err
		}

		result, err := grounding.Enforce(repaired, candidates)
		if err != nil {
			var insufficient *grounding.InsufficientGroundingError
			if errors.As(err, &insufficient) {
				p.log.Warn("grounding coverage insufficient, reinforcing constraints",
					zap.Int("attempt", attempt),
					zap.Strings("dropped", insufficient.Dropped),
				)
				lastErr = err
				groundingFailed = true
				reinforced = true
				continue
			}
			return nil, err
		}

		if len(result.DroppedReferences) > 0 {
			p.log.Info("dropped ungrounded references",
				zap.Int("attempt", attempt),
				zap.Strings("dropped", result.DroppedReferences),
			)
		}
		return result, nil
	}

	if groundingFailed {
		return nil, &GroundingFailureError{Attempts: p.maxAttempts, Cause: lastErr}
	}
	return nil, &GenerationExhaustedError{Attempts: p.maxAttempts, Cause: lastErr}
}
