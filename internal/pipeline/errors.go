// Package pipeline orchestrates the grounded generation flow: rank, prompt,
// generate, validate/repair, enforce grounding, with a bounded retry budget.
package pipeline

import "fmt"

// GenerationExhaustedError indicates every attempt ended in a malformed
// response or a transport/timeout failure. Terminal for this request; the
// caller may invite the user to try again.
type GenerationExhaustedError struct {
	Attempts int
	Cause    error
}

func (e *GenerationExhaustedError) Error() string {
	return fmt.Sprintf("generation failed after %d attempts: %v", e.Attempts, e.Cause)
}

func (e *GenerationExhaustedError) Unwrap() error {
	return e.Cause
}

// GroundingFailureError indicates the generator kept referencing roles
// outside the grounding set and the retry budget is spent. Terminal and
// user-visible; an ungrounded result is never returned silently.
type GroundingFailureError struct {
	Attempts int
	Cause    error
}

func (e *GroundingFailureError) Error() string {
	return fmt.Sprintf("grounding failed after %d attempts: %v", e.Attempts, e.Cause)
}

func (e *GroundingFailureError) Unwrap() error {
	return e.Cause
}
