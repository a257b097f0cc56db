// Package repair validates generator output and deterministically fills
// structural gaps without inventing content.
package repair

import "fmt"

// ParseError indicates the raw generator output could not be parsed into the
// assessment schema. It is retryable: the pipeline owns the retry budget and
// may re-invoke generation.
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// UngroundedOutputError indicates recovery is impossible: there are no
// grounding roles to repair from AND the structured payload is empty. It is
// terminal.
type UngroundedOutputError struct {
	Message string
}

func (e *UngroundedOutputError) Error() string {
	return fmt.Sprintf("ungrounded output: %s", e.Message)
}
