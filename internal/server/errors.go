package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/career-advisor/internal/pipeline"
	"github.com/jonathan/career-advisor/internal/quota"
	"github.com/jonathan/career-advisor/internal/repair"
)

// errorBody is the wire shape for every error response. Kind is stable and
// machine-checkable; message is for humans.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Stable error kinds surfaced to API clients.
const (
	kindInvalidRequest    = "invalid_request"
	kindUnauthorized      = "unauthorized"
	kindQuotaExceeded     = "quota_exceeded"
	kindGroundingFailure  = "grounding_failure"
	kindGenerationFailed  = "generation_failed"
	kindUngroundedOutput  = "ungrounded_output"
	kindRateLimitExceeded = "rate_limit_exceeded"
	kindRequestCancelled  = "request_cancelled"
	kindInternal          = "internal_error"
)

// classifyError maps pipeline and quota failures to an HTTP status and a
// stable kind. Messages for retryable-by-the-user cases tell the caller
// what to do next rather than exposing internals.
func classifyError(err error) (int, errorDetail) {
	var quotaErr *quota.QuotaExceededError
	if errors.As(err, &quotaErr) {
		return http.StatusTooManyRequests, errorDetail{
			Kind:    kindQuotaExceeded,
			Message: quotaErr.Error(),
		}
	}

	var groundingErr *pipeline.GroundingFailureError
	if errors.As(err, &groundingErr) {
		return http.StatusUnprocessableEntity, errorDetail{
			Kind:    kindGroundingFailure,
			Message: "could not produce a grounded assessment; please add more detail to your profile",
		}
	}

	var exhaustedErr *pipeline.GenerationExhaustedError
	if errors.As(err, &exhaustedErr) {
		return http.StatusBadGateway, errorDetail{
			Kind:    kindGenerationFailed,
			Message: "assessment generation failed; please try again",
		}
	}

	var ungroundedErr *repair.UngroundedOutputError
	if errors.As(err, &ungroundedErr) {
		return http.StatusUnprocessableEntity, errorDetail{
			Kind:    kindUngroundedOutput,
			Message: "the generated assessment contained no usable content",
		}
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return http.StatusBadRequest, errorDetail{
			Kind:    kindInvalidRequest,
			Message: validationErrs.Error(),
		}
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusRequestTimeout, errorDetail{
			Kind:    kindRequestCancelled,
			Message: "the request was cancelled before completion",
		}
	}

	return http.StatusInternalServerError, errorDetail{
		Kind:    kindInternal,
		Message: "internal error",
	}
}
