package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/career-advisor/internal/pipeline"
	"github.com/jonathan/career-advisor/internal/quota"
	"github.com/jonathan/career-advisor/internal/types"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
	}{
		{
			"quota exceeded",
			&quota.QuotaExceededError{Class: types.IdentityAnonymous, Used: 3, Limit: 3},
			http.StatusTooManyRequests, kindQuotaExceeded,
		},
		{
			"grounding failure",
			&pipeline.GroundingFailureError{Attempts: 2},
			http.StatusUnprocessableEntity, kindGroundingFailure,
		},
		{
			"generation exhausted",
			&pipeline.GenerationExhaustedError{Attempts: 2},
			http.StatusBadGateway, kindGenerationFailed,
		},
		{
			"cancelled context",
			context.Canceled,
			http.StatusRequestTimeout, kindRequestCancelled,
		},
		{
			"deadline exceeded, wrapped",
			fmt.Errorf("generation: %w", context.DeadlineExceeded),
			http.StatusRequestTimeout, kindRequestCancelled,
		},
		{
			"unknown error",
			errors.New("boom"),
			http.StatusInternalServerError, kindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, detail := classifyError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantKind, detail.Kind)
		})
	}
}
