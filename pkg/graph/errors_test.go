package graph

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapError(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		want       error
	}{
		{"unauthorised", http.StatusUnauthorized, ErrUnauthorised},
		{"forbidden", http.StatusForbidden, ErrForbidden},
		{"not found", http.StatusNotFound, ErrNotFound},
		{"gone", http.StatusGone, ErrDeltaTokenExpired},
		{"rate limited", http.StatusTooManyRequests, ErrRateLimited},
		{"bad request", http.StatusBadRequest, ErrBadRequest},
		{"server error", http.StatusInternalServerError, ErrServerError},
		{"bad gateway", http.StatusBadGateway, ErrServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, WrapError(tt.statusCode), tt.want)
		})
	}
}

func TestWrapErrorSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("delta request failed: status 410: %w", WrapError(http.StatusGone))
	assert.True(t, errors.Is(err, ErrDeltaTokenExpired))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(http.StatusTooManyRequests))
	assert.True(t, IsRetryable(http.StatusServiceUnavailable))
	assert.True(t, IsRetryable(http.StatusInternalServerError))
	assert.False(t, IsRetryable(http.StatusNotFound))
	assert.False(t, IsRetryable(http.StatusGone))
	assert.False(t, IsRetryable(http.StatusOK))
}

func TestIsDeltaTokenExpired(t *testing.T) {
	assert.True(t, IsDeltaTokenExpired(http.StatusGone))
	assert.False(t, IsDeltaTokenExpired(http.StatusNotFound))
}
