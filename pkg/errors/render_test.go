package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"deadline exceeded", context.DeadlineExceeded, CodeTimeout},
		{"wrapped deadline", fmt.Errorf("calling vendor: %w", context.DeadlineExceeded), CodeTimeout},
		{"cancelled", context.Canceled, CodeContextCancelled},
		{"rate limit text", errors.New("vendor returned 429 Too Many Requests"), CodeRateLimit},
		{"quota", errors.New("monthly quota exceeded"), CodeRateLimit},
		{"connection refused", errors.New("dial tcp: connection refused"), CodeVendorUnavailable},
		{"service unavailable", errors.New("vendor returned 503 Service Unavailable"), CodeVendorUnavailable},
		{"empty audio", errors.New("vendor returned empty audio payload"), CodeEmptyAudio},
		{"empty script", errors.New("empty script for segment"), CodeEmptyScript},
		{"probe failure", errors.New("ffprobe exited with status 1"), CodeProbeError},
		{"timeout text", errors.New("request timed out after 30s"), CodeTimeout},
		{"unknown", errors.New("something odd happened"), CodeProcessingError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.err))
		})
	}
}

func TestRenderFailureRetryable(t *testing.T) {
	retryable := NewRenderFailure("news", "news_1", errors.New("vendor returned 429"))
	assert.True(t, retryable.Retryable())

	permanent := NewRenderFailure("news", "news_2", errors.New("empty script for segment"))
	assert.False(t, permanent.Retryable())
}

func TestRenderFailureUnwrap(t *testing.T) {
	cause := context.DeadlineExceeded
	rf := NewRenderFailure("headline", "headline_1", cause)

	require.ErrorIs(t, rf, context.DeadlineExceeded)
	assert.Equal(t, CodeTimeout, rf.Code)
	assert.Contains(t, rf.Error(), "headline_1")
}

func TestIsRetryable(t *testing.T) {
	wrapped := fmt.Errorf("render step: %w",
		NewRenderFailure("news", "news_1", errors.New("503 from vendor")))
	assert.True(t, IsRetryable(wrapped))

	assert.False(t, IsRetryable(errors.New("plain error")))
	assert.False(t, IsRetryable(nil))
}
