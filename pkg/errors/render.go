package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a classified vendor/render error.
type ErrorCode string

const (
	CodeTimeout          ErrorCode = "timeout"
	CodeRateLimit        ErrorCode = "rate_limit"
	CodeVendorUnavailable ErrorCode = "vendor_unavailable"
	CodeContextCancelled ErrorCode = "context_cancelled"
	CodeEmptyAudio       ErrorCode = "empty_audio"
	CodeEmptyScript      ErrorCode = "empty_script"
	CodeProbeError       ErrorCode = "probe_error"
	CodeProcessingError  ErrorCode = "processing_error"
)

// codeInfo describes how a classified error should be handled.
type codeInfo struct {
	Retryable   bool
	Description string
}

// errorCodeRegistry maps each code to its handling metadata.
var errorCodeRegistry = map[ErrorCode]codeInfo{
	CodeTimeout:           {Retryable: true, Description: "vendor call timed out"},
	CodeRateLimit:         {Retryable: true, Description: "vendor rate limit hit"},
	CodeVendorUnavailable: {Retryable: true, Description: "vendor unreachable"},
	CodeContextCancelled:  {Retryable: false, Description: "run was cancelled"},
	CodeEmptyAudio:        {Retryable: false, Description: "vendor returned no audio"},
	CodeEmptyScript:       {Retryable: false, Description: "segment has no script text"},
	CodeProbeError:        {Retryable: false, Description: "audio asset could not be decoded"},
	CodeProcessingError:   {Retryable: false, Description: "unclassified processing error"},
}

// RenderFailure is a structured error for a failed audio render. The affected
// segment is excluded from the timeline; the step reports a summary count of
// excluded segments at the end so an operator can re-run just the missing ones.
type RenderFailure struct {
	SegmentType string
	SegmentID   string
	Code        ErrorCode
	Cause       error
}

func (e *RenderFailure) Error() string {
	if e.SegmentID != "" {
		return fmt.Sprintf("render failed for %s (%s): %s: %v", e.SegmentID, e.SegmentType, e.Code, e.Cause)
	}
	return fmt.Sprintf("render failed for %s: %s: %v", e.SegmentType, e.Code, e.Cause)
}

func (e *RenderFailure) Unwrap() error {
	return e.Cause
}

// Retryable reports whether re-running the render step is worth attempting.
func (e *RenderFailure) Retryable() bool {
	if info, ok := errorCodeRegistry[e.Code]; ok {
		return info.Retryable
	}
	return false
}

// NewRenderFailure classifies err and wraps it as a RenderFailure for the
// given segment.
func NewRenderFailure(segmentType, segmentID string, err error) *RenderFailure {
	return &RenderFailure{
		SegmentType: segmentType,
		SegmentID:   segmentID,
		Code:        classify(err),
		Cause:       err,
	}
}

// classify inspects an error and returns the appropriate code. Unknown
// patterns fall through to CodeProcessingError.
func classify(err error) ErrorCode {
	if err == nil {
		return CodeProcessingError
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return CodeTimeout
	}
	if errors.Is(err, context.Canceled) {
		return CodeContextCancelled
	}

	lower := strings.ToLower(err.Error())

	switch {
	case strings.Contains(lower, "rate limit"),
		strings.Contains(lower, "429"),
		strings.Contains(lower, "too many requests"),
		strings.Contains(lower, "quota"):
		return CodeRateLimit
	case strings.Contains(lower, "connection refused"),
		strings.Contains(lower, "unavailable"),
		strings.Contains(lower, "503"),
		strings.Contains(lower, "no such host"):
		return CodeVendorUnavailable
	case strings.Contains(lower, "empty audio"),
		strings.Contains(lower, "no audio"):
		return CodeEmptyAudio
	case strings.Contains(lower, "empty script"):
		return CodeEmptyScript
	case strings.Contains(lower, "ffprobe"),
		strings.Contains(lower, "decode"):
		return CodeProbeError
	case strings.Contains(lower, "timeout"), strings.Contains(lower, "timed out"):
		return CodeTimeout
	}

	return CodeProcessingError
}

// IsRetryable reports whether err is a RenderFailure worth retrying.
func IsRetryable(err error) bool {
	var rf *RenderFailure
	if errors.As(err, &rf) {
		return rf.Retryable()
	}
	return false
}
