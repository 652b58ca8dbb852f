// Package errors provides standardized error handling for the icebreaker pipeline.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Fatal: malformed caller input, surfaced as a client error.
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"

	// Non-fatal: the identity degrades to empty data at the orchestrator.
	ErrCodeResolutionMiss ErrorCode = "PROFILE_RESOLUTION_MISS"
	ErrCodeFetchFailed    ErrorCode = "PROFILE_FETCH_FAILED"
	ErrCodeFetchTimeout   ErrorCode = "PROFILE_FETCH_TIMEOUT"

	// Fatal: the request cannot produce a result.
	ErrCodeGenerationFailed ErrorCode = "GENERATION_FAILED"
	ErrCodeSynthesisFailed  ErrorCode = "SYNTHESIS_FAILED"
	ErrCodeSynthesisTimeout ErrorCode = "SYNTHESIS_TIMEOUT"

	// Non-fatal: cache problems degrade to a live fetch.
	ErrCodeCacheUnavailable ErrorCode = "CACHE_UNAVAILABLE"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewInvalidRequestError creates a non-retryable caller input error.
func NewInvalidRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequest,
		Message:   "Invalid request input",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewResolutionMissError creates a non-fatal resolution miss.
func NewResolutionMissError(name string) *StandardError {
	return &StandardError{
		Code:      ErrCodeResolutionMiss,
		Message:   "No confident profile URL match for name",
		Details:   fmt.Sprintf("name: %s", name),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewFetchFailedError creates a retryable profile fetch error.
func NewFetchFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeFetchFailed,
		Message:   "Profile enrichment fetch failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewFetchTimeoutError creates a retryable profile fetch timeout error.
func NewFetchTimeoutError(url string) *StandardError {
	return &StandardError{
		Code:      ErrCodeFetchTimeout,
		Message:   "Profile enrichment fetch timed out",
		Details:   fmt.Sprintf("url: %s", url),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewGenerationFailedError creates a non-retryable generation error. The
// generation backend applies its own retry budget before reporting failure.
func NewGenerationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeGenerationFailed,
		Message:   "Structured generation produced no schema-conforming output",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSynthesisFailedError creates a fatal synthesis error.
func NewSynthesisFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSynthesisFailed,
		Message:   "Summary synthesis failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSynthesisTimeoutError creates a fatal synthesis timeout error.
func NewSynthesisTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeSynthesisTimeout,
		Message:   "Summary synthesis timed out",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheUnavailableError creates a non-fatal cache error.
func NewCacheUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheUnavailable,
		Message:   "Profile cache unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps an unexpected error.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Classification Helpers
// ==========================

// AsStandardError normalizes any error into a StandardError.
func AsStandardError(err error) *StandardError {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// CodeOf returns the error code, or INTERNAL_ERROR for foreign errors.
func CodeOf(err error) ErrorCode {
	return AsStandardError(err).Code
}

// IsNonFatal reports whether the orchestrator should absorb the error and
// continue with empty data instead of aborting the request.
func IsNonFatal(err error) bool {
	switch CodeOf(err) {
	case ErrCodeResolutionMiss, ErrCodeFetchFailed, ErrCodeFetchTimeout, ErrCodeCacheUnavailable:
		return true
	default:
		return false
	}
}
