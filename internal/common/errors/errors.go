package errors

import (
	"errors"
	"fmt"
	"time"
)

// Error codes used across the service.
const (
	CodeInvalidInput      = "INVALID_INPUT"
	CodeNotFound          = "NOT_FOUND"
	CodeUpstreamFailure   = "UPSTREAM_FAILURE"
	CodeNoMatchingContent = "NO_MATCHING_CONTENT"
	CodeTimeout           = "TIMEOUT"
	CodeInternal          = "INTERNAL"
)

// StandardError is the error type returned from every layer of the service.
type StandardError struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithDetails attaches a detail entry and returns the error for chaining.
func (e *StandardError) WithDetails(key string, value interface{}) *StandardError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithCause records the underlying error.
func (e *StandardError) WithCause(err error) *StandardError {
	e.cause = err
	return e
}

func newError(code, message string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidInput indicates the caller supplied a malformed or missing field.
func NewInvalidInput(message string) *StandardError {
	return newError(CodeInvalidInput, message, false)
}

// NewNotFound indicates the requested entity does not exist.
func NewNotFound(message string) *StandardError {
	return newError(CodeNotFound, message, false)
}

// NewUpstreamFailure indicates an external collaborator failed or returned
// garbage. Retryable by default.
func NewUpstreamFailure(message string) *StandardError {
	return newError(CodeUpstreamFailure, message, true)
}

// NewNoMatchingContent indicates the creator had no content satisfying the
// requested filter.
func NewNoMatchingContent(message string) *StandardError {
	return newError(CodeNoMatchingContent, message, false)
}

// NewTimeout indicates an operation exceeded its deadline.
func NewTimeout(message string) *StandardError {
	return newError(CodeTimeout, message, true)
}

// NewInternal indicates an unexpected fault inside the service.
func NewInternal(message string) *StandardError {
	return newError(CodeInternal, message, false)
}

// CodeOf extracts the error code, falling back to INTERNAL for foreign errors.
func CodeOf(err error) string {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Code
	}
	return CodeInternal
}

// IsRetryable reports whether the error is worth retrying.
func IsRetryable(err error) bool {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Retryable
	}
	return false
}
