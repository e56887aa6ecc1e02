// Package errors defines the coded error type shared by all recall
// subsystems. Codes are stable and surfaced to callers; causes are wrapped
// and never leak statement text.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a specific error type for memory operations.
type ErrorCode string

const (
	// ErrCodeNotConfigured indicates a required backing store is not configured.
	ErrCodeNotConfigured ErrorCode = "NOT_CONFIGURED"
	// ErrCodeNotFound indicates no matching table, row, or owner-scoped record.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeInvalidArgument indicates invalid input parameters.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeUpstream indicates a relational or vector-index driver failure.
	ErrCodeUpstream ErrorCode = "UPSTREAM"
	// ErrCodeMirrorPending indicates the relational write succeeded but the
	// vector-index step did not complete.
	ErrCodeMirrorPending ErrorCode = "MIRROR_PENDING"
)

// Error is a structured error carrying a stable code.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NotConfigured creates a not-configured error.
func NotConfigured(msg string) *Error {
	return &Error{Code: ErrCodeNotConfigured, Message: msg}
}

// NotFound creates a not-found error.
func NotFound(msg string) *Error {
	return &Error{Code: ErrCodeNotFound, Message: msg}
}

// NotFoundf creates a not-found error with a formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: ErrCodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// InvalidArgument creates an invalid argument error.
func InvalidArgument(msg string) *Error {
	return &Error{Code: ErrCodeInvalidArgument, Message: msg}
}

// Upstream creates an upstream error wrapping the driver failure.
func Upstream(msg string, cause error) *Error {
	return &Error{Code: ErrCodeUpstream, Message: msg, Cause: cause}
}

// MirrorPending creates a mirror-pending error wrapping the vector-side failure.
func MirrorPending(msg string, cause error) *Error {
	return &Error{Code: ErrCodeMirrorPending, Message: msg, Cause: cause}
}

// Code returns the code of err, or empty when err carries none.
func Code(err error) ErrorCode {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsNotFound reports whether err carries the NOT_FOUND code.
func IsNotFound(err error) bool {
	return Code(err) == ErrCodeNotFound
}

// IsInvalidArgument reports whether err carries the INVALID_ARGUMENT code.
func IsInvalidArgument(err error) bool {
	return Code(err) == ErrCodeInvalidArgument
}

// IsNotConfigured reports whether err carries the NOT_CONFIGURED code.
func IsNotConfigured(err error) bool {
	return Code(err) == ErrCodeNotConfigured
}
