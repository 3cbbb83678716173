// Package errors provides structured error types for mdaograph.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the library, CLI and HTTP server
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The engine distinguishes four failure classes:
//   - PRECONDITION_FAILED: bad input detected before any mutation (unknown
//     node id, mismatched list lengths, reserved block name collision)
//   - ARCHITECTURE_MISMATCH: the problem formulation does not fit the
//     selected architecture; synthesis refuses to proceed
//   - MODEL_CONSISTENCY: an internal guarantee was violated; always fatal
//   - SCALE_LIMIT_EXCEEDED: a bounded enumeration hit its configured limit,
//     reported through [ScaleLimitError]
//
// Input handling around the engine uses the INVALID_* and FILE_NOT_FOUND codes.
//
// # Usage
//
//	err := errors.New(errors.ErrCodePrecondition, "unknown node %q", id)
//	if errors.Is(err, errors.ErrCodePrecondition) {
//	    // Handle bad input
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidFormat, origErr, "failed to decode %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Engine errors
	ErrCodePrecondition         Code = "PRECONDITION_FAILED"
	ErrCodeArchitectureMismatch Code = "ARCHITECTURE_MISMATCH"
	ErrCodeModelConsistency     Code = "MODEL_CONSISTENCY"
	ErrCodeScaleLimit           Code = "SCALE_LIMIT_EXCEEDED"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidNodeID Code = "INVALID_NODE_ID"

	// Resource not found errors
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Precondition is shorthand for New(ErrCodePrecondition, ...).
func Precondition(format string, args ...any) *Error {
	return New(ErrCodePrecondition, format, args...)
}

// ModelConsistency is shorthand for New(ErrCodeModelConsistency, ...).
func ModelConsistency(format string, args ...any) *Error {
	return New(ErrCodeModelConsistency, format, args...)
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
// A *ScaleLimitError matches ErrCodeScaleLimit.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the chain holds neither an *Error nor a *ScaleLimitError.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var sl *ScaleLimitError
	if errors.As(err, &sl) {
		return sl.Code()
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// ScaleLimitError reports that a bounded enumeration would exceed its
// configured size. Callers narrow the input (or raise the limit) and retry.
type ScaleLimitError struct {
	Limit   int    // Configured maximum number of results
	What    string // What was being enumerated, e.g. "simple cycles"
	Message string
}

// Error implements the error interface.
func (e *ScaleLimitError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.What != "" {
		return fmt.Sprintf("too many %s: limit of %d exceeded", e.What, e.Limit)
	}
	return fmt.Sprintf("scale limit of %d exceeded", e.Limit)
}

// Code returns the error code for this error type.
func (e *ScaleLimitError) Code() Code {
	return ErrCodeScaleLimit
}
