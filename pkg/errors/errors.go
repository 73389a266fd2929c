// Package errors provides structured error types for chartkit.
//
// Every fallible operation in the library returns an error carrying one of
// the codes below, so callers can branch on the kind of failure without
// matching message text:
//
//	img, err := raster.Blend(a, b, 0.5)
//	if errors.Is(err, errors.ErrCodeSizeMismatch) {
//	    // the two images differ in size
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeFetch, origErr, "failed to fetch %s", url)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input errors
	ErrCodeInvalidColor Code = "INVALID_COLOR"
	ErrCodeArgument     Code = "ARGUMENT_ERROR"
	ErrCodeSizeMismatch Code = "SIZE_MISMATCH"
	ErrCodeDataShape    Code = "DATA_SHAPE"
	ErrCodeNumericRange Code = "NUMERIC_RANGE"
	ErrCodeInvalidInput Code = "INVALID_INPUT"

	// I/O errors
	ErrCodeFetch  Code = "FETCH_FAILURE"
	ErrCodeDecode Code = "DECODE_FAILURE"

	// Map charts
	ErrCodeUnknownRegion Code = "UNKNOWN_REGION"

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

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
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

// StatusError describes a non-2xx HTTP response received while fetching.
type StatusError struct {
	URL        string
	StatusCode int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// Code returns the error code for this error type.
func (e *StatusError) Code() Code {
	return ErrCodeFetch
}
