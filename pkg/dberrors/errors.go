// Package dberrors provides structured error handling for the database
// connectivity core. Errors carry a category used for handling strategy,
// a message, key-value details, and an optional cause, and remain
// compatible with errors.Is and errors.As.
//
// The categories follow the taxonomy of the core:
//
//   - Configuration errors fail fast and are surfaced to the pipeline
//     author with the offending field or column name.
//   - DataAccess errors propagate the underlying driver failure unchanged;
//     the core adds no retry logic.
//   - Cardinality errors report a violated exactly-one-row invariant.
//   - Cleanup errors are logged by the caller and never propagated.
package dberrors

import (
	"errors"
	"fmt"
)

// ErrorType categorizes an error for handling strategy and diagnostics.
type ErrorType string

const (
	// ErrorTypeConfiguration represents pipeline configuration errors such as
	// a column name mismatch or a missing required field. Never retried.
	ErrorTypeConfiguration ErrorType = "configuration"
	// ErrorTypeDataAccess represents underlying query or data failures
	// propagated unchanged from the access layer.
	ErrorTypeDataAccess ErrorType = "data_access"
	// ErrorTypeConnection represents connection establishment failures.
	ErrorTypeConnection ErrorType = "connection"
	// ErrorTypeQuery represents statement execution failures.
	ErrorTypeQuery ErrorType = "query"
	// ErrorTypeCardinality represents an argument-selection query returning
	// zero or more than one row.
	ErrorTypeCardinality ErrorType = "cardinality"
	// ErrorTypeCleanup represents best-effort teardown failures. Always
	// logged, never escalated.
	ErrorTypeCleanup ErrorType = "cleanup"
	// ErrorTypeInternal represents unexpected internal failures.
	ErrorTypeInternal ErrorType = "internal"
)

// Error is a structured error with a category, message, optional cause and
// key-value details.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/errors.As chains.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail attaches a key-value detail and returns the error for chaining.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new error with the given category and message.
func New(errType ErrorType, message string) *Error {
	return &Error{Type: errType, Message: message}
}

// Newf creates a new error with a formatted message.
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{Type: errType, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with a category and message, preserving the
// original as the cause. Returns nil if err is nil.
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Type: errType, Message: message, Cause: err}
}

// IsType reports whether err carries the given category anywhere in its chain.
func IsType(err error, errType ErrorType) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Type == errType
}
