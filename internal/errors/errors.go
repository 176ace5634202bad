// Package errors provides a lightweight structured error type (BctlError)
// for category-based classification and fatal/retryable semantics across the
// daemon's bootstrap layer.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCategory represents the category of a bctl error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig ErrorCategory = "config"
	CategoryState  ErrorCategory = "state"

	// External system integration errors
	CategoryExec ErrorCategory = "exec"

	// Runtime and infrastructure errors
	CategorySupervisor ErrorCategory = "supervisor"
	CategoryDaemon     ErrorCategory = "daemon"
	CategoryInternal   ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution, must not be retried
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
)

// BctlError is a structured error with category, severity, and context
type BctlError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for BctlError
type ContextFields map[string]any

// Error implements the error interface
func (e *BctlError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *BctlError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *BctlError) WithContext(key string, value any) *BctlError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new BctlError
func New(category ErrorCategory, severity ErrorSeverity, message string) *BctlError {
	return &BctlError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new BctlError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *BctlError {
	return &BctlError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// Fatal creates a new fatal BctlError. Fatal errors signal preconditions the
// host supervisor must not retry, e.g. a required external binary missing
// from PATH.
func Fatal(category ErrorCategory, message string) *BctlError {
	return &BctlError{
		Category: category,
		Severity: SeverityFatal,
		Message:  message,
	}
}

// IsFatal checks if any error in the chain carries fatal severity. Walking
// the whole chain keeps the do-not-restart signal intact when a fatal cause
// is wrapped with a lower severity on its way out.
func IsFatal(err error) bool {
	for err != nil {
		if be, ok := err.(*BctlError); ok && be.Severity == SeverityFatal {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if be, ok := err.(*BctlError); ok {
		return be.Category == category
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a BctlError
func GetCategory(err error) ErrorCategory {
	if be, ok := err.(*BctlError); ok {
		return be.Category
	}
	return CategoryInternal
}
