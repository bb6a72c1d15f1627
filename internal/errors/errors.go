package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorizing errors
const (
	ErrConfig      = "CONFIG"      // bad or missing configuration
	ErrConnect     = "CONNECT"     // controller unreachable or refused
	ErrTimeout     = "TIMEOUT"     // CLI invocation exceeded its deadline
	ErrExec        = "EXEC"        // CLI exited non-zero or rejected its arguments
	ErrParse       = "PARSE"       // unrecognized or malformed CLI payload
	ErrStore       = "STORE"       // status file lock or disk failure
	ErrUnavailable = "UNAVAILABLE" // management CLI binary not installed
)

// Error represents a structured error with code, message, suggestion, and optional cause.
//
//	✗ <What failed>
//
//	  <Why it failed - technical details>
//
//	  <How to fix it - actionable steps>
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New creates a new structured error with the given code, message, and suggestion.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// Wrap wraps an existing error with a message, defaulting to ErrExec code.
func Wrap(err error, message string) *Error {
	return &Error{
		Code:    ErrExec,
		Message: message,
		Cause:   err,
	}
}

// WrapWithCode wraps an existing error with a specific code, message, and suggestion.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

// Error implements the error interface with formatted output.
func (e *Error) Error() string {
	var b strings.Builder

	// First line: failure symbol + main message
	b.WriteString(fmt.Sprintf("✗ %s\n", e.Message))

	// Include cause if present (why it failed)
	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Cause.Error()))
	}

	// Include suggestion if present (how to fix)
	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Suggestion))
	}

	return b.String()
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode checks if an error is a structured Error with the given code.
func IsCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var jbErr *Error
	if errors.As(err, &jbErr) {
		return jbErr.Code == code
	}
	return false
}

// Detail returns a single-line description suitable for embedding in a
// status record. The multi-line Error() format is meant for terminals.
func Detail(err error) string {
	if err == nil {
		return ""
	}
	var jbErr *Error
	if errors.As(err, &jbErr) {
		if jbErr.Cause != nil {
			return fmt.Sprintf("%s: %s: %s", jbErr.Code, jbErr.Message, jbErr.Cause.Error())
		}
		return fmt.Sprintf("%s: %s", jbErr.Code, jbErr.Message)
	}
	return err.Error()
}
