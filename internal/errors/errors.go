// Package errors provides structured errors for xenwrap components.
// Every fatal condition carries a code that maps to a fixed process
// exit status, so the top level can translate any error into the
// right termination without inspecting its message.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorizing errors
const (
	ErrUsage  = "USAGE"  // insufficient process arguments
	ErrConfig = "CONFIG" // malformed or incomplete configuration
	ErrAuth   = "AUTH"   // command matched no filter rule
	ErrRemote = "REMOTE" // XenAPI session or plugin call failure
)

// Process exit statuses, one per error code plus success.
const (
	ExitOK           = 0
	ExitRemoteError  = 96
	ExitBadConfig    = 97
	ExitNoCommand    = 98
	ExitUnauthorized = 99
)

// Error represents a structured error with code, message, suggestion, and optional cause.
// Rendered as:
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

// Wrap wraps an existing error with a message, defaulting to ErrRemote code.
func Wrap(err error, message string) *Error {
	return &Error{
		Code:    ErrRemote,
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

// Error implements the error interface with formatted multi-line output.
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
	var xwErr *Error
	if errors.As(err, &xwErr) {
		return xwErr.Code == code
	}
	return false
}

// ExitStatus maps an error to its process exit status. Unclassified
// errors land in the remote-execution bucket, mirroring the catch-all
// around the remote call.
func ExitStatus(err error) int {
	if err == nil {
		return ExitOK
	}
	switch {
	case IsCode(err, ErrUsage):
		return ExitNoCommand
	case IsCode(err, ErrConfig):
		return ExitBadConfig
	case IsCode(err, ErrAuth):
		return ExitUnauthorized
	default:
		return ExitRemoteError
	}
}
