package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Authentication errors (AUTH-001 to AUTH-099)
	ErrCodeAuthIncomplete  ErrorCode = "AUTH-001"
	ErrCodeAuthRequired    ErrorCode = "AUTH-002"
	ErrCodeAuthRefreshDown ErrorCode = "AUTH-003"
	ErrCodeAuthLoginFailed ErrorCode = "AUTH-004"

	// Session errors (SESSION-001 to SESSION-099)
	ErrCodeSessionCorrupt   ErrorCode = "SESSION-001"
	ErrCodeSessionNoActive  ErrorCode = "SESSION-002"
	ErrCodeSessionNoCompany ErrorCode = "SESSION-003"

	// API errors (API-001 to API-099)
	ErrCodeAPIRequest     ErrorCode = "API-001"
	ErrCodeAPIDecode      ErrorCode = "API-002"
	ErrCodeAPIUnavailable ErrorCode = "API-003"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileReadFailed  ErrorCode = "IO-001"
	ErrCodeFileWriteFailed ErrorCode = "IO-002"
	ErrCodeFileUnmarshal   ErrorCode = "IO-003"
)

// ConsoleError represents an enhanced error with code, suggestions, and cause
type ConsoleError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	Cause       error
}

// Error implements the error interface
func (e *ConsoleError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *ConsoleError) Unwrap() error {
	return e.Cause
}

// New creates a new ConsoleError
func New(code ErrorCode, message string) *ConsoleError {
	return &ConsoleError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new ConsoleError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *ConsoleError {
	return &ConsoleError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *ConsoleError) WithSuggestion(suggestion string) *ConsoleError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *ConsoleError) WithSuggestions(suggestions ...string) *ConsoleError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// Common error constructors for frequently used errors

// NewAuthIncompleteError indicates a login response missing one or both tokens
func NewAuthIncompleteError() *ConsoleError {
	return New(ErrCodeAuthIncomplete, "incomplete authentication response").
		WithSuggestion("The server did not return both an access and a refresh token").
		WithSuggestion("Check that the backend is a compatible ReserveJá API")
}

// NewAuthRequiredError indicates an operation that needs an authenticated session
func NewAuthRequiredError() *ConsoleError {
	return New(ErrCodeAuthRequired, "not logged in").
		WithSuggestion("Run 'reserveja auth login' to authenticate")
}

// NewNoCompanyError indicates an operation that needs an active company context
func NewNoCompanyError() *ConsoleError {
	return New(ErrCodeSessionNoCompany, "no active company selected").
		WithSuggestion("Run 'reserveja company list' to see your memberships").
		WithSuggestion("Run 'reserveja company use <id>' to select one")
}

// NewSessionCorruptError indicates an unreadable persisted session
func NewSessionCorruptError(cause error) *ConsoleError {
	return Wrap(ErrCodeSessionCorrupt, "stored session could not be read", cause).
		WithSuggestion("The session file will be ignored; log in again")
}
