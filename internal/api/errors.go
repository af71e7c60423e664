package api

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError represents a non-2xx response from the backend.
// Body holds the parsed JSON response, when there was one, so callers
// can inspect validation details the server attached to the error.
type APIError struct {
	Status  int
	Message string
	Body    any
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Message)
}

// IsStatus reports whether err is an APIError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// IsUnauthorized reports whether err is a 401 response.
func IsUnauthorized(err error) bool {
	return IsStatus(err, http.StatusUnauthorized)
}
