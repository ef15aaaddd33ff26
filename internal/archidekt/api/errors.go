package api

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusError represents a non-2xx response from the Archidekt API.
type StatusError struct {
	Code int
	Body string
}

// Error implements the error interface for StatusError.
func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("archidekt API error (HTTP %d): %s", e.Code, e.Body)
	}
	return fmt.Sprintf("archidekt API error (HTTP %d)", e.Code)
}

// IsUnauthorized returns true if the error carries an HTTP 401 status.
// The session layer uses this to decide whether a token refresh and retry
// is worth attempting.
func IsUnauthorized(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.Code == http.StatusUnauthorized
}

// IsNotFound returns true if the error carries an HTTP 404 status.
func IsNotFound(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound
}

// StatusCode returns the HTTP status carried by err, or 0 if err is not a
// StatusError.
func StatusCode(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code
	}
	return 0
}
