package remote

import "fmt"

// Error represents a failure talking to the remote authority.
// It provides structured error information including the HTTP status code,
// operation context, and the underlying error.
type Error struct {
	Operation  string // e.g., "Select", "Upsert"
	Table      string // affected remote table
	StatusCode int    // HTTP status code (0 if not an HTTP error)
	Message    string // Human-readable error message
	Body       string // Optional: response body for debugging
	Err        error  // Optional: underlying error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s %s failed with status %d: %s", e.Operation, e.Table, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Operation, e.Table, e.Message)
}

// Unwrap returns the underlying error for error wrapping
func (e *Error) Unwrap() error {
	return e.Err
}

// IsNotFound returns true if the error is a 404 Not Found
func (e *Error) IsNotFound() bool {
	return e.StatusCode == 404
}

// IsUnauthorized returns true if the error is a 401 Unauthorized or 403 Forbidden
func (e *Error) IsUnauthorized() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}

// IsServerError returns true if the error is a 5xx server error
func (e *Error) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}
