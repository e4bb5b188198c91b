package tracklight

import (
	"errors"
	"fmt"
)

// Sentinel errors for configuration and lifecycle conditions.
var (
	ErrMissingWriteKey = errors.New("tracklight: write key is required")
	ErrInvalidConfig   = errors.New("tracklight: invalid configuration")
	ErrClientClosed    = errors.New("tracklight: client is closed")
	ErrShutdownTimeout = errors.New("tracklight: shutdown timed out")
)

// Sentinel APIError values for use with errors.Is().
// These match on status code only.
var (
	ErrRateLimited  = &APIError{StatusCode: 429}
	ErrUnauthorized = &APIError{StatusCode: 401}
	ErrNotFound     = &APIError{StatusCode: 404}
)

// ValidationError reports an event that failed shape checks in Track.
// It is returned synchronously and the event is never queued.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a validation error for a field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("tracklight: invalid event: %s %s", e.Field, e.Message)
}

// Is implements error comparison for errors.Is(): any two validation
// errors for the same field match.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	if !ok {
		return false
	}
	return t.Field == "" || t.Field == e.Field
}

// APIError represents a failed response from the collector. Message holds
// the response's status text so callers can match on what the server said;
// the status code remains available for classification.
type APIError struct {
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("tracklight: request failed with status %d", e.StatusCode)
}

// Unwrap returns the underlying error for error chain support.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for errors.Is(). It matches on status
// code, allowing comparisons like:
//
//	if errors.Is(err, tracklight.ErrRateLimited) { ... }
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.StatusCode == t.StatusCode
}

// IsRetryable reports whether the failure is transient: rate limiting
// (429) or a server-side error (5xx). Other response codes are terminal.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode == 429 || (e.StatusCode >= 500 && e.StatusCode <= 599)
}

// AsAPIError extracts an *APIError from an error chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsRetryable reports whether an error represents a retryable condition.
// Network-level failures (no response) are retryable; responded failures
// are retryable only for 5xx and 429.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.IsRetryable()
	}
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return false
	}
	if errors.Is(err, ErrClientClosed) {
		return false
	}
	// No response from the collector: connection, DNS and timeout-class
	// failures are worth retrying.
	return true
}
