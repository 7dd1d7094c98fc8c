// Package apperrors defines the error taxonomy shared across handlers and
// services: auth failures, upstream provider failures, and generation parse
// failures.
package apperrors

import (
	"errors"
	"fmt"
)

// ErrInvalidSession indicates a missing, unknown, or expired session token.
// Handlers map it to 401; the client must re-authenticate.
var ErrInvalidSession = errors.New("invalid or expired session")

// UpstreamError wraps a non-2xx response from the streaming provider.
type UpstreamError struct {
	Resource   string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream %s failed: %v", e.Resource, e.Err)
	}
	return fmt.Sprintf("upstream %s failed: status %d", e.Resource, e.StatusCode)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Retryable reports whether the upstream failure is a server-side error
// worth retrying.
func (e *UpstreamError) Retryable() bool {
	return e.StatusCode >= 500
}

// IsUpstreamError checks whether err wraps an UpstreamError.
func IsUpstreamError(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

// ParseError indicates the generation service returned output that could not
// be parsed into the expected artifact schema, even after stripping known
// wrappers. It is never cached and is safe to retry.
type ParseError struct {
	Kind string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s artifact: %v", e.Kind, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsParseError checks whether err wraps a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
