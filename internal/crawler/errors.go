package crawler

import (
	"errors"
	"fmt"
)

// ErrNotConfigured indicates the extraction credential is absent. Callers
// must check Configured() and fail before any network call is attempted.
var ErrNotConfigured = errors.New("extraction service not configured: missing FIRECRAWL_API_KEY")

// TransportError indicates the extraction service could not be reached at
// all: connection failures and timeouts look identical to callers.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("extraction service unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError indicates the extraction service answered with a non-success
// HTTP status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("extraction service returned HTTP %d: %s", e.StatusCode, e.Body)
}

// ProviderError indicates a structurally valid response whose own success
// flag was false. Reason carries the provider-supplied message verbatim.
type ProviderError struct {
	Reason string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("extraction failed: %s", e.Reason)
}
