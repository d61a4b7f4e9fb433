package shared

import (
	"fmt"
	"net/http"
)

var (
	// Configuration errors
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrPlaylistNotFound   = fmt.Errorf("playlist not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
)

// ProviderError is a structured failure reported by the YouTube Data API.
//
// StatusCode is the provider's HTTP status and Reason the human-readable message from the error payload.
// It unwraps to [ErrAPIRequest].
type ProviderError struct {
	StatusCode int
	Reason     string
}

// NewProviderError builds a [ProviderError], defaulting an empty reason to the status text.
func NewProviderError(status int, reason string) *ProviderError {
	if reason == "" {
		reason = http.StatusText(status)
	}
	return &ProviderError{StatusCode: status, Reason: reason}
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("youtube API error (status %d): %s", e.StatusCode, e.Reason)
}

func (e *ProviderError) Unwrap() error {
	return ErrAPIRequest
}
