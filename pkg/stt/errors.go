package stt

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
var (
	// ErrNotInitialized is returned when no recognizer handle was constructed.
	// The web layer maps this to HTTP 503.
	ErrNotInitialized = errors.New("stt: recognizer not initialized")

	// ErrEmptyAudio is returned for a zero-length payload.
	ErrEmptyAudio = errors.New("stt: empty audio payload")
)

// TranscriptionError is returned when the recognizer backend raised during
// decoding. Message carries the backend's own error text.
type TranscriptionError struct {
	// StatusCode is the HTTP status from the sidecar, if the failure came
	// from an HTTP response. Zero for transport-level failures.
	StatusCode int

	// Message is the backend's error message.
	Message string
}

// Error implements the error interface.
func (e *TranscriptionError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("stt: transcription failed (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("stt: transcription failed: %s", e.Message)
}

// ProviderError wraps an error with provider context.
type ProviderError struct {
	Provider string
	Err      error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("stt [%s]: %v", e.Provider, e.Err)
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// WrapError wraps an error with provider context.
func WrapError(provider string, err error) error {
	if err == nil {
		return nil
	}
	return &ProviderError{Provider: provider, Err: err}
}
