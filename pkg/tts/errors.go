package tts

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
var (
	// ErrEmptyText is returned when the input text is empty or whitespace.
	ErrEmptyText = errors.New("tts: text must be non-empty")

	// ErrBinaryNotFound is returned when the synthesis executable is missing.
	ErrBinaryNotFound = errors.New("tts: synthesis executable not found")

	// ErrModelNotFound is returned when the voice-model file is missing.
	ErrModelNotFound = errors.New("tts: voice model not found")

	// ErrNoAPIKey is returned when an HTTP provider's API key is missing.
	ErrNoAPIKey = errors.New("tts: API key required")

	// ErrProviderUnavailable is returned when no providers are available.
	ErrProviderUnavailable = errors.New("tts: no providers available")
)

// SynthesisError is returned when the synthesis executable fails: a non-zero
// exit status, or a zero exit with a missing or empty output file. Stdout and
// Stderr carry the captured process output for diagnosis.
type SynthesisError struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Message  string
}

// Error implements the error interface.
func (e *SynthesisError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("tts: synthesis failed: %s", e.Message)
	}
	return fmt.Sprintf("tts: synthesis failed (exit %d): stdout=%q stderr=%q",
		e.ExitCode, e.Stdout, e.Stderr)
}

// ProviderError wraps an error with provider context.
type ProviderError struct {
	Provider string
	Err      error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("tts [%s]: %v", e.Provider, e.Err)
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

// APIError represents an error response from an HTTP TTS API.
type APIError struct {
	StatusCode int
	Message    string
	Provider   string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("tts [%s]: API error %d: %s", e.Provider, e.StatusCode, e.Message)
}

// ChainError aggregates errors from all providers in a chain.
type ChainError struct {
	Errors []error
}

// Error implements the error interface.
func (e *ChainError) Error() string {
	if len(e.Errors) == 0 {
		return "tts chain: no errors recorded"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("tts chain: %v", e.Errors[0])
	}
	return fmt.Sprintf("tts chain: all %d providers failed, last error: %v",
		len(e.Errors), e.Errors[len(e.Errors)-1])
}

// Unwrap returns the last error in the chain.
func (e *ChainError) Unwrap() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e.Errors[len(e.Errors)-1]
}
