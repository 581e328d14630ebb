// Package stt provides a unified interface for speech-to-text backends.
//
// The package currently ships a faster-whisper sidecar client (Whisper) and a
// Mock for testing. All backends implement the Provider interface, so the web
// layer can hold a single process-wide handle that is constructed once at
// start-up and only read afterwards.
//
// Example usage:
//
//	provider, _ := stt.NewWhisper(
//	    stt.WithBaseURL("http://127.0.0.1:9000"),
//	    stt.WithModel("tiny"),
//	)
//	defer provider.Close()
//
//	result, _ := provider.Transcribe(ctx, wavBytes)
//	// result.Text contains the transcript
package stt

import "context"

// Provider defines the speech-to-text backend interface.
type Provider interface {
	// Transcribe converts an audio payload (a complete WAV container) to text.
	Transcribe(ctx context.Context, audio []byte) (*Result, error)

	// Health checks backend reachability.
	Health(ctx context.Context) error

	// Close releases any resources held by the provider.
	Close() error
}

// Result is a completed transcription.
type Result struct {
	// Text is the transcript with surrounding whitespace trimmed.
	Text string

	// Language is the detected or configured language code.
	Language string

	// DurationSec is the audio duration reported by the backend, if any.
	DurationSec float64

	// LatencyMs is the wall-clock time the backend call took.
	LatencyMs int64
}
