// Package tts provides a unified interface for text-to-speech backends.
//
// The primary backend is Piper, a locally installed synthesis executable
// invoked as a subprocess. An OpenAI HTTP provider is available as a
// fallback, and Chain composes providers in priority order. All backends
// implement the Provider interface.
//
// Example usage:
//
//	provider, _ := tts.NewPiper(
//	    tts.WithBinPath("/opt/piper/piper"),
//	    tts.WithModelPath("/opt/piper/models/en_US-lessac-medium.onnx"),
//	)
//	defer provider.Close()
//
//	result, _ := provider.Synthesize(ctx, "Hello world")
//	// result.Audio contains a complete WAV container
package tts

import "context"

// Provider defines the TTS backend interface.
type Provider interface {
	// Synthesize converts text to audio, returning the complete audio
	// buffer. Non-empty text yields either non-empty audio or an error;
	// an empty success is never returned.
	Synthesize(ctx context.Context, text string) (*AudioResult, error)

	// Health checks that the backend is usable.
	Health(ctx context.Context) error

	// Close releases any resources held by the provider.
	Close() error
}

// AudioResult represents a complete synthesis result.
type AudioResult struct {
	// Audio contains the audio data in the specified format.
	Audio []byte

	// Format describes the audio encoding.
	Format AudioFormat

	// CharCount is the number of characters synthesized.
	CharCount int

	// LatencyMs is the synthesis duration in milliseconds.
	LatencyMs int64
}

// AudioFormat describes the audio container parameters.
type AudioFormat struct {
	// Container is the file format (e.g. "wav", "mp3").
	Container string

	// SampleRate in Hz.
	SampleRate int

	// Channels is 1 for mono, 2 for stereo.
	Channels int

	// BitDepth for PCM formats.
	BitDepth int
}

// PiperFormat is the output format of the piper executable.
func PiperFormat() AudioFormat {
	return AudioFormat{
		Container:  "wav",
		SampleRate: 22050,
		Channels:   1,
		BitDepth:   16,
	}
}
