package tts

import (
	"log/slog"
	"time"
)

// Config holds TTS provider configuration.
// Use functional options (WithXxx) to set these values.
type Config struct {
	// Subprocess providers
	BinPath   string
	ModelPath string

	// HTTP providers
	APIKey  string
	BaseURL string
	Voice   string
	ModelID string

	// Timeouts
	Timeout time.Duration

	// Observability
	Logger *slog.Logger
}

// Option is a functional option for configuring TTS providers.
type Option func(*Config)

// WithBinPath sets the path to the synthesis executable.
func WithBinPath(path string) Option {
	return func(c *Config) { c.BinPath = path }
}

// WithModelPath sets the path to the voice-model file.
func WithModelPath(path string) Option {
	return func(c *Config) { c.ModelPath = path }
}

// WithAPIKey sets the API key for HTTP providers.
func WithAPIKey(key string) Option {
	return func(c *Config) { c.APIKey = key }
}

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *Config) { c.BaseURL = url }
}

// WithVoice sets the voice for HTTP providers.
func WithVoice(voice string) Option {
	return func(c *Config) { c.Voice = voice }
}

// WithModel sets the model ID for HTTP providers.
func WithModel(modelID string) Option {
	return func(c *Config) { c.ModelID = modelID }
}

// WithTimeout sets the synthesis timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() *Config {
	return &Config{
		BinPath:   "piper/piper",
		ModelPath: "piper/models/en_US-lessac-medium.onnx",
		Timeout:   60 * time.Second,
		Logger:    slog.Default(),
	}
}

// Apply applies functional options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}
