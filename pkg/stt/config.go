package stt

import (
	"log/slog"
	"time"
)

// Config holds recognizer configuration.
// Use functional options (WithXxx) to set these values.
type Config struct {
	// Connection
	BaseURL string

	// Decoding parameters, fixed per deployment
	Model       string
	ComputeType string
	Threads     int
	BeamSize    int
	BestOf      int
	Temperature float64
	VADFilter   bool
	VADSilence  time.Duration
	Language    string

	// Timeouts
	Timeout time.Duration

	// Observability
	Logger *slog.Logger
}

// Option is a functional option for configuring recognizer providers.
type Option func(*Config)

// WithBaseURL sets the sidecar base URL.
func WithBaseURL(url string) Option {
	return func(c *Config) { c.BaseURL = url }
}

// WithModel sets the whisper model variant (tiny, base, small, medium, large).
func WithModel(model string) Option {
	return func(c *Config) { c.Model = model }
}

// WithComputeType sets the numeric precision mode (int8, float16, float32).
func WithComputeType(t string) Option {
	return func(c *Config) { c.ComputeType = t }
}

// WithThreads sets the CPU thread count for decoding.
func WithThreads(n int) Option {
	return func(c *Config) { c.Threads = n }
}

// WithBeamSize sets the decoding beam width.
func WithBeamSize(n int) Option {
	return func(c *Config) { c.BeamSize = n }
}

// WithBestOf sets the sampling candidate count.
func WithBestOf(n int) Option {
	return func(c *Config) { c.BestOf = n }
}

// WithTemperature sets the decoding temperature.
func WithTemperature(t float64) Option {
	return func(c *Config) { c.Temperature = t }
}

// WithVAD enables or disables voice-activity filtering and sets the
// minimum silence duration used to split speech.
func WithVAD(enabled bool, minSilence time.Duration) Option {
	return func(c *Config) {
		c.VADFilter = enabled
		c.VADSilence = minSilence
	}
}

// WithLanguage sets the target language code.
func WithLanguage(lang string) Option {
	return func(c *Config) { c.Language = lang }
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// DefaultConfig returns CPU-deployment defaults.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:     "http://127.0.0.1:9000",
		Model:       "tiny",
		ComputeType: "int8",
		Threads:     4,
		BeamSize:    5,
		BestOf:      5,
		Temperature: 0.0,
		VADFilter:   true,
		VADSilence:  500 * time.Millisecond,
		Language:    "en",
		Timeout:     60 * time.Second,
		Logger:      slog.Default(),
	}
}

// Apply applies functional options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}
