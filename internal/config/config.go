// Package config loads voicepipe service configuration from the environment.
// All settings are optional and carry deployment-sensible defaults; a .env
// file in the working directory is honored when present.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultSystemPrompt is the instruction preamble sent ahead of every user
// transcript when SYSTEM_PROMPT is not set.
const DefaultSystemPrompt = `You are a helpful AI voice assistant. Answer user questions clearly and concisely.
Use counterfactual thinking to provide well-reasoned responses. Keep answers brief and conversational
since this is a voice interaction. Aim for 2-3 sentences unless more detail is specifically requested.`

// Config holds the full service configuration.
type Config struct {
	// Server bindings
	Host     string
	Port     string
	LogLevel string

	// Recognizer backend (faster-whisper sidecar)
	WhisperURL          string
	WhisperModel        string
	WhisperComputeType  string
	WhisperThreads      int
	WhisperBeamSize     int
	WhisperBestOf       int
	WhisperTemperature  float64
	WhisperVADFilter    bool
	WhisperVADSilence   time.Duration
	WhisperLanguage     string

	// Generation service
	GeminiAPIKey string
	OpenAIAPIKey string
	SystemPrompt string

	// Synthesizer executable
	PiperBin   string
	PiperModel string
}

// Load reads configuration from the environment. A .env file is loaded first
// if one exists; real environment variables take precedence over it.
func Load() *Config {
	// Ignore the error: a missing .env file is the normal case.
	_ = godotenv.Load()

	return &Config{
		Host:     Env("HOST", "0.0.0.0"),
		Port:     Env("PORT", "8000"),
		LogLevel: Env("LOG_LEVEL", "info"),

		WhisperURL:         Env("WHISPER_URL", "http://127.0.0.1:9000"),
		WhisperModel:       Env("WHISPER_MODEL", "tiny"),
		WhisperComputeType: Env("WHISPER_COMPUTE_TYPE", "int8"),
		WhisperThreads:     EnvInt("WHISPER_THREADS", 4),
		WhisperBeamSize:    EnvInt("WHISPER_BEAM_SIZE", 5),
		WhisperBestOf:      EnvInt("WHISPER_BEST_OF", 5),
		WhisperTemperature: EnvFloat("WHISPER_TEMPERATURE", 0.0),
		WhisperVADFilter:   EnvBool("WHISPER_VAD_FILTER", true),
		WhisperVADSilence:  time.Duration(EnvInt("WHISPER_VAD_SILENCE_MS", 500)) * time.Millisecond,
		WhisperLanguage:    Env("WHISPER_LANGUAGE", "en"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		SystemPrompt: Env("SYSTEM_PROMPT", DefaultSystemPrompt),

		PiperBin:   Env("PIPER_BIN", "piper/piper"),
		PiperModel: Env("PIPER_MODEL", "piper/models/en_US-lessac-medium.onnx"),
	}
}

// Addr returns the host:port listen address.
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

// Env returns the value of the named environment variable.
// Falls back to the provided default if not set.
func Env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// EnvInt returns the named environment variable parsed as an int.
// Falls back to the default if unset or unparseable.
func EnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// EnvFloat returns the named environment variable parsed as a float64.
// Falls back to the default if unset or unparseable.
func EnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

// EnvBool returns the named environment variable parsed as a bool.
// Accepts the forms strconv.ParseBool accepts; falls back to the default
// if unset or unparseable.
func EnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
