package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if cfg.WhisperModel != "tiny" {
		t.Errorf("expected default model tiny, got %s", cfg.WhisperModel)
	}
	if cfg.WhisperComputeType != "int8" {
		t.Errorf("expected default compute type int8, got %s", cfg.WhisperComputeType)
	}
	if cfg.WhisperThreads != 4 {
		t.Errorf("expected 4 threads, got %d", cfg.WhisperThreads)
	}
	if cfg.WhisperBeamSize != 5 {
		t.Errorf("expected beam size 5, got %d", cfg.WhisperBeamSize)
	}
	if !cfg.WhisperVADFilter {
		t.Error("expected VAD filter on by default")
	}
	if cfg.WhisperVADSilence != 500*time.Millisecond {
		t.Errorf("expected 500ms VAD silence, got %v", cfg.WhisperVADSilence)
	}
	if cfg.SystemPrompt == "" {
		t.Error("expected a default system prompt")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("WHISPER_THREADS", "8")
	t.Setenv("WHISPER_TEMPERATURE", "0.4")
	t.Setenv("WHISPER_VAD_FILTER", "false")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Port)
	}
	if cfg.WhisperThreads != 8 {
		t.Errorf("expected 8 threads, got %d", cfg.WhisperThreads)
	}
	if cfg.WhisperTemperature != 0.4 {
		t.Errorf("expected temperature 0.4, got %f", cfg.WhisperTemperature)
	}
	if cfg.WhisperVADFilter {
		t.Error("expected VAD filter off")
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Run("Env falls back on unset", func(t *testing.T) {
		if got := Env("VOICEPIPE_TEST_UNSET", "fallback"); got != "fallback" {
			t.Errorf("expected fallback, got %s", got)
		}
	})

	t.Run("EnvInt ignores garbage", func(t *testing.T) {
		t.Setenv("VOICEPIPE_TEST_INT", "not-a-number")
		if got := EnvInt("VOICEPIPE_TEST_INT", 7); got != 7 {
			t.Errorf("expected 7, got %d", got)
		}
	})

	t.Run("EnvBool parses true forms", func(t *testing.T) {
		t.Setenv("VOICEPIPE_TEST_BOOL", "1")
		if !EnvBool("VOICEPIPE_TEST_BOOL", false) {
			t.Error("expected true")
		}
	})

	t.Run("Addr joins host and port", func(t *testing.T) {
		c := &Config{Host: "127.0.0.1", Port: "8000"}
		if c.Addr() != "127.0.0.1:8000" {
			t.Errorf("unexpected addr %s", c.Addr())
		}
	})
}
