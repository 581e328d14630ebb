// voicepipe - voice conversation relay
// Speech-to-text, reply generation, and text-to-speech behind one HTTP server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/voicepipe/voicepipe/internal/config"
	"github.com/voicepipe/voicepipe/internal/log"
	"github.com/voicepipe/voicepipe/pkg/agent"
	"github.com/voicepipe/voicepipe/pkg/inference"
	"github.com/voicepipe/voicepipe/pkg/stt"
	"github.com/voicepipe/voicepipe/pkg/tts"
	"github.com/voicepipe/voicepipe/pkg/web"
)

func main() {
	cfg := config.Load()
	log.Init(cfg.LogLevel)
	logger := log.L()

	recognizer := buildRecognizer(cfg)
	provider := buildInference(cfg)
	synth := buildSynthesizer(cfg)

	ag := agent.New(provider, cfg.SystemPrompt, logger)
	server := web.New(recognizer, ag, synth, logger)

	defer func() {
		if recognizer != nil {
			recognizer.Close()
		}
		if provider != nil {
			provider.Close()
		}
		synth.Close()
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(cfg.Addr())
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		if err := server.Shutdown(); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}
}

// buildRecognizer connects the transcription backend. A backend that cannot
// be constructed or reached leaves the recognizer nil; transcription routes
// then answer 503 while the rest of the service stays up.
func buildRecognizer(cfg *config.Config) stt.Provider {
	recognizer, err := stt.NewWhisper(
		stt.WithBaseURL(cfg.WhisperURL),
		stt.WithModel(cfg.WhisperModel),
		stt.WithComputeType(cfg.WhisperComputeType),
		stt.WithThreads(cfg.WhisperThreads),
		stt.WithBeamSize(cfg.WhisperBeamSize),
		stt.WithBestOf(cfg.WhisperBestOf),
		stt.WithTemperature(cfg.WhisperTemperature),
		stt.WithVAD(cfg.WhisperVADFilter, cfg.WhisperVADSilence),
		stt.WithLanguage(cfg.WhisperLanguage),
		stt.WithLogger(log.With("component", "stt")),
	)
	if err != nil {
		log.Error("recognizer unavailable", "error", err)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := recognizer.Health(ctx); err != nil {
		log.Warn("recognizer backend not reachable yet", "url", cfg.WhisperURL, "error", err)
	}
	return recognizer
}

// buildInference assembles the generation provider chain from whichever
// credentials are present. No credentials means a nil provider and degraded
// (apology) replies.
func buildInference(cfg *config.Config) inference.Provider {
	var providers []inference.Provider

	if cfg.GeminiAPIKey != "" {
		gemini, err := inference.NewGemini(
			inference.WithAPIKey(cfg.GeminiAPIKey),
			inference.WithLogger(log.With("component", "inference", "provider", "gemini")),
		)
		if err != nil {
			log.Error("gemini provider unavailable", "error", err)
		} else {
			providers = append(providers, gemini)
		}
	}

	if cfg.OpenAIAPIKey != "" {
		openai, err := inference.NewOpenAI(
			inference.WithAPIKey(cfg.OpenAIAPIKey),
			inference.WithLogger(log.With("component", "inference", "provider", "openai")),
		)
		if err != nil {
			log.Error("openai provider unavailable", "error", err)
		} else {
			providers = append(providers, openai)
		}
	}

	switch len(providers) {
	case 0:
		log.Warn("no generation credentials set, replies will be degraded")
		return nil
	case 1:
		return providers[0]
	default:
		chain, err := inference.NewChainWithLogger(log.With("component", "inference"), providers...)
		if err != nil {
			return providers[0]
		}
		return chain
	}
}

// buildSynthesizer wires piper, with the OpenAI speech API as a fallback when
// a key is configured. Piper paths are validated per call, so an absent
// install fails individual requests rather than startup.
func buildSynthesizer(cfg *config.Config) tts.Provider {
	piper, _ := tts.NewPiper(
		tts.WithBinPath(cfg.PiperBin),
		tts.WithModelPath(cfg.PiperModel),
		tts.WithLogger(log.With("component", "tts", "provider", "piper")),
	)
	if !piper.Available() {
		log.Warn("piper not found, synthesis will fail until installed",
			"bin", cfg.PiperBin, "model", cfg.PiperModel)
	}

	if cfg.OpenAIAPIKey == "" {
		return piper
	}

	openai, err := tts.NewOpenAI(
		tts.WithAPIKey(cfg.OpenAIAPIKey),
		tts.WithLogger(log.With("component", "tts", "provider", "openai")),
	)
	if err != nil {
		log.Error("openai synthesizer unavailable", "error", err)
		return piper
	}

	chain, err := tts.NewChainWithLogger(log.With("component", "tts"), piper, openai)
	if err != nil {
		return piper
	}
	return chain
}
