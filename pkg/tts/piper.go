package tts

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const providerPiper = "piper"

// Piper implements Provider by invoking the piper executable as a subprocess.
// Text is fed on stdin; the output WAV path is named via --output_file. The
// binary and voice model are validated on every call so a deployment can fix
// a missing install without restarting the service.
type Piper struct {
	config *Config
	logger *slog.Logger
}

// NewPiper creates a piper-backed synthesizer.
func NewPiper(opts ...Option) (*Piper, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	return &Piper{
		config: cfg,
		logger: cfg.Logger.With("component", "tts.piper"),
	}, nil
}

// Synthesize converts text to a WAV audio buffer.
//
// The output file is a uuid-named temporary path, removed on every exit
// path: after a successful read, after a failed run, and after a run that
// produced an empty file.
func (p *Piper) Synthesize(ctx context.Context, text string) (*AudioResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, WrapError(providerPiper, ErrEmptyText)
	}

	if err := p.validatePaths(); err != nil {
		return nil, err
	}

	start := time.Now()

	outPath := filepath.Join(os.TempDir(), "voicepipe-tts-"+uuid.NewString()+".wav")
	defer os.Remove(outPath)

	cmd := exec.CommandContext(ctx, p.config.BinPath,
		"--model", p.config.ModelPath,
		"--output_file", outPath,
	)
	cmd.Stdin = strings.NewReader(text)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		p.logger.Error("piper failed",
			"exit_code", exitCode,
			"stderr", strings.TrimSpace(stderr.String()),
		)
		return nil, &SynthesisError{
			ExitCode: exitCode,
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
		}
	}

	info, err := os.Stat(outPath)
	if err != nil || info.Size() == 0 {
		return nil, &SynthesisError{
			Stdout:  stdout.String(),
			Stderr:  stderr.String(),
			Message: "piper reported success but output file is missing or empty",
		}
	}

	audio, err := os.ReadFile(outPath)
	if err != nil {
		return nil, &SynthesisError{Message: "read output file: " + err.Error()}
	}

	latency := time.Since(start).Milliseconds()

	p.logger.Debug("synthesized audio",
		"chars", len(text),
		"bytes", len(audio),
		"latency_ms", latency,
	)

	return &AudioResult{
		Audio:     audio,
		Format:    PiperFormat(),
		CharCount: len(text),
		LatencyMs: latency,
	}, nil
}

// Health checks that the binary and model are installed.
func (p *Piper) Health(ctx context.Context) error {
	return p.validatePaths()
}

// Available reports whether the binary and model paths both exist.
func (p *Piper) Available() bool {
	return p.validatePaths() == nil
}

// Close releases resources. Piper holds none between calls.
func (p *Piper) Close() error {
	return nil
}

// validatePaths checks the executable and voice model exist.
func (p *Piper) validatePaths() error {
	if _, err := os.Stat(p.config.BinPath); err != nil {
		return WrapError(providerPiper, ErrBinaryNotFound)
	}
	if _, err := os.Stat(p.config.ModelPath); err != nil {
		return WrapError(providerPiper, ErrModelNotFound)
	}
	return nil
}

// Verify Piper implements Provider at compile time.
var _ Provider = (*Piper)(nil)
