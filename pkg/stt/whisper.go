package stt

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/voicepipe/voicepipe/internal/httpc"
)

const providerWhisper = "whisper"

// Whisper is a client for a faster-whisper sidecar process.
//
// The sidecar owns the loaded model; this client is the process-wide handle
// the rest of the service holds. It is safe for concurrent use: every field
// is set at construction and never written again.
type Whisper struct {
	config  *Config
	client  *http.Client
	logger  *slog.Logger
	baseURL string
}

// NewWhisper creates a recognizer backed by a faster-whisper sidecar.
func NewWhisper(opts ...Option) (*Whisper, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		return nil, WrapError(providerWhisper, fmt.Errorf("base URL required"))
	}

	return &Whisper{
		config:  cfg,
		client:  httpc.NewClient(cfg.Timeout),
		logger:  cfg.Logger.With("component", "stt.whisper"),
		baseURL: baseURL,
	}, nil
}

// transcribeResponse is the sidecar's response payload.
type transcribeResponse struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
	Error    string  `json:"error"`
}

// Transcribe converts an audio payload to text.
//
// The payload is spilled to a temporary WAV file for the duration of the
// call and removed on every exit path. The sidecar decodes with the fixed
// deployment parameters carried as query parameters.
func (w *Whisper) Transcribe(ctx context.Context, audio []byte) (*Result, error) {
	if len(audio) == 0 {
		return nil, WrapError(providerWhisper, ErrEmptyAudio)
	}

	start := time.Now()

	tmpPath := filepath.Join(os.TempDir(), "voicepipe-"+uuid.NewString()+".wav")
	if err := os.WriteFile(tmpPath, audio, 0o600); err != nil {
		return nil, WrapError(providerWhisper, fmt.Errorf("write temp file: %w", err))
	}
	defer os.Remove(tmpPath)

	f, err := os.Open(tmpPath)
	if err != nil {
		return nil, WrapError(providerWhisper, fmt.Errorf("open temp file: %w", err))
	}
	defer f.Close()

	req, err := http.NewRequestWithContext(ctx, "POST", w.transcribeURL(), f)
	if err != nil {
		return nil, WrapError(providerWhisper, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "audio/wav")
	req.ContentLength = int64(len(audio))

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, &TranscriptionError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, w.parseError(resp)
	}

	var result transcribeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &TranscriptionError{Message: fmt.Sprintf("decode response: %v", err)}
	}

	latency := time.Since(start).Milliseconds()
	text := strings.TrimSpace(result.Text)

	w.logger.Debug("transcribed audio",
		"bytes", len(audio),
		"chars", len(text),
		"latency_ms", latency,
	)

	return &Result{
		Text:        text,
		Language:    result.Language,
		DurationSec: result.Duration,
		LatencyMs:   latency,
	}, nil
}

// Health checks sidecar reachability.
func (w *Whisper) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", w.baseURL+"/health", nil)
	if err != nil {
		return WrapError(providerWhisper, err)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return WrapError(providerWhisper, fmt.Errorf("health check: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return WrapError(providerWhisper, fmt.Errorf("health check: status %d", resp.StatusCode))
	}
	return nil
}

// Close releases resources.
func (w *Whisper) Close() error {
	w.client.CloseIdleConnections()
	return nil
}

// transcribeURL builds the sidecar URL with the fixed decode parameters.
func (w *Whisper) transcribeURL() string {
	q := url.Values{}
	q.Set("model", w.config.Model)
	q.Set("compute_type", w.config.ComputeType)
	q.Set("threads", strconv.Itoa(w.config.Threads))
	q.Set("beam_size", strconv.Itoa(w.config.BeamSize))
	q.Set("best_of", strconv.Itoa(w.config.BestOf))
	q.Set("temperature", strconv.FormatFloat(w.config.Temperature, 'f', -1, 64))
	q.Set("vad_filter", strconv.FormatBool(w.config.VADFilter))
	q.Set("vad_min_silence_ms", strconv.FormatInt(w.config.VADSilence.Milliseconds(), 10))
	if w.config.Language != "" {
		q.Set("language", w.config.Language)
	}
	return w.baseURL + "/transcribe?" + q.Encode()
}

// parseError extracts a TranscriptionError from a non-200 response.
func (w *Whisper) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var payload transcribeResponse
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return &TranscriptionError{StatusCode: resp.StatusCode, Message: payload.Error}
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = resp.Status
	}
	return &TranscriptionError{StatusCode: resp.StatusCode, Message: msg}
}

// Verify Whisper implements Provider at compile time.
var _ Provider = (*Whisper)(nil)
