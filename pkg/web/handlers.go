package web

import (
	"context"
	"encoding/base64"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/voicepipe/voicepipe/pkg/stt"
)

// TextRequest is the JSON body for text-input routes.
type TextRequest struct {
	Text string `json:"text"`
}

// TextResponse is the JSON reply for single-text routes.
type TextResponse struct {
	Text           string  `json:"text"`
	ProcessingTime float64 `json:"processing_time"`
}

// VoiceResponse is the JSON reply for the voice-chat route.
type VoiceResponse struct {
	Transcription  string  `json:"transcription"`
	LLMResponse    string  `json:"llm_response"`
	ProcessingTime float64 `json:"processing_time"`
}

// VoiceCompleteResponse adds the synthesized audio to VoiceResponse.
type VoiceCompleteResponse struct {
	Transcription  string  `json:"transcription"`
	LLMResponse    string  `json:"llm_response"`
	AudioBase64    string  `json:"audio_base64"`
	ProcessingTime float64 `json:"processing_time"`
}

// handleStatus reports service identity and per-backend availability.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "online",
		"service": "voicepipe",
		"version": ServiceVersion,
		"models": fiber.Map{
			"whisper": loadedLabel(s.recognizer != nil),
			"piper":   "subprocess (external binary)",
			"gemini":  configuredLabel(s.agent.Configured()),
		},
	})
}

// handleHealth is the machine-readable health check.
func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": float64(time.Now().UnixMilli()) / 1000.0,
		"models_loaded": fiber.Map{
			"whisper": s.recognizer != nil,
			"piper":   s.synthAvailable(c.Context()),
			"gemini":  s.agent.Configured(),
		},
	})
}

// handleTranscribe converts an uploaded audio file to text.
func (s *Server) handleTranscribe(c *fiber.Ctx) error {
	start := time.Now()

	audio, err := s.readUpload(c)
	if err != nil {
		return err
	}

	result, err := s.transcribe(c.Context(), audio)
	if err != nil {
		return err
	}

	return c.JSON(TextResponse{
		Text:           result.Text,
		ProcessingTime: elapsedSeconds(start),
	})
}

// handleChat generates a reply for a text input.
// Generation failures degrade to an apology reply; they never error here.
func (s *Server) handleChat(c *fiber.Ctx) error {
	start := time.Now()

	var req TextRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}

	reply := s.agent.Reply(c.Context(), req.Text)

	return c.JSON(TextResponse{
		Text:           reply.Text,
		ProcessingTime: elapsedSeconds(start),
	})
}

// handleSynthesize converts text to speech and returns the WAV attachment.
// Also mounted at /tts as the alternate path.
func (s *Server) handleSynthesize(c *fiber.Ctx) error {
	var req TextRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}

	result, err := s.synth.Synthesize(c.Context(), req.Text)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "audio/wav")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename=speech.wav`)
	return c.Send(result.Audio)
}

// handleVoiceChat runs recognize → generate and returns text only.
// The client calls synthesize separately to shorten time-to-first-text.
func (s *Server) handleVoiceChat(c *fiber.Ctx) error {
	start := time.Now()

	audio, err := s.readUpload(c)
	if err != nil {
		return err
	}

	result, err := s.transcribe(c.Context(), audio)
	if err != nil {
		return err
	}

	reply := s.agent.Reply(c.Context(), result.Text)

	return c.JSON(VoiceResponse{
		Transcription:  result.Text,
		LLMResponse:    reply.Text,
		ProcessingTime: elapsedSeconds(start),
	})
}

// handleVoiceChatComplete runs the full recognize → generate → synthesize
// pipeline and returns the audio base64-encoded alongside the text.
func (s *Server) handleVoiceChatComplete(c *fiber.Ctx) error {
	start := time.Now()

	audio, err := s.readUpload(c)
	if err != nil {
		return err
	}

	result, err := s.transcribe(c.Context(), audio)
	if err != nil {
		return err
	}

	reply := s.agent.Reply(c.Context(), result.Text)

	synth, err := s.synth.Synthesize(c.Context(), reply.Text)
	if err != nil {
		return err
	}

	return c.JSON(VoiceCompleteResponse{
		Transcription:  result.Text,
		LLMResponse:    reply.Text,
		AudioBase64:    base64.StdEncoding.EncodeToString(synth.Audio),
		ProcessingTime: elapsedSeconds(start),
	})
}

// readUpload extracts the audio file from a multipart form.
func (s *Server) readUpload(c *fiber.Ctx) ([]byte, error) {
	header, err := c.FormFile("audio")
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "audio file upload required")
	}

	f, err := header.Open()
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "cannot open uploaded file")
	}
	defer f.Close()

	audio, err := io.ReadAll(f)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "cannot read uploaded file")
	}
	return audio, nil
}

// transcribe runs the recognizer, guarding the uninitialized-handle case.
func (s *Server) transcribe(ctx context.Context, audio []byte) (*stt.Result, error) {
	if s.recognizer == nil {
		return nil, stt.ErrNotInitialized
	}
	return s.recognizer.Transcribe(ctx, audio)
}

// synthAvailable probes the synthesizer without failing the health route.
func (s *Server) synthAvailable(ctx context.Context) bool {
	if s.synth == nil {
		return false
	}
	return s.synth.Health(ctx) == nil
}

func loadedLabel(ok bool) string {
	if ok {
		return "loaded"
	}
	return "not loaded"
}

func configuredLabel(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}
