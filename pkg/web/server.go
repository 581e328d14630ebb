// Package web exposes the voice-conversation relay over HTTP and WebSocket.
//
// Each route is a stateless composition of the three adapters (recognizer,
// agent, synthesizer). The server holds the process-wide backend handles;
// they are set at construction and only read afterwards, so concurrent
// requests need no coordination beyond what the backends themselves provide.
package web

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"github.com/voicepipe/voicepipe/pkg/agent"
	"github.com/voicepipe/voicepipe/pkg/stt"
	"github.com/voicepipe/voicepipe/pkg/tts"
)

// ServiceVersion is reported by the status route.
const ServiceVersion = "1.0.0"

// Server is the relay HTTP/WebSocket server.
type Server struct {
	app *fiber.App

	recognizer stt.Provider // nil when the recognizer never initialized
	agent      *agent.Agent
	synth      tts.Provider

	logger *slog.Logger
}

// New creates the server and registers all routes.
// recognizer may be nil; affected routes then fail with 503.
func New(recognizer stt.Provider, ag *agent.Agent, synth tts.Provider, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		recognizer: recognizer,
		agent:      ag,
		synth:      synth,
		logger:     logger.With("component", "web"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "voicepipe",
		DisableStartupMessage: true,
		BodyLimit:             32 * 1024 * 1024, // audio uploads
		ErrorHandler:          s.errorHandler,
	})

	app.Use(recover.New())
	app.Use(cors.New())

	app.Get("/", s.handleStatus)
	app.Get("/health", s.handleHealth)

	api := app.Group("/api")
	api.Post("/transcribe", s.handleTranscribe)
	api.Post("/chat", s.handleChat)
	api.Post("/synthesize", s.handleSynthesize)
	api.Post("/voice-chat", s.handleVoiceChat)
	api.Post("/voice-chat-complete", s.handleVoiceChatComplete)

	// Alternate synthesis path, same semantics
	app.Post("/tts", s.handleSynthesize)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/voice", websocket.New(s.handleVoiceWS))

	s.app = app
	return s
}

// Start begins serving on the given address. Blocks until shutdown.
func (s *Server) Start(addr string) error {
	s.logger.Info("server listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App returns the underlying fiber app, used by tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// errorHandler converts errors that escape a route into a structured
// response. Adapter failures are mapped by status; anything else is a
// generic internal failure.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
	}

	status := statusForError(err)
	s.logger.Error("request failed",
		"path", c.Path(),
		"status", status,
		"error", err,
	)
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// statusForError maps adapter errors to HTTP statuses.
func statusForError(err error) int {
	if errors.Is(err, stt.ErrNotInitialized) {
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

// elapsedSeconds returns wall-clock seconds since start, for the
// processing_time field every route reports.
func elapsedSeconds(start time.Time) float64 {
	return time.Since(start).Seconds()
}
