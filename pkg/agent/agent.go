// Package agent turns user transcripts into assistant replies.
//
// An Agent wraps an inference.Provider with the fixed instruction preamble
// and the relay's degrade policy: generation failures never propagate to the
// caller. When no provider is configured or the backend errors, the reply is
// a fixed apology string tagged as Degraded, so callers can still tell a real
// reply from a fallback without treating it as an error.
package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/voicepipe/voicepipe/pkg/inference"
)

// Fallback replies. These are user-facing and intentionally stable.
const (
	// FallbackNotConfigured is returned when no generation credential is set.
	FallbackNotConfigured = "I'm sorry, the AI service is not configured. Please set GEMINI_API_KEY."

	// FallbackError is returned when the generation backend fails.
	FallbackError = "I'm sorry, I encountered an error processing your request."
)

// promptTemplate combines the preamble and the user transcript into a single
// prompt, matching the wire format the generation service is tuned for.
const promptTemplate = "%s\n\nUser: %s\n\nAssistant:"

// Reply is a tagged generation outcome.
type Reply struct {
	// Text is the reply to show (and speak) to the user.
	Text string

	// Degraded is true when Text is a fallback apology rather than a
	// genuine model reply.
	Degraded bool

	// LatencyMs is the backend call duration. Zero for degraded replies
	// that never reached a backend.
	LatencyMs int64
}

// Agent generates replies to user transcripts.
// Safe for concurrent use: all fields are set at construction.
type Agent struct {
	provider inference.Provider
	preamble string
	logger   *slog.Logger
}

// New creates an Agent. provider may be nil, in which case every reply is
// the not-configured fallback.
func New(provider inference.Provider, preamble string, logger *slog.Logger) *Agent {
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{
		provider: provider,
		preamble: preamble,
		logger:   logger.With("component", "agent"),
	}
}

// Reply generates a reply for the given transcript. The transcript may be
// empty. Reply never returns an error: failures degrade to a fixed apology.
func (a *Agent) Reply(ctx context.Context, transcript string) Reply {
	if a.provider == nil {
		return Reply{Text: FallbackNotConfigured, Degraded: true}
	}

	prompt := fmt.Sprintf(promptTemplate, a.preamble, transcript)

	resp, err := a.provider.Chat(ctx, &inference.ChatRequest{
		Messages: []inference.Message{inference.NewUserMessage(prompt)},
	})
	if err != nil {
		a.logger.Error("generation failed", "error", err)
		return Reply{Text: FallbackError, Degraded: true}
	}

	a.logger.Info("generated reply",
		"chars", len(resp.Message.Content),
		"latency_ms", resp.LatencyMs,
	)

	return Reply{Text: resp.Message.Content, LatencyMs: resp.LatencyMs}
}

// Configured reports whether a generation backend is wired in.
func (a *Agent) Configured() bool {
	return a.provider != nil
}
