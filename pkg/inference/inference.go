// Package inference provides a unified interface for text-generation services.
//
// The package supports multiple backends including Google Gemini (native REST
// API) and any OpenAI-compatible endpoint. All providers implement the
// Provider interface, enabling seamless switching without changing caller
// code. A Chain tries providers in order, and a Mock supports testing.
//
// Example usage:
//
//	provider, _ := inference.NewGemini(
//	    inference.WithAPIKey(os.Getenv("GEMINI_API_KEY")),
//	)
//	defer provider.Close()
//
//	resp, _ := provider.Chat(ctx, &inference.ChatRequest{
//	    Messages: []inference.Message{inference.NewUserMessage("Hello")},
//	})
//	// resp.Message.Content contains the reply text
package inference

import "context"

// Provider defines the text-generation backend interface.
type Provider interface {
	// Chat generates a completion for the given conversation.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// Capabilities returns what this provider supports.
	Capabilities() Capabilities

	// Health checks provider connectivity and credential validity.
	Health(ctx context.Context) error

	// Close releases any resources held by the provider.
	Close() error
}

// Capabilities describes optional provider features.
type Capabilities struct {
	Chat bool
}

// ChatRequest is a chat completion request.
type ChatRequest struct {
	// Messages is the conversation so far, oldest first.
	Messages []Message

	// Model overrides the provider's configured model when set.
	Model string

	// MaxTokens limits the completion length. Zero uses the provider default.
	MaxTokens int

	// Temperature controls randomness. Zero uses the provider default.
	Temperature float64
}

// ChatResponse is a completed chat generation.
type ChatResponse struct {
	// Message is the assistant's reply.
	Message Message

	// FinishReason reports why generation stopped.
	FinishReason string

	// Usage reports token accounting when the backend provides it.
	Usage Usage

	// Model is the model that produced the reply.
	Model string

	// LatencyMs is the wall-clock time the backend call took.
	LatencyMs int64
}

// Usage reports token consumption.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
