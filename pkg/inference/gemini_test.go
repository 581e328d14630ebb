package inference_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/voicepipe/voicepipe/pkg/inference"
)

func geminiServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *inference.Gemini) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	provider, err := inference.NewGemini(
		inference.WithAPIKey("test-key"),
		inference.WithBaseURL(server.URL),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { provider.Close() })
	return server, provider
}

func TestGeminiChat(t *testing.T) {
	var gotPath string
	var gotPayload map[string]any

	_, provider := geminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotPayload)
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"parts": []map[string]string{{"text": "Four. "}},
				},
				"finishReason": "STOP",
			}},
			"usageMetadata": map[string]int{
				"promptTokenCount":     12,
				"candidatesTokenCount": 3,
				"totalTokenCount":      15,
			},
		})
	})

	resp, err := provider.Chat(context.Background(), &inference.ChatRequest{
		Messages: []inference.Message{inference.NewUserMessage("What is 2+2?")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Message.Content != "Four." {
		t.Errorf("expected trimmed reply, got %q", resp.Message.Content)
	}
	if resp.Message.Role != inference.RoleAssistant {
		t.Errorf("expected assistant role, got %s", resp.Message.Role)
	}
	if resp.Usage.TotalTokens != 15 {
		t.Errorf("expected 15 total tokens, got %d", resp.Usage.TotalTokens)
	}
	if gotPath != "/models/gemini-1.5-flash:generateContent" {
		t.Errorf("unexpected path %s", gotPath)
	}
	contents, ok := gotPayload["contents"].([]any)
	if !ok || len(contents) != 1 {
		t.Fatalf("expected one content entry, got %v", gotPayload["contents"])
	}
}

func TestGeminiAPIError(t *testing.T) {
	_, provider := geminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": 429, "message": "quota exceeded"},
		})
	})

	_, err := provider.Chat(context.Background(), &inference.ChatRequest{
		Messages: []inference.Message{inference.NewUserMessage("hi")},
	})
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *inference.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if !apiErr.IsRateLimited() {
		t.Errorf("expected rate-limited error, got status %d", apiErr.StatusCode)
	}
	if apiErr.Message != "quota exceeded" {
		t.Errorf("expected API message, got %q", apiErr.Message)
	}
}

func TestGeminiRequiresAPIKey(t *testing.T) {
	_, err := inference.NewGemini()
	if !errors.Is(err, inference.ErrNoAPIKey) {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}
}

func TestGeminiEmptyCandidates(t *testing.T) {
	_, provider := geminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	})

	_, err := provider.Chat(context.Background(), &inference.ChatRequest{
		Messages: []inference.Message{inference.NewUserMessage("hi")},
	})
	if err == nil {
		t.Fatal("expected error for empty candidates")
	}
}
