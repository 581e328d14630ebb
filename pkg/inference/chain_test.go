package inference_test

import (
	"context"
	"errors"
	"testing"

	"github.com/voicepipe/voicepipe/pkg/inference"
)

func TestChainFallsBack(t *testing.T) {
	failing := inference.MockWithError(errors.New("primary down"))
	backup := inference.NewMockWithReply("from backup")

	chain, err := inference.NewChain(failing, backup)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := chain.Chat(context.Background(), &inference.ChatRequest{
		Messages: []inference.Message{inference.NewUserMessage("hi")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Message.Content != "from backup" {
		t.Errorf("expected backup reply, got %q", resp.Message.Content)
	}
}

func TestChainAllFail(t *testing.T) {
	errA := errors.New("a down")
	errB := errors.New("b down")

	chain, _ := inference.NewChain(
		inference.MockWithError(errA),
		inference.MockWithError(errB),
	)

	_, err := chain.Chat(context.Background(), &inference.ChatRequest{
		Messages: []inference.Message{inference.NewUserMessage("hi")},
	})
	if err == nil {
		t.Fatal("expected error")
	}

	var chainErr *inference.ChainError
	if !errors.As(err, &chainErr) {
		t.Fatalf("expected ChainError, got %T", err)
	}
	if len(chainErr.Errors) != 2 {
		t.Errorf("expected 2 recorded errors, got %d", len(chainErr.Errors))
	}
	if !errors.Is(err, errB) {
		t.Error("expected Unwrap to surface the last error")
	}
}

func TestChainRequiresProviders(t *testing.T) {
	_, err := inference.NewChain()
	if !errors.Is(err, inference.ErrProviderUnavailable) {
		t.Errorf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestMockEchoes(t *testing.T) {
	mock := inference.NewMock()

	resp, err := mock.Chat(context.Background(), &inference.ChatRequest{
		Messages: []inference.Message{
			inference.NewSystemMessage("be brief"),
			inference.NewUserMessage("ping"),
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Message.Content != "echo: ping" {
		t.Errorf("expected echo reply, got %q", resp.Message.Content)
	}
	if mock.CallCount("Chat") != 1 {
		t.Errorf("expected 1 Chat call, got %d", mock.CallCount("Chat"))
	}
}
