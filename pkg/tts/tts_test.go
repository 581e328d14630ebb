package tts_test

import (
	"context"
	"errors"
	"testing"

	"github.com/voicepipe/voicepipe/pkg/tts"
)

func TestMockProvider(t *testing.T) {
	mock := tts.NewMock()
	ctx := context.Background()

	t.Run("Synthesize returns audio", func(t *testing.T) {
		result, err := mock.Synthesize(ctx, "Hello world")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Audio) == 0 {
			t.Error("expected audio data")
		}
		if result.CharCount != 11 {
			t.Errorf("expected 11 chars, got %d", result.CharCount)
		}
	})

	t.Run("Empty text is rejected", func(t *testing.T) {
		if _, err := mock.Synthesize(ctx, "  "); !errors.Is(err, tts.ErrEmptyText) {
			t.Errorf("expected ErrEmptyText, got %v", err)
		}
	})

	t.Run("Health returns nil", func(t *testing.T) {
		if err := mock.Health(ctx); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("Calls are tracked", func(t *testing.T) {
		if mock.CallCount("Synthesize") != 2 {
			t.Errorf("expected 2 Synthesize calls, got %d", mock.CallCount("Synthesize"))
		}
		mock.Reset()
		if len(mock.Calls()) != 0 {
			t.Error("expected calls to be cleared")
		}
	})
}

func TestChainFallsBack(t *testing.T) {
	failing := tts.MockWithError(errors.New("piper missing"))
	backup := tts.NewMock()

	chain, err := tts.NewChain(failing, backup)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := chain.Synthesize(context.Background(), "Hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Audio) == 0 {
		t.Error("expected audio from backup provider")
	}
	if backup.CallCount("Synthesize") != 1 {
		t.Error("expected backup provider to be called")
	}
}

func TestChainAllFail(t *testing.T) {
	errA := errors.New("a down")
	errB := errors.New("b down")

	chain, _ := tts.NewChain(tts.MockWithError(errA), tts.MockWithError(errB))

	_, err := chain.Synthesize(context.Background(), "Hello")
	if err == nil {
		t.Fatal("expected error")
	}

	var chainErr *tts.ChainError
	if !errors.As(err, &chainErr) {
		t.Fatalf("expected ChainError, got %T", err)
	}
	if len(chainErr.Errors) != 2 {
		t.Errorf("expected 2 recorded errors, got %d", len(chainErr.Errors))
	}
}

func TestChainRequiresProviders(t *testing.T) {
	if _, err := tts.NewChain(); !errors.Is(err, tts.ErrProviderUnavailable) {
		t.Errorf("expected ErrProviderUnavailable, got %v", err)
	}
}
