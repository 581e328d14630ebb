package web

import (
	"context"
	"errors"
	"testing"

	"github.com/gofiber/websocket/v2"

	"github.com/voicepipe/voicepipe/pkg/agent"
	"github.com/voicepipe/voicepipe/pkg/inference"
	"github.com/voicepipe/voicepipe/pkg/stt"
	"github.com/voicepipe/voicepipe/pkg/tts"
)

// wsEvent records one outbound frame written to the fake connection.
type wsEvent struct {
	kind string // "json" or "binary"
	msg  wsMessage
	size int
}

// fakeConn scripts inbound frames and records outbound ones.
type fakeConn struct {
	reads []fakeFrame
	sent  []wsEvent

	failJSONAfter int // fail WriteJSON once this many JSON frames were sent; 0 = never
	failBinary    bool
}

type fakeFrame struct {
	messageType int
	data        []byte
}

var errConnClosed = errors.New("connection closed")

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	if len(f.reads) == 0 {
		return 0, nil, errConnClosed
	}
	frame := f.reads[0]
	f.reads = f.reads[1:]
	return frame.messageType, frame.data, nil
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	if f.failBinary {
		return errConnClosed
	}
	f.sent = append(f.sent, wsEvent{kind: "binary", size: len(data)})
	return nil
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	msg, ok := v.(wsMessage)
	if !ok {
		return errors.New("unexpected payload type")
	}
	jsonCount := 0
	for _, e := range f.sent {
		if e.kind == "json" {
			jsonCount++
		}
	}
	if f.failJSONAfter > 0 && jsonCount >= f.failJSONAfter {
		return errConnClosed
	}
	f.sent = append(f.sent, wsEvent{kind: "json", msg: msg})
	return nil
}

func (f *fakeConn) jsonFrames() []wsMessage {
	var out []wsMessage
	for _, e := range f.sent {
		if e.kind == "json" {
			out = append(out, e.msg)
		}
	}
	return out
}

func newVoiceServer(recognizer stt.Provider, provider inference.Provider, synth tts.Provider) *Server {
	return New(recognizer, agent.New(provider, "You are a test assistant.", nil), synth, nil)
}

func TestTurnFrameOrdering(t *testing.T) {
	s := newVoiceServer(
		stt.NewMockWithText("what is two plus two"),
		inference.NewMockWithReply("Four."),
		tts.NewMock(),
	)

	conn := &fakeConn{}
	if err := s.processTurn(context.Background(), conn, []byte("fake-wav")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(conn.sent) < 3 {
		t.Fatalf("expected at least 3 frames, got %d", len(conn.sent))
	}

	first := conn.sent[0]
	if first.kind != "json" || first.msg.Type != msgTextResponse {
		t.Fatalf("expected leading text_response, got %+v", first)
	}
	if first.msg.Transcription != "what is two plus two" {
		t.Errorf("unexpected transcription %q", first.msg.Transcription)
	}
	if first.msg.Response != "Four." {
		t.Errorf("unexpected response %q", first.msg.Response)
	}

	last := conn.sent[len(conn.sent)-1]
	if last.kind != "json" || last.msg.Type != msgAudioComplete {
		t.Fatalf("expected trailing audio_complete, got %+v", last)
	}

	binary := 0
	for _, e := range conn.sent[1 : len(conn.sent)-1] {
		if e.kind != "binary" {
			t.Fatalf("expected only binary frames between text and completion, got %+v", e)
		}
		binary++
	}
	if binary == 0 {
		t.Error("expected at least one audio chunk")
	}
}

func TestTurnChunksLargeAudio(t *testing.T) {
	audio := make([]byte, audioChunkSize*2+100)
	synth := &tts.Mock{
		SynthesizeFunc: func(ctx context.Context, text string) (*tts.AudioResult, error) {
			return &tts.AudioResult{Audio: audio, Format: tts.PiperFormat(), CharCount: len(text)}, nil
		},
	}
	s := newVoiceServer(stt.NewMock(), inference.NewMock(), synth)

	conn := &fakeConn{}
	if err := s.processTurn(context.Background(), conn, []byte("fake-wav")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var sizes []int
	for _, e := range conn.sent {
		if e.kind == "binary" {
			sizes = append(sizes, e.size)
		}
	}
	if len(sizes) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(sizes))
	}
	if sizes[0] != audioChunkSize || sizes[1] != audioChunkSize || sizes[2] != 100 {
		t.Errorf("unexpected chunk sizes %v", sizes)
	}

	total := 0
	for _, n := range sizes {
		total += n
	}
	if total != len(audio) {
		t.Errorf("chunks cover %d bytes, want %d", total, len(audio))
	}
}

func TestTurnRecognitionFailureKeepsChannelOpen(t *testing.T) {
	s := newVoiceServer(
		stt.MockWithError(&stt.TranscriptionError{Message: "decode failed"}),
		inference.NewMock(),
		tts.NewMock(),
	)

	conn := &fakeConn{}
	if err := s.processTurn(context.Background(), conn, []byte("fake-wav")); err != nil {
		t.Fatalf("stage failure must not close the channel, got %v", err)
	}

	frames := conn.jsonFrames()
	if len(frames) != 1 || frames[0].Type != msgError {
		t.Fatalf("expected a single error frame, got %+v", frames)
	}
	if frames[0].Message == "" {
		t.Error("expected error message text")
	}
}

func TestTurnSynthesisFailureKeepsChannelOpen(t *testing.T) {
	s := newVoiceServer(
		stt.NewMock(),
		inference.NewMock(),
		tts.MockWithError(&tts.SynthesisError{ExitCode: 1, Stderr: "boom"}),
	)

	conn := &fakeConn{}
	if err := s.processTurn(context.Background(), conn, []byte("fake-wav")); err != nil {
		t.Fatalf("stage failure must not close the channel, got %v", err)
	}

	frames := conn.jsonFrames()
	if len(frames) != 2 {
		t.Fatalf("expected text_response then error, got %+v", frames)
	}
	if frames[0].Type != msgTextResponse {
		t.Errorf("expected text_response first, got %q", frames[0].Type)
	}
	if frames[1].Type != msgError {
		t.Errorf("expected error frame, got %q", frames[1].Type)
	}
}

func TestTurnSendFailureClosesChannel(t *testing.T) {
	s := newVoiceServer(stt.NewMock(), inference.NewMock(), tts.NewMock())

	conn := &fakeConn{failBinary: true}
	if err := s.processTurn(context.Background(), conn, []byte("fake-wav")); err == nil {
		t.Fatal("expected send failure to propagate")
	}
}

func TestServeVoiceLoop(t *testing.T) {
	t.Run("survives a failed turn", func(t *testing.T) {
		calls := 0
		recognizer := &stt.Mock{
			TranscribeFunc: func(ctx context.Context, audio []byte) (*stt.Result, error) {
				calls++
				if calls == 1 {
					return nil, &stt.TranscriptionError{Message: "decode failed"}
				}
				return &stt.Result{Text: "hello", Language: "en"}, nil
			},
		}
		s := newVoiceServer(recognizer, inference.NewMock(), tts.NewMock())

		conn := &fakeConn{reads: []fakeFrame{
			{websocket.BinaryMessage, []byte("bad")},
			{websocket.BinaryMessage, []byte("good")},
		}}
		s.serveVoice(context.Background(), conn)

		if calls != 2 {
			t.Fatalf("expected both frames processed, got %d", calls)
		}
		frames := conn.jsonFrames()
		if len(frames) == 0 || frames[0].Type != msgError {
			t.Fatalf("expected error frame first, got %+v", frames)
		}
		last := frames[len(frames)-1]
		if last.Type != msgAudioComplete {
			t.Errorf("expected second turn to complete, got %q", last.Type)
		}
	})

	t.Run("skips non-binary frames", func(t *testing.T) {
		recognizer := stt.NewMock()
		s := newVoiceServer(recognizer, inference.NewMock(), tts.NewMock())

		conn := &fakeConn{reads: []fakeFrame{
			{websocket.TextMessage, []byte(`{"type":"ping"}`)},
			{websocket.BinaryMessage, []byte("audio")},
		}}
		s.serveVoice(context.Background(), conn)

		if recognizer.CallCount("Transcribe") != 1 {
			t.Errorf("expected 1 transcription, got %d", recognizer.CallCount("Transcribe"))
		}
	})

	t.Run("stops on send failure", func(t *testing.T) {
		recognizer := stt.NewMock()
		s := newVoiceServer(recognizer, inference.NewMock(), tts.NewMock())

		conn := &fakeConn{
			reads: []fakeFrame{
				{websocket.BinaryMessage, []byte("first")},
				{websocket.BinaryMessage, []byte("second")},
			},
			failBinary: true,
		}
		s.serveVoice(context.Background(), conn)

		if recognizer.CallCount("Transcribe") != 1 {
			t.Errorf("expected loop to stop after failed send, got %d turns", recognizer.CallCount("Transcribe"))
		}
	})
}
