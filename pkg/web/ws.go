package web

import (
	"context"

	"github.com/gofiber/websocket/v2"
)

// audioChunkSize is the fixed size of binary audio frames sent to the
// client. Small enough to keep per-message memory bounded, large enough
// to avoid flooding the connection with tiny frames.
const audioChunkSize = 8192

// Realtime channel message types.
const (
	msgTextResponse  = "text_response"
	msgAudioComplete = "audio_complete"
	msgError         = "error"
)

// wsMessage is the text-frame envelope for the realtime channel.
type wsMessage struct {
	Type          string `json:"type"`
	Transcription string `json:"transcription,omitempty"`
	Response      string `json:"response,omitempty"`
	Message       string `json:"message,omitempty"`
}

// voiceConn is the subset of the websocket connection the turn loop needs.
// Carved out so turns can be tested without a live connection.
type voiceConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	WriteJSON(v interface{}) error
}

// handleVoiceWS serves the realtime voice channel.
//
// The channel has two states: open and closed. While open, each inbound
// binary frame runs one full pipeline turn. A failed turn reports an error
// frame and leaves the channel open; a read or write failure closes it.
func (s *Server) handleVoiceWS(c *websocket.Conn) {
	s.logger.Info("voice channel opened", "remote", c.RemoteAddr())
	defer s.logger.Info("voice channel closed", "remote", c.RemoteAddr())

	s.serveVoice(context.Background(), c)
}

// serveVoice runs the channel loop until the connection fails or closes.
func (s *Server) serveVoice(ctx context.Context, c voiceConn) {
	for {
		mt, frame, err := c.ReadMessage()
		if err != nil {
			return
		}
		if mt != websocket.BinaryMessage {
			continue
		}

		if err := s.processTurn(ctx, c, frame); err != nil {
			// Any send failure is treated as a dead client; a half-open
			// channel mid-stream is worse than a dropped turn.
			s.logger.Warn("voice channel send failed", "error", err)
			return
		}
	}
}

// processTurn runs one recognize → generate → synthesize turn.
//
// Stage failures are reported to the client as an error frame and a nil
// return, keeping the channel open for the next turn. A non-nil return
// means the transport itself failed and the channel must close.
func (s *Server) processTurn(ctx context.Context, c voiceConn, frame []byte) error {
	result, err := s.transcribe(ctx, frame)
	if err != nil {
		return c.WriteJSON(wsMessage{Type: msgError, Message: err.Error()})
	}

	reply := s.agent.Reply(ctx, result.Text)

	if err := c.WriteJSON(wsMessage{
		Type:          msgTextResponse,
		Transcription: result.Text,
		Response:      reply.Text,
	}); err != nil {
		return err
	}

	synth, err := s.synth.Synthesize(ctx, reply.Text)
	if err != nil {
		return c.WriteJSON(wsMessage{Type: msgError, Message: err.Error()})
	}

	audio := synth.Audio
	for off := 0; off < len(audio); off += audioChunkSize {
		end := off + audioChunkSize
		if end > len(audio) {
			end = len(audio)
		}
		if err := c.WriteMessage(websocket.BinaryMessage, audio[off:end]); err != nil {
			return err
		}
	}

	return c.WriteJSON(wsMessage{Type: msgAudioComplete})
}
