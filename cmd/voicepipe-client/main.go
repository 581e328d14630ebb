// voicepipe-client - command line exercise of a running voicepipe server.
// Checks the HTTP routes and, given an audio file, runs a full voice turn
// over either the realtime channel or the combined HTTP route.
package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

type textRequest struct {
	Text string `json:"text"`
}

type textResponse struct {
	Text           string  `json:"text"`
	ProcessingTime float64 `json:"processing_time"`
}

type voiceCompleteResponse struct {
	Transcription  string  `json:"transcription"`
	LLMResponse    string  `json:"llm_response"`
	AudioBase64    string  `json:"audio_base64"`
	ProcessingTime float64 `json:"processing_time"`
}

type wsMessage struct {
	Type          string `json:"type"`
	Transcription string `json:"transcription"`
	Response      string `json:"response"`
	Message       string `json:"message"`
}

func main() {
	server := flag.String("server", "http://localhost:8000", "voicepipe server base URL")
	audio := flag.String("audio", "", "WAV file to send through a voice turn")
	useWS := flag.Bool("ws", false, "use the realtime channel instead of HTTP for the voice turn")
	out := flag.String("out", "reply.wav", "where to write the spoken reply")
	flag.Parse()

	client := &http.Client{Timeout: 60 * time.Second}

	checkStatus(client, *server)
	checkChat(client, *server)
	checkTTS(client, *server)

	if *audio == "" {
		return
	}

	data, err := os.ReadFile(*audio)
	if err != nil {
		log.Fatalf("read audio: %v", err)
	}

	var reply []byte
	if *useWS {
		reply = voiceTurnWS(*server, data)
	} else {
		reply = voiceTurnHTTP(client, *server, *audio, data)
	}

	if len(reply) > 0 {
		if err := os.WriteFile(*out, reply, 0o644); err != nil {
			log.Fatalf("write reply: %v", err)
		}
		fmt.Printf("spoken reply written to %s (%d bytes)\n", *out, len(reply))
	}
}

func checkStatus(client *http.Client, server string) {
	resp, err := client.Get(server + "/")
	if err != nil {
		log.Fatalf("server unreachable: %v", err)
	}
	defer resp.Body.Close()

	var status struct {
		Service string            `json:"service"`
		Version string            `json:"version"`
		Models  map[string]string `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		log.Fatalf("decode status: %v", err)
	}

	fmt.Printf("%s %s\n", status.Service, status.Version)
	for name, state := range status.Models {
		fmt.Printf("  %s: %s\n", name, state)
	}
}

func checkChat(client *http.Client, server string) {
	reply, took, err := postText(client, server+"/api/chat", "What is the capital of France?")
	if err != nil {
		log.Fatalf("chat: %v", err)
	}
	fmt.Printf("chat (%.2fs): %s\n", took, reply)
}

func checkTTS(client *http.Client, server string) {
	body, _ := json.Marshal(textRequest{Text: "Text to speech is working."})
	resp, err := client.Post(server+"/tts", "application/json", bytes.NewReader(body))
	if err != nil {
		log.Fatalf("tts: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		fmt.Printf("tts unavailable: %s\n", strings.TrimSpace(string(msg)))
		return
	}
	audio, _ := io.ReadAll(resp.Body)
	fmt.Printf("tts: %d bytes of audio\n", len(audio))
}

func postText(client *http.Client, url, text string) (string, float64, error) {
	body, _ := json.Marshal(textRequest{Text: text})
	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return "", 0, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out textResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", 0, err
	}
	return out.Text, out.ProcessingTime, nil
}

// voiceTurnHTTP sends the recording through the combined pipeline route.
func voiceTurnHTTP(client *http.Client, server, filename string, audio []byte) []byte {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("audio", filename)
	if err != nil {
		log.Fatalf("build upload: %v", err)
	}
	part.Write(audio)
	w.Close()

	resp, err := client.Post(server+"/api/voice-chat-complete", w.FormDataContentType(), &buf)
	if err != nil {
		log.Fatalf("voice turn: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		log.Fatalf("voice turn failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out voiceCompleteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		log.Fatalf("decode voice turn: %v", err)
	}

	fmt.Printf("you said: %s\n", out.Transcription)
	fmt.Printf("assistant: %s\n", out.LLMResponse)

	reply, err := base64.StdEncoding.DecodeString(out.AudioBase64)
	if err != nil {
		log.Fatalf("decode reply audio: %v", err)
	}
	return reply
}

// voiceTurnWS sends the recording as one binary frame on the realtime
// channel and collects the streamed reply audio until completion.
func voiceTurnWS(server string, audio []byte) []byte {
	u, err := url.Parse(server)
	if err != nil {
		log.Fatalf("bad server url: %v", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/ws/voice"

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("dial realtime channel: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteMessage(websocket.BinaryMessage, audio); err != nil {
		log.Fatalf("send audio: %v", err)
	}

	var reply bytes.Buffer
	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			log.Fatalf("channel closed: %v", err)
		}

		if mt == websocket.BinaryMessage {
			reply.Write(data)
			continue
		}

		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Fatalf("bad frame: %v", err)
		}
		switch msg.Type {
		case "text_response":
			fmt.Printf("you said: %s\n", msg.Transcription)
			fmt.Printf("assistant: %s\n", msg.Response)
		case "audio_complete":
			return reply.Bytes()
		case "error":
			log.Fatalf("turn failed: %s", msg.Message)
		}
	}
}
