// Package speech turns recorded questions into text using a
// Whisper-compatible transcription server.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// ErrNoSpeech is returned when the server transcribed nothing.
var ErrNoSpeech = errors.New("no speech recognised")

// Transcript is the text heard in a recording.
type Transcript struct {
	Text     string
	Language string
}

// Transcriber converts audio to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, contentType, language string) (*Transcript, error)
}

// WhisperClient talks to the OpenAI-compatible /v1/audio/transcriptions API
// exposed by whisper.cpp server and faster-whisper.
type WhisperClient struct {
	endpoint string
	model    string
	client   *http.Client
}

var _ Transcriber = (*WhisperClient)(nil)

func NewWhisperClient(endpoint, model string) *WhisperClient {
	return &WhisperClient{
		endpoint: endpoint,
		model:    model,
		client:   &http.Client{Timeout: 120 * time.Second},
	}
}

func (w *WhisperClient) Transcribe(ctx context.Context, audio []byte, contentType, language string) (*Transcript, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "audio"+extFromContentType(contentType))
	if err != nil {
		return nil, fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(audio)); err != nil {
		return nil, fmt.Errorf("writing audio: %w", err)
	}
	if w.model != "" {
		_ = writer.WriteField("model", w.model)
	}
	if language != "" {
		_ = writer.WriteField("language", language)
	}
	_ = writer.WriteField("response_format", "verbose_json")
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("transcription failed (status %d): %s", resp.StatusCode, respBody)
	}

	var result struct {
		Text     string `json:"text"`
		Language string `json:"language"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding transcription: %w", err)
	}

	text := strings.TrimSpace(result.Text)
	if text == "" {
		return nil, ErrNoSpeech
	}
	return &Transcript{Text: text, Language: result.Language}, nil
}

func extFromContentType(ct string) string {
	switch {
	case strings.Contains(ct, "wav"):
		return ".wav"
	case strings.Contains(ct, "ogg"):
		return ".ogg"
	case strings.Contains(ct, "mp3"), strings.Contains(ct, "mpeg"):
		return ".mp3"
	case strings.Contains(ct, "flac"):
		return ".flac"
	case strings.Contains(ct, "webm"):
		return ".webm"
	default:
		return ".wav"
	}
}
