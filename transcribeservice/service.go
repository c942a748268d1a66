// Package transcribeservice implements the synchronous TranscribeService
// collaborator left implementation-defined by spec.md §9: a one-shot
// "here is a finished audio clip, give me text back" call, distinct from
// the streaming plugin in package transcription.
package transcribeservice

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultMaxUploadBytes is OpenAI's documented Whisper upload ceiling.
const DefaultMaxUploadBytes = 25 * 1024 * 1024

// ErrAudioTooLarge is returned when the WAV upload (the decoded audio
// plus its 44-byte header) exceeds MaxUploadBytes.
type ErrAudioTooLarge struct {
	Size, Max int
}

func (e *ErrAudioTooLarge) Error() string {
	return fmt.Sprintf("transcribeservice: audio is %d bytes, exceeds the %d byte limit", e.Size, e.Max)
}

// Service is the synchronous transcribe(base64 audio) collaborator. It
// has no retry policy of its own: a failed call returns immediately and
// leaves the decision to retry to the caller, which per spec.md §9 owns
// the recording lifecycle this call is scoped to.
type Service struct {
	client         *openai.Client
	model          string
	language       string
	maxUploadBytes int
}

// Config configures a Service. BaseURL overrides the OpenAI API origin,
// used by tests to point at a local httptest server.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	Language       string
	MaxUploadBytes int
}

// New builds a Service backed by OpenAI's Whisper transcription endpoint.
func New(cfg Config) *Service {
	maxBytes := cfg.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	model := cfg.Model
	if model == "" {
		model = openai.Whisper1
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &Service{
		client:         openai.NewClientWithConfig(clientConfig),
		model:          model,
		language:       cfg.Language,
		maxUploadBytes: maxBytes,
	}
}

// Transcribe decodes base64-encoded raw little-endian s16 PCM audio,
// wraps it in a WAV container, and submits it for transcription. It
// blocks until the server responds or ctx is cancelled.
func (s *Service) Transcribe(ctx context.Context, base64Audio string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(base64Audio)
	if err != nil {
		return "", fmt.Errorf("transcribeservice: decode base64 audio: %w", err)
	}
	if len(raw) == 0 {
		return "", nil
	}

	wavData := encodeWAV(raw, 16000, 1, 16)
	if len(wavData) > s.maxUploadBytes {
		return "", &ErrAudioTooLarge{Size: len(wavData), Max: s.maxUploadBytes}
	}

	req := openai.AudioRequest{
		Model:    s.model,
		Reader:   bytes.NewReader(wavData),
		FilePath: "audio.wav",
		Language: s.language,
	}

	resp, err := s.client.CreateTranscription(ctx, req)
	if err != nil {
		return "", fmt.Errorf("transcribeservice: transcription request: %w", err)
	}
	return resp.Text, nil
}
