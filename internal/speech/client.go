// Package speech talks to an OpenAI-compatible audio API for
// speech-to-text and text-to-speech.
package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultBaseURL            = "https://api.metisai.ir/openai/v1"
	DefaultTranscriptionModel = openai.Whisper1
	DefaultSpeechModel        = "tts-1-hd"
	DefaultVoice              = "alloy"
	DefaultTimeout            = 60 * time.Second
)

var (
	// ErrEmptyInput is returned by Synthesize for blank text and by
	// Transcribe for an empty audio buffer.
	ErrEmptyInput = errors.New("empty input")
	// ErrEmptyResult is returned when the API answers 2xx with no payload.
	ErrEmptyResult = errors.New("empty result")
)

// Config configures a Client. Zero fields take the defaults above.
type Config struct {
	APIKey             string
	BaseURL            string
	TranscriptionModel string
	SpeechModel        string
	Voice              string
	Timeout            time.Duration
	HTTPClient         *http.Client
}

// Client is the audio API client using the OpenAI-compatible interface.
type Client struct {
	client             *openai.Client
	transcriptionModel string
	speechModel        openai.SpeechModel
	voice              openai.SpeechVoice
	timeout            time.Duration
}

// NewClient creates a new audio client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.TranscriptionModel == "" {
		cfg.TranscriptionModel = DefaultTranscriptionModel
	}
	if cfg.SpeechModel == "" {
		cfg.SpeechModel = DefaultSpeechModel
	}
	if cfg.Voice == "" {
		cfg.Voice = DefaultVoice
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	config := openai.DefaultConfig(cfg.APIKey)
	config.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.HTTPClient != nil {
		config.HTTPClient = cfg.HTTPClient
	}

	return &Client{
		client:             openai.NewClientWithConfig(config),
		transcriptionModel: cfg.TranscriptionModel,
		speechModel:        openai.SpeechModel(cfg.SpeechModel),
		voice:              openai.SpeechVoice(cfg.Voice),
		timeout:            cfg.Timeout,
	}
}

// Transcribe sends audio for speech-to-text. filename only hints the
// container format to the server.
func (c *Client) Transcribe(ctx context.Context, filename string, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("transcribe: %w", ErrEmptyInput)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.transcriptionModel,
		FilePath: filename,
		Reader:   bytes.NewReader(audio),
	})
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", fmt.Errorf("transcribe: %w", ErrEmptyResult)
	}
	return text, nil
}

// Synthesize converts text to speech and returns Ogg/Opus audio, the
// format Telegram plays as a voice note.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("synthesize: %w", ErrEmptyInput)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          c.speechModel,
		Input:          text,
		Voice:          c.voice,
		ResponseFormat: openai.SpeechResponseFormatOpus,
	})
	if err != nil {
		return nil, fmt.Errorf("synthesize: %w", err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("synthesize: read audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("synthesize: %w", ErrEmptyResult)
	}
	return audio, nil
}
