package bot

import (
	"context"
	"errors"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tg-audio-bot/internal/logging"
	"tg-audio-bot/internal/state"
	"tg-audio-bot/internal/storage"
)

const testVIPCode = "VIP123"

// fakeTelegram records outbound calls and replays scripted getUpdates
// results. When the script runs out it calls onDrained and returns an
// empty batch.
type fakeTelegram struct {
	mu sync.Mutex

	results   []updatesResult
	onDrained func()
	onPoll    func()
	configs   []tgbotapi.UpdateConfig

	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	sendErr  func(c tgbotapi.Chattable) error

	fileURL string
	fileErr error
}

type updatesResult struct {
	updates []tgbotapi.Update
	err     error
}

func (f *fakeTelegram) GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error) {
	f.mu.Lock()
	f.configs = append(f.configs, config)
	if f.onPoll != nil {
		f.onPoll()
	}
	if len(f.results) == 0 {
		drained := f.onDrained
		f.mu.Unlock()
		if drained != nil {
			drained()
		}
		return nil, nil
	}
	r := f.results[0]
	f.results = f.results[1:]
	f.mu.Unlock()
	return r.updates, r.err
}

func (f *fakeTelegram) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		if err := f.sendErr(c); err != nil {
			return tgbotapi.Message{}, err
		}
	}
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeTelegram) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeTelegram) GetFileDirectURL(fileID string) (string, error) {
	if f.fileErr != nil {
		return "", f.fileErr
	}
	return f.fileURL + "/" + fileID, nil
}

// texts returns the text of every sent message.
func (f *fakeTelegram) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m.Text)
		}
	}
	return out
}

func (f *fakeTelegram) voices() []tgbotapi.VoiceConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.VoiceConfig
	for _, c := range f.sent {
		if v, ok := c.(tgbotapi.VoiceConfig); ok {
			out = append(out, v)
		}
	}
	return out
}

type fakeSpeech struct {
	transcript    string
	transcribeErr error
	audio         []byte
	synthErr      error
	panicOn       string

	gotFilename string
	gotAudio    []byte
	gotText     string
}

func (s *fakeSpeech) Transcribe(_ context.Context, filename string, audio []byte) (string, error) {
	s.gotFilename, s.gotAudio = filename, audio
	if s.transcribeErr != nil {
		return "", s.transcribeErr
	}
	return s.transcript, nil
}

func (s *fakeSpeech) Synthesize(_ context.Context, text string) ([]byte, error) {
	if s.panicOn != "" && text == s.panicOn {
		panic("synth exploded")
	}
	s.gotText = text
	if s.synthErr != nil {
		return nil, s.synthErr
	}
	return s.audio, nil
}

type fakeFetcher struct {
	data   []byte
	err    error
	gotURL string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.gotURL = url
	return f.data, f.err
}

var errBoom = errors.New("boom")

func newTestState(t *testing.T) (*state.State, storage.Store) {
	t.Helper()
	store, err := storage.NewJSONStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	st, err := state.Load(store, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	return st, store
}

func textUpdate(updateID int, chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: updateID,
		Message: &tgbotapi.Message{
			MessageID: updateID * 10,
			Chat:      &tgbotapi.Chat{ID: chatID, Type: "private"},
			Text:      text,
		},
	}
}

func voiceUpdate(updateID int, chatID int64, fileID string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: updateID,
		Message: &tgbotapi.Message{
			MessageID: updateID * 10,
			Chat:      &tgbotapi.Chat{ID: chatID, Type: "private"},
			Voice:     &tgbotapi.Voice{FileID: fileID, Duration: 3, MimeType: "audio/ogg"},
		},
	}
}
