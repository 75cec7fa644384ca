package bot

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Speech converts between audio and text.
type Speech interface {
	Transcribe(ctx context.Context, filename string, audio []byte) (string, error)
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Fetcher downloads a file by URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Handler processes one update: VIP gate, then voice-to-text or
// text-to-voice, then the reply.
type Handler struct {
	api     TelegramAPI
	speech  Speech
	gate    *Gate
	fetcher Fetcher
	logger  *slog.Logger
}

func NewHandler(api TelegramAPI, speech Speech, gate *Gate, fetcher Fetcher, logger *slog.Logger) *Handler {
	return &Handler{
		api:     api,
		speech:  speech,
		gate:    gate,
		fetcher: fetcher,
		logger:  logger,
	}
}

// Handle never returns an error: failures are logged and answered with a
// generic reply so the poller can move on.
func (h *Handler) Handle(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID
	logger := h.logger.With("update_id", update.UpdateID, "chat_id", chatID)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic while processing update", "panic", r, "stack", string(debug.Stack()))
			h.reply(logger, chatID, msg.MessageID, msgProcessingFailed)
		}
	}()

	switch h.gate.Check(chatID, msg.Text) {
	case Granted:
		logger.Info("vip granted")
		h.reply(logger, chatID, msg.MessageID, msgVIPGranted)
		return
	case Denied:
		logger.Info("vip required")
		h.reply(logger, chatID, msg.MessageID, msgVIPRequired)
		return
	}

	switch {
	case msg.Voice != nil:
		h.handleAudio(ctx, logger, msg, msg.Voice.FileID, msg.Voice.FileID+".oga")
	case msg.Audio != nil:
		h.handleAudio(ctx, logger, msg, msg.Audio.FileID, audioFileName(msg.Audio))
	case msg.Text != "":
		h.handleText(ctx, logger, msg)
	default:
		h.reply(logger, chatID, msg.MessageID, msgUnsupported)
	}
}

// handleAudio transcribes a voice note or audio file and replies with the
// text.
func (h *Handler) handleAudio(ctx context.Context, logger *slog.Logger, msg *tgbotapi.Message, fileID, filename string) {
	chatID := msg.Chat.ID
	h.chatAction(logger, chatID, tgbotapi.ChatTyping)

	logger.Info("downloading voice message", "file_id", fileID)
	audio, err := h.download(ctx, fileID)
	if err != nil {
		logger.Error("failed to download voice message", "file_id", fileID, "error", err)
		h.reply(logger, chatID, msg.MessageID, msgProcessingFailed)
		return
	}

	logger.Info("transcribing audio", "bytes", len(audio))
	text, err := h.speech.Transcribe(ctx, filename, audio)
	if err != nil {
		logger.Error("failed to transcribe audio", "error", err)
		h.reply(logger, chatID, msg.MessageID, msgTranscribeFailed)
		return
	}

	h.reply(logger, chatID, msg.MessageID, text)
	logger.Info("sent transcription")
}

// handleText synthesizes speech for the message text and replies with a
// voice note.
func (h *Handler) handleText(ctx context.Context, logger *slog.Logger, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	h.chatAction(logger, chatID, tgbotapi.ChatRecordVoice)

	logger.Info("generating speech")
	audio, err := h.speech.Synthesize(ctx, msg.Text)
	if err != nil {
		logger.Error("failed to generate speech", "error", err)
		h.reply(logger, chatID, msg.MessageID, msgSynthesizeFailed)
		return
	}

	voice := tgbotapi.NewVoice(chatID, tgbotapi.FileBytes{Name: "speech.ogg", Bytes: audio})
	voice.ReplyToMessageID = msg.MessageID
	if _, err := h.api.Send(voice); err != nil {
		logger.Error("failed to send voice", "error", stripURL(err))
		h.reply(logger, chatID, msg.MessageID, msgProcessingFailed)
		return
	}
	logger.Info("sent speech", "bytes", len(audio))
}

func (h *Handler) download(ctx context.Context, fileID string) ([]byte, error) {
	url, err := h.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("get file: %w", stripURL(err))
	}
	return h.fetcher.Fetch(ctx, url)
}

func (h *Handler) chatAction(logger *slog.Logger, chatID int64, action string) {
	if _, err := h.api.Request(tgbotapi.NewChatAction(chatID, action)); err != nil {
		logger.Debug("chat action failed", "action", action, "error", stripURL(err))
	}
}

// reply sends text as Markdown and falls back to plain text when Telegram
// rejects the markup.
func (h *Handler) reply(logger *slog.Logger, chatID int64, replyTo int, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyToMessageID = replyTo
	msg.DisableWebPagePreview = true
	msg.ParseMode = tgbotapi.ModeMarkdown

	_, err := h.api.Send(msg)
	if err == nil {
		return
	}
	logger.Warn("markdown send failed, sending as plain text", "error", stripURL(err))

	msg.ParseMode = ""
	if _, err := h.api.Send(msg); err != nil {
		logger.Error("final send attempt failed", "error", stripURL(err))
	}
}

func audioFileName(a *tgbotapi.Audio) string {
	if a.FileName != "" {
		return a.FileName
	}
	switch a.MimeType {
	case "audio/ogg", "audio/opus":
		return a.FileID + ".ogg"
	case "audio/mp4", "audio/x-m4a", "audio/m4a":
		return a.FileID + ".m4a"
	case "audio/wav", "audio/x-wav":
		return a.FileID + ".wav"
	case "audio/flac", "audio/x-flac":
		return a.FileID + ".flac"
	default:
		return a.FileID + ".mp3"
	}
}
