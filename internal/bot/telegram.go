package bot

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramAPI is the subset of *tgbotapi.BotAPI the bot uses.
type TelegramAPI interface {
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// NewTelegram authorizes token against the Bot API. pollTimeout is the
// long-poll wait; the HTTP client timeout is set above it so a quiet poll
// is never cut short.
func NewTelegram(token string, pollTimeout int, debug bool, logger *slog.Logger) (*tgbotapi.BotAPI, error) {
	if err := tgbotapi.SetLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug)); err != nil {
		return nil, fmt.Errorf("set telegram logger: %w", err)
	}

	client := &http.Client{
		Timeout: time.Duration(pollTimeout)*time.Second + 15*time.Second,
	}
	bot, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, fmt.Errorf("NewBotAPI: %w", err)
	}
	bot.Debug = debug
	return bot, nil
}
