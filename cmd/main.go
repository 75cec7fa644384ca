package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"tg-audio-bot/internal/bot"
	"tg-audio-bot/internal/config"
	"tg-audio-bot/internal/logging"
	"tg-audio-bot/internal/speech"
	"tg-audio-bot/internal/state"
	"tg-audio-bot/internal/storage"
)

func main() {
	cfg := &config.Config{}
	if err := config.Load(cfg, ""); err != nil {
		log.Fatalf("Can't load config: %v", err)
	}

	logger, closeLog, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogPath()})
	if err != nil {
		log.Fatalf("Can't set up logging: %v", err)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("critical error in main loop", "error", err)
		closeLog()
		os.Exit(1)
	}
	logger.Info("bot has been shut down")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	store, err := storage.Open(cfg.StorageDriver, cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	st, err := state.Load(store, logger)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	offset, _ := st.Offset()
	logger.Info("state loaded", "driver", cfg.StorageDriver, "vip_users", st.VIPCount(), "offset", offset)

	tg, err := bot.NewTelegram(cfg.BotToken, cfg.PollTimeout, cfg.TelegramDebug, logger)
	if err != nil {
		return err
	}
	logger.Info("bot is running", "username", tg.Self.UserName)

	audio := speech.NewClient(speech.Config{
		APIKey:             cfg.APIKey,
		BaseURL:            cfg.APIBaseURL,
		TranscriptionModel: cfg.TranscriptionModel,
		SpeechModel:        cfg.SpeechModel,
		Voice:              cfg.SpeechVoice,
		Timeout:            cfg.APITimeout,
	})

	handler := bot.NewHandler(tg, audio, bot.NewGate(st, cfg.VIPCode), bot.NewDownloader(cfg.DownloadTimeout), logger)
	poller := bot.NewPoller(tg, handler, st, bot.PollerConfig{
		Timeout:    cfg.PollTimeout,
		Limit:      cfg.PollLimit,
		RetryDelay: cfg.RetryDelay,
	}, logger)

	if err := poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("interrupted, shutting down")
	return nil
}
