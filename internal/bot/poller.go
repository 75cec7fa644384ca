package bot

import (
	"context"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tg-audio-bot/internal/state"
)

// UpdateHandler processes a single update.
type UpdateHandler interface {
	Handle(ctx context.Context, update tgbotapi.Update)
}

// PollerConfig controls getUpdates.
type PollerConfig struct {
	Timeout    int // long-poll wait in seconds
	Limit      int
	RetryDelay time.Duration
}

// Poller fetches updates in a single sequential loop. A batch is fully
// handled before the next request, and the offset is persisted after each
// batch, so delivery is at-least-once.
type Poller struct {
	api     TelegramAPI
	handler UpdateHandler
	state   *state.State
	config  PollerConfig
	logger  *slog.Logger
}

func NewPoller(api TelegramAPI, handler UpdateHandler, st *state.State, config PollerConfig, logger *slog.Logger) *Poller {
	return &Poller{
		api:     api,
		handler: handler,
		state:   st,
		config:  config,
		logger:  logger,
	}
}

// Run polls until ctx is cancelled and returns ctx.Err(). Transport errors
// are logged and retried after RetryDelay.
func (p *Poller) Run(ctx context.Context) error {
	offset, _ := p.state.Offset()
	p.logger.Info("polling started", "offset", offset)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if _, err := p.PollOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.logger.Error("error fetching updates", "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.config.RetryDelay):
			}
		}
	}
}

// PollOnce performs one getUpdates call and handles the returned batch. It
// returns the number of updates handled.
func (p *Poller) PollOnce(ctx context.Context) (int, error) {
	offset, _ := p.state.Offset()
	updates, err := p.api.GetUpdates(tgbotapi.UpdateConfig{
		Offset:         offset,
		Limit:          p.config.Limit,
		Timeout:        p.config.Timeout,
		AllowedUpdates: []string{"message"},
	})
	if err != nil {
		return 0, stripURL(err)
	}
	// shutdown arrived during the long poll; leave the batch unacknowledged
	// so it is redelivered on restart
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(updates) == 0 {
		return 0, nil
	}

	handled := 0
	maxID := updates[0].UpdateID
	for _, update := range updates {
		maxID = max(maxID, update.UpdateID)
		if update.UpdateID < offset {
			p.logger.Debug("skipping stale update", "update_id", update.UpdateID, "offset", offset)
			continue
		}
		p.handler.Handle(ctx, update)
		handled++
	}

	p.state.Advance(maxID + 1)
	p.logger.Debug("batch processed", "updates", len(updates), "handled", handled, "offset", maxID+1)
	return handled, nil
}
