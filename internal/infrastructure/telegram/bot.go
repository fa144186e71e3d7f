// Package telegram contains Telegram bot infrastructure
package telegram

import (
	"context"
	"fmt"
	"sync/atomic"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
)

// Bot wraps the Telegram bot for infrastructure layer
type Bot struct {
	bot      *tgbot.Bot
	fallback atomic.Pointer[tgbot.HandlerFunc]
	logger   zerolog.Logger
}

// NewBot creates a new Telegram bot wrapper. Updates that match no
// registered handler go to the handler set with SetDefaultHandler.
func NewBot(token string, logger zerolog.Logger, extra ...tgbot.Option) (*Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram token is required")
	}

	b := &Bot{logger: logger}

	opts := append([]tgbot.Option{
		tgbot.WithDefaultHandler(b.defaultHandler),
	}, extra...)

	bot, err := tgbot.New(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	b.bot = bot

	logger.Info().Msg("Telegram bot created successfully")

	return b, nil
}

// Raw returns the underlying telegram bot for handler registration
func (b *Bot) Raw() *tgbot.Bot {
	return b.bot
}

// SetDefaultHandler routes unmatched updates to h
func (b *Bot) SetDefaultHandler(h tgbot.HandlerFunc) {
	b.fallback.Store(&h)
}

// Start starts the bot (blocking call)
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info().Msg("Starting Telegram bot...")
	b.bot.Start(ctx)
	b.logger.Info().Msg("Telegram bot stopped")
	return nil
}

// Stop stops the bot
func (b *Bot) Stop() error {
	b.logger.Info().Msg("Stopping Telegram bot...")
	return nil
}

func (b *Bot) defaultHandler(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
	h := b.fallback.Load()
	if h == nil {
		b.logger.Debug().Int64("update_id", update.ID).Msg("Update dropped, no default handler")
		return
	}
	(*h)(ctx, bot, update)
}
