package telegram

import (
	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
)

// Router registers Telegram bot handlers
type Router struct {
	handlers *Handlers
	logger   zerolog.Logger
}

// NewRouter creates new Telegram router
func NewRouter(handlers *Handlers, logger zerolog.Logger) *Router {
	return &Router{
		handlers: handlers,
		logger:   logger,
	}
}

// RegisterRoutes registers command and button handlers on the bot. Everything
// else reaches the bot's default handler, see DefaultHandler.
func (r *Router) RegisterRoutes(bot *tgbot.Bot) {
	for name, handler := range r.handlers.commands() {
		bot.RegisterHandlerMatchFunc(matchCommand(name), handler)
	}
	bot.RegisterHandler(tgbot.HandlerTypeCallbackQueryData, "", tgbot.MatchTypePrefix, r.handlers.HandleCallback)

	r.logger.Info().Msg("All Telegram command handlers registered successfully")
}

// DefaultHandler handles updates no route matched
func (r *Router) DefaultHandler() tgbot.HandlerFunc {
	return r.handlers.HandleMessage
}

// matchCommand matches text messages invoking the named command, with or
// without a bot username suffix
func matchCommand(name string) tgbot.MatchFunc {
	return func(update *models.Update) bool {
		if update.Message == nil {
			return false
		}
		cmd, ok := parseCommand(update.Message.Text)
		return ok && cmd.Name == name
	}
}
