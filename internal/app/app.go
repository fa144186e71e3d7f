// Package app contains application bootstrap
package app

import (
	"go.uber.org/fx"

	"github.com/Stam1n/telegram-bot/config"
	"github.com/Stam1n/telegram-bot/internal/domain"
	"github.com/Stam1n/telegram-bot/internal/infrastructure"
)

// CreateApp creates fx application with all modules
func CreateApp() fx.Option {
	return fx.Options(
		// Configuration
		fx.Provide(config.Out),

		// Infrastructure (logger, metrics, http server, telegram bot)
		infrastructure.Module,

		// Domain (moderation pipeline and chat commands)
		domain.Module,
	)
}
