// Package infrastructure contains infrastructure layer components
package infrastructure

import (
	"go.uber.org/fx"

	"github.com/Stam1n/telegram-bot/internal/infrastructure/http"
	"github.com/Stam1n/telegram-bot/internal/infrastructure/logger"
	"github.com/Stam1n/telegram-bot/internal/infrastructure/metrics"
	"github.com/Stam1n/telegram-bot/internal/infrastructure/telegram"
)

// Module provides all infrastructure components for fx dependency injection
var Module = fx.Module("infrastructure",
	logger.Module,
	metrics.Module,
	http.Module,
	telegram.Module,
)
