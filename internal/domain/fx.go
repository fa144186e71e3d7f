// Package domain contains all domain modules
package domain

import (
	"go.uber.org/fx"

	"github.com/Stam1n/telegram-bot/internal/domain/moderation"
)

// Module aggregates all domain modules for fx dependency injection
var Module = fx.Module("domain",
	moderation.Module,
)
