package workers

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/Stam1n/telegram-bot/config"
	"github.com/Stam1n/telegram-bot/internal/domain/moderation/deps"
	"github.com/Stam1n/telegram-bot/internal/infrastructure/metrics"
)

// Module provides workers for fx dependency injection
var Module = fx.Module("moderation-workers",
	fx.Provide(provideNoticeCleaner),
	fx.Provide(func(c *NoticeCleaner) deps.NoticeScheduler { return c }),
	fx.Invoke(registerNoticeCleanerLifecycle),
)

func provideNoticeCleaner(deleter deps.MessageDeleter, m *metrics.Metrics, cfg *config.ModerationConfig, logger zerolog.Logger) *NoticeCleaner {
	return NewNoticeCleaner(deleter, m, cfg.RequestTimeout, logger)
}

// registerNoticeCleanerLifecycle stops pending notice removals on shutdown
func registerNoticeCleanerLifecycle(lc fx.Lifecycle, cleaner *NoticeCleaner) {
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			cleaner.Stop()
			return nil
		},
	})
}
