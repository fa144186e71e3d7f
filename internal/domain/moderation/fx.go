// Package moderation contains the chat moderation domain module
package moderation

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/Stam1n/telegram-bot/config"
	httpDelivery "github.com/Stam1n/telegram-bot/internal/delivery/http"
	telegramDelivery "github.com/Stam1n/telegram-bot/internal/domain/moderation/delivery/telegram"
	"github.com/Stam1n/telegram-bot/internal/domain/moderation/deps"
	"github.com/Stam1n/telegram-bot/internal/domain/moderation/entities"
	fileRepo "github.com/Stam1n/telegram-bot/internal/domain/moderation/repository/file"
	"github.com/Stam1n/telegram-bot/internal/domain/moderation/repository/memory"
	postgresRepo "github.com/Stam1n/telegram-bot/internal/domain/moderation/repository/postgres"
	telegramRepo "github.com/Stam1n/telegram-bot/internal/domain/moderation/repository/telegram"
	"github.com/Stam1n/telegram-bot/internal/domain/moderation/usecase/business"
	"github.com/Stam1n/telegram-bot/internal/domain/moderation/workers"
	"github.com/Stam1n/telegram-bot/internal/infrastructure/database"
	"github.com/Stam1n/telegram-bot/internal/infrastructure/http/server"
	"github.com/Stam1n/telegram-bot/internal/infrastructure/metrics"
	"github.com/Stam1n/telegram-bot/internal/infrastructure/telegram"
)

const loadTimeout = 30 * time.Second

// Module provides moderation domain components for fx dependency injection
var Module = fx.Module("moderation",
	// Repository
	fx.Provide(providePersister),
	fx.Provide(provideStore),
	fx.Provide(func(s *memory.Store) deps.TrackingStore { return s }),
	fx.Provide(func() deps.IdentityDirectory { return memory.NewDirectory() }),
	fx.Provide(provideGateway),
	fx.Provide(func(g *telegramRepo.Gateway) deps.ChatGateway { return g }),
	fx.Provide(func(g *telegramRepo.Gateway) deps.MessageDeleter { return g }),

	// UseCase
	fx.Provide(provideUseCase),

	// Delivery - Telegram
	fx.Provide(telegramDelivery.NewHandlers),
	fx.Provide(telegramDelivery.NewRouter),

	// Workers
	workers.Module,

	fx.Invoke(registerRoutes),
	fx.Invoke(registerHealth),
)

// persisterParams groups what either storage driver may need
type persisterParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Storage   *config.StorageConfig
	Database  *config.DatabaseConfig
	Logger    zerolog.Logger
}

// providePersister picks the tracking state backend from config
func providePersister(p persisterParams) (deps.Persister, error) {
	switch p.Storage.Driver {
	case config.StorageDriverPostgres:
		db, err := database.NewPostgresDBWithLifecycle(p.Lifecycle, p.Database, p.Logger, entities.TrackingModels()...)
		if err != nil {
			return nil, err
		}
		return postgresRepo.NewPersister(db, p.Logger), nil
	default:
		p.Logger.Info().Str("path", p.Storage.FilePath).Msg("Using file storage for tracking state")
		return fileRepo.NewPersister(p.Storage.FilePath, p.Logger), nil
	}
}

// provideStore restores tracking state before the bot starts polling and
// flushes it once more on shutdown
func provideStore(lc fx.Lifecycle, persister deps.Persister, m *metrics.Metrics, logger zerolog.Logger) *memory.Store {
	store := memory.NewStore(persister, m, logger)

	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()
	store.Load(ctx)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := store.Flush(ctx); err != nil {
				logger.Error().Err(err).Msg("Final tracking state flush failed")
			}
			return nil
		},
	})

	return store
}

func provideGateway(bot *telegram.Bot, cfg *config.ModerationConfig, logger zerolog.Logger) *telegramRepo.Gateway {
	return telegramRepo.NewGateway(bot.Raw(), cfg.RequestTimeout, logger)
}

// useCaseParams groups use case dependencies
type useCaseParams struct {
	fx.In

	Store      deps.TrackingStore
	Gateway    deps.ChatGateway
	Notices    deps.NoticeScheduler
	Directory  deps.IdentityDirectory
	Metrics    *metrics.Metrics
	Telegram   *config.TelegramConfig
	Moderation *config.ModerationConfig
	Logger     zerolog.Logger
}

func provideUseCase(p useCaseParams) *business.UseCase {
	return business.NewUseCase(p.Store, p.Gateway, p.Notices, p.Directory, p.Metrics, business.Options{
		OwnerID:   p.Telegram.OwnerID,
		NoticeTTL: p.Moderation.NoticeTTL,
	}, p.Logger)
}

// registerRoutes registers command routes and sends everything else through
// the moderation pipeline
func registerRoutes(bot *telegram.Bot, router *telegramDelivery.Router) {
	router.RegisterRoutes(bot.Raw())
	bot.SetDefaultHandler(router.DefaultHandler())
}

// registerHealth mounts /health reporting Bot API reachability and flush state
func registerHealth(srv *server.Server, gateway *telegramRepo.Gateway, store *memory.Store, logger zerolog.Logger) {
	httpDelivery.NewHealthHandler(logger,
		httpDelivery.Component{Name: "telegram", Checker: gateway, Message: "Telegram Bot API is not reachable"},
		httpDelivery.Component{Name: "tracking_state", Checker: store, Message: "Last tracking state flush failed"},
	).RegisterRoutes(srv.Router)
}
