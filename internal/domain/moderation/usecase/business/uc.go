// Package business contains the moderation pipeline and chat command logic
package business

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Stam1n/telegram-bot/internal/domain/moderation/deps"
	"github.com/Stam1n/telegram-bot/internal/domain/moderation/entities"
	boterrors "github.com/Stam1n/telegram-bot/internal/domain/moderation/errors"
	"github.com/Stam1n/telegram-bot/internal/infrastructure/metrics"
)

// DefaultNoticeTTL is how long a deletion notice stays in the chat
const DefaultNoticeTTL = 5 * time.Second

// Options tunes the use case
type Options struct {
	// OwnerID may use the operator commands; zero disables them
	OwnerID   int64
	NoticeTTL time.Duration
}

// UseCase contains business logic for moderation and chat commands
type UseCase struct {
	store     deps.TrackingStore
	gateway   deps.ChatGateway
	notices   deps.NoticeScheduler
	directory deps.IdentityDirectory
	metrics   *metrics.Metrics
	opts      Options
	now       func() time.Time
	logger    zerolog.Logger
}

// NewUseCase creates a new UseCase instance
func NewUseCase(
	store deps.TrackingStore,
	gateway deps.ChatGateway,
	notices deps.NoticeScheduler,
	directory deps.IdentityDirectory,
	m *metrics.Metrics,
	opts Options,
	logger zerolog.Logger,
) *UseCase {
	if opts.NoticeTTL <= 0 {
		opts.NoticeTTL = DefaultNoticeTTL
	}

	return &UseCase{
		store:     store,
		gateway:   gateway,
		notices:   notices,
		directory: directory,
		metrics:   m,
		opts:      opts,
		now:       time.Now,
		logger:    logger,
	}
}

// isOwner reports whether id is the configured operator
func (uc *UseCase) isOwner(id int64) bool {
	return uc.opts.OwnerID != 0 && id == uc.opts.OwnerID
}

// requireOwner fails with ErrNotOwner for anyone but the operator
func (uc *UseCase) requireOwner(issuer entities.Identity) error {
	if !uc.isOwner(issuer.ID) {
		return boterrors.ErrNotOwner
	}
	return nil
}

// requireChatAdmin verifies live that issuer administers chatID. A failed
// lookup counts as not privileged. In a group, a message sent on behalf of
// the chat itself comes from an anonymous administrator. Private chats share
// their id with the user and always go through the live check.
func (uc *UseCase) requireChatAdmin(ctx context.Context, chatID int64, issuer entities.Identity) error {
	if chatID < 0 && issuer.ID == chatID {
		return nil
	}

	member, err := uc.gateway.Member(ctx, chatID, issuer.ID)
	if err != nil {
		uc.logger.Warn().
			Int64("chat_id", chatID).
			Int64("user_id", issuer.ID).
			Err(err).
			Msg("Privilege check failed, treating as not privileged")
		return boterrors.ErrNotPrivileged.Wrap(err)
	}

	if !member.IsAdmin() {
		return boterrors.ErrNotPrivileged
	}
	return nil
}

// displayName resolves a human-readable name, falling back to the numeric id
func (uc *UseCase) displayName(ctx context.Context, id int64) string {
	profile, err := uc.gateway.Profile(ctx, id)
	if err != nil {
		uc.logger.Debug().Int64("user_id", id).Err(err).Msg("Profile lookup failed")
		return entities.Identity{ID: id}.Mention()
	}
	if profile.ID == 0 {
		profile.ID = id
	}
	return profile.Mention()
}
