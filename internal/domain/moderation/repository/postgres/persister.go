package postgres

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/Stam1n/telegram-bot/internal/domain/moderation/deps"
	"github.com/Stam1n/telegram-bot/internal/domain/moderation/entities"
)

const insertBatchSize = 500

type persister struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// NewPersister creates a persister storing the tracking document in SQL tables
func NewPersister(db *gorm.DB, logger zerolog.Logger) deps.Persister {
	return &persister{
		db:     db,
		logger: logger.With().Str("component", "sql_persister").Logger(),
	}
}

// Load rebuilds every chat record from the chat and membership tables
func (p *persister) Load(ctx context.Context) (map[int64]entities.ChatRecord, error) {
	var chats []entities.TrackedChat
	if err := p.db.WithContext(ctx).Find(&chats).Error; err != nil {
		return nil, fmt.Errorf("failed to load tracked chats: %w", err)
	}

	var rows []entities.TrackedIdentity
	if err := p.db.WithContext(ctx).
		Order("chat_id, identity_id").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load tracked identities: %w", err)
	}

	records := make(map[int64]entities.ChatRecord, len(chats))
	for _, c := range chats {
		records[c.ChatID] = entities.ChatRecord{}
	}

	for _, row := range rows {
		rec := records[row.ChatID]
		switch row.Set {
		case entities.SetAuto:
			rec.Bots = append(rec.Bots, row.IdentityID)
		case entities.SetManual:
			rec.ManualBots = append(rec.ManualBots, row.IdentityID)
		case entities.SetIgnored:
			rec.IgnoredBots = append(rec.IgnoredBots, row.IdentityID)
		default:
			p.logger.Warn().
				Int64("chat_id", row.ChatID).
				Str("set", row.Set).
				Msg("Skipping membership with unknown set")
			continue
		}
		records[row.ChatID] = rec
	}

	for chatID, rec := range records {
		records[chatID] = rec.Normalize()
	}

	return records, nil
}

// Save replaces the stored document in a single transaction
func (p *persister) Save(ctx context.Context, records map[int64]entities.ChatRecord) error {
	chats := make([]entities.TrackedChat, 0, len(records))
	var rows []entities.TrackedIdentity

	for chatID, rec := range records {
		chats = append(chats, entities.TrackedChat{ChatID: chatID})
		rows = appendMemberships(rows, chatID, entities.SetAuto, rec.Bots)
		rows = appendMemberships(rows, chatID, entities.SetManual, rec.ManualBots)
		rows = appendMemberships(rows, chatID, entities.SetIgnored, rec.IgnoredBots)
	}

	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&entities.TrackedIdentity{}).Error; err != nil {
			return fmt.Errorf("failed to clear tracked identities: %w", err)
		}
		if err := tx.Where("1 = 1").Delete(&entities.TrackedChat{}).Error; err != nil {
			return fmt.Errorf("failed to clear tracked chats: %w", err)
		}

		if len(chats) > 0 {
			if err := tx.CreateInBatches(chats, insertBatchSize).Error; err != nil {
				return fmt.Errorf("failed to save tracked chats: %w", err)
			}
		}
		if len(rows) > 0 {
			if err := tx.CreateInBatches(rows, insertBatchSize).Error; err != nil {
				return fmt.Errorf("failed to save tracked identities: %w", err)
			}
		}

		return nil
	})
}

func appendMemberships(rows []entities.TrackedIdentity, chatID int64, set string, ids []int64) []entities.TrackedIdentity {
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		rows = append(rows, entities.TrackedIdentity{ChatID: chatID, IdentityID: id, Set: set})
	}
	return rows
}
