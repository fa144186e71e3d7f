// Package file persists tracking state as a single JSON document on disk
package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"

	"github.com/Stam1n/telegram-bot/internal/domain/moderation/deps"
	"github.com/Stam1n/telegram-bot/internal/domain/moderation/entities"
	boterrors "github.com/Stam1n/telegram-bot/internal/domain/moderation/errors"
)

// document is the on-disk layout, keyed by the decimal chat id
type document map[string]entities.ChatRecord

type persister struct {
	path   string
	logger zerolog.Logger
}

// NewPersister creates a persister writing to path
func NewPersister(path string, logger zerolog.Logger) deps.Persister {
	return &persister{
		path:   path,
		logger: logger.With().Str("component", "file_persister").Str("path", path).Logger(),
	}
}

// Load reads the document. A missing file is an empty state.
func (p *persister) Load(ctx context.Context) (map[int64]entities.ChatRecord, error) {
	data, err := os.ReadFile(p.path)
	if errors.Is(err, os.ErrNotExist) {
		p.logger.Info().Msg("State file not found, starting empty")
		return map[int64]entities.ChatRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var doc document
	if err := sonic.ConfigStd.Unmarshal(data, &doc); err != nil {
		return nil, boterrors.ErrMalformedState.Wrap(err)
	}

	records := make(map[int64]entities.ChatRecord, len(doc))
	for key, rec := range doc {
		chatID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, boterrors.ErrMalformedState.Wrap(fmt.Errorf("chat key %q: %w", key, err))
		}
		records[chatID] = rec.Normalize()
	}

	return records, nil
}

// Save rewrites the whole document through a temp file and rename
func (p *persister) Save(ctx context.Context, records map[int64]entities.ChatRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	doc := make(document, len(records))
	for chatID, rec := range records {
		doc[strconv.FormatInt(chatID, 10)] = rec.Normalize()
	}

	data, err := sonic.ConfigStd.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	dir := filepath.Dir(p.path)
	temp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(data); err != nil {
		temp.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := temp.Sync(); err != nil {
		temp.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := temp.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tempPath, p.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace state file: %w", err)
	}

	p.logger.Debug().Int("chats", len(doc)).Msg("State saved")
	return nil
}
