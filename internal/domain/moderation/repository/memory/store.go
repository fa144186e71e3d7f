// Package memory holds the in-memory chat tracking store
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"

	"github.com/Stam1n/telegram-bot/internal/domain/moderation/deps"
	"github.com/Stam1n/telegram-bot/internal/domain/moderation/entities"
	boterrors "github.com/Stam1n/telegram-bot/internal/domain/moderation/errors"
	"github.com/Stam1n/telegram-bot/internal/infrastructure/metrics"
)

const defaultFlushTimeout = 10 * time.Second

type idSet map[int64]struct{}

func newIDSet(ids []int64) idSet {
	s := make(idSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s idSet) has(id int64) bool {
	_, ok := s[id]
	return ok
}

// add reports whether id was absent
func (s idSet) add(id int64) bool {
	if s.has(id) {
		return false
	}
	s[id] = struct{}{}
	return true
}

// remove reports whether id was present
func (s idSet) remove(id int64) bool {
	if !s.has(id) {
		return false
	}
	delete(s, id)
	return true
}

func (s idSet) sorted() []int64 {
	return slices.Sorted(maps.Keys(s))
}

// chatState is one chat's record; mu guards all three sets
type chatState struct {
	mu      sync.Mutex
	auto    idSet
	manual  idSet
	ignored idSet
}

func newChatState(r entities.ChatRecord) *chatState {
	return &chatState{
		auto:    newIDSet(r.Bots),
		manual:  newIDSet(r.ManualBots),
		ignored: newIDSet(r.IgnoredBots),
	}
}

// state derives the tracking state; ignored wins over manual, manual over auto
func (c *chatState) state(id int64) entities.TrackingState {
	switch {
	case c.ignored.has(id):
		return entities.StateIgnored
	case c.manual.has(id):
		return entities.StateManuallyTracked
	case c.auto.has(id):
		return entities.StateAutoTracked
	default:
		return entities.StateUntracked
	}
}

func (c *chatState) ignore(id int64) bool {
	changed := c.ignored.add(id)
	// non-short-circuit so both sets are cleaned
	changed = c.auto.remove(id) || changed
	changed = c.manual.remove(id) || changed
	return changed
}

func (c *chatState) record() entities.ChatRecord {
	return entities.ChatRecord{
		Bots:        c.auto.sorted(),
		ManualBots:  c.manual.sorted(),
		IgnoredBots: c.ignored.sorted(),
	}
}

// Store implements deps.TrackingStore. Mutations on one chat are serialised
// by that chat's mutex; every state change is flushed through the persister
// before the mutating call returns.
type Store struct {
	chats     *xsync.MapOf[int64, *chatState]
	persister deps.Persister
	metrics   *metrics.Metrics
	logger    zerolog.Logger

	saveMu       sync.Mutex
	flushTimeout time.Duration
	flushFailed  atomic.Bool
}

// NewStore creates an empty store; call Load to restore persisted state
func NewStore(persister deps.Persister, m *metrics.Metrics, logger zerolog.Logger) *Store {
	return &Store{
		chats:        xsync.NewMapOf[int64, *chatState](),
		persister:    persister,
		metrics:      m,
		logger:       logger.With().Str("component", "tracking_store").Logger(),
		flushTimeout: defaultFlushTimeout,
	}
}

// Load restores state from the persister. Any load error resets the store to
// empty; it is logged and never returned.
func (s *Store) Load(ctx context.Context) {
	records, err := s.persister.Load(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load tracking state, starting empty")
		records = nil
	}

	s.chats.Clear()
	for chatID, rec := range records {
		s.chats.Store(chatID, newChatState(rec))
	}
	s.metrics.UpdateTrackedChats(s.chats.Size())

	s.logger.Info().Int("chats", s.chats.Size()).Msg("Tracking state loaded")
}

// chat returns the chat's state, creating it if absent
func (s *Store) chat(chatID int64) (*chatState, bool) {
	c, loaded := s.chats.LoadOrCompute(chatID, func() *chatState {
		return newChatState(entities.ChatRecord{})
	})
	return c, !loaded
}

// mutate runs fn under the chat lock and flushes when anything changed
func (s *Store) mutate(chatID int64, fn func(c *chatState) bool) {
	c, created := s.chat(chatID)

	c.mu.Lock()
	changed := fn(c)
	c.mu.Unlock()

	if created {
		s.metrics.UpdateTrackedChats(s.chats.Size())
	}
	if created || changed {
		s.persist()
	}
}

// Ensure creates an empty record for chatID if absent
func (s *Store) Ensure(chatID int64) {
	s.mutate(chatID, func(*chatState) bool { return false })
}

// Observe ensures the record, records an automated sender on the loose path,
// and returns the sender's state, all under one chat lock.
func (s *Store) Observe(chatID int64, sender entities.Identity, automated bool) entities.TrackingState {
	var st entities.TrackingState
	s.mutate(chatID, func(c *chatState) bool {
		changed := false
		if automated {
			changed = c.auto.add(sender.ID)
		}
		st = c.state(sender.ID)
		return changed
	})
	return st
}

// RecordAutomated inserts into auto regardless of ignored. It is the
// first-sighting path: an ignored id may land in auto again, and the
// ignore still wins at query time.
func (s *Store) RecordAutomated(chatID, identityID int64) bool {
	var added bool
	s.mutate(chatID, func(c *chatState) bool {
		added = c.auto.add(identityID)
		return added
	})
	return added
}

// RecordAutomatedStrict inserts into auto unless identityID is ignored
func (s *Store) RecordAutomatedStrict(chatID, identityID int64) bool {
	var added bool
	s.mutate(chatID, func(c *chatState) bool {
		if c.ignored.has(identityID) {
			return false
		}
		added = c.auto.add(identityID)
		return added
	})
	return added
}

// AddManual inserts into manual and lifts a prior ignore
func (s *Store) AddManual(chatID, identityID int64) {
	s.mutate(chatID, func(c *chatState) bool {
		added := c.manual.add(identityID)
		unignored := c.ignored.remove(identityID)
		return added || unignored
	})
}

// Ignore inserts into ignored and drops the id from auto and manual
func (s *Store) Ignore(chatID, identityID int64) {
	s.mutate(chatID, func(c *chatState) bool {
		return c.ignore(identityID)
	})
}

// Remove ignores identityID, failing with ErrNotTracked when it is in
// neither auto nor manual.
func (s *Store) Remove(chatID, identityID int64) error {
	var err error
	s.mutate(chatID, func(c *chatState) bool {
		if !c.auto.has(identityID) && !c.manual.has(identityID) {
			err = boterrors.ErrNotTracked
			return false
		}
		return c.ignore(identityID)
	})
	return err
}

// ReplaceAuto swaps the auto set; manual and ignored are untouched
func (s *Store) ReplaceAuto(chatID int64, ids []int64) {
	s.mutate(chatID, func(c *chatState) bool {
		next := newIDSet(ids)
		if maps.Equal(next, c.auto) {
			return false
		}
		c.auto = next
		return true
	})
}

// EffectiveTracked returns (auto ∪ manual) − ignored, sorted
func (s *Store) EffectiveTracked(chatID int64) []int64 {
	c, ok := s.chats.Load(chatID)
	if !ok {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(idSet, len(c.auto)+len(c.manual))
	for id := range c.auto {
		out[id] = struct{}{}
	}
	for id := range c.manual {
		out[id] = struct{}{}
	}
	for id := range c.ignored {
		delete(out, id)
	}
	return out.sorted()
}

// IsIgnored reports whether identityID is in the chat's ignored set
func (s *Store) IsIgnored(chatID, identityID int64) bool {
	return s.State(chatID, identityID) == entities.StateIgnored
}

// State returns the derived tracking state
func (s *Store) State(chatID, identityID int64) entities.TrackingState {
	c, ok := s.chats.Load(chatID)
	if !ok {
		return entities.StateUntracked
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state(identityID)
}

// Record returns a copy of the chat's record
func (s *Store) Record(chatID int64) (entities.ChatRecord, bool) {
	c, ok := s.chats.Load(chatID)
	if !ok {
		return entities.ChatRecord{}, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.record(), true
}

// Summaries lists every chat ordered by chat id
func (s *Store) Summaries() []entities.ChatSummary {
	out := make([]entities.ChatSummary, 0, s.chats.Size())
	s.chats.Range(func(chatID int64, c *chatState) bool {
		c.mu.Lock()
		out = append(out, entities.ChatSummary{
			ChatID:  chatID,
			Tracked: len(c.auto) + len(c.manual),
			Ignored: len(c.ignored),
		})
		c.mu.Unlock()
		return true
	})

	slices.SortFunc(out, func(a, b entities.ChatSummary) int {
		switch {
		case a.ChatID < b.ChatID:
			return -1
		case a.ChatID > b.ChatID:
			return 1
		default:
			return 0
		}
	})
	return out
}

// snapshot copies every chat record
func (s *Store) snapshot() map[int64]entities.ChatRecord {
	out := make(map[int64]entities.ChatRecord, s.chats.Size())
	s.chats.Range(func(chatID int64, c *chatState) bool {
		c.mu.Lock()
		out[chatID] = c.record()
		c.mu.Unlock()
		return true
	})
	return out
}

// Flush writes the whole document. The snapshot is taken after acquiring
// saveMu, so the last completed flush always includes every finished mutation.
func (s *Store) Flush(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	start := time.Now()
	err := s.persister.Save(ctx, s.snapshot())
	s.metrics.RecordPersistence(time.Since(start).Seconds(), err)
	s.flushFailed.Store(err != nil)
	if err != nil {
		return boterrors.ErrPersistence.Wrap(err)
	}
	return nil
}

// HealthCheck reports whether the last flush succeeded
func (s *Store) HealthCheck(context.Context) bool {
	return !s.flushFailed.Load()
}

// persist flushes after a mutation; failures are logged, never returned
func (s *Store) persist() {
	ctx, cancel := context.WithTimeout(context.Background(), s.flushTimeout)
	defer cancel()

	if err := s.Flush(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Failed to persist tracking state")
	}
}

var _ deps.TrackingStore = (*Store)(nil)
