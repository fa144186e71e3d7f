package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Stam1n/telegram-bot/internal/domain/moderation/entities"
	boterrors "github.com/Stam1n/telegram-bot/internal/domain/moderation/errors"
	"github.com/Stam1n/telegram-bot/internal/infrastructure/metrics"
)

type fakePersister struct {
	mu      sync.Mutex
	loaded  map[int64]entities.ChatRecord
	loadErr error
	saveErr error
	saves   int
	last    map[int64]entities.ChatRecord
}

func (p *fakePersister) Load(context.Context) (map[int64]entities.ChatRecord, error) {
	return p.loaded, p.loadErr
}

func (p *fakePersister) Save(_ context.Context, records map[int64]entities.ChatRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saves++
	p.last = records
	return p.saveErr
}

func (p *fakePersister) saveCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.saves
}

func newTestStore(t *testing.T) (*Store, *fakePersister, *metrics.Metrics) {
	t.Helper()
	p := &fakePersister{}
	m := metrics.NewMetrics(prometheus.NewRegistry())
	return NewStore(p, m, zerolog.Nop()), p, m
}

const chat int64 = -100123

func TestStore_EnsureIsIdempotent(t *testing.T) {
	s, p, _ := newTestStore(t)

	s.Ensure(chat)
	s.Ensure(chat)

	rec, ok := s.Record(chat)
	require.True(t, ok)
	assert.Empty(t, rec.Bots)
	assert.Empty(t, rec.ManualBots)
	assert.Empty(t, rec.IgnoredBots)
	assert.Equal(t, 1, p.saveCount(), "only record creation is a change")
}

func TestStore_RecordAutomatedIsIdempotent(t *testing.T) {
	s, p, _ := newTestStore(t)

	assert.True(t, s.RecordAutomated(chat, 7))
	assert.False(t, s.RecordAutomated(chat, 7))

	rec, _ := s.Record(chat)
	assert.Equal(t, []int64{7}, rec.Bots)
	assert.Equal(t, 1, p.saveCount())
}

func TestStore_StatePrecedence(t *testing.T) {
	s, _, _ := newTestStore(t)

	assert.Equal(t, entities.StateUntracked, s.State(chat, 1))

	s.RecordAutomated(chat, 1)
	assert.Equal(t, entities.StateAutoTracked, s.State(chat, 1))

	s.AddManual(chat, 1)
	assert.Equal(t, entities.StateManuallyTracked, s.State(chat, 1))

	s.Ignore(chat, 1)
	assert.Equal(t, entities.StateIgnored, s.State(chat, 1))
	assert.True(t, s.IsIgnored(chat, 1))
}

func TestStore_IgnoreStrictPath(t *testing.T) {
	s, _, _ := newTestStore(t)

	s.RecordAutomated(chat, 5)
	s.AddManual(chat, 5)
	s.Ignore(chat, 5)

	rec, _ := s.Record(chat)
	assert.Empty(t, rec.Bots)
	assert.Empty(t, rec.ManualBots)
	assert.Equal(t, []int64{5}, rec.IgnoredBots)

	assert.False(t, s.RecordAutomatedStrict(chat, 5))
	assert.NotContains(t, s.EffectiveTracked(chat), int64(5))

	rec, _ = s.Record(chat)
	assert.Empty(t, rec.Bots)
}

func TestStore_LoosePathStillHonoursIgnore(t *testing.T) {
	s, _, _ := newTestStore(t)

	s.Ignore(chat, 5)
	assert.True(t, s.RecordAutomated(chat, 5))

	rec, _ := s.Record(chat)
	assert.Equal(t, []int64{5}, rec.Bots)
	assert.Equal(t, entities.StateIgnored, s.State(chat, 5))
	assert.Empty(t, s.EffectiveTracked(chat))
}

func TestStore_AddManualLiftsIgnore(t *testing.T) {
	s, _, _ := newTestStore(t)

	s.Ignore(chat, 9)
	s.AddManual(chat, 9)

	assert.False(t, s.IsIgnored(chat, 9))
	assert.Equal(t, []int64{9}, s.EffectiveTracked(chat))
}

func TestStore_Remove(t *testing.T) {
	s, _, _ := newTestStore(t)

	err := s.Remove(chat, 42)
	require.Error(t, err)
	assert.ErrorIs(t, err, boterrors.ErrNotTracked)
	assert.False(t, s.IsIgnored(chat, 42))

	s.AddManual(chat, 42)
	require.NoError(t, s.Remove(chat, 42))
	assert.True(t, s.IsIgnored(chat, 42))

	// already ignored means tracked in neither set
	assert.ErrorIs(t, s.Remove(chat, 42), boterrors.ErrNotTracked)
}

func TestStore_ReplaceAuto(t *testing.T) {
	s, p, _ := newTestStore(t)

	s.RecordAutomated(chat, 1)
	s.RecordAutomated(chat, 2)
	s.AddManual(chat, 3)
	s.Ignore(chat, 4)

	s.ReplaceAuto(chat, []int64{2, 5})

	rec, _ := s.Record(chat)
	assert.Equal(t, []int64{2, 5}, rec.Bots)
	assert.Equal(t, []int64{3}, rec.ManualBots)
	assert.Equal(t, []int64{4}, rec.IgnoredBots)

	saves := p.saveCount()
	s.ReplaceAuto(chat, []int64{5, 2})
	assert.Equal(t, saves, p.saveCount(), "unchanged set does not flush")
}

func TestStore_EffectiveTrackedIdentity(t *testing.T) {
	s, _, _ := newTestStore(t)

	ops := []func(){
		func() { s.RecordAutomated(chat, 1) },
		func() { s.AddManual(chat, 2) },
		func() { s.RecordAutomated(chat, 3) },
		func() { s.Ignore(chat, 1) },
		func() { s.RecordAutomated(chat, 1) },
		func() { _ = s.Remove(chat, 3) },
		func() { s.ReplaceAuto(chat, []int64{1, 3, 6}) },
		func() { s.AddManual(chat, 3) },
	}

	for i, op := range ops {
		op()

		rec, _ := s.Record(chat)
		want := map[int64]struct{}{}
		for _, id := range rec.Bots {
			want[id] = struct{}{}
		}
		for _, id := range rec.ManualBots {
			want[id] = struct{}{}
		}
		for _, id := range rec.IgnoredBots {
			delete(want, id)
		}

		got := s.EffectiveTracked(chat)
		assert.Len(t, got, len(want), "step %d", i)
		for _, id := range got {
			assert.Contains(t, want, id, "step %d", i)
		}
	}

	assert.Equal(t, []int64{2, 3, 6}, s.EffectiveTracked(chat))
}

func TestStore_Observe(t *testing.T) {
	s, _, _ := newTestStore(t)
	sender := entities.Identity{ID: 77, Username: "PromoBot"}

	assert.Equal(t, entities.StateAutoTracked, s.Observe(chat, sender, true))

	human := entities.Identity{ID: 78, Username: "alice"}
	assert.Equal(t, entities.StateUntracked, s.Observe(chat, human, false))

	s.Ignore(chat, 77)
	assert.Equal(t, entities.StateIgnored, s.Observe(chat, sender, true))

	rec, _ := s.Record(chat)
	assert.Equal(t, []int64{77}, rec.Bots, "loose path re-records the ignored sender")
}

func TestStore_Summaries(t *testing.T) {
	s, _, m := newTestStore(t)

	s.RecordAutomated(20, 1)
	s.AddManual(20, 1)
	s.Ignore(10, 3)
	s.Ensure(30)

	got := s.Summaries()
	require.Len(t, got, 3)
	assert.Equal(t, entities.ChatSummary{ChatID: 10, Tracked: 0, Ignored: 1}, got[0])
	assert.Equal(t, entities.ChatSummary{ChatID: 20, Tracked: 2, Ignored: 0}, got[1])
	assert.Equal(t, entities.ChatSummary{ChatID: 30}, got[2])
	assert.Equal(t, 3.0, testutil.ToFloat64(m.TrackedChats))
}

func TestStore_FlushFailureKeepsState(t *testing.T) {
	s, p, m := newTestStore(t)
	p.saveErr = errors.New("disk full")

	s.AddManual(chat, 11)

	assert.Equal(t, []int64{11}, s.EffectiveTracked(chat))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PersistenceErrors))

	err := s.Flush(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boterrors.ErrPersistence)
	assert.False(t, s.HealthCheck(context.Background()))

	p.mu.Lock()
	p.saveErr = nil
	p.mu.Unlock()
	require.NoError(t, s.Flush(context.Background()))
	assert.True(t, s.HealthCheck(context.Background()))
}

func TestStore_FlushWritesWholeDocument(t *testing.T) {
	s, p, _ := newTestStore(t)

	s.RecordAutomated(1, 10)
	s.AddManual(2, 20)

	require.NoError(t, s.Flush(context.Background()))
	require.Len(t, p.last, 2)
	assert.Equal(t, []int64{10}, p.last[1].Bots)
	assert.Equal(t, []int64{20}, p.last[2].ManualBots)
}

func TestStore_Load(t *testing.T) {
	t.Run("restores records", func(t *testing.T) {
		s, p, _ := newTestStore(t)
		p.loaded = map[int64]entities.ChatRecord{
			chat: {Bots: []int64{1}, ManualBots: []int64{2}, IgnoredBots: []int64{1}},
		}

		s.Load(context.Background())

		assert.Equal(t, []int64{2}, s.EffectiveTracked(chat))
		assert.True(t, s.IsIgnored(chat, 1))
	})

	t.Run("error resets to empty", func(t *testing.T) {
		s, p, _ := newTestStore(t)
		s.AddManual(chat, 3)
		p.loadErr = errors.New("corrupt")

		s.Load(context.Background())

		assert.Empty(t, s.Summaries())
	})
}

func TestStore_ConcurrentMutations(t *testing.T) {
	s, _, _ := newTestStore(t)

	var wg sync.WaitGroup
	for c := int64(1); c <= 4; c++ {
		for id := int64(1); id <= 25; id++ {
			wg.Add(1)
			go func(c, id int64) {
				defer wg.Done()
				s.RecordAutomated(c, id)
				if id%5 == 0 {
					s.Ignore(c, id)
				}
			}(c, id)
		}
	}
	wg.Wait()

	for c := int64(1); c <= 4; c++ {
		got := s.EffectiveTracked(c)
		assert.Len(t, got, 20, fmt.Sprintf("chat %d", c))
	}
}
