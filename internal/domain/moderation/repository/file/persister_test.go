package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Stam1n/telegram-bot/internal/domain/moderation/entities"
	boterrors "github.com/Stam1n/telegram-bot/internal/domain/moderation/errors"
)

func TestPersister_LoadMissingFile(t *testing.T) {
	p := NewPersister(filepath.Join(t.TempDir(), "bot_data.json"), zerolog.Nop())

	records, err := p.Load(context.Background())

	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestPersister_LoadMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "not json", content: "{bots:"},
		{name: "bad chat key", content: `{"abc": {"bots": [1]}}`},
		{name: "wrong type", content: `{"1": {"bots": "x"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bot_data.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			_, err := NewPersister(path, zerolog.Nop()).Load(context.Background())

			require.Error(t, err)
			assert.ErrorIs(t, err, boterrors.ErrMalformedState)
		})
	}
}

func TestPersister_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot_data.json")
	p := NewPersister(path, zerolog.Nop())

	in := map[int64]entities.ChatRecord{
		-100500: {Bots: []int64{3, 1, 3}, ManualBots: []int64{7}},
		42:      {IgnoredBots: []int64{-1001}},
	}
	require.NoError(t, p.Save(context.Background(), in))

	out, err := p.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, []int64{1, 3}, out[-100500].Bots)
	assert.Equal(t, []int64{7}, out[-100500].ManualBots)
	assert.Equal(t, []int64{}, out[-100500].IgnoredBots)
	assert.Equal(t, []int64{-1001}, out[42].IgnoredBots)
}

func TestPersister_DocumentLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot_data.json")
	p := NewPersister(path, zerolog.Nop())

	require.NoError(t, p.Save(context.Background(), map[int64]entities.ChatRecord{
		-1: {Bots: []int64{5}},
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw map[string]map[string][]int64
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, map[string]map[string][]int64{
		"-1": {"bots": {5}, "manual_bots": {}, "ignored_bots": {}},
	}, raw)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestPersister_SaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot_data.json")
	p := NewPersister(path, zerolog.Nop())

	require.NoError(t, p.Save(context.Background(), map[int64]entities.ChatRecord{1: {Bots: []int64{1}}}))
	require.NoError(t, p.Save(context.Background(), map[int64]entities.ChatRecord{2: {Bots: []int64{2}}}))

	out, err := p.Load(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, out, int64(1))
	assert.Contains(t, out, int64(2))
}

func TestPersister_SaveCancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot_data.json")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewPersister(path, zerolog.Nop()).Save(ctx, map[int64]entities.ChatRecord{})

	assert.ErrorIs(t, err, context.Canceled)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}
