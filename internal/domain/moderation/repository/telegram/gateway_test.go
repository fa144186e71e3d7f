package telegram

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Stam1n/telegram-bot/internal/domain/moderation/entities"
	boterrors "github.com/Stam1n/telegram-bot/internal/domain/moderation/errors"
)

// newTestGateway points a real bot client at a fake Bot API server that
// answers each method with the given JSON body.
func newTestGateway(t *testing.T, responses map[string]string) (*Gateway, *int32) {
	t.Helper()

	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		body, ok := responses[method]
		if !ok {
			body = `{"ok":false,"error_code":400,"description":"Bad Request: unexpected method"}`
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	bot, err := tgbot.New("123:test", tgbot.WithServerURL(server.URL), tgbot.WithSkipGetMe())
	require.NoError(t, err)

	return NewGateway(bot, 5*time.Second, zerolog.Nop()), &calls
}

func TestGateway_SelfIsCached(t *testing.T) {
	g, calls := newTestGateway(t, map[string]string{
		"getMe": `{"ok":true,"result":{"id":42,"is_bot":true,"first_name":"Guard","username":"guard_bot"}}`,
	})

	self, err := g.Self(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), self.ID)
	assert.Equal(t, "guard_bot", self.Username)
	assert.True(t, self.IsBot)

	_, err = g.Self(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestGateway_Member(t *testing.T) {
	g, _ := newTestGateway(t, map[string]string{
		"getChatMember": `{"ok":true,"result":{"status":"administrator","user":{"id":42,"is_bot":true,"first_name":"Guard"},"can_delete_messages":true}}`,
	})

	member, err := g.Member(context.Background(), -100, 42)

	require.NoError(t, err)
	assert.Equal(t, entities.RoleAdministrator, member.Role)
	assert.True(t, member.CanModerate())
	assert.Equal(t, int64(42), member.Identity.ID)
}

func TestGateway_MemberForbidden(t *testing.T) {
	g, _ := newTestGateway(t, map[string]string{
		"getChatMember": `{"ok":false,"error_code":403,"description":"Forbidden: bot was kicked from the supergroup chat"}`,
	})

	_, err := g.Member(context.Background(), -100, 42)

	require.Error(t, err)
	assert.ErrorIs(t, err, boterrors.ErrForbidden)
}

func TestGateway_DeleteNotFound(t *testing.T) {
	g, _ := newTestGateway(t, map[string]string{
		"deleteMessage": `{"ok":false,"error_code":400,"description":"Bad Request: message to delete not found"}`,
	})

	err := g.DeleteMessage(context.Background(), -100, 7)

	require.Error(t, err)
	assert.ErrorIs(t, err, boterrors.ErrMessageNotFound)
}

func TestGateway_SendText(t *testing.T) {
	g, _ := newTestGateway(t, map[string]string{
		"sendMessage": `{"ok":true,"result":{"message_id":99,"date":0,"chat":{"id":-100,"type":"supergroup"}}}`,
	})

	kb := (&entities.Keyboard{}).AddRow(entities.Button{Text: "x", Data: "admin_stats"})
	id, err := g.SendText(context.Background(), -100, "hello", kb)

	require.NoError(t, err)
	assert.Equal(t, 99, id)

	_, err = g.SendText(context.Background(), -100, "", nil)
	assert.Error(t, err)
}

func TestGateway_ResolveHandle(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		g, _ := newTestGateway(t, map[string]string{
			"getChat": `{"ok":true,"result":{"id":-1001,"type":"channel","title":"Deals","username":"deals_bot"}}`,
		})

		identity, err := g.ResolveHandle(context.Background(), "@deals_bot")
		require.NoError(t, err)
		assert.Equal(t, int64(-1001), identity.ID)
		assert.Equal(t, "Deals", identity.DisplayName)
	})

	t.Run("unknown", func(t *testing.T) {
		g, _ := newTestGateway(t, map[string]string{
			"getChat": `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`,
		})

		_, err := g.ResolveHandle(context.Background(), "ghost_bot")
		assert.ErrorIs(t, err, boterrors.ErrHandleNotFound)
	})

	t.Run("empty", func(t *testing.T) {
		g, _ := newTestGateway(t, nil)

		_, err := g.ResolveHandle(context.Background(), "@")
		assert.ErrorIs(t, err, boterrors.ErrInvalidArgument)
	})
}

func TestGateway_MapError(t *testing.T) {
	g := &Gateway{logger: zerolog.Nop()}

	tests := []struct {
		name string
		in   string
		want error
	}{
		{name: "forbidden", in: "forbidden, Forbidden: bot is not a member", want: boterrors.ErrForbidden},
		{name: "rights", in: "bad request, Bad Request: not enough rights to delete a message", want: boterrors.ErrForbidden},
		{name: "not found", in: "bad request, Bad Request: message to delete not found", want: boterrors.ErrMessageNotFound},
		{name: "cannot delete", in: "bad request, Bad Request: message can't be deleted", want: boterrors.ErrMessageNotFound},
		{name: "other", in: "too many requests", want: boterrors.ErrTelegramAPI},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.mapError("deleteMessage", errors.New(tt.in))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestToMember_UnknownStatus(t *testing.T) {
	assert.Equal(t, entities.RoleOther, toMember(&models.ChatMember{Type: models.ChatMemberTypeLeft}).Role)
	assert.Equal(t, entities.RoleOwner, toMember(&models.ChatMember{Type: models.ChatMemberTypeOwner}).Role)
}

func TestToMarkup(t *testing.T) {
	kb := (&entities.Keyboard{}).
		AddRow(entities.Button{Text: "a", Data: "1"}, entities.Button{Text: "b", Data: "2"}).
		AddRow(entities.Button{Text: "c", Data: "3"})

	markup := toMarkup(kb)

	require.Len(t, markup.InlineKeyboard, 2)
	assert.Len(t, markup.InlineKeyboard[0], 2)
	assert.Equal(t, "3", markup.InlineKeyboard[1][0].CallbackData)
}

func TestTruncate(t *testing.T) {
	short := "привет"
	assert.Equal(t, short, truncate(short))

	long := strings.Repeat("я", MaxMessageLength)
	got := truncate(long)
	assert.LessOrEqual(t, len(got), MaxMessageLength)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.True(t, strings.HasPrefix(got, "я"))
}
