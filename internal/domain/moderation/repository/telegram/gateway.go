// Package telegram implements the chat gateway over the Telegram Bot API
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/Stam1n/telegram-bot/internal/domain/moderation/deps"
	"github.com/Stam1n/telegram-bot/internal/domain/moderation/entities"
	boterrors "github.com/Stam1n/telegram-bot/internal/domain/moderation/errors"
)

// MaxMessageLength is the Bot API limit for a single text message
const MaxMessageLength = 4096

// Gateway implements deps.ChatGateway with a go-telegram bot
type Gateway struct {
	bot     *tgbot.Bot
	timeout time.Duration
	logger  zerolog.Logger

	selfMu sync.Mutex
	self   *entities.Identity
}

// NewGateway creates a gateway; timeout bounds every API call
func NewGateway(bot *tgbot.Bot, timeout time.Duration, logger zerolog.Logger) *Gateway {
	return &Gateway{
		bot:     bot,
		timeout: timeout,
		logger:  logger.With().Str("component", "telegram_gateway").Logger(),
	}
}

// Self returns the bot's own identity, fetched once and cached
func (g *Gateway) Self(ctx context.Context) (entities.Identity, error) {
	g.selfMu.Lock()
	defer g.selfMu.Unlock()

	if g.self != nil {
		return *g.self, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	me, err := g.bot.GetMe(callCtx)
	if err != nil {
		return entities.Identity{}, g.mapError("getMe", err)
	}

	self := userIdentity(me.ID, me.Username, me.FirstName, me.LastName, me.IsBot)
	g.self = &self
	return self, nil
}

// HealthCheck reports whether the Bot API answered getMe at least once
func (g *Gateway) HealthCheck(ctx context.Context) bool {
	_, err := g.Self(ctx)
	return err == nil
}

// Member fetches userID's live standing in chatID
func (g *Gateway) Member(ctx context.Context, chatID, userID int64) (entities.Member, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	cm, err := g.bot.GetChatMember(callCtx, &tgbot.GetChatMemberParams{
		ChatID: chatID,
		UserID: userID,
	})
	if err != nil {
		return entities.Member{}, g.mapError("getChatMember", err)
	}

	member := toMember(cm)
	if member.Identity.ID == 0 {
		member.Identity.ID = userID
	}
	return member, nil
}

// Administrators lists the chat's current administrators, owner included
func (g *Gateway) Administrators(ctx context.Context, chatID int64) ([]entities.Member, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	admins, err := g.bot.GetChatAdministrators(callCtx, &tgbot.GetChatAdministratorsParams{
		ChatID: chatID,
	})
	if err != nil {
		return nil, g.mapError("getChatAdministrators", err)
	}

	members := make([]entities.Member, 0, len(admins))
	for i := range admins {
		members = append(members, toMember(&admins[i]))
	}
	return members, nil
}

// Profile looks up handle and display name for an identity
func (g *Gateway) Profile(ctx context.Context, id int64) (entities.Identity, error) {
	return g.getChat(ctx, id)
}

// ResolveHandle looks up a public chat or user by @handle
func (g *Gateway) ResolveHandle(ctx context.Context, handle string) (entities.Identity, error) {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	if handle == "" {
		return entities.Identity{}, boterrors.ErrInvalidArgument
	}

	identity, err := g.getChat(ctx, "@"+handle)
	if err != nil {
		if errors.Is(err, boterrors.ErrMessageNotFound) || errors.Is(err, boterrors.ErrTelegramAPI) {
			return entities.Identity{}, boterrors.ErrHandleNotFound.Wrap(err)
		}
		return entities.Identity{}, err
	}
	return identity, nil
}

func (g *Gateway) getChat(ctx context.Context, chatID any) (entities.Identity, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	chat, err := g.bot.GetChat(callCtx, &tgbot.GetChatParams{ChatID: chatID})
	if err != nil {
		return entities.Identity{}, g.mapError("getChat", err)
	}

	identity := entities.Identity{
		ID:       chat.ID,
		Username: chat.Username,
	}
	switch {
	case chat.Title != "":
		identity.DisplayName = chat.Title
	default:
		identity.DisplayName = strings.TrimSpace(chat.FirstName + " " + chat.LastName)
	}
	return identity, nil
}

// SendText posts text with an optional inline keyboard
func (g *Gateway) SendText(ctx context.Context, chatID int64, text string, keyboard *entities.Keyboard) (int, error) {
	if text == "" {
		return 0, fmt.Errorf("message text cannot be empty")
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	params := &tgbot.SendMessageParams{
		ChatID: chatID,
		Text:   truncate(text),
	}
	if keyboard != nil {
		params.ReplyMarkup = toMarkup(keyboard)
	}

	msg, err := g.bot.SendMessage(callCtx, params)
	if err != nil {
		return 0, g.mapError("sendMessage", err)
	}

	g.logger.Debug().Int64("chat_id", chatID).Int("message_id", msg.ID).Msg("Message sent")
	return msg.ID, nil
}

// EditText replaces a message's text and keyboard
func (g *Gateway) EditText(ctx context.Context, chatID int64, messageID int, text string, keyboard *entities.Keyboard) error {
	if text == "" {
		return fmt.Errorf("message text cannot be empty")
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	params := &tgbot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      truncate(text),
	}
	if keyboard != nil {
		params.ReplyMarkup = toMarkup(keyboard)
	}

	if _, err := g.bot.EditMessageText(callCtx, params); err != nil {
		return g.mapError("editMessageText", err)
	}
	return nil
}

// DeleteMessage removes a message from a chat
func (g *Gateway) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	_, err := g.bot.DeleteMessage(callCtx, &tgbot.DeleteMessageParams{
		ChatID:    chatID,
		MessageID: messageID,
	})
	if err != nil {
		return g.mapError("deleteMessage", err)
	}

	g.logger.Debug().Int64("chat_id", chatID).Int("message_id", messageID).Msg("Message deleted")
	return nil
}

// AnswerCallback acknowledges a button press, optionally with a toast
func (g *Gateway) AnswerCallback(ctx context.Context, callbackID, text string) error {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	_, err := g.bot.AnswerCallbackQuery(callCtx, &tgbot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
	})
	if err != nil {
		return g.mapError("answerCallbackQuery", err)
	}
	return nil
}

// mapError classifies a Bot API failure into the domain taxonomy
func (g *Gateway) mapError(method string, err error) error {
	errorMsg := err.Error()

	switch {
	case strings.Contains(errorMsg, "Forbidden"),
		strings.Contains(errorMsg, "forbidden"),
		strings.Contains(errorMsg, "not enough rights"),
		strings.Contains(errorMsg, "CHAT_ADMIN_REQUIRED"):
		g.logger.Debug().Str("method", method).Err(err).Msg("Telegram refused the request")
		return boterrors.ErrForbidden.Wrap(err)

	case strings.Contains(errorMsg, "not found"),
		strings.Contains(errorMsg, "Not Found"),
		strings.Contains(errorMsg, "can't be deleted"):
		g.logger.Debug().Str("method", method).Err(err).Msg("Telegram target not found")
		return boterrors.ErrMessageNotFound.Wrap(err)

	default:
		g.logger.Debug().Str("method", method).Err(err).Msg("Telegram API call failed")
		return boterrors.ErrTelegramAPI.Wrap(fmt.Errorf("%s: %w", method, err))
	}
}

func toMember(cm *models.ChatMember) entities.Member {
	switch cm.Type {
	case models.ChatMemberTypeOwner:
		if cm.Owner == nil {
			return entities.Member{Role: entities.RoleOwner}
		}
		u := cm.Owner.User
		return entities.Member{
			Identity: userIdentity(u.ID, u.Username, u.FirstName, u.LastName, u.IsBot),
			Role:     entities.RoleOwner,
		}

	case models.ChatMemberTypeAdministrator:
		if cm.Administrator == nil {
			return entities.Member{Role: entities.RoleAdministrator}
		}
		u := cm.Administrator.User
		return entities.Member{
			Identity:          userIdentity(u.ID, u.Username, u.FirstName, u.LastName, u.IsBot),
			Role:              entities.RoleAdministrator,
			CanDeleteMessages: cm.Administrator.CanDeleteMessages,
		}

	case models.ChatMemberTypeMember:
		if cm.Member == nil {
			return entities.Member{Role: entities.RoleMember}
		}
		u := cm.Member.User
		return entities.Member{
			Identity: userIdentity(u.ID, u.Username, u.FirstName, u.LastName, u.IsBot),
			Role:     entities.RoleMember,
		}

	default:
		return entities.Member{Role: entities.RoleOther}
	}
}

func userIdentity(id int64, username, firstName, lastName string, isBot bool) entities.Identity {
	return entities.Identity{
		ID:          id,
		Username:    username,
		DisplayName: strings.TrimSpace(firstName + " " + lastName),
		IsBot:       isBot,
	}
}

func toMarkup(k *entities.Keyboard) *models.InlineKeyboardMarkup {
	rows := make([][]models.InlineKeyboardButton, 0, len(k.Rows))
	for _, row := range k.Rows {
		buttons := make([]models.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, models.InlineKeyboardButton{
				Text:         b.Text,
				CallbackData: b.Data,
			})
		}
		rows = append(rows, buttons)
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func truncate(text string) string {
	if len(text) <= MaxMessageLength {
		return text
	}
	cut := MaxMessageLength - 3
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}

var _ deps.ChatGateway = (*Gateway)(nil)
