// Package telegram contains Telegram delivery handlers
package telegram

import (
	"context"
	"errors"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/Stam1n/telegram-bot/internal/domain/moderation/consts"
	"github.com/Stam1n/telegram-bot/internal/domain/moderation/deps"
	"github.com/Stam1n/telegram-bot/internal/domain/moderation/dto"
	boterrors "github.com/Stam1n/telegram-bot/internal/domain/moderation/errors"
	"github.com/Stam1n/telegram-bot/internal/domain/moderation/usecase/business"
	"github.com/Stam1n/telegram-bot/internal/infrastructure/metrics"
	pkgerrors "github.com/Stam1n/telegram-bot/pkg/errors"
)

// User-facing error texts
const (
	textNoAccess      = "❌ У вас нет прав для использования этой команды."
	textAdminsOnly    = "❌ Только администраторы чата могут управлять списком ботов."
	textNotBot        = "❌ Это не бот."
	textUnknownAction = "❌ Неизвестное действие."
	textCommandFailed = "❌ Произошла ошибка при обработке команды"
)

// Command results for metrics
const (
	resultOK     = "ok"
	resultDenied = "denied"
	resultError  = "error"
)

// commandFunc is a use case entry point for one chat command
type commandFunc func(ctx context.Context, req *dto.CommandRequest) (*dto.CommandResponse, error)

// Handlers contains Telegram update handlers
type Handlers struct {
	uc      *business.UseCase
	gateway deps.ChatGateway
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewHandlers creates new Telegram handlers
func NewHandlers(uc *business.UseCase, gateway deps.ChatGateway, m *metrics.Metrics, logger zerolog.Logger) *Handlers {
	return &Handlers{
		uc:      uc,
		gateway: gateway,
		metrics: m,
		logger:  logger,
	}
}

// HandleStart handles /start command
func (h *Handlers) HandleStart(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	h.runCommand(ctx, update, h.uc.HandleStart)
}

// HandleHelp handles /help command
func (h *Handlers) HandleHelp(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	h.runCommand(ctx, update, func(ctx context.Context, _ *dto.CommandRequest) (*dto.CommandResponse, error) {
		return h.uc.HandleHelp(ctx)
	})
}

// HandleAdmin handles /admin command
func (h *Handlers) HandleAdmin(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	h.runCommand(ctx, update, h.uc.HandleAdmin)
}

// HandleStats handles /stats command
func (h *Handlers) HandleStats(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	h.runCommand(ctx, update, h.uc.HandleStats)
}

// HandleBotList handles /botlist command
func (h *Handlers) HandleBotList(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	h.runCommand(ctx, update, h.uc.HandleBotList)
}

// HandleAddBot handles /addbot command
func (h *Handlers) HandleAddBot(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	h.runCommand(ctx, update, h.uc.HandleAddBots)
}

// HandleRemoveBot handles /removebot command
func (h *Handlers) HandleRemoveBot(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	h.runCommand(ctx, update, h.uc.HandleRemoveBots)
}

// HandleRescan handles /rescan command
func (h *Handlers) HandleRescan(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	h.runCommand(ctx, update, h.uc.HandleRescan)
}

// runCommand parses the command message, runs fn and replies in the same chat.
// Command messages go through moderation first; a deleted one is not executed.
func (h *Handlers) runCommand(ctx context.Context, update *models.Update, fn commandFunc) {
	msg := update.Message
	if msg == nil {
		return
	}

	cmd, ok := parseCommand(msg.Text)
	if !ok {
		return
	}
	if h.moderate(ctx, msg).Outcome == dto.OutcomeDeleted {
		return
	}
	if cmd.Addressee != "" {
		self, err := h.gateway.Self(ctx)
		if err != nil || !cmd.addressedTo(self.Username) {
			return
		}
	}

	req := commandRequest(msg, cmd)
	h.logCommand(req.Issuer.ID, cmd.Name, "processing")

	resp, err := fn(ctx, req)
	if err != nil {
		h.logError(req.Issuer.ID, cmd.Name, err)
		h.metrics.RecordCommand(cmd.Name, commandResult(err))
		h.sendResponse(ctx, req.ChatID, &dto.CommandResponse{Text: userFacingError(err)})
		return
	}

	h.sendResponse(ctx, req.ChatID, resp)
	h.metrics.RecordCommand(cmd.Name, resultOK)
	h.logCommand(req.Issuer.ID, cmd.Name, "success")
}

// HandleCallback handles inline button presses. The press is always
// acknowledged; on success the message carrying the buttons is replaced.
func (h *Handlers) HandleCallback(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	q := update.CallbackQuery
	if q == nil {
		return
	}

	req, ok := callbackRequest(q)
	if !ok {
		h.answerCallback(ctx, q.ID, textUnknownAction)
		return
	}

	resp, err := h.uc.HandleCallback(ctx, req)
	if err != nil {
		h.logError(req.Issuer.ID, "callback", err)
		h.metrics.RecordCommand("callback", commandResult(err))
		h.answerCallback(ctx, req.CallbackID, userFacingError(err))
		return
	}

	h.answerCallback(ctx, req.CallbackID, "")
	if err := h.gateway.EditText(ctx, req.ChatID, req.MessageID, resp.Text, resp.Keyboard); err != nil {
		h.logger.Error().
			Int64("chat_id", req.ChatID).
			Int("message_id", req.MessageID).
			Err(err).
			Msg("Failed to update callback message")
	}
	h.metrics.RecordCommand("callback", resultOK)
}

// HandleMessage handles every message that is not a command: service
// messages about new members and chat traffic for moderation.
func (h *Handlers) HandleMessage(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil {
		return
	}

	if len(msg.NewChatMembers) > 0 {
		if resp := h.uc.HandleMembersJoined(ctx, membersJoined(msg)); resp != nil {
			h.sendResponse(ctx, msg.Chat.ID, resp)
		}
		return
	}

	h.moderate(ctx, msg)
}

func (h *Handlers) moderate(ctx context.Context, msg *models.Message) *dto.ModerationResult {
	result := h.uc.HandleMessage(ctx, inboundMessage(msg))
	h.logger.Debug().
		Int64("chat_id", msg.Chat.ID).
		Int("message_id", msg.ID).
		Str("outcome", string(result.Outcome)).
		Int("score", result.Score).
		Msg("Message processed")
	return result
}

func (h *Handlers) sendResponse(ctx context.Context, chatID int64, resp *dto.CommandResponse) {
	if _, err := h.gateway.SendText(ctx, chatID, resp.Text, resp.Keyboard); err != nil {
		h.logger.Error().Int64("chat_id", chatID).Err(err).Msg("Failed to send Telegram response")
	}
}

func (h *Handlers) answerCallback(ctx context.Context, callbackID, text string) {
	if err := h.gateway.AnswerCallback(ctx, callbackID, text); err != nil {
		h.logger.Warn().Str("callback_id", callbackID).Err(err).Msg("Failed to answer callback")
	}
}

// logCommand logs command processing
func (h *Handlers) logCommand(userID int64, command, result string) {
	h.logger.Info().Int64("user_id", userID).Str("command", command).Str("result", result).Msg("Telegram command processed")
}

// logError logs command errors
func (h *Handlers) logError(userID int64, command string, err error) {
	if pkgerrors.IsPermissionError(err) {
		h.logger.Info().Int64("user_id", userID).Str("command", command).Err(err).Msg("Telegram command denied")
		return
	}
	h.logger.Error().Int64("user_id", userID).Str("command", command).Err(err).Msg("Telegram command failed")
}

// userFacingError maps a use case error to the reply shown in the chat
func userFacingError(err error) string {
	switch {
	case errors.Is(err, boterrors.ErrNotOwner):
		return textNoAccess
	case errors.Is(err, boterrors.ErrNotPrivileged):
		return textAdminsOnly
	case errors.Is(err, boterrors.ErrNotBot):
		return textNotBot
	case errors.Is(err, boterrors.ErrInvalidCallback):
		return textUnknownAction
	default:
		return textCommandFailed
	}
}

func commandResult(err error) string {
	if pkgerrors.IsPermissionError(err) {
		return resultDenied
	}
	return resultError
}

// commands maps each chat command to its handler
func (h *Handlers) commands() map[string]tgbot.HandlerFunc {
	return map[string]tgbot.HandlerFunc{
		consts.CommandStart:     h.HandleStart,
		consts.CommandHelp:      h.HandleHelp,
		consts.CommandAdmin:     h.HandleAdmin,
		consts.CommandStats:     h.HandleStats,
		consts.CommandBotList:   h.HandleBotList,
		consts.CommandAddBot:    h.HandleAddBot,
		consts.CommandRemoveBot: h.HandleRemoveBot,
		consts.CommandRescan:    h.HandleRescan,
	}
}
