package business

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Stam1n/telegram-bot/internal/domain/moderation/consts"
	"github.com/Stam1n/telegram-bot/internal/domain/moderation/dto"
	"github.com/Stam1n/telegram-bot/internal/domain/moderation/entities"
	boterrors "github.com/Stam1n/telegram-bot/internal/domain/moderation/errors"
)

// CallbackAction is the kind of an inline button press
type CallbackAction int

const (
	ActionUnknown CallbackAction = iota
	ActionAdminStats
	ActionAdminChats
	ActionAdminRefresh
	ActionAddBot
	ActionRemoveBot
	ActionIgnoreBot
	ActionBackToBotList
)

// Callback is parsed callback data
type Callback struct {
	Action CallbackAction
	ChatID int64
	BotID  int64
}

// ParseCallback decodes button data into an action with its chat and bot ids
func ParseCallback(data string) (Callback, error) {
	switch data {
	case consts.CallbackAdminStats:
		return Callback{Action: ActionAdminStats}, nil
	case consts.CallbackAdminChats:
		return Callback{Action: ActionAdminChats}, nil
	case consts.CallbackAdminRefresh:
		return Callback{Action: ActionAdminRefresh}, nil
	}

	chatScoped := []struct {
		prefix string
		action CallbackAction
	}{
		{consts.CallbackAddBotPrefix, ActionAddBot},
		{consts.CallbackRemoveBotPrefix, ActionRemoveBot},
		{consts.CallbackBackToBotListPrefix, ActionBackToBotList},
	}
	for _, c := range chatScoped {
		if rest, ok := strings.CutPrefix(data, c.prefix); ok {
			chatID, err := strconv.ParseInt(rest, 10, 64)
			if err != nil {
				return Callback{}, boterrors.ErrInvalidCallback.Wrap(err)
			}
			return Callback{Action: c.action, ChatID: chatID}, nil
		}
	}

	if rest, ok := strings.CutPrefix(data, consts.CallbackIgnoreBotPrefix); ok {
		chatPart, botPart, found := strings.Cut(rest, "_")
		if !found {
			return Callback{}, boterrors.ErrInvalidCallback
		}
		chatID, err := strconv.ParseInt(chatPart, 10, 64)
		if err != nil {
			return Callback{}, boterrors.ErrInvalidCallback.Wrap(err)
		}
		botID, err := strconv.ParseInt(botPart, 10, 64)
		if err != nil {
			return Callback{}, boterrors.ErrInvalidCallback.Wrap(err)
		}
		return Callback{Action: ActionIgnoreBot, ChatID: chatID, BotID: botID}, nil
	}

	return Callback{}, boterrors.ErrInvalidCallback
}

// HandleCallback handles an inline button press and returns the new content
// of the message carrying the buttons.
func (uc *UseCase) HandleCallback(ctx context.Context, req *dto.CallbackRequest) (*dto.CommandResponse, error) {
	cb, err := ParseCallback(req.Data)
	if err != nil {
		uc.logger.Warn().Str("data", req.Data).Err(err).Msg("Unrecognised callback data")
		return nil, err
	}

	switch cb.Action {
	case ActionAdminStats, ActionAdminChats, ActionAdminRefresh:
		if err := uc.requireOwner(req.Issuer); err != nil {
			return nil, err
		}
		return uc.adminView(ctx, cb.Action), nil
	}

	if err := uc.requireChatAdmin(ctx, cb.ChatID, req.Issuer); err != nil {
		return nil, err
	}

	switch cb.Action {
	case ActionAddBot:
		return &dto.CommandResponse{Text: textAddInstructions}, nil

	case ActionRemoveBot:
		return uc.removeMenu(ctx, cb.ChatID), nil

	case ActionIgnoreBot:
		uc.store.Ignore(cb.ChatID, cb.BotID)
		uc.logger.Info().
			Int64("chat_id", cb.ChatID).
			Int64("user_id", req.Issuer.ID).
			Int64("target_id", cb.BotID).
			Msg("Bot ignored via button")
		return &dto.CommandResponse{Text: fmt.Sprintf(textIgnored, uc.displayName(ctx, cb.BotID))}, nil

	case ActionBackToBotList:
		return uc.renderBotList(ctx, cb.ChatID, req.Issuer), nil
	}

	return nil, boterrors.ErrInvalidCallback
}

func (uc *UseCase) adminView(ctx context.Context, action CallbackAction) *dto.CommandResponse {
	summaries := uc.store.Summaries()

	switch action {
	case ActionAdminStats:
		return &dto.CommandResponse{
			Text: fmt.Sprintf(textPanelStats, len(summaries), totalTracked(summaries), uc.timestamp()),
		}

	case ActionAdminChats:
		if len(summaries) == 0 {
			return &dto.CommandResponse{Text: textNoChats}
		}

		var text strings.Builder
		text.WriteString(textChatsHeader)
		for _, s := range summaries[:min(len(summaries), consts.MaxListedChats)] {
			fmt.Fprintf(&text, textChatsLine, s.ChatID, s.Tracked)
		}
		if extra := len(summaries) - consts.MaxListedChats; extra > 0 {
			fmt.Fprintf(&text, textChatsMore, extra)
		}
		return &dto.CommandResponse{Text: text.String()}

	default:
		if err := uc.store.Flush(ctx); err != nil {
			uc.logger.Error().Err(err).Msg("Manual flush failed")
			return &dto.CommandResponse{Text: textRefreshError}
		}
		return &dto.CommandResponse{Text: textRefreshed}
	}
}

// removeMenu offers one ignore button per tracked bot, up to the limit
func (uc *UseCase) removeMenu(ctx context.Context, chatID int64) *dto.CommandResponse {
	ids := uc.store.EffectiveTracked(chatID)
	if len(ids) == 0 {
		return &dto.CommandResponse{Text: textNothingToRemove}
	}

	ids = ids[:min(len(ids), consts.MaxRemoveButtons)]
	names := uc.displayNames(ctx, ids)

	kb := &entities.Keyboard{}
	for i, id := range ids {
		kb.AddRow(entities.Button{
			Text: "❌ " + shorten(names[i], consts.MaxButtonNameRune),
			Data: fmt.Sprintf("%s%d_%d", consts.CallbackIgnoreBotPrefix, chatID, id),
		})
	}
	kb.AddRow(entities.Button{
		Text: textButtonBack,
		Data: consts.CallbackBackToBotListPrefix + formatID(chatID),
	})

	return &dto.CommandResponse{Text: textChooseToIgnore, Keyboard: kb}
}

// shorten cuts s to n runes, marking the cut with an ellipsis
func shorten(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
