package business

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/sourcegraph/conc/pool"

	"github.com/Stam1n/telegram-bot/internal/domain/moderation/consts"
	"github.com/Stam1n/telegram-bot/internal/domain/moderation/detect"
	"github.com/Stam1n/telegram-bot/internal/domain/moderation/dto"
	"github.com/Stam1n/telegram-bot/internal/domain/moderation/entities"
	boterrors "github.com/Stam1n/telegram-bot/internal/domain/moderation/errors"
)

// maxLookups bounds concurrent profile lookups when rendering a bot list
const maxLookups = 5

// HandleStart handles /start
func (uc *UseCase) HandleStart(ctx context.Context, req *dto.CommandRequest) (*dto.CommandResponse, error) {
	uc.logger.Info().
		Int64("user_id", req.Issuer.ID).
		Str("username", req.Issuer.Username).
		Msg("User started bot")

	if uc.isOwner(req.Issuer.ID) {
		return &dto.CommandResponse{Text: textStartOwner}, nil
	}
	return &dto.CommandResponse{Text: textStartUser}, nil
}

// HandleHelp handles /help
func (uc *UseCase) HandleHelp(ctx context.Context) (*dto.CommandResponse, error) {
	return &dto.CommandResponse{Text: textHelp}, nil
}

// HandleAdmin opens the operator panel
func (uc *UseCase) HandleAdmin(ctx context.Context, req *dto.CommandRequest) (*dto.CommandResponse, error) {
	if err := uc.requireOwner(req.Issuer); err != nil {
		return nil, err
	}

	kb := (&entities.Keyboard{}).
		AddRow(entities.Button{Text: textButtonStats, Data: consts.CallbackAdminStats}).
		AddRow(entities.Button{Text: textButtonChats, Data: consts.CallbackAdminChats}).
		AddRow(entities.Button{Text: textButtonRefresh, Data: consts.CallbackAdminRefresh})

	return &dto.CommandResponse{Text: textAdminPanel, Keyboard: kb}, nil
}

// HandleStats reports totals and the chats with the most tracked bots
func (uc *UseCase) HandleStats(ctx context.Context, req *dto.CommandRequest) (*dto.CommandResponse, error) {
	if err := uc.requireOwner(req.Issuer); err != nil {
		return nil, err
	}

	summaries := uc.store.Summaries()

	var text strings.Builder
	text.WriteString(textStatsHeader)
	fmt.Fprintf(&text, textStatsTotals, len(summaries), totalTracked(summaries), uc.timestamp())

	if len(summaries) > 0 {
		top := slices.Clone(summaries)
		slices.SortStableFunc(top, func(a, b entities.ChatSummary) int {
			return b.Tracked - a.Tracked
		})
		if len(top) > consts.TopChats {
			top = top[:consts.TopChats]
		}

		fmt.Fprintf(&text, textStatsTopHeader, consts.TopChats)
		for i, s := range top {
			fmt.Fprintf(&text, textStatsTopLine, i+1, s.ChatID, s.Tracked)
		}
	}

	return &dto.CommandResponse{Text: text.String()}, nil
}

// HandleBotList lists the chat's effectively tracked bots. Management
// buttons are attached only when the issuer is a chat admin right now.
func (uc *UseCase) HandleBotList(ctx context.Context, req *dto.CommandRequest) (*dto.CommandResponse, error) {
	return uc.renderBotList(ctx, req.ChatID, req.Issuer), nil
}

func (uc *UseCase) renderBotList(ctx context.Context, chatID int64, issuer entities.Identity) *dto.CommandResponse {
	if _, ok := uc.store.Record(chatID); !ok {
		return &dto.CommandResponse{Text: textNoRecord}
	}

	ids := uc.store.EffectiveTracked(chatID)
	if len(ids) == 0 {
		return &dto.CommandResponse{Text: textNoActive}
	}

	names := uc.displayNames(ctx, ids)

	var text strings.Builder
	text.WriteString(textListHeader)
	for i, id := range ids {
		fmt.Fprintf(&text, textListLine, i+1, names[i], id)
	}

	resp := &dto.CommandResponse{Text: text.String()}
	if uc.requireChatAdmin(ctx, chatID, issuer) == nil {
		resp.Keyboard = (&entities.Keyboard{}).
			AddRow(entities.Button{Text: textButtonAdd, Data: consts.CallbackAddBotPrefix + formatID(chatID)}).
			AddRow(entities.Button{Text: textButtonRemove, Data: consts.CallbackRemoveBotPrefix + formatID(chatID)})
	}
	return resp
}

// displayNames looks up names concurrently, keeping the order of ids
func (uc *UseCase) displayNames(ctx context.Context, ids []int64) []string {
	names := make([]string, len(ids))

	p := pool.New().WithMaxGoroutines(maxLookups)
	for i, id := range ids {
		p.Go(func() {
			names[i] = uc.displayName(ctx, id)
		})
	}
	p.Wait()

	return names
}

// HandleAddBots puts the reply target or every argument under manual tracking
func (uc *UseCase) HandleAddBots(ctx context.Context, req *dto.CommandRequest) (*dto.CommandResponse, error) {
	if err := uc.requireChatAdmin(ctx, req.ChatID, req.Issuer); err != nil {
		return nil, err
	}
	uc.store.Ensure(req.ChatID)

	if req.ReplyTo != nil {
		target := *req.ReplyTo
		if !detect.IsAutomatedIdentity(target) {
			return nil, boterrors.ErrNotBot
		}
		uc.store.AddManual(req.ChatID, target.ID)
		uc.logTrackingChange(req, target.ID, "manual")
		return &dto.CommandResponse{Text: fmt.Sprintf(textAdded, target.Mention())}, nil
	}

	if len(req.Args) == 0 {
		return &dto.CommandResponse{Text: textAddUsage}, nil
	}

	lines := make([]string, 0, len(req.Args))
	for _, arg := range req.Args {
		target, err := uc.resolveTarget(ctx, arg)
		if err != nil {
			lines = append(lines, argumentError(arg, err))
			continue
		}
		uc.store.AddManual(req.ChatID, target.ID)
		uc.logTrackingChange(req, target.ID, "manual")
		lines = append(lines, fmt.Sprintf(textAdded, target.Mention()))
	}

	return &dto.CommandResponse{Text: strings.Join(lines, "\n")}, nil
}

// HandleRemoveBots ignores the reply target or every argument
func (uc *UseCase) HandleRemoveBots(ctx context.Context, req *dto.CommandRequest) (*dto.CommandResponse, error) {
	if err := uc.requireChatAdmin(ctx, req.ChatID, req.Issuer); err != nil {
		return nil, err
	}

	if req.ReplyTo != nil {
		target := *req.ReplyTo
		if err := uc.store.Remove(req.ChatID, target.ID); err != nil {
			return &dto.CommandResponse{Text: argumentError(target.Mention(), err)}, nil
		}
		uc.logTrackingChange(req, target.ID, "ignored")
		return &dto.CommandResponse{Text: fmt.Sprintf(textRemoved, target.Mention())}, nil
	}

	if len(req.Args) == 0 {
		return &dto.CommandResponse{Text: textRemoveUsage}, nil
	}

	lines := make([]string, 0, len(req.Args))
	for _, arg := range req.Args {
		target, err := uc.resolveTarget(ctx, arg)
		if err == nil {
			err = uc.store.Remove(req.ChatID, target.ID)
		}
		if err != nil {
			lines = append(lines, argumentError(arg, err))
			continue
		}
		uc.logTrackingChange(req, target.ID, "ignored")
		lines = append(lines, fmt.Sprintf(textRemoved, target.Mention()))
	}

	return &dto.CommandResponse{Text: strings.Join(lines, "\n")}, nil
}

// HandleRescan rebuilds the auto set from the chat's current administrators
func (uc *UseCase) HandleRescan(ctx context.Context, req *dto.CommandRequest) (*dto.CommandResponse, error) {
	if err := uc.requireChatAdmin(ctx, req.ChatID, req.Issuer); err != nil {
		return nil, err
	}

	admins, err := uc.gateway.Administrators(ctx, req.ChatID)
	if err != nil {
		uc.logger.Error().Int64("chat_id", req.ChatID).Err(err).Msg("Failed to list administrators")
		return &dto.CommandResponse{Text: textRescanError}, nil
	}

	var selfID int64
	if self, err := uc.gateway.Self(ctx); err == nil {
		selfID = self.ID
	}

	ids := make([]int64, 0, len(admins))
	for _, admin := range admins {
		if admin.Identity.ID == selfID || !detect.IsAutomatedIdentity(admin.Identity) {
			continue
		}
		uc.directory.Remember(admin.Identity)
		ids = append(ids, admin.Identity.ID)
	}

	uc.store.ReplaceAuto(req.ChatID, ids)

	uc.logger.Info().
		Int64("chat_id", req.ChatID).
		Int64("user_id", req.Issuer.ID).
		Int("bots", len(ids)).
		Msg("Chat rescanned")

	return &dto.CommandResponse{Text: fmt.Sprintf(textRescanned, len(ids))}, nil
}

// HandleMembersJoined greets the chat when the agent itself is added and
// records automated newcomers, leaving earlier ignore decisions in place.
// It returns nil when there is nothing to post.
func (uc *UseCase) HandleMembersJoined(ctx context.Context, req *dto.MembersJoinedRequest) *dto.CommandResponse {
	self, err := uc.gateway.Self(ctx)
	if err != nil {
		uc.logger.Warn().Err(err).Msg("Failed to resolve own identity")
	}

	var welcome bool
	for _, member := range req.Members {
		if err == nil && member.ID == self.ID {
			welcome = true
			continue
		}
		if detect.IsAutomatedIdentity(member) {
			uc.directory.Remember(member)
			if uc.store.RecordAutomatedStrict(req.ChatID, member.ID) {
				uc.logger.Info().
					Int64("chat_id", req.ChatID).
					Int64("user_id", member.ID).
					Msg("Automated member joined, tracking")
			}
		}
	}

	if !welcome {
		return nil
	}

	uc.store.Ensure(req.ChatID)
	uc.logger.Info().Int64("chat_id", req.ChatID).Msg("Added to chat")
	return &dto.CommandResponse{Text: textWelcome}
}

// resolveTarget turns an @handle or a numeric id into an identity
func (uc *UseCase) resolveTarget(ctx context.Context, arg string) (entities.Identity, error) {
	arg = strings.TrimSpace(arg)

	if strings.HasPrefix(arg, "@") {
		if len(arg) == 1 {
			return entities.Identity{}, boterrors.ErrInvalidArgument
		}
		if identity, ok := uc.directory.Lookup(arg); ok {
			return identity, nil
		}
		return uc.gateway.ResolveHandle(ctx, arg)
	}

	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id == 0 {
		return entities.Identity{}, boterrors.ErrInvalidArgument
	}
	return entities.Identity{ID: id}, nil
}

func (uc *UseCase) logTrackingChange(req *dto.CommandRequest, targetID int64, state string) {
	uc.logger.Info().
		Int64("chat_id", req.ChatID).
		Int64("user_id", req.Issuer.ID).
		Int64("target_id", targetID).
		Str("state", state).
		Msg("Tracking changed by admin")
}

// argumentError renders one per-argument failure line
func argumentError(arg string, err error) string {
	switch {
	case errors.Is(err, boterrors.ErrInvalidArgument):
		return fmt.Sprintf(textArgInvalid, arg)
	case errors.Is(err, boterrors.ErrHandleNotFound):
		return fmt.Sprintf(textArgUnknown, arg)
	case errors.Is(err, boterrors.ErrNotTracked):
		return fmt.Sprintf(textArgUntracked, arg)
	default:
		return fmt.Sprintf(textArgFailed, arg)
	}
}

func totalTracked(summaries []entities.ChatSummary) int {
	total := 0
	for _, s := range summaries {
		total += s.Tracked
	}
	return total
}

func (uc *UseCase) timestamp() string {
	return uc.now().Format("02.01.2006 15:04")
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
