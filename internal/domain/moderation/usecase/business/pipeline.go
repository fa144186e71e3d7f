package business

import (
	"context"
	"fmt"

	"github.com/Stam1n/telegram-bot/internal/domain/moderation/detect"
	"github.com/Stam1n/telegram-bot/internal/domain/moderation/dto"
	"github.com/Stam1n/telegram-bot/internal/domain/moderation/entities"
	pkgerrors "github.com/Stam1n/telegram-bot/pkg/errors"
)

// HandleMessage runs one inbound message through the moderation pipeline.
// Transport failures are logged and reflected in the outcome, never returned.
func (uc *UseCase) HandleMessage(ctx context.Context, msg *dto.InboundMessage) *dto.ModerationResult {
	result := uc.moderate(ctx, msg)
	uc.metrics.RecordOutcome(string(result.Outcome), result.Score, result.State.Tracked())
	return result
}

func (uc *UseCase) moderate(ctx context.Context, msg *dto.InboundMessage) *dto.ModerationResult {
	if msg.Text == "" {
		return &dto.ModerationResult{Outcome: dto.OutcomeSkipped}
	}
	if msg.Sender == nil {
		uc.logger.Debug().Int64("chat_id", msg.ChatID).Int("message_id", msg.MessageID).Msg("Message without sender dropped")
		return &dto.ModerationResult{Outcome: dto.OutcomeSkipped}
	}
	sender := *msg.Sender

	self, selfErr := uc.gateway.Self(ctx)
	if selfErr != nil {
		uc.logger.Warn().Err(selfErr).Msg("Failed to resolve own identity")
	} else if sender.ID == self.ID {
		return &dto.ModerationResult{Outcome: dto.OutcomeSkipped}
	}

	uc.directory.Remember(sender)

	automated := detect.IsAutomatedIdentity(sender)
	state := uc.store.Observe(msg.ChatID, sender, automated)
	result := &dto.ModerationResult{State: state}

	if state == entities.StateIgnored {
		result.Outcome = dto.OutcomeIgnored
		return result
	}
	if !state.Tracked() {
		result.Outcome = dto.OutcomeUntracked
		return result
	}

	verdict := detect.ScoreSpam(msg.Text)
	result.Score = verdict.Score
	result.Groups = verdict.Groups

	if !verdict.IsSpam() {
		result.Outcome = dto.OutcomeClean
		return result
	}

	log := uc.logger.With().
		Int64("chat_id", msg.ChatID).
		Int64("user_id", sender.ID).
		Int("message_id", msg.MessageID).
		Int("score", verdict.Score).
		Strs("groups", verdict.Groups).
		Logger()

	if selfErr != nil || !uc.canDelete(ctx, msg.ChatID, self.ID) {
		uc.metrics.RecordPrivilegeMissing()
		log.Warn().Msg("No rights to delete spam message")
		result.Outcome = dto.OutcomeNoPrivilege
		return result
	}

	if err := uc.gateway.DeleteMessage(ctx, msg.ChatID, msg.MessageID); err != nil {
		uc.metrics.RecordDeletionError(pkgerrors.TypeOf(err).String())
		log.Error().Err(err).Msg("Failed to delete spam message")
		result.Outcome = dto.OutcomeDeleteFailed
		return result
	}

	uc.metrics.RecordDeletion()
	log.Info().Str("sender", sender.Mention()).Msg("Spam message deleted")
	result.Outcome = dto.OutcomeDeleted

	noticeID, err := uc.gateway.SendText(ctx, msg.ChatID, fmt.Sprintf(textSpamRemoved, sender.Mention()), nil)
	if err != nil {
		uc.metrics.RecordNoticeError()
		log.Warn().Err(err).Msg("Failed to post deletion notice")
		return result
	}

	result.NoticeID = noticeID
	uc.notices.Schedule(msg.ChatID, noticeID, uc.opts.NoticeTTL)
	return result
}

// canDelete checks live that the agent administers chatID with the delete right
func (uc *UseCase) canDelete(ctx context.Context, chatID, selfID int64) bool {
	member, err := uc.gateway.Member(ctx, chatID, selfID)
	if err != nil {
		uc.logger.Warn().Int64("chat_id", chatID).Err(err).Msg("Failed to check own privileges")
		return false
	}
	return member.CanModerate()
}
