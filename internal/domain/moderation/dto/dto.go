// Package dto contains data transfer objects for the moderation domain
package dto

import "github.com/Stam1n/telegram-bot/internal/domain/moderation/entities"

// InboundMessage is a chat message handed to the moderation pipeline
type InboundMessage struct {
	ChatID    int64
	MessageID int
	// Sender is nil when the transport gave neither a sender chat nor a user
	Sender *entities.Identity
	// Text is the message text, or its caption for media messages
	Text string
}

// Outcome is how the pipeline finished with a message
type Outcome string

const (
	OutcomeSkipped      Outcome = "skipped"
	OutcomeIgnored      Outcome = "ignored"
	OutcomeUntracked    Outcome = "untracked"
	OutcomeClean        Outcome = "clean"
	OutcomeNoPrivilege  Outcome = "no_privilege"
	OutcomeDeleted      Outcome = "deleted"
	OutcomeDeleteFailed Outcome = "delete_failed"
)

// ModerationResult describes what the pipeline did
type ModerationResult struct {
	Outcome Outcome
	State   entities.TrackingState
	Score   int
	Groups  []string
	// NoticeID is the posted notice, zero when none was posted
	NoticeID int
}

// CommandRequest is a chat command invocation
type CommandRequest struct {
	ChatID    int64
	MessageID int
	Issuer    entities.Identity
	Args      []string
	// ReplyTo is the sender of the message the command replies to
	ReplyTo *entities.Identity
}

// CommandResponse is the reply to a command or button press
type CommandResponse struct {
	Text     string
	Keyboard *entities.Keyboard
}

// CallbackRequest is an inline button press
type CallbackRequest struct {
	CallbackID string
	// ChatID and MessageID locate the message carrying the buttons
	ChatID    int64
	MessageID int
	Issuer    entities.Identity
	Data      string
}

// MembersJoinedRequest reports new chat members
type MembersJoinedRequest struct {
	ChatID  int64
	Members []entities.Identity
}
