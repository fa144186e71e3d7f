// Package deps contains interface definitions for the moderation domain dependencies
package deps

import (
	"context"
	"time"

	"github.com/Stam1n/telegram-bot/internal/domain/moderation/entities"
)

// ChatGateway is the slice of the chat transport the moderation domain needs.
// Not-found and forbidden failures are reported as boterrors.ErrMessageNotFound
// and boterrors.ErrForbidden.
type ChatGateway interface {
	// Self returns the moderation agent's own identity
	Self(ctx context.Context) (entities.Identity, error)

	// Member returns a live snapshot of userID's standing in chatID
	Member(ctx context.Context, chatID, userID int64) (entities.Member, error)

	// Administrators returns the chat's current administrators
	Administrators(ctx context.Context, chatID int64) ([]entities.Member, error)

	// Profile looks up handle and display name for an identity
	Profile(ctx context.Context, id int64) (entities.Identity, error)

	// ResolveHandle looks up an identity by its @handle
	ResolveHandle(ctx context.Context, handle string) (entities.Identity, error)

	// SendText posts text to a chat and returns the new message id
	SendText(ctx context.Context, chatID int64, text string, keyboard *entities.Keyboard) (int, error)

	// EditText replaces the text and keyboard of an existing message
	EditText(ctx context.Context, chatID int64, messageID int, text string, keyboard *entities.Keyboard) error

	// DeleteMessage removes a message from a chat
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error

	// AnswerCallback acknowledges a button press, optionally with a toast
	AnswerCallback(ctx context.Context, callbackID, text string) error
}

// MessageDeleter removes messages; used by the deferred notice cleaner
type MessageDeleter interface {
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
}

// NoticeScheduler removes a posted notice after a delay without blocking the caller
type NoticeScheduler interface {
	Schedule(chatID int64, messageID int, after time.Duration)
}

// TrackingStore is the per-chat tracking state
type TrackingStore interface {
	// Ensure creates an empty record for chatID if absent
	Ensure(chatID int64)

	// Observe ensures the record, records the sender in auto when automated
	// (loose path), and returns the sender's resulting state, atomically.
	Observe(chatID int64, sender entities.Identity, automated bool) entities.TrackingState

	// RecordAutomated inserts into auto without looking at ignored
	RecordAutomated(chatID, identityID int64) bool

	// RecordAutomatedStrict inserts into auto unless the id is ignored
	RecordAutomatedStrict(chatID, identityID int64) bool

	// AddManual inserts into manual and clears a prior ignore
	AddManual(chatID, identityID int64)

	// Ignore inserts into ignored and removes from auto and manual
	Ignore(chatID, identityID int64)

	// Remove ignores a tracked id; ErrNotTracked if in neither auto nor manual
	Remove(chatID, identityID int64) error

	// ReplaceAuto swaps the auto set wholesale
	ReplaceAuto(chatID int64, ids []int64)

	// EffectiveTracked returns (auto ∪ manual) − ignored, sorted
	EffectiveTracked(chatID int64) []int64

	IsIgnored(chatID, identityID int64) bool
	State(chatID, identityID int64) entities.TrackingState

	// Record returns a copy of the chat's record and whether it exists
	Record(chatID int64) (entities.ChatRecord, bool)

	// Summaries lists every known chat ordered by chat id
	Summaries() []entities.ChatSummary

	// Flush writes the whole state through the persister
	Flush(ctx context.Context) error
}

// IdentityDirectory remembers identities seen in chats so @handles given to
// commands can be resolved without a transport lookup
type IdentityDirectory interface {
	Remember(identity entities.Identity)
	Lookup(handle string) (entities.Identity, bool)
}

// Persister stores and restores the whole tracking document
type Persister interface {
	Load(ctx context.Context) (map[int64]entities.ChatRecord, error)
	Save(ctx context.Context, records map[int64]entities.ChatRecord) error
}
