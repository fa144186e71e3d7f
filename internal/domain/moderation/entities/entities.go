// Package entities contains domain entities
package entities

import (
	"slices"
	"strconv"
)

// Identity is a message sender: a user, or a channel posting as itself.
// Channel senders have negative ids.
type Identity struct {
	ID          int64  `json:"id"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	IsBot       bool   `json:"isBot"`
}

// Mention returns "@handle", falling back to the display name and then the numeric id
func (i Identity) Mention() string {
	switch {
	case i.Username != "":
		return "@" + i.Username
	case i.DisplayName != "":
		return i.DisplayName
	default:
		return strconv.FormatInt(i.ID, 10)
	}
}

// MemberRole is a chat member's privilege level
type MemberRole string

const (
	RoleOwner         MemberRole = "owner"
	RoleAdministrator MemberRole = "administrator"
	RoleMember        MemberRole = "member"
	RoleOther         MemberRole = "other"
)

// Member is a live snapshot of someone's standing in a chat
type Member struct {
	Identity          Identity
	Role              MemberRole
	CanDeleteMessages bool
}

// IsAdmin reports whether the member may manage the chat
func (m Member) IsAdmin() bool {
	return m.Role == RoleOwner || m.Role == RoleAdministrator
}

// CanModerate reports whether the member may delete other members' messages.
// Owners hold every right.
func (m Member) CanModerate() bool {
	return m.Role == RoleOwner || (m.Role == RoleAdministrator && m.CanDeleteMessages)
}

// TrackingState is the derived moderation state of an identity in a chat
type TrackingState int

const (
	StateUntracked TrackingState = iota
	StateAutoTracked
	StateManuallyTracked
	StateIgnored
)

func (s TrackingState) String() string {
	switch s {
	case StateAutoTracked:
		return "auto"
	case StateManuallyTracked:
		return "manual"
	case StateIgnored:
		return "ignored"
	default:
		return "untracked"
	}
}

// Tracked reports whether the state is subject to moderation
func (s TrackingState) Tracked() bool {
	return s == StateAutoTracked || s == StateManuallyTracked
}

// ChatRecord is the persisted tracking record of one chat
type ChatRecord struct {
	Bots        []int64 `json:"bots"`
	ManualBots  []int64 `json:"manual_bots"`
	IgnoredBots []int64 `json:"ignored_bots"`
}

// Normalize sorts and de-duplicates the three sets and replaces nil with empty slices
func (r ChatRecord) Normalize() ChatRecord {
	return ChatRecord{
		Bots:        normalizeIDs(r.Bots),
		ManualBots:  normalizeIDs(r.ManualBots),
		IgnoredBots: normalizeIDs(r.IgnoredBots),
	}
}

func normalizeIDs(ids []int64) []int64 {
	out := slices.Clone(ids)
	if out == nil {
		out = []int64{}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Button is an inline button carrying callback data
type Button struct {
	Text string
	Data string
}

// Keyboard is an inline keyboard, one slice per row
type Keyboard struct {
	Rows [][]Button
}

// AddRow appends a row of buttons and returns the keyboard for chaining
func (k *Keyboard) AddRow(buttons ...Button) *Keyboard {
	k.Rows = append(k.Rows, buttons)
	return k
}

// ChatSummary is a read-only view of a chat for the operator reports
type ChatSummary struct {
	ChatID int64
	// Tracked is len(auto) + len(manual); an id in both is counted twice
	Tracked int
	Ignored int
}
