// Package detect holds the stateless classifiers used by the moderation pipeline
package detect

import (
	"strings"

	"github.com/Stam1n/telegram-bot/internal/domain/moderation/entities"
)

// automatedSuffix is matched case-insensitively against the end of a handle
const automatedSuffix = "bot"

// IsAutomated reports whether an identity counts as a bot: either the
// transport flags it, or its handle ends with "bot" in any letter case.
func IsAutomated(handle string, transportFlag bool) bool {
	if transportFlag {
		return true
	}
	if handle == "" {
		return false
	}
	return strings.HasSuffix(strings.ToLower(handle), automatedSuffix)
}

// IsAutomatedIdentity applies IsAutomated to an identity
func IsAutomatedIdentity(id entities.Identity) bool {
	return IsAutomated(id.Username, id.IsBot)
}
