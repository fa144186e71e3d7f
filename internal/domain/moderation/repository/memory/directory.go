package memory

import (
	"strings"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/Stam1n/telegram-bot/internal/domain/moderation/deps"
	"github.com/Stam1n/telegram-bot/internal/domain/moderation/entities"
)

// Directory remembers identities seen in chats by their lowercased handle
type Directory struct {
	byHandle *xsync.MapOf[string, entities.Identity]
}

// NewDirectory creates an empty directory
func NewDirectory() *Directory {
	return &Directory{byHandle: xsync.NewMapOf[string, entities.Identity]()}
}

// Remember stores identity under its handle; identities without one are skipped
func (d *Directory) Remember(identity entities.Identity) {
	key := normalizeHandle(identity.Username)
	if key == "" {
		return
	}
	d.byHandle.Store(key, identity)
}

// Lookup finds an identity by handle, with or without the leading @
func (d *Directory) Lookup(handle string) (entities.Identity, bool) {
	return d.byHandle.Load(normalizeHandle(handle))
}

func normalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(handle), "@"))
}

var _ deps.IdentityDirectory = (*Directory)(nil)
