package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemberPrivileges(t *testing.T) {
	tests := []struct {
		name         string
		member       Member
		wantAdmin    bool
		wantModerate bool
	}{
		{"owner", Member{Role: RoleOwner}, true, true},
		{"admin with delete right", Member{Role: RoleAdministrator, CanDeleteMessages: true}, true, true},
		{"admin without delete right", Member{Role: RoleAdministrator}, true, false},
		{"member", Member{Role: RoleMember, CanDeleteMessages: true}, false, false},
		{"left", Member{Role: RoleOther}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantAdmin, tt.member.IsAdmin())
			assert.Equal(t, tt.wantModerate, tt.member.CanModerate())
		})
	}
}

func TestIdentityMention(t *testing.T) {
	assert.Equal(t, "@ads_bot", Identity{ID: 1, Username: "ads_bot", DisplayName: "Ads"}.Mention())
	assert.Equal(t, "Ads", Identity{ID: 1, DisplayName: "Ads"}.Mention())
	assert.Equal(t, "-100", Identity{ID: -100}.Mention())
}
