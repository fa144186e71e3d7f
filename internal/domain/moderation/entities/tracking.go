package entities

import "time"

// Membership set names stored in TrackedIdentity.Set
const (
	SetAuto    = "auto"
	SetManual  = "manual"
	SetIgnored = "ignored"
)

// TrackedChat is a chat that has a tracking record, possibly empty
type TrackedChat struct {
	ChatID    int64     `gorm:"primaryKey;autoIncrement:false"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for TrackedChat
func (TrackedChat) TableName() string {
	return "tracked_chats"
}

// TrackedIdentity is one membership of an identity in one of a chat's sets
type TrackedIdentity struct {
	ChatID     int64  `gorm:"primaryKey;autoIncrement:false"`
	IdentityID int64  `gorm:"primaryKey;autoIncrement:false"`
	Set        string `gorm:"column:set_name;primaryKey;size:16"`
}

// TableName returns the table name for TrackedIdentity
func (TrackedIdentity) TableName() string {
	return "tracked_identities"
}

// TrackingModels lists the gorm models backing the SQL persister
func TrackingModels() []any {
	return []any{&TrackedChat{}, &TrackedIdentity{}}
}
