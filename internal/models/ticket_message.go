package models

import "time"

// Message log roles.
const (
	RoleUser   = "user"
	RoleMod    = "mod"
	RoleSystem = "system"
)

// TicketMessage is one append-only audit log entry for a ticket. Entries are
// never mutated; history is reconstructed by insertion order (the ID column).
type TicketMessage struct {
	ID       uint   `gorm:"primaryKey"`
	TicketID string `gorm:"not null;index"`
	FromRole string `gorm:"type:text;not null"` // user | mod | system
	Text     string `gorm:"type:text"`

	// UserMsgID is the message id on the user's side of the relay.
	UserMsgID *int
	// GroupMsgID is the message id in the moderator group. Closing a ticket
	// deletes these group-side artifacts; the log row itself stays.
	GroupMsgID *int

	CreatedAt time.Time
}
