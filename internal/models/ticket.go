package models

import "time"

type TicketStatus string

const (
	TicketStatusOpen   TicketStatus = "open"
	TicketStatusClosed TicketStatus = "closed"
)

// Ticket is a tracked support request with lifecycle open -> closed.
type Ticket struct {
	// ID is the internal autoincrement sequence number. The public TicketID
	// is derived from it, which is why the public id can only be stamped
	// after the insert (see storage.CreateTicket).
	ID uint `gorm:"primaryKey"`
	// TicketID is the public, human-readable id (T-YYYYMMDD-NNNN). Empty on
	// rows orphaned by a crash between insert and stamp; such rows are never
	// addressable and get repaired by the admin CLI.
	TicketID string `gorm:"uniqueIndex"`

	UserID      int64  `gorm:"not null;index"`
	Category    string `gorm:"type:text;not null"`
	Reason      string `gorm:"type:text"`
	Description string `gorm:"type:text"`

	Status    TicketStatus `gorm:"type:text;not null;default:'open';index"`
	CreatedAt time.Time

	// AssignedTo is the moderator currently holding the ticket. Re-claiming
	// overwrites it, last claim wins.
	AssignedTo *int64

	ClosedBy     *int64
	ClosedByName *string

	// GroupHeaderMsgID references the ticket card posted in the moderator
	// group.
	GroupHeaderMsgID *int
}
