package models

import "time"

// Ticket lifecycle event types carried over the ops feed.
const (
	EventTicketCreated  = "created"
	EventTicketAssigned = "assigned"
	EventTicketClosed   = "closed"
)

// TicketEvent is published on every lifecycle transition and fanned out to
// operator dashboards. It is an observer-side record only and never feeds
// back into the state machine.
type TicketEvent struct {
	Type     string `json:"type"` // "created" | "assigned" | "closed"
	TicketID string `json:"ticket_id"`
	UserID   int64  `json:"user_id,omitempty"`
	Category string `json:"category,omitempty"`
	ModID    int64  `json:"mod_id,omitempty"`
	ClosedBy string `json:"closed_by,omitempty"`

	At time.Time `json:"at"`
}
