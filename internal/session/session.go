// Package session keeps the ephemeral relay state: moderator reply sessions
// and per-user ticket-creation drafts. State is process-lifetime only; a
// restart drops everything and a moderator simply re-enters reply mode.
package session

import (
	"sync"
	"time"
)

// DraftStage tags where a user is in the two-step creation dialogue.
type DraftStage string

const (
	StageAwaitingReason      DraftStage = "awaiting_reason"
	StageAwaitingDescription DraftStage = "awaiting_description"
)

// Draft accumulates the creation answers for one user before the ticket
// exists. The category is fixed at button selection; reason and description
// arrive as the two dialogue answers.
type Draft struct {
	Stage    DraftStage
	Category string
	Reason   string

	touched time.Time
}

// Store guards all ephemeral relay state behind a single mutex. It is
// injected into the router and the ticket service; there are no package
// globals. Reply sessions enforce at most one active ticket per moderator.
type Store struct {
	mu       sync.Mutex
	replies  map[int64]string // moderator id -> ticket id
	drafts   map[int64]*Draft // user id -> creation draft
	draftTTL time.Duration

	now func() time.Time
}

// NewStore creates an empty store. Drafts expire draftTTL after the last
// answer; a TTL of zero disables expiry.
func NewStore(draftTTL time.Duration) *Store {
	return &Store{
		replies:  make(map[int64]string),
		drafts:   make(map[int64]*Draft),
		draftTTL: draftTTL,
		now:      time.Now,
	}
}

// ---- Reply sessions ----

// Enter binds the moderator to a ticket, replacing any previous binding.
// Last reply-intent wins.
func (s *Store) Enter(modID int64, ticketID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies[modID] = ticketID
}

// Exit clears the moderator's session and reports which ticket was active.
// The second return is false when there was nothing to end.
func (s *Store) Exit(modID int64) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ticketID, ok := s.replies[modID]
	if ok {
		delete(s.replies, modID)
	}
	return ticketID, ok
}

// Lookup reports the moderator's active ticket, if any. Callers must still
// check the ticket's stored status: a session can point at a just-closed
// ticket.
func (s *Store) Lookup(modID int64) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ticketID, ok := s.replies[modID]
	return ticketID, ok
}

// ClearTicket drops every session pointing at the ticket. Called on closure
// so moderator messages cannot leak into a dead ticket.
func (s *Store) ClearTicket(ticketID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for modID, tid := range s.replies {
		if tid == ticketID {
			delete(s.replies, modID)
		}
	}
}

// ---- Creation drafts ----

// BeginDraft starts the creation dialogue for a user, replacing any previous
// draft.
func (s *Store) BeginDraft(userID int64, category string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[userID] = &Draft{
		Stage:    StageAwaitingReason,
		Category: category,
		touched:  s.now(),
	}
}

// GetDraft returns a copy of the user's draft. Expired drafts are dropped
// here, lazily, so an abandoned dialogue never resurfaces days later.
func (s *Store) GetDraft(userID int64) (Draft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[userID]
	if !ok {
		return Draft{}, false
	}
	if s.draftTTL > 0 && s.now().Sub(d.touched) > s.draftTTL {
		delete(s.drafts, userID)
		return Draft{}, false
	}
	return *d, true
}

// SetReason records the first answer and advances the dialogue. Returns
// false when no live draft exists.
func (s *Store) SetReason(userID int64, reason string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[userID]
	if !ok {
		return false
	}
	d.Reason = reason
	d.Stage = StageAwaitingDescription
	d.touched = s.now()
	return true
}

// ClearDraft ends the dialogue, normally right after ticket creation.
func (s *Store) ClearDraft(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, userID)
}
