package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStore_EnterOverwrites(t *testing.T) {
	s := NewStore(0)

	s.Enter(1, "T-20260828-0001")
	s.Enter(1, "T-20260828-0002")

	tid, ok := s.Lookup(1)
	assert.True(t, ok)
	assert.Equal(t, "T-20260828-0002", tid)
}

func TestStore_ExitReturnsActiveTicket(t *testing.T) {
	s := NewStore(0)
	s.Enter(7, "T-20260828-0003")

	tid, ok := s.Exit(7)
	assert.True(t, ok)
	assert.Equal(t, "T-20260828-0003", tid)

	_, ok = s.Lookup(7)
	assert.False(t, ok)
}

func TestStore_ExitWithoutSession(t *testing.T) {
	s := NewStore(0)

	tid, ok := s.Exit(42)
	assert.False(t, ok)
	assert.Empty(t, tid)
}

func TestStore_ClearTicketDropsOnlyMatchingSessions(t *testing.T) {
	s := NewStore(0)
	s.Enter(1, "T-20260828-0001")
	s.Enter(2, "T-20260828-0001")
	s.Enter(3, "T-20260828-0002")

	s.ClearTicket("T-20260828-0001")

	_, ok := s.Lookup(1)
	assert.False(t, ok)
	_, ok = s.Lookup(2)
	assert.False(t, ok)
	tid, ok := s.Lookup(3)
	assert.True(t, ok)
	assert.Equal(t, "T-20260828-0002", tid)
}

func TestStore_DraftFlow(t *testing.T) {
	s := NewStore(0)

	s.BeginDraft(100, "tech")
	d, ok := s.GetDraft(100)
	assert.True(t, ok)
	assert.Equal(t, StageAwaitingReason, d.Stage)
	assert.Equal(t, "tech", d.Category)

	assert.True(t, s.SetReason(100, "login fails"))
	d, ok = s.GetDraft(100)
	assert.True(t, ok)
	assert.Equal(t, StageAwaitingDescription, d.Stage)
	assert.Equal(t, "login fails", d.Reason)

	s.ClearDraft(100)
	_, ok = s.GetDraft(100)
	assert.False(t, ok)
}

func TestStore_SetReasonWithoutDraft(t *testing.T) {
	s := NewStore(0)
	assert.False(t, s.SetReason(100, "whatever"))
}

func TestStore_DraftExpires(t *testing.T) {
	s := NewStore(30 * time.Minute)
	current := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return current }

	s.BeginDraft(100, "pay")

	current = current.Add(29 * time.Minute)
	_, ok := s.GetDraft(100)
	assert.True(t, ok)

	current = current.Add(2 * time.Minute)
	_, ok = s.GetDraft(100)
	assert.False(t, ok)

	// The expired draft is gone for good, not just hidden.
	assert.False(t, s.SetReason(100, "late answer"))
}
