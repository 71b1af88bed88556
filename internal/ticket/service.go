// Package ticket implements the support-ticket lifecycle: creation,
// assignment and closure, plus the moderator-facing transcript and stats
// rendering. Transitions are validated against stored state, so replayed
// button presses are safe.
package ticket

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"ticketgogo/backend/internal/config"
	"ticketgogo/backend/internal/localization"
	"ticketgogo/backend/internal/models"
	"ticketgogo/backend/internal/session"
	"ticketgogo/backend/internal/storage"
)

var (
	// ErrNotFound is returned for an unknown or unaddressable ticket id.
	ErrNotFound = errors.New("ticket not found")
	// ErrClosed is returned when a transition requires an open ticket.
	ErrClosed = errors.New("ticket already closed")
)

// CloseResult reports a closure outcome. An already-closed ticket yields
// AlreadyClosed=true with a nil error: the operation is an idempotent no-op,
// not a failure.
type CloseResult struct {
	AlreadyClosed bool
	UserID        int64
	Deleted       int // group-side artifacts actually removed
}

// Service is the ticket state machine.
type Service struct {
	Storage   storage.Storage
	Transport Transport
	Sessions  *session.Store
	Localizer *localization.Localizer

	ModGroupID int64
	// Pacing is the pause between group-message deletions during the
	// closure sweep.
	Pacing time.Duration
}

func NewService(s storage.Storage, t Transport, sessions *session.Store, loc *localization.Localizer, modGroupID int64) *Service {
	return &Service{
		Storage:    s,
		Transport:  t,
		Sessions:   sessions,
		Localizer:  loc,
		ModGroupID: modGroupID,
		Pacing:     config.DeletePacing,
	}
}

// Create opens a new ticket and returns its public id.
func (s *Service) Create(userID int64, category, reason, description string) (string, error) {
	ticketID, err := s.Storage.CreateTicket(userID, category, reason, description)
	if err != nil {
		return "", err
	}
	s.publish(models.TicketEvent{
		Type:     models.EventTicketCreated,
		TicketID: ticketID,
		UserID:   userID,
		Category: category,
	})
	return ticketID, nil
}

// Assign puts the ticket into the moderator's hands. Allowed only while the
// ticket is open; a later claim silently overwrites an earlier one.
func (s *Service) Assign(ticketID string, modID int64) error {
	t, err := s.Storage.GetTicket(ticketID)
	if err != nil {
		return err
	}
	if t == nil {
		return ErrNotFound
	}
	if t.Status != models.TicketStatusOpen {
		return ErrClosed
	}
	if err := s.Storage.MarkAssigned(ticketID, modID); err != nil {
		return err
	}
	s.publish(models.TicketEvent{
		Type:     models.EventTicketAssigned,
		TicketID: ticketID,
		UserID:   t.UserID,
		ModID:    modID,
	})
	return nil
}

// Close moves the ticket to its terminal state: sweeps every group-side
// artifact (best-effort), records the closer identity, clears any reply
// session pointing at the ticket and notifies the ticket's user once when a
// moderator closed it. closedBy is nil for a user-initiated closure.
func (s *Service) Close(ticketID string, closedBy *int64, closedByName *string) (*CloseResult, error) {
	t, err := s.Storage.GetTicket(ticketID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrNotFound
	}
	if t.Status == models.TicketStatusClosed {
		return &CloseResult{AlreadyClosed: true, UserID: t.UserID}, nil
	}

	// Sweep first, while the references are still listed. A failed delete is
	// logged and the sweep continues; cleanup is best-effort, not atomic.
	deleted := 0
	groupIDs, err := s.Storage.GetTicketGroupMsgIDs(ticketID)
	if err != nil {
		return nil, err
	}
	for _, mid := range groupIDs {
		if err := s.Transport.DeleteMessage(s.ModGroupID, mid); err != nil {
			log.Printf("WARN: Failed to delete group message %d for ticket %s: %v", mid, ticketID, err)
		} else {
			deleted++
		}
		time.Sleep(s.Pacing)
	}

	if err := s.Storage.CloseTicket(ticketID, closedBy, closedByName); err != nil {
		return nil, err
	}
	s.Sessions.ClearTicket(ticketID)

	if closedBy != nil {
		lang, err := s.Storage.GetUserLang(t.UserID)
		if err != nil {
			lang = models.DefaultLang
		}
		notice := fmt.Sprintf(s.Localizer.GetString(lang, "ticket_closed_by_mod"), ticketID)
		if _, err := s.Transport.SendText(t.UserID, notice); err != nil {
			// The user may have blocked the bot; the closure stands.
			log.Printf("WARN: Failed to notify user %d about closed ticket %s: %v", t.UserID, ticketID, err)
		}
	}

	ev := models.TicketEvent{
		Type:     models.EventTicketClosed,
		TicketID: ticketID,
		UserID:   t.UserID,
	}
	if closedByName != nil {
		ev.ClosedBy = *closedByName
	}
	if closedBy != nil {
		ev.ModID = *closedBy
	}
	s.publish(ev)

	return &CloseResult{UserID: t.UserID, Deleted: deleted}, nil
}

// Exists reports whether the public ticket id is addressable.
func (s *Service) Exists(ticketID string) (bool, error) {
	t, err := s.Storage.GetTicket(ticketID)
	if err != nil {
		return false, err
	}
	return t != nil, nil
}

// HistoryText renders the transcript for moderators: insertion order,
// tail-limited to the given count, each entry truncated so the whole text
// fits a Telegram message.
func (s *Service) HistoryText(ticketID string, limit int) (string, error) {
	msgs, err := s.Storage.GetTicketHistory(ticketID)
	if err != nil {
		return "", err
	}
	if len(msgs) == 0 {
		return fmt.Sprintf("📜 История по %s: сообщений нет.", ticketID), nil
	}
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}

	roles := map[string]string{
		models.RoleUser:   "👤 Пользователь",
		models.RoleMod:    "🛠 Модератор",
		models.RoleSystem: "📎 Система",
	}

	parts := []string{fmt.Sprintf("📜 История по %s (последние %d):", ticketID, len(msgs)), ""}
	for _, m := range msgs {
		role, ok := roles[m.FromRole]
		if !ok {
			role = m.FromRole
		}
		text := strings.TrimSpace(m.Text)
		if runes := []rune(text); len(runes) > config.HistoryEntryRunes {
			text = string(runes[:config.HistoryEntryRunes]) + "…"
		}
		parts = append(parts, fmt.Sprintf("%s:\n%s\n", role, text))
	}
	return strings.Join(parts, "\n"), nil
}

// StatsText renders the closure leaderboard for the group.
func (s *Service) StatsText() (string, error) {
	stats, err := s.Storage.ClosureStats()
	if err != nil {
		return "", err
	}
	if len(stats) == 0 {
		return "📊 Пока никто не закрыл ни одного тикета.", nil
	}
	out := []string{"📊 Статистика закрытий:"}
	for _, st := range stats {
		out = append(out, fmt.Sprintf("- %s: %d", st.Who, st.Count))
	}
	return strings.Join(out, "\n"), nil
}

func (s *Service) publish(ev models.TicketEvent) {
	ev.At = time.Now().UTC()
	if err := s.Storage.PublishTicketEvent(ev); err != nil {
		log.Printf("WARN: Failed to publish %s event for ticket %s: %v", ev.Type, ev.TicketID, err)
	}
}
