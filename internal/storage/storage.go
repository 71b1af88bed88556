// Package storage is the persistence layer of the support bot: users,
// tickets, the append-only message log, settings and autoresponders in
// PostgreSQL, with Redis carrying the user-language cache and the ticket
// event pub/sub channel.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ticketgogo/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ErrUnavailable marks any backing-store failure. Callers surface a generic
// failure to the actor and keep the relay loop alive; nothing retries
// automatically.
var ErrUnavailable = errors.New("storage unavailable")

// TicketEventsChannel is the Redis pub/sub channel for lifecycle events.
const TicketEventsChannel = "ticket:events"

// ClosureStat is one row of the closure leaderboard.
type ClosureStat struct {
	Who   string `json:"who"`
	Count int64  `json:"count"`
}

// Storage is the data-access contract consumed by the state machine and the
// relay router. It carries no business logic; every method is atomic with
// respect to a single row except CreateTicket (see its comment).
type Storage interface {
	// Users
	SaveUserIfNotExists(userID int64) error
	GetUserLang(userID int64) (string, error)
	SetUserLang(userID int64, lang string) error

	// Settings / autoresponders
	AutorespondersEnabled() (bool, error)
	SetAutorespondersEnabled(enabled bool) error
	GetAutoresponderText(category string) (string, error)
	SetAutoresponderText(category, text string) error

	// Tickets
	CreateTicket(userID int64, category, reason, description string) (string, error)
	GetTicket(ticketID string) (*models.Ticket, error)
	GetOpenTicketForUser(userID int64) (*models.Ticket, error)
	MarkAssigned(ticketID string, modID int64) error
	StoreGroupHeader(ticketID string, msgID int) error
	CloseTicket(ticketID string, closedBy *int64, closedByName *string) error
	LastTicketIDs(limit int) ([]string, error)
	ClosureStats() ([]ClosureStat, error)

	// Message log
	RecordMessage(ticketID, role, text string, userMsgID, groupMsgID *int) error
	GetTicketHistory(ticketID string) ([]models.TicketMessage, error)
	GetTicketGroupMsgIDs(ticketID string) ([]int, error)

	// Events
	PublishTicketEvent(ev models.TicketEvent) error
}

// Service implements Storage over PostgreSQL and Redis.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewStorageService constructs the service. Redis may be nil (the admin CLI
// runs without it); cache and pub/sub then degrade to no-ops.
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// TicketID derives the public ticket id from the internal sequence number
// and the creation date, e.g. T-20260828-0042.
func TicketID(seq uint, at time.Time) string {
	return fmt.Sprintf("T-%s-%04d", at.Format("20060102"), seq)
}

func unavailable(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
