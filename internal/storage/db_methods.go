package storage

import (
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"time"

	"ticketgogo/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const langCacheTTL = 24 * time.Hour

// ---- Users ----

// SaveUserIfNotExists creates the user row on first contact.
func (s *Service) SaveUserIfNotExists(userID int64) error {
	user := models.User{UserID: userID, Lang: models.DefaultLang}
	result := s.DB.Where("user_id = ?", userID).FirstOrCreate(&user)
	if result.Error != nil {
		log.Printf("ERROR: Failed to save user %d on first contact: %v", userID, result.Error)
		return unavailable(result.Error)
	}
	if result.RowsAffected > 0 {
		log.Printf("INFO: New user %d saved to database.", userID)
	}
	return nil
}

// GetUserLang returns the user's preferred language, consulting the Redis
// cache first. Users without a row default to Russian.
func (s *Service) GetUserLang(userID int64) (string, error) {
	if s.Redis != nil {
		if lang, err := s.Redis.Get(s.Ctx, langCacheKey(userID)).Result(); err == nil && lang != "" {
			return lang, nil
		} else if err != nil && !errors.Is(err, redis.Nil) {
			log.Printf("WARN: Redis language cache read failed for %d: %v", userID, err)
		}
	}

	var user models.User
	err := s.DB.Where("user_id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DefaultLang, nil
	}
	if err != nil {
		return "", unavailable(err)
	}

	if s.Redis != nil {
		if err := s.Redis.Set(s.Ctx, langCacheKey(userID), user.Lang, langCacheTTL).Err(); err != nil {
			log.Printf("WARN: Redis language cache write failed for %d: %v", userID, err)
		}
	}
	return user.Lang, nil
}

// SetUserLang upserts the user's language and refreshes the cache.
func (s *Service) SetUserLang(userID int64, lang string) error {
	user := models.User{UserID: userID, Lang: lang}
	if err := s.DB.Save(&user).Error; err != nil {
		return unavailable(err)
	}
	if s.Redis != nil {
		if err := s.Redis.Set(s.Ctx, langCacheKey(userID), lang, langCacheTTL).Err(); err != nil {
			log.Printf("WARN: Redis language cache write failed for %d: %v", userID, err)
		}
	}
	return nil
}

func langCacheKey(userID int64) string {
	return "lang:" + strconv.FormatInt(userID, 10)
}

// ---- Settings / autoresponders ----

// AutorespondersEnabled reports the global autoresponder flag. A missing row
// means disabled.
func (s *Service) AutorespondersEnabled() (bool, error) {
	var setting models.Setting
	err := s.DB.Where("key = ?", models.SettingAutoresEnabled).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, unavailable(err)
	}
	return setting.Value == "1", nil
}

func (s *Service) SetAutorespondersEnabled(enabled bool) error {
	value := "0"
	if enabled {
		value = "1"
	}
	setting := models.Setting{Key: models.SettingAutoresEnabled, Value: value}
	return unavailable(s.DB.Save(&setting).Error)
}

// GetAutoresponderText returns the canned reply for a category, or "" when
// none is configured.
func (s *Service) GetAutoresponderText(category string) (string, error) {
	var ar models.Autoresponder
	err := s.DB.Where("category = ?", category).First(&ar).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", unavailable(err)
	}
	return ar.Text, nil
}

func (s *Service) SetAutoresponderText(category, text string) error {
	ar := models.Autoresponder{Category: category, Text: text}
	return unavailable(s.DB.Save(&ar).Error)
}

// EnsureDefaultSettings seeds the settings that must exist on first start.
// Autoresponders default to enabled, matching a fresh deployment.
func (s *Service) EnsureDefaultSettings() error {
	setting := models.Setting{Key: models.SettingAutoresEnabled, Value: "1"}
	return unavailable(s.DB.Where("key = ?", models.SettingAutoresEnabled).FirstOrCreate(&setting).Error)
}

// ---- Tickets ----

// CreateTicket inserts the ticket and stamps its public id. The public id
// embeds the row's own autoincrement sequence, so it can only be derived
// after the insert; the two statements are not atomic. A crash in between
// leaves a row with an empty ticket_id, which no lookup ever returns and
// which RepairTicketIDs stamps later.
func (s *Service) CreateTicket(userID int64, category, reason, description string) (string, error) {
	t := models.Ticket{
		UserID:      userID,
		Category:    category,
		Reason:      reason,
		Description: description,
		Status:      models.TicketStatusOpen,
	}
	if err := s.DB.Create(&t).Error; err != nil {
		log.Printf("ERROR: Failed to create ticket for user %d: %v", userID, err)
		return "", unavailable(err)
	}

	publicID := TicketID(t.ID, time.Now().UTC())
	err := s.DB.Model(&models.Ticket{}).Where("id = ?", t.ID).Update("ticket_id", publicID).Error
	if err != nil {
		log.Printf("ERROR: Failed to stamp ticket id for row %d: %v", t.ID, err)
		return "", unavailable(err)
	}
	return publicID, nil
}

// GetTicket fetches a ticket by its public id. Returns (nil, nil) when the
// ticket does not exist. Orphaned rows with an empty id are not addressable.
func (s *Service) GetTicket(ticketID string) (*models.Ticket, error) {
	if ticketID == "" {
		return nil, nil
	}
	var t models.Ticket
	err := s.DB.Where("ticket_id = ?", ticketID).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable(err)
	}
	return &t, nil
}

// GetOpenTicketForUser returns the user's current ticket: the most recently
// created one that is still open, or (nil, nil) when there is none.
func (s *Service) GetOpenTicketForUser(userID int64) (*models.Ticket, error) {
	var t models.Ticket
	err := s.DB.Where("user_id = ? AND status = ? AND ticket_id <> ''", userID, models.TicketStatusOpen).
		Order("id DESC").
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable(err)
	}
	return &t, nil
}

// MarkAssigned puts the ticket into the moderator's hands, overwriting any
// previous assignment.
func (s *Service) MarkAssigned(ticketID string, modID int64) error {
	return unavailable(s.DB.Model(&models.Ticket{}).
		Where("ticket_id = ?", ticketID).
		Update("assigned_to", modID).Error)
}

// StoreGroupHeader remembers the ticket card's message id in the group.
func (s *Service) StoreGroupHeader(ticketID string, msgID int) error {
	return unavailable(s.DB.Model(&models.Ticket{}).
		Where("ticket_id = ?", ticketID).
		Update("group_header_msg_id", msgID).Error)
}

// CloseTicket records the terminal state and the closer identity. closedBy is
// nil when the ticket's own user closed it.
func (s *Service) CloseTicket(ticketID string, closedBy *int64, closedByName *string) error {
	return unavailable(s.DB.Model(&models.Ticket{}).
		Where("ticket_id = ?", ticketID).
		Updates(map[string]interface{}{
			"status":         models.TicketStatusClosed,
			"closed_by":      closedBy,
			"closed_by_name": closedByName,
		}).Error)
}

// LastTicketIDs returns the newest ticket ids, newest first.
func (s *Service) LastTicketIDs(limit int) ([]string, error) {
	var ids []string
	err := s.DB.Model(&models.Ticket{}).
		Where("ticket_id <> ''").
		Order("id DESC").
		Limit(limit).
		Pluck("ticket_id", &ids).Error
	if err != nil {
		return nil, unavailable(err)
	}
	return ids, nil
}

// ClosureStats aggregates closed tickets by closer identity, busiest first.
func (s *Service) ClosureStats() ([]ClosureStat, error) {
	var stats []ClosureStat
	err := s.DB.Raw(`
		SELECT COALESCE(closed_by_name, CAST(closed_by AS TEXT)) AS who, COUNT(*) AS count
		FROM tickets
		WHERE status = 'closed' AND closed_by IS NOT NULL
		GROUP BY who
		ORDER BY count DESC
	`).Scan(&stats).Error
	if err != nil {
		return nil, unavailable(err)
	}
	return stats, nil
}

// RepairTicketIDs stamps public ids onto rows orphaned by a crash between
// insert and stamp. Returns the number of repaired rows.
func (s *Service) RepairTicketIDs() (int, error) {
	var orphans []models.Ticket
	if err := s.DB.Where("ticket_id = '' OR ticket_id IS NULL").Find(&orphans).Error; err != nil {
		return 0, unavailable(err)
	}
	repaired := 0
	for _, t := range orphans {
		publicID := TicketID(t.ID, t.CreatedAt.UTC())
		err := s.DB.Model(&models.Ticket{}).Where("id = ?", t.ID).Update("ticket_id", publicID).Error
		if err != nil {
			log.Printf("ERROR: Failed to repair ticket row %d: %v", t.ID, err)
			continue
		}
		log.Printf("INFO: Repaired ticket row %d -> %s", t.ID, publicID)
		repaired++
	}
	return repaired, nil
}

// ---- Message log ----

// RecordMessage appends one audit log entry for the ticket.
func (s *Service) RecordMessage(ticketID, role, text string, userMsgID, groupMsgID *int) error {
	msg := models.TicketMessage{
		TicketID:   ticketID,
		FromRole:   role,
		Text:       text,
		UserMsgID:  userMsgID,
		GroupMsgID: groupMsgID,
	}
	if err := s.DB.Create(&msg).Error; err != nil {
		log.Printf("ERROR: Failed to record message for ticket %s: %v", ticketID, err)
		return unavailable(err)
	}
	return nil
}

// GetTicketHistory returns the full log for a ticket in insertion order.
func (s *Service) GetTicketHistory(ticketID string) ([]models.TicketMessage, error) {
	var history []models.TicketMessage
	err := s.DB.Where("ticket_id = ?", ticketID).Order("id ASC").Find(&history).Error
	if err != nil {
		return nil, unavailable(err)
	}
	return history, nil
}

// GetTicketGroupMsgIDs lists every group-side message recorded for the
// ticket, for the closure sweep.
func (s *Service) GetTicketGroupMsgIDs(ticketID string) ([]int, error) {
	var ids []int
	err := s.DB.Model(&models.TicketMessage{}).
		Where("ticket_id = ? AND group_msg_id IS NOT NULL", ticketID).
		Pluck("group_msg_id", &ids).Error
	if err != nil {
		return nil, unavailable(err)
	}
	return ids, nil
}

// ---- Events ----

// PublishTicketEvent pushes a lifecycle event onto the Redis channel feeding
// the ops dashboards. A nil Redis client makes this a no-op.
func (s *Service) PublishTicketEvent(ev models.TicketEvent) error {
	if s.Redis == nil {
		return nil
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.Redis.Publish(s.Ctx, TicketEventsChannel, payload).Err()
}

// SubscribeTicketEvents subscribes to the lifecycle event channel.
func (s *Service) SubscribeTicketEvents() *redis.PubSub {
	return s.Redis.Subscribe(s.Ctx, TicketEventsChannel)
}
