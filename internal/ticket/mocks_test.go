package ticket_test

import (
	"ticketgogo/backend/internal/models"
	"ticketgogo/backend/internal/storage"

	"github.com/stretchr/testify/mock"
)

// MockStorage is a testify mock of the storage.Storage interface.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) SaveUserIfNotExists(userID int64) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockStorage) GetUserLang(userID int64) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) SetUserLang(userID int64, lang string) error {
	args := m.Called(userID, lang)
	return args.Error(0)
}

func (m *MockStorage) AutorespondersEnabled() (bool, error) {
	args := m.Called()
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) SetAutorespondersEnabled(enabled bool) error {
	args := m.Called(enabled)
	return args.Error(0)
}

func (m *MockStorage) GetAutoresponderText(category string) (string, error) {
	args := m.Called(category)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) SetAutoresponderText(category, text string) error {
	args := m.Called(category, text)
	return args.Error(0)
}

func (m *MockStorage) CreateTicket(userID int64, category, reason, description string) (string, error) {
	args := m.Called(userID, category, reason, description)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) GetTicket(ticketID string) (*models.Ticket, error) {
	args := m.Called(ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ticket), args.Error(1)
}

func (m *MockStorage) GetOpenTicketForUser(userID int64) (*models.Ticket, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ticket), args.Error(1)
}

func (m *MockStorage) MarkAssigned(ticketID string, modID int64) error {
	args := m.Called(ticketID, modID)
	return args.Error(0)
}

func (m *MockStorage) StoreGroupHeader(ticketID string, msgID int) error {
	args := m.Called(ticketID, msgID)
	return args.Error(0)
}

func (m *MockStorage) CloseTicket(ticketID string, closedBy *int64, closedByName *string) error {
	args := m.Called(ticketID, closedBy, closedByName)
	return args.Error(0)
}

func (m *MockStorage) LastTicketIDs(limit int) ([]string, error) {
	args := m.Called(limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStorage) ClosureStats() ([]storage.ClosureStat, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.ClosureStat), args.Error(1)
}

func (m *MockStorage) RecordMessage(ticketID, role, text string, userMsgID, groupMsgID *int) error {
	args := m.Called(ticketID, role, text, userMsgID, groupMsgID)
	return args.Error(0)
}

func (m *MockStorage) GetTicketHistory(ticketID string) ([]models.TicketMessage, error) {
	args := m.Called(ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TicketMessage), args.Error(1)
}

func (m *MockStorage) GetTicketGroupMsgIDs(ticketID string) ([]int, error) {
	args := m.Called(ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

func (m *MockStorage) PublishTicketEvent(ev models.TicketEvent) error {
	args := m.Called(ev)
	return args.Error(0)
}

// MockTransport records deliveries and deletions, optionally failing on
// chosen message ids.
type MockTransport struct {
	Sent       []SentText
	DeletedIDs []int
	FailDelete map[int]error
	FailSend   error

	nextMsgID int
}

type SentText struct {
	ChatID int64
	Text   string
}

func NewMockTransport() *MockTransport {
	return &MockTransport{FailDelete: make(map[int]error), nextMsgID: 1000}
}

func (t *MockTransport) SendText(chatID int64, text string) (int, error) {
	if t.FailSend != nil {
		return 0, t.FailSend
	}
	t.nextMsgID++
	t.Sent = append(t.Sent, SentText{ChatID: chatID, Text: text})
	return t.nextMsgID, nil
}

func (t *MockTransport) DeleteMessage(chatID int64, messageID int) error {
	if err, ok := t.FailDelete[messageID]; ok {
		return err
	}
	t.DeletedIDs = append(t.DeletedIDs, messageID)
	return nil
}
