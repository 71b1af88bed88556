package telegram_test

import (
	"ticketgogo/backend/internal/models"
	"ticketgogo/backend/internal/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
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

// RecordingTransport captures every outgoing interaction for assertions.
type RecordingTransport struct {
	Sent    []SentMsg
	Copies  []CopyRec
	Edits   []EditRec
	Deleted []int
	Answers []string

	nextMsgID int
}

type SentMsg struct {
	ChatID  int64
	Text    string
	ReplyTo int
	Markup  *tgbotapi.InlineKeyboardMarkup
}

type CopyRec struct {
	ToChatID   int64
	FromChatID int64
	MessageID  int
}

type EditRec struct {
	ChatID    int64
	MessageID int
	Text      string
	Markup    tgbotapi.InlineKeyboardMarkup
}

func NewRecordingTransport() *RecordingTransport {
	return &RecordingTransport{nextMsgID: 1000}
}

func (t *RecordingTransport) SendText(chatID int64, text string) (int, error) {
	t.nextMsgID++
	t.Sent = append(t.Sent, SentMsg{ChatID: chatID, Text: text})
	return t.nextMsgID, nil
}

func (t *RecordingTransport) SendTextWithMarkup(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) (int, error) {
	t.nextMsgID++
	t.Sent = append(t.Sent, SentMsg{ChatID: chatID, Text: text, Markup: &kb})
	return t.nextMsgID, nil
}

func (t *RecordingTransport) ReplyText(chatID int64, replyTo int, text string) (int, error) {
	t.nextMsgID++
	t.Sent = append(t.Sent, SentMsg{ChatID: chatID, Text: text, ReplyTo: replyTo})
	return t.nextMsgID, nil
}

func (t *RecordingTransport) CopyMessage(toChatID, fromChatID int64, messageID int) (int, error) {
	t.nextMsgID++
	t.Copies = append(t.Copies, CopyRec{ToChatID: toChatID, FromChatID: fromChatID, MessageID: messageID})
	return t.nextMsgID, nil
}

func (t *RecordingTransport) EditReplyMarkup(chatID int64, messageID int, kb tgbotapi.InlineKeyboardMarkup) error {
	t.Edits = append(t.Edits, EditRec{ChatID: chatID, MessageID: messageID, Markup: kb})
	return nil
}

func (t *RecordingTransport) EditTextAndMarkup(chatID int64, messageID int, text string, kb tgbotapi.InlineKeyboardMarkup) error {
	t.Edits = append(t.Edits, EditRec{ChatID: chatID, MessageID: messageID, Text: text, Markup: kb})
	return nil
}

func (t *RecordingTransport) DeleteMessage(chatID int64, messageID int) error {
	t.Deleted = append(t.Deleted, messageID)
	return nil
}

func (t *RecordingTransport) AnswerCallback(callbackID string) error {
	t.Answers = append(t.Answers, callbackID)
	return nil
}

// SentTo returns every text sent to the chat, in order.
func (t *RecordingTransport) SentTo(chatID int64) []string {
	var out []string
	for _, s := range t.Sent {
		if s.ChatID == chatID {
			out = append(out, s.Text)
		}
	}
	return out
}
