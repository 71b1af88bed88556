// Package telegram is the relay router: it owns the long-poll loop and
// dispatches every update by origin chat. Private chats are the user side of
// the relay, the moderator group is the other side; all ticket mutations run
// on this single loop.
package telegram

import (
	"fmt"
	"log"
	"strings"
	"time"

	"ticketgogo/backend/internal/config"
	"ticketgogo/backend/internal/localization"
	"ticketgogo/backend/internal/models"
	"ticketgogo/backend/internal/session"
	"ticketgogo/backend/internal/storage"
	"ticketgogo/backend/internal/ticket"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BotService routes updates between users and the moderator group.
type BotService struct {
	API       *tgbotapi.BotAPI
	Transport Transport
	Storage   storage.Storage
	Tickets   *ticket.Service
	Sessions  *session.Store
	Localizer *localization.Localizer

	ModGroupID int64

	// pendingAutoresCat is set while a moderator is typing a new autoresponder
	// text; the next free-form group message becomes that category's reply.
	pendingAutoresCat string
}

func NewBotService(api *tgbotapi.BotAPI, transport Transport, s storage.Storage, tickets *ticket.Service, sessions *session.Store, loc *localization.Localizer, modGroupID int64) *BotService {
	return &BotService{
		API:        api,
		Transport:  transport,
		Storage:    s,
		Tickets:    tickets,
		Sessions:   sessions,
		Localizer:  loc,
		ModGroupID: modGroupID,
	}
}

// Run starts the long-poll loop and blocks until the update channel closes.
func (b *BotService) Run() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	log.Printf("INFO: Bot authorized as @%s, relaying for group %d", b.API.Self.UserName, b.ModGroupID)

	for update := range b.API.GetUpdatesChan(u) {
		b.HandleUpdate(update)
	}
}

// HandleUpdate dispatches a single update. Exported so tests can drive the
// router without a live long poll.
func (b *BotService) HandleUpdate(update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		b.handleCallback(update.CallbackQuery)
		return
	}
	if update.Message != nil {
		b.handleMessage(update.Message)
	}
}

func (b *BotService) handleMessage(msg *tgbotapi.Message) {
	if msg.Chat.IsPrivate() {
		b.handleUserMessage(msg)
		return
	}
	if msg.Chat.ID == b.ModGroupID {
		b.handleGroupMessage(msg)
	}
	// Messages from any other chat are ignored.
}

// ---- User side ----

func (b *BotService) handleUserMessage(msg *tgbotapi.Message) {
	userID := msg.From.ID
	if err := b.Storage.SaveUserIfNotExists(userID); err != nil {
		log.Printf("ERROR: Failed to save user %d: %v", userID, err)
	}

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			if _, err := b.Transport.SendTextWithMarkup(userID, "Выберите язык / Choose your language:", languageKeyboard()); err != nil {
				log.Printf("ERROR: Failed to send language menu to %d: %v", userID, err)
			}
		case "close":
			b.handleUserClose(msg)
		}
		return
	}

	b.handleUserText(msg)
}

func (b *BotService) handleUserClose(msg *tgbotapi.Message) {
	userID := msg.From.ID
	t, err := b.Storage.GetOpenTicketForUser(userID)
	if err != nil {
		log.Printf("ERROR: Failed to look up open ticket for user %d: %v", userID, err)
		b.sendLocalized(userID, "service_unavailable")
		return
	}
	if t == nil {
		b.sendLocalized(userID, "no_open_tickets")
		return
	}

	if _, err := b.Tickets.Close(t.TicketID, nil, nil); err != nil {
		log.Printf("ERROR: Failed to close ticket %s for user %d: %v", t.TicketID, userID, err)
		b.sendLocalized(userID, "service_unavailable")
		return
	}

	lang := b.lang(userID)
	if _, err := b.Transport.SendText(userID, fmt.Sprintf(b.Localizer.GetString(lang, "ticket_closed_self"), t.TicketID)); err != nil {
		log.Printf("ERROR: Failed to confirm closure to user %d: %v", userID, err)
	}
	// Group notice is informational; closure already happened.
	if _, err := b.Transport.SendText(b.ModGroupID, fmt.Sprintf("❌ Тикет %s закрыт пользователем.", t.TicketID)); err != nil {
		log.Printf("WARN: Failed to post user-closure notice for %s: %v", t.TicketID, err)
	}
}

func (b *BotService) handleUserText(msg *tgbotapi.Message) {
	userID := msg.From.ID

	if draft, ok := b.Sessions.GetDraft(userID); ok {
		switch draft.Stage {
		case session.StageAwaitingReason:
			answer := messageText(msg)
			if answer == "" {
				b.sendLocalized(userID, "ask_reason")
				return
			}
			b.Sessions.SetReason(userID, answer)
			b.sendLocalized(userID, "ask_description")
		case session.StageAwaitingDescription:
			b.createTicket(msg, draft)
		}
		return
	}

	t, err := b.Storage.GetOpenTicketForUser(userID)
	if err != nil {
		log.Printf("ERROR: Failed to look up open ticket for user %d: %v", userID, err)
		b.sendLocalized(userID, "service_unavailable")
		return
	}
	if t == nil {
		b.sendLocalized(userID, "no_ticket_hint")
		return
	}

	b.relayUserMessage(msg, t)
}

// relayUserMessage forwards a user message into the group under the ticket's
// heading: a plain-text head first, then a verbatim copy of the content.
func (b *BotService) relayUserMessage(msg *tgbotapi.Message, t *models.Ticket) {
	head := fmt.Sprintf("[%s] Сообщение от пользователя %s (ID: %d):", t.TicketID, displayName(msg.From), msg.From.ID)
	headID, err := b.Transport.SendText(b.ModGroupID, head)
	if err != nil {
		log.Printf("ERROR: Failed to post message head for ticket %s: %v", t.TicketID, err)
		b.sendLocalized(msg.From.ID, "service_unavailable")
		return
	}
	if err := b.Storage.RecordMessage(t.TicketID, models.RoleSystem, head, nil, &headID); err != nil {
		log.Printf("ERROR: Failed to record message head for ticket %s: %v", t.TicketID, err)
	}

	copyID, err := b.Transport.CopyMessage(b.ModGroupID, msg.Chat.ID, msg.MessageID)
	if err != nil {
		log.Printf("ERROR: Failed to copy user message for ticket %s: %v", t.TicketID, err)
		b.sendLocalized(msg.From.ID, "service_unavailable")
		return
	}

	text := messageText(msg)
	if text == "" {
		text = "[media]"
	}
	userMsgID := msg.MessageID
	if err := b.Storage.RecordMessage(t.TicketID, models.RoleUser, text, &userMsgID, &copyID); err != nil {
		log.Printf("ERROR: Failed to record user message for ticket %s: %v", t.TicketID, err)
	}
}

// createTicket finalizes the dialogue: persist, confirm to the user, post the
// header card to the group and fire the autoresponder. The group card is the
// moderators' only handle on the ticket, so a failed card delivery aborts the
// operation.
func (b *BotService) createTicket(msg *tgbotapi.Message, draft session.Draft) {
	userID := msg.From.ID
	description := messageText(msg)

	ticketID, err := b.Tickets.Create(userID, draft.Category, draft.Reason, description)
	if err != nil {
		log.Printf("ERROR: Failed to create ticket for user %d: %v", userID, err)
		b.sendLocalized(userID, "service_unavailable")
		return
	}
	b.Sessions.ClearDraft(userID)

	lang := b.lang(userID)
	if _, err := b.Transport.SendText(userID, fmt.Sprintf(b.Localizer.GetString(lang, "ticket_created"), ticketID)); err != nil {
		log.Printf("ERROR: Failed to confirm ticket %s to user %d: %v", ticketID, userID, err)
	}

	header := fmt.Sprintf("🆕 Новый тикет %s\nКатегория: %s\nПричина: %s\nОписание: %s\nОт: %s (ID: %d)",
		ticketID,
		orDash(config.CategoryTitles[draft.Category]),
		orDash(draft.Reason),
		orDash(description),
		displayName(msg.From),
		userID,
	)
	headerID, err := b.Transport.SendTextWithMarkup(b.ModGroupID, header, ticketKeyboard(ticketID, nil))
	if err != nil {
		log.Printf("ERROR: Failed to post header card for ticket %s: %v", ticketID, err)
		b.sendLocalized(userID, "service_unavailable")
		return
	}
	if err := b.Storage.StoreGroupHeader(ticketID, headerID); err != nil {
		log.Printf("ERROR: Failed to store header id for ticket %s: %v", ticketID, err)
	}
	if err := b.Storage.RecordMessage(ticketID, models.RoleSystem, header, nil, &headerID); err != nil {
		log.Printf("ERROR: Failed to record header for ticket %s: %v", ticketID, err)
	}

	b.sendAutoresponse(userID, ticketID, draft.Category)

	userMsgID := msg.MessageID
	record := fmt.Sprintf("[Причина] %s\n[Описание] %s", draft.Reason, description)
	if err := b.Storage.RecordMessage(ticketID, models.RoleUser, record, &userMsgID, nil); err != nil {
		log.Printf("ERROR: Failed to record creation answers for ticket %s: %v", ticketID, err)
	}
}

// sendAutoresponse sends the category's canned reply when the feature is on
// and a text is configured. Failures never disturb the creation flow.
func (b *BotService) sendAutoresponse(userID int64, ticketID, category string) {
	enabled, err := b.Storage.AutorespondersEnabled()
	if err != nil {
		log.Printf("WARN: Failed to read autoresponder switch: %v", err)
		return
	}
	if !enabled {
		return
	}
	text, err := b.Storage.GetAutoresponderText(category)
	if err != nil {
		log.Printf("WARN: Failed to read autoresponder for %s: %v", category, err)
		return
	}
	if text == "" {
		return
	}
	if _, err := b.Transport.SendText(userID, text); err != nil {
		log.Printf("WARN: Failed to send autoresponse for ticket %s: %v", ticketID, err)
	}
}

// ---- Group side ----

func (b *BotService) handleGroupMessage(msg *tgbotapi.Message) {
	if msg.IsCommand() {
		switch msg.Command() {
		case "end":
			b.handleEnd(msg)
			return
		case "panel":
			if _, err := b.Transport.SendTextWithMarkup(b.ModGroupID, "⚙️ Панель управления", panelKeyboard()); err != nil {
				log.Printf("ERROR: Failed to send panel: %v", err)
			}
			return
		case "history":
			b.handleHistoryCommand(msg)
			return
		case "stats":
			b.handleStatsCommand(msg)
			return
		case "status":
			b.replyGroup(msg, fmt.Sprintf("✅ Бот работает\n⏰ Время сервера: %s", time.Now().Format("15:04:05 02.01.2006")))
			return
		}
	}

	if b.relayModMessage(msg) {
		return
	}

	if b.pendingAutoresCat != "" && msg.Text != "" {
		cat := b.pendingAutoresCat
		b.pendingAutoresCat = ""
		if err := b.Storage.SetAutoresponderText(cat, msg.Text); err != nil {
			log.Printf("ERROR: Failed to update autoresponder for %s: %v", cat, err)
			b.replyGroup(msg, "Не удалось сохранить автоответ.")
			return
		}
		b.replyGroup(msg, "✅ Текст автоответа обновлён.")
	}
}

// relayModMessage forwards a reply-mode message to the ticket's user. Returns
// true when the message was consumed by reply mode, whether or not it was
// relayed: command-looking messages are swallowed, and a session pointing at
// a dead ticket is dropped silently.
func (b *BotService) relayModMessage(msg *tgbotapi.Message) bool {
	ticketID, ok := b.Sessions.Lookup(msg.From.ID)
	if !ok {
		return false
	}
	if strings.HasPrefix(msg.Text, "/") || strings.HasPrefix(msg.Text, ".") {
		return true
	}

	t, err := b.Storage.GetTicket(ticketID)
	if err != nil {
		log.Printf("ERROR: Failed to load ticket %s for reply relay: %v", ticketID, err)
		return true
	}
	if t == nil || t.Status != models.TicketStatusOpen {
		// The ticket died under the session; end the session without relaying.
		b.Sessions.Exit(msg.From.ID)
		return true
	}

	if _, err := b.Transport.CopyMessage(t.UserID, b.ModGroupID, msg.MessageID); err != nil {
		log.Printf("ERROR: Failed to relay moderator message for ticket %s: %v", ticketID, err)
		b.replyGroup(msg, "Не удалось доставить сообщение пользователю.")
		return true
	}

	text := messageText(msg)
	if text == "" {
		text = "[media]"
	}
	groupMsgID := msg.MessageID
	if err := b.Storage.RecordMessage(ticketID, models.RoleMod, text, nil, &groupMsgID); err != nil {
		log.Printf("ERROR: Failed to record moderator message for ticket %s: %v", ticketID, err)
	}
	return true
}

func (b *BotService) handleEnd(msg *tgbotapi.Message) {
	if ticketID, ok := b.Sessions.Exit(msg.From.ID); ok {
		b.replyGroup(msg, fmt.Sprintf("🛑 Режим ответа для %s завершён.", ticketID))
	} else {
		b.replyGroup(msg, "У вас нет активного режима ответа.")
	}
}

func (b *BotService) handleHistoryCommand(msg *tgbotapi.Message) {
	ticketID := strings.TrimSpace(msg.CommandArguments())
	if ticketID == "" {
		b.replyGroup(msg, "Использование: /history <TICKET_ID>")
		return
	}
	exists, err := b.Tickets.Exists(ticketID)
	if err != nil {
		log.Printf("ERROR: Failed to check ticket %s: %v", ticketID, err)
		b.replyGroup(msg, "Хранилище недоступно, попробуйте позже.")
		return
	}
	if !exists {
		b.replyGroup(msg, "Тикет не найден.")
		return
	}
	txt, err := b.Tickets.HistoryText(ticketID, config.HistoryPanelLimit)
	if err != nil {
		log.Printf("ERROR: Failed to render history for %s: %v", ticketID, err)
		b.replyGroup(msg, "Хранилище недоступно, попробуйте позже.")
		return
	}
	b.replyGroup(msg, txt)
}

func (b *BotService) handleStatsCommand(msg *tgbotapi.Message) {
	txt, err := b.Tickets.StatsText()
	if err != nil {
		log.Printf("ERROR: Failed to render stats: %v", err)
		b.replyGroup(msg, "Хранилище недоступно, попробуйте позже.")
		return
	}
	b.replyGroup(msg, txt)
}

// ---- Helpers ----

func (b *BotService) replyGroup(msg *tgbotapi.Message, text string) {
	if _, err := b.Transport.ReplyText(b.ModGroupID, msg.MessageID, text); err != nil {
		log.Printf("ERROR: Failed to reply in group: %v", err)
	}
}

func (b *BotService) sendLocalized(userID int64, key string) {
	if _, err := b.Transport.SendText(userID, b.Localizer.GetString(b.lang(userID), key)); err != nil {
		log.Printf("ERROR: Failed to send %q to user %d: %v", key, userID, err)
	}
}

func (b *BotService) lang(userID int64) string {
	lang, err := b.Storage.GetUserLang(userID)
	if err != nil || lang == "" {
		return models.DefaultLang
	}
	return lang
}

// messageText returns the textual content of a message: its text, or the
// caption when the content is media. Empty only for caption-less media.
func messageText(msg *tgbotapi.Message) string {
	if msg.Text != "" {
		return msg.Text
	}
	return msg.Caption
}

func displayName(u *tgbotapi.User) string {
	if u == nil {
		return "?"
	}
	if u.UserName != "" {
		return "@" + u.UserName
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	return fmt.Sprintf("%d", u.ID)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "—"
	}
	return s
}
