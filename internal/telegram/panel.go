package telegram

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"ticketgogo/backend/internal/config"
	"ticketgogo/backend/internal/ticket"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// handleCallback acknowledges the press first, then dispatches on the payload
// prefix. Unknown or malformed payloads are dropped after the ack.
func (b *BotService) handleCallback(cb *tgbotapi.CallbackQuery) {
	if err := b.Transport.AnswerCallback(cb.ID); err != nil {
		log.Printf("WARN: Failed to answer callback %s: %v", cb.ID, err)
	}
	if cb.Message == nil || cb.From == nil {
		return
	}

	switch {
	case strings.HasPrefix(cb.Data, "lang:"):
		b.cbLanguage(cb, strings.TrimPrefix(cb.Data, "lang:"))
	case strings.HasPrefix(cb.Data, "cat:"):
		b.cbCategory(cb, strings.TrimPrefix(cb.Data, "cat:"))
	case strings.HasPrefix(cb.Data, "t:"):
		b.cbTicketAction(cb)
	case strings.HasPrefix(cb.Data, "p:"):
		b.cbPanel(cb)
	case strings.HasPrefix(cb.Data, "ar:"):
		b.cbAutores(cb)
	}
}

func (b *BotService) cbLanguage(cb *tgbotapi.CallbackQuery, lang string) {
	userID := cb.From.ID
	if err := b.Storage.SetUserLang(userID, lang); err != nil {
		log.Printf("ERROR: Failed to set language %q for user %d: %v", lang, userID, err)
		b.sendLocalized(userID, "service_unavailable")
		return
	}
	text := b.Localizer.GetString(lang, "choose_category")
	if _, err := b.Transport.SendTextWithMarkup(userID, text, categoryKeyboard(b.Localizer, lang)); err != nil {
		log.Printf("ERROR: Failed to send category menu to %d: %v", userID, err)
	}
}

func (b *BotService) cbCategory(cb *tgbotapi.CallbackQuery, category string) {
	if _, ok := config.CategoryTitles[category]; !ok {
		return
	}
	userID := cb.From.ID
	b.Sessions.BeginDraft(userID, category)
	b.sendLocalized(userID, "ask_reason")
}

// cbTicketAction handles the ticket card buttons. Payload: "t:<id>:<action>".
func (b *BotService) cbTicketAction(cb *tgbotapi.CallbackQuery) {
	parts := strings.SplitN(cb.Data, ":", 3)
	if len(parts) != 3 || parts[1] == "" {
		return
	}
	// Card buttons only live in the moderator group.
	if cb.Message.Chat.ID != b.ModGroupID {
		return
	}
	ticketID, action := parts[1], parts[2]

	switch action {
	case "hist":
		txt, err := b.Tickets.HistoryText(ticketID, config.HistoryButtonLimit)
		if err != nil {
			log.Printf("ERROR: Failed to render history for %s: %v", ticketID, err)
			b.replyGroup(cb.Message, "Хранилище недоступно, попробуйте позже.")
			return
		}
		b.replyGroup(cb.Message, txt)

	case "take":
		modID := cb.From.ID
		if err := b.Tickets.Assign(ticketID, modID); err != nil {
			switch {
			case errors.Is(err, ticket.ErrNotFound):
				b.replyGroup(cb.Message, "Тикет не найден.")
			case errors.Is(err, ticket.ErrClosed):
				b.replyGroup(cb.Message, "Тикет уже закрыт.")
			default:
				log.Printf("ERROR: Failed to assign ticket %s: %v", ticketID, err)
				b.replyGroup(cb.Message, "Хранилище недоступно, попробуйте позже.")
			}
			return
		}
		// Claiming a ticket ends any reply mode the moderator had elsewhere.
		b.Sessions.Exit(modID)
		if err := b.Transport.EditReplyMarkup(b.ModGroupID, cb.Message.MessageID, ticketKeyboard(ticketID, &modID)); err != nil {
			log.Printf("WARN: Failed to update card keyboard for %s: %v", ticketID, err)
		}
		b.replyGroup(cb.Message, fmt.Sprintf("Тикет %s взят в работу %s", ticketID, displayName(cb.From)))

	case "reply":
		b.Sessions.Enter(cb.From.ID, ticketID)
		b.replyGroup(cb.Message, fmt.Sprintf("✍️ Режим ответа включён для %s. Все ваши сообщения в этой группе будут пересылаться пользователю, пока не введёте /end.", ticketID))

	case "close":
		modID := cb.From.ID
		name := displayName(cb.From)
		res, err := b.Tickets.Close(ticketID, &modID, &name)
		if err != nil {
			if errors.Is(err, ticket.ErrNotFound) {
				b.replyGroup(cb.Message, "Тикет не найден.")
				return
			}
			log.Printf("ERROR: Failed to close ticket %s: %v", ticketID, err)
			b.replyGroup(cb.Message, "Хранилище недоступно, попробуйте позже.")
			return
		}
		if res.AlreadyClosed {
			b.replyGroup(cb.Message, fmt.Sprintf("Тикет %s уже закрыт.", ticketID))
			return
		}
		b.replyGroup(cb.Message, fmt.Sprintf("✅ Тикет %s закрыт и сообщения удалены.", ticketID))

	case "noop":
		return
	}
}

// cbPanel handles panel navigation. Payload: "p:<section>[...]".
func (b *BotService) cbPanel(cb *tgbotapi.CallbackQuery) {
	if cb.Message.Chat.ID != b.ModGroupID {
		return
	}
	data := strings.TrimPrefix(cb.Data, "p:")

	switch {
	case data == "stats" || data == "stats:refresh":
		txt, err := b.Tickets.StatsText()
		if err != nil {
			log.Printf("ERROR: Failed to render stats: %v", err)
			b.replyGroup(cb.Message, "Хранилище недоступно, попробуйте позже.")
			return
		}
		if err := b.Transport.EditTextAndMarkup(b.ModGroupID, cb.Message.MessageID, txt, statsKeyboard()); err != nil {
			log.Printf("WARN: Failed to edit stats panel: %v", err)
		}

	case data == "history":
		ids, err := b.Storage.LastTicketIDs(config.LastTicketsLimit)
		if err != nil {
			log.Printf("ERROR: Failed to list recent tickets: %v", err)
			b.replyGroup(cb.Message, "Хранилище недоступно, попробуйте позже.")
			return
		}
		if len(ids) == 0 {
			if err := b.Transport.EditTextAndMarkup(b.ModGroupID, cb.Message.MessageID, "Тикетов пока нет.", backKeyboard()); err != nil {
				log.Printf("WARN: Failed to edit history panel: %v", err)
			}
			return
		}
		if err := b.Transport.EditTextAndMarkup(b.ModGroupID, cb.Message.MessageID, "📜 Выберите тикет:", historyMenuKeyboard(ids)); err != nil {
			log.Printf("WARN: Failed to edit history panel: %v", err)
		}

	case strings.HasPrefix(data, "history:show:"):
		ticketID := strings.TrimPrefix(data, "history:show:")
		exists, err := b.Tickets.Exists(ticketID)
		if err != nil {
			log.Printf("ERROR: Failed to check ticket %s: %v", ticketID, err)
			b.replyGroup(cb.Message, "Хранилище недоступно, попробуйте позже.")
			return
		}
		if !exists {
			b.replyGroup(cb.Message, "Тикет не найден.")
			return
		}
		txt, err := b.Tickets.HistoryText(ticketID, config.HistoryPanelLimit)
		if err != nil {
			log.Printf("ERROR: Failed to render history for %s: %v", ticketID, err)
			b.replyGroup(cb.Message, "Хранилище недоступно, попробуйте позже.")
			return
		}
		b.replyGroup(cb.Message, txt)

	case data == "autores":
		b.editAutoresMenu(cb)

	case data == "status":
		b.replyGroup(cb.Message, fmt.Sprintf("✅ Бот активен\n⏰ Серверное время: %s", time.Now().Format("15:04:05 02.01.2006")))

	case data == "back":
		if err := b.Transport.EditTextAndMarkup(b.ModGroupID, cb.Message.MessageID, "⚙️ Панель управления", panelKeyboard()); err != nil {
			log.Printf("WARN: Failed to restore panel: %v", err)
		}
	}
}

// cbAutores handles autoresponder configuration. Payload: "ar:...".
func (b *BotService) cbAutores(cb *tgbotapi.CallbackQuery) {
	if cb.Message.Chat.ID != b.ModGroupID {
		return
	}
	data := strings.TrimPrefix(cb.Data, "ar:")

	switch {
	case data == "toggle":
		enabled, err := b.Storage.AutorespondersEnabled()
		if err != nil {
			log.Printf("ERROR: Failed to read autoresponder switch: %v", err)
			return
		}
		if err := b.Storage.SetAutorespondersEnabled(!enabled); err != nil {
			log.Printf("ERROR: Failed to flip autoresponder switch: %v", err)
			return
		}
		if err := b.Transport.EditReplyMarkup(b.ModGroupID, cb.Message.MessageID, autoresMenuKeyboard(!enabled)); err != nil {
			log.Printf("WARN: Failed to refresh autoresponder menu: %v", err)
		}

	case strings.HasPrefix(data, "cat:"):
		cat := strings.TrimPrefix(data, "cat:")
		title, ok := config.CategoryTitles[cat]
		if !ok {
			return
		}
		text, err := b.Storage.GetAutoresponderText(cat)
		if err != nil {
			log.Printf("ERROR: Failed to read autoresponder for %s: %v", cat, err)
			b.replyGroup(cb.Message, "Хранилище недоступно, попробуйте позже.")
			return
		}
		if text == "" {
			text = "— не задан —"
		}
		if _, err := b.Transport.SendTextWithMarkup(b.ModGroupID, fmt.Sprintf("%s\n\nТекущий автоответ:\n%s", title, text), autoresCatKeyboard(cat)); err != nil {
			log.Printf("ERROR: Failed to show autoresponder for %s: %v", cat, err)
		}

	case strings.HasPrefix(data, "edit:"):
		cat := strings.TrimPrefix(data, "edit:")
		if _, ok := config.CategoryTitles[cat]; !ok {
			return
		}
		b.pendingAutoresCat = cat
		b.replyGroup(cb.Message, fmt.Sprintf("✏️ Отправьте новый текст автоответа для: %s", config.CategoryTitles[cat]))
	}
}

func (b *BotService) editAutoresMenu(cb *tgbotapi.CallbackQuery) {
	enabled, err := b.Storage.AutorespondersEnabled()
	if err != nil {
		log.Printf("ERROR: Failed to read autoresponder switch: %v", err)
		b.replyGroup(cb.Message, "Хранилище недоступно, попробуйте позже.")
		return
	}
	if err := b.Transport.EditTextAndMarkup(b.ModGroupID, cb.Message.MessageID, "🤖 Настройки автоответчиков", autoresMenuKeyboard(enabled)); err != nil {
		log.Printf("WARN: Failed to edit autoresponder menu: %v", err)
	}
}
