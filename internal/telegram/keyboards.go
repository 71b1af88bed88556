package telegram

import (
	"fmt"

	"ticketgogo/backend/internal/config"
	"ticketgogo/backend/internal/localization"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback payload prefixes. Ticket actions travel as "t:<ticket_id>:<action>",
// panel navigation as "p:...", autoresponder config as "ar:...".

func languageKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🇷🇺 Русский", "lang:ru"),
			tgbotapi.NewInlineKeyboardButtonData("🇬🇧 English", "lang:en"),
		),
	)
}

func categoryKeyboard(loc *localization.Localizer, lang string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, cat := range config.Categories {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(loc.GetString(lang, "cat_"+cat), "cat:"+cat),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// ticketKeyboard is the ticket card's control surface. The last row is a
// static assignment indicator, not a command.
func ticketKeyboard(ticketID string, assignedTo *int64) tgbotapi.InlineKeyboardMarkup {
	assignedStr := "🤷‍♂️ Свободен"
	if assignedTo != nil {
		assignedStr = fmt.Sprintf("👨‍💻 В работе у %d", *assignedTo)
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📜 История", fmt.Sprintf("t:%s:hist", ticketID)),
			tgbotapi.NewInlineKeyboardButtonData("✋ Взять тикет", fmt.Sprintf("t:%s:take", ticketID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✉️ Ответить", fmt.Sprintf("t:%s:reply", ticketID)),
			tgbotapi.NewInlineKeyboardButtonData("✅ Закрыть", fmt.Sprintf("t:%s:close", ticketID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(assignedStr, fmt.Sprintf("t:%s:noop", ticketID)),
		),
	)
}

func panelKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Статистика", "p:stats"),
			tgbotapi.NewInlineKeyboardButtonData("📜 История", "p:history"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🤖 Автоответчики", "p:autores"),
			tgbotapi.NewInlineKeyboardButtonData("📟 Статус бота", "p:status"),
		),
	)
}

func statsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔁 Обновить", "p:stats:refresh"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", "p:back"),
		),
	)
}

func backKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", "p:back"),
		),
	)
}

// historyMenuKeyboard lists recent tickets two per row.
func historyMenuKeyboard(ids []string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for i, tid := range ids {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(tid, "p:history:show:"+tid))
		if (i+1)%2 == 0 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", "p:back"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func autoresMenuKeyboard(enabled bool) tgbotapi.InlineKeyboardMarkup {
	toggle := "⚪️ Автоответчики [OFF]"
	if enabled {
		toggle = "🔘 Автоответчики [ON]"
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, cat := range config.Categories {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(config.CategoryTitles[cat], "ar:cat:"+cat),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(toggle, "ar:toggle"),
	))
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", "p:back"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func autoresCatKeyboard(cat string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✏️ Изменить автоответ", "ar:edit:"+cat),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", "p:autores"),
		),
	)
}
