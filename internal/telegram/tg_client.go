package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Transport is everything the router needs from Telegram: delivery, content
// copying, control-surface edits and deletion. *Client is the real
// implementation; tests substitute a mock. It is a superset of
// ticket.Transport, so one value serves both consumers.
type Transport interface {
	SendText(chatID int64, text string) (int, error)
	SendTextWithMarkup(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) (int, error)
	ReplyText(chatID int64, replyTo int, text string) (int, error)
	CopyMessage(toChatID, fromChatID int64, messageID int) (int, error)
	EditReplyMarkup(chatID int64, messageID int, kb tgbotapi.InlineKeyboardMarkup) error
	EditTextAndMarkup(chatID int64, messageID int, text string, kb tgbotapi.InlineKeyboardMarkup) error
	DeleteMessage(chatID int64, messageID int) error
	AnswerCallback(callbackID string) error
}

// Client wraps the Telegram Bot API as the transport collaborator.
type Client struct {
	API *tgbotapi.BotAPI
}

func NewClient(api *tgbotapi.BotAPI) *Client {
	return &Client{API: api}
}

// SendText delivers plain text and returns the new message id.
func (c *Client) SendText(chatID int64, text string) (int, error) {
	sent, err := c.API.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// SendTextWithMarkup delivers text carrying an inline keyboard.
func (c *Client) SendTextWithMarkup(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	sent, err := c.API.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// ReplyText delivers text as a reply to an existing message.
func (c *Client) ReplyText(chatID int64, replyTo int, text string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyToMessageID = replyTo
	sent, err := c.API.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// CopyMessage re-posts arbitrary content (including media) into another chat
// without the "forwarded from" attribution and returns the copy's id.
func (c *Client) CopyMessage(toChatID, fromChatID int64, messageID int) (int, error) {
	copied, err := c.API.CopyMessage(tgbotapi.NewCopyMessage(toChatID, fromChatID, messageID))
	if err != nil {
		return 0, err
	}
	return copied.MessageID, nil
}

// EditReplyMarkup swaps the inline keyboard on an existing message.
func (c *Client) EditReplyMarkup(chatID int64, messageID int, kb tgbotapi.InlineKeyboardMarkup) error {
	_, err := c.API.Request(tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, kb))
	return err
}

// EditTextAndMarkup rewrites an existing message and its keyboard in place.
func (c *Client) EditTextAndMarkup(chatID int64, messageID int, text string, kb tgbotapi.InlineKeyboardMarkup) error {
	_, err := c.API.Request(tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, kb))
	return err
}

// DeleteMessage removes a message the bot posted earlier.
func (c *Client) DeleteMessage(chatID int64, messageID int) error {
	_, err := c.API.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
	return err
}

// AnswerCallback acknowledges a button press, clearing the client-side
// loading spinner.
func (c *Client) AnswerCallback(callbackID string) error {
	_, err := c.API.Request(tgbotapi.NewCallback(callbackID, ""))
	return err
}
