package ticket

// Transport is the slice of the messaging collaborator the state machine
// needs: user notification on closure and the group-artifact sweep. The
// Telegram client implements it; tests substitute a mock.
type Transport interface {
	// SendText delivers text to a chat and returns the message id.
	SendText(chatID int64, text string) (int, error)
	// DeleteMessage removes a previously delivered message.
	DeleteMessage(chatID int64, messageID int) error
}
