package models

// User is a support-bot user, keyed by their Telegram id. A row is created on
// first interaction and only the preferred language ever changes afterwards.
type User struct {
	UserID int64  `gorm:"primaryKey"`
	Lang   string `gorm:"type:text;not null;default:'ru'"`
}

// DefaultLang is assumed for users who never picked a language.
const DefaultLang = "ru"
