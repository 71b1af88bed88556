// Package config holds the static relay parameters and the environment
// configuration of the support bot.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	// History rendering
	HistoryButtonLimit = 30  // entries shown from the ticket card button
	HistoryPanelLimit  = 50  // entries shown from /history and the panel
	HistoryEntryRunes  = 600 // per-entry cut, keeps the transcript under Telegram's message size cap

	// Panel
	LastTicketsLimit = 10

	// Closure cleanup: pause between group-message deletions so the sweep
	// stays under the transport rate limit.
	DeletePacing = 30 * time.Millisecond

	// Ticket-creation drafts expire this long after the last answer.
	DraftTTL = 30 * time.Minute

	// Ops API tokens
	TokenTTL  = 72 * time.Hour
	JWTIssuer = "ticketgogo-service"
)

// Categories in menu order. Localized captions live in the localization files
// under the "cat_<code>" keys.
var Categories = []string{"tech", "pay", "hwid", "coop", "faq"}

// CategoryTitles are the fixed group-side category captions.
var CategoryTitles = map[string]string{
	"tech": "🔧 Техническая помощь",
	"pay":  "💳 Помощь с платежами",
	"hwid": "🔄 Сброс HWID",
	"coop": "🤝 Сотрудничество",
	"faq":  "❓ FAQ / Цены / Товары",
}

// Config is the process configuration read from the environment.
type Config struct {
	BotToken   string
	ModGroupID int64

	DBDSN         string
	RedisAddr     string
	RedisPassword string

	APIAddr    string
	JWTSecret  string
	LocalePath string
}

// Load reads the configuration from the environment. BOT_TOKEN and
// MOD_GROUP_ID are mandatory, everything else has a local-dev default.
func Load() (*Config, error) {
	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("BOT_TOKEN is not set")
	}

	groupID, err := strconv.ParseInt(os.Getenv("MOD_GROUP_ID"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid MOD_GROUP_ID: %w", err)
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		envOr("DB_HOST", "localhost"),
		envOr("DB_USER", "user"),
		envOr("DB_PASSWORD", "password"),
		envOr("DB_NAME", "ticketgogodb"),
		envOr("DB_PORT", "5432"),
	)

	return &Config{
		BotToken:      token,
		ModGroupID:    groupID,
		DBDSN:         dsn,
		RedisAddr:     envOr("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		APIAddr:       envOr("API_ADDR", ":8080"),
		JWTSecret:     envOr("JWT_SECRET", "change-me-in-production"),
		LocalePath:    envOr("LOCALE_PATH", "internal/localization"),
	}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
