package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Dua quota limits per juma week.
const (
	DuaLimitPerUser = 2
	DuaLimitTotal   = 20

	// DuaWarningWindow: when this few slots remain before DuaLimitTotal,
	// submissions are still allowed but the sender is offered to defer.
	DuaWarningWindow = 5
)

// Config holds everything read from the environment.
type Config struct {
	BotToken      string
	DatabasePath  string
	AdminPassword string
	AdminChatID   int64
}

// Load reads .env (when present) and the environment. BOT_TOKEN is the only
// value without a usable default.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, using system environment variables")
	}

	cfg := Config{
		BotToken:      os.Getenv("BOT_TOKEN"),
		DatabasePath:  os.Getenv("DATABASE_PATH"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminChatID:   parseChatID(os.Getenv("ADMIN_CHAT_ID")),
	}

	if cfg.DatabasePath == "" {
		cfg.DatabasePath = "sadaka_bot.db"
		log.Warn().Str("path", cfg.DatabasePath).Msg("DATABASE_PATH not set, using default")
	}
	if cfg.AdminPassword == "" {
		log.Warn().Msg("ADMIN_PASSWORD not set, admin panel is disabled")
	}

	return cfg
}

func parseChatID(s string) int64 {
	if s == "" {
		return 0
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		log.Warn().Str("value", s).Msg("ADMIN_CHAT_ID is not numeric, ignoring")
		return 0
	}
	return id
}
