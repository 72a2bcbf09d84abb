package config

import (
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

const (
	defaultDatabaseURL = "sqlite:///local_dev.sqlite"
	defaultPort        = "8080"
)

// Load reads configuration from environment variables and .env file.
// Every setting has a default, so a bare environment runs against a local SQLite file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	getEnv := func(key, fallback string) string {
		if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
		return fallback
	}

	level, err := log.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		log.Warn("Invalid LOG_LEVEL, falling back to info", "error", err)
		level = log.InfoLevel
	}

	cfg := Config{
		DatabaseURL:   getEnv("DATABASE_URL", defaultDatabaseURL),
		Port:          getEnv("PORT", defaultPort),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		LogLevel:      level,
		Slack: SlackConfig{
			Token:         getEnv("SLACK_BOT_TOKEN", ""),
			ChannelID:     getEnv("SLACK_CHANNEL_ID", ""),
			SigningSecret: getEnv("SLACK_SIGNING_SECRET", ""),
		},
		Turso: TursoConfig{
			AuthToken: getEnv("TURSO_AUTH_TOKEN", ""),
		},
	}
	if cfg.AdminPassword == "" {
		log.Warn("ADMIN_PASSWORD is not set, admin routes are disabled")
	}
	return cfg
}
