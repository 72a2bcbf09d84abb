package config

import "github.com/charmbracelet/log"

// Config holds all configuration for the application.
type Config struct {
	DatabaseURL   string
	Port          string
	AdminPassword string
	LogLevel      log.Level
	Slack         SlackConfig
	Turso         TursoConfig
}

type SlackConfig struct {
	Token         string
	ChannelID     string
	SigningSecret string
}

// Enabled reports whether messages can be posted to a channel.
func (c SlackConfig) Enabled() bool {
	return c.Token != "" && c.ChannelID != ""
}

type TursoConfig struct {
	AuthToken string
}
