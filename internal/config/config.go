// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	FrontendURL string
	DBPath      string

	// JWTSecret signs access tokens. Required outside development.
	JWTSecret string
	TokenTTL  time.Duration

	// AgentTurnTimeout bounds a single conversational turn.
	AgentTurnTimeout time.Duration

	// Chat rate limiting, per user.
	ChatRateLimit  int
	ChatRateWindow time.Duration

	Events EventsConfig
}

// EventsConfig controls task event publication.
type EventsConfig struct {
	Enabled bool
	// SidecarURL is the pub/sub sidecar base URL, e.g. http://localhost:3500.
	SidecarURL string
	PubSub     string
	Topic      string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		FrontendURL:      getEnv("FRONTEND_URL", ""),
		DBPath:           getEnv("DB_PATH", "./data/taskyar.db"),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		TokenTTL:         time.Duration(getEnvInt("TOKEN_TTL_MINUTES", 60*24)) * time.Minute,
		AgentTurnTimeout: time.Duration(getEnvInt("AGENT_TURN_TIMEOUT_SECONDS", 30)) * time.Second,
		ChatRateLimit:    getEnvInt("CHAT_RATE_LIMIT", 30),
		ChatRateWindow:   time.Duration(getEnvInt("CHAT_RATE_WINDOW_SECONDS", 60)) * time.Second,
		Events: EventsConfig{
			Enabled:    getEnvBool("EVENTS_ENABLED", true),
			SidecarURL: getEnv("EVENTS_SIDECAR_URL", "http://localhost:3500"),
			PubSub:     getEnv("EVENTS_PUBSUB", "task-pubsub"),
			Topic:      getEnv("EVENTS_TOPIC", "task-events"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.JWTSecret == "" && !c.IsDevelopment() {
		return fmt.Errorf("JWT_SECRET must be set outside development")
	}
	if c.AgentTurnTimeout <= 0 {
		return fmt.Errorf("AGENT_TURN_TIMEOUT_SECONDS must be > 0")
	}
	if c.ChatRateLimit <= 0 {
		return fmt.Errorf("CHAT_RATE_LIMIT must be > 0")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}
