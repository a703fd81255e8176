package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the bot
type Config struct {
	// Discord
	DiscordToken string
	GuildID      string

	// Roster layout
	TeamRolePrefix string
	LeaderRoleID   string
	AdminRoleID    string

	// Subscription store
	SubscriptionsPath string

	// Background refresh
	RefreshIntervalSeconds int

	// Logging
	LogLevel string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		DiscordToken:      os.Getenv("DISCORD_BOT_TOKEN"),
		GuildID:           os.Getenv("DISCORD_GUILD_ID"),
		TeamRolePrefix:    os.Getenv("TEAM_ROLE_PREFIX"),
		LeaderRoleID:      os.Getenv("LEADER_ROLE_ID"),
		AdminRoleID:       os.Getenv("ADMIN_ROLE_ID"),
		SubscriptionsPath: getEnvOrDefault("SUBSCRIPTIONS_PATH", "./data/subscriptions.json"),
		LogLevel:          getEnvOrDefault("LOG_LEVEL", "info"),
	}

	// Parse refresh interval
	refreshStr := getEnvOrDefault("REFRESH_INTERVAL_SECONDS", "300")
	refresh, err := strconv.Atoi(refreshStr)
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL_SECONDS: %w", err)
	}
	cfg.RefreshIntervalSeconds = refresh

	// Validate required fields
	if cfg.DiscordToken == "" {
		return nil, fmt.Errorf("DISCORD_BOT_TOKEN is required")
	}
	if cfg.GuildID == "" {
		return nil, fmt.Errorf("DISCORD_GUILD_ID is required")
	}
	if cfg.LeaderRoleID == "" {
		return nil, fmt.Errorf("LEADER_ROLE_ID is required")
	}
	if cfg.AdminRoleID == "" {
		return nil, fmt.Errorf("ADMIN_ROLE_ID is required")
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
