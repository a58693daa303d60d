package config

import (
	"os"
	"strconv"
)

// Config holds client configuration loaded from environment variables.
type Config struct {
	APIBaseURL      string
	LiveWSURL       string
	ArchivePath     string
	Env             string
	NotificationTTL int // seconds
}

// Load reads configuration from environment variables with sensible defaults.
// An empty LIVE_WS_URL disables the live update feed; an empty ARCHIVE_PATH
// disables the on-disk message archive.
func Load() Config {
	return Config{
		APIBaseURL:      envOrDefault("API_BASE_URL", "http://localhost:8080/api"),
		LiveWSURL:       envOrDefault("LIVE_WS_URL", ""),
		ArchivePath:     envOrDefault("ARCHIVE_PATH", "parley.db"),
		Env:             envOrDefault("APP_ENV", "dev"),
		NotificationTTL: envOrDefaultInt("NOTIFICATION_TTL_SECONDS", 5),
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
