package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries every runtime knob the server needs. Values come from the
// environment (optionally seeded by a .env file) and can still be overridden
// by command line flags in main.
type Config struct {
	Addr       string
	DBPath     string
	StaticDir  string
	SessionTTL time.Duration
}

// Load reads an optional .env file and resolves the configuration from the
// environment. A missing .env file is not an error.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:       EnvOrDefault("CUDDLEY_ADDR", ":8080"),
		DBPath:     EnvOrDefault("CUDDLEY_DB_PATH", "data/cuddley.db"),
		StaticDir:  EnvOrDefault("CUDDLEY_STATIC_DIR", "web/dist"),
		SessionTTL: envDuration("CUDDLEY_SESSION_TTL_HOURS", 72) * time.Hour,
	}
}

// EnvOrDefault returns the environment variable value or fallback when it is empty.
func EnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envDuration(key string, fallback int64) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return time.Duration(fallback)
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return time.Duration(fallback)
	}
	return time.Duration(n)
}
