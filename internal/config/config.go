package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values.
type Config struct {
	// Backend
	ServerURL     string
	ClientTimeout time.Duration

	// Logging
	LogFile  string
	LogLevel slog.Level

	// Email gate behaviour
	EmailFirst           bool
	EmailKeywordFallback bool

	// Delay before the quote form opens after the backend triggers it.
	QuoteFormDelay time.Duration
}

// Load reads configuration from environment variables, after merging a local
// .env file if one exists.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		ServerURL:     strings.TrimRight(getEnv("SIGNCHAT_SERVER_URL", "http://localhost:5000"), "/"),
		ClientTimeout: parseDuration(getEnv("SIGNCHAT_CLIENT_TIMEOUT", "60s"), 60*time.Second),

		LogFile:  getEnv("SIGNCHAT_LOG_FILE", "/tmp/signchat.log"),
		LogLevel: parseLogLevel(getEnv("SIGNCHAT_LOG_LEVEL", "INFO")),

		EmailFirst:           getEnv("SIGNCHAT_EMAIL_FIRST", "false") == "true",
		EmailKeywordFallback: getEnv("SIGNCHAT_EMAIL_KEYWORD_FALLBACK", "true") == "true",

		QuoteFormDelay: parseDuration(getEnv("SIGNCHAT_QUOTE_DELAY", "0s"), 0),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
