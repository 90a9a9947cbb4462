package config_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/raphaelgruber/signchat/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{
		"SIGNCHAT_SERVER_URL", "SIGNCHAT_CLIENT_TIMEOUT", "SIGNCHAT_LOG_FILE",
		"SIGNCHAT_LOG_LEVEL", "SIGNCHAT_EMAIL_FIRST", "SIGNCHAT_EMAIL_KEYWORD_FALLBACK",
		"SIGNCHAT_QUOTE_DELAY",
	} {
		t.Setenv(key, "")
	}

	cfg := config.Load()

	assert.Equal(t, "http://localhost:5000", cfg.ServerURL)
	assert.Equal(t, 60*time.Second, cfg.ClientTimeout)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.False(t, cfg.EmailFirst)
	assert.True(t, cfg.EmailKeywordFallback)
	assert.Zero(t, cfg.QuoteFormDelay)
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SIGNCHAT_SERVER_URL", "https://chat.example.com/")
	t.Setenv("SIGNCHAT_CLIENT_TIMEOUT", "5s")
	t.Setenv("SIGNCHAT_LOG_LEVEL", "debug")
	t.Setenv("SIGNCHAT_EMAIL_FIRST", "true")
	t.Setenv("SIGNCHAT_EMAIL_KEYWORD_FALLBACK", "false")
	t.Setenv("SIGNCHAT_QUOTE_DELAY", "1s")

	cfg := config.Load()

	assert.Equal(t, "https://chat.example.com", cfg.ServerURL, "trailing slash is trimmed")
	assert.Equal(t, 5*time.Second, cfg.ClientTimeout)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.True(t, cfg.EmailFirst)
	assert.False(t, cfg.EmailKeywordFallback)
	assert.Equal(t, time.Second, cfg.QuoteFormDelay)
}

func TestLoadInvalidDurationFallsBack(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SIGNCHAT_CLIENT_TIMEOUT", "soon")

	cfg := config.Load()
	assert.Equal(t, 60*time.Second, cfg.ClientTimeout)
}

func TestSetupLoggerWithWriters(t *testing.T) {
	var console, file bytes.Buffer
	logger := config.SetupLoggerWithWriters(&console, &file, slog.LevelInfo)

	logger.Debug("hidden")
	logger.Info("chat sent", "session", "session_1")

	assert.Contains(t, console.String(), "chat sent")
	assert.NotContains(t, console.String(), "hidden")
	assert.Contains(t, file.String(), `"msg":"chat sent"`)
}

func TestSetupLoggerFileOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "signchat.log")

	logger, cleanup := config.SetupLogger(path, slog.LevelInfo, nil)
	logger.Info("file only")
	require.NoError(t, cleanup())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "file only")
}
