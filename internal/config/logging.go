package config

import (
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// SetupLogger creates the client logger: human-readable text to console and
// JSON lines to logFile. A nil console keeps the terminal clean, which the
// interactive chat needs while it owns the screen.
// Returns the logger and a cleanup function that closes the file.
func SetupLogger(logFile string, level slog.Level, console io.Writer) (*slog.Logger, func() error) {
	opts := &slog.HandlerOptions{Level: level}

	var handlers []slog.Handler
	if console != nil {
		handlers = append(handlers, slog.NewTextHandler(console, opts))
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		if console == nil {
			return slog.New(slog.DiscardHandler), func() error { return nil }
		}
		logger := slog.New(handlers[0])
		logger.Warn("failed to open log file, logging to console only", "error", err, "file", logFile)
		return logger, func() error { return nil }
	}

	handlers = append(handlers, slog.NewJSONHandler(file, opts))
	return slog.New(slogmulti.Fanout(handlers...)), file.Close
}

// SetupLoggerWithWriters creates a logger with custom writers (for testing).
func SetupLoggerWithWriters(console, file io.Writer, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	return slog.New(slogmulti.Fanout(
		slog.NewTextHandler(console, opts),
		slog.NewJSONHandler(file, opts),
	))
}
