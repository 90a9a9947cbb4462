package client

import (
	"log/slog"
	"net/http"
	"time"
)

// maxPathLogLen is the maximum length for logged request paths before truncation.
const maxPathLogLen = 200

// slowRequestThreshold is the duration above which requests are logged at WARN level.
const slowRequestThreshold = 5 * time.Second

// loggingTransport logs every backend request with timing.
// Slow requests are logged at WARN level, failures at ERROR.
type loggingTransport struct {
	next   http.RoundTripper
	logger *slog.Logger
}

// RoundTrip implements http.RoundTripper.
func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	resp, err := t.next.RoundTrip(req)

	duration := time.Since(start)
	attrs := []any{
		"method", req.Method,
		"path", truncate(req.URL.Path, maxPathLogLen),
		"duration_ms", duration.Milliseconds(),
	}

	switch {
	case err != nil:
		attrs = append(attrs, "error", err.Error())
		t.logger.Error("request failed", attrs...)
	case resp.StatusCode >= http.StatusBadRequest:
		attrs = append(attrs, "status", resp.StatusCode)
		t.logger.Error("request rejected", attrs...)
	case duration > slowRequestThreshold:
		attrs = append(attrs, "status", resp.StatusCode)
		t.logger.Warn("slow request", attrs...)
	default:
		attrs = append(attrs, "status", resp.StatusCode)
		t.logger.Debug("request completed", attrs...)
	}

	return resp, err
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
