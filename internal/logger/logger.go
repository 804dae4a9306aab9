package logger

import (
	"io"
	"log/slog"
)

// Load builds the process logger for env: human-readable debug output in
// development, JSON at info level in production, nothing under test.
func Load(env string, w io.Writer) *slog.Logger {
	switch env {
	case "production":
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	case "test":
		return slog.New(slog.DiscardHandler)
	default:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
