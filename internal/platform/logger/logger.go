// Package logger provides structured logging functionality for the application.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Setup initializes the application's logging system from the configured log
// level. It creates a structured JSON logger writing to stdout and installs
// it as the default logger so slog package-level functions use it.
//
// An unrecognized level falls back to info with a warning rather than
// failing startup.
func Setup(level string) *slog.Logger {
	return setup(level, os.Stdout)
}

func setup(level string, w io.Writer) *slog.Logger {
	parsed, ok := ParseLevel(level)
	if !ok {
		tmp := slog.New(slog.NewTextHandler(os.Stderr, nil))
		tmp.Warn("invalid log level configured, using default level",
			"configured_level", level,
			"default_level", "info")
		parsed = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parsed})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}

// ParseLevel maps a case-insensitive level name to its slog level.
// The second return value reports whether the name was recognized.
func ParseLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
