// Package log configures structured logging for the flow binaries. Output is
// logfmt text on stderr; set LOG_FORMAT=json when shipping to an ingestion
// pipeline.
package log

import (
	"log/slog"
	"os"
)

// Setup installs the process-wide default logger. Every record carries a
// service field so flow lines are filterable next to the other Convy
// services' output.
func Setup(logLevel string) {
	opts := &slog.HandlerOptions{Level: parseLevel(logLevel)}

	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if os.Getenv("LOG_FORMAT") == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler).With("service", "flow"))
}

func parseLevel(logLevel string) slog.Level {
	switch logLevel {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithModule tags a logger for one subsystem (engine, runner, api, ...).
func WithModule(module string) *slog.Logger {
	return slog.With("module", module)
}
