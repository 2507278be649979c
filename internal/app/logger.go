package app

import (
	"io"
	"log/slog"
)

// newLogger creates and configures a new slog.Logger instance writing to logW.
// It does not set the global logger, allowing for isolated logger instances.
// Unknown levels fall back to info; any format but "json" gives text output.
func newLogger(levelStr, formatStr string, logW io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(levelStr)); err != nil {
		level = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	if formatStr == "json" {
		return slog.New(slog.NewJSONHandler(logW, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(logW, handlerOpts))
}
