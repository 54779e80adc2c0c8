// Package log wraps log/slog with level and format selection from
// configuration.
package log

import (
	"log/slog"
	"os"
)

// Logger is a thin wrapper so internal packages do not depend on slog
// directly.
type Logger struct {
	*slog.Logger
}

// Config selects level and output format.
type Config struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// NewLogger creates a logger from the given config; a nil config uses
// info-level JSON output.
func NewLogger(cfg *Config) *Logger {
	level := slog.LevelInfo
	if cfg != nil {
		switch cfg.Level {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
	if cfg != nil && cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}
