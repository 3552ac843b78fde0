// Package logger configures log/slog for the CLI and the engine.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

type Config struct {
	Level  slog.Level
	Format string    // "text" or "json"
	Output io.Writer // defaults to os.Stderr
}

func NewLogger(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.Level <= slog.LevelDebug,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	return slog.New(handler)
}

// DefaultConfig reads BEATSIM_LOG_LEVEL (DEBUG, INFO, WARN, ERROR) and
// BEATSIM_LOG_FORMAT (text, json). Unset or unknown values give INFO text.
func DefaultConfig() Config {
	level, _ := ParseLevel(os.Getenv("BEATSIM_LOG_LEVEL"))

	format := "text"
	if strings.EqualFold(os.Getenv("BEATSIM_LOG_FORMAT"), "json") {
		format = "json"
	}

	return Config{Level: level, Format: format}
}

// ParseLevel maps a level name to a slog level. It returns INFO and false
// for names it does not know.
func ParseLevel(s string) (slog.Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug, true
	case "INFO":
		return slog.LevelInfo, true
	case "WARN", "WARNING":
		return slog.LevelWarn, true
	case "ERROR":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}
