package logger

import (
	"log/slog"
	"os"
)

// NewTestLogger logs at WARN so test output stays quiet. Set TEST_DEBUG to
// see everything.
func NewTestLogger() *slog.Logger {
	level := slog.LevelWarn
	if os.Getenv("TEST_DEBUG") != "" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
