package util

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

const LogFileName = "nostui.log"

// ParseLevel maps debug, info, warn and error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

// SetupLogging opens path for appending and installs a text logger on it
// as the slog default. The terminal belongs to the UI, so nothing is
// logged to stderr while it runs.
func SetupLogging(path string, level slog.Level) (*slog.Logger, func() error, error) {
	if path == "" {
		path = ResolveFilePath(LogFileName)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger, f.Close, nil
}
