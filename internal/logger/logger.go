// Package logger builds the structured JSON logger used by every command.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ParseLevel maps "debug", "info", "warn" or "error" to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("logger: unknown level %q", s)
	}
	return l, nil
}

// Setup returns a JSON slog.Logger writing to w at the given level.
func Setup(w io.Writer, level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler)
}

// Open resolves a --log-output value. "stderr" and "stdout" map to the
// process streams, "" discards, anything else is a file opened for append.
// The returned close func is always non-nil.
func Open(output string) (io.Writer, func() error, error) {
	noop := func() error { return nil }
	switch output {
	case "":
		return io.Discard, noop, nil
	case "stderr":
		return os.Stderr, noop, nil
	case "stdout":
		return os.Stdout, noop, nil
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o700); err != nil {
		return nil, noop, fmt.Errorf("logger.Open: %w", err)
	}
	f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, noop, fmt.Errorf("logger.Open: %w", err)
	}
	return f, f.Close, nil
}
