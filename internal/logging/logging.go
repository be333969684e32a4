// Package logging builds the slog loggers used across ctx.
//
// CLI commands log to stderr so stdout stays machine readable. The MCP
// server owns stdio and logs to a file under .ctx/logs instead.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// LevelSilent is above every standard level.
const LevelSilent = slog.Level(100)

// New creates a text logger writing to w.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// NewFile creates a logger appending to path, creating parent directories
// as needed. The caller closes the returned file.
func NewFile(path string, level slog.Level) (*slog.Logger, *os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return New(f, level), f, nil
}

// LevelFromString converts a level name to a slog.Level. Unknown names map to
// warn, the CLI default.
func LevelFromString(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	case "silent", "off", "none":
		return LevelSilent
	default:
		return slog.LevelWarn
	}
}

// LevelFromVerbosity resolves the effective level from CLI flags and the
// configured level. --quiet wins over --verbose, and either wins over the
// config file.
func LevelFromVerbosity(verbose, quiet bool, configured string) slog.Level {
	switch {
	case quiet:
		return LevelSilent
	case verbose:
		return slog.LevelDebug
	default:
		return LevelFromString(configured)
	}
}
