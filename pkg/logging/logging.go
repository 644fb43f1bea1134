// Package logging provides a small abstraction over slog so the knowledge
// subsystem can emit structured logs without forcing a logger choice on
// callers. Components accept a Logger and default to Nop when none is given.
package logging

import (
	"log/slog"
	"os"
)

// Logger defines the minimal logging interface used across the library.
//
// This allows users to provide their own logger implementation or use the
// built-in slog adapter.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter wraps *slog.Logger to implement the Logger interface.
type SlogAdapter struct {
	*slog.Logger
}

// NewSlogAdapter creates a Logger backed by the given slog logger.
func NewSlogAdapter(l *slog.Logger) *SlogAdapter {
	return &SlogAdapter{Logger: l}
}

// Default returns a text-handler slog logger writing to stderr at info level.
func Default() Logger {
	return &SlogAdapter{Logger: slog.New(slog.NewTextHandler(os.Stderr, nil))}
}

// NopLogger discards all log output.
type NopLogger struct{}

// Nop returns a Logger that discards everything.
func Nop() Logger { return NopLogger{} }

// Debug implements Logger.
func (NopLogger) Debug(msg string, args ...any) {}

// Info implements Logger.
func (NopLogger) Info(msg string, args ...any) {}

// Warn implements Logger.
func (NopLogger) Warn(msg string, args ...any) {}

// Error implements Logger.
func (NopLogger) Error(msg string, args ...any) {}
