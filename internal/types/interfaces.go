package types

import (
	"log/slog"
	"time"
)

// Logger defines the structured logging interface used throughout the
// dispatch core. Agents log with channel and event-kind context attached via
// With.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
}

// slogAdapter wraps *slog.Logger to satisfy Logger. slog's With returns
// *slog.Logger rather than our interface, so the adapter is needed.
type slogAdapter struct {
	logger *slog.Logger
}

// NewSlogLogger wraps a *slog.Logger in the Logger interface.
func NewSlogLogger(l *slog.Logger) Logger {
	return &slogAdapter{logger: l}
}

func (a *slogAdapter) Info(msg string, args ...any)  { a.logger.Info(msg, args...) }
func (a *slogAdapter) Warn(msg string, args ...any)  { a.logger.Warn(msg, args...) }
func (a *slogAdapter) Error(msg string, args ...any) { a.logger.Error(msg, args...) }
func (a *slogAdapter) With(args ...any) Logger {
	return &slogAdapter{logger: a.logger.With(args...)}
}

var _ Logger = (*slogAdapter)(nil)

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the real system time (always UTC).
type RealClock struct{}

// Now returns the current time in UTC.
func (RealClock) Now() time.Time { return time.Now().UTC() }
