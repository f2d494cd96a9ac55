package common

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that discards every record.
// Enabled reports false so callers skip formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// loggerPtr stores the active logger so SetLogger may race with logging calls.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger configures the logger shared by the engine packages.
// By default nothing is logged. Passing nil restores the silent default.
//
// Levels used:
//   - slog.LevelDebug: per-step initialization detail
//   - slog.LevelInfo: lifecycle events (adapter chosen, device created, profiler stats)
//   - slog.LevelWarn: recoverable issues (requested adapter ignored)
//
// Parameters:
//   - l: the logger to install, or nil to disable logging
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the logger currently installed by SetLogger.
//
// Returns:
//   - *slog.Logger: the active logger, never nil
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
