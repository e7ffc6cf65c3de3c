package common

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards every record. Enabled reports false so callers skip formatting.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger installs the logger used by every engine package. The engine is silent until a
// logger is installed. Passing nil restores the silent default. Safe for concurrent use.
//
// Levels used by the engine:
//   - slog.LevelDebug: resource creation, descriptor slots, per-pass details
//   - slog.LevelInfo: adapter selection, initialization, run state changes, frame statistics
//   - slog.LevelWarn: recoverable oddities such as pruned input handlers or generated normals
//
// Parameters:
//   - l: the logger to install, or nil
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the current engine logger. It never returns nil.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
