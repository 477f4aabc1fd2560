package ocean

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards every record; Enabled reports false so callers skip
// formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger configures the logger shared by ocean and the packages built on
// it (glbackend, renderer, tuning). By default nothing is logged; pass nil to
// restore that.
//
// Levels:
//   - Debug: per-pass details such as spectrum regeneration and target formats
//   - Info: lifecycle events such as simulation creation and recording
//   - Warn: degraded but running conditions such as a half-float fallback
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the current shared logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
