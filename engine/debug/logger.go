package debug

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// Log categories attached to debug records as the "category" attribute.
const (
	CategoryCollectionChanged = "collection_changed"
	CategoryDrawItemsCulled   = "draw_items_culled"
	CategoryBatchesRebuilt    = "draw_batches_rebuilt"
)

// nopHandler is a slog.Handler that discards every record. Enabled reports false
// so callers skip formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger configures the logger shared by every engine package.
// By default nothing is logged. Pass nil to restore the silent logger.
//
// Levels used:
//   - slog.LevelDebug: per-frame scheduling decisions (collection refreshes, cull results)
//   - slog.LevelWarn: draw submission failures that were skipped
//
// Parameters:
//   - l: the logger to use, or nil
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the current engine logger. Safe for concurrent use.
//
// Returns:
//   - *slog.Logger: the active logger
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
