package handler

import (
	"github.com/philipp01105/applog/core"
)

// Handler defines the interface for log handlers
type Handler interface {
	// Handle processes a log entry
	Handle(entry *core.Entry) error

	// Close closes the handler and releases resources
	Close() error
}

// LevelHandler gates a Handler behind a severity threshold. Entries
// below the threshold never reach the wrapped handler.
type LevelHandler struct {
	handler Handler
	level   core.Level
}

// WithLevel wraps h so that it only sees entries at or above level.
func WithLevel(h Handler, level core.Level) *LevelHandler {
	return &LevelHandler{handler: h, level: level}
}

// Level returns the threshold
func (h *LevelHandler) Level() core.Level {
	return h.level
}

// Enabled reports whether an entry at level would be handled
func (h *LevelHandler) Enabled(level core.Level) bool {
	return level >= h.level
}

// Unwrap returns the gated handler
func (h *LevelHandler) Unwrap() Handler {
	return h.handler
}

// Handle forwards the entry when it meets the threshold
func (h *LevelHandler) Handle(entry *core.Entry) error {
	if entry.Level < h.level {
		return nil
	}
	return h.handler.Handle(entry)
}

// Close closes the gated handler
func (h *LevelHandler) Close() error {
	return h.handler.Close()
}
