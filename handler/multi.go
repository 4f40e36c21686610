package handler

import (
	"go.uber.org/multierr"

	"github.com/philipp01105/applog/core"
)

// MultiHandler sends log entries to multiple handlers
type MultiHandler struct {
	handlers []Handler
}

// NewMultiHandler creates a new multi-handler
func NewMultiHandler(handlers ...Handler) *MultiHandler {
	return &MultiHandler{handlers: append([]Handler(nil), handlers...)}
}

// Handlers returns the child handlers in dispatch order
func (h *MultiHandler) Handlers() []Handler {
	return append([]Handler(nil), h.handlers...)
}

// Handle passes the entry to every child. A failing child does not stop
// the others; all errors are combined.
func (h *MultiHandler) Handle(entry *core.Entry) error {
	var err error
	for _, child := range h.handlers {
		err = multierr.Append(err, child.Handle(entry))
	}
	return err
}

// Close closes all handlers
func (h *MultiHandler) Close() error {
	var err error
	for _, child := range h.handlers {
		err = multierr.Append(err, child.Close())
	}
	return err
}
