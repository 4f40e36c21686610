package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/philipp01105/applog/core"
	"github.com/philipp01105/applog/formatter"
)

// ErrorReporter receives failures that a handler swallows instead of
// returning to the logging call site.
type ErrorReporter func(entry *core.Entry, err error)

// StderrReporter writes a short diagnostic for a failed record to w,
// falling back to os.Stderr when w is nil.
func StderrReporter(w io.Writer) ErrorReporter {
	if w == nil {
		w = os.Stderr
	}
	return func(entry *core.Entry, err error) {
		_, _ = fmt.Fprintf(w, "--- Logging error ---\n%v\nRecord: %s %q\n", err, entry.Level, entry.Message)
	}
}

// MailConfig holds configuration for the mail alert handler
type MailConfig struct {
	// Transport delivers the messages (required)
	Transport MailTransport
	From      string
	To        []string
	Subject   string
	// Formatter renders the body (default: MailFormatter)
	Formatter formatter.Formatter
	// Context bounds every send. Once it is done, Handle returns its
	// error instead of reporting it (default: context.Background()).
	Context context.Context
	// ErrorReporter receives delivery failures (default: StderrReporter(os.Stderr))
	ErrorReporter ErrorReporter
	Metrics       *Metrics
}

// MailHandler sends one email per handled entry, synchronously.
type MailHandler struct {
	transport MailTransport
	from      string
	to        []string
	subject   string
	formatter formatter.Formatter
	ctx       context.Context
	report    ErrorReporter
	metrics   *Metrics
}

// NewMailHandler creates a new mail alert handler
func NewMailHandler(cfg MailConfig) (*MailHandler, error) {
	if cfg.Transport == nil {
		return nil, errors.New("mail transport is required")
	}
	if cfg.From == "" {
		return nil, errors.New("mail sender is required")
	}
	if len(cfg.To) == 0 {
		return nil, errors.New("at least one mail recipient is required")
	}
	if cfg.Formatter == nil {
		cfg.Formatter = formatter.NewMailFormatter(formatter.Config{})
	}
	if cfg.Context == nil {
		cfg.Context = context.Background()
	}
	if cfg.ErrorReporter == nil {
		cfg.ErrorReporter = StderrReporter(nil)
	}

	to := make([]string, len(cfg.To))
	copy(to, cfg.To)

	return &MailHandler{
		transport: cfg.Transport,
		from:      cfg.From,
		to:        to,
		subject:   cfg.Subject,
		formatter: cfg.Formatter,
		ctx:       cfg.Context,
		report:    cfg.ErrorReporter,
		metrics:   cfg.Metrics,
	}, nil
}

// Transport returns the configured transport
func (h *MailHandler) Transport() MailTransport {
	return h.transport
}

// Recipients returns a copy of the recipient list
func (h *MailHandler) Recipients() []string {
	return append([]string(nil), h.to...)
}

// Handle formats entry and sends it as an email. Delivery failures are
// passed to the ErrorReporter and never returned; only cancellation of
// the handler's context is.
func (h *MailHandler) Handle(entry *core.Entry) (err error) {
	if err := h.ctx.Err(); err != nil {
		return fmt.Errorf("mail alert interrupted: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			h.fail(entry, fmt.Errorf("mail alert panicked: %v", r))
			err = nil
		}
	}()

	body, err := h.formatter.Format(entry)
	if err != nil {
		h.fail(entry, fmt.Errorf("format mail body: %w", err))
		return nil
	}

	msg := &Message{
		From:    h.from,
		To:      h.to,
		Subject: h.subject,
		Date:    time.Now().Local(),
		Body:    string(body),
	}

	if err := h.transport.Send(h.ctx, msg); err != nil {
		if ctxErr := h.ctx.Err(); ctxErr != nil {
			return fmt.Errorf("mail alert interrupted: %w", ctxErr)
		}
		h.fail(entry, err)
		return nil
	}

	h.metrics.written("mail")
	return nil
}

func (h *MailHandler) fail(entry *core.Entry, err error) {
	h.metrics.failed("mail")
	h.report(entry, err)
}

// Close is a no-op; sessions never outlive a Handle call.
func (h *MailHandler) Close() error {
	return nil
}
