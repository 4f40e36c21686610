// Package handler provides the Handler interface and the sinks that
// records are dispatched to.
//
// Every handler is synchronous: Handle returns once the record has been
// written or delivered, so callers may recycle the entry immediately.
//
// Built-in handlers:
//
//   - FileHandler appends formatted records to a file, rotating it by
//     size into numbered backups (name.1 newest) and keeping at most
//     MaxBackups of them.
//   - MailHandler turns each record into one email and hands it to a
//     MailTransport. SMTPTransport is the stock transport and supports
//     plaintext, STARTTLS and implicit TLS. Delivery failures go to an
//     ErrorReporter and never reach the caller; only cancellation of the
//     handler's context does.
//   - ZapHandler writes records through a zapcore.Core, stdout by default.
//   - MultiHandler fans out a record to several children.
//   - LevelHandler gates any handler behind a severity threshold.
//
// SlogHandler and LogrusHook adapt a Handler to log/slog and logrus.
// Metrics exposes write, failure and rotation counts to Prometheus.
package handler
