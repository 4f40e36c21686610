// Package logger is the logging API applications call.
//
// A Logger owns a fixed set of handlers, each attached with its own
// severity threshold, and is immutable after Build. There is no
// package-level default logger: build one at startup (usually through
// the router package) and pass it to the components that log.
//
//	log := logger.NewBuilder().
//	    WithHandler(fileHandler, logger.WarnLevel).
//	    WithHandler(mailHandler, logger.ErrorLevel).
//	    WithCaller(true).
//	    Build()
//
// A record below every threshold costs a single comparison. Records
// that pass are dispatched to every handler whose threshold they meet;
// the level helpers (Info, Error, ...) drop handler errors while Emit
// returns them. Mail delivery failures never surface either way; the
// one error a mail handler returns is the cancellation of its context,
// so code that must notice an interrupt while alerting calls Emit:
//
//	if err := log.Emit(logger.ErrorLevel, "payment failed"); errors.Is(err, context.Canceled) {
//	    return err
//	}
//
// Slog exposes the same handlers through log/slog.
package logger
