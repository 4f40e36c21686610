package logger

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/philipp01105/applog/core"
	"github.com/philipp01105/applog/handler"
)

// osExit is a variable to allow overriding os.Exit in tests
var osExit = os.Exit

// Logger dispatches records to a fixed set of handlers, each gated by its
// own threshold. It is immutable and safe for concurrent use.
type Logger struct {
	handler       *handler.MultiHandler
	handlers      []*handler.LevelHandler
	level         core.Level
	fields        []core.Field
	includeCaller bool
	callerSkip    int
}

// Builder provides a fluent API for building Logger instances
type Builder struct {
	handlers      []*handler.LevelHandler
	level         core.Level
	fields        []core.Field
	includeCaller bool
	callerSkip    int
}

// NewBuilder creates a new logger builder
func NewBuilder() *Builder {
	return &Builder{
		level:      core.DebugLevel,
		callerSkip: 3,
	}
}

// WithHandler attaches h with the given threshold
func (b *Builder) WithHandler(h handler.Handler, level core.Level) *Builder {
	b.handlers = append(b.handlers, handler.WithLevel(h, level))
	return b
}

// WithLevel sets a floor applied on top of the per-handler thresholds
func (b *Builder) WithLevel(level core.Level) *Builder {
	b.level = level
	return b
}

// WithFields adds default fields to all log entries
func (b *Builder) WithFields(fields ...core.Field) *Builder {
	b.fields = append(b.fields, fields...)
	return b
}

// WithCaller enables caller information
func (b *Builder) WithCaller(enabled bool) *Builder {
	b.includeCaller = enabled
	return b
}

// Build creates the Logger instance. Its effective level is the lowest
// handler threshold, raised to the builder floor.
func (b *Builder) Build() *Logger {
	handlers := append([]*handler.LevelHandler(nil), b.handlers...)
	children := make([]handler.Handler, len(handlers))

	level := core.PanicLevel
	for i, h := range handlers {
		children[i] = h
		if h.Level() < level {
			level = h.Level()
		}
	}
	if b.level > level {
		level = b.level
	}

	return &Logger{
		handler:       handler.NewMultiHandler(children...),
		handlers:      handlers,
		level:         level,
		fields:        append([]core.Field(nil), b.fields...),
		includeCaller: b.includeCaller,
		callerSkip:    b.callerSkip,
	}
}

// Level returns the lowest level any handler will accept
func (l *Logger) Level() core.Level {
	return l.level
}

// Handlers returns the attached handlers with their thresholds
func (l *Logger) Handlers() []*handler.LevelHandler {
	return append([]*handler.LevelHandler(nil), l.handlers...)
}

// Handler returns the fan-out handler behind the logger, for adapters
func (l *Logger) Handler() handler.Handler {
	return l.handler
}

// Slog returns a *slog.Logger writing to the same handlers
func (l *Logger) Slog() *slog.Logger {
	return slog.New(handler.NewSlogHandler(l.handler, l.level))
}

// With creates a new Logger with additional fields (immutable operation)
func (l *Logger) With(fields ...core.Field) *Logger {
	newFields := make([]core.Field, len(l.fields)+len(fields))
	copy(newFields, l.fields)
	copy(newFields[len(l.fields):], fields)

	return &Logger{
		handler:       l.handler,
		handlers:      l.handlers,
		level:         l.level,
		fields:        newFields,
		includeCaller: l.includeCaller,
		callerSkip:    l.callerSkip,
	}
}

// Emit logs a message and returns the combined handler error. Mail
// delivery failures are reported by the mail handler itself and do not
// show up here; cancellation of its context does.
func (l *Logger) Emit(level core.Level, msg string, fields ...core.Field) error {
	if level < l.level {
		return nil
	}
	return l.log(level, msg, fields)
}

// Log logs a message at the specified level
func (l *Logger) Log(level core.Level, msg string, fields ...core.Field) {
	if level < l.level {
		return
	}
	_ = l.log(level, msg, fields)
}

func (l *Logger) log(level core.Level, msg string, fields []core.Field) error {
	if len(l.handlers) == 0 {
		return nil
	}

	entry := core.GetEntry()
	defer core.PutEntry(entry)

	entry.Level = level
	entry.Message = msg
	entry.Fields = append(entry.Fields, l.fields...)
	entry.Fields = append(entry.Fields, fields...)

	if l.includeCaller {
		entry.Caller = core.GetCaller(l.callerSkip)
	}

	return l.handler.Handle(entry)
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, fields ...core.Field) {
	if core.DebugLevel < l.level {
		return
	}
	_ = l.log(core.DebugLevel, msg, fields)
}

// Info logs an info message
func (l *Logger) Info(msg string, fields ...core.Field) {
	if core.InfoLevel < l.level {
		return
	}
	_ = l.log(core.InfoLevel, msg, fields)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, fields ...core.Field) {
	if core.WarnLevel < l.level {
		return
	}
	_ = l.log(core.WarnLevel, msg, fields)
}

// Error logs an error message. Handler errors are dropped, including
// the cancellation error of a mail handler whose context is done; use
// Emit where the caller has to stop on interrupt.
func (l *Logger) Error(msg string, fields ...core.Field) {
	if core.ErrorLevel < l.level {
		return
	}
	_ = l.log(core.ErrorLevel, msg, fields)
}

// Fatal logs a fatal message and exits the program with os.Exit(1)
func (l *Logger) Fatal(msg string, fields ...core.Field) {
	_ = l.log(core.FatalLevel, msg, fields)
	osExit(1)
}

// Panic logs a panic message and panics
func (l *Logger) Panic(msg string, fields ...core.Field) {
	_ = l.log(core.PanicLevel, msg, fields)
	panic(msg)
}

// Debugf logs a debug message with formatting
func (l *Logger) Debugf(format string, args ...interface{}) {
	if core.DebugLevel < l.level {
		return
	}
	_ = l.log(core.DebugLevel, fmt.Sprintf(format, args...), nil)
}

// Infof logs an info message with formatting
func (l *Logger) Infof(format string, args ...interface{}) {
	if core.InfoLevel < l.level {
		return
	}
	_ = l.log(core.InfoLevel, fmt.Sprintf(format, args...), nil)
}

// Warnf logs a warning message with formatting
func (l *Logger) Warnf(format string, args ...interface{}) {
	if core.WarnLevel < l.level {
		return
	}
	_ = l.log(core.WarnLevel, fmt.Sprintf(format, args...), nil)
}

// Errorf logs an error message with formatting. Like Error it drops
// handler errors.
func (l *Logger) Errorf(format string, args ...interface{}) {
	if core.ErrorLevel < l.level {
		return
	}
	_ = l.log(core.ErrorLevel, fmt.Sprintf(format, args...), nil)
}

// Fatalf logs a fatal message with formatting and exits the program with os.Exit(1)
func (l *Logger) Fatalf(format string, args ...interface{}) {
	_ = l.log(core.FatalLevel, fmt.Sprintf(format, args...), nil)
	osExit(1)
}

// Close closes every attached handler
func (l *Logger) Close() error {
	return l.handler.Close()
}
