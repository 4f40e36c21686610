package handler

import (
	"context"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/philipp01105/applog/core"
)

// SlogHandler exposes a Handler as a slog.Handler so code written
// against log/slog feeds the same file and mail sinks.
type SlogHandler struct {
	handler Handler
	level   core.Level
	attrs   []core.Field
	group   string
}

// NewSlogHandler creates a new slog.Handler adapter wrapping the given Handler.
func NewSlogHandler(h Handler, level core.Level) *SlogHandler {
	return &SlogHandler{
		handler: h,
		level:   level,
	}
}

// Enabled reports whether the handler handles records at the given level.
func (s *SlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return slogLevelToCore(level) >= s.level
}

// Handle converts the record to a core.Entry and passes it to the wrapped handler.
func (s *SlogHandler) Handle(_ context.Context, record slog.Record) error {
	entry := core.GetEntry()
	defer core.PutEntry(entry)

	entry.Time = record.Time
	entry.Level = slogLevelToCore(record.Level)
	entry.Message = record.Message
	entry.Caller = callerFromPC(record.PC)

	entry.Fields = append(entry.Fields, s.attrs...)
	record.Attrs(func(a slog.Attr) bool {
		entry.Fields = appendSlogAttr(entry.Fields, s.group, a)
		return true
	})

	return s.handler.Handle(entry)
}

// WithAttrs returns a new SlogHandler with additional attributes.
func (s *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]core.Field, len(s.attrs), len(s.attrs)+len(attrs))
	copy(newAttrs, s.attrs)
	for _, a := range attrs {
		newAttrs = appendSlogAttr(newAttrs, s.group, a)
	}
	return &SlogHandler{
		handler: s.handler,
		level:   s.level,
		attrs:   newAttrs,
		group:   s.group,
	}
}

// WithGroup returns a new SlogHandler with the given group name.
func (s *SlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return s
	}
	return &SlogHandler{
		handler: s.handler,
		level:   s.level,
		attrs:   s.attrs[:len(s.attrs):len(s.attrs)],
		group:   joinKey(s.group, name),
	}
}

func callerFromPC(pc uintptr) core.CallerInfo {
	if pc == 0 {
		return core.CallerInfo{}
	}
	frame, _ := runtime.CallersFrames([]uintptr{pc}).Next()
	if frame.File == "" {
		return core.CallerInfo{}
	}
	short := filepath.Base(frame.File)
	return core.CallerInfo{
		File:      frame.File,
		ShortFile: short,
		Line:      frame.Line,
		Module:    strings.TrimSuffix(short, filepath.Ext(short)),
		Function:  frame.Function,
		Defined:   true,
	}
}

// slogLevelToCore converts a slog.Level to a core.Level.
func slogLevelToCore(level slog.Level) core.Level {
	switch {
	case level >= slog.LevelError:
		return core.ErrorLevel
	case level >= slog.LevelWarn:
		return core.WarnLevel
	case level >= slog.LevelInfo:
		return core.InfoLevel
	default:
		return core.DebugLevel
	}
}

func joinKey(group, key string) string {
	if group == "" {
		return key
	}
	return group + "." + key
}

// appendSlogAttr converts a slog.Attr to fields. Groups are flattened
// into dotted keys.
func appendSlogAttr(dst []core.Field, group string, a slog.Attr) []core.Field {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return dst
	}
	key := joinKey(group, a.Key)

	switch a.Value.Kind() {
	case slog.KindString:
		return append(dst, core.String(key, a.Value.String()))
	case slog.KindInt64:
		return append(dst, core.Int(key, a.Value.Int64()))
	case slog.KindUint64:
		return append(dst, core.Int(key, int64(a.Value.Uint64())))
	case slog.KindFloat64:
		return append(dst, core.Float64(key, a.Value.Float64()))
	case slog.KindBool:
		return append(dst, core.Bool(key, a.Value.Bool()))
	case slog.KindTime:
		return append(dst, core.Time(key, a.Value.Time()))
	case slog.KindDuration:
		return append(dst, core.Duration(key, a.Value.Duration()))
	case slog.KindGroup:
		// an inline group (empty key) contributes its attrs at the current level
		prefix := group
		if a.Key != "" {
			prefix = key
		}
		for _, ga := range a.Value.Group() {
			dst = appendSlogAttr(dst, prefix, ga)
		}
		return dst
	default:
		return append(dst, core.FieldOf(key, a.Value.Any()))
	}
}
