package handler

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/philipp01105/applog/core"
)

// LogrusHook forwards logrus entries to a Handler, letting packages
// that already log through logrus reach the configured sinks.
type LogrusHook struct {
	handler Handler
	levels  []logrus.Level
}

// NewLogrusHook creates a hook firing for every logrus level at or
// above minLevel.
func NewLogrusHook(h Handler, minLevel core.Level) *LogrusHook {
	var levels []logrus.Level
	for _, l := range logrus.AllLevels {
		if logrusLevelToCore(l) >= minLevel {
			levels = append(levels, l)
		}
	}
	return &LogrusHook{handler: h, levels: levels}
}

// Levels implements logrus.Hook
func (h *LogrusHook) Levels() []logrus.Level {
	return h.levels
}

// Fire implements logrus.Hook
func (h *LogrusHook) Fire(e *logrus.Entry) error {
	entry := core.GetEntry()
	defer core.PutEntry(entry)

	entry.Time = e.Time
	entry.Level = logrusLevelToCore(e.Level)
	entry.Message = e.Message
	if e.Caller != nil {
		short := filepath.Base(e.Caller.File)
		entry.Caller = core.CallerInfo{
			File:      e.Caller.File,
			ShortFile: short,
			Line:      e.Caller.Line,
			Module:    strings.TrimSuffix(short, filepath.Ext(short)),
			Function:  e.Caller.Function,
			Defined:   true,
		}
	}
	// logrus.Fields is a map; sort so file lines and mail bodies are stable
	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		entry.Fields = append(entry.Fields, core.FieldOf(k, e.Data[k]))
	}

	return h.handler.Handle(entry)
}

func logrusLevelToCore(l logrus.Level) core.Level {
	switch l {
	case logrus.PanicLevel:
		return core.PanicLevel
	case logrus.FatalLevel:
		return core.FatalLevel
	case logrus.ErrorLevel:
		return core.ErrorLevel
	case logrus.WarnLevel:
		return core.WarnLevel
	case logrus.InfoLevel:
		return core.InfoLevel
	default:
		return core.DebugLevel
	}
}
