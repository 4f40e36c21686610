package handler

import (
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/philipp01105/applog/core"
)

// ZapHandler writes entries through a zapcore.Core.
type ZapHandler struct {
	core    zapcore.Core
	name    string
	metrics *Metrics
}

// ZapConfig holds configuration for the zap-backed handler
type ZapConfig struct {
	// Core receives the entries. When nil a console core writing to
	// Writer is built.
	Core zapcore.Core
	// Writer for the default console core (default: os.Stdout)
	Writer io.Writer
	// Name labels metrics (default: "stdout")
	Name    string
	Metrics *Metrics
}

// NewZapHandler creates a handler backed by zap
func NewZapHandler(cfg ZapConfig) *ZapHandler {
	if cfg.Name == "" {
		cfg.Name = "stdout"
	}
	if cfg.Core == nil {
		if cfg.Writer == nil {
			cfg.Writer = os.Stdout
		}
		encoderConfig := zap.NewProductionEncoderConfig()
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		cfg.Core = zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig),
			zapcore.AddSync(cfg.Writer),
			zapcore.DebugLevel,
		)
	}
	return &ZapHandler{core: cfg.Core, name: cfg.Name, metrics: cfg.Metrics}
}

// Handle converts the entry and writes it to the zap core
func (h *ZapHandler) Handle(entry *core.Entry) error {
	ze := zapcore.Entry{
		Level:   zapLevel(entry.Level),
		Time:    entry.Time,
		Message: entry.Message,
	}
	if entry.Caller.Defined {
		ze.Caller = zapcore.NewEntryCaller(0, entry.Caller.File, entry.Caller.Line, true)
		ze.Caller.Function = entry.Caller.Function
	}

	if !h.core.Enabled(ze.Level) {
		return nil
	}

	fields := make([]zapcore.Field, 0, len(entry.Fields))
	for _, f := range entry.Fields {
		fields = append(fields, zapField(f))
	}

	if err := h.core.Write(ze, fields); err != nil {
		h.metrics.failed(h.name)
		return err
	}
	h.metrics.written(h.name)
	return nil
}

// Close flushes the zap core
func (h *ZapHandler) Close() error {
	return h.core.Sync()
}

func zapLevel(l core.Level) zapcore.Level {
	switch l {
	case core.DebugLevel:
		return zapcore.DebugLevel
	case core.InfoLevel:
		return zapcore.InfoLevel
	case core.WarnLevel:
		return zapcore.WarnLevel
	case core.ErrorLevel:
		return zapcore.ErrorLevel
	case core.FatalLevel:
		return zapcore.FatalLevel
	default:
		return zapcore.PanicLevel
	}
}

func zapField(f core.Field) zapcore.Field {
	switch f.Type {
	case core.StringType, core.ErrorType:
		return zap.String(f.Key, f.Str)
	case core.IntType:
		return zap.Int64(f.Key, f.Int64)
	case core.Float64Type:
		return zap.Float64(f.Key, f.Float64)
	case core.BoolType:
		return zap.Bool(f.Key, f.Int64 == 1)
	case core.DurationType:
		return zap.Duration(f.Key, time.Duration(f.Int64))
	case core.TimeType:
		return zap.Time(f.Key, time.Unix(0, f.Int64))
	default:
		return zap.Any(f.Key, f.Any)
	}
}
