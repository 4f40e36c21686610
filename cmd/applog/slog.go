package main

import (
	"log/slog"

	"github.com/philipp01105/applog/logger"
)

func slogLevel(l logger.Level) slog.Level {
	switch l {
	case logger.DebugLevel:
		return slog.LevelDebug
	case logger.InfoLevel:
		return slog.LevelInfo
	case logger.WarnLevel:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
