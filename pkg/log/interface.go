// Package log provides the structured logging interface used by the training
// pipeline, backed by zerolog.
//
// The interface mirrors the shape of log/slog so call sites read the same
// regardless of backend:
//
//	logger := log.GetLogger().With(log.ModelNameKey, "Sequential")
//	logger.Info("training finished",
//	    log.EpochKey, 150,
//	    log.LossKey, 0.0031,
//	)
package log

import (
	"context"
)

// Logger is a structured, leveled logger. Fields are alternating key/value pairs.
type Logger interface {
	// Debug logs detailed diagnostics, e.g. per-epoch losses.
	Debug(msg string, fields ...any)

	// Info logs normal pipeline progress.
	Info(msg string, fields ...any)

	// Warn logs recoverable problems.
	Warn(msg string, fields ...any)

	// Error logs failures. Errors passed as values get their stack trace attached.
	Error(msg string, fields ...any)

	// With returns a child logger that always carries fields.
	With(fields ...any) Logger

	// Enabled reports whether records at level would be emitted.
	Enabled(ctx context.Context, level Level) bool
}

// Level is a logging level. Values match slog.Level.
type Level int

const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the upper-case level name.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}
