package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	perrors "github.com/JoeRonaldson/Predict-1500/pkg/errors"
)

var (
	defaultMu     sync.RWMutex
	defaultLogger Logger = NewZerologLogger(os.Stderr, LevelInfo)
)

// SetupLogger installs a zerolog JSON logger writing to w as the process default,
// and routes pkg/errors warnings through it.
func SetupLogger(loglevel string, w io.Writer) error {
	level, err := ToLogLevel(loglevel)
	if err != nil {
		return err
	}
	if w == nil {
		w = os.Stdout
	}
	logger := NewZerologLogger(w, level)
	SetLogger(logger)
	perrors.SetZerologWarnFunc(func(warning error) {
		logger.Warn("warning", ErrorKey, warning)
	})
	return nil
}

// ToLogLevel parses "debug", "info", "warn" or "error".
func ToLogLevel(level string) (Level, error) {
	switch strings.ToLower(level) {
	case "info", "":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	case "warn":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, perrors.NewValidationError("log_level", "must be one of debug, info, warn, error", level)
	}
}

// GetLogger returns the process default logger.
func GetLogger() Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetLogger replaces the process default logger.
func SetLogger(l Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}

// ZerologLogger adapts a zerolog.Logger to Logger.
type ZerologLogger struct {
	zl zerolog.Logger
}

// NewZerologLogger creates a JSON logger writing to w at the given minimum level.
func NewZerologLogger(w io.Writer, level Level) *ZerologLogger {
	zl := zerolog.New(w).Level(toZerologLevel(level)).With().Timestamp().Logger()
	return &ZerologLogger{zl: zl}
}

// Nop returns a logger that discards everything.
func Nop() *ZerologLogger {
	return &ZerologLogger{zl: zerolog.Nop()}
}

func (l *ZerologLogger) Debug(msg string, fields ...any) { emit(l.zl.Debug(), msg, fields) }
func (l *ZerologLogger) Info(msg string, fields ...any)  { emit(l.zl.Info(), msg, fields) }
func (l *ZerologLogger) Warn(msg string, fields ...any)  { emit(l.zl.Warn(), msg, fields) }
func (l *ZerologLogger) Error(msg string, fields ...any) { emit(l.zl.Error(), msg, fields) }

// With implements Logger.With.
func (l *ZerologLogger) With(fields ...any) Logger {
	ctx := l.zl.With()
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprint(fields[i])
		if err, ok := fields[i+1].(error); ok {
			ctx = ctx.Str(key, err.Error())
			if m, ok := err.(zerolog.LogObjectMarshaler); ok {
				ctx = ctx.Object(key+detailSuffix, m)
			}
			continue
		}
		ctx = ctx.Interface(key, fields[i+1])
	}
	return &ZerologLogger{zl: ctx.Logger()}
}

// Enabled implements Logger.Enabled.
func (l *ZerologLogger) Enabled(_ context.Context, level Level) bool {
	return l.zl.GetLevel() <= toZerologLevel(level)
}

// detailSuffix names the sibling field holding an error's structured form.
const detailSuffix = "_detail"

func emit(e *zerolog.Event, msg string, fields []any) {
	if e == nil {
		return
	}
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprint(fields[i])
		switch v := fields[i+1].(type) {
		case error:
			// Errors always log as their message; structured warnings also
			// carry their fields under a sibling key.
			e = e.Str(key, v.Error())
			if m, ok := v.(zerolog.LogObjectMarshaler); ok {
				e = e.Object(key+detailSuffix, m)
			}
			if st := stacktrace(v); st != "" {
				e = e.Str(StacktraceKey, st)
			}
		case zerolog.LogObjectMarshaler:
			e = e.Object(key, v)
		default:
			e = e.Interface(key, v)
		}
	}
	if len(fields)%2 == 1 {
		e = e.Interface("!BADKEY", fields[len(fields)-1])
	}
	e.Msg(msg)
}

// stacktrace returns the stack recorded by cockroachdb/errors on err, if any.
func stacktrace(err error) string {
	details := errors.GetSafeDetails(err).SafeDetails
	if len(details) == 0 {
		return ""
	}
	return details[0]
}

func toZerologLevel(level Level) zerolog.Level {
	switch {
	case level <= LevelDebug:
		return zerolog.DebugLevel
	case level <= LevelInfo:
		return zerolog.InfoLevel
	case level <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}
