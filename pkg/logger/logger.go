package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the global sugared logger. Packages call the helper functions
// below with slog-style key/value pairs.
var Log *zap.SugaredLogger

// Init initializes the global logger. Level and sink may be overridden via
// THREADSYNC_LOG_LEVEL and THREADSYNC_LOG_SINK (e.g. "file:/path/to/log")
// for tests and production.
func Init() {
	InitWithLevel("")
}

// InitWithLevel initializes the global logger honoring the provided level
// string ("debug", "info", "warn", "error"). An empty level falls back to
// the THREADSYNC_LOG_LEVEL environment variable, then to info.
func InitWithLevel(level string) {
	lvl := strings.ToLower(strings.TrimSpace(level))
	if lvl == "" {
		lvl = strings.ToLower(strings.TrimSpace(os.Getenv("THREADSYNC_LOG_LEVEL")))
	}
	var zl zapcore.Level
	switch lvl {
	case "debug":
		zl = zapcore.DebugLevel
	case "warn", "warning":
		zl = zapcore.WarnLevel
	case "error":
		zl = zapcore.ErrorLevel
	default:
		zl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zl)
	cfg.OutputPaths = []string{"stdout"}
	if sink := os.Getenv("THREADSYNC_LOG_SINK"); strings.HasPrefix(sink, "file:") {
		cfg.OutputPaths = []string{strings.TrimPrefix(sink, "file:")}
	}
	l, err := cfg.Build()
	if err != nil {
		// last resort: a no-op logger so callers never nil-check
		l = zap.NewNop()
	}
	Log = l.Sugar()
}

// Sync flushes buffered log entries.
func Sync() {
	if Log != nil {
		_ = Log.Sync()
	}
}

// Debug logs with key/value pairs.
func Debug(msg string, args ...interface{}) {
	if Log == nil {
		return
	}
	Log.Debugw(msg, args...)
}

// Info logs with key/value pairs.
func Info(msg string, args ...interface{}) {
	if Log == nil {
		return
	}
	Log.Infow(msg, args...)
}

// Warn logs with key/value pairs.
func Warn(msg string, args ...interface{}) {
	if Log == nil {
		return
	}
	Log.Warnw(msg, args...)
}

// Error logs with key/value pairs.
func Error(msg string, args ...interface{}) {
	if Log == nil {
		return
	}
	Log.Errorw(msg, args...)
}
