package log

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

var (
	mu         sync.RWMutex
	logger     *zap.SugaredLogger
	loggerOnce sync.Once
	level      = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// initLogger builds the default console logger on stderr.
func initLogger() {
	loggerOnce.Do(func() {
		cfg := zap.NewProductionConfig()
		cfg.Level = level
		cfg.Encoding = "console"
		cfg.Sampling = nil
		cfg.DisableStacktrace = true
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

		l, err := cfg.Build(zap.AddCallerSkip(2))
		if err != nil {
			l = zap.NewNop()
		}
		mu.Lock()
		if logger == nil {
			logger = l.Sugar()
		}
		mu.Unlock()
	})
}

// Use replaces the sink. Tests hand in an observer core; the TUI hands in a
// file logger or zap.NewNop() so output does not tear the screen.
func Use(l *zap.Logger) {
	loggerOnce.Do(func() {})
	mu.Lock()
	logger = l.WithOptions(zap.AddCallerSkip(2)).Sugar()
	mu.Unlock()
}

// SetLevel changes the minimum level of the default logger.
func SetLevel(l Level) {
	level.SetLevel(toZap(l))
}

// ParseLevel accepts debug/info/warn/error in any case. Unknown values fall
// back to INFO with ok == false.
func ParseLevel(s string) (l Level, ok bool) {
	switch Level(strings.ToUpper(strings.TrimSpace(s))) {
	case LevelDebug:
		return LevelDebug, true
	case LevelInfo, "":
		return LevelInfo, true
	case LevelWarn, "WARNING":
		return LevelWarn, true
	case LevelError:
		return LevelError, true
	default:
		return LevelInfo, false
	}
}

// Sync flushes buffered entries. Call before exit.
func Sync() {
	if s := current(); s != nil {
		_ = s.Sync()
	}
}

func Debug(msg string, kv ...any) {
	logWithLevel(LevelDebug, msg, kv...)
}

func Info(msg string, kv ...any) {
	logWithLevel(LevelInfo, msg, kv...)
}

func Warn(msg string, kv ...any) {
	logWithLevel(LevelWarn, msg, kv...)
}

func Error(msg string, err error, kv ...any) {
	// Prepend error into key-value list.
	extended := append([]any{"err", err}, kv...)
	logWithLevel(LevelError, msg, extended...)
}

func logWithLevel(l Level, msg string, kv ...any) {
	s := current()
	switch l {
	case LevelDebug:
		s.Debugw(msg, kv...)
	case LevelWarn:
		s.Warnw(msg, kv...)
	case LevelError:
		s.Errorw(msg, kv...)
	default:
		s.Infow(msg, kv...)
	}
}

func current() *zap.SugaredLogger {
	initLogger()
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func toZap(l Level) zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
