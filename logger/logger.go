package logger

import (
	"sort"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

// Logger is what the mailer packages log through. Fields are attached per
// call; With returns a child that carries fields on every entry.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

// New builds the process logger from LOG_LEVEL and LOG_FORMAT. "json" gives
// the production encoder with ISO8601 times, anything else the console one.
// Unknown levels fall back to info.
func New(level, format string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewDevelopmentConfig()
	if format == "json" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l.Named("club-mailer")
}

// NewLogger is New wrapped in the Logger interface.
func NewLogger(level, format string) Logger {
	return wrap(New(level, format))
}

// NewTestLogger writes through testing.TB.
func NewTestLogger(t testing.TB) Logger {
	return wrap(zaptest.NewLogger(t))
}

// NewNoOpLogger discards everything.
func NewNoOpLogger() Logger {
	return wrap(zap.NewNop())
}

type zapLogger struct {
	z *zap.Logger
}

func wrap(z *zap.Logger) Logger {
	return &zapLogger{z: z}
}

func (l *zapLogger) Debug(msg string, fields map[string]interface{}) {
	l.z.Debug(msg, toFields(fields)...)
}

func (l *zapLogger) Info(msg string, fields map[string]interface{}) {
	l.z.Info(msg, toFields(fields)...)
}

func (l *zapLogger) Warn(msg string, fields map[string]interface{}) {
	l.z.Warn(msg, toFields(fields)...)
}

func (l *zapLogger) Error(msg string, fields map[string]interface{}) {
	l.z.Error(msg, toFields(fields)...)
}

func (l *zapLogger) With(fields map[string]interface{}) Logger {
	return wrap(l.z.With(toFields(fields)...))
}

// toFields emits fields in key order so console lines are stable.
func toFields(fields map[string]interface{}) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		if err, ok := fields[k].(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, fields[k]))
	}
	return out
}
