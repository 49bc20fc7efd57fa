package logging

import (
	"go.uber.org/zap"
)

// Logger is the application logger, backed by zap's sugared logger.
type Logger struct {
	sugar *zap.SugaredLogger
}

// NewLogger creates a production Logger. It falls back to a no-op core if
// zap cannot be constructed, so callers never receive a nil logger.
func NewLogger() *Logger {
	logger, err := zap.NewProduction()
	if err != nil {
		return &Logger{sugar: zap.NewNop().Sugar()}
	}
	return &Logger{sugar: logger.Sugar()}
}

// NewNopLogger returns a logger that discards everything. Used in tests.
func NewNopLogger() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

// Debug logs a debug message with key-value pairs.
func (l *Logger) Debug(msg string, args ...interface{}) {
	l.sugar.Debugw(msg, args...)
}

// Info logs an informational message with key-value pairs.
func (l *Logger) Info(msg string, args ...interface{}) {
	l.sugar.Infow(msg, args...)
}

// Warn logs a warning message with key-value pairs.
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.sugar.Warnw(msg, args...)
}

// Error logs an error message with key-value pairs.
func (l *Logger) Error(msg string, args ...interface{}) {
	l.sugar.Errorw(msg, args...)
}

// With returns a child logger with the given key-value pairs attached.
func (l *Logger) With(args ...interface{}) *Logger {
	return &Logger{sugar: l.sugar.With(args...)}
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}
