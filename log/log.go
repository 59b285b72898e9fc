// Package log wraps go.uber.org/zap with the small surface the core
// needs: structured fields and a no-op implementation for tests. There
// is no package-level default logger; the drivers take a Logger through
// their config.
package log

import "go.uber.org/zap"

// Logger is the structured-logging surface the core depends on.
type Logger interface {
	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
	With(fields ...zap.Field) Logger
	Sync() error
}

type zapLogger struct {
	z *zap.Logger
}

// New returns a production zap.Logger wrapped as Logger.
func New() (Logger, error) {
	z, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return &zapLogger{z: z}, nil
}

// NewDevelopment returns a human-readable zap.Logger, suitable for
// cmd/moga's console output.
func NewDevelopment() (Logger, error) {
	z, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	return &zapLogger{z: z}, nil
}

func (l *zapLogger) Debug(msg string, fields ...zap.Field) { l.z.Debug(msg, fields...) }
func (l *zapLogger) Info(msg string, fields ...zap.Field)  { l.z.Info(msg, fields...) }
func (l *zapLogger) Warn(msg string, fields ...zap.Field)  { l.z.Warn(msg, fields...) }
func (l *zapLogger) Error(msg string, fields ...zap.Field) { l.z.Error(msg, fields...) }
func (l *zapLogger) With(fields ...zap.Field) Logger       { return &zapLogger{z: l.z.With(fields...)} }
func (l *zapLogger) Sync() error                           { return l.z.Sync() }

// NoOp is a logger that discards everything, used in tests and
// headless runs.
type NoOp struct{}

func (NoOp) Debug(string, ...zap.Field) {}
func (NoOp) Info(string, ...zap.Field)  {}
func (NoOp) Warn(string, ...zap.Field)  {}
func (NoOp) Error(string, ...zap.Field) {}
func (NoOp) With(...zap.Field) Logger   { return NoOp{} }
func (NoOp) Sync() error                { return nil }
