// Package logger wraps zap so the rest of the application shares one
// configured *zap.Logger.
package logger

import (
	"go.uber.org/zap"
)

// ZapLogger holds the process logger. Log is a no-op logger until Init is called.
type ZapLogger struct {
	Log *zap.Logger
}

// New returns a ZapLogger backed by zap.NewNop.
func New() *ZapLogger {
	return &ZapLogger{Log: zap.NewNop()}
}

// Init replaces Log with a production zap logger at the given level
// ("debug", "info", "warn", "error"; case-insensitive).
func (l *ZapLogger) Init(level string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = lvl

	zl, err := cfg.Build()
	if err != nil {
		return err
	}
	l.Log = zl
	return nil
}
