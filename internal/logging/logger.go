// Package logging provides the structured diagnostic sink used across the
// allocator: go.uber.org/zap wrapped behind a small Config selecting format
// and level. There is deliberately no metrics hook wrapped around the core
// here. The allocator logs two events through it (chunk lifecycle at Debug,
// fatal OS mapping failure at Error); it exposes no counters or stats
// registry.
package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps *zap.Logger so callers depend on this package, not zap
// directly, keeping the third-party choice swappable in one place.
type Logger struct {
	z *zap.Logger
}

// Config selects the logger's output format and minimum level.
type Config struct {
	// Format is "json" or "console".
	Format string `envconfig:"LOG_FORMAT" default:"json"`
	// Level is one of debug, info, warn, error.
	Level string `envconfig:"LOG_LEVEL" default:"info"`
}

// New builds a Logger from cfg. It never fails on an unknown Level or Format;
// both fall back to sane defaults, since a misconfigured logger must not be
// the reason the allocator itself cannot start.
func New(cfg Config) *Logger {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var encoder zapcore.Encoder
	switch strings.ToLower(cfg.Format) {
	case "console", "text":
		encCfg := zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	default:
		encCfg := zap.NewProductionEncoderConfig()
		encCfg.TimeKey = "timestamp"
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level)
	return &Logger{z: zap.New(core, zap.AddCaller())}
}

// Nop returns a Logger that discards everything, used as the default sink
// until a caller opts into real logging via SetLogger.
func Nop() *Logger {
	return &Logger{z: zap.NewNop()}
}

func parseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("invalid log level: %s", level)
	}
}

// Debug logs a diagnostic at Debug level. The allocator uses it for
// chunk-lifecycle events, which are off the hot path (chunk creation/release,
// not every allocate/free call).
func (l *Logger) Debug(msg string, fields ...zap.Field) {
	l.z.Debug(msg, fields...)
}

// Fatal logs the "kernel refused a mapping" diagnostic required by spec
// error handling, then panics. It does not call os.Exit itself so a caller
// (e.g. a test) can recover the panic deterministically.
func (l *Logger) Fatal(msg string, fields ...zap.Field) {
	l.z.Error(msg, fields...)
	panic(msg)
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	return l.z.Sync()
}
