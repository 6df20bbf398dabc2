// Package logging provides structured logging using uber/zap.
//
// The terminal belongs to the dashboard, so logs go to a file (by default
// under the state directory). Development mode switches to the colored
// console encoder, which is easier to tail.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config defines logger configuration.
type Config struct {
	Level       string // "debug", "info", "warn", "error"
	Development bool
	OutputPaths []string
}

// New creates a new logger with the provided configuration.
func New(cfg Config) (*zap.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	for _, p := range cfg.OutputPaths {
		if p == "stdout" || p == "stderr" {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}

	zapCfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       cfg.Development,
		Encoding:          encodingFormat(cfg.Development),
		EncoderConfig:     encoderConfig(cfg.Development),
		OutputPaths:       cfg.OutputPaths,
		ErrorOutputPaths:  cfg.OutputPaths,
		DisableCaller:     !cfg.Development,
		DisableStacktrace: !cfg.Development,
	}
	return zapCfg.Build()
}

// RecoverAndLog logs a recovered panic with its stack. Use as
// `defer logging.RecoverAndLog(log, "context")`; it does not re-panic.
func RecoverAndLog(log *zap.Logger, context string) {
	if r := recover(); r != nil {
		logPanic(log, context, r)
	}
}

// RecoverInto is RecoverAndLog for functions with a named error result: the
// panic is logged and stored in *err.
func RecoverInto(log *zap.Logger, context string, err *error) {
	if r := recover(); r != nil {
		logPanic(log, context, r)
		*err = fmt.Errorf("panic in %s: %v", context, r)
	}
}

func logPanic(log *zap.Logger, context string, r any) {
	log.Error("panic recovered",
		zap.String("context", context),
		zap.Any("panic", r),
		zap.ByteString("stack", debug.Stack()),
	)
}

// parseLevel converts string level to zapcore.Level.
func parseLevel(level string) (zapcore.Level, error) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("parse log level %q: %w", level, err)
	}
	return l, nil
}

func encodingFormat(development bool) string {
	if development {
		return "console"
	}
	return "json"
}

func encoderConfig(development bool) zapcore.EncoderConfig {
	if development {
		return zapcore.EncoderConfig{
			TimeKey:        "T",
			LevelKey:       "L",
			NameKey:        "N",
			CallerKey:      "C",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "M",
			StacktraceKey:  "S",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalColorLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		}
	}

	return zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}
