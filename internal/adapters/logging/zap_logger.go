// Package logging adapts zap to the application Logger port.
package logging

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/have-fun-was-taken/yafc-ce/internal/application/common"
	"github.com/have-fun-was-taken/yafc-ce/internal/infrastructure/config"
)

// ZapLogger implements common.Logger on top of a zap logger
type ZapLogger struct {
	logger *zap.Logger
}

// NewZapLogger wraps an existing zap logger
func NewZapLogger(logger *zap.Logger) *ZapLogger {
	return &ZapLogger{logger: logger}
}

// NewFromConfig builds a zap logger for the logging section of the config
func NewFromConfig(cfg config.LoggingConfig) (*ZapLogger, error) {
	var zc zap.Config
	switch cfg.Format {
	case "json":
		zc = zap.NewProductionConfig()
	case "console":
		zc = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("invalid log format %q: want json or console", cfg.Format)
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.DisableCaller = !cfg.IncludeCaller
	zc.DisableStacktrace = !cfg.IncludeStacktrace

	output := cfg.Output
	if output == "file" {
		output = cfg.FilePath
	}
	zc.OutputPaths = []string{output}
	zc.ErrorOutputPaths = []string{"stderr"}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return NewZapLogger(logger), nil
}

// Log writes one entry; metadata keys become fields in sorted order
func (l *ZapLogger) Log(level, message string, metadata map[string]interface{}) {
	fields := make([]zap.Field, 0, len(metadata))
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fields = append(fields, zap.Any(k, metadata[k]))
	}

	switch level {
	case common.LevelDebug:
		l.logger.Debug(message, fields...)
	case common.LevelWarning:
		l.logger.Warn(message, fields...)
	case common.LevelError:
		l.logger.Error(message, fields...)
	default:
		l.logger.Info(message, fields...)
	}
}

// Zap exposes the underlying logger
func (l *ZapLogger) Zap() *zap.Logger { return l.logger }

// Sync flushes buffered entries
func (l *ZapLogger) Sync() error { return l.logger.Sync() }
