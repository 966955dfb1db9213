// Package logger wraps zap with the field conventions GoFresh logs under.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dbsmedya/gofresh/internal/config"
)

// Logger wraps zap.SugaredLogger with context methods for the identifiers
// that recur across GoFresh log lines.
type Logger struct {
	*zap.SugaredLogger
	base *zap.Logger
}

// New builds a Logger from the logging section of the configuration.
func New(cfg *config.LoggingConfig) (*Logger, error) {
	zc := zap.Config{
		Level:            zap.NewAtomicLevelAt(parseLevel(cfg.Level)),
		Encoding:         encoding(cfg.Format),
		EncoderConfig:    encoderConfig(cfg.Format),
		OutputPaths:      outputPaths(cfg.Output),
		ErrorOutputPaths: []string{"stderr"},
	}

	base, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return &Logger{
		SugaredLogger: base.Sugar(),
		base:          base,
	}, nil
}

// NewDefault creates a Logger with default settings (info level, text
// format, stdout) for code paths that run before configuration is loaded.
func NewDefault() *Logger {
	logger, _ := New(&config.LoggingConfig{
		Level:  "info",
		Format: "text",
		Output: "stdout",
	})
	return logger
}

func parseLevel(level string) zapcore.Level {
	if level == "" {
		return zapcore.InfoLevel
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

func encoding(format string) string {
	if format == "json" {
		return "json"
	}
	return "console"
}

// encoderConfig starts from zap's production keys, with readable times
// and colored levels on the console encoder.
func encoderConfig(format string) zapcore.EncoderConfig {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "time"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	if format != "json" {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return ec
}

// outputPaths maps the configured output onto zap sink paths. File output
// keeps a copy on stdout so interactive runs stay visible.
func outputPaths(output string) []string {
	switch output {
	case "stdout", "":
		return []string{"stdout"}
	case "stderr":
		return []string{"stderr"}
	default:
		return []string{"stdout", output}
	}
}

func (l *Logger) with(args ...interface{}) *Logger {
	return &Logger{
		SugaredLogger: l.SugaredLogger.With(args...),
		base:          l.base,
	}
}

// WithTable tags entries with a qualified table name.
func (l *Logger) WithTable(tableName string) *Logger {
	return l.with("table", tableName)
}

// WithColumn tags entries with a column name.
func (l *Logger) WithColumn(columnName string) *Logger {
	return l.with("column", columnName)
}

// WithTrigger tags entries with the analysis trigger.
func (l *Logger) WithTrigger(trigger string) *Logger {
	return l.with("trigger", trigger)
}

// Sync flushes buffered entries. Call it before the process exits.
func (l *Logger) Sync() error {
	return l.base.Sync()
}
