// Package observability builds the zap loggers shared by the CLI
// commands.
package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// CLILogger is the process-wide command logger. It starts as a nop
// logger and is replaced by Configure before any command runs.
var CLILogger = zap.NewNop()

// Configure builds the command logger for the given level name and
// installs it as CLILogger. Command diagnostics go to stderr so stdout
// stays clean for document output.
func Configure(level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("unknown log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	CLILogger = logger
	return logger, nil
}

// Sync flushes any buffered log entries. Called on command exit.
func Sync() {
	_ = CLILogger.Sync()
}
