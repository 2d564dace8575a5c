// Package observability holds process-wide logging for the CLI.
package observability

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// CLILogger is the logger used by all commands. It defaults to a nop
// logger so library consumers and tests stay quiet until InitCLILogger
// is called from the root command.
var CLILogger = zap.NewNop()

// InitCLILogger configures CLILogger. level is a zap level name ("debug",
// "info", "warn", "error"); unknown values fall back to info. When
// structured is true the logger emits production JSON, otherwise a
// human-oriented console format on stderr.
func InitCLILogger(level string, structured bool) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	var cfg zap.Config
	if structured {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := cfg.Build()
	if err != nil {
		// Never leave CLILogger nil; a nop logger beats a crash on startup.
		CLILogger = zap.NewNop()
		return
	}
	CLILogger = logger
}

// Sync flushes buffered log entries. Safe to call on a nop logger.
func Sync() {
	_ = CLILogger.Sync()
}
