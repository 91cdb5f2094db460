package app

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dshills/keychord/internal/config"
)

// LoggerConfig configures the logger.
type LoggerConfig struct {
	// Level is the minimum level: debug, info, warn or error.
	Level string
	// Format is "console" or "json".
	Format string
	// File receives the log output. Empty means stderr.
	File string
}

// DefaultLoggerConfig returns the default logger configuration.
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		Level:  "info",
		Format: config.FormatConsole,
	}
}

// LoggerConfigFrom converts the log section of a configuration.
func LoggerConfigFrom(c config.LogConfig) LoggerConfig {
	return LoggerConfig{Level: c.Level, Format: c.Format, File: c.File}
}

// NewLogger builds a zap logger from cfg.
func NewLogger(cfg LoggerConfig) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		l, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		level = l
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	switch cfg.Format {
	case "", config.FormatConsole:
		zcfg.Encoding = config.FormatConsole
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	case config.FormatJSON:
		zcfg.Encoding = config.FormatJSON
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	if cfg.File != "" {
		zcfg.OutputPaths = []string{cfg.File}
		zcfg.ErrorOutputPaths = []string{cfg.File}
	}

	return zcfg.Build()
}

// TerminalLogger returns the logger for the terminal demo. The screen owns
// stderr, so logging is disabled unless cfg names a file.
func TerminalLogger(cfg LoggerConfig) (*zap.Logger, error) {
	if cfg.File == "" {
		return zap.NewNop(), nil
	}
	return NewLogger(cfg)
}
