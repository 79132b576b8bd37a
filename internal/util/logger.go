package util

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.Logger

// InitLogger initializes the global logger. level is a zap level name; an
// empty or unknown level keeps the environment default.
func InitLogger(env, level string) error {
	var config zap.Config

	if env == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if level != "" {
		if lvl, err := zapcore.ParseLevel(level); err == nil {
			config.Level = zap.NewAtomicLevelAt(lvl)
		}
	}

	built, err := config.Build()
	if err != nil {
		return err
	}

	logger = built.With(zap.String("service", "storefront"))
	zap.ReplaceGlobals(logger)
	return nil
}

// GetLogger returns the global logger
func GetLogger() *zap.Logger {
	if logger == nil {
		logger, _ = zap.NewDevelopment()
	}
	return logger
}

// SyncLogger flushes any buffered log entries
func SyncLogger() {
	if logger != nil {
		_ = logger.Sync()
	}
}
