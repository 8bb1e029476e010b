package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the production JSON logger used by the server.
func New() (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.MessageKey = "message"
	config.EncoderConfig.LevelKey = "level"

	return config.Build()
}

func NewSugared() (*zap.SugaredLogger, error) {
	logger, err := New()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

// NewConsole builds a human-readable logger for the CLI.
func NewConsole(verbose bool) (*zap.Logger, error) {
	config := zap.NewDevelopmentConfig()
	if !verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	config.DisableStacktrace = true
	return config.Build()
}
