package logger

import (
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process logger. The level comes from LOG_LEVEL (debug,
// info, warn, error), defaulting to info.
func New() (*zap.Logger, error) {
	viper.SetDefault("LOG_LEVEL", "info")
	viper.AutomaticEnv()

	level, err := zapcore.ParseLevel(viper.GetString("LOG_LEVEL"))
	if err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	return cfg.Build()
}
