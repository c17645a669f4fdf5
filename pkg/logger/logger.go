package logger

import (
	"context"
	"fmt"
	"strings"

	"license-tracker/pkg/config"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Module = fx.Module("zap",
	fx.Provide(
		New,
	),
)

type Params struct {
	fx.In

	Cfg *config.Config
	Lc  fx.Lifecycle `optional:"true"`
}

// New builds the process logger, installs it as the zap global and flushes it
// when the app stops.
func New(p Params) (*zap.Logger, error) {
	log, err := build(p.Cfg)
	if err != nil {
		return nil, err
	}

	zap.ReplaceGlobals(log)

	if p.Lc != nil {
		p.Lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				// stdout/stderr return EINVAL on sync under most terminals
				_ = log.Sync()
				return nil
			},
		})
	}

	return log, nil
}

func build(cfg *config.Config) (*zap.Logger, error) {
	if cfg == nil {
		cfg = &config.Config{}
	}

	zcfg := zap.NewDevelopmentConfig()
	if cfg.AppEnv == "production" {
		zcfg = zap.NewProductionConfig()
		zcfg.EncoderConfig.TimeKey = "timestamp"
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		zcfg.EncoderConfig.LevelKey = "severity"
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		zcfg.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
		zcfg.OutputPaths = []string{"stdout"}
		zcfg.ErrorOutputPaths = []string{"stderr"}
	}

	if lvl := strings.TrimSpace(cfg.LogLevel); lvl != "" {
		level, err := zapcore.ParseLevel(lvl)
		if err != nil {
			return nil, fmt.Errorf("log_level: %w", err)
		}
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}

	log, err := zcfg.Build()
	if err != nil {
		return nil, err
	}

	return log.With(
		zap.String("env", cfg.AppEnv),
		zap.String("service_name", cfg.AppName),
		zap.String("version", cfg.AppVersion),
		zap.Int64("node_id", cfg.NodeID),
	), nil
}
