package logger

import (
	"testing"

	"license-tracker/pkg/config"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestBuildLevels(t *testing.T) {
	log, err := build(nil)
	require.NoError(t, err)
	require.True(t, log.Core().Enabled(zapcore.DebugLevel))

	cfg := &config.Config{AppEnv: "production"}
	log, err = build(cfg)
	require.NoError(t, err)
	require.False(t, log.Core().Enabled(zapcore.DebugLevel))
	require.True(t, log.Core().Enabled(zapcore.InfoLevel))

	cfg.LogLevel = "warn"
	log, err = build(cfg)
	require.NoError(t, err)
	require.False(t, log.Core().Enabled(zapcore.InfoLevel))

	cfg.LogLevel = "loud"
	_, err = build(cfg)
	require.Error(t, err)
}

func TestNewReplacesGlobals(t *testing.T) {
	prev := zap.L()
	t.Cleanup(func() { zap.ReplaceGlobals(prev) })

	log, err := New(Params{Cfg: &config.Config{AppEnv: "production", LogLevel: "error"}})
	require.NoError(t, err)
	require.Same(t, log, zap.L())
}
