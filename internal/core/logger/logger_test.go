package logger //nolint:testpackage // test package

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewDefault(t *testing.T) { //nolint:paralleltest // global logger
	logger := newDefault()

	require.NotNil(t, logger)
	require.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewZapCfg(t *testing.T) { //nolint:paralleltest // global logger
	tests := []struct {
		name     string
		mod      LogMod
		level    zapcore.Level
		expected zapcore.Level
	}{
		{
			name:     "Production mode",
			mod:      ProductionMod,
			level:    zapcore.WarnLevel,
			expected: zapcore.WarnLevel,
		},
		{
			name:     "Development mode ignores level",
			mod:      DevelopmentMod,
			level:    zapcore.ErrorLevel,
			expected: zapcore.DebugLevel,
		},
		{
			name:     "Unknown mode",
			mod:      "unknown",
			level:    zapcore.WarnLevel,
			expected: zapcore.DebugLevel,
		},
	}

	for _, tt := range tests { //nolint:paralleltest // global logger
		t.Run(tt.name, func(t *testing.T) {
			cfg := newZapCfg(tt.mod, tt.level)
			require.Equal(t, tt.expected, cfg.Level.Level())
		})
	}
}

func TestParseMapping(t *testing.T) {
	t.Parallel()

	require.Nil(t, parseMapping(""))
	require.Equal(t,
		map[string]LogMod{"sensor": "debug", "dbt": "warn"},
		parseMapping("sensor=debug, dbt=warn,broken"),
	)
}

func TestNewFromConfig(t *testing.T) { //nolint:paralleltest // global logger
	logger := NewFromConfig(&Config{
		LogMod:     ProductionMod,
		LogLevel:   zapcore.WarnLevel.String(),
		LogMapping: map[string]LogMod{"sensor": "error"},
	})

	require.Same(t, logger, Global())
	require.True(t, logger.Core().Enabled(zapcore.WarnLevel))
	require.False(t, logger.Core().Enabled(zapcore.InfoLevel))

	named := Named("sensor")
	require.False(t, named.Core().Enabled(zapcore.WarnLevel))
	require.True(t, named.Core().Enabled(zapcore.ErrorLevel))
}

func TestNewFromConfigPanicsOnBadLevel(t *testing.T) { //nolint:paralleltest // global logger
	require.Panics(t, func() {
		NewFromConfig(&Config{LogMod: ProductionMod, LogLevel: "loud"})
	})
}

func TestZerologBridge(t *testing.T) { //nolint:paralleltest // global logger
	NewFromConfig(&Config{LogMod: ProductionMod, LogLevel: zapcore.InfoLevel.String()})

	zl := Zerolog()
	require.NotNil(t, zl)
	require.Equal(t, "info", zl.GetLevel().String())
	require.NotNil(t, Slog())
}
