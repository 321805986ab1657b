package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessiontimeout/core/config"
)

type sweepConfig struct {
	Interval time.Duration `env:"TEST_SWEEP_INTERVAL" envDefault:"5m"`
	DryRun   bool          `env:"TEST_SWEEP_DRY_RUN"`
}

type requiredConfig struct {
	URL string `env:"TEST_REQUIRED_URL,required"`
}

func TestLoad(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		config.Reset()

		var cfg sweepConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, 5*time.Minute, cfg.Interval)
		assert.False(t, cfg.DryRun)
	})

	t.Run("caches per type", func(t *testing.T) {
		config.Reset()
		t.Setenv("TEST_SWEEP_INTERVAL", "1m")

		var first sweepConfig
		require.NoError(t, config.Load(&first))
		assert.Equal(t, time.Minute, first.Interval)

		t.Setenv("TEST_SWEEP_INTERVAL", "2m")
		var second sweepConfig
		require.NoError(t, config.Load(&second))
		assert.Equal(t, time.Minute, second.Interval)
	})

	t.Run("reports missing required values", func(t *testing.T) {
		config.Reset()

		var cfg requiredConfig
		err := config.Load(&cfg)
		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrParse)
	})

	t.Run("must load panics on error", func(t *testing.T) {
		config.Reset()

		assert.Panics(t, func() {
			config.MustLoad(&requiredConfig{})
		})
	})
}

func TestParse(t *testing.T) {
	t.Setenv("TEST_SWEEP_INTERVAL", "1m")

	var cfg sweepConfig
	require.NoError(t, config.Parse(&cfg))
	assert.Equal(t, time.Minute, cfg.Interval)

	t.Setenv("TEST_SWEEP_INTERVAL", "3m")
	require.NoError(t, config.Parse(&cfg))
	assert.Equal(t, 3*time.Minute, cfg.Interval)

	t.Setenv("TEST_SWEEP_INTERVAL", "soon")
	err := config.Parse(&cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrParse)
}
