package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPollerConfig_Validate(t *testing.T) {
	t.Run("all fields set", func(t *testing.T) {
		cfg := &PollerConfig{
			PollInterval:          2 * time.Second,
			MinCollectionInterval: 12 * time.Second,
			MaxWalkSteps:          50,
		}
		require.NoError(t, cfg.Validate())
		assert.Equal(t, 50, cfg.MaxWalkSteps)
	})

	t.Run("max walk steps not set - should use default", func(t *testing.T) {
		cfg := &PollerConfig{
			PollInterval: time.Second,
		}
		require.NoError(t, cfg.Validate())
		assert.Equal(t, defaultMaxWalkSteps, cfg.MaxWalkSteps)
	})

	t.Run("poll interval not set - should error", func(t *testing.T) {
		cfg := &PollerConfig{
			MinCollectionInterval: 12 * time.Second,
		}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "poll-interval must be positive")
	})

	t.Run("negative min collection interval - should error", func(t *testing.T) {
		cfg := &PollerConfig{
			PollInterval:          time.Second,
			MinCollectionInterval: -time.Second,
		}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "min-collection-interval")
	})
}
