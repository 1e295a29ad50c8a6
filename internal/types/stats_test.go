package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatsType(t *testing.T) {
	t.Run("hourly", func(t *testing.T) {
		st, err := ParseStatsType("hourly")
		require.NoError(t, err)
		assert.Equal(t, StatsHourly, st)
	})
	t.Run("daily", func(t *testing.T) {
		st, err := ParseStatsType("daily")
		require.NoError(t, err)
		assert.Equal(t, StatsDaily, st)
	})
	t.Run("unknown", func(t *testing.T) {
		_, err := ParseStatsType("weekly")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid stats type")
	})
}
