package services

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arkiv-Network/inf-demo/internal/clients/ethclient"
	"github.com/Arkiv-Network/inf-demo/internal/config"
	"github.com/Arkiv-Network/inf-demo/internal/datastore"
	"github.com/Arkiv-Network/inf-demo/internal/queue"
	"github.com/Arkiv-Network/inf-demo/internal/types"
)

func hourlyGate(n int) func(*config.Config) {
	return func(cfg *config.Config) { cfg.Aggregator.HourlyMinBlocks = n }
}

func dailyGate(n int) func(*config.Config) {
	return func(cfg *config.Config) { cfg.Aggregator.DailyMinHours = n }
}

// storeWindowBlocks stores count blocks numbered from first, evenly spread
// over the hour ending at bucket
func storeWindowBlocks(t *testing.T, env *testEnv, first uint64, count int, bucket int64) {
	t.Helper()
	step := hourSeconds / int64(count)
	var records []*datastore.BlockRecord
	for i := 0; i < count; i++ {
		b := chainBlock(first+uint64(i), bucket-hourSeconds+int64(i)*step)
		records = append(records, toBlockRecord(b))
	}
	_, err := env.store.StoreBlocks(t.Context(), records, nil)
	require.NoError(t, err)
}

func TestAggregateHour(t *testing.T) {
	const bucket = int64(1_700_002_800) // aligned to the hour
	now := bucket + daySeconds

	t.Run("example window with a lowered gate", func(t *testing.T) {
		chain := newFakeChain(0, 0)
		chain.transfers[2] = &ethclient.GLMTransferStats{Count: 2, Amount: 1.5}
		env := newTestEnv(t, chain, now, hourlyGate(3))

		for i, ts := range []int64{100, 200, 300} {
			_, err := env.store.StoreBlocks(t.Context(), []*datastore.BlockRecord{{
				BlockNumber:      uint64(i + 1),
				BlockHash:        blockHash(uint64(i + 1)).Hex(),
				Timestamp:        ts,
				TransactionCount: i + 1,
				GasPrice:         big.NewInt(int64(10 * (i + 1))),
			}}, nil)
			require.NoError(t, err)
		}

		ref := int64(3600)
		agg, err := env.svc.AggregateHour(t.Context(), &ref)
		require.NoError(t, err)
		require.True(t, agg.Persisted())
		assert.Equal(t, types.StatsHourly, agg.StatsType)
		assert.Equal(t, int64(3600), agg.StatsTimestamp)
		assert.Equal(t, uint64(6), agg.TotalTransactionCount)
		assert.Equal(t, "20", agg.AvgGasPrice.String())
		assert.Equal(t, uint64(2), agg.TotalGLMTransfersCount)
		assert.InDelta(t, 1.5, agg.TotalGLMTransfersAmount, 1e-9)
		assert.Equal(t, [][2]uint64{{1, 3}}, chain.glmCalls)
		assert.Equal(t, 1, env.published.count(queue.StatsEventType))
	})

	t.Run("incomplete window is not persisted", func(t *testing.T) {
		chain := newFakeChain(0, 0)
		env := newTestEnv(t, chain, now)
		storeWindowBlocks(t, env, 1, 199, bucket)

		ref := bucket
		agg, err := env.svc.AggregateHour(t.Context(), &ref)
		require.NoError(t, err)
		assert.False(t, agg.Persisted())
		assert.Zero(t, agg.TotalTransactionCount)
		assert.Zero(t, agg.AvgGasPrice.Sign())
		assert.Empty(t, chain.glmCalls)

		existing, err := env.store.GetAggregates(t.Context(), types.StatsHourly, -1, nil)
		require.NoError(t, err)
		assert.Empty(t, existing)
		assert.Zero(t, env.published.count(queue.StatsEventType))
	})

	t.Run("complete window is persisted once", func(t *testing.T) {
		chain := newFakeChain(0, 0)
		env := newTestEnv(t, chain, now)
		storeWindowBlocks(t, env, 1, 200, bucket)

		// any reference inside the following hour targets the same bucket
		ref := bucket + 1799
		first, err := env.svc.AggregateHour(t.Context(), &ref)
		require.NoError(t, err)
		require.True(t, first.Persisted())
		assert.Equal(t, bucket, first.StatsTimestamp)

		second, err := env.svc.AggregateHour(t.Context(), &ref)
		require.NoError(t, err)
		assert.Equal(t, first.Key, second.Key)
		assert.Equal(t, first.TotalTransactionCount, second.TotalTransactionCount)
		assert.Equal(t, first.AvgGasPrice.String(), second.AvgGasPrice.String())

		existing, err := env.store.GetAggregates(t.Context(), types.StatsHourly, -1, nil)
		require.NoError(t, err)
		assert.Len(t, existing, 1)
		assert.Len(t, chain.glmCalls, 1)
	})

	t.Run("average gas price is floored", func(t *testing.T) {
		env := newTestEnv(t, newFakeChain(0, 0), now, hourlyGate(2))
		_, err := env.store.StoreBlocks(t.Context(), []*datastore.BlockRecord{
			{BlockNumber: 1, Timestamp: bucket - 100, GasPrice: big.NewInt(10)},
			{BlockNumber: 2, Timestamp: bucket - 50, GasPrice: big.NewInt(11)},
		}, nil)
		require.NoError(t, err)

		ref := bucket
		agg, err := env.svc.AggregateHour(t.Context(), &ref)
		require.NoError(t, err)
		assert.Equal(t, "10", agg.AvgGasPrice.String())
	})

	t.Run("block at the bucket boundary belongs to the next hour", func(t *testing.T) {
		env := newTestEnv(t, newFakeChain(0, 0), now, hourlyGate(1))
		_, err := env.store.StoreBlocks(t.Context(), []*datastore.BlockRecord{
			{BlockNumber: 1, Timestamp: bucket, GasPrice: big.NewInt(10)},
		}, nil)
		require.NoError(t, err)

		ref := bucket
		agg, err := env.svc.AggregateHour(t.Context(), &ref)
		require.NoError(t, err)
		assert.False(t, agg.Persisted())
	})

	t.Run("defaults to now", func(t *testing.T) {
		env := newTestEnv(t, newFakeChain(0, 0), bucket+10, hourlyGate(1))
		_, err := env.store.StoreBlocks(t.Context(), []*datastore.BlockRecord{
			{BlockNumber: 1, Timestamp: bucket - 1, GasPrice: big.NewInt(7)},
		}, nil)
		require.NoError(t, err)

		agg, err := env.svc.AggregateHour(t.Context(), nil)
		require.NoError(t, err)
		require.True(t, agg.Persisted())
		assert.Equal(t, bucket, agg.StatsTimestamp)
	})
}

func storeHourlies(t *testing.T, env *testEnv, end int64, count int) {
	t.Helper()
	for i := 0; i < count; i++ {
		err := env.store.StoreAggregate(t.Context(), &datastore.AggregateRecord{
			StatsType:               types.StatsHourly,
			StatsTimestamp:          end - int64(i)*hourSeconds,
			TotalTransactionCount:   100,
			AvgGasPrice:             big.NewInt(int64(10 + i)),
			TotalGLMTransfersCount:  1,
			TotalGLMTransfersAmount: 0.5,
		})
		require.NoError(t, err)
	}
}

func TestAggregateDay(t *testing.T) {
	const end = int64(1_700_006_400)
	now := end + daySeconds

	t.Run("incomplete day is not persisted", func(t *testing.T) {
		env := newTestEnv(t, newFakeChain(0, 0), now)
		storeHourlies(t, env, end, 23)

		ref := end
		agg, err := env.svc.AggregateDay(t.Context(), &ref)
		require.NoError(t, err)
		assert.False(t, agg.Persisted())
		assert.Zero(t, agg.TotalTransactionCount)

		existing, err := env.store.GetAggregates(t.Context(), types.StatsDaily, -1, nil)
		require.NoError(t, err)
		assert.Empty(t, existing)
	})

	t.Run("sums the hourly records", func(t *testing.T) {
		chain := newFakeChain(0, 0)
		env := newTestEnv(t, chain, now)
		storeHourlies(t, env, end, 24)
		// outside of the rolling window
		storeHourlies(t, env, end-daySeconds, 1)

		ref := end
		agg, err := env.svc.AggregateDay(t.Context(), &ref)
		require.NoError(t, err)
		require.True(t, agg.Persisted())
		assert.Equal(t, types.StatsDaily, agg.StatsType)
		assert.Equal(t, end, agg.StatsTimestamp)
		assert.Equal(t, uint64(2400), agg.TotalTransactionCount)
		assert.Equal(t, uint64(24), agg.TotalGLMTransfersCount)
		assert.InDelta(t, 12.0, agg.TotalGLMTransfersAmount, 1e-9)
		// floor((10+...+33)/24) = floor(516/24)
		assert.Equal(t, "21", agg.AvgGasPrice.String())
		// daily totals come from the hourly records only
		assert.Empty(t, chain.glmCalls)

		again, err := env.svc.AggregateDay(t.Context(), &ref)
		require.NoError(t, err)
		assert.Equal(t, agg.Key, again.Key)
	})
}

func TestFloorAverage(t *testing.T) {
	assert.Equal(t, "0", floorAverage(nil).String())
	assert.Equal(t, "3", floorAverage([]*big.Int{big.NewInt(3), big.NewInt(4)}).String())
	assert.Equal(t, "2", floorAverage([]*big.Int{big.NewInt(5), nil}).String())
}

func TestFloorTo(t *testing.T) {
	assert.Equal(t, int64(3600), floorTo(7199, hourSeconds))
	assert.Equal(t, int64(7200), floorTo(7200, hourSeconds))
	assert.Equal(t, int64(-3600), floorTo(-1, hourSeconds))
}
