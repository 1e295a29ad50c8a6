package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arkiv-Network/inf-demo/internal/queue"
)

const genesisTs = int64(1_700_000_000)

func TestBackfill(t *testing.T) {
	farFuture := genesisTs + 365*daySeconds

	t.Run("walks down from the oldest stored block", func(t *testing.T) {
		chain := newFakeChain(1100, genesisTs)
		env := newTestEnv(t, chain, farFuture)
		storeChainBlocks(t, env, chain, 1000, 1000)

		stored, err := env.svc.Backfill(t.Context(), 5)
		require.NoError(t, err)
		assert.Equal(t, 5, stored)
		assert.Equal(t, []uint64{999, 998, 997, 996, 995}, chain.numberCalls)
		// one flush for fewer blocks than the batch size
		assert.Equal(t, 1, env.published.count(queue.BlocksStoredEventType))

		oldest, err := env.store.GetOldestBlockNumber(t.Context())
		require.NoError(t, err)
		assert.Equal(t, uint64(995), oldest)
	})

	t.Run("starts at the chain head when nothing is stored", func(t *testing.T) {
		chain := newFakeChain(50, genesisTs)
		env := newTestEnv(t, chain, farFuture)

		stored, err := env.svc.Backfill(t.Context(), 3)
		require.NoError(t, err)
		assert.Equal(t, 3, stored)
		assert.Equal(t, []uint64{50, 49, 48}, chain.numberCalls)
	})

	t.Run("flushes every hundred blocks", func(t *testing.T) {
		chain := newFakeChain(1100, genesisTs)
		env := newTestEnv(t, chain, farFuture)
		storeChainBlocks(t, env, chain, 1000, 1000)

		stored, err := env.svc.Backfill(t.Context(), 250)
		require.NoError(t, err)
		assert.Equal(t, 250, stored)
		assert.Equal(t, 3, env.published.count(queue.BlocksStoredEventType))

		count, err := env.store.CountBlocks(t.Context())
		require.NoError(t, err)
		assert.Equal(t, 251, count)
	})

	t.Run("keeps fetched blocks when a fetch fails", func(t *testing.T) {
		chain := newFakeChain(1100, genesisTs)
		chain.failNumbers[997] = true
		env := newTestEnv(t, chain, farFuture)
		storeChainBlocks(t, env, chain, 1000, 1000)

		stored, err := env.svc.Backfill(t.Context(), 5)
		require.NoError(t, err)
		assert.Equal(t, 2, stored)
		assert.Equal(t, []uint64{999, 998, 997}, chain.numberCalls)
	})

	t.Run("nothing fetched skips aggregation", func(t *testing.T) {
		chain := newFakeChain(1100, genesisTs)
		chain.failNumbers[999] = true
		env := newTestEnv(t, chain, farFuture)
		storeChainBlocks(t, env, chain, 1000, 1000)

		stored, err := env.svc.Backfill(t.Context(), 5)
		require.NoError(t, err)
		assert.Zero(t, stored)
		assert.Empty(t, chain.glmCalls)
		assert.Zero(t, env.published.count(queue.BlocksStoredEventType))
	})

	t.Run("stops at genesis", func(t *testing.T) {
		chain := newFakeChain(10, genesisTs)
		env := newTestEnv(t, chain, farFuture)
		storeChainBlocks(t, env, chain, 2, 2)

		stored, err := env.svc.Backfill(t.Context(), 10)
		require.NoError(t, err)
		assert.Equal(t, 2, stored)
		assert.Equal(t, []uint64{1, 0}, chain.numberCalls)
	})

	t.Run("aggregates the covered hours", func(t *testing.T) {
		// 300 blocks 12s apart fill the first hour after genesis
		start := floorTo(genesisTs, hourSeconds) + hourSeconds
		chain := newFakeChain(0, 0)
		for n := uint64(1); n <= 400; n++ {
			b := chainBlock(n, start+int64(n-1)*12)
			chain.blocks[n] = b
			chain.byHash[b.Hash] = b
		}
		chain.head = 400
		env := newTestEnv(t, chain, farFuture)

		stored, err := env.svc.Backfill(t.Context(), 400)
		require.NoError(t, err)
		assert.Equal(t, 400, stored)

		hourly, err := env.store.GetAggregates(t.Context(), "hourly", -1, nil)
		require.NoError(t, err)
		require.Len(t, hourly, 1)
		assert.Equal(t, start+hourSeconds, hourly[0].StatsTimestamp)
		assert.Equal(t, [][2]uint64{{1, 300}}, chain.glmCalls)
		assert.Equal(t, 1, env.published.count(queue.StatsEventType))
	})

	t.Run("rejects a non positive target", func(t *testing.T) {
		env := newTestEnv(t, newFakeChain(1, genesisTs), farFuture)
		_, err := env.svc.Backfill(t.Context(), 0)
		require.Error(t, err)
	})
}
