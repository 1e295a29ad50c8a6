package datastore_test

import (
	"math/big"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arkiv-Network/inf-demo/internal/datastore"
	"github.com/Arkiv-Network/inf-demo/internal/db"
	"github.com/Arkiv-Network/inf-demo/internal/db/memory"
	"github.com/Arkiv-Network/inf-demo/internal/types"
)

func randomBlock(number uint64, ts int64) *datastore.BlockRecord {
	return &datastore.BlockRecord{
		BlockNumber:      number,
		BlockHash:        gofakeit.HexUint(256),
		ParentHash:       gofakeit.HexUint(256),
		Timestamp:        ts,
		TransactionCount: gofakeit.IntRange(0, 300),
		GasPrice:         big.NewInt(int64(gofakeit.IntRange(1, 100_000_000_000))),
		GasUsed:          gofakeit.Uint64(),
		GasLimit:         30_000_000,
		BaseFeePerGas:    big.NewInt(int64(gofakeit.IntRange(1, 100_000_000_000))),
		Size:             uint64(gofakeit.IntRange(500, 200_000)),
		Miner:            gofakeit.HexUint(160),
	}
}

func TestStoreBlocks(t *testing.T) {
	ctx := t.Context()
	store := datastore.New(memory.New(), datastore.WithBatchSize(100))

	var blocks []*datastore.BlockRecord
	for i := uint64(0); i < 250; i++ {
		blocks = append(blocks, randomBlock(1000+i, int64(1_700_000_000+12*i)))
	}

	var batches []int
	stored, err := store.StoreBlocks(ctx, blocks, func(batch []*datastore.BlockRecord) {
		batches = append(batches, len(batch))
	})
	require.NoError(t, err)
	assert.Equal(t, 250, stored)
	assert.Equal(t, []int{100, 100, 50}, batches)

	latest, err := store.GetLatestBlockNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1249), latest)

	oldest, err := store.GetOldestBlockNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), oldest)

	count, err := store.CountBlocks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 250, count)

	t.Run("round trip", func(t *testing.T) {
		got, err := store.GetBlockByNumber(ctx, 1010)
		require.NoError(t, err)
		want := blocks[10]
		assert.Equal(t, want.BlockNumber, got.BlockNumber)
		assert.Equal(t, want.BlockHash, got.BlockHash)
		assert.Equal(t, want.ParentHash, got.ParentHash)
		assert.Equal(t, want.Timestamp, got.Timestamp)
		assert.Equal(t, want.TransactionCount, got.TransactionCount)
		assert.Equal(t, want.GasPrice.String(), got.GasPrice.String())
		assert.Equal(t, want.BaseFeePerGas.String(), got.BaseFeePerGas.String())
		assert.Equal(t, want.GasUsed, got.GasUsed)
		assert.Equal(t, want.Size, got.Size)
		assert.Equal(t, want.Miner, got.Miner)
	})

	t.Run("missing block", func(t *testing.T) {
		_, err := store.GetBlockByNumber(ctx, 1)
		require.Error(t, err)
		assert.True(t, db.IsNotFoundError(err))
	})

	t.Run("range is inclusive", func(t *testing.T) {
		got, err := store.GetBlocksInRange(ctx, 1_700_000_012, 1_700_000_036)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, uint64(1001), got[0].BlockNumber)
		assert.Equal(t, uint64(1003), got[2].BlockNumber)
	})

	t.Run("latest blocks newest first", func(t *testing.T) {
		got, err := store.GetLatestBlocks(ctx, 10)
		require.NoError(t, err)
		require.Len(t, got, 10)
		assert.Equal(t, uint64(1249), got[0].BlockNumber)
		assert.Equal(t, uint64(1240), got[9].BlockNumber)
	})
}

func TestEmptyStore(t *testing.T) {
	store := datastore.New(memory.New())

	latest, err := store.GetLatestBlockNumber(t.Context())
	require.NoError(t, err)
	assert.Zero(t, latest)

	oldest, err := store.GetOldestBlockNumber(t.Context())
	require.NoError(t, err)
	assert.Zero(t, oldest)
}

func TestAggregates(t *testing.T) {
	ctx := t.Context()
	store := datastore.New(memory.New())

	for _, ts := range []int64{3600, 7200, 10800} {
		rec := &datastore.AggregateRecord{
			StatsType:               types.StatsHourly,
			StatsTimestamp:          ts,
			TotalTransactionCount:   uint64(ts / 3600),
			AvgGasPrice:             big.NewInt(ts),
			TotalGLMTransfersCount:  1,
			TotalGLMTransfersAmount: 1.5,
		}
		require.NoError(t, store.StoreAggregate(ctx, rec))
		assert.True(t, rec.Persisted())
	}
	require.NoError(t, store.StoreAggregate(ctx, &datastore.AggregateRecord{
		StatsType:      types.StatsDaily,
		StatsTimestamp: 86400,
		AvgGasPrice:    big.NewInt(1),
	}))

	t.Run("after is strict", func(t *testing.T) {
		got, err := store.GetAggregates(ctx, types.StatsHourly, 3600, nil)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, int64(7200), got[0].StatsTimestamp)
	})

	t.Run("upper bound is inclusive", func(t *testing.T) {
		upTo := int64(7200)
		got, err := store.GetAggregates(ctx, types.StatsHourly, 0, &upTo)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, big.NewInt(7200), got[1].AvgGasPrice)
		assert.InDelta(t, 1.5, got[1].TotalGLMTransfersAmount, 1e-9)
	})

	t.Run("stats since", func(t *testing.T) {
		got, err := store.GetStatsSince(ctx, types.StatsHourly, 7200, 168)
		require.NoError(t, err)
		assert.Len(t, got, 2)

		got, err = store.GetStatsSince(ctx, types.StatsDaily, 0, 30)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("find entities after", func(t *testing.T) {
		hourly := types.StatsHourly
		got, err := store.FindEntitiesAfter(ctx, 3600, &hourly, false)
		require.NoError(t, err)
		assert.Len(t, got, 2)

		got, err = store.FindEntitiesAfter(ctx, 3600, nil, false)
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})
}

func TestParsePolicy(t *testing.T) {
	ctx := t.Context()
	mem := memory.New()

	_, err := mem.CreateEntities(ctx, []db.EntityCreate{{
		Payload:     []byte(`{"blockNumber":"not-a-number"}`),
		ContentType: db.ContentTypeJSON,
		StringAttributes: map[string]string{
			datastore.AttrProject:  datastore.Project,
			datastore.AttrDataType: types.DataTypeBlock.String(),
			datastore.AttrVersion:  datastore.SchemaVersion,
		},
		NumericAttributes: map[string]uint64{datastore.AttrBlockTimestamp: 100, datastore.AttrBlockNumber: 1},
		ExpiresIn:         datastore.BlockTTL,
	}})
	require.NoError(t, err)

	valid := randomBlock(2, 150)
	_, err = datastore.New(mem).StoreBlocks(ctx, []*datastore.BlockRecord{valid}, nil)
	require.NoError(t, err)

	t.Run("skip invalid", func(t *testing.T) {
		got, err := datastore.New(mem).GetBlocksInRange(ctx, 0, 1000)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, uint64(2), got[0].BlockNumber)
	})

	t.Run("fail on invalid", func(t *testing.T) {
		_, err := datastore.New(mem, datastore.WithParsePolicy(datastore.FailOnInvalid)).GetBlocksInRange(ctx, 0, 1000)
		require.Error(t, err)
		var parseErr *datastore.ParseError
		assert.ErrorAs(t, err, &parseErr)
	})
}

func TestDeleteEntities(t *testing.T) {
	ctx := t.Context()
	mem := memory.New()
	store := datastore.New(mem)

	var blocks []*datastore.BlockRecord
	for i := uint64(0); i < 230; i++ {
		blocks = append(blocks, randomBlock(i+1, int64(i)))
	}
	_, err := store.StoreBlocks(ctx, blocks, nil)
	require.NoError(t, err)

	entities, err := store.FindEntitiesAfter(ctx, -1, nil, true)
	require.NoError(t, err)
	require.Len(t, entities, 230)

	keys := make([]string, len(entities))
	for i, e := range entities {
		keys[i] = e.Key
	}
	deleted, err := store.DeleteEntities(ctx, keys)
	require.NoError(t, err)
	assert.Equal(t, 230, deleted)
	assert.Zero(t, mem.Len())
}
