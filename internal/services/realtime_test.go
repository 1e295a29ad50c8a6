package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Arkiv-Network/inf-demo/internal/clients/ethclient"
	"github.com/Arkiv-Network/inf-demo/internal/config"
	"github.com/Arkiv-Network/inf-demo/internal/queue"
	"github.com/Arkiv-Network/inf-demo/tests/mocks"
)

func TestPollOnce(t *testing.T) {
	internalCtx := mock.Anything
	now := genesisTs + daySeconds

	t.Run("collects the blocks above the highest stored one", func(t *testing.T) {
		const highest = uint64(100)
		chain := newFakeChain(highest+3, genesisTs)

		eth := mocks.NewEthInterface(t)
		eth.On("GetLatestBlock", internalCtx).Return(chain.blocks[highest+3], nil).Once()
		eth.On("GetBlockByHash", internalCtx, blockHash(highest+2).Hex()).Return(chain.blocks[highest+2], nil).Once()
		eth.On("GetBlockByHash", internalCtx, blockHash(highest+1).Hex()).Return(chain.blocks[highest+1], nil).Once()

		env := newTestEnv(t, eth, now)
		storeChainBlocks(t, env, chain, highest, highest)

		result, err := env.svc.PollOnce(t.Context())
		require.NoError(t, err)
		assert.Equal(t, 3, result.Stored)
		assert.Equal(t, StopReachedStored, result.StopReason)

		latest, err := env.store.GetLatestBlockNumber(t.Context())
		require.NoError(t, err)
		assert.Equal(t, highest+3, latest)

		count, err := env.store.CountBlocks(t.Context())
		require.NoError(t, err)
		assert.Equal(t, 4, count)
		assert.Equal(t, 1, env.published.count(queue.BlocksStoredEventType))
	})

	t.Run("head equal to the highest stored block is a no-op", func(t *testing.T) {
		chain := newFakeChain(20, genesisTs)

		eth := mocks.NewEthInterface(t)
		eth.On("GetLatestBlock", internalCtx).Return(chain.blocks[20], nil).Once()

		env := newTestEnv(t, eth, now)
		storeChainBlocks(t, env, chain, 20, 20)

		result, err := env.svc.PollOnce(t.Context())
		require.NoError(t, err)
		assert.Zero(t, result.Stored)
		assert.Equal(t, uint64(20), result.Head)
	})

	t.Run("failed head fetch is swallowed", func(t *testing.T) {
		eth := mocks.NewEthInterface(t)
		eth.On("GetLatestBlock", internalCtx).Return(nil, errors.New("connection refused")).Once()

		env := newTestEnv(t, eth, now)

		result, err := env.svc.PollOnce(t.Context())
		require.NoError(t, err)
		assert.Zero(t, result.Stored)
		assert.Zero(t, env.db.Len())
	})

	t.Run("stores only the head when nothing is stored", func(t *testing.T) {
		chain := newFakeChain(30, genesisTs)

		eth := mocks.NewEthInterface(t)
		eth.On("GetLatestBlock", internalCtx).Return(chain.blocks[30], nil).Once()

		env := newTestEnv(t, eth, now)

		result, err := env.svc.PollOnce(t.Context())
		require.NoError(t, err)
		assert.Equal(t, 1, result.Stored)
		assert.Equal(t, StopNothingStored, result.StopReason)
	})

	t.Run("parent fetch failure keeps the collected blocks", func(t *testing.T) {
		chain := newFakeChain(60, genesisTs)

		eth := mocks.NewEthInterface(t)
		eth.On("GetLatestBlock", internalCtx).Return(chain.blocks[60], nil).Once()
		eth.On("GetBlockByHash", internalCtx, blockHash(59).Hex()).Return(chain.blocks[59], nil).Once()
		eth.On("GetBlockByHash", internalCtx, blockHash(58).Hex()).Return(nil, ethclient.ErrBlockNotFound).Once()

		env := newTestEnv(t, eth, now)
		storeChainBlocks(t, env, chain, 50, 50)

		result, err := env.svc.PollOnce(t.Context())
		require.NoError(t, err)
		assert.Equal(t, 2, result.Stored)
		assert.Equal(t, StopParentFetchFailed, result.StopReason)
	})
}

func TestPollOnce_Concurrent(t *testing.T) {
	const (
		highest = uint64(100)
		pollers = 4
	)
	chain := newFakeChain(highest+3, genesisTs)
	chain.hashDelay = 5 * time.Millisecond

	env := newTestEnv(t, chain, genesisTs+daySeconds)
	storeChainBlocks(t, env, chain, highest, highest)

	var wg sync.WaitGroup
	stored := make([]int, pollers)
	errs := make([]error, pollers)
	for i := range pollers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := env.svc.PollOnce(t.Context())
			errs[i] = err
			if result != nil {
				stored[i] = result.Stored
			}
		}()
	}
	wg.Wait()

	total := 0
	for i := range pollers {
		require.NoError(t, errs[i])
		total += stored[i]
	}
	assert.Equal(t, 3, total)

	blocks, err := env.store.GetBlocksInRange(t.Context(), 0, genesisTs+daySeconds)
	require.NoError(t, err)
	perNumber := make(map[uint64]int)
	for _, b := range blocks {
		perNumber[b.BlockNumber]++
	}
	assert.Equal(t, map[uint64]int{100: 1, 101: 1, 102: 1, 103: 1}, perNumber)
}

func TestParentWalk(t *testing.T) {
	internalCtx := mock.Anything

	t.Run("detects a parent hash cycle", func(t *testing.T) {
		head := chainBlock(10, genesisTs)
		// a malformed parent that points back at the head
		looped := chainBlock(9, genesisTs)
		looped.Hash = head.Hash

		eth := mocks.NewEthInterface(t)
		eth.On("GetBlockByHash", internalCtx, head.ParentHash.Hex()).Return(looped, nil).Once()

		walk := NewParentWalk(eth, head, 1, 100)
		blocks := walk.Collect(t.Context())
		require.Len(t, blocks, 1)
		assert.Equal(t, uint64(10), blocks[0].Number)
		assert.Equal(t, StopCycleDetected, walk.StopReason())
	})

	t.Run("honors the step limit", func(t *testing.T) {
		chain := newFakeChain(10, genesisTs)

		eth := mocks.NewEthInterface(t)
		eth.On("GetBlockByHash", internalCtx, blockHash(9).Hex()).Return(chain.blocks[9], nil).Once()

		walk := NewParentWalk(eth, chain.blocks[10], 1, 2)
		blocks := walk.Collect(t.Context())
		require.Len(t, blocks, 2)
		assert.Equal(t, StopMaxSteps, walk.StopReason())
		assert.Equal(t, 2, walk.Steps())
	})

	t.Run("stops below a parent at or under the highest stored block", func(t *testing.T) {
		chain := newFakeChain(10, genesisTs)
		// a reorged head whose parent is already behind the stored tip
		head := chainBlock(12, genesisTs)
		head.ParentHash = blockHash(8)

		eth := mocks.NewEthInterface(t)
		eth.On("GetBlockByHash", internalCtx, blockHash(8).Hex()).Return(chain.blocks[8], nil).Once()

		walk := NewParentWalk(eth, head, 9, 100)
		blocks := walk.Collect(t.Context())
		require.Len(t, blocks, 1)
		assert.Equal(t, StopReachedStored, walk.StopReason())
		assert.NoError(t, walk.Err())
	})

	t.Run("reports the fetch error", func(t *testing.T) {
		chain := newFakeChain(10, genesisTs)
		fetchErr := errors.New("timeout")

		eth := mocks.NewEthInterface(t)
		eth.On("GetBlockByHash", internalCtx, blockHash(9).Hex()).Return(nil, fetchErr).Once()

		walk := NewParentWalk(eth, chain.blocks[10], 5, 100)
		blocks := walk.Collect(t.Context())
		require.Len(t, blocks, 1)
		assert.Equal(t, StopParentFetchFailed, walk.StopReason())
		assert.ErrorIs(t, walk.Err(), fetchErr)
	})
}

func TestMaxWalkStepsFromConfig(t *testing.T) {
	chain := newFakeChain(10, genesisTs)
	env := newTestEnv(t, chain, genesisTs+daySeconds, func(cfg *config.Config) {
		cfg.Poller.MaxWalkSteps = 3
	})
	storeChainBlocks(t, env, chain, 1, 1)

	result, err := env.svc.PollOnce(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 3, result.Stored)
	assert.Equal(t, StopMaxSteps, result.StopReason)
}
