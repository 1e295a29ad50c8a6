package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/Arkiv-Network/inf-demo/internal/clients/ethclient"
	"github.com/Arkiv-Network/inf-demo/internal/config"
	"github.com/Arkiv-Network/inf-demo/internal/datastore"
	"github.com/Arkiv-Network/inf-demo/internal/db/memory"
	"github.com/Arkiv-Network/inf-demo/internal/queue"
)

type testEnv struct {
	svc       *Service
	store     *datastore.Store
	db        *memory.Store
	published *recordingPublisher
}

func newTestEnv(t *testing.T, eth ethclient.EthInterface, now int64, tweak ...func(*config.Config)) *testEnv {
	t.Helper()

	cfg := config.DefaultConfig()
	for _, f := range tweak {
		f(cfg)
	}

	mem := memory.New()
	store := datastore.New(mem, datastore.WithBatchSize(cfg.Aggregator.StoreBatchSize))
	publisher := &recordingPublisher{}

	svc := NewService(cfg, store, eth, queue.NewQueueManagerWithPublisher(publisher), nil)
	svc.now = func() time.Time { return time.Unix(now, 0) }

	return &testEnv{svc: svc, store: store, db: mem, published: publisher}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []map[string]any
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, body []byte) error {
	var ev map[string]any
	if err := json.Unmarshal(body, &ev); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) count(eventType queue.EventType) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, ev := range p.events {
		if ev["event_type"] == string(eventType) {
			n++
		}
	}
	return n
}

func blockHash(n uint64) common.Hash {
	return crypto.Keccak256Hash([]byte(fmt.Sprintf("block-%d", n)))
}

func chainBlock(n uint64, ts int64) *ethclient.Block {
	var parent common.Hash
	if n > 0 {
		parent = blockHash(n - 1)
	}
	return &ethclient.Block{
		Number:           n,
		Hash:             blockHash(n),
		ParentHash:       parent,
		Timestamp:        uint64(ts),
		TransactionCount: int(n % 7),
		GasUsed:          15_000_000,
		GasLimit:         30_000_000,
		Size:             1024,
		BaseFeePerGas:    big.NewInt(1_000_000_000),
		GasPrice:         big.NewInt(int64(1_000_000_000 + n)),
	}
}

// fakeChain is a linked chain of blocks 0..head spaced 12 seconds apart
type fakeChain struct {
	mu             sync.Mutex
	blocks         map[uint64]*ethclient.Block
	byHash         map[common.Hash]*ethclient.Block
	head           uint64
	failNumbers    map[uint64]bool
	// hashDelay slows down every parent lookup
	hashDelay      time.Duration
	numberCalls    []uint64
	glmCalls       [][2]uint64
	transfers      map[uint64]*ethclient.GLMTransferStats
	// blockTransfers are the per-transfer details of a block
	blockTransfers map[uint64][]*ethclient.GLMTransfer
}

func newFakeChain(head uint64, genesisTs int64) *fakeChain {
	c := &fakeChain{
		blocks:      make(map[uint64]*ethclient.Block),
		byHash:      make(map[common.Hash]*ethclient.Block),
		head:        head,
		failNumbers: make(map[uint64]bool),
		transfers:   make(map[uint64]*ethclient.GLMTransferStats),
	}
	for n := uint64(0); n <= head; n++ {
		b := chainBlock(n, genesisTs+int64(n)*12)
		c.blocks[n] = b
		c.byHash[b.Hash] = b
	}
	return c
}

func (c *fakeChain) GetLatestBlock(ctx context.Context) (*ethclient.Block, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.blocks[c.head], nil
}

func (c *fakeChain) GetBlockByNumber(ctx context.Context, number uint64) (*ethclient.Block, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.numberCalls = append(c.numberCalls, number)
	if c.failNumbers[number] {
		return nil, errors.New("rpc unavailable")
	}
	b, ok := c.blocks[number]
	if !ok {
		return nil, ethclient.ErrBlockNotFound
	}
	return b, nil
}

func (c *fakeChain) GetBlockByHash(ctx context.Context, hash string) (*ethclient.Block, error) {
	time.Sleep(c.hashDelay)
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.byHash[common.HexToHash(hash)]
	if !ok {
		return nil, ethclient.ErrBlockNotFound
	}
	return b, nil
}

func (c *fakeChain) GetGLMTransfers(ctx context.Context, fromBlock, toBlock uint64) (map[uint64]*ethclient.GLMTransferStats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.glmCalls = append(c.glmCalls, [2]uint64{fromBlock, toBlock})
	result := make(map[uint64]*ethclient.GLMTransferStats)
	for n := fromBlock; n <= toBlock; n++ {
		if t, ok := c.transfers[n]; ok {
			result[n] = t
		}
	}
	return result, nil
}

func (c *fakeChain) GetGLMTransfersForBlock(ctx context.Context, number uint64) ([]*ethclient.GLMTransfer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.blockTransfers[number], nil
}

func (c *fakeChain) GetNetworkGasPrice(ctx context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (c *fakeChain) GetEffectiveGasPrice(ctx context.Context, number uint64) (*ethclient.EffectiveGasPrice, error) {
	return &ethclient.EffectiveGasPrice{BlockNumber: number}, nil
}

func (c *fakeChain) GetBulkGasPrices(ctx context.Context, startBlock, endBlock uint64) ([]*ethclient.BlockGasPrice, error) {
	return nil, nil
}

// storeChainBlocks persists blocks [from, to] of the chain
func storeChainBlocks(t *testing.T, env *testEnv, c *fakeChain, from, to uint64) {
	t.Helper()
	var records []*datastore.BlockRecord
	for n := from; n <= to; n++ {
		records = append(records, toBlockRecord(c.blocks[n]))
	}
	_, err := env.store.StoreBlocks(t.Context(), records, nil)
	require.NoError(t, err)
}
