package ethclient

import (
	"context"
	"math/big"
	"time"

	"github.com/Arkiv-Network/inf-demo/internal/observability/metrics"
)

type ethClientWithMetrics struct {
	eth EthInterface
}

func NewEthClientWithMetrics(eth EthInterface) *ethClientWithMetrics {
	return &ethClientWithMetrics{eth: eth}
}

func (e *ethClientWithMetrics) GetLatestBlock(ctx context.Context) (*Block, error) {
	block, err := runEthClientMethodWithMetrics("GetLatestBlock", func() (*Block, error) {
		return e.eth.GetLatestBlock(ctx)
	})
	if err == nil {
		metrics.RecordEthHead(block.Number)
	}
	return block, err
}

func (e *ethClientWithMetrics) GetBlockByNumber(ctx context.Context, number uint64) (*Block, error) {
	return runEthClientMethodWithMetrics("GetBlockByNumber", func() (*Block, error) {
		return e.eth.GetBlockByNumber(ctx, number)
	})
}

func (e *ethClientWithMetrics) GetBlockByHash(ctx context.Context, hash string) (*Block, error) {
	return runEthClientMethodWithMetrics("GetBlockByHash", func() (*Block, error) {
		return e.eth.GetBlockByHash(ctx, hash)
	})
}

func (e *ethClientWithMetrics) GetGLMTransfers(ctx context.Context, fromBlock, toBlock uint64) (map[uint64]*GLMTransferStats, error) {
	return runEthClientMethodWithMetrics("GetGLMTransfers", func() (map[uint64]*GLMTransferStats, error) {
		return e.eth.GetGLMTransfers(ctx, fromBlock, toBlock)
	})
}

func (e *ethClientWithMetrics) GetGLMTransfersForBlock(ctx context.Context, number uint64) ([]*GLMTransfer, error) {
	return runEthClientMethodWithMetrics("GetGLMTransfersForBlock", func() ([]*GLMTransfer, error) {
		return e.eth.GetGLMTransfersForBlock(ctx, number)
	})
}

func (e *ethClientWithMetrics) GetNetworkGasPrice(ctx context.Context) (*big.Int, error) {
	return runEthClientMethodWithMetrics("GetNetworkGasPrice", func() (*big.Int, error) {
		return e.eth.GetNetworkGasPrice(ctx)
	})
}

func (e *ethClientWithMetrics) GetEffectiveGasPrice(ctx context.Context, number uint64) (*EffectiveGasPrice, error) {
	// we don't need to measure latency for this method (used only by compare-gas-prices)
	return e.eth.GetEffectiveGasPrice(ctx, number)
}

func (e *ethClientWithMetrics) GetBulkGasPrices(ctx context.Context, startBlock, endBlock uint64) ([]*BlockGasPrice, error) {
	// we don't need to measure latency for this method (used only by compare-gas-prices)
	return e.eth.GetBulkGasPrices(ctx, startBlock, endBlock)
}

func runEthClientMethodWithMetrics[T any](method string, f func() (T, error)) (T, error) {
	startTime := time.Now()
	v, err := f()
	duration := time.Since(startTime)

	metrics.RecordEthClientLatency(duration, method, err != nil)
	return v, err
}
