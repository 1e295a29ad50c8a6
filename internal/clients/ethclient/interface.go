package ethclient

import (
	"context"
	"math/big"
)

//go:generate mockery --name=EthInterface --output=../../../tests/mocks --outpkg=mocks --filename=EthInterface.go
type EthInterface interface {
	// GetLatestBlock returns the chain head with its gas price estimate
	GetLatestBlock(ctx context.Context) (*Block, error)
	// GetBlockByNumber returns ErrBlockNotFound when the node has no such block
	GetBlockByNumber(ctx context.Context, number uint64) (*Block, error)
	GetBlockByHash(ctx context.Context, hash string) (*Block, error)
	// GetGLMTransfers aggregates GLM Transfer logs per block over the inclusive range
	GetGLMTransfers(ctx context.Context, fromBlock, toBlock uint64) (map[uint64]*GLMTransferStats, error)
	GetGLMTransfersForBlock(ctx context.Context, number uint64) ([]*GLMTransfer, error)
	GetNetworkGasPrice(ctx context.Context) (*big.Int, error)
	GetEffectiveGasPrice(ctx context.Context, number uint64) (*EffectiveGasPrice, error)
	GetBulkGasPrices(ctx context.Context, startBlock, endBlock uint64) ([]*BlockGasPrice, error)
}
