package ethclient

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"

	"github.com/avast/retry-go/v4"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	gethclient "github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/rs/zerolog/log"

	"github.com/Arkiv-Network/inf-demo/internal/config"
)

type EthClient struct {
	rpcClient *rpc.Client
	eth       *gethclient.Client
	glmToken  common.Address
	cfg       *config.EthConfig
}

func New(ctx context.Context, cfg *config.EthConfig) (*EthClient, error) {
	rpcClient, err := rpc.DialOptions(ctx, cfg.RPCURL,
		rpc.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to dial ethereum rpc %s: %w", cfg.RPCURL, err)
	}

	return &EthClient{
		rpcClient: rpcClient,
		eth:       gethclient.NewClient(rpcClient),
		glmToken:  common.HexToAddress(cfg.GLMTokenAddress),
		cfg:       cfg,
	}, nil
}

func (c *EthClient) Close() {
	c.rpcClient.Close()
}

func (c *EthClient) GetLatestBlock(ctx context.Context) (*Block, error) {
	block, err := c.getBlock(ctx, "eth_getBlockByNumber", "latest")
	if err != nil {
		return nil, fmt.Errorf("failed to get latest block: %w", err)
	}
	return c.withGasPrice(ctx, block)
}

func (c *EthClient) GetBlockByNumber(ctx context.Context, number uint64) (*Block, error) {
	block, err := c.getBlock(ctx, "eth_getBlockByNumber", hexutil.EncodeUint64(number))
	if err != nil {
		return nil, fmt.Errorf("failed to get block %d: %w", number, err)
	}
	return c.withGasPrice(ctx, block)
}

// GetBlockByHash prices the block at its own number, whatever the caller
// believes the height to be
func (c *EthClient) GetBlockByHash(ctx context.Context, hash string) (*Block, error) {
	block, err := c.getBlock(ctx, "eth_getBlockByHash", common.HexToHash(hash))
	if err != nil {
		return nil, fmt.Errorf("failed to get block %s: %w", hash, err)
	}
	return c.withGasPrice(ctx, block)
}

func (c *EthClient) getBlock(ctx context.Context, method string, arg any) (*Block, error) {
	call := func() (*rpcBlock, error) {
		var raw json.RawMessage
		if err := c.rpcClient.CallContext(ctx, &raw, method, arg, false); err != nil {
			return nil, err
		}
		if len(raw) == 0 || string(raw) == "null" {
			return nil, retry.Unrecoverable(ErrBlockNotFound)
		}

		var block rpcBlock
		if err := json.Unmarshal(raw, &block); err != nil {
			return nil, retry.Unrecoverable(fmt.Errorf("failed to decode block: %w", err))
		}
		return &block, nil
	}

	block, err := clientCallWithRetry(ctx, call, c.cfg)
	if err != nil {
		return nil, err
	}
	return block.toBlock(), nil
}

func (c *EthClient) withGasPrice(ctx context.Context, block *Block) (*Block, error) {
	gasPrice, err := c.getGasPrice(ctx, block.Number)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price of block %d: %w", block.Number, err)
	}
	block.GasPrice = gasPrice
	return block, nil
}

// getGasPrice estimates the price paid in a block as its base fee plus the
// median priority fee reported by eth_feeHistory
func (c *EthClient) getGasPrice(ctx context.Context, number uint64) (*big.Int, error) {
	call := func() (*big.Int, error) {
		history, err := c.eth.FeeHistory(ctx, 1, new(big.Int).SetUint64(number), []float64{50})
		if err != nil {
			return nil, err
		}

		price := new(big.Int)
		if len(history.BaseFee) > 0 && history.BaseFee[0] != nil {
			price.Add(price, history.BaseFee[0])
		}
		if len(history.Reward) > 0 && len(history.Reward[0]) > 0 && history.Reward[0][0] != nil {
			price.Add(price, history.Reward[0][0])
		}
		return price, nil
	}

	return clientCallWithRetry(ctx, call, c.cfg)
}

func (c *EthClient) GetNetworkGasPrice(ctx context.Context) (*big.Int, error) {
	call := func() (*big.Int, error) {
		return c.eth.SuggestGasPrice(ctx)
	}
	return clientCallWithRetry(ctx, call, c.cfg)
}

func clientCallWithRetry[T any](
	ctx context.Context, call retry.RetryableFuncWithData[*T], cfg *config.EthConfig,
) (*T, error) {
	result, err := retry.DoWithData(call,
		retry.Context(ctx),
		retry.Attempts(cfg.MaxRetryTimes),
		retry.Delay(cfg.RetryInterval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Ctx(ctx).Debug().
				Uint("attempt", n+1).
				Uint("max_attempts", cfg.MaxRetryTimes).
				Err(err).
				Msg("failed to call the ethereum RPC")
		}))

	if err != nil {
		return nil, err
	}
	return result, nil
}
