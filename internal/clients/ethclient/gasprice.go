package ethclient

import (
	"context"
	"fmt"
	"math/big"
	"slices"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
)

// GetEffectiveGasPrice summarizes the effective gas price actually paid by
// the transactions of a block, taken from its receipts
func (c *EthClient) GetEffectiveGasPrice(ctx context.Context, number uint64) (*EffectiveGasPrice, error) {
	call := func() (*[]*types.Receipt, error) {
		receipts, err := c.eth.BlockReceipts(ctx, rpc.BlockNumberOrHashWithNumber(rpc.BlockNumber(number)))
		if err != nil {
			return nil, err
		}
		return &receipts, nil
	}

	receipts, err := clientCallWithRetry(ctx, call, c.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to get receipts of block %d: %w", number, err)
	}

	prices := make([]*big.Int, 0, len(*receipts))
	for _, r := range *receipts {
		if r.EffectiveGasPrice != nil {
			prices = append(prices, r.EffectiveGasPrice)
		}
	}

	return summarizePrices(number, prices), nil
}

func summarizePrices(number uint64, prices []*big.Int) *EffectiveGasPrice {
	result := &EffectiveGasPrice{
		BlockNumber:      number,
		TransactionCount: len(prices),
		Median:           new(big.Int),
		Average:          new(big.Int),
		Min:              new(big.Int),
		Max:              new(big.Int),
	}
	if len(prices) == 0 {
		return result
	}

	sorted := slices.Clone(prices)
	slices.SortFunc(sorted, func(a, b *big.Int) int { return a.Cmp(b) })

	sum := new(big.Int)
	for _, p := range sorted {
		sum.Add(sum, p)
	}

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		result.Median.Add(sorted[mid-1], sorted[mid])
		result.Median.Quo(result.Median, big.NewInt(2))
	} else {
		result.Median.Set(sorted[mid])
	}
	result.Average.Quo(sum, big.NewInt(int64(len(sorted))))
	result.Min.Set(sorted[0])
	result.Max.Set(sorted[len(sorted)-1])

	return result
}

// GetBulkGasPrices returns p25/p50/p75 fee estimates for every block in the
// inclusive range using a single eth_feeHistory call
func (c *EthClient) GetBulkGasPrices(ctx context.Context, startBlock, endBlock uint64) ([]*BlockGasPrice, error) {
	if startBlock > endBlock {
		startBlock, endBlock = endBlock, startBlock
	}
	count := endBlock - startBlock + 1

	call := func() (*[]*BlockGasPrice, error) {
		history, err := c.eth.FeeHistory(ctx, count, new(big.Int).SetUint64(endBlock), []float64{25, 50, 75})
		if err != nil {
			return nil, err
		}

		oldest := history.OldestBlock.Uint64()
		result := make([]*BlockGasPrice, 0, len(history.Reward))
		for i, rewards := range history.Reward {
			baseFee := new(big.Int)
			if i < len(history.BaseFee) && history.BaseFee[i] != nil {
				baseFee.Set(history.BaseFee[i])
			}
			entry := &BlockGasPrice{
				BlockNumber:   oldest + uint64(i),
				BaseFeePerGas: baseFee,
				P25:           rewardAt(rewards, 0),
				P50:           rewardAt(rewards, 1),
				P75:           rewardAt(rewards, 2),
			}
			entry.Suggested = new(big.Int).Add(baseFee, entry.P50)
			result = append(result, entry)
		}
		return &result, nil
	}

	prices, err := clientCallWithRetry(ctx, call, c.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to get fee history for blocks %d-%d: %w", startBlock, endBlock, err)
	}
	return *prices, nil
}

func rewardAt(rewards []*big.Int, i int) *big.Int {
	if i < len(rewards) && rewards[i] != nil {
		return new(big.Int).Set(rewards[i])
	}
	return new(big.Int)
}
