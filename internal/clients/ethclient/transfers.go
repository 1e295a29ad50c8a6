package ethclient

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

func (c *EthClient) GetGLMTransfers(ctx context.Context, fromBlock, toBlock uint64) (map[uint64]*GLMTransferStats, error) {
	if fromBlock > toBlock {
		fromBlock, toBlock = toBlock, fromBlock
	}

	logs, err := c.filterTransferLogs(ctx, fromBlock, toBlock)
	if err != nil {
		return nil, fmt.Errorf("failed to get GLM transfers for blocks %d-%d: %w", fromBlock, toBlock, err)
	}

	result := make(map[uint64]*GLMTransferStats, toBlock-fromBlock+1)
	for n := fromBlock; n <= toBlock; n++ {
		result[n] = &GLMTransferStats{}
		if n == toBlock {
			// guards the loop against toBlock == MaxUint64
			break
		}
	}

	for _, transfer := range logs {
		stats, ok := result[transfer.BlockNumber]
		if !ok {
			continue
		}
		stats.Count++
		stats.Amount += transfer.Amount
	}

	return result, nil
}

func (c *EthClient) GetGLMTransfersForBlock(ctx context.Context, number uint64) ([]*GLMTransfer, error) {
	transfers, err := c.filterTransferLogs(ctx, number, number)
	if err != nil {
		return nil, fmt.Errorf("failed to get GLM transfers for block %d: %w", number, err)
	}
	return transfers, nil
}

func (c *EthClient) filterTransferLogs(ctx context.Context, fromBlock, toBlock uint64) ([]*GLMTransfer, error) {
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   new(big.Int).SetUint64(toBlock),
		Addresses: []common.Address{c.glmToken},
		Topics:    [][]common.Hash{{transferEventTopic}},
	}

	call := func() (*[]types.Log, error) {
		logs, err := c.eth.FilterLogs(ctx, query)
		if err != nil {
			return nil, err
		}
		return &logs, nil
	}

	logs, err := clientCallWithRetry(ctx, call, c.cfg)
	if err != nil {
		return nil, err
	}

	transfers := make([]*GLMTransfer, 0, len(*logs))
	for _, l := range *logs {
		if transfer := parseTransferLog(l); transfer != nil {
			transfers = append(transfers, transfer)
		}
	}
	return transfers, nil
}

// parseTransferLog returns nil for logs that are not ERC-20 Transfer events
func parseTransferLog(l types.Log) *GLMTransfer {
	if l.Removed || len(l.Topics) < 3 || l.Topics[0] != transferEventTopic {
		return nil
	}

	value := new(big.Int).SetBytes(l.Data)
	return &GLMTransfer{
		BlockNumber: l.BlockNumber,
		TxHash:      l.TxHash,
		From:        common.BytesToAddress(l.Topics[1].Bytes()),
		To:          common.BytesToAddress(l.Topics[2].Bytes()),
		Value:       value,
		Amount:      ToGLM(value),
	}
}
