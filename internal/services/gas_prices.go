package services

import (
	"context"
	"math/big"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Arkiv-Network/inf-demo/internal/clients/ethclient"
)

const bulkGasPriceBlocks = 100

// GasPriceComparison collects the gas price estimates the chain client can
// produce for the current head, each with the time it took
type GasPriceComparison struct {
	BlockNumber uint64

	NetworkGasPrice  *big.Int
	NetworkDuration  time.Duration
	FeeHistoryPrice  *big.Int
	FeeHistoryTiming time.Duration
	Effective        *ethclient.EffectiveGasPrice
	EffectiveTiming  time.Duration
	Bulk             []*ethclient.BlockGasPrice
	BulkTiming       time.Duration

	// NextBaseFee is the base fee predicted for the block after the head
	NextBaseFee *big.Int
}

func (s *Service) CompareGasPrices(ctx context.Context) (*GasPriceComparison, error) {
	result := &GasPriceComparison{}

	start := time.Now()
	head, err := s.eth.GetLatestBlock(ctx)
	if err != nil {
		return nil, err
	}
	result.FeeHistoryTiming = time.Since(start)
	result.BlockNumber = head.Number
	result.FeeHistoryPrice = head.GasPrice
	result.NextBaseFee = ethclient.CalculateNextBaseFee(head.GasUsed, head.BaseFeePerGas)

	start = time.Now()
	if result.NetworkGasPrice, err = s.eth.GetNetworkGasPrice(ctx); err != nil {
		return nil, err
	}
	result.NetworkDuration = time.Since(start)

	start = time.Now()
	if result.Effective, err = s.eth.GetEffectiveGasPrice(ctx, head.Number); err != nil {
		return nil, err
	}
	result.EffectiveTiming = time.Since(start)

	from := uint64(0)
	if head.Number >= bulkGasPriceBlocks {
		from = head.Number - bulkGasPriceBlocks + 1
	}
	start = time.Now()
	if result.Bulk, err = s.eth.GetBulkGasPrices(ctx, from, head.Number); err != nil {
		return nil, err
	}
	result.BulkTiming = time.Since(start)

	log.Ctx(ctx).Info().
		Uint64("block_number", head.Number).
		Dur("network", result.NetworkDuration).
		Dur("fee_history", result.FeeHistoryTiming).
		Dur("effective", result.EffectiveTiming).
		Dur("bulk", result.BulkTiming).
		Msg("compared gas price sources")

	return result, nil
}

func bigOrZero(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
