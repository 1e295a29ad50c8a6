package services

import (
	"context"
	"fmt"
	"math/big"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Arkiv-Network/inf-demo/internal/datastore"
	"github.com/Arkiv-Network/inf-demo/internal/observability/metrics"
	"github.com/Arkiv-Network/inf-demo/internal/observability/tracing"
	"github.com/Arkiv-Network/inf-demo/internal/queue"
	"github.com/Arkiv-Network/inf-demo/internal/types"
)

const (
	aggregatePersisted  = "persisted"
	aggregateExisting   = "existing"
	aggregateIncomplete = "incomplete"
)

func (s *Service) reference(ref *int64) int64 {
	if ref != nil {
		return *ref
	}
	return s.now().Unix()
}

// AggregateHour returns the hourly aggregate of the hour ending at
// floor(ref/3600)*3600, ref defaulting to now. An existing record is returned
// as is. Windows with fewer blocks than the configured gate yield a zero
// aggregate that is not persisted.
func (s *Service) AggregateHour(ctx context.Context, ref *int64) (*datastore.AggregateRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aggregateHour(ctx, ref)
}

func (s *Service) aggregateHour(ctx context.Context, ref *int64) (result *datastore.AggregateRecord, err error) {
	bucket := floorTo(s.reference(ref), hourSeconds)
	windowStart := bucket - hourSeconds

	ctx, span := tracing.StartSpan(ctx, "aggregate.hour", attribute.Int64("stats.bucket", bucket))
	defer func() { tracing.EndSpan(span, err) }()
	log := log.Ctx(ctx).With().Str("stats_type", "hourly").Int64("bucket", bucket).Logger()

	var upTo *int64
	if ref != nil {
		upTo = &bucket
	}
	existing, err := s.store.GetAggregates(ctx, types.StatsHourly, windowStart, upTo)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		metrics.RecordAggregate(types.StatsHourly.String(), aggregateExisting)
		log.Debug().Str("key", existing[0].Key).Msg("hourly aggregate already exists")
		return existing[0], nil
	}

	blocks, err := s.store.GetBlocksInRange(ctx, windowStart, bucket-1)
	if err != nil {
		return nil, err
	}
	if len(blocks) < s.cfg.Aggregator.HourlyMinBlocks {
		metrics.RecordAggregate(types.StatsHourly.String(), aggregateIncomplete)
		log.Debug().
			Int("blocks", len(blocks)).
			Int("required", s.cfg.Aggregator.HourlyMinBlocks).
			Msg("hour window incomplete, not persisting")
		return datastore.ZeroAggregate(types.StatsHourly, bucket), nil
	}

	agg := &datastore.AggregateRecord{
		StatsType:      types.StatsHourly,
		StatsTimestamp: bucket,
	}
	prices := make([]*big.Int, 0, len(blocks))
	var minBlock, maxBlock uint64
	for i, b := range blocks {
		agg.TotalTransactionCount += uint64(b.TransactionCount)
		prices = append(prices, b.GasPrice)
		if i == 0 || b.BlockNumber < minBlock {
			minBlock = b.BlockNumber
		}
		maxBlock = max(maxBlock, b.BlockNumber)
	}
	agg.AvgGasPrice = floorAverage(prices)

	if len(blocks) > 0 {
		transfers, err := s.eth.GetGLMTransfers(ctx, minBlock, maxBlock)
		if err != nil {
			return nil, fmt.Errorf("failed to get GLM transfers for blocks %d-%d: %w", minBlock, maxBlock, err)
		}
		for _, t := range transfers {
			agg.TotalGLMTransfersCount += t.Count
			agg.TotalGLMTransfersAmount += t.Amount
		}
	}

	if err := s.persistAggregate(ctx, agg); err != nil {
		return nil, err
	}
	log.Info().
		Int("blocks", len(blocks)).
		Uint64("transactions", agg.TotalTransactionCount).
		Str("avg_gas_price", agg.AvgGasPrice.String()).
		Msg("stored hourly aggregate")
	return agg, nil
}

// AggregateDay returns the daily aggregate of the 24h ending at ref, ref
// defaulting to now. The window is rolling and not aligned to midnight. It
// reduces the hourly records of the window and is gated on their number.
func (s *Service) AggregateDay(ctx context.Context, ref *int64) (*datastore.AggregateRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aggregateDay(ctx, ref)
}

func (s *Service) aggregateDay(ctx context.Context, ref *int64) (result *datastore.AggregateRecord, err error) {
	end := s.reference(ref)
	windowStart := end - daySeconds

	ctx, span := tracing.StartSpan(ctx, "aggregate.day", attribute.Int64("stats.bucket", end))
	defer func() { tracing.EndSpan(span, err) }()
	log := log.Ctx(ctx).With().Str("stats_type", "daily").Int64("bucket", end).Logger()

	var upTo *int64
	if ref != nil {
		upTo = &end
	}
	existing, err := s.store.GetAggregates(ctx, types.StatsDaily, windowStart, upTo)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		metrics.RecordAggregate(types.StatsDaily.String(), aggregateExisting)
		log.Debug().Str("key", existing[0].Key).Msg("daily aggregate already exists")
		return existing[0], nil
	}

	hourlies, err := s.store.GetAggregates(ctx, types.StatsHourly, windowStart, &end)
	if err != nil {
		return nil, err
	}
	if len(hourlies) < s.cfg.Aggregator.DailyMinHours {
		metrics.RecordAggregate(types.StatsDaily.String(), aggregateIncomplete)
		log.Debug().
			Int("hours", len(hourlies)).
			Int("required", s.cfg.Aggregator.DailyMinHours).
			Msg("day window incomplete, not persisting")
		return datastore.ZeroAggregate(types.StatsDaily, end), nil
	}

	agg := &datastore.AggregateRecord{
		StatsType:      types.StatsDaily,
		StatsTimestamp: end,
	}
	prices := make([]*big.Int, 0, len(hourlies))
	for _, h := range hourlies {
		agg.TotalTransactionCount += h.TotalTransactionCount
		agg.TotalGLMTransfersCount += h.TotalGLMTransfersCount
		agg.TotalGLMTransfersAmount += h.TotalGLMTransfersAmount
		prices = append(prices, h.AvgGasPrice)
	}
	agg.AvgGasPrice = floorAverage(prices)

	if err := s.persistAggregate(ctx, agg); err != nil {
		return nil, err
	}
	log.Info().
		Int("hours", len(hourlies)).
		Uint64("transactions", agg.TotalTransactionCount).
		Str("avg_gas_price", agg.AvgGasPrice.String()).
		Msg("stored daily aggregate")
	return agg, nil
}

func (s *Service) persistAggregate(ctx context.Context, agg *datastore.AggregateRecord) error {
	if err := s.store.StoreAggregate(ctx, agg); err != nil {
		return err
	}
	metrics.RecordAggregate(agg.StatsType.String(), aggregatePersisted)

	s.queueManager.PushStatsEvent(ctx, queue.NewStatsEvent(
		agg.StatsType.String(),
		agg.StatsTimestamp,
		agg.TotalTransactionCount,
		agg.AvgGasPrice.String(),
		agg.TotalGLMTransfersCount,
		agg.TotalGLMTransfersAmount,
		agg.Key,
	))
	return nil
}

// floorAverage is the truncated mean of values, nil entries count as zero
func floorAverage(values []*big.Int) *big.Int {
	sum := new(big.Int)
	if len(values) == 0 {
		return sum
	}
	for _, v := range values {
		if v != nil {
			sum.Add(sum, v)
		}
	}
	return sum.Quo(sum, big.NewInt(int64(len(values))))
}
