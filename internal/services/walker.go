package services

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/Arkiv-Network/inf-demo/internal/datastore"
)

const backfillMode = "backfill"

// Backfill extends the stored history backwards by up to targetCount blocks,
// starting below the oldest stored block or at the chain head when nothing is
// stored. A block that cannot be fetched ends the walk, blocks fetched so far
// are kept. Returns the number of stored blocks.
func (s *Service) Backfill(ctx context.Context, targetCount int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := log.Ctx(ctx)

	if targetCount <= 0 {
		return 0, fmt.Errorf("target count must be positive, got %d", targetCount)
	}

	oldest, err := s.store.GetOldestBlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get oldest stored block: %w", err)
	}

	var cursor uint64
	if oldest == 0 {
		head, err := s.eth.GetLatestBlock(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to get chain head: %w", err)
		}
		cursor = head.Number
	} else {
		cursor = oldest - 1
	}

	log.Info().
		Uint64("oldest_stored", oldest).
		Uint64("start_block", cursor).
		Int("target_count", targetCount).
		Msg("starting backfill")

	batchSize := s.cfg.Aggregator.StoreBatchSize
	batch := make([]*datastore.BlockRecord, 0, batchSize)
	stored := 0
	minTs, maxTs := int64(math.MaxInt64), int64(math.MinInt64)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := s.storeBlocks(ctx, backfillMode, batch)
		stored += n
		if err != nil {
			return err
		}
		batch = make([]*datastore.BlockRecord, 0, batchSize)
		return nil
	}

	for i := 0; i < targetCount; i++ {
		block, err := s.eth.GetBlockByNumber(ctx, cursor)
		if err != nil {
			log.Warn().
				Err(err).
				Uint64("block_number", cursor).
				Int("fetched", i).
				Msg("failed to fetch block, stopping backfill")
			break
		}

		record := toBlockRecord(block)
		batch = append(batch, record)
		minTs = min(minTs, record.Timestamp)
		maxTs = max(maxTs, record.Timestamp)

		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return stored, err
			}
		}

		if cursor == 0 {
			log.Info().Msg("reached genesis block")
			break
		}
		cursor--
	}

	if err := flush(); err != nil {
		return stored, err
	}

	if stored == 0 {
		log.Info().Msg("no blocks stored, skipping aggregation")
		return 0, nil
	}

	result, err := s.aggregateSpan(ctx, minTs, maxTs)
	if err != nil {
		return stored, err
	}

	log.Info().
		Int("stored", stored).
		Int64("min_timestamp", minTs).
		Int64("max_timestamp", maxTs).
		Int("hours_persisted", result.HoursPersisted).
		Int("days_persisted", result.DaysPersisted).
		Msg("backfill completed")

	return stored, nil
}
