package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/Arkiv-Network/inf-demo/internal/datastore"
	"github.com/Arkiv-Network/inf-demo/internal/observability/metrics"
)

const realtimeMode = "realtime"

type PollResult struct {
	Stored     int
	Head       uint64
	Highest    uint64
	StopReason WalkStopReason
}

// PollOnce stores the blocks between the highest stored block and the chain
// head, found by walking parent hashes back from the head, then refreshes the
// last complete hour and day. A failed head fetch is logged and skipped so the
// next tick can retry.
func (s *Service) PollOnce(ctx context.Context) (*PollResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := log.Ctx(ctx)
	result := &PollResult{}

	head, err := s.eth.GetLatestBlock(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch chain head, skipping poll")
		return result, nil
	}
	result.Head = head.Number

	highest, err := s.store.GetLatestBlockNumber(ctx)
	if err != nil {
		return nil, err
	}
	result.Highest = highest
	metrics.RecordStoredHead(highest)

	if head.Number == highest {
		log.Debug().Uint64("head", head.Number).Msg("no new blocks")
		return result, nil
	}
	if head.Number < highest {
		log.Warn().
			Uint64("head", head.Number).
			Uint64("highest_stored", highest).
			Msg("chain head is behind the highest stored block")
	}

	walk := NewParentWalk(s.eth, head, highest, s.cfg.Poller.MaxWalkSteps)
	blocks := walk.Collect(ctx)
	result.StopReason = walk.StopReason()
	metrics.RecordWalkSteps(walk.Steps())

	switch walk.StopReason() {
	case StopParentFetchFailed:
		log.Warn().Err(walk.Err()).Int("collected", len(blocks)).Msg("parent fetch failed, storing partial walk")
	case StopCycleDetected, StopMaxSteps:
		log.Warn().Str("reason", string(walk.StopReason())).Int("collected", len(blocks)).Msg("parent walk stopped early")
	}

	records := make([]*datastore.BlockRecord, 0, len(blocks))
	for _, b := range blocks {
		records = append(records, toBlockRecord(b))
	}

	stored, err := s.storeBlocks(ctx, realtimeMode, records)
	result.Stored = stored
	if err != nil {
		return result, err
	}

	if _, err := s.aggregateHour(ctx, nil); err != nil {
		return result, err
	}
	if _, err := s.aggregateDay(ctx, nil); err != nil {
		return result, err
	}

	log.Info().
		Uint64("head", head.Number).
		Uint64("highest_stored", highest).
		Int("stored", stored).
		Msg("poll completed")

	return result, nil
}
