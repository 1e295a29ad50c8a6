package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/Arkiv-Network/inf-demo/internal/clients/ethclient"
	"github.com/Arkiv-Network/inf-demo/internal/datastore"
	"github.com/Arkiv-Network/inf-demo/internal/observability/metrics"
	"github.com/Arkiv-Network/inf-demo/internal/queue"
)

func toBlockRecord(b *ethclient.Block) *datastore.BlockRecord {
	return &datastore.BlockRecord{
		BlockNumber:      b.Number,
		BlockHash:        b.Hash.Hex(),
		ParentHash:       b.ParentHash.Hex(),
		Timestamp:        int64(b.Timestamp),
		TransactionCount: b.TransactionCount,
		GasPrice:         b.GasPrice,
		GasUsed:          b.GasUsed,
		GasLimit:         b.GasLimit,
		BaseFeePerGas:    b.BaseFeePerGas,
		Size:             b.Size,
		Miner:            b.Miner.Hex(),
	}
}

// storeBlocks writes records in batches and announces every batch
func (s *Service) storeBlocks(ctx context.Context, mode string, records []*datastore.BlockRecord) (int, error) {
	return s.store.StoreBlocks(ctx, records, func(batch []*datastore.BlockRecord) {
		metrics.RecordBlocksStored(mode, len(batch))

		first, last := batch[0], batch[len(batch)-1]
		s.queueManager.PushBlocksStoredEvent(ctx, &queue.BlocksStoredEvent{
			EventType:      queue.BlocksStoredEventType,
			Mode:           mode,
			Count:          len(batch),
			FirstBlock:     first.BlockNumber,
			LastBlock:      last.BlockNumber,
			FirstTimestamp: first.Timestamp,
			LastTimestamp:  last.Timestamp,
		})

		log.Ctx(ctx).Info().
			Str("mode", mode).
			Int("count", len(batch)).
			Uint64("first_block", first.BlockNumber).
			Uint64("last_block", last.BlockNumber).
			Msg("stored blocks")
	})
}
