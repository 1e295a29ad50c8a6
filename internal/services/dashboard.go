package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Arkiv-Network/inf-demo/internal/cache"
	"github.com/Arkiv-Network/inf-demo/internal/datastore"
	"github.com/Arkiv-Network/inf-demo/internal/db"
	"github.com/Arkiv-Network/inf-demo/internal/types"
)

const (
	DefaultLatestBlocksLimit = 10
	MaxLatestBlocksLimit     = 100
	hourlyStatsLimit         = 168
	dailyStatsLimit          = 30
	defaultCacheTTL          = 10 * time.Second
)

type BlockPublic struct {
	BlockNumber      uint64 `json:"blockNumber"`
	BlockHash        string `json:"blockHash"`
	ParentHash       string `json:"parentHash"`
	Timestamp        int64  `json:"timestamp"`
	TransactionCount int    `json:"transactionCount"`
	GasPrice         string `json:"gasPrice"`
	GasUsed          uint64 `json:"gasUsed"`
	GasLimit         uint64 `json:"gasLimit"`
	BaseFeePerGas    string `json:"baseFeePerGas"`
	Size             uint64 `json:"size"`
	Miner            string `json:"miner"`
}

type GLMTransferPublic struct {
	TxHash string  `json:"txHash"`
	From   string  `json:"from"`
	To     string  `json:"to"`
	Value  string  `json:"value"`
	Amount float64 `json:"amount"`
}

type StatsPublic struct {
	EntityKey               string  `json:"entityKey,omitempty"`
	StatsType               string  `json:"statsType"`
	StatsTimestamp          int64   `json:"statsTimestamp"`
	TotalTransactionCount   uint64  `json:"totalTransactionCount"`
	AvgGasPrice             string  `json:"avgGasPrice"`
	TotalGLMTransfersCount  uint64  `json:"totalGLMTransfersCount"`
	TotalGLMTransfersAmount float64 `json:"totalGLMTransfersAmount"`
}

// AggregateDataPublic is the combined result of one hourly and one daily
// aggregation round
type AggregateDataPublic struct {
	TotalTransactionCount      uint64 `json:"totalTransactionCount"`
	AvgGasPrice                string `json:"avgGasPrice"`
	TotalTransactionCountDaily uint64 `json:"totalTransactionCountDaily"`
	AvgGasPriceDaily           string `json:"avgGasPriceDaily"`
}

// StatsReport is the get-stats overview of the store
type StatsReport struct {
	Hourly      []*StatsPublic `json:"hourly"`
	Daily       []*StatsPublic `json:"daily"`
	BlockCount  int            `json:"blockCount"`
	OldestBlock uint64         `json:"oldestBlock"`
	LatestBlock uint64         `json:"latestBlock"`
}

func fromBlockRecord(b *datastore.BlockRecord) *BlockPublic {
	return &BlockPublic{
		BlockNumber:      b.BlockNumber,
		BlockHash:        b.BlockHash,
		ParentHash:       b.ParentHash,
		Timestamp:        b.Timestamp,
		TransactionCount: b.TransactionCount,
		GasPrice:         bigOrZero(b.GasPrice),
		GasUsed:          b.GasUsed,
		GasLimit:         b.GasLimit,
		BaseFeePerGas:    bigOrZero(b.BaseFeePerGas),
		Size:             b.Size,
		Miner:            b.Miner,
	}
}

func fromAggregateRecord(a *datastore.AggregateRecord) *StatsPublic {
	return &StatsPublic{
		EntityKey:               a.Key,
		StatsType:               a.StatsType.String(),
		StatsTimestamp:          a.StatsTimestamp,
		TotalTransactionCount:   a.TotalTransactionCount,
		AvgGasPrice:             bigOrZero(a.AvgGasPrice),
		TotalGLMTransfersCount:  a.TotalGLMTransfersCount,
		TotalGLMTransfersAmount: a.TotalGLMTransfersAmount,
	}
}

func (s *Service) cacheTTL() time.Duration {
	if s.cfg.Cache != nil && s.cfg.Cache.TTL > 0 {
		return s.cfg.Cache.TTL
	}
	return defaultCacheTTL
}

// GetLatestBlocks returns the newest stored blocks by timestamp. limit is
// clamped to [1, MaxLatestBlocksLimit].
func (s *Service) GetLatestBlocks(ctx context.Context, limit int) ([]*BlockPublic, error) {
	if limit <= 0 {
		limit = DefaultLatestBlocksLimit
	}
	limit = min(limit, MaxLatestBlocksLimit)

	key := fmt.Sprintf("blocks:latest:%d", limit)
	return cache.GetOrLoad(ctx, s.cache, key, s.cacheTTL(), func() ([]*BlockPublic, error) {
		records, err := s.store.GetLatestBlocks(ctx, limit)
		if err != nil {
			return nil, err
		}
		blocks := make([]*BlockPublic, 0, len(records))
		for _, r := range records {
			blocks = append(blocks, fromBlockRecord(r))
		}
		return blocks, nil
	})
}

// GetBlock returns a db.NotFoundError when the block is not stored
func (s *Service) GetBlock(ctx context.Context, number uint64) (*BlockPublic, error) {
	key := fmt.Sprintf("blocks:%d", number)
	return cache.GetOrLoad(ctx, s.cache, key, s.cacheTTL(), func() (*BlockPublic, error) {
		record, err := s.store.GetBlockByNumber(ctx, number)
		if err != nil {
			return nil, err
		}
		return fromBlockRecord(record), nil
	})
}

// GetBlockTransfers returns the GLM transfers of a stored block. Blocks that
// are not stored yield a db.NotFoundError without asking the chain.
func (s *Service) GetBlockTransfers(ctx context.Context, number uint64) ([]*GLMTransferPublic, error) {
	key := fmt.Sprintf("blocks:%d:transfers", number)
	return cache.GetOrLoad(ctx, s.cache, key, s.cacheTTL(), func() ([]*GLMTransferPublic, error) {
		if _, err := s.store.GetBlockByNumber(ctx, number); err != nil {
			return nil, err
		}
		transfers, err := s.eth.GetGLMTransfersForBlock(ctx, number)
		if err != nil {
			return nil, err
		}
		result := make([]*GLMTransferPublic, 0, len(transfers))
		for _, t := range transfers {
			result = append(result, &GLMTransferPublic{
				TxHash: t.TxHash.Hex(),
				From:   t.From.Hex(),
				To:     t.To.Hex(),
				Value:  bigOrZero(t.Value),
				Amount: t.Amount,
			})
		}
		return result, nil
	})
}

// GetStats returns the records of statsType from the last week, oldest first
func (s *Service) GetStats(ctx context.Context, statsType types.StatsType) ([]*StatsPublic, error) {
	limit := hourlyStatsLimit
	if statsType == types.StatsDaily {
		limit = dailyStatsLimit
	}
	since := s.now().Add(-s.cfg.Aggregator.StatsLookback).Unix()
	// the cache key is aligned to the hour so entries are shared within an hour
	key := fmt.Sprintf("stats:%s:%d", statsType, floorTo(since, hourSeconds))

	return cache.GetOrLoad(ctx, s.cache, key, s.cacheTTL(), func() ([]*StatsPublic, error) {
		records, err := s.store.GetStatsSince(ctx, statsType, since, limit)
		if err != nil {
			return nil, err
		}
		stats := make([]*StatsPublic, 0, len(records))
		for _, r := range records {
			stats = append(stats, fromAggregateRecord(r))
		}
		return stats, nil
	})
}

// AggregateData runs one hourly and one daily aggregation for now
func (s *Service) AggregateData(ctx context.Context) (*AggregateDataPublic, error) {
	hourly, err := s.AggregateHour(ctx, nil)
	if err != nil {
		return nil, err
	}
	daily, err := s.AggregateDay(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &AggregateDataPublic{
		TotalTransactionCount:      hourly.TotalTransactionCount,
		AvgGasPrice:                bigOrZero(hourly.AvgGasPrice),
		TotalTransactionCountDaily: daily.TotalTransactionCount,
		AvgGasPriceDaily:           bigOrZero(daily.AvgGasPrice),
	}, nil
}

// GetStatsReport lists all hourly and daily records up to now together with
// the stored block range
func (s *Service) GetStatsReport(ctx context.Context) (*StatsReport, error) {
	now := s.now().Unix()
	report := &StatsReport{}

	for _, statsType := range []types.StatsType{types.StatsHourly, types.StatsDaily} {
		records, err := s.store.GetAggregates(ctx, statsType, -1, &now)
		if err != nil {
			return nil, err
		}
		stats := make([]*StatsPublic, 0, len(records))
		for _, r := range records {
			stats = append(stats, fromAggregateRecord(r))
		}
		if statsType == types.StatsHourly {
			report.Hourly = stats
		} else {
			report.Daily = stats
		}
	}

	var err error
	if report.BlockCount, err = s.store.CountBlocks(ctx); err != nil {
		return nil, err
	}
	if report.OldestBlock, err = s.store.GetOldestBlockNumber(ctx); err != nil {
		return nil, err
	}
	if report.LatestBlock, err = s.store.GetLatestBlockNumber(ctx); err != nil {
		return nil, err
	}
	return report, nil
}

// IsBlockNotFound reports whether err means the requested block is not stored
func IsBlockNotFound(err error) bool {
	return db.IsNotFoundError(err)
}
