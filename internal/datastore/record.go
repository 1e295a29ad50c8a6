package datastore

import (
	"math/big"
	"time"

	"github.com/Arkiv-Network/inf-demo/internal/types"
)

const (
	Project       = "EthDemo"
	SchemaVersion = "0.11"

	AttrProject        = "project"
	AttrDataType       = "EthDemo_dataType"
	AttrVersion        = "EthDemo_version"
	AttrBlockNumber    = "EthDemo_blockNumber"
	AttrBlockHash      = "EthDemo_blockHash"
	AttrBlockGasPrice  = "EthDemo_blockGasPrice"
	AttrBlockTimestamp = "EthDemo_blockTimestamp"
	AttrStatsType      = "EthDemo_statsType"
	AttrStatsTimestamp = "EthDemo_statsTimestamp"

	BlockTTL       = 30 * 24 * time.Hour
	HourlyStatsTTL = 7 * 24 * time.Hour
	DailyStatsTTL  = 30 * 24 * time.Hour
)

// BlockRecord is an Ethereum block as persisted by the indexer
type BlockRecord struct {
	BlockNumber      uint64
	BlockHash        string
	ParentHash       string
	Timestamp        int64
	TransactionCount int
	GasPrice         *big.Int
	GasUsed          uint64
	GasLimit         uint64
	BaseFeePerGas    *big.Int
	Size             uint64
	Miner            string
}

// AggregateRecord summarizes the blocks of an hour or the hourly records of a day
type AggregateRecord struct {
	// Key is empty for aggregates that were never persisted
	Key                     string
	StatsType               types.StatsType
	StatsTimestamp          int64
	TotalTransactionCount   uint64
	AvgGasPrice             *big.Int
	TotalGLMTransfersCount  uint64
	TotalGLMTransfersAmount float64
}

// ZeroAggregate is returned for buckets that do not meet their completeness gate
func ZeroAggregate(statsType types.StatsType, statsTimestamp int64) *AggregateRecord {
	return &AggregateRecord{
		StatsType:      statsType,
		StatsTimestamp: statsTimestamp,
		AvgGasPrice:    new(big.Int),
	}
}

func (a *AggregateRecord) Persisted() bool {
	return a.Key != ""
}

func ttlFor(statsType types.StatsType) time.Duration {
	if statsType == types.StatsHourly {
		return HourlyStatsTTL
	}
	return DailyStatsTTL
}
