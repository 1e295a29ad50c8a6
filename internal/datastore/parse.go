package datastore

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"

	"github.com/Arkiv-Network/inf-demo/internal/db"
	"github.com/Arkiv-Network/inf-demo/internal/types"
)

type ParsePolicy int

const (
	// SkipInvalid logs and drops entities whose payload cannot be decoded
	SkipInvalid ParsePolicy = iota
	// FailOnInvalid aborts the read on the first undecodable entity
	FailOnInvalid
)

// ParseError reports an entity whose payload does not match the record schema
type ParseError struct {
	Key string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse entity %s: %v", e.Key, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

type blockPayload struct {
	BlockNumber      string `json:"blockNumber"`
	BlockHash        string `json:"blockHash"`
	ParentHash       string `json:"parentHash"`
	Timestamp        int64  `json:"timestamp"`
	TransactionCount int    `json:"transactionCount"`
	GasPrice         string `json:"gasPrice"`
	GasUsed          string `json:"gasUsed"`
	GasLimit         string `json:"gasLimit"`
	BaseFeePerGas    string `json:"baseFeePerGas,omitempty"`
	Miner            string `json:"miner"`
	Size             string `json:"size"`
}

type statsPayload struct {
	TotalTransactionCount   uint64  `json:"totalTransactionCount"`
	AvgGasPrice             string  `json:"avgGasPrice"`
	TotalGLMTransfersCount  uint64  `json:"totalGLMTransfersCount"`
	TotalGLMTransfersAmount float64 `json:"totalGLMTransfersAmount"`
}

func encodeBlock(b *BlockRecord) (db.EntityCreate, error) {
	baseFee := ""
	if b.BaseFeePerGas != nil {
		baseFee = b.BaseFeePerGas.String()
	}

	payload, err := json.Marshal(blockPayload{
		BlockNumber:      strconv.FormatUint(b.BlockNumber, 10),
		BlockHash:        b.BlockHash,
		ParentHash:       b.ParentHash,
		Timestamp:        b.Timestamp,
		TransactionCount: b.TransactionCount,
		GasPrice:         bigString(b.GasPrice),
		GasUsed:          strconv.FormatUint(b.GasUsed, 10),
		GasLimit:         strconv.FormatUint(b.GasLimit, 10),
		BaseFeePerGas:    baseFee,
		Miner:            b.Miner,
		Size:             strconv.FormatUint(b.Size, 10),
	})
	if err != nil {
		return db.EntityCreate{}, err
	}

	numeric := map[string]uint64{
		AttrBlockNumber:    b.BlockNumber,
		AttrBlockTimestamp: uint64(max(b.Timestamp, 0)),
	}
	// the store only indexes values that fit a signed 64 bit integer
	if b.GasPrice != nil && b.GasPrice.IsInt64() && b.GasPrice.Sign() >= 0 {
		numeric[AttrBlockGasPrice] = b.GasPrice.Uint64()
	}

	return db.EntityCreate{
		Payload:     payload,
		ContentType: db.ContentTypeJSON,
		StringAttributes: map[string]string{
			AttrProject:   Project,
			AttrDataType:  types.DataTypeBlock.String(),
			AttrVersion:   SchemaVersion,
			AttrBlockHash: b.BlockHash,
		},
		NumericAttributes: numeric,
		ExpiresIn:         BlockTTL,
	}, nil
}

func encodeAggregate(a *AggregateRecord) (db.EntityCreate, error) {
	payload, err := json.Marshal(statsPayload{
		TotalTransactionCount:   a.TotalTransactionCount,
		AvgGasPrice:             bigString(a.AvgGasPrice),
		TotalGLMTransfersCount:  a.TotalGLMTransfersCount,
		TotalGLMTransfersAmount: a.TotalGLMTransfersAmount,
	})
	if err != nil {
		return db.EntityCreate{}, err
	}

	return db.EntityCreate{
		Payload:     payload,
		ContentType: db.ContentTypeJSON,
		StringAttributes: map[string]string{
			AttrProject:   Project,
			AttrDataType:  types.DataTypeStats.String(),
			AttrVersion:   SchemaVersion,
			AttrStatsType: a.StatsType.String(),
		},
		NumericAttributes: map[string]uint64{
			AttrStatsTimestamp: uint64(max(a.StatsTimestamp, 0)),
		},
		ExpiresIn: ttlFor(a.StatsType),
	}, nil
}

// ParseBlock decodes a block entity. A missing baseFeePerGas parses as zero.
func ParseBlock(e *db.Entity) (*BlockRecord, error) {
	var p blockPayload
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return nil, &ParseError{Key: e.Key, Err: err}
	}

	number, err := strconv.ParseUint(p.BlockNumber, 10, 64)
	if err != nil {
		return nil, &ParseError{Key: e.Key, Err: fmt.Errorf("invalid blockNumber %q", p.BlockNumber)}
	}

	gasPrice, err := parseBig("gasPrice", p.GasPrice, false)
	if err != nil {
		return nil, &ParseError{Key: e.Key, Err: err}
	}
	baseFee, err := parseBig("baseFeePerGas", p.BaseFeePerGas, true)
	if err != nil {
		return nil, &ParseError{Key: e.Key, Err: err}
	}

	gasUsed, err := parseUint("gasUsed", p.GasUsed)
	if err != nil {
		return nil, &ParseError{Key: e.Key, Err: err}
	}
	gasLimit, err := parseUint("gasLimit", p.GasLimit)
	if err != nil {
		return nil, &ParseError{Key: e.Key, Err: err}
	}
	size, err := parseUint("size", p.Size)
	if err != nil {
		return nil, &ParseError{Key: e.Key, Err: err}
	}

	return &BlockRecord{
		BlockNumber:      number,
		BlockHash:        p.BlockHash,
		ParentHash:       p.ParentHash,
		Timestamp:        p.Timestamp,
		TransactionCount: p.TransactionCount,
		GasPrice:         gasPrice,
		GasUsed:          gasUsed,
		GasLimit:         gasLimit,
		BaseFeePerGas:    baseFee,
		Size:             size,
		Miner:            p.Miner,
	}, nil
}

// ParseAggregate decodes a stats entity, type and timestamp come from its attributes
func ParseAggregate(e *db.Entity) (*AggregateRecord, error) {
	statsType, err := types.ParseStatsType(e.StringAttributes[AttrStatsType])
	if err != nil {
		return nil, &ParseError{Key: e.Key, Err: err}
	}
	ts, ok := e.NumericAttributes[AttrStatsTimestamp]
	if !ok || ts > math.MaxInt64 {
		return nil, &ParseError{Key: e.Key, Err: fmt.Errorf("missing %s attribute", AttrStatsTimestamp)}
	}

	var p statsPayload
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return nil, &ParseError{Key: e.Key, Err: err}
	}
	avg, err := parseBig("avgGasPrice", p.AvgGasPrice, true)
	if err != nil {
		return nil, &ParseError{Key: e.Key, Err: err}
	}

	return &AggregateRecord{
		Key:                     e.Key,
		StatsType:               statsType,
		StatsTimestamp:          int64(ts),
		TotalTransactionCount:   p.TotalTransactionCount,
		AvgGasPrice:             avg,
		TotalGLMTransfersCount:  p.TotalGLMTransfersCount,
		TotalGLMTransfersAmount: p.TotalGLMTransfersAmount,
	}, nil
}

func parseBig(field, s string, optional bool) (*big.Int, error) {
	if s == "" && optional {
		return new(big.Int), nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid %s %q", field, s)
	}
	return v, nil
}

func parseUint(field, s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", field, s)
	}
	return v, nil
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
