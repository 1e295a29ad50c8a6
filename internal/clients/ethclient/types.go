package ethclient

import (
	"encoding/json"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var ErrBlockNotFound = errors.New("block not found")

// transferEventTopic is keccak256("Transfer(address,address,uint256)")
var transferEventTopic = common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")

// GLM has 18 decimals
var glmUnit = new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))

type Block struct {
	Number           uint64
	Hash             common.Hash
	ParentHash       common.Hash
	Timestamp        uint64
	TransactionCount int
	GasUsed          uint64
	GasLimit         uint64
	Size             uint64
	// BaseFeePerGas is zero before London
	BaseFeePerGas *big.Int
	Miner         common.Address
	// GasPrice is the feeHistory median estimate for this block
	GasPrice *big.Int
}

type GLMTransferStats struct {
	Count  uint64
	Amount float64
}

type GLMTransfer struct {
	BlockNumber uint64
	TxHash      common.Hash
	From        common.Address
	To          common.Address
	Value       *big.Int
	Amount      float64
}

type EffectiveGasPrice struct {
	BlockNumber      uint64
	TransactionCount int
	Median           *big.Int
	Average          *big.Int
	Min              *big.Int
	Max              *big.Int
}

type BlockGasPrice struct {
	BlockNumber   uint64
	BaseFeePerGas *big.Int
	P25           *big.Int
	P50           *big.Int
	P75           *big.Int
	// Suggested is BaseFeePerGas + P50
	Suggested *big.Int
}

// rpcBlock is the eth_getBlockBy* response without full transactions
type rpcBlock struct {
	Number        hexutil.Uint64    `json:"number"`
	Hash          common.Hash       `json:"hash"`
	ParentHash    common.Hash       `json:"parentHash"`
	Timestamp     hexutil.Uint64    `json:"timestamp"`
	GasUsed       hexutil.Uint64    `json:"gasUsed"`
	GasLimit      hexutil.Uint64    `json:"gasLimit"`
	Size          hexutil.Uint64    `json:"size"`
	BaseFeePerGas *hexutil.Big      `json:"baseFeePerGas"`
	Miner         common.Address    `json:"miner"`
	Transactions  []json.RawMessage `json:"transactions"`
}

func (b *rpcBlock) toBlock() *Block {
	baseFee := new(big.Int)
	if b.BaseFeePerGas != nil {
		baseFee = b.BaseFeePerGas.ToInt()
	}

	return &Block{
		Number:           uint64(b.Number),
		Hash:             b.Hash,
		ParentHash:       b.ParentHash,
		Timestamp:        uint64(b.Timestamp),
		TransactionCount: len(b.Transactions),
		GasUsed:          uint64(b.GasUsed),
		GasLimit:         uint64(b.GasLimit),
		Size:             uint64(b.Size),
		BaseFeePerGas:    baseFee,
		Miner:            b.Miner,
	}
}

// ToGLM converts a raw token amount into GLM
func ToGLM(value *big.Int) float64 {
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(value), glmUnit).Float64()
	return f
}
