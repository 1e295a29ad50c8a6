package testutil

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// FakeBlock is a block served by FakeChain
type FakeBlock struct {
	Number           uint64
	Timestamp        uint64
	TransactionCount int
	BaseFee          *big.Int
	PriorityFee      *big.Int
	GasUsed          uint64
	// ParentHash overrides the derived parent hash when set
	ParentHash *common.Hash
}

// FakeTransfer is a GLM Transfer log served by FakeChain
type FakeTransfer struct {
	BlockNumber uint64
	From, To    common.Address
	Value       *big.Int
}

// FakeChain is an in-memory Ethereum JSON-RPC node answering the subset of
// methods the indexer uses
type FakeChain struct {
	mu        sync.Mutex
	blocks    map[uint64]*FakeBlock
	head      uint64
	transfers []FakeTransfer
	calls     map[string]int
	// failures holds the number of upcoming calls per method that fail with an internal error
	failures map[string]int
	gasPrice *big.Int
}

func NewFakeChain() *FakeChain {
	return &FakeChain{
		blocks:   make(map[uint64]*FakeBlock),
		calls:    make(map[string]int),
		failures: make(map[string]int),
		gasPrice: big.NewInt(1_000_000_000),
	}
}

// BlockHash is the deterministic hash of the block with the given number
func BlockHash(number uint64) common.Hash {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], number)
	return crypto.Keccak256Hash([]byte("block"), b[:])
}

// AddBlock registers a block and moves the head forward when needed
func (c *FakeChain) AddBlock(b FakeBlock) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if b.BaseFee == nil {
		b.BaseFee = big.NewInt(0)
	}
	if b.PriorityFee == nil {
		b.PriorityFee = big.NewInt(0)
	}
	c.blocks[b.Number] = &b
	if b.Number > c.head {
		c.head = b.Number
	}
}

// AddBlocks registers blocks from..to with the given spacing in seconds
func (c *FakeChain) AddBlocks(from, to, startTimestamp, spacing uint64) {
	for n := from; n <= to; n++ {
		c.AddBlock(FakeBlock{
			Number:           n,
			Timestamp:        startTimestamp + (n-from)*spacing,
			TransactionCount: int(n % 7),
			BaseFee:          big.NewInt(int64(10 + n%3)),
			PriorityFee:      big.NewInt(2),
			GasUsed:          15_000_000,
		})
	}
}

func (c *FakeChain) AddTransfer(t FakeTransfer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transfers = append(c.transfers, t)
}

// SetHead moves the head, blocks above it stay registered but unreachable by "latest"
func (c *FakeChain) SetHead(n uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.head = n
}

func (c *FakeChain) FailNext(method string, times int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures[method] = times
}

func (c *FakeChain) Calls(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[method]
}

// Server starts an httptest server closed at the end of the test
func (c *FakeChain) Server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(c)
	t.Cleanup(srv.Close)
	return srv
}

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result"`
	Error   *rpcError       `json:"error,omitempty"`
}

func (c *FakeChain) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := c.handle(req)
	resp := rpcResponse{JSONRPC: "2.0", ID: req.ID, Result: result}
	if err != nil {
		resp.Result = nil
		resp.Error = &rpcError{Code: -32000, Message: err.Error()}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (c *FakeChain) handle(req rpcRequest) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls[req.Method]++
	if c.failures[req.Method] > 0 {
		c.failures[req.Method]--
		return nil, fmt.Errorf("injected failure for %s", req.Method)
	}

	switch req.Method {
	case "eth_getBlockByNumber":
		var tag string
		if err := param(req, 0, &tag); err != nil {
			return nil, err
		}
		number, err := c.resolveTag(tag)
		if err != nil {
			return nil, err
		}
		return c.blockJSON(number), nil
	case "eth_getBlockByHash":
		var hash common.Hash
		if err := param(req, 0, &hash); err != nil {
			return nil, err
		}
		for n := range c.blocks {
			if BlockHash(n) == hash {
				return c.blockJSON(n), nil
			}
		}
		return nil, nil
	case "eth_feeHistory":
		return c.feeHistory(req)
	case "eth_getLogs":
		return c.logs(req)
	case "eth_gasPrice":
		return (*hexutil.Big)(c.gasPrice), nil
	case "eth_getBlockReceipts":
		return c.receipts(req)
	case "eth_blockNumber":
		return hexutil.Uint64(c.head), nil
	}

	return nil, fmt.Errorf("method %s not supported", req.Method)
}

func param(req rpcRequest, i int, v any) error {
	if i >= len(req.Params) {
		return fmt.Errorf("missing param %d", i)
	}
	return json.Unmarshal(req.Params[i], v)
}

func (c *FakeChain) resolveTag(tag string) (uint64, error) {
	if tag == "latest" || tag == "pending" || tag == "safe" || tag == "finalized" {
		return c.head, nil
	}
	n, err := hexutil.DecodeUint64(tag)
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (c *FakeChain) blockJSON(number uint64) any {
	b, ok := c.blocks[number]
	if !ok {
		return nil
	}

	parent := BlockHash(number - 1)
	if number == 0 {
		parent = common.Hash{}
	}
	if b.ParentHash != nil {
		parent = *b.ParentHash
	}

	txs := make([]common.Hash, b.TransactionCount)
	for i := range txs {
		txs[i] = crypto.Keccak256Hash(BlockHash(number).Bytes(), []byte{byte(i)})
	}

	return map[string]any{
		"number":        hexutil.Uint64(number),
		"hash":          BlockHash(number),
		"parentHash":    parent,
		"timestamp":     hexutil.Uint64(b.Timestamp),
		"gasUsed":       hexutil.Uint64(b.GasUsed),
		"gasLimit":      hexutil.Uint64(30_000_000),
		"size":          hexutil.Uint64(1000 + number%100),
		"baseFeePerGas": (*hexutil.Big)(b.BaseFee),
		"miner":         common.HexToAddress("0x95222290dd7278aa3ddd389cc1e1d165cc4bafe5"),
		"transactions":  txs,
	}
}

func (c *FakeChain) feeHistory(req rpcRequest) (any, error) {
	var countHex, tag string
	var percentiles []float64
	if err := param(req, 0, &countHex); err != nil {
		return nil, err
	}
	if err := param(req, 1, &tag); err != nil {
		return nil, err
	}
	if err := param(req, 2, &percentiles); err != nil {
		return nil, err
	}

	count, err := hexutil.DecodeUint64(countHex)
	if err != nil {
		return nil, err
	}
	newest, err := c.resolveTag(tag)
	if err != nil {
		return nil, err
	}
	oldest := newest + 1 - count

	var rewards [][]*hexutil.Big
	var baseFees []*hexutil.Big
	var ratios []float64
	for n := oldest; n <= newest; n++ {
		b, ok := c.blocks[n]
		if !ok {
			return nil, fmt.Errorf("block %d not found", n)
		}
		reward := make([]*hexutil.Big, len(percentiles))
		for i, p := range percentiles {
			// p50 is the block's priority fee, other percentiles scale around it
			v := new(big.Int).Mul(b.PriorityFee, big.NewInt(int64(p)))
			v.Quo(v, big.NewInt(50))
			reward[i] = (*hexutil.Big)(v)
		}
		rewards = append(rewards, reward)
		baseFees = append(baseFees, (*hexutil.Big)(b.BaseFee))
		ratios = append(ratios, 0.5)
	}
	// the node also reports the base fee of the next block
	baseFees = append(baseFees, baseFees[len(baseFees)-1])

	return map[string]any{
		"oldestBlock":   hexutil.Uint64(oldest),
		"reward":        rewards,
		"baseFeePerGas": baseFees,
		"gasUsedRatio":  ratios,
	}, nil
}

func (c *FakeChain) logs(req rpcRequest) (any, error) {
	var filter struct {
		FromBlock string `json:"fromBlock"`
		ToBlock   string `json:"toBlock"`
	}
	if err := param(req, 0, &filter); err != nil {
		return nil, err
	}
	from, err := hexutil.DecodeUint64(filter.FromBlock)
	if err != nil {
		return nil, err
	}
	to, err := hexutil.DecodeUint64(filter.ToBlock)
	if err != nil {
		return nil, err
	}

	topic := common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")
	result := []map[string]any{}
	for i, t := range c.transfers {
		if t.BlockNumber < from || t.BlockNumber > to {
			continue
		}
		result = append(result, map[string]any{
			"address":          strings.ToLower("0x7DD9c5Cba05E151C895FDe1CF355C9A1D5DA6429"),
			"topics":           []common.Hash{topic, common.BytesToHash(t.From.Bytes()), common.BytesToHash(t.To.Bytes())},
			"data":             hexutil.Bytes(common.BigToHash(t.Value).Bytes()),
			"blockNumber":      hexutil.Uint64(t.BlockNumber),
			"transactionHash":  crypto.Keccak256Hash([]byte{byte(i)}),
			"transactionIndex": hexutil.Uint(0),
			"blockHash":        BlockHash(t.BlockNumber),
			"logIndex":         hexutil.Uint(i),
			"removed":          false,
		})
	}
	return result, nil
}

func (c *FakeChain) receipts(req rpcRequest) (any, error) {
	var tag string
	if err := param(req, 0, &tag); err != nil {
		return nil, err
	}
	number, err := c.resolveTag(tag)
	if err != nil {
		return nil, err
	}
	b, ok := c.blocks[number]
	if !ok {
		return nil, nil
	}

	result := []map[string]any{}
	for i := 0; i < b.TransactionCount; i++ {
		price := new(big.Int).Add(b.BaseFee, big.NewInt(int64(i+1)))
		result = append(result, map[string]any{
			"type":              hexutil.Uint64(2),
			"status":            hexutil.Uint64(1),
			"cumulativeGasUsed": hexutil.Uint64(21000 * (i + 1)),
			"logsBloom":         hexutil.Bytes(make([]byte, 256)),
			"logs":              []any{},
			"transactionHash":   crypto.Keccak256Hash(BlockHash(number).Bytes(), []byte{byte(i)}),
			"contractAddress":   nil,
			"gasUsed":           hexutil.Uint64(21000),
			"effectiveGasPrice": (*hexutil.Big)(price),
			"blockHash":         BlockHash(number),
			"blockNumber":       (*hexutil.Big)(new(big.Int).SetUint64(number)),
			"transactionIndex":  hexutil.Uint(i),
		})
	}
	return result, nil
}
