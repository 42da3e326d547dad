package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"

	"historyScope/internal/metrics"
)

// Options tunes a Client.
type Options struct {
	ChainID      int64
	Multicall    common.Address
	RateLimit    float64
	Burst        int
	MaxRetries   int
	RetryBackoff time.Duration
	Logger       *zap.Logger
}

// Client wraps go-ethereum RPC and provides helper methods.
type Client struct {
	rpcClient *rpc.Client
	ethClient *ethclient.Client
	opts      Options
	limiter   *Limiter
	label     string
	logger    *zap.Logger

	mu      sync.RWMutex
	tsCache map[uint64]uint64
}

// Transaction is the subset of eth_getTransactionByHash the pipeline reads,
// decoded from raw JSON without a signer.
type Transaction struct {
	Hash        common.Hash     `json:"hash"`
	From        common.Address  `json:"from"`
	To          *common.Address `json:"to"`
	Value       *hexutil.Big    `json:"value"`
	Input       hexutil.Bytes   `json:"input"`
	BlockNumber *hexutil.Big    `json:"blockNumber"`
}

// NewClient creates a new chain client from the RPC URL.
func NewClient(ctx context.Context, rpcURL string, opts Options) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}
	return newClient(rpcClient, opts), nil
}

func newClient(rpcClient *rpc.Client, opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	label := metrics.ChainLabel(opts.ChainID)
	return &Client{
		rpcClient: rpcClient,
		ethClient: ethclient.NewClient(rpcClient),
		opts:      opts,
		limiter:   NewLimiter(opts.RateLimit, opts.Burst, label),
		label:     label,
		logger:    logger,
		tsCache:   make(map[uint64]uint64),
	}
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

// ChainID returns the configured chain ID.
func (c *Client) ChainID() int64 {
	return c.opts.ChainID
}

func (c *Client) do(ctx context.Context, method string, fn func(context.Context) error) error {
	return Observe(ctx, c.limiter, c.label, method, c.opts.MaxRetries, c.opts.RetryBackoff, fn)
}

// TransactionByHash fetches a transaction.
func (c *Client) TransactionByHash(ctx context.Context, hash common.Hash) (*Transaction, error) {
	var raw json.RawMessage
	err := c.do(ctx, "eth_getTransactionByHash", func(ctx context.Context) error {
		return c.rpcClient.CallContext(ctx, &raw, "eth_getTransactionByHash", hash)
	})
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, ethereum.NotFound
	}

	var tx Transaction
	if err := json.Unmarshal(raw, &tx); err != nil {
		return nil, fmt.Errorf("decode transaction: %w", err)
	}
	return &tx, nil
}

// TransactionReceipt fetches a transaction receipt.
func (c *Client) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	var receipt *types.Receipt
	err := c.do(ctx, "eth_getTransactionReceipt", func(ctx context.Context) error {
		var err error
		receipt, err = c.ethClient.TransactionReceipt(ctx, hash)
		return err
	})
	return receipt, err
}

// HeaderByNumber returns the block header by number.
func (c *Client) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	var header *types.Header
	err := c.do(ctx, "eth_getBlockByNumber", func(ctx context.Context) error {
		var err error
		header, err = c.ethClient.HeaderByNumber(ctx, number)
		return err
	})
	return header, err
}

// BlockTimestamp returns the block timestamp, using an in-memory cache.
func (c *Client) BlockTimestamp(ctx context.Context, number uint64) (uint64, error) {
	c.mu.RLock()
	ts, ok := c.tsCache[number]
	c.mu.RUnlock()
	if ok {
		return ts, nil
	}

	header, err := c.HeaderByNumber(ctx, new(big.Int).SetUint64(number))
	if err != nil {
		return 0, err
	}

	ts = header.Time
	c.mu.Lock()
	c.tsCache[number] = ts
	c.mu.Unlock()

	return ts, nil
}

// CallContract performs an eth_call for a contract method.
func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	var out []byte
	err := c.do(ctx, "eth_call", func(ctx context.Context) error {
		var err error
		out, err = c.ethClient.CallContract(ctx, msg, blockNumber)
		return err
	})
	return out, err
}

// Multicall batches calls through the chain's Multicall3 contract.
func (c *Client) Multicall(ctx context.Context, calls []Call, blockNumber *big.Int) ([]CallResult, error) {
	if len(calls) == 0 {
		return nil, nil
	}
	if c.opts.Multicall == (common.Address{}) {
		return nil, fmt.Errorf("multicall address not configured for chain %d", c.opts.ChainID)
	}

	data, err := PackAggregate3(calls)
	if err != nil {
		return nil, err
	}

	target := c.opts.Multicall
	resp, err := c.CallContract(ctx, ethereum.CallMsg{To: &target, Data: data}, blockNumber)
	if err != nil {
		return nil, fmt.Errorf("call aggregate3: %w", err)
	}

	results, err := UnpackAggregate3(resp)
	if err != nil {
		return nil, err
	}
	if len(results) != len(calls) {
		return nil, fmt.Errorf("aggregate3 returned %d results for %d calls", len(results), len(calls))
	}

	c.logger.Debug("multicall complete", zap.Int64("chain_id", c.opts.ChainID), zap.Int("calls", len(calls)))
	return results, nil
}
