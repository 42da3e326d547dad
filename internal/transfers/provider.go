package transfers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"

	"historyScope/internal/chain"
	"historyScope/internal/model"
)

// Direction selects which side of a transfer the wallet is on.
type Direction int

const (
	FromWallet Direction = iota
	ToWallet
)

func (d Direction) String() string {
	if d == ToWallet {
		return "to"
	}
	return "from"
}

// Request describes one getAssetTransfers lookup.
type Request struct {
	Address    common.Address
	Direction  Direction
	Categories []string
	MaxCount   int
}

// Provider is the transfer-indexing collaborator.
type Provider interface {
	AssetTransfers(ctx context.Context, network string, req Request) ([]model.RawTransfer, error)
}

// AlchemyOptions tunes an AlchemyProvider.
type AlchemyOptions struct {
	RateLimit    float64
	Burst        int
	MaxRetries   int
	RetryBackoff time.Duration
	Logger       *zap.Logger
}

// AlchemyProvider calls alchemy_getAssetTransfers over JSON-RPC.
type AlchemyProvider struct {
	clients map[string]*rpc.Client
	limiter *chain.Limiter
	opts    AlchemyOptions
	logger  *zap.Logger
}

// NewAlchemyProvider dials one JSON-RPC endpoint per network identifier.
func NewAlchemyProvider(ctx context.Context, endpoints map[string]string, opts AlchemyOptions) (*AlchemyProvider, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	clients := make(map[string]*rpc.Client, len(endpoints))
	for network, url := range endpoints {
		client, err := rpc.DialContext(ctx, url)
		if err != nil {
			for _, c := range clients {
				c.Close()
			}
			return nil, fmt.Errorf("dial transfers rpc for %s: %w", network, err)
		}
		clients[network] = client
	}

	return newAlchemyProvider(clients, opts, logger), nil
}

func newAlchemyProvider(clients map[string]*rpc.Client, opts AlchemyOptions, logger *zap.Logger) *AlchemyProvider {
	return &AlchemyProvider{
		clients: clients,
		limiter: chain.NewLimiter(opts.RateLimit, opts.Burst, "transfers"),
		opts:    opts,
		logger:  logger,
	}
}

// Close closes every endpoint.
func (p *AlchemyProvider) Close() {
	for _, c := range p.clients {
		c.Close()
	}
}

type assetTransfersParams struct {
	FromBlock    string   `json:"fromBlock"`
	ToBlock      string   `json:"toBlock"`
	FromAddress  string   `json:"fromAddress,omitempty"`
	ToAddress    string   `json:"toAddress,omitempty"`
	Category     []string `json:"category"`
	Order        string   `json:"order"`
	WithMetadata bool     `json:"withMetadata"`
	MaxCount     string   `json:"maxCount"`
}

type assetTransfersResult struct {
	Transfers []assetTransfer `json:"transfers"`
	PageKey   string          `json:"pageKey"`
}

type assetTransfer struct {
	BlockNum    string   `json:"blockNum"`
	Hash        string   `json:"hash"`
	From        string   `json:"from"`
	To          *string  `json:"to"`
	Value       *float64 `json:"value"`
	Asset       *string  `json:"asset"`
	Category    string   `json:"category"`
	RawContract struct {
		Address *string `json:"address"`
	} `json:"rawContract"`
	Metadata struct {
		BlockTimestamp string `json:"blockTimestamp"`
	} `json:"metadata"`
}

// AssetTransfers returns transfers for one direction, newest first.
func (p *AlchemyProvider) AssetTransfers(ctx context.Context, network string, req Request) ([]model.RawTransfer, error) {
	client, ok := p.clients[network]
	if !ok {
		return nil, fmt.Errorf("no transfers endpoint for network %s", network)
	}

	params := assetTransfersParams{
		FromBlock:    "0x0",
		ToBlock:      "latest",
		Category:     req.Categories,
		Order:        "desc",
		WithMetadata: true,
		MaxCount:     hexutil.EncodeUint64(uint64(req.MaxCount)),
	}
	if req.Direction == ToWallet {
		params.ToAddress = req.Address.Hex()
	} else {
		params.FromAddress = req.Address.Hex()
	}

	var result assetTransfersResult
	err := chain.Observe(ctx, p.limiter, network, "alchemy_getAssetTransfers", p.opts.MaxRetries, p.opts.RetryBackoff, func(ctx context.Context) error {
		return client.CallContext(ctx, &result, "alchemy_getAssetTransfers", params)
	})
	if err != nil {
		return nil, fmt.Errorf("get asset transfers (%s, %s): %w", network, req.Direction, err)
	}

	out := make([]model.RawTransfer, 0, len(result.Transfers))
	for _, item := range result.Transfers {
		out = append(out, toRawTransfer(item, p.logger))
	}
	return out, nil
}

func toRawTransfer(item assetTransfer, logger *zap.Logger) model.RawTransfer {
	transfer := model.RawTransfer{
		From:     strings.ToLower(item.From),
		Hash:     strings.ToLower(item.Hash),
		Value:    item.Value,
		Category: item.Category,
	}
	if item.To != nil {
		transfer.To = strings.ToLower(*item.To)
	}
	if item.Asset != nil {
		transfer.Asset = *item.Asset
	}
	if item.RawContract.Address != nil {
		transfer.RawContract = strings.ToLower(*item.RawContract.Address)
	}
	if block, err := hexutil.DecodeUint64(item.BlockNum); err == nil {
		transfer.BlockNumber = block
	}
	if item.Metadata.BlockTimestamp != "" {
		ts, err := time.Parse(time.RFC3339, item.Metadata.BlockTimestamp)
		if err != nil {
			logger.Debug("transfer timestamp parse failed", zap.String("tx_hash", item.Hash), zap.Error(err))
		} else {
			transfer.Timestamp = ts.UnixMilli()
		}
	}
	return transfer
}
