package transfers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"historyScope/internal/cache"
	"historyScope/internal/model"
	"historyScope/internal/registry"
)

// DefaultWindowSize caps the merged transfer window.
const DefaultWindowSize = 200

// ErrNoTokenCatalog is returned when a chain has no token catalog entries.
var ErrNoTokenCatalog = errors.New("no token catalog for chain")

// WindowKey caches one wallet's transfer window on one chain.
type WindowKey struct {
	Wallet  common.Address
	ChainID int64
}

func (k WindowKey) CacheKey() string {
	return "transfers:" + strconv.FormatInt(k.ChainID, 10) + ":" + strings.ToLower(k.Wallet.Hex())
}

func (k WindowKey) TTL() time.Duration { return 5 * time.Minute }

// TokenCatalog lists the tokens known on a chain.
type TokenCatalog interface {
	Tokens(ctx context.Context, chainID int64) ([]model.Token, error)
}

// Fetcher builds the per-wallet transfer window.
type Fetcher struct {
	provider   Provider
	registry   *registry.Registry
	tokens     TokenCatalog
	cache      cache.Cache[WindowKey, []model.RawTransfer]
	windowSize int
	logger     *zap.Logger
}

// NewFetcher creates a Fetcher. A nil window cache disables caching.
func NewFetcher(provider Provider, reg *registry.Registry, tokens TokenCatalog, windowCache cache.Cache[WindowKey, []model.RawTransfer], windowSize int, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	return &Fetcher{
		provider:   provider,
		registry:   reg,
		tokens:     tokens,
		cache:      windowCache,
		windowSize: windowSize,
		logger:     logger,
	}
}

// Fetch returns the wallet's transfer window on chainID. Failures return an
// empty window together with the cause.
func (f *Fetcher) Fetch(ctx context.Context, wallet common.Address, chainID int64) ([]model.RawTransfer, error) {
	contracts, err := f.registry.Chain(chainID)
	if err != nil {
		return []model.RawTransfer{}, err
	}

	tokens, err := f.tokens.Tokens(ctx, chainID)
	if err != nil {
		return []model.RawTransfer{}, fmt.Errorf("load token catalog: %w", err)
	}
	if len(tokens) == 0 {
		return []model.RawTransfer{}, fmt.Errorf("%w: %d", ErrNoTokenCatalog, chainID)
	}

	key := WindowKey{Wallet: wallet, ChainID: chainID}
	if f.cache != nil {
		if window, ok := f.cache.Get(ctx, key); ok {
			return window, nil
		}
	}

	var outgoing, incoming []model.RawTransfer
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		outgoing, err = f.provider.AssetTransfers(gctx, contracts.Network, Request{
			Address:    wallet,
			Direction:  FromWallet,
			Categories: contracts.TransferCategories,
			MaxCount:   f.windowSize,
		})
		return err
	})
	g.Go(func() error {
		var err error
		incoming, err = f.provider.AssetTransfers(gctx, contracts.Network, Request{
			Address:    wallet,
			Direction:  ToWallet,
			Categories: contracts.TransferCategories,
			MaxCount:   f.windowSize,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return []model.RawTransfer{}, err
	}

	window := Merge(f.windowSize, outgoing, incoming)
	if f.cache != nil {
		f.cache.Set(ctx, key, window)
	}

	f.logger.Debug("transfer window fetched",
		zap.Int64("chain_id", chainID),
		zap.String("wallet", wallet.Hex()),
		zap.Int("outgoing", len(outgoing)),
		zap.Int("incoming", len(incoming)),
		zap.Int("window", len(window)),
	)
	return window, nil
}

// Merge concatenates sets, keeps the first record per hash, sorts newest
// first and truncates to limit. Later records sharing a hash are kept as
// siblings of the surviving record.
func Merge(limit int, sets ...[]model.RawTransfer) []model.RawTransfer {
	index := make(map[string]int)
	out := make([]model.RawTransfer, 0)
	for _, set := range sets {
		for _, transfer := range set {
			hash := strings.ToLower(transfer.Hash)
			if hash == "" {
				continue
			}
			if pos, ok := index[hash]; ok {
				if !sameRecord(out[pos], transfer) && !hasSibling(out[pos], transfer) {
					out[pos].Siblings = append(out[pos].Siblings, transfer)
				}
				continue
			}
			index[hash] = len(out)
			out = append(out, transfer)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func sameRecord(a, b model.RawTransfer) bool {
	return strings.EqualFold(a.From, b.From) &&
		strings.EqualFold(a.To, b.To) &&
		strings.EqualFold(a.RawContract, b.RawContract) &&
		a.Category == b.Category &&
		a.Asset == b.Asset &&
		equalValue(a.Value, b.Value)
}

func hasSibling(head, candidate model.RawTransfer) bool {
	for _, sibling := range head.Siblings {
		if sameRecord(sibling, candidate) {
			return true
		}
	}
	return false
}

func equalValue(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
