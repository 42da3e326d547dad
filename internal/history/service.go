package history

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"historyScope/internal/cache"
	"historyScope/internal/decode"
	"historyScope/internal/metrics"
	"historyScope/internal/model"
	"historyScope/internal/registry"
	"historyScope/internal/transfers"
)

var (
	ErrInvalidWallet = errors.New("invalid wallet address")
	ErrInvalidQuery  = errors.New("invalid history query")
	// ErrUnavailable is returned when every requested chain failed.
	ErrUnavailable = errors.New("history unavailable")
)

const (
	DefaultMaxPerChain = 100
	DefaultLimit       = 20
	MaxLimit           = 100
)

// ActivityKey caches one wallet's classified activity on one chain.
type ActivityKey struct {
	Wallet  common.Address
	ChainID int64
}

func (k ActivityKey) CacheKey() string {
	return "activity:" + strconv.FormatInt(k.ChainID, 10) + ":" + strings.ToLower(k.Wallet.Hex())
}

func (k ActivityKey) TTL() time.Duration { return 5 * time.Minute }

// TransferFetcher returns a wallet's transfer window on one chain.
type TransferFetcher interface {
	Fetch(ctx context.Context, wallet common.Address, chainID int64) ([]model.RawTransfer, error)
}

// Catalog serves token and pool reference data.
type Catalog interface {
	Tokens(ctx context.Context, chainID int64) ([]model.Token, error)
	Pools(ctx context.Context, chainID int64) ([]model.PoolDescriptor, error)
}

// TxResolver joins transactions with receipts.
type TxResolver interface {
	Resolve(ctx context.Context, hash common.Hash) (*model.ChainTransaction, error)
	Timestamp(ctx context.Context, tx *model.ChainTransaction) (int64, error)
}

// LegDecoder decodes receipt logs into wallet legs.
type LegDecoder interface {
	Decode(ctx context.Context, in decode.Input) decode.Result
}

// Pipeline holds the per-chain collaborators of the reconstruction pipeline.
type Pipeline struct {
	Resolver TxResolver
	Decoder  LegDecoder
}

// Options tunes the service.
type Options struct {
	MaxPerChain  int
	DefaultLimit int
	// Chains is used when a query names no chains.
	Chains []int64
}

// Service reconstructs wallet history across chains.
type Service struct {
	registry  *registry.Registry
	fetcher   TransferFetcher
	catalog   Catalog
	pipelines map[int64]Pipeline
	results   cache.Cache[ActivityKey, []model.ClassifiedActivity]
	opts      Options
	logger    *zap.Logger
}

// NewService validates that every pipeline chain is registered. A nil result
// cache disables caching.
func NewService(reg *registry.Registry, fetcher TransferFetcher, catalog Catalog, pipelines map[int64]Pipeline, results cache.Cache[ActivityKey, []model.ClassifiedActivity], opts Options, logger *zap.Logger) (*Service, error) {
	if reg == nil || fetcher == nil || catalog == nil {
		return nil, fmt.Errorf("history service: registry, fetcher and catalog are required")
	}
	if len(pipelines) == 0 {
		return nil, fmt.Errorf("history service: no chain pipelines configured")
	}
	for id, p := range pipelines {
		if _, err := reg.Chain(id); err != nil {
			return nil, fmt.Errorf("history service: %w", err)
		}
		if p.Resolver == nil || p.Decoder == nil {
			return nil, fmt.Errorf("history service: chain %d pipeline is incomplete", id)
		}
	}
	for _, id := range opts.Chains {
		if _, ok := pipelines[id]; !ok {
			return nil, fmt.Errorf("history service: default chain %d has no pipeline", id)
		}
	}
	if opts.MaxPerChain <= 0 {
		opts.MaxPerChain = DefaultMaxPerChain
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = DefaultLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		registry:  reg,
		fetcher:   fetcher,
		catalog:   catalog,
		pipelines: pipelines,
		results:   results,
		opts:      opts,
		logger:    logger,
	}, nil
}

// ParseWallet validates a hex wallet address.
func ParseWallet(raw string) (common.Address, error) {
	raw = strings.TrimSpace(raw)
	if !common.IsHexAddress(raw) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidWallet, raw)
	}
	addr := common.HexToAddress(raw)
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: zero address", ErrInvalidWallet)
	}
	return addr, nil
}

// GetHistory merges the wallet's history on every requested chain, newest
// first, and returns one page. Failed chains contribute nothing; the call
// fails only on invalid input or when every chain failed.
func (s *Service) GetHistory(ctx context.Context, q model.HistoryQuery) (model.HistoryPage, error) {
	started := time.Now()
	defer func() { metrics.RequestDuration.Observe(time.Since(started).Seconds()) }()

	wallet, err := ParseWallet(q.Wallet)
	if err != nil {
		return model.HistoryPage{}, err
	}
	chains, err := s.chains(q.Chains)
	if err != nil {
		return model.HistoryPage{}, err
	}
	limit, page := s.window(q.Limit, q.Page)

	perChain := make([][]model.ClassifiedActivity, len(chains))
	failed := make([]bool, len(chains))
	var g errgroup.Group
	for i, chainID := range chains {
		i, chainID := i, chainID
		g.Go(func() error {
			records, err := s.chainHistory(ctx, wallet, chainID)
			if err != nil {
				failed[i] = true
				metrics.ChainFailures.WithLabelValues(metrics.ChainLabel(chainID)).Inc()
				s.logger.Warn("chain history failed",
					zap.Int64("chain_id", chainID),
					zap.String("wallet", wallet.Hex()),
					zap.Error(err),
				)
				return nil
			}
			perChain[i] = records
			return nil
		})
	}
	_ = g.Wait()

	allFailed := true
	var merged []model.ClassifiedActivity
	for i := range chains {
		if !failed[i] {
			allFailed = false
		}
		merged = append(merged, perChain[i]...)
	}
	if allFailed {
		return model.HistoryPage{}, fmt.Errorf("%w: all %d chains failed", ErrUnavailable, len(chains))
	}

	Sort(merged)
	return Paginate(merged, limit, page), nil
}

func (s *Service) chains(requested []int64) ([]int64, error) {
	if len(requested) == 0 {
		requested = s.opts.Chains
	}
	if len(requested) == 0 {
		return nil, fmt.Errorf("%w: no chains requested", ErrInvalidQuery)
	}
	seen := make(map[int64]struct{}, len(requested))
	out := make([]int64, 0, len(requested))
	for _, id := range requested {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := s.pipelines[id]; !ok {
			return nil, fmt.Errorf("%w: %w: %d", ErrInvalidQuery, registry.ErrUnsupportedChain, id)
		}
		out = append(out, id)
	}
	return out, nil
}

func (s *Service) window(limit, page int) (int, int) {
	if limit <= 0 {
		limit = s.opts.DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if page <= 0 {
		page = 1
	}
	return limit, page
}

// chainHistory returns the classified activity of one wallet on one chain.
// Only provider and catalog failures are returned; per-transaction failures
// are logged and skipped.
func (s *Service) chainHistory(ctx context.Context, wallet common.Address, chainID int64) ([]model.ClassifiedActivity, error) {
	key := ActivityKey{Wallet: wallet, ChainID: chainID}
	if s.results != nil {
		if cached, ok := s.results.Get(ctx, key); ok {
			return append([]model.ClassifiedActivity(nil), cached...), nil
		}
	}

	contracts, err := s.registry.Chain(chainID)
	if err != nil {
		return nil, err
	}
	window, err := s.fetcher.Fetch(ctx, wallet, chainID)
	if errors.Is(err, transfers.ErrNoTokenCatalog) {
		s.logger.Info("chain has no token catalog, returning empty history",
			zap.Int64("chain_id", chainID),
			zap.String("wallet", wallet.Hex()),
		)
		return []model.ClassifiedActivity{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch transfers: %w", err)
	}
	tokens, err := s.catalog.Tokens(ctx, chainID)
	if err != nil {
		return nil, fmt.Errorf("token catalog: %w", err)
	}
	pools, err := s.catalog.Pools(ctx, chainID)
	if err != nil {
		s.logger.Warn("pool catalog unavailable", zap.Int64("chain_id", chainID), zap.Error(err))
		pools = nil
	}

	if len(window) > s.opts.MaxPerChain {
		window = window[:s.opts.MaxPerChain]
	}

	run := &chainRun{
		wallet:    wallet,
		contracts: contracts,
		pipeline:  s.pipelines[chainID],
		tokens:    tokens,
		pools:     pools,
		label:     metrics.ChainLabel(chainID),
		logger:    s.logger.With(zap.Int64("chain_id", chainID), zap.String("wallet", wallet.Hex())),
	}
	records := make([]model.ClassifiedActivity, 0, len(window))
	for _, transfer := range window {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records = append(records, run.process(ctx, transfer)...)
	}

	if s.results != nil {
		s.results.Set(ctx, key, append([]model.ClassifiedActivity(nil), records...))
	}
	s.logger.Info("chain history reconstructed",
		zap.Int64("chain_id", chainID),
		zap.String("wallet", wallet.Hex()),
		zap.Int("transfers", len(window)),
		zap.Int("resolved", run.resolved),
		zap.Int("excluded", run.excluded),
		zap.Int("records", len(records)),
	)
	return records, nil
}
