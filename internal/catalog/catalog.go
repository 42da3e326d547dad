package catalog

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"historyScope/internal/cache"
	"historyScope/internal/model"
)

// Source loads reference data for one chain.
type Source interface {
	LoadTokens(ctx context.Context, chainID int64) ([]model.Token, error)
	LoadPools(ctx context.Context, chainID int64) ([]model.PoolDescriptor, error)
}

// TokensKey caches a chain's token catalog.
type TokensKey struct {
	ChainID int64
}

func (k TokensKey) CacheKey() string { return "catalog:tokens:" + strconv.FormatInt(k.ChainID, 10) }

func (k TokensKey) TTL() time.Duration { return time.Minute }

// PoolsKey caches a chain's pool catalog.
type PoolsKey struct {
	ChainID int64
}

func (k PoolsKey) CacheKey() string { return "catalog:pools:" + strconv.FormatInt(k.ChainID, 10) }

func (k PoolsKey) TTL() time.Duration { return 10 * time.Minute }

// Catalog serves token and pool catalogs through a TTL cache.
type Catalog struct {
	source Source
	tokens cache.Cache[TokensKey, []model.Token]
	pools  cache.Cache[PoolsKey, []model.PoolDescriptor]
	logger *zap.Logger
}

// New wraps source with in-memory caches.
func New(source Source, logger *zap.Logger) *Catalog {
	return NewWithCaches(
		source,
		cache.NewMemory[TokensKey, []model.Token]("token_catalog", time.Minute),
		cache.NewMemory[PoolsKey, []model.PoolDescriptor]("pool_catalog", time.Minute),
		logger,
	)
}

// NewWithCaches wraps source with the given caches.
func NewWithCaches(source Source, tokens cache.Cache[TokensKey, []model.Token], pools cache.Cache[PoolsKey, []model.PoolDescriptor], logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{source: source, tokens: tokens, pools: pools, logger: logger}
}

// Tokens returns the token catalog of chainID.
func (c *Catalog) Tokens(ctx context.Context, chainID int64) ([]model.Token, error) {
	key := TokensKey{ChainID: chainID}
	if tokens, ok := c.tokens.Get(ctx, key); ok {
		return tokens, nil
	}
	tokens, err := c.source.LoadTokens(ctx, chainID)
	if err != nil {
		return nil, fmt.Errorf("load tokens for chain %d: %w", chainID, err)
	}
	c.tokens.Set(ctx, key, tokens)
	c.logger.Debug("token catalog loaded", zap.Int64("chain_id", chainID), zap.Int("tokens", len(tokens)))
	return tokens, nil
}

// Pools returns the pool catalog of chainID.
func (c *Catalog) Pools(ctx context.Context, chainID int64) ([]model.PoolDescriptor, error) {
	key := PoolsKey{ChainID: chainID}
	if pools, ok := c.pools.Get(ctx, key); ok {
		return pools, nil
	}
	pools, err := c.source.LoadPools(ctx, chainID)
	if err != nil {
		return nil, fmt.Errorf("load pools for chain %d: %w", chainID, err)
	}
	c.pools.Set(ctx, key, pools)
	c.logger.Debug("pool catalog loaded", zap.Int64("chain_id", chainID), zap.Int("pools", len(pools)))
	return pools, nil
}
