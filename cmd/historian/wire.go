package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"historyScope/internal/cache"
	"historyScope/internal/catalog"
	"historyScope/internal/chain"
	"historyScope/internal/config"
	"historyScope/internal/decode"
	"historyScope/internal/history"
	"historyScope/internal/model"
	"historyScope/internal/registry"
	"historyScope/internal/resolver"
	"historyScope/internal/storage/postgres"
	"historyScope/internal/transfers"
)

// app owns the long-lived connections behind a history service.
type app struct {
	service *history.Service
	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func buildApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	reg, err := registry.Default()
	if err != nil {
		return nil, fmt.Errorf("contract registry: %w", err)
	}
	if err := reg.Require(cfg.Chains); err != nil {
		return nil, err
	}

	a := &app{}
	fail := func(err error) (*app, error) {
		a.Close()
		return nil, err
	}

	var source catalog.Source
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fail(fmt.Errorf("connect postgres: %w", err))
		}
		a.closers = append(a.closers, store.Close)
		source = store
	} else {
		source = catalog.FileSource{Dir: cfg.CatalogDir}
	}

	var (
		catalogs *catalog.Catalog
		windows  cache.Cache[transfers.WindowKey, []model.RawTransfer]
		results  cache.Cache[history.ActivityKey, []model.ClassifiedActivity]
	)
	if cfg.RedisURL != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return fail(fmt.Errorf("connect redis: %w", err))
		}
		a.closers = append(a.closers, func() { _ = rdb.Close() })
		catalogs = catalog.NewWithCaches(source,
			cache.NewRedis[catalog.TokensKey, []model.Token]("token_catalog", "historian", rdb, logger),
			cache.NewRedis[catalog.PoolsKey, []model.PoolDescriptor]("pool_catalog", "historian", rdb, logger),
			logger,
		)
		windows = cache.NewRedis[transfers.WindowKey, []model.RawTransfer]("transfer_window", "historian", rdb, logger)
		results = cache.NewRedis[history.ActivityKey, []model.ClassifiedActivity]("activity", "historian", rdb, logger)
	} else {
		catalogs = catalog.New(source, logger)
		windows = cache.NewMemory[transfers.WindowKey, []model.RawTransfer]("transfer_window", time.Minute)
		results = cache.NewMemory[history.ActivityKey, []model.ClassifiedActivity]("activity", time.Minute)
	}

	endpoints := make(map[string]string, len(cfg.Chains))
	pipelines := make(map[int64]history.Pipeline, len(cfg.Chains))
	for _, id := range cfg.Chains {
		contracts, err := reg.Chain(id)
		if err != nil {
			return fail(err)
		}
		endpoints[contracts.Network] = cfg.TransfersRPC[id]

		client, err := chain.NewClient(ctx, cfg.ChainRPC[id], chain.Options{
			ChainID:      id,
			Multicall:    contracts.Multicall,
			RateLimit:    cfg.RPCRate,
			Burst:        cfg.RPCBurst,
			MaxRetries:   cfg.MaxRetries,
			RetryBackoff: cfg.RetryBackoff,
			Logger:       logger,
		})
		if err != nil {
			return fail(fmt.Errorf("connect chain %d rpc: %w", id, err))
		}
		a.closers = append(a.closers, client.Close)

		pipelines[id] = history.Pipeline{
			Resolver: resolver.NewResolver(client, id, cfg.RPCTimeout),
			Decoder:  decode.NewDecoder(client, id, logger),
		}
	}

	provider, err := transfers.NewAlchemyProvider(ctx, endpoints, transfers.AlchemyOptions{
		RateLimit:    cfg.RPCRate,
		Burst:        cfg.RPCBurst,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		Logger:       logger,
	})
	if err != nil {
		return fail(err)
	}
	a.closers = append(a.closers, provider.Close)

	fetcher := transfers.NewFetcher(provider, reg, catalogs, windows, cfg.WindowSize, logger)

	a.service, err = history.NewService(reg, fetcher, catalogs, pipelines, results, history.Options{
		MaxPerChain:  cfg.MaxPerChain,
		DefaultLimit: cfg.PageLimit,
		Chains:       cfg.Chains,
	}, logger)
	if err != nil {
		return fail(err)
	}
	return a, nil
}
