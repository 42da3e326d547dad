package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"historyScope/internal/catalog"
	"historyScope/internal/config"
	"historyScope/internal/registry"
	"historyScope/internal/storage/postgres"
)

func runCatalogImport(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadImport(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.PGDSN == "" {
		return fmt.Errorf("pg-dsn is required")
	}
	reg, err := registry.Default()
	if err != nil {
		return err
	}
	if err := reg.Require(cfg.Chains); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := postgres.NewStore(ctx, cfg.PGDSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	source := catalog.FileSource{Dir: cfg.CatalogDir}
	for _, id := range cfg.Chains {
		tokens, err := source.LoadTokens(ctx, id)
		if err != nil {
			return err
		}
		pools, err := source.LoadPools(ctx, id)
		if err != nil {
			return err
		}
		if err := store.UpsertTokens(ctx, id, tokens); err != nil {
			return fmt.Errorf("chain %d: %w", id, err)
		}
		if err := store.UpsertPools(ctx, id, pools); err != nil {
			return fmt.Errorf("chain %d: %w", id, err)
		}
		logger.Info("catalog imported",
			zap.Int64("chain_id", id),
			zap.Int("tokens", len(tokens)),
			zap.Int("pools", len(pools)),
		)
	}
	return nil
}
