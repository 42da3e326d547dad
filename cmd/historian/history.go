package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"historyScope/internal/config"
	"historyScope/internal/history"
	"historyScope/internal/model"
	"historyScope/internal/storage"
)

func runHistory(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	rawWallet, _ := cmd.Flags().GetString("wallet")
	wallet, err := history.ParseWallet(rawWallet)
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")
	page, _ := cmd.Flags().GetInt("page")
	out, _ := cmd.Flags().GetString("out")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.service.GetHistory(ctx, model.HistoryQuery{
		Wallet: wallet.Hex(),
		Chains: cfg.Chains,
		Limit:  limit,
		Page:   page,
	})
	if err != nil {
		return err
	}

	if out != "" {
		if err := storage.NewJSONLSink(out).PutActivities(wallet, result.Transactions); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		logger.Info("history written",
			zap.String("wallet", wallet.Hex()),
			zap.Int("records", len(result.Transactions)),
			zap.String("out", out),
		)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
