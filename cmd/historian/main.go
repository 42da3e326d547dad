package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:          "historian",
		Short:        "Wallet transaction history for Base and Optimism",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the history API",
		RunE:  runServe,
	}
	addServiceFlags(serveCmd)
	serveCmd.Flags().String("listen", ":8080", "HTTP listen address")

	root.AddCommand(serveCmd)

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Print one page of a wallet's history",
		RunE:  runHistory,
	}
	addServiceFlags(historyCmd)
	historyCmd.Flags().String("wallet", "", "wallet address")
	historyCmd.Flags().Int("limit", 0, "page size (0 uses page-limit)")
	historyCmd.Flags().Int("page", 1, "page number")
	historyCmd.Flags().String("out", "", "optional JSONL file the page is appended to")

	root.AddCommand(historyCmd)

	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage token and pool catalogs",
	}
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import catalog JSON files into Postgres",
		RunE:  runCatalogImport,
	}
	importCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	importCmd.Flags().String("catalog-dir", "./catalog", "directory holding <chainID>/tokens.json and pools.json")
	importCmd.Flags().StringSlice("chains", []string{"8453", "10"}, "chain IDs to import")
	importCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	catalogCmd.AddCommand(importCmd)

	root.AddCommand(catalogCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addServiceFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("chains", []string{"8453", "10"}, "enabled chain IDs")
	cmd.Flags().String("chain-rpc", "", "chain RPC URLs (comma-separated chainID=url)")
	cmd.Flags().String("transfers-rpc", "", "transfer indexer URLs (comma-separated chainID=url)")
	cmd.Flags().Int("window-size", 200, "transfers fetched per wallet and chain")
	cmd.Flags().Int("max-per-chain", 100, "transactions processed per wallet and chain")
	cmd.Flags().Duration("rpc-timeout", 10*time.Second, "per-transaction resolve timeout")
	cmd.Flags().Int("max-retries", 3, "maximum retry attempts")
	cmd.Flags().Duration("retry-backoff", 250*time.Millisecond, "initial retry backoff")
	cmd.Flags().Float64("rpc-rate", 25, "RPC requests per second per endpoint")
	cmd.Flags().Int("rpc-burst", 5, "RPC burst size")
	cmd.Flags().String("pg-dsn", "", "Postgres DSN for the catalog")
	cmd.Flags().String("catalog-dir", "", "catalog directory used when pg-dsn is empty")
	cmd.Flags().String("redis-url", "", "optional Redis URL for shared caches")
	cmd.Flags().Int("page-limit", 20, "default page size")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
