package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(cfg.Chains, []int64{8453, 10}) {
		t.Fatalf("unexpected chains %v", cfg.Chains)
	}
	if cfg.WindowSize != 200 || cfg.MaxPerChain != 100 || cfg.PageLimit != 20 {
		t.Fatalf("unexpected sizes %+v", cfg)
	}
	if cfg.RPCTimeout != 10*time.Second || cfg.RetryBackoff != 250*time.Millisecond || cfg.MaxRetries != 3 {
		t.Fatalf("unexpected rpc settings %+v", cfg)
	}
	if cfg.Listen != ":8080" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected listen/log level %+v", cfg)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation error without endpoints")
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("HISTORY_CHAINS", "8453")
	t.Setenv("HISTORY_CHAIN_RPC", "8453=http://rpc.local, 10=http://op.local")
	t.Setenv("HISTORY_TRANSFERS_RPC", "8453=http://alchemy.local")
	t.Setenv("HISTORY_CATALOG_DIR", "/tmp/catalog")

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(cfg.Chains, []int64{8453}) {
		t.Fatalf("unexpected chains %v", cfg.Chains)
	}
	if cfg.ChainRPC[8453] != "http://rpc.local" || cfg.ChainRPC[10] != "http://op.local" {
		t.Fatalf("unexpected chain rpc %v", cfg.ChainRPC)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoadFlagsOverrideDefaults(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.StringSlice("chains", nil, "")
	flags.String("chain-rpc", "", "")
	flags.Int("max-per-chain", 100, "")
	flags.Duration("rpc-timeout", 10*time.Second, "")
	if err := flags.Parse([]string{"--chains=10", "--chain-rpc=10=http://op.local", "--max-per-chain=5", "--rpc-timeout=3s"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load("", flags)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(cfg.Chains, []int64{10}) || cfg.ChainRPC[10] != "http://op.local" {
		t.Fatalf("unexpected chains %+v", cfg)
	}
	if cfg.MaxPerChain != 5 || cfg.RPCTimeout != 3*time.Second {
		t.Fatalf("flags not applied %+v", cfg)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.yaml")
	body := `
chains: [8453]
chain-rpc:
  "8453": http://rpc.local
transfers-rpc:
  "8453": http://alchemy.local
pg-dsn: postgres://localhost/history
page-limit: 50
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TransfersRPC[8453] != "http://alchemy.local" || cfg.PageLimit != 50 || cfg.PGDSN == "" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoadRejectsBadChainIDs(t *testing.T) {
	t.Setenv("HISTORY_CHAINS", "base")
	if _, err := Load("", nil); err == nil {
		t.Fatalf("expected invalid chain id error")
	}
}

func TestLoadImport(t *testing.T) {
	t.Setenv("HISTORY_PG_DSN", "postgres://localhost/history")
	cfg, err := LoadImport("", nil)
	if err != nil {
		t.Fatalf("load import: %v", err)
	}
	if cfg.PGDSN == "" || cfg.CatalogDir != "./catalog" || len(cfg.Chains) != 2 {
		t.Fatalf("unexpected import config %+v", cfg)
	}
}

func TestParseStringMap(t *testing.T) {
	got := parseStringMap("a=1, b = 2,broken,=x,c=")
	want := map[string]string{"a": "1", "b": "2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected map %v", got)
	}
}
