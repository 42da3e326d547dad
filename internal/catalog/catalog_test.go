package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"historyScope/internal/model"
)

type countingSource struct {
	tokenCalls int
	poolCalls  int
	err        error
}

func (s *countingSource) LoadTokens(ctx context.Context, chainID int64) ([]model.Token, error) {
	s.tokenCalls++
	if s.err != nil {
		return nil, s.err
	}
	return []model.Token{{Address: "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913", Symbol: "USDC", Decimals: 6, Price: 1}}, nil
}

func (s *countingSource) LoadPools(ctx context.Context, chainID int64) ([]model.PoolDescriptor, error) {
	s.poolCalls++
	if s.err != nil {
		return nil, s.err
	}
	return []model.PoolDescriptor{{LPAddress: "0x00000000000000000000000000000000000001b0", Symbol: "vAMM-WETH/USDC"}}, nil
}

func TestCatalogCachesPerChain(t *testing.T) {
	src := &countingSource{}
	c := New(src, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		tokens, err := c.Tokens(ctx, 8453)
		if err != nil || len(tokens) != 1 {
			t.Fatalf("tokens: %v %v", tokens, err)
		}
		pools, err := c.Pools(ctx, 8453)
		if err != nil || len(pools) != 1 {
			t.Fatalf("pools: %v %v", pools, err)
		}
	}
	if _, err := c.Tokens(ctx, 10); err != nil {
		t.Fatalf("tokens chain 10: %v", err)
	}
	if src.tokenCalls != 2 || src.poolCalls != 1 {
		t.Fatalf("unexpected source calls tokens=%d pools=%d", src.tokenCalls, src.poolCalls)
	}
}

func TestCatalogDoesNotCacheErrors(t *testing.T) {
	boom := errors.New("boom")
	src := &countingSource{err: boom}
	c := New(src, nil)
	ctx := context.Background()

	if _, err := c.Tokens(ctx, 8453); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	src.err = nil
	if tokens, err := c.Tokens(ctx, 8453); err != nil || len(tokens) != 1 {
		t.Fatalf("expected recovery, got %v %v", tokens, err)
	}
}

func TestCacheKeys(t *testing.T) {
	if got := (TokensKey{ChainID: 8453}).CacheKey(); got != "catalog:tokens:8453" {
		t.Fatalf("unexpected tokens key %s", got)
	}
	if (TokensKey{}).TTL() >= (PoolsKey{}).TTL() {
		t.Fatalf("token catalog should expire before pool catalog")
	}
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	chainDir := filepath.Join(dir, "8453")
	if err := os.MkdirAll(chainDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	tokens := `[{"address":"0x4200000000000000000000000000000000000006","symbol":"WETH","decimals":18,"listed":true,"price":3000}]`
	pools := `[{"lp_address":"0x00000000000000000000000000000000000001b0","symbol":"vAMM-WETH/USDC","token0":"0x4200000000000000000000000000000000000006","token1":"0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913","decimals":18,"type":"volatile","gauge":"0x00000000000000000000000000000000000064a0"}]`
	if err := os.WriteFile(filepath.Join(chainDir, tokensFile), []byte(tokens), 0o644); err != nil {
		t.Fatalf("write tokens: %v", err)
	}
	if err := os.WriteFile(filepath.Join(chainDir, poolsFile), []byte(pools), 0o644); err != nil {
		t.Fatalf("write pools: %v", err)
	}

	src := FileSource{Dir: dir}
	ctx := context.Background()
	gotTokens, err := src.LoadTokens(ctx, 8453)
	if err != nil || len(gotTokens) != 1 || gotTokens[0].Symbol != "WETH" || gotTokens[0].Price != 3000 {
		t.Fatalf("unexpected tokens %+v %v", gotTokens, err)
	}
	gotPools, err := src.LoadPools(ctx, 8453)
	if err != nil || len(gotPools) != 1 || gotPools[0].Type != model.PoolVolatile || gotPools[0].Gauge == "" {
		t.Fatalf("unexpected pools %+v %v", gotPools, err)
	}

	missing, err := src.LoadTokens(ctx, 10)
	if err != nil || len(missing) != 0 {
		t.Fatalf("expected empty catalog for missing chain, got %+v %v", missing, err)
	}

	if err := os.WriteFile(filepath.Join(chainDir, poolsFile), []byte("{"), 0o644); err != nil {
		t.Fatalf("write bad pools: %v", err)
	}
	if _, err := src.LoadPools(ctx, 8453); err == nil {
		t.Fatalf("expected parse error")
	}
}
