package postgres

import (
	"context"
	"os"
	"testing"

	"historyScope/internal/model"
)

func TestStoreCatalogRoundTrip(t *testing.T) {
	dsn := os.Getenv("HISTORY_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("HISTORY_TEST_PG_DSN not set")
	}
	ctx := context.Background()
	store, err := NewStore(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer store.Close()
	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("schema: %v", err)
	}

	const chainID = 999_001
	tokens := []model.Token{{Address: "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913", Symbol: "USDC", Decimals: 6, Listed: true, Price: 1}}
	pools := []model.PoolDescriptor{{
		LPAddress: "0x00000000000000000000000000000000000001B0",
		Symbol:    "vAMM-WETH/USDC",
		Token0:    "0x4200000000000000000000000000000000000006",
		Token1:    "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
		Decimals:  18,
		Type:      model.PoolVolatile,
	}}
	if err := store.UpsertTokens(ctx, chainID, tokens); err != nil {
		t.Fatalf("upsert tokens: %v", err)
	}
	tokens[0].Price = 0.999
	if err := store.UpsertTokens(ctx, chainID, tokens); err != nil {
		t.Fatalf("re-upsert tokens: %v", err)
	}
	if err := store.UpsertPools(ctx, chainID, pools); err != nil {
		t.Fatalf("upsert pools: %v", err)
	}

	gotTokens, err := store.LoadTokens(ctx, chainID)
	if err != nil || len(gotTokens) != 1 || gotTokens[0].Price != 0.999 || gotTokens[0].Decimals != 6 {
		t.Fatalf("unexpected tokens %+v %v", gotTokens, err)
	}
	gotPools, err := store.LoadPools(ctx, chainID)
	if err != nil || len(gotPools) != 1 || gotPools[0].Type != model.PoolVolatile {
		t.Fatalf("unexpected pools %+v %v", gotPools, err)
	}
	if gotPools[0].LPAddress != "0x00000000000000000000000000000000000001b0" {
		t.Fatalf("expected lowercased lp address, got %s", gotPools[0].LPAddress)
	}
}
