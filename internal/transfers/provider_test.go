package transfers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

func TestAlchemyProviderAssetTransfers(t *testing.T) {
	var gotParams []assetTransfersParams
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage        `json:"id"`
			Method string                 `json:"method"`
			Params []assetTransfersParams `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		if req.Method != "alchemy_getAssetTransfers" {
			t.Errorf("unexpected method %s", req.Method)
		}
		gotParams = append(gotParams, req.Params...)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":` + string(req.ID) + `,"result":{"transfers":[
			{"blockNum":"0x10","hash":"0xABC","from":"0x00000000000000000000000000000000000000AA","to":"0x00000000000000000000000000000000000000BB",
			 "value":100.5,"asset":"USDC","category":"erc20","rawContract":{"address":"0x833589FCD6EDB6E08F4C7C32D4F71B54BDA02913"},
			 "metadata":{"blockTimestamp":"2024-05-01T12:00:00.000Z"}}
		]}}`))
	}))
	defer server.Close()

	client, err := rpc.DialHTTP(server.URL)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	provider := newAlchemyProvider(map[string]*rpc.Client{"base-mainnet": client}, AlchemyOptions{}, zap.NewNop())
	defer provider.Close()

	wallet := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	transfers, err := provider.AssetTransfers(context.Background(), "base-mainnet", Request{
		Address:    wallet,
		Direction:  ToWallet,
		Categories: []string{"external", "erc20"},
		MaxCount:   200,
	})
	if err != nil {
		t.Fatalf("asset transfers: %v", err)
	}

	if len(gotParams) != 1 {
		t.Fatalf("expected one params object, got %d", len(gotParams))
	}
	params := gotParams[0]
	if params.ToAddress != wallet.Hex() || params.FromAddress != "" {
		t.Fatalf("direction params mismatch: %+v", params)
	}
	if params.MaxCount != "0xc8" || !params.WithMetadata || params.Order != "desc" {
		t.Fatalf("params mismatch: %+v", params)
	}

	if len(transfers) != 1 {
		t.Fatalf("expected 1 transfer, got %d", len(transfers))
	}
	got := transfers[0]
	if got.Hash != "0xabc" || got.From != "0x00000000000000000000000000000000000000aa" {
		t.Fatalf("addresses not normalized: %+v", got)
	}
	if got.RawContract != "0x833589fcd6edb6e08f4c7c32d4f71b54bda02913" || got.BlockNumber != 16 {
		t.Fatalf("contract/block mismatch: %+v", got)
	}
	if got.Timestamp != 1714564800000 {
		t.Fatalf("timestamp mismatch: %d", got.Timestamp)
	}
	if got.Value == nil || *got.Value != 100.5 {
		t.Fatalf("value mismatch")
	}

	if _, err := provider.AssetTransfers(context.Background(), "unknown", Request{}); err == nil {
		t.Fatalf("expected error for unknown network")
	}
}
