package decode

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"historyScope/internal/chain"
	"historyScope/internal/model"
)

var (
	wallet   = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	router   = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	usdc     = common.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913")
	lpToken  = common.HexToAddress("0x00000000000000000000000000000000000000cc")
	mystery  = common.HexToAddress("0x00000000000000000000000000000000000000dd")
	unknown  = common.HexToAddress("0x00000000000000000000000000000000000000ee")
	nftToken = common.HexToAddress("0x00000000000000000000000000000000000000ff")
	weth     = common.HexToAddress("0x4200000000000000000000000000000000000006")
)

type fakeMulticall struct {
	symbols  map[common.Address]string
	decimals map[common.Address]uint8
	batches  int
	calls    int
	err      error
}

func (f *fakeMulticall) Multicall(_ context.Context, calls []chain.Call, _ *big.Int) ([]chain.CallResult, error) {
	f.batches++
	f.calls += len(calls)
	if f.err != nil {
		return nil, f.err
	}
	stringABI, err := erc20MetaString.get()
	if err != nil {
		return nil, err
	}
	symbolSelector := string(stringABI.Methods["symbol"].ID)

	results := make([]chain.CallResult, len(calls))
	for i, call := range calls {
		if string(call.CallData[:4]) == symbolSelector {
			symbol, ok := f.symbols[call.Target]
			if !ok {
				continue
			}
			data, err := stringABI.Methods["symbol"].Outputs.Pack(symbol)
			if err != nil {
				return nil, err
			}
			results[i] = chain.CallResult{Success: true, ReturnData: data}
			continue
		}
		decimals, ok := f.decimals[call.Target]
		if !ok {
			continue
		}
		data, err := stringABI.Methods["decimals"].Outputs.Pack(decimals)
		if err != nil {
			return nil, err
		}
		results[i] = chain.CallResult{Success: true, ReturnData: data}
	}
	return results, nil
}

func erc20Log(t *testing.T, token, from, to common.Address, value *big.Int) *types.Log {
	t.Helper()
	parsed, err := erc20Events.get()
	if err != nil {
		t.Fatalf("abi: %v", err)
	}
	event := parsed.Events["Transfer"]
	data, err := event.Inputs.NonIndexed().Pack(value)
	if err != nil {
		t.Fatalf("pack transfer: %v", err)
	}
	return &types.Log{
		Address: token,
		Topics:  []common.Hash{event.ID, common.BytesToHash(from.Bytes()), common.BytesToHash(to.Bytes())},
		Data:    data,
	}
}

func erc721Log(t *testing.T, token, from, to common.Address, tokenID int64) *types.Log {
	t.Helper()
	parsed, err := erc721Events.get()
	if err != nil {
		t.Fatalf("abi: %v", err)
	}
	return &types.Log{
		Address: token,
		Topics: []common.Hash{
			parsed.Events["Transfer"].ID,
			common.BytesToHash(from.Bytes()),
			common.BytesToHash(to.Bytes()),
			common.BigToHash(big.NewInt(tokenID)),
		},
	}
}

func withdrawalLog(t *testing.T, src common.Address, wad *big.Int) *types.Log {
	t.Helper()
	parsed, err := wrappedNativeEvents.get()
	if err != nil {
		t.Fatalf("abi: %v", err)
	}
	event := parsed.Events["Withdrawal"]
	data, err := event.Inputs.NonIndexed().Pack(wad)
	if err != nil {
		t.Fatalf("pack withdrawal: %v", err)
	}
	return &types.Log{
		Address: weth,
		Topics:  []common.Hash{event.ID, common.BytesToHash(src.Bytes())},
		Data:    data,
	}
}

func baseInput(logs ...*types.Log) Input {
	return Input{
		Wallet: wallet,
		Tx: &model.ChainTransaction{
			Hash:      common.HexToHash("0x01"),
			From:      wallet,
			To:        &router,
			Value:     big.NewInt(0),
			Logs:      logs,
			Status:    1,
			Timestamp: 1700000000000,
		},
		Tokens:        []model.Token{{Address: usdc.Hex(), Symbol: "USDC", Decimals: 6}},
		Pools:         []model.PoolDescriptor{{LPAddress: lpToken.Hex(), Symbol: "vAMM-WETH/USDC", Decimals: 18}},
		NativeSymbol:  "ETH",
		WrappedNative: weth,
	}
}

func TestDecodeResolutionOrder(t *testing.T) {
	mc := &fakeMulticall{
		symbols:  map[common.Address]string{mystery: "MYST", unknown: "UNK"},
		decimals: map[common.Address]uint8{mystery: 9, unknown: 18},
	}
	d := NewDecoder(mc, 8453, zap.NewNop())

	in := baseInput(
		erc20Log(t, usdc, wallet, router, big.NewInt(100_000_000)),
		erc20Log(t, lpToken, common.Address{}, wallet, big.NewInt(2_000_000_000_000_000_000)),
		erc20Log(t, mystery, router, wallet, big.NewInt(1_500_000_000)),
		erc20Log(t, unknown, router, wallet, big.NewInt(1)),
	)
	result := d.Decode(context.Background(), in)

	if len(result.Legs) != 4 {
		t.Fatalf("expected 4 legs, got %d", len(result.Legs))
	}
	if mc.batches != 1 || mc.calls != 4 {
		t.Fatalf("expected one batch of 4 calls, got %d batches / %d calls", mc.batches, mc.calls)
	}

	got := make(map[string]model.DecodedSubTransfer)
	for _, leg := range result.Legs {
		got[leg.Symbol] = leg
	}
	if got["USDC"].AmountOrZero().String() != "100" || got["USDC"].LP {
		t.Fatalf("usdc leg mismatch: %+v", got["USDC"])
	}
	if !got["vAMM-WETH/USDC"].LP || got["vAMM-WETH/USDC"].AmountOrZero().String() != "2" {
		t.Fatalf("lp leg mismatch: %+v", got["vAMM-WETH/USDC"])
	}
	if got["MYST"].AmountOrZero().String() != "1.5" {
		t.Fatalf("multicall leg mismatch: %+v", got["MYST"])
	}

	// resolved metadata is reused without another multicall
	d.Decode(context.Background(), baseInput(erc20Log(t, mystery, router, wallet, big.NewInt(1))))
	if mc.batches != 1 {
		t.Fatalf("expected cached metadata, got %d batches", mc.batches)
	}
}

func TestDecodeDropsUnresolvableLeg(t *testing.T) {
	mc := &fakeMulticall{}
	d := NewDecoder(mc, 8453, zap.NewNop())

	result := d.Decode(context.Background(), baseInput(erc20Log(t, mystery, router, wallet, big.NewInt(5))))
	if len(result.Legs) != 0 {
		t.Fatalf("expected no legs, got %+v", result.Legs)
	}
	if result.Dropped != 1 {
		t.Fatalf("expected one dropped leg, got %d", result.Dropped)
	}

	failing := NewDecoder(&fakeMulticall{err: errors.New("rpc down")}, 8453, zap.NewNop())
	result = failing.Decode(context.Background(), baseInput(
		erc20Log(t, usdc, wallet, router, big.NewInt(1_000_000)),
		erc20Log(t, mystery, router, wallet, big.NewInt(5)),
	))
	if len(result.Legs) != 1 || result.Legs[0].Symbol != "USDC" || result.Dropped != 1 {
		t.Fatalf("expected only catalog leg to survive: %+v", result)
	}
}

func TestDecodeERC721AndSkips(t *testing.T) {
	mc := &fakeMulticall{symbols: map[common.Address]string{nftToken: "veNFT"}}
	d := NewDecoder(mc, 8453, zap.NewNop())

	stranger := common.HexToAddress("0x0000000000000000000000000000000000000011")
	in := baseInput(
		erc721Log(t, nftToken, common.Address{}, wallet, 1234),
		erc20Log(t, usdc, stranger, router, big.NewInt(1)),
		&types.Log{Address: router, Topics: []common.Hash{common.HexToHash("0x1234")}},
	)
	result := d.Decode(context.Background(), in)

	if len(result.Legs) != 1 {
		t.Fatalf("expected one nft leg, got %+v", result.Legs)
	}
	leg := result.Legs[0]
	if leg.Amount.Valid || leg.TokenID == nil || leg.TokenID.Int64() != 1234 || leg.Symbol != "veNFT" {
		t.Fatalf("nft leg mismatch: %+v", leg)
	}
	if result.Skipped != 1 {
		t.Fatalf("expected one skipped log, got %d", result.Skipped)
	}
}

func TestDecodeNativeLegsAndUnwraps(t *testing.T) {
	d := NewDecoder(&fakeMulticall{}, 8453, zap.NewNop())

	internal := 0.05
	in := baseInput(withdrawalLog(t, router, big.NewInt(50_000_000_000_000_000)))
	in.Tx.Value = big.NewInt(250_000_000_000_000_000)
	in.Transfer = model.RawTransfer{
		Hash:     "0x01",
		Category: model.CategoryExternal,
		Siblings: []model.RawTransfer{{
			Hash:     "0x01",
			From:     router.Hex(),
			To:       wallet.Hex(),
			Category: model.CategoryInternal,
			Asset:    "ETH",
			Value:    &internal,
		}},
	}

	result := d.Decode(context.Background(), in)
	if len(result.Legs) != 2 {
		t.Fatalf("expected 2 native legs, got %+v", result.Legs)
	}
	if result.Legs[0].Direction(wallet) != model.DirectionOut || result.Legs[0].AmountOrZero().String() != "0.25" {
		t.Fatalf("outgoing native leg mismatch: %+v", result.Legs[0])
	}
	if result.Legs[1].Direction(wallet) != model.DirectionIn || result.Legs[1].AmountOrZero().String() != "0.05" {
		t.Fatalf("incoming native leg mismatch: %+v", result.Legs[1])
	}
	if len(result.Unwraps) != 1 || result.Unwraps[0].Source != router {
		t.Fatalf("unwrap mismatch: %+v", result.Unwraps)
	}
}
