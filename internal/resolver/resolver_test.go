package resolver

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"

	"historyScope/internal/chain"
	"historyScope/internal/model"
	"historyScope/internal/registry"
)

type fakeRPC struct {
	tx        *chain.Transaction
	receipt   *types.Receipt
	txErr     error
	delay     time.Duration
	timestamp uint64
	order     []string
}

func (f *fakeRPC) TransactionByHash(ctx context.Context, _ common.Hash) (*chain.Transaction, error) {
	f.order = append(f.order, "tx")
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.tx, f.txErr
}

func (f *fakeRPC) TransactionReceipt(_ context.Context, _ common.Hash) (*types.Receipt, error) {
	f.order = append(f.order, "receipt")
	return f.receipt, nil
}

func (f *fakeRPC) BlockTimestamp(_ context.Context, _ uint64) (uint64, error) {
	return f.timestamp, nil
}

func TestResolveJoinsTransactionAndReceipt(t *testing.T) {
	to := common.HexToAddress("0x2222222222222222222222222222222222222222")
	logEntry := &types.Log{Address: to}
	rpc := &fakeRPC{
		tx: &chain.Transaction{
			From:  common.HexToAddress("0x1111111111111111111111111111111111111111"),
			To:    &to,
			Value: (*hexutil.Big)(big.NewInt(7)),
			Input: hexutil.Bytes{0xde, 0xad},
		},
		receipt: &types.Receipt{
			Status:      types.ReceiptStatusSuccessful,
			Logs:        []*types.Log{logEntry},
			BlockNumber: big.NewInt(99),
		},
		timestamp: 1700000000,
	}

	r := NewResolver(rpc, 8453, time.Second)
	tx, err := r.Resolve(context.Background(), common.HexToHash("0x01"))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(rpc.order) != 2 || rpc.order[0] != "tx" || rpc.order[1] != "receipt" {
		t.Fatalf("calls must be sequential tx then receipt: %v", rpc.order)
	}
	if tx.ChainID != 8453 || tx.BlockNumber != 99 || tx.Value.Int64() != 7 || len(tx.Logs) != 1 {
		t.Fatalf("transaction mismatch: %+v", tx)
	}

	ts, err := r.Timestamp(context.Background(), tx)
	if err != nil {
		t.Fatalf("timestamp: %v", err)
	}
	if ts != 1700000000000 {
		t.Fatalf("timestamp mismatch: %d", ts)
	}
}

func TestResolveTimesOut(t *testing.T) {
	rpc := &fakeRPC{delay: time.Second}
	r := NewResolver(rpc, 8453, 10*time.Millisecond)

	_, err := r.Resolve(context.Background(), common.HexToHash("0x01"))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestExcluded(t *testing.T) {
	reg, err := registry.Default()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	base, err := reg.Chain(8453)
	if err != nil {
		t.Fatalf("base: %v", err)
	}
	router, _ := base.Address(registry.RoleRouter)
	stranger := common.HexToAddress("0x3333333333333333333333333333333333333333")
	positive := 12.5

	cases := []struct {
		name     string
		tx       model.ChainTransaction
		transfer model.RawTransfer
		excluded bool
		reason   string
	}{
		{"reverted with value", model.ChainTransaction{Status: 0, Value: big.NewInt(1), To: &router}, model.RawTransfer{}, true, ReasonReverted},
		{"zero value to stranger", model.ChainTransaction{Status: 1, Value: big.NewInt(0), To: &stranger}, model.RawTransfer{}, true, ReasonNoValue},
		{"zero value to manager", model.ChainTransaction{Status: 1, Value: big.NewInt(0), To: &router}, model.RawTransfer{}, false, ""},
		{"native value", model.ChainTransaction{Status: 1, Value: big.NewInt(5), To: &stranger}, model.RawTransfer{}, false, ""},
		{"token value", model.ChainTransaction{Status: 1, Value: big.NewInt(0), To: &stranger}, model.RawTransfer{Value: &positive}, false, ""},
	}

	for _, tc := range cases {
		excluded, reason := Excluded(&tc.tx, tc.transfer, base)
		if excluded != tc.excluded || reason != tc.reason {
			t.Fatalf("%s: got (%v, %q) want (%v, %q)", tc.name, excluded, reason, tc.excluded, tc.reason)
		}
	}
}
