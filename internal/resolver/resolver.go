package resolver

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"historyScope/internal/chain"
	"historyScope/internal/model"
	"historyScope/internal/registry"
)

// DefaultTimeout bounds each RPC call made by the resolver.
const DefaultTimeout = 10 * time.Second

// ChainRPC is the chain collaborator used by the resolver.
type ChainRPC interface {
	TransactionByHash(ctx context.Context, hash common.Hash) (*chain.Transaction, error)
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
	BlockTimestamp(ctx context.Context, number uint64) (uint64, error)
}

// Resolver joins a transaction with its receipt.
type Resolver struct {
	rpc     ChainRPC
	chainID int64
	timeout time.Duration
}

func NewResolver(rpc ChainRPC, chainID int64, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Resolver{rpc: rpc, chainID: chainID, timeout: timeout}
}

// Resolve fetches the transaction and then its receipt.
func (r *Resolver) Resolve(ctx context.Context, hash common.Hash) (*model.ChainTransaction, error) {
	txCtx, cancel := context.WithTimeout(ctx, r.timeout)
	tx, err := r.rpc.TransactionByHash(txCtx, hash)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("get transaction %s: %w", hash.Hex(), err)
	}

	receiptCtx, cancel := context.WithTimeout(ctx, r.timeout)
	receipt, err := r.rpc.TransactionReceipt(receiptCtx, hash)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("get receipt %s: %w", hash.Hex(), err)
	}

	value := new(big.Int)
	if tx.Value != nil {
		value.Set(tx.Value.ToInt())
	}

	out := &model.ChainTransaction{
		ChainID: r.chainID,
		Hash:    hash,
		From:    tx.From,
		To:      tx.To,
		Value:   value,
		Input:   []byte(tx.Input),
		Logs:    receipt.Logs,
		Status:  receipt.Status,
	}
	if receipt.BlockNumber != nil {
		out.BlockNumber = receipt.BlockNumber.Uint64()
	} else if tx.BlockNumber != nil {
		out.BlockNumber = tx.BlockNumber.ToInt().Uint64()
	}
	return out, nil
}

// Timestamp returns the transaction's block time in epoch milliseconds.
func (r *Resolver) Timestamp(ctx context.Context, tx *model.ChainTransaction) (int64, error) {
	tsCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	ts, err := r.rpc.BlockTimestamp(tsCtx, tx.BlockNumber)
	if err != nil {
		return 0, fmt.Errorf("block timestamp %d: %w", tx.BlockNumber, err)
	}
	return int64(ts) * 1000, nil
}

// Exclusion reasons.
const (
	ReasonReverted = "reverted"
	ReasonNoValue  = "no_value"
)

// Excluded reports whether tx must be dropped before decoding. A transaction
// is dropped when it reverted, or when neither it nor its transfer record
// moved value and its destination is not an exception address.
func Excluded(tx *model.ChainTransaction, transfer model.RawTransfer, contracts *registry.ChainContracts) (bool, string) {
	if tx.Reverted() {
		return true, ReasonReverted
	}
	if tx.HasNativeValue() || transfer.HasValue() {
		return false, ""
	}
	if tx.To != nil && contracts.IsException(*tx.To) {
		return false, ""
	}
	return true, ReasonNoValue
}
