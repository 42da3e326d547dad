package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
)

// ChainTransaction is a transaction joined with its receipt.
type ChainTransaction struct {
	ChainID     int64
	Hash        common.Hash
	From        common.Address
	To          *common.Address
	Value       *big.Int
	Input       []byte
	Logs        []*types.Log
	Status      uint64
	BlockNumber uint64
	Timestamp   int64
}

// Reverted reports whether the receipt status marks the transaction as failed.
func (t *ChainTransaction) Reverted() bool {
	return t.Status == types.ReceiptStatusFailed
}

// HasNativeValue reports whether the transaction moved a positive native amount.
func (t *ChainTransaction) HasNativeValue() bool {
	return t.Value != nil && t.Value.Sign() > 0
}

// Direction describes how a leg moves relative to the wallet.
type Direction int

const (
	DirectionNone Direction = iota
	DirectionOut
	DirectionIn
)

// DecodedSubTransfer is one decoded asset movement inside a transaction.
type DecodedSubTransfer struct {
	From      common.Address
	To        common.Address
	Symbol    string
	Amount    decimal.NullDecimal
	Contract  common.Address
	TokenID   *big.Int
	Native    bool
	LP        bool
	Timestamp int64
}

// Direction returns the leg direction from the wallet's point of view.
func (s DecodedSubTransfer) Direction(wallet common.Address) Direction {
	switch {
	case s.From == wallet && s.To != wallet:
		return DirectionOut
	case s.To == wallet && s.From != wallet:
		return DirectionIn
	default:
		return DirectionNone
	}
}

// AmountOrZero returns the leg amount, or zero for non-fungible legs.
func (s DecodedSubTransfer) AmountOrZero() decimal.Decimal {
	if !s.Amount.Valid {
		return decimal.Zero
	}
	return s.Amount.Decimal
}

// NativeUnwrap is a wrapped-native Withdrawal observed in a receipt.
type NativeUnwrap struct {
	Source common.Address
	Amount *big.Int
}
