package decode

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"historyScope/internal/metrics"
	"historyScope/internal/model"
)

// Input is everything the decoder needs for one transaction.
type Input struct {
	Wallet        common.Address
	Tx            *model.ChainTransaction
	Transfer      model.RawTransfer
	Tokens        []model.Token
	Pools         []model.PoolDescriptor
	NativeSymbol  string
	WrappedNative common.Address
}

// Result is the flat list of wallet legs in one transaction, native legs first.
type Result struct {
	Legs    []model.DecodedSubTransfer
	Unwraps []model.NativeUnwrap
	Skipped int
	Dropped int
}

// Decoder turns receipt logs into wallet legs.
type Decoder struct {
	multicall Multicaller
	meta      *TokenMetaCache
	label     string
	logger    *zap.Logger
}

func NewDecoder(mc Multicaller, chainID int64, logger *zap.Logger) *Decoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Decoder{
		multicall: mc,
		meta:      NewTokenMetaCache(),
		label:     metrics.ChainLabel(chainID),
		logger:    logger,
	}
}

// Decode never fails: logs that match no decoder are counted as skipped and
// legs whose metadata cannot be resolved are counted as dropped.
func (d *Decoder) Decode(ctx context.Context, in Input) Result {
	var result Result
	var pending []tokenTransfer

	for _, log := range in.Tx.Logs {
		if log == nil {
			continue
		}
		if transfer, ok := decodeERC721Transfer(log); ok {
			if touches(transfer, in.Wallet) {
				pending = append(pending, transfer)
			}
			continue
		}
		if transfer, ok := decodeERC20Transfer(log); ok {
			if touches(transfer, in.Wallet) {
				pending = append(pending, transfer)
			}
			continue
		}
		if w, ok := decodeWithdrawal(log, in.WrappedNative); ok {
			result.Unwraps = append(result.Unwraps, model.NativeUnwrap{Source: w.Src, Amount: w.Wad})
			continue
		}
		result.Skipped++
	}
	if result.Skipped > 0 {
		metrics.DecodeSkips.WithLabelValues(d.label, "no_match").Add(float64(result.Skipped))
	}

	metas := d.resolve(ctx, in, pending)

	result.Legs = NativeLegs(in.Wallet, in.Tx, in.Transfer, in.NativeSymbol)
	for _, transfer := range pending {
		meta, ok := metas[transfer.Contract]
		if !ok || (!transfer.nonFungible() && !meta.HasDecimals) {
			result.Dropped++
			metrics.DecodeSkips.WithLabelValues(d.label, "unresolved_token").Inc()
			d.logger.Warn("token metadata unresolved, dropping leg",
				zap.String("tx_hash", in.Tx.Hash.Hex()),
				zap.String("token", transfer.Contract.Hex()),
			)
			continue
		}

		leg := model.DecodedSubTransfer{
			From:      transfer.From,
			To:        transfer.To,
			Symbol:    meta.Symbol,
			Contract:  transfer.Contract,
			LP:        meta.LP,
			Timestamp: in.Tx.Timestamp,
		}
		if transfer.nonFungible() {
			leg.TokenID = transfer.TokenID
		} else {
			leg.Amount = decimal.NewNullDecimal(decimal.NewFromBigInt(transfer.Value, -int32(meta.Decimals)))
		}
		result.Legs = append(result.Legs, leg)
	}

	return result
}

func (d *Decoder) resolve(ctx context.Context, in Input, pending []tokenTransfer) map[common.Address]TokenMeta {
	out := make(map[common.Address]TokenMeta, len(pending))
	if len(pending) == 0 {
		return out
	}

	idx := newCatalogIndex(in.Tokens, in.Pools)
	var unresolved []common.Address
	seen := make(map[common.Address]struct{})
	for _, transfer := range pending {
		if _, ok := seen[transfer.Contract]; ok {
			continue
		}
		seen[transfer.Contract] = struct{}{}

		if meta, ok := idx.lookup(transfer.Contract); ok {
			out[transfer.Contract] = meta
			continue
		}
		if meta, ok := d.meta.Get(transfer.Contract); ok {
			out[transfer.Contract] = meta
			continue
		}
		unresolved = append(unresolved, transfer.Contract)
	}
	if len(unresolved) == 0 {
		return out
	}

	fetched, err := fetchTokenMeta(ctx, d.multicall, unresolved, nil)
	if err != nil {
		d.logger.Warn("token metadata multicall failed",
			zap.String("tx_hash", in.Tx.Hash.Hex()),
			zap.Int("tokens", len(unresolved)),
			zap.Error(err),
		)
	}
	for address, meta := range fetched {
		d.meta.Set(address, meta)
		out[address] = meta
	}
	return out
}

func touches(transfer tokenTransfer, wallet common.Address) bool {
	return transfer.From == wallet || transfer.To == wallet
}

// NativeLegs returns the wallet's native-asset legs: the transaction value
// when the wallet is sender or recipient, plus internal transfers reported
// for the hash.
func NativeLegs(wallet common.Address, tx *model.ChainTransaction, transfer model.RawTransfer, nativeSymbol string) []model.DecodedSubTransfer {
	var legs []model.DecodedSubTransfer

	if tx.HasNativeValue() {
		to := common.Address{}
		if tx.To != nil {
			to = *tx.To
		}
		if tx.From == wallet || to == wallet {
			amount := decimal.NewFromBigInt(tx.Value, -18)
			legs = append(legs, model.DecodedSubTransfer{
				From:      tx.From,
				To:        to,
				Symbol:    nativeSymbol,
				Amount:    decimal.NewNullDecimal(amount),
				Native:    true,
				Timestamp: tx.Timestamp,
			})
		}
	}

	if transfer.Hash == "" {
		return legs
	}
	for _, record := range transfer.Records() {
		if record.Category != model.CategoryInternal || !record.IsNative(nativeSymbol) || !record.HasValue() {
			continue
		}
		from := common.HexToAddress(record.From)
		to := common.HexToAddress(record.To)
		if from != wallet && to != wallet {
			continue
		}
		legs = append(legs, model.DecodedSubTransfer{
			From:      from,
			To:        to,
			Symbol:    nativeSymbol,
			Amount:    decimal.NewNullDecimal(decimal.NewFromFloat(*record.Value)),
			Native:    true,
			Timestamp: tx.Timestamp,
		})
	}
	return legs
}
