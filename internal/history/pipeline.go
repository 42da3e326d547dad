package history

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"

	"historyScope/internal/classify"
	"historyScope/internal/decode"
	"historyScope/internal/metrics"
	"historyScope/internal/model"
	"historyScope/internal/registry"
	"historyScope/internal/resolver"
	"historyScope/internal/valuation"
)

// Pipeline outcome labels.
const (
	outcomeBadHash       = "bad_hash"
	outcomeResolveFailed = "resolve_failed"
	outcomeEmpty         = "empty"
	outcomeClassified    = "classified"
)

// chainRun processes one chain's transfer window sequentially.
type chainRun struct {
	wallet    common.Address
	contracts *registry.ChainContracts
	pipeline  Pipeline
	tokens    []model.Token
	pools     []model.PoolDescriptor
	label     string
	logger    *zap.Logger

	book     *valuation.PriceBook
	resolved int
	excluded int
}

// process runs resolve, filter, decode, classify and valuate for one
// transfer record. It never fails; skipped transactions yield no records.
func (r *chainRun) process(ctx context.Context, transfer model.RawTransfer) []model.ClassifiedActivity {
	raw, err := hexutil.Decode(transfer.Hash)
	if err != nil || len(raw) != common.HashLength {
		r.count(outcomeBadHash)
		r.logger.Debug("skipping transfer with malformed hash", zap.String("tx_hash", transfer.Hash))
		return nil
	}
	hash := common.BytesToHash(raw)

	tx, err := r.pipeline.Resolver.Resolve(ctx, hash)
	if err != nil {
		r.count(outcomeResolveFailed)
		r.logger.Warn("resolve failed", zap.String("tx_hash", hash.Hex()), zap.Error(err))
		return nil
	}
	r.resolved++

	tx.Timestamp = transfer.Timestamp
	if tx.Timestamp == 0 {
		ts, err := r.pipeline.Resolver.Timestamp(ctx, tx)
		if err != nil {
			r.logger.Warn("block timestamp unavailable", zap.String("tx_hash", hash.Hex()), zap.Error(err))
		}
		tx.Timestamp = ts
	}

	if excluded, reason := resolver.Excluded(tx, transfer, r.contracts); excluded {
		r.excluded++
		r.count(reason)
		r.logger.Debug("transaction excluded", zap.String("tx_hash", hash.Hex()), zap.String("reason", reason))
		return nil
	}

	decoded := r.pipeline.Decoder.Decode(ctx, decode.Input{
		Wallet:        r.wallet,
		Tx:            tx,
		Transfer:      transfer,
		Tokens:        r.tokens,
		Pools:         r.pools,
		NativeSymbol:  r.contracts.NativeSymbol,
		WrappedNative: r.contracts.WrappedNative,
	})
	legs := decoded.Legs

	in := classify.Input{
		Wallet:    r.wallet,
		Tx:        tx,
		Legs:      legs,
		Unwraps:   decoded.Unwraps,
		Pools:     r.pools,
		Contracts: r.contracts,
	}
	verdict := classify.Classify(in)
	records := classify.Render(in, verdict)
	if len(records) == 0 {
		r.count(outcomeEmpty)
		return nil
	}

	records = valuation.Apply(records, valuation.Valuate(r.wallet, legs, r.priceBook()))
	r.count(outcomeClassified)
	return records
}

func (r *chainRun) priceBook() valuation.PriceBook {
	if r.book == nil {
		book := valuation.NewPriceBook(r.tokens, r.contracts.NativeSymbol, r.contracts.WrappedNative)
		r.book = &book
	}
	return *r.book
}

func (r *chainRun) count(outcome string) {
	metrics.PipelineTransactions.WithLabelValues(r.label, outcome).Inc()
}
