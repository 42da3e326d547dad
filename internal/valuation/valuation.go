package valuation

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"historyScope/internal/model"
)

const usdPlaces = 2

// PriceBook looks up current cached token prices by symbol.
type PriceBook struct {
	bySymbol     map[string]decimal.Decimal
	nativeSymbol string
	nativePrice  decimal.NullDecimal
}

// NewPriceBook indexes a token catalog. Native legs are priced with the
// wrapped-native entry.
func NewPriceBook(tokens []model.Token, nativeSymbol string, wrappedNative common.Address) PriceBook {
	book := PriceBook{
		bySymbol:     make(map[string]decimal.Decimal, len(tokens)),
		nativeSymbol: strings.ToUpper(nativeSymbol),
	}
	for _, token := range tokens {
		if token.Price <= 0 || token.Symbol == "" {
			continue
		}
		price := decimal.NewFromFloat(token.Price)
		key := strings.ToUpper(token.Symbol)
		if _, ok := book.bySymbol[key]; !ok {
			book.bySymbol[key] = price
		}
		if common.IsHexAddress(token.Address) && common.HexToAddress(token.Address) == wrappedNative {
			book.nativePrice = decimal.NewNullDecimal(price)
		}
	}
	return book
}

// Price returns the unit price of a leg. LP and non-fungible legs are unpriced.
func (b PriceBook) Price(leg model.DecodedSubTransfer) (decimal.Decimal, bool) {
	if leg.LP || !leg.Amount.Valid {
		return decimal.Zero, false
	}
	if leg.Native {
		if b.nativePrice.Valid {
			return b.nativePrice.Decimal, true
		}
		return decimal.Zero, false
	}
	price, ok := b.bySymbol[strings.ToUpper(leg.Symbol)]
	return price, ok
}

// Accumulator tracks USD totals of outgoing and incoming legs separately.
type Accumulator struct {
	Out       decimal.Decimal
	In        decimal.Decimal
	OutPriced bool
	InPriced  bool
}

// Valuate prices every wallet-touching leg.
func Valuate(wallet common.Address, legs []model.DecodedSubTransfer, book PriceBook) Accumulator {
	acc := Accumulator{Out: decimal.Zero, In: decimal.Zero}
	for _, leg := range legs {
		acc.Add(wallet, leg, book)
	}
	return acc
}

// Add prices one leg into the side it moves on.
func (a *Accumulator) Add(wallet common.Address, leg model.DecodedSubTransfer, book PriceBook) {
	dir := leg.Direction(wallet)
	if dir == model.DirectionNone {
		return
	}
	price, ok := book.Price(leg)
	if !ok {
		return
	}
	usd := leg.Amount.Decimal.Mul(price)
	switch dir {
	case model.DirectionOut:
		a.Out = a.Out.Add(usd)
		a.OutPriced = true
	case model.DirectionIn:
		a.In = a.In.Add(usd)
		a.InPriced = true
	}
}

// Side returns the USD total for side, if any of its legs were priced.
func (a Accumulator) Side(side model.Side) (decimal.Decimal, bool) {
	switch side {
	case model.SideOut:
		return a.Out, a.OutPriced
	case model.SideIn:
		return a.In, a.InPriced
	default:
		return decimal.Zero, false
	}
}

// Apply sets amountUsd on each record from the side it reports.
func Apply(records []model.ClassifiedActivity, acc Accumulator) []model.ClassifiedActivity {
	for i := range records {
		total, ok := acc.Side(records[i].Side)
		if !ok {
			records[i].AmountUSD = nil
			continue
		}
		usd := total.Round(usdPlaces).InexactFloat64()
		records[i].AmountUSD = &usd
	}
	return records
}
