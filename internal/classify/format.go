package classify

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"historyScope/internal/model"
)

const amountPlaces = 6

var minAmount = decimal.New(1, -amountPlaces)

// FormatAmount renders a display amount rounded to six places.
func FormatAmount(d decimal.Decimal) string {
	if d.IsZero() {
		return "0"
	}
	if d.Abs().LessThan(minAmount) {
		return "<" + minAmount.String()
	}
	return d.Round(amountPlaces).String()
}

// FormatDuration renders a lock duration in whole years when it is an
// exact multiple of 365 days and in days otherwise.
func FormatDuration(d time.Duration) string {
	const day = 24 * time.Hour
	const year = 365 * day
	switch {
	case d >= year && d%year == 0:
		return plural(int64(d/year), "year")
	case d >= day:
		return plural(int64(d/day), "day")
	case d >= time.Hour:
		return plural(int64(d/time.Hour), "hour")
	default:
		return plural(int64(d/time.Second), "second")
	}
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// joinWords joins parts as "a", "a and b" or "a, b and c".
func joinWords(parts []string) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	default:
		return strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
	}
}

func lockLabel(id *big.Int) string {
	if id == nil {
		return "lock"
	}
	return "lock #" + id.String()
}

func shortAddress(addr common.Address) string {
	hex := strings.ToLower(addr.Hex())
	return hex[:6] + "..." + hex[len(hex)-4:]
}

type assetTotal struct {
	Symbol   string
	Amount   decimal.Decimal
	TokenIDs []*big.Int
}

func (a assetTotal) text() []string {
	if len(a.TokenIDs) > 0 {
		out := make([]string, 0, len(a.TokenIDs))
		for _, id := range a.TokenIDs {
			out = append(out, fmt.Sprintf("%s #%s", a.Symbol, id))
		}
		return out
	}
	return []string{FormatAmount(a.Amount) + " " + a.Symbol}
}

// totals sums legs per symbol in first-seen order. Non-fungible legs keep
// their token IDs and contribute no amount.
func totals(legs []model.DecodedSubTransfer) []assetTotal {
	var out []assetTotal
	index := make(map[string]int)
	for _, leg := range legs {
		key := leg.Symbol
		if leg.TokenID != nil {
			key = "nft:" + leg.Symbol
		}
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, assetTotal{Symbol: leg.Symbol, Amount: decimal.Zero})
		}
		if leg.TokenID != nil {
			out[i].TokenIDs = append(out[i].TokenIDs, leg.TokenID)
			continue
		}
		out[i].Amount = out[i].Amount.Add(leg.AmountOrZero())
	}
	return out
}

func legText(legs []model.DecodedSubTransfer) string {
	var parts []string
	for _, t := range totals(legs) {
		parts = append(parts, t.text()...)
	}
	return joinWords(parts)
}

// primary returns the symbol and summed amount of the first asset.
func primary(legs []model.DecodedSubTransfer) (string, decimal.Decimal) {
	t := totals(legs)
	if len(t) == 0 {
		return "", decimal.Zero
	}
	return t[0].Symbol, t[0].Amount
}
