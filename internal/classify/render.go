package classify

import (
	"fmt"

	"github.com/shopspring/decimal"

	"historyScope/internal/model"
)

// Render turns a classification into zero or more history records.
func Render(in Input, c Classification) []model.ClassifiedActivity {
	base := model.ClassifiedActivity{}
	if in.Tx != nil {
		base.TxHash = in.Tx.Hash.Hex()
		base.Timestamp = in.Tx.Timestamp
		base.ChainID = in.Tx.ChainID
	}
	governance := ""
	if in.Contracts != nil {
		governance = in.Contracts.GovernanceSymbol
	}

	record := func(t model.TransactionType, title, action, symbol string, amount decimal.Decimal, side model.Side) model.ClassifiedActivity {
		r := base
		r.Type = t
		r.Title = title
		r.ActionTitle = action
		r.Symbol = symbol
		r.Amount = amount.InexactFloat64()
		r.Side = side
		return r
	}
	one := func(r model.ClassifiedActivity) []model.ClassifiedActivity {
		return []model.ClassifiedActivity{r}
	}

	switch o := c.Outcome.(type) {
	case SwapOutcome:
		switch {
		case len(o.Sent) == 0:
			symbol, amount := primary(o.Received)
			return one(record(model.TypeSwap, "Swap for "+legText(o.Received), "", symbol, amount, model.SideIn))
		case len(o.Received) == 0:
			symbol, amount := primary(o.Sent)
			return one(record(model.TypeSwap, "Swap "+legText(o.Sent), "", symbol, amount, model.SideOut))
		default:
			symbol, amount := primary(o.Sent)
			title := fmt.Sprintf("Swap %s for %s", legText(o.Sent), legText(o.Received))
			return one(record(model.TypeSwap, title, "", symbol, amount, model.SideOut))
		}

	case LiquidityOutcome:
		return one(renderLiquidity(o, record))

	case StakeOutcome:
		return one(renderStake(o, record))

	case UnlockOutcome:
		title := "Withdraw " + lockLabel(o.LockID)
		symbol, amount := governance, decimal.Zero
		if len(o.Received) > 0 {
			title = fmt.Sprintf("Withdraw %s from %s", legText(o.Received), lockLabel(o.LockID))
			symbol, amount = primary(o.Received)
		}
		return one(record(model.TypeUnlock, title, "Withdraw Lock", symbol, amount, model.SideIn))

	case ClaimOutcome:
		if len(o.Received) == 0 {
			return one(record(model.TypeReceive, o.ActionTitle, o.ActionTitle, "", decimal.Zero, model.SideNone))
		}
		symbol, amount := primary(o.Received)
		return one(record(model.TypeReceive, "Claim "+legText(o.Received), o.ActionTitle, symbol, amount, model.SideIn))

	case VoteOutcome:
		title := "Vote with " + lockLabel(o.LockID)
		if len(o.Pools) > 0 {
			title = fmt.Sprintf("Vote for %s with %s", joinWords(o.Pools), lockLabel(o.LockID))
		}
		return one(record(model.TypeVote, title, "Vote", governance, decimal.Zero, model.SideNone))

	case LockOutcome:
		return one(renderLock(o, governance, record))

	case PokeOutcome:
		return one(record(model.TypePoke, "Poke votes for "+lockLabel(o.LockID), "Poke Lock", governance, decimal.Zero, model.SideNone))

	case ResetOutcome:
		return one(record(model.TypeReset, "Reset votes for "+lockLabel(o.LockID), "Reset Votes", governance, decimal.Zero, model.SideNone))

	case TransferOutcome:
		var out []model.ClassifiedActivity
		if len(o.Sent) > 0 {
			symbol, amount := primary(o.Sent)
			out = append(out, record(model.TypeSent, "Sent "+legText(o.Sent), "", symbol, amount, model.SideOut))
		}
		if len(o.Received) > 0 {
			symbol, amount := primary(o.Received)
			out = append(out, record(model.TypeReceive, "Received "+legText(o.Received), "", symbol, amount, model.SideIn))
		}
		return out

	case UnknownOutcome:
		return one(renderUnknown(o, record))
	}
	return nil
}

type recordFunc func(t model.TransactionType, title, action, symbol string, amount decimal.Decimal, side model.Side) model.ClassifiedActivity

func renderLiquidity(o LiquidityOutcome, record recordFunc) model.ClassifiedActivity {
	poolName := "liquidity pool"
	if o.Pool != nil && o.Pool.Symbol != "" {
		poolName = o.Pool.Symbol
	}

	if o.Deposit {
		title := "Add liquidity to " + poolName
		symbol, amount := primary(o.Sent)
		if len(o.Sent) > 0 {
			title = fmt.Sprintf("Deposit %s to %s", legText(o.Sent), poolName)
		}
		if len(o.LPLegs) > 0 {
			symbol, amount = primary(o.LPLegs)
			if o.Pool != nil && o.Pool.Symbol != "" {
				symbol = o.Pool.Symbol
			}
		}
		return record(model.TypeSent, title, "Add Liquidity", symbol, amount, model.SideOut)
	}

	title := "Remove liquidity from " + poolName
	symbol, amount := primary(o.Received)
	if len(o.Received) > 0 {
		title = fmt.Sprintf("Withdraw %s from %s", legText(o.Received), poolName)
	}
	return record(model.TypeReceive, title, "Remove Liquidity", symbol, amount, model.SideIn)
}

func renderStake(o StakeOutcome, record recordFunc) model.ClassifiedActivity {
	verb, kind, side := "Stake", model.TypeStake, model.SideOut
	if o.Unstake {
		verb, kind, side = "Unstake", model.TypeUnstake, model.SideIn
	}

	symbol, amount := primary(o.Legs)
	if o.Pool != nil && o.Pool.Symbol != "" {
		symbol = o.Pool.Symbol
	}
	title := verb + " LP"
	switch {
	case len(o.Legs) > 0:
		title = fmt.Sprintf("%s %s %s", verb, FormatAmount(amount), symbol)
	case symbol != "":
		title = fmt.Sprintf("%s %s", verb, symbol)
	}
	return record(kind, title, verb+" LP", symbol, amount, side)
}

func renderLock(o LockOutcome, governance string, record recordFunc) model.ClassifiedActivity {
	amount := decimal.Zero
	if o.Amount.Valid {
		amount = o.Amount.Decimal
	}
	amountText := FormatAmount(amount) + " " + governance

	switch o.Kind {
	case LockCreate:
		title := "Lock " + amountText
		if o.Duration > 0 {
			title += " for " + FormatDuration(o.Duration)
		}
		return record(model.TypeLock, title, "Create Lock", governance, amount, model.SideOut)
	case LockIncreaseAmount:
		title := fmt.Sprintf("Add %s to %s", amountText, lockLabel(o.LockID))
		return record(model.TypeLock, title, "Increase Lock Amount", governance, amount, model.SideOut)
	case LockExtend:
		title := "Extend " + lockLabel(o.LockID)
		if o.Duration > 0 {
			title += " to " + FormatDuration(o.Duration)
		}
		return record(model.TypeLock, title, "Extend Lock", governance, decimal.Zero, model.SideNone)
	case LockTransfer:
		title := fmt.Sprintf("Transfer %s to %s", lockLabel(o.LockID), shortAddress(o.Recipient))
		return record(model.TypeLock, title, "Transfer Lock", governance, decimal.Zero, model.SideNone)
	case LockMerge:
		title := fmt.Sprintf("Merge %s into %s", lockLabel(o.LockID), lockLabel(o.OtherLockID))
		return record(model.TypeLock, title, "Merge Locks", governance, decimal.Zero, model.SideNone)
	case LockDepositManaged:
		title := fmt.Sprintf("Deposit %s into managed %s", lockLabel(o.LockID), lockLabel(o.OtherLockID))
		return record(model.TypeLock, title, "Deposit Managed", governance, decimal.Zero, model.SideNone)
	case LockWithdrawManaged:
		title := fmt.Sprintf("Withdraw %s from managed lock", lockLabel(o.LockID))
		return record(model.TypeLock, title, "Withdraw Managed", governance, decimal.Zero, model.SideNone)
	default:
		return record(model.TypeLock, "Update "+lockLabel(o.LockID), "", governance, decimal.Zero, model.SideNone)
	}
}

// renderUnknown derives a title from the legs when no rule matched:
// outgoing assets first, then incoming, then the bare interaction.
func renderUnknown(o UnknownOutcome, record recordFunc) model.ClassifiedActivity {
	if len(o.Sent) > 0 {
		title := "Sent " + legText(o.Sent)
		if len(o.Received) > 0 {
			title += " and received " + legText(o.Received)
		}
		symbol, amount := primary(o.Sent)
		return record(model.TypeSent, title, "", symbol, amount, model.SideOut)
	}
	if len(o.Received) > 0 {
		symbol, amount := primary(o.Received)
		return record(model.TypeReceive, "Received "+legText(o.Received), "", symbol, amount, model.SideIn)
	}
	title := "Interaction with " + string(o.Role)
	if o.Function != "" {
		title = fmt.Sprintf("Call %s on %s", o.Function, o.Role)
	}
	return record(model.TypeUnknown, title, o.Function, "", decimal.Zero, model.SideNone)
}
