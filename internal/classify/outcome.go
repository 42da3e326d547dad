package classify

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"historyScope/internal/model"
	"historyScope/internal/registry"
)

// Outcome is the tagged result of classifying one transaction. Every
// variant is handled by Render.
type Outcome interface {
	outcome()
}

// SwapOutcome is a token swap through a router or swapper.
type SwapOutcome struct {
	Sent     []model.DecodedSubTransfer
	Received []model.DecodedSubTransfer
}

// LiquidityOutcome is a pool deposit or withdrawal.
type LiquidityOutcome struct {
	Deposit  bool
	Pool     *model.PoolDescriptor
	Sent     []model.DecodedSubTransfer
	Received []model.DecodedSubTransfer
	LPLegs   []model.DecodedSubTransfer
}

// StakeOutcome is an LP stake or unstake on a gauge.
type StakeOutcome struct {
	Unstake bool
	Pool    *model.PoolDescriptor
	Legs    []model.DecodedSubTransfer
}

// UnlockOutcome is a lock withdrawal.
type UnlockOutcome struct {
	LockID   *big.Int
	Received []model.DecodedSubTransfer
}

// ClaimOutcome is a fee or reward claim.
type ClaimOutcome struct {
	ActionTitle string
	Received    []model.DecodedSubTransfer
}

// VoteOutcome is a gauge vote cast with a lock.
type VoteOutcome struct {
	LockID *big.Int
	Pools  []string
}

// LockKind enumerates lock sub-actions.
type LockKind int

const (
	LockCreate LockKind = iota
	LockIncreaseAmount
	LockExtend
	LockTransfer
	LockMerge
	LockDepositManaged
	LockWithdrawManaged
)

// LockOutcome is a lock sub-action on the voting escrow or voter.
type LockOutcome struct {
	Kind        LockKind
	LockID      *big.Int
	OtherLockID *big.Int
	Amount      decimal.NullDecimal
	Duration    time.Duration
	Recipient   common.Address
}

// PokeOutcome refreshes a lock's votes.
type PokeOutcome struct {
	LockID *big.Int
}

// ResetOutcome clears a lock's votes.
type ResetOutcome struct {
	LockID *big.Int
}

// TransferOutcome is a plain transfer, classified by direction only.
type TransferOutcome struct {
	Sent     []model.DecodedSubTransfer
	Received []model.DecodedSubTransfer
}

// UnknownOutcome is a manager interaction no rule matched.
type UnknownOutcome struct {
	Role     registry.Role
	Function string
	Sent     []model.DecodedSubTransfer
	Received []model.DecodedSubTransfer
}

func (SwapOutcome) outcome()      {}
func (LiquidityOutcome) outcome() {}
func (StakeOutcome) outcome()     {}
func (UnlockOutcome) outcome()    {}
func (ClaimOutcome) outcome()     {}
func (VoteOutcome) outcome()      {}
func (LockOutcome) outcome()      {}
func (PokeOutcome) outcome()      {}
func (ResetOutcome) outcome()     {}
func (TransferOutcome) outcome()  {}
func (UnknownOutcome) outcome()   {}
