package classify

import (
	"math"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"historyScope/internal/model"
	"historyScope/internal/registry"
)

// Input is everything the classifier needs for one transaction.
type Input struct {
	Wallet    common.Address
	Tx        *model.ChainTransaction
	Legs      []model.DecodedSubTransfer
	Unwraps   []model.NativeUnwrap
	Pools     []model.PoolDescriptor
	Contracts *registry.ChainContracts
}

// Branch is the classification branch taken for a transaction.
type Branch string

const (
	BranchManager  Branch = "manager"
	BranchTransfer Branch = "transfer"
)

// Classification is the classifier verdict for one transaction.
type Classification struct {
	Branch  Branch
	Role    registry.Role
	Call    *registry.DecodedCall
	Outcome Outcome
}

// Classify decides what a transaction did from the wallet's point of view.
// It performs no I/O.
func Classify(in Input) Classification {
	sent, received := partition(in.Wallet, in.Legs)

	role, pool, ok := managerRole(in)
	if !ok {
		return Classification{
			Branch:  BranchTransfer,
			Outcome: TransferOutcome{Sent: sent, Received: received},
		}
	}

	c := Classification{Branch: BranchManager, Role: role}
	if in.Tx != nil && in.Contracts != nil && in.Contracts.Functions != nil {
		if call, ok := in.Contracts.Functions.Decode(in.Tx.Input); ok {
			if role == registry.RolePositionManager && call.Name == "multicall" {
				call = unwrapMulticall(in.Contracts.Functions, call)
			}
			c.Call = &call
		}
	}

	c.Outcome = managerOutcome(in, role, pool, c.Call, sent, received)
	return c
}

func partition(wallet common.Address, legs []model.DecodedSubTransfer) (sent, received []model.DecodedSubTransfer) {
	for _, leg := range legs {
		switch leg.Direction(wallet) {
		case model.DirectionOut:
			sent = append(sent, leg)
		case model.DirectionIn:
			received = append(received, leg)
		}
	}
	return sent, received
}

// managerRole resolves the role of the transaction target. Gauges are not
// in the static manager table and are matched through pool descriptors.
func managerRole(in Input) (registry.Role, *model.PoolDescriptor, bool) {
	if in.Tx == nil || in.Tx.To == nil || in.Contracts == nil {
		return "", nil, false
	}
	to := *in.Tx.To
	if role, ok := in.Contracts.Role(to); ok {
		return role, nil, true
	}
	for i := range in.Pools {
		if in.Pools[i].Gauge == "" {
			continue
		}
		if common.HexToAddress(in.Pools[i].Gauge) == to {
			return registry.RoleGauge, &in.Pools[i], true
		}
	}
	return "", nil, false
}

// unwrapMulticall returns the first inner call that classifies as a
// position action, or the outer call when none does.
func unwrapMulticall(functions *registry.SelectorRegistry, outer registry.DecodedCall) registry.DecodedCall {
	data, ok := outer.Args["data"].([][]byte)
	if !ok {
		return outer
	}
	for _, raw := range data {
		inner, ok := functions.Decode(raw)
		if !ok {
			continue
		}
		switch inner.Name {
		case "mint", "increaseLiquidity", "decreaseLiquidity", "collect":
			return inner
		}
	}
	return outer
}

func managerOutcome(in Input, role registry.Role, gaugePool *model.PoolDescriptor, call *registry.DecodedCall, sent, received []model.DecodedSubTransfer) Outcome {
	unknown := UnknownOutcome{Role: role, Sent: sent, Received: received}
	if call == nil {
		return unknown
	}
	unknown.Function = call.Name
	args := call.Args
	name := call.Name

	switch {
	case strings.HasPrefix(name, "swap") || name == "execute":
		s := SwapOutcome{Sent: withoutLP(sent), Received: withoutLP(received)}
		if len(s.Received) == 0 {
			s.Received = unwrapLegs(in, s.Sent)
		}
		if len(s.Sent) == 0 && len(s.Received) == 0 {
			return unknown
		}
		return s

	case strings.HasPrefix(name, "addLiquidity") || name == "mint" || name == "increaseLiquidity":
		return LiquidityOutcome{
			Deposit:  true,
			Pool:     liquidityPool(in, call, in.Legs),
			Sent:     withoutLP(sent),
			Received: withoutLP(received),
			LPLegs:   onlyLP(received),
		}

	case strings.HasPrefix(name, "removeLiquidity") || name == "decreaseLiquidity":
		return LiquidityOutcome{
			Pool:     liquidityPool(in, call, in.Legs),
			Sent:     withoutLP(sent),
			Received: withoutLP(received),
			LPLegs:   onlyLP(sent),
		}

	case name == "deposit" || name == "depositAMM":
		return StakeOutcome{Pool: stakePool(in, gaugePool, sent), Legs: onlyLP(sent)}

	case name == "withdraw":
		if role == registry.RoleVotingEscrow {
			return UnlockOutcome{LockID: argBig(args, "tokenId"), Received: received}
		}
		if role == registry.RoleGauge {
			return StakeOutcome{Unstake: true, Pool: stakePool(in, gaugePool, received), Legs: onlyLP(received)}
		}
		return unknown

	case name == "claimFees" || name == "claimBribes" || name == "collect":
		return ClaimOutcome{ActionTitle: "Claim Fees", Received: received}

	case name == "claimRewards" || name == "getReward" || name == "getRewards":
		return ClaimOutcome{ActionTitle: "Claim Rewards", Received: received}

	case name == "vote":
		return VoteOutcome{LockID: argBig(args, "tokenId"), Pools: votedPools(in.Pools, args["poolVote"])}

	case name == "poke":
		return PokeOutcome{LockID: argBig(args, "tokenId")}

	case name == "reset":
		return ResetOutcome{LockID: argBig(args, "tokenId")}

	case name == "createLock" || name == "createLockFor":
		return LockOutcome{
			Kind:     LockCreate,
			Amount:   governanceAmount(in.Contracts, argBig(args, "value")),
			Duration: seconds(argBig(args, "lockDuration")),
		}

	case name == "increaseAmount":
		return LockOutcome{
			Kind:   LockIncreaseAmount,
			LockID: argBig(args, "tokenId"),
			Amount: governanceAmount(in.Contracts, argBig(args, "value")),
		}

	case name == "increaseUnlockTime":
		return LockOutcome{
			Kind:     LockExtend,
			LockID:   argBig(args, "tokenId"),
			Duration: seconds(argBig(args, "lockDuration")),
		}

	case (name == "transferFrom" || name == "safeTransferFrom") && role == registry.RoleVotingEscrow:
		recipient, _ := argAddress(args, "to")
		return LockOutcome{Kind: LockTransfer, LockID: argBig(args, "tokenId"), Recipient: recipient}

	case name == "merge":
		return LockOutcome{Kind: LockMerge, LockID: argBig(args, "from"), OtherLockID: argBig(args, "to")}

	case name == "depositManaged":
		return LockOutcome{Kind: LockDepositManaged, LockID: argBig(args, "tokenId"), OtherLockID: argBig(args, "mTokenId")}

	case name == "withdrawManaged":
		return LockOutcome{Kind: LockWithdrawManaged, LockID: argBig(args, "tokenId")}
	}

	return unknown
}

func withoutLP(legs []model.DecodedSubTransfer) []model.DecodedSubTransfer {
	var out []model.DecodedSubTransfer
	for _, leg := range legs {
		if !leg.LP {
			out = append(out, leg)
		}
	}
	return out
}

func onlyLP(legs []model.DecodedSubTransfer) []model.DecodedSubTransfer {
	var out []model.DecodedSubTransfer
	for _, leg := range legs {
		if leg.LP {
			out = append(out, leg)
		}
	}
	return out
}

// unwrapLegs turns wrapped-native withdrawals into received native legs
// when a swap pays out native value that was never traced as a transfer.
func unwrapLegs(in Input, sent []model.DecodedSubTransfer) []model.DecodedSubTransfer {
	if len(in.Unwraps) == 0 || in.Contracts == nil || in.Tx == nil || in.Tx.To == nil {
		return nil
	}
	for _, leg := range sent {
		if leg.Native {
			return nil
		}
	}
	total := new(big.Int)
	for _, u := range in.Unwraps {
		if u.Source == *in.Tx.To && u.Amount != nil {
			total.Add(total, u.Amount)
		}
	}
	if total.Sign() == 0 {
		return nil
	}
	return []model.DecodedSubTransfer{{
		From:      *in.Tx.To,
		To:        in.Wallet,
		Symbol:    in.Contracts.NativeSymbol,
		Amount:    decimal.NewNullDecimal(decimal.NewFromBigInt(total, -18)),
		Native:    true,
		Timestamp: in.Tx.Timestamp,
	}}
}

func liquidityPool(in Input, call *registry.DecodedCall, legs []model.DecodedSubTransfer) *model.PoolDescriptor {
	for _, leg := range legs {
		if !leg.LP {
			continue
		}
		if p := poolByLP(in.Pools, leg.Contract); p != nil {
			return p
		}
	}
	for _, leg := range legs {
		if leg.LP || leg.TokenID != nil {
			continue
		}
		if p := poolByLP(in.Pools, leg.From); p != nil {
			return p
		}
		if p := poolByLP(in.Pools, leg.To); p != nil {
			return p
		}
	}

	if call != nil {
		args := call.Args
		wrapped := common.Address{}
		if in.Contracts != nil {
			wrapped = in.Contracts.WrappedNative
		}
		stable, hasStable := args["stable"].(bool)

		a, okA := argAddress(args, "tokenA")
		b, okB := argAddress(args, "tokenB")
		if !okA || !okB {
			if token, ok := argAddress(args, "token"); ok {
				a, b, okA, okB = token, wrapped, true, true
			}
		}
		if okA && okB {
			want := model.PoolVolatile
			if stable {
				want = model.PoolStable
			}
			for i := range in.Pools {
				p := &in.Pools[i]
				if !p.HasTokens(a.Hex(), b.Hex()) {
					continue
				}
				if !hasStable || p.Type == want {
					return p
				}
			}
		}

		if params, ok := call.Args["params"]; ok {
			t0, ok0 := tupleAddress(params, "Token0")
			t1, ok1 := tupleAddress(params, "Token1")
			if ok0 && ok1 {
				spacing := tupleBig(params, "TickSpacing")
				for i := range in.Pools {
					p := &in.Pools[i]
					if p.Type != model.PoolConcentrated || !p.HasTokens(t0.Hex(), t1.Hex()) {
						continue
					}
					if spacing == nil || int64(p.TickSpacing) == spacing.Int64() {
						return p
					}
				}
			}
		}
	}

	var tokens []common.Address
	seen := make(map[common.Address]struct{})
	for _, leg := range legs {
		if leg.LP || leg.TokenID != nil {
			continue
		}
		addr := leg.Contract
		if leg.Native && in.Contracts != nil {
			addr = in.Contracts.WrappedNative
		}
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		tokens = append(tokens, addr)
	}
	if len(tokens) == 2 {
		for i := range in.Pools {
			if in.Pools[i].HasTokens(tokens[0].Hex(), tokens[1].Hex()) {
				return &in.Pools[i]
			}
		}
	}
	return nil
}

func stakePool(in Input, gaugePool *model.PoolDescriptor, legs []model.DecodedSubTransfer) *model.PoolDescriptor {
	if gaugePool != nil {
		return gaugePool
	}
	for _, leg := range legs {
		if leg.LP {
			if p := poolByLP(in.Pools, leg.Contract); p != nil {
				return p
			}
		}
	}
	return nil
}

func poolByLP(pools []model.PoolDescriptor, addr common.Address) *model.PoolDescriptor {
	if addr == (common.Address{}) {
		return nil
	}
	for i := range pools {
		if common.HexToAddress(pools[i].LPAddress) == addr {
			return &pools[i]
		}
	}
	return nil
}

func votedPools(pools []model.PoolDescriptor, value interface{}) []string {
	addrs, _ := value.([]common.Address)
	out := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		if p := poolByLP(pools, addr); p != nil && p.Symbol != "" {
			out = append(out, p.Symbol)
			continue
		}
		out = append(out, shortAddress(addr))
	}
	return out
}

func governanceAmount(contracts *registry.ChainContracts, raw *big.Int) decimal.NullDecimal {
	if raw == nil || contracts == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.NewFromBigInt(raw, -int32(contracts.GovernanceDecimals)))
}

// maxSeconds is the largest whole-second value a time.Duration holds.
const maxSeconds = math.MaxInt64 / int64(time.Second)

// seconds converts a call-data duration, clamping values a Duration cannot hold.
func seconds(v *big.Int) time.Duration {
	if v == nil || v.Sign() <= 0 {
		return 0
	}
	if !v.IsInt64() || v.Int64() > maxSeconds {
		return time.Duration(maxSeconds) * time.Second
	}
	return time.Duration(v.Int64()) * time.Second
}

func tupleAddress(value interface{}, field string) (common.Address, bool) {
	v, ok := tupleField(value, field)
	if !ok {
		return common.Address{}, false
	}
	return asAddress(v)
}

func tupleBig(value interface{}, field string) *big.Int {
	v, ok := tupleField(value, field)
	if !ok {
		return nil
	}
	return asBigInt(v)
}
