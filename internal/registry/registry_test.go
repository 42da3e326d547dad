package registry

import (
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

func mustABI(t *testing.T, raw string) abi.ABI {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	return parsed
}

func TestSelectorCollisionFollowsPriority(t *testing.T) {
	erc20 := mustABI(t, erc20ABIJSON)
	from := common.HexToAddress("0x1111111111111111111111111111111111111111")
	to := common.HexToAddress("0x2222222222222222222222222222222222222222")
	input, err := erc20.Pack("transferFrom", from, to, big.NewInt(42))
	if err != nil {
		t.Fatalf("pack transferFrom: %v", err)
	}

	escrowFirst, err := NewSelectorRegistry(DefaultABISources())
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	call, ok := escrowFirst.Decode(input)
	if !ok {
		t.Fatalf("transferFrom not decoded")
	}
	if call.Source != "votingEscrow" || call.Name != "transferFrom" {
		t.Fatalf("unexpected winner: %+v", call)
	}
	if _, ok := call.Args["tokenId"]; !ok {
		t.Fatalf("expected escrow argument names, got %v", call.Args)
	}

	erc20First, err := NewSelectorRegistry([]ABISource{
		{Name: "erc20", JSON: erc20ABIJSON},
		{Name: "votingEscrow", JSON: votingEscrowABIJSON},
	})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	call, ok = erc20First.Decode(input)
	if !ok {
		t.Fatalf("transferFrom not decoded")
	}
	if call.Source != "erc20" {
		t.Fatalf("expected erc20 to win, got %s", call.Source)
	}
	if amount, ok := call.Args["amount"].(*big.Int); !ok || amount.Int64() != 42 {
		t.Fatalf("amount mismatch: %v", call.Args["amount"])
	}
}

func TestSelectorCollisionsAreRecorded(t *testing.T) {
	r, err := NewSelectorRegistry(DefaultABISources())
	if err != nil {
		t.Fatalf("registry: %v", err)
	}

	shadowed := make(map[string]string)
	for _, c := range r.Collisions() {
		shadowed[c.Shadowed+":"+c.Selector.String()] = c.Winner
	}

	escrow := mustABI(t, votingEscrowABIJSON)
	withdraw := Selector{}
	copy(withdraw[:], escrow.Methods["withdraw"].ID)
	if winner := shadowed["gauge:"+withdraw.String()]; winner != "votingEscrow" {
		t.Fatalf("withdraw collision winner: %q", winner)
	}

	transferFrom := Selector{}
	copy(transferFrom[:], escrow.Methods["transferFrom"].ID)
	if winner := shadowed["erc20:"+transferFrom.String()]; winner != "votingEscrow" {
		t.Fatalf("transferFrom collision winner: %q", winner)
	}
}

func TestDecodeOverloadedMethodUsesRawName(t *testing.T) {
	swapper := mustABI(t, swapperABIJSON)
	input, err := swapper.Pack("execute0", []byte{0x00}, [][]byte{{0x01}})
	if err != nil {
		t.Fatalf("pack execute: %v", err)
	}

	r, err := NewSelectorRegistry(DefaultABISources())
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	call, ok := r.Decode(input)
	if !ok {
		t.Fatalf("execute not decoded")
	}
	if call.Name != "execute" || call.Source != "swapper" {
		t.Fatalf("unexpected call: %+v", call)
	}
}

func TestDecodeRejectsShortOrUnknownInput(t *testing.T) {
	r, err := NewSelectorRegistry(DefaultABISources())
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	if _, ok := r.Decode([]byte{0x01, 0x02}); ok {
		t.Fatalf("short input decoded")
	}
	if _, ok := r.Decode([]byte{0xde, 0xad, 0xbe, 0xef}); ok {
		t.Fatalf("unknown selector decoded")
	}
}

func TestDefaultRegistry(t *testing.T) {
	r, err := Default()
	if err != nil {
		t.Fatalf("default registry: %v", err)
	}

	if ids := r.ChainIDs(); len(ids) != 2 || ids[0] != 10 || ids[1] != 8453 {
		t.Fatalf("chain ids: %v", ids)
	}

	base, err := r.Chain(8453)
	if err != nil {
		t.Fatalf("base: %v", err)
	}
	escrow, ok := base.Address(RoleVotingEscrow)
	if !ok {
		t.Fatalf("base escrow missing")
	}
	if role, ok := base.Role(escrow); !ok || role != RoleVotingEscrow {
		t.Fatalf("escrow role: %v %v", role, ok)
	}
	if !base.IsException(escrow) {
		t.Fatalf("managers must be exceptions")
	}
	if !base.IsException(common.HexToAddress("0x227f65131A261548b057215bB1D5Ab2997964C7d")) {
		t.Fatalf("explicit exception missing")
	}
	if base.IsException(common.HexToAddress("0x000000000000000000000000000000000000dEaD")) {
		t.Fatalf("unexpected exception")
	}

	if _, err := r.Chain(1); !errors.Is(err, ErrUnsupportedChain) {
		t.Fatalf("expected ErrUnsupportedChain, got %v", err)
	}
	if err := r.Require([]int64{8453, 56}); !errors.Is(err, ErrUnsupportedChain) {
		t.Fatalf("expected require failure, got %v", err)
	}
}

func TestBuildFailsFastOnMissingReferenceData(t *testing.T) {
	cases := map[string]func(*ChainDefinition){
		"managers":   func(d *ChainDefinition) { d.Managers = nil },
		"exceptions": func(d *ChainDefinition) { d.Exceptions = nil },
		"abi":        func(d *ChainDefinition) { d.ABISources = nil },
		"network":    func(d *ChainDefinition) { d.Network = "" },
		"multicall":  func(d *ChainDefinition) { d.Multicall = "not-an-address" },
		"bad abi":    func(d *ChainDefinition) { d.ABISources = []ABISource{{Name: "broken", JSON: "{"}} },
	}

	for name, mutate := range cases {
		def := BaseDefinition()
		mutate(&def)
		if _, err := Build(def); err == nil {
			t.Fatalf("%s: expected build error", name)
		}
	}

	if _, err := New(BaseDefinition(), BaseDefinition()); err == nil {
		t.Fatalf("expected duplicate chain error")
	}
}
