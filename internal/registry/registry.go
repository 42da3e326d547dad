package registry

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
)

// ErrUnsupportedChain is returned for chains without a contract table.
var ErrUnsupportedChain = errors.New("unsupported chain")

// Role is the semantic role of a known manager contract.
type Role string

const (
	RoleRouter          Role = "router"
	RoleVoter           Role = "voter"
	RoleVotingEscrow    Role = "votingEscrow"
	RoleFactory         Role = "factory"
	RoleSwapper         Role = "swapper"
	RolePositionManager Role = "positionManager"
	RoleGauge           Role = "gauge"
)

// ChainDefinition is the static description of one chain's contracts.
type ChainDefinition struct {
	ChainID            int64
	Name               string
	Network            string
	TransferCategories []string
	NativeSymbol       string
	WrappedNative      string
	GovernanceSymbol   string
	GovernanceToken    string
	GovernanceDecimals uint8
	Multicall          string
	Managers           map[string]Role
	Exceptions         []string
	ABISources         []ABISource
}

// ChainContracts is the validated lookup table for one chain.
type ChainContracts struct {
	ChainID            int64
	Name               string
	Network            string
	TransferCategories []string
	NativeSymbol       string
	WrappedNative      common.Address
	GovernanceSymbol   string
	GovernanceToken    common.Address
	GovernanceDecimals uint8
	Multicall          common.Address
	Functions          *SelectorRegistry

	managers   map[common.Address]Role
	exceptions map[common.Address]struct{}
}

// Role returns the manager role of addr.
func (c *ChainContracts) Role(addr common.Address) (Role, bool) {
	role, ok := c.managers[addr]
	return role, ok
}

// Address returns the first manager registered under role.
func (c *ChainContracts) Address(role Role) (common.Address, bool) {
	addrs := make([]common.Address, 0, 1)
	for addr, r := range c.managers {
		if r == role {
			addrs = append(addrs, addr)
		}
	}
	if len(addrs) == 0 {
		return common.Address{}, false
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i].Hex() < addrs[j].Hex() })
	return addrs[0], true
}

// IsException reports whether addr is exempt from the zero-value filter.
func (c *ChainContracts) IsException(addr common.Address) bool {
	_, ok := c.exceptions[addr]
	return ok
}

// Build validates a definition and parses its ABI set.
func Build(def ChainDefinition) (*ChainContracts, error) {
	if def.ChainID <= 0 {
		return nil, fmt.Errorf("chain id must be > 0")
	}
	if def.Network == "" {
		return nil, fmt.Errorf("chain %d: network is required", def.ChainID)
	}
	if def.NativeSymbol == "" {
		return nil, fmt.Errorf("chain %d: native symbol is required", def.ChainID)
	}
	if len(def.Managers) == 0 {
		return nil, fmt.Errorf("chain %d: manager table is empty", def.ChainID)
	}
	if len(def.Exceptions) == 0 {
		return nil, fmt.Errorf("chain %d: exception list is empty", def.ChainID)
	}
	if len(def.ABISources) == 0 {
		return nil, fmt.Errorf("chain %d: abi set is empty", def.ChainID)
	}

	wrapped, err := parseAddress(def.WrappedNative)
	if err != nil {
		return nil, fmt.Errorf("chain %d: wrapped native: %w", def.ChainID, err)
	}
	governance, err := parseAddress(def.GovernanceToken)
	if err != nil {
		return nil, fmt.Errorf("chain %d: governance token: %w", def.ChainID, err)
	}
	multicall, err := parseAddress(def.Multicall)
	if err != nil {
		return nil, fmt.Errorf("chain %d: multicall: %w", def.ChainID, err)
	}

	functions, err := NewSelectorRegistry(def.ABISources)
	if err != nil {
		return nil, fmt.Errorf("chain %d: %w", def.ChainID, err)
	}

	contracts := &ChainContracts{
		ChainID:            def.ChainID,
		Name:               def.Name,
		Network:            def.Network,
		TransferCategories: append([]string(nil), def.TransferCategories...),
		NativeSymbol:       def.NativeSymbol,
		WrappedNative:      wrapped,
		GovernanceSymbol:   def.GovernanceSymbol,
		GovernanceToken:    governance,
		GovernanceDecimals: def.GovernanceDecimals,
		Multicall:          multicall,
		Functions:          functions,
		managers:           make(map[common.Address]Role, len(def.Managers)),
		exceptions:         make(map[common.Address]struct{}, len(def.Exceptions)+len(def.Managers)),
	}

	for raw, role := range def.Managers {
		addr, err := parseAddress(raw)
		if err != nil {
			return nil, fmt.Errorf("chain %d: manager %s: %w", def.ChainID, role, err)
		}
		contracts.managers[addr] = role
		contracts.exceptions[addr] = struct{}{}
	}
	for _, raw := range def.Exceptions {
		addr, err := parseAddress(raw)
		if err != nil {
			return nil, fmt.Errorf("chain %d: exception: %w", def.ChainID, err)
		}
		contracts.exceptions[addr] = struct{}{}
	}

	return contracts, nil
}

// Registry holds the contract tables of every supported chain.
type Registry struct {
	chains map[int64]*ChainContracts
}

// New builds a registry from definitions. Duplicate chain IDs are rejected.
func New(defs ...ChainDefinition) (*Registry, error) {
	r := &Registry{chains: make(map[int64]*ChainContracts, len(defs))}
	for _, def := range defs {
		if _, ok := r.chains[def.ChainID]; ok {
			return nil, fmt.Errorf("duplicate chain definition: %d", def.ChainID)
		}
		contracts, err := Build(def)
		if err != nil {
			return nil, err
		}
		r.chains[def.ChainID] = contracts
	}
	return r, nil
}

// Default returns the registry for Base and Optimism.
func Default() (*Registry, error) {
	return New(BaseDefinition(), OptimismDefinition())
}

// Chain returns the contract table of chainID.
func (r *Registry) Chain(chainID int64) (*ChainContracts, error) {
	contracts, ok := r.chains[chainID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedChain, chainID)
	}
	return contracts, nil
}

// ChainIDs returns the supported chain IDs in ascending order.
func (r *Registry) ChainIDs() []int64 {
	ids := make([]int64, 0, len(r.chains))
	for id := range r.chains {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Require fails if any of ids has no contract table.
func (r *Registry) Require(ids []int64) error {
	for _, id := range ids {
		if _, err := r.Chain(id); err != nil {
			return err
		}
	}
	return nil
}

func parseAddress(raw string) (common.Address, error) {
	if !common.IsHexAddress(raw) {
		return common.Address{}, fmt.Errorf("invalid address: %s", raw)
	}
	return common.HexToAddress(raw), nil
}
