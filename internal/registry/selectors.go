package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Selector is a 4-byte function selector.
type Selector [4]byte

func (s Selector) String() string {
	return hexutil.Encode(s[:])
}

// FunctionEntry is the ABI method a selector resolves to.
type FunctionEntry struct {
	Method   abi.Method
	Source   string
	Priority int
}

// Collision records a selector claimed by more than one ABI source.
type Collision struct {
	Selector Selector
	Winner   string
	Shadowed string
}

// DecodedCall is transaction input decoded against the registry.
type DecodedCall struct {
	Name      string
	Signature string
	Source    string
	Args      map[string]interface{}
}

// SelectorRegistry maps selectors to ABI methods.
type SelectorRegistry struct {
	entries    map[Selector]FunctionEntry
	collisions []Collision
}

// NewSelectorRegistry parses the sources in priority order.
func NewSelectorRegistry(sources []ABISource) (*SelectorRegistry, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("abi source list is empty")
	}

	r := &SelectorRegistry{entries: make(map[Selector]FunctionEntry)}
	for priority, source := range sources {
		parsed, err := abi.JSON(strings.NewReader(source.JSON))
		if err != nil {
			return nil, fmt.Errorf("parse %s abi: %w", source.Name, err)
		}

		names := make([]string, 0, len(parsed.Methods))
		for name := range parsed.Methods {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			method := parsed.Methods[name]
			var selector Selector
			copy(selector[:], method.ID)

			if existing, ok := r.entries[selector]; ok {
				r.collisions = append(r.collisions, Collision{
					Selector: selector,
					Winner:   existing.Source,
					Shadowed: source.Name,
				})
				continue
			}
			r.entries[selector] = FunctionEntry{Method: method, Source: source.Name, Priority: priority}
		}
	}

	return r, nil
}

// Len returns the number of registered selectors.
func (r *SelectorRegistry) Len() int {
	return len(r.entries)
}

// Collisions returns the shadowed registrations.
func (r *SelectorRegistry) Collisions() []Collision {
	out := make([]Collision, len(r.collisions))
	copy(out, r.collisions)
	return out
}

// Lookup returns the entry for the selector prefix of input.
func (r *SelectorRegistry) Lookup(input []byte) (FunctionEntry, bool) {
	if len(input) < 4 {
		return FunctionEntry{}, false
	}
	var selector Selector
	copy(selector[:], input[:4])
	entry, ok := r.entries[selector]
	return entry, ok
}

// Decode resolves the selector and unpacks the arguments.
func (r *SelectorRegistry) Decode(input []byte) (DecodedCall, bool) {
	entry, ok := r.Lookup(input)
	if !ok {
		return DecodedCall{}, false
	}

	args := make(map[string]interface{}, len(entry.Method.Inputs))
	if err := entry.Method.Inputs.UnpackIntoMap(args, input[4:]); err != nil {
		return DecodedCall{}, false
	}

	return DecodedCall{
		Name:      entry.Method.RawName,
		Signature: entry.Method.Sig,
		Source:    entry.Source,
		Args:      args,
	}, true
}
