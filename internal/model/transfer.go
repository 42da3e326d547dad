package model

import "strings"

// Transfer categories reported by the transfer-indexing provider.
const (
	CategoryExternal = "external"
	CategoryInternal = "internal"
	CategoryERC20    = "erc20"
	CategoryERC721   = "erc721"
	CategoryERC1155  = "erc1155"
)

// RawTransfer is one asset movement reported by the transfer-indexing provider.
type RawTransfer struct {
	From        string        `json:"from"`
	To          string        `json:"to"`
	Hash        string        `json:"hash"`
	Value       *float64      `json:"value,omitempty"`
	RawContract string        `json:"raw_contract,omitempty"`
	Asset       string        `json:"asset"`
	Category    string        `json:"category"`
	BlockNumber uint64        `json:"block_number"`
	Timestamp   int64         `json:"timestamp"`
	Siblings    []RawTransfer `json:"siblings,omitempty"`
}

// HasValue reports whether the provider attached a positive value to the transfer.
func (t RawTransfer) HasValue() bool {
	return t.Value != nil && *t.Value > 0
}

// IsNative reports whether the record moves the chain's native asset.
func (t RawTransfer) IsNative(nativeSymbol string) bool {
	if t.Category != CategoryExternal && t.Category != CategoryInternal {
		return false
	}
	return t.Asset == "" || strings.EqualFold(t.Asset, nativeSymbol)
}

// Records returns the transfer followed by every merged sibling.
func (t RawTransfer) Records() []RawTransfer {
	out := make([]RawTransfer, 0, 1+len(t.Siblings))
	head := t
	head.Siblings = nil
	out = append(out, head)
	out = append(out, t.Siblings...)
	return out
}
