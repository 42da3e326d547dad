package model

import "strings"

// Token is a token catalog entry.
type Token struct {
	Address  string  `json:"address"`
	Symbol   string  `json:"symbol"`
	Decimals uint8   `json:"decimals"`
	Listed   bool    `json:"listed"`
	Price    float64 `json:"price"`
}

// PoolType identifies the pool curve.
type PoolType string

const (
	PoolVolatile     PoolType = "volatile"
	PoolStable       PoolType = "stable"
	PoolConcentrated PoolType = "concentrated"
)

// PoolDescriptor is a pool catalog entry.
type PoolDescriptor struct {
	LPAddress   string   `json:"lp_address"`
	Symbol      string   `json:"symbol"`
	Token0      string   `json:"token0"`
	Token1      string   `json:"token1"`
	Decimals    uint8    `json:"decimals"`
	Type        PoolType `json:"type"`
	TickSpacing int32    `json:"tick_spacing,omitempty"`
	Gauge       string   `json:"gauge,omitempty"`
}

// HasTokens reports whether the pool pairs a and b in either order.
func (p PoolDescriptor) HasTokens(a, b string) bool {
	t0 := strings.ToLower(p.Token0)
	t1 := strings.ToLower(p.Token1)
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	return (t0 == a && t1 == b) || (t0 == b && t1 == a)
}
