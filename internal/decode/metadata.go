package decode

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"historyScope/internal/chain"
	"historyScope/internal/model"
)

// TokenMeta is resolved symbol and decimals metadata.
type TokenMeta struct {
	Symbol      string
	Decimals    uint8
	HasDecimals bool
	LP          bool
}

// Multicaller batches contract reads.
type Multicaller interface {
	Multicall(ctx context.Context, calls []chain.Call, blockNumber *big.Int) ([]chain.CallResult, error)
}

// TokenMetaCache caches metadata resolved on chain, by address.
type TokenMetaCache struct {
	mu   sync.RWMutex
	data map[common.Address]TokenMeta
}

func NewTokenMetaCache() *TokenMetaCache {
	return &TokenMetaCache{data: make(map[common.Address]TokenMeta)}
}

func (c *TokenMetaCache) Get(address common.Address) (TokenMeta, bool) {
	c.mu.RLock()
	meta, ok := c.data[address]
	c.mu.RUnlock()
	return meta, ok
}

func (c *TokenMetaCache) Set(address common.Address, meta TokenMeta) {
	c.mu.Lock()
	c.data[address] = meta
	c.mu.Unlock()
}

type catalogIndex struct {
	tokens map[common.Address]model.Token
	pools  map[common.Address]model.PoolDescriptor
}

func newCatalogIndex(tokens []model.Token, pools []model.PoolDescriptor) catalogIndex {
	idx := catalogIndex{
		tokens: make(map[common.Address]model.Token, len(tokens)),
		pools:  make(map[common.Address]model.PoolDescriptor, len(pools)),
	}
	for _, token := range tokens {
		if common.IsHexAddress(token.Address) {
			idx.tokens[common.HexToAddress(token.Address)] = token
		}
	}
	for _, pool := range pools {
		if common.IsHexAddress(pool.LPAddress) {
			idx.pools[common.HexToAddress(pool.LPAddress)] = pool
		}
	}
	return idx
}

// lookup resolves from the token catalog first, then the pool catalog.
func (idx catalogIndex) lookup(address common.Address) (TokenMeta, bool) {
	if token, ok := idx.tokens[address]; ok && token.Symbol != "" {
		return TokenMeta{Symbol: token.Symbol, Decimals: token.Decimals, HasDecimals: true}, true
	}
	if pool, ok := idx.pools[address]; ok && pool.Symbol != "" {
		return TokenMeta{Symbol: pool.Symbol, Decimals: pool.Decimals, HasDecimals: true, LP: true}, true
	}
	return TokenMeta{}, false
}

// fetchTokenMeta reads symbol and decimals for every address in one multicall.
func fetchTokenMeta(ctx context.Context, mc Multicaller, addresses []common.Address, blockNumber *big.Int) (map[common.Address]TokenMeta, error) {
	out := make(map[common.Address]TokenMeta, len(addresses))
	if len(addresses) == 0 {
		return out, nil
	}
	if mc == nil {
		return out, fmt.Errorf("multicall is not configured")
	}

	stringABI, err := erc20MetaString.get()
	if err != nil {
		return out, fmt.Errorf("parse erc20 string abi: %w", err)
	}
	bytes32ABI, err := erc20MetaBytes32.get()
	if err != nil {
		return out, fmt.Errorf("parse erc20 bytes32 abi: %w", err)
	}

	symbolData, err := stringABI.Pack("symbol")
	if err != nil {
		return out, fmt.Errorf("pack symbol: %w", err)
	}
	decimalsData, err := stringABI.Pack("decimals")
	if err != nil {
		return out, fmt.Errorf("pack decimals: %w", err)
	}

	sorted := append([]common.Address(nil), addresses...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Hex() < sorted[j].Hex() })

	calls := make([]chain.Call, 0, len(sorted)*2)
	for _, address := range sorted {
		calls = append(calls,
			chain.Call{Target: address, AllowFailure: true, CallData: symbolData},
			chain.Call{Target: address, AllowFailure: true, CallData: decimalsData},
		)
	}

	results, err := mc.Multicall(ctx, calls, blockNumber)
	if err != nil {
		return out, err
	}
	if len(results) != len(calls) {
		return out, fmt.Errorf("multicall returned %d results for %d calls", len(results), len(calls))
	}

	for i, address := range sorted {
		symbolResult := results[2*i]
		decimalsResult := results[2*i+1]
		if !symbolResult.Success || len(symbolResult.ReturnData) == 0 {
			continue
		}

		var meta TokenMeta
		if values, err := stringABI.Unpack("symbol", symbolResult.ReturnData); err == nil {
			if symbol, ok := values[0].(string); ok {
				meta.Symbol = symbol
			}
		} else if values, err := bytes32ABI.Unpack("symbol", symbolResult.ReturnData); err == nil {
			if symbol, ok := bytes32ToString(values[0]); ok {
				meta.Symbol = symbol
			}
		}
		meta.Symbol = strings.TrimSpace(meta.Symbol)
		if meta.Symbol == "" {
			continue
		}

		if decimalsResult.Success && len(decimalsResult.ReturnData) > 0 {
			if values, err := stringABI.Unpack("decimals", decimalsResult.ReturnData); err == nil {
				if decimals, ok := values[0].(uint8); ok {
					meta.Decimals = decimals
					meta.HasDecimals = true
				}
			}
		}
		out[address] = meta
	}
	return out, nil
}

func bytes32ToString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case [32]byte:
		return string(bytes.TrimRight(v[:], "\x00")), true
	case []byte:
		return string(bytes.TrimRight(v, "\x00")), true
	default:
		return "", false
	}
}
