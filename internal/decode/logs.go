package decode

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

type tokenTransfer struct {
	Contract common.Address
	From     common.Address
	To       common.Address
	Value    *big.Int
	TokenID  *big.Int
}

func (t tokenTransfer) nonFungible() bool {
	return t.TokenID != nil
}

// decodeERC721Transfer matches Transfer(address,address,uint256) with all three arguments indexed.
func decodeERC721Transfer(log *types.Log) (tokenTransfer, bool) {
	parsed, err := erc721Events.get()
	if err != nil {
		return tokenTransfer{}, false
	}
	event := parsed.Events["Transfer"]
	if len(log.Topics) != 4 || log.Topics[0] != event.ID || len(log.Data) != 0 {
		return tokenTransfer{}, false
	}

	var indexed struct {
		From    common.Address
		To      common.Address
		TokenId *big.Int
	}
	if err := abi.ParseTopics(&indexed, indexedArguments(event.Inputs), log.Topics[1:]); err != nil {
		return tokenTransfer{}, false
	}

	return tokenTransfer{
		Contract: log.Address,
		From:     indexed.From,
		To:       indexed.To,
		TokenID:  indexed.TokenId,
	}, true
}

// decodeERC20Transfer matches Transfer(address,address,uint256) with the value in data.
func decodeERC20Transfer(log *types.Log) (tokenTransfer, bool) {
	parsed, err := erc20Events.get()
	if err != nil {
		return tokenTransfer{}, false
	}
	event := parsed.Events["Transfer"]
	if len(log.Topics) != 3 || log.Topics[0] != event.ID {
		return tokenTransfer{}, false
	}

	var indexed struct {
		From common.Address
		To   common.Address
	}
	if err := abi.ParseTopics(&indexed, indexedArguments(event.Inputs), log.Topics[1:]); err != nil {
		return tokenTransfer{}, false
	}

	values, err := event.Inputs.NonIndexed().Unpack(log.Data)
	if err != nil || len(values) != 1 {
		return tokenTransfer{}, false
	}
	value, ok := values[0].(*big.Int)
	if !ok {
		return tokenTransfer{}, false
	}

	return tokenTransfer{
		Contract: log.Address,
		From:     indexed.From,
		To:       indexed.To,
		Value:    value,
	}, true
}

// decodeWithdrawal matches the wrapped-native Withdrawal(address,uint256) event.
func decodeWithdrawal(log *types.Log, wrapped common.Address) (withdrawal, bool) {
	if wrapped == (common.Address{}) || log.Address != wrapped {
		return withdrawal{}, false
	}
	parsed, err := wrappedNativeEvents.get()
	if err != nil {
		return withdrawal{}, false
	}
	event := parsed.Events["Withdrawal"]
	if len(log.Topics) != 2 || log.Topics[0] != event.ID {
		return withdrawal{}, false
	}

	var indexed struct {
		Src common.Address
	}
	if err := abi.ParseTopics(&indexed, indexedArguments(event.Inputs), log.Topics[1:]); err != nil {
		return withdrawal{}, false
	}
	values, err := event.Inputs.NonIndexed().Unpack(log.Data)
	if err != nil || len(values) != 1 {
		return withdrawal{}, false
	}
	wad, ok := values[0].(*big.Int)
	if !ok {
		return withdrawal{}, false
	}
	return withdrawal{Src: indexed.Src, Wad: wad}, true
}

type withdrawal struct {
	Src common.Address
	Wad *big.Int
}
