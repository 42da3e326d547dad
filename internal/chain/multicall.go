package chain

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const multicall3ABIJSON = `[
  {"type":"function","name":"aggregate3","stateMutability":"payable",
   "inputs":[{"name":"calls","type":"tuple[]","components":[{"name":"target","type":"address"},{"name":"allowFailure","type":"bool"},{"name":"callData","type":"bytes"}]}],
   "outputs":[{"name":"returnData","type":"tuple[]","components":[{"name":"success","type":"bool"},{"name":"returnData","type":"bytes"}]}]}
]`

var (
	multicallABI     abi.ABI
	multicallABIOnce sync.Once
	multicallABIErr  error
)

// MulticallABI returns the parsed Multicall3 ABI.
func MulticallABI() (abi.ABI, error) {
	multicallABIOnce.Do(func() {
		multicallABI, multicallABIErr = abi.JSON(strings.NewReader(multicall3ABIJSON))
	})
	return multicallABI, multicallABIErr
}

// Call is one Multicall3 sub-call.
type Call struct {
	Target       common.Address
	AllowFailure bool
	CallData     []byte
}

// CallResult is the outcome of one Multicall3 sub-call.
type CallResult struct {
	Success    bool
	ReturnData []byte
}

// PackAggregate3 encodes calls as aggregate3 input.
func PackAggregate3(calls []Call) ([]byte, error) {
	parsed, err := MulticallABI()
	if err != nil {
		return nil, fmt.Errorf("parse multicall abi: %w", err)
	}
	data, err := parsed.Pack("aggregate3", calls)
	if err != nil {
		return nil, fmt.Errorf("pack aggregate3: %w", err)
	}
	return data, nil
}

// UnpackAggregate3 decodes aggregate3 output.
func UnpackAggregate3(data []byte) ([]CallResult, error) {
	parsed, err := MulticallABI()
	if err != nil {
		return nil, fmt.Errorf("parse multicall abi: %w", err)
	}
	var results []CallResult
	if err := parsed.UnpackIntoInterface(&results, "aggregate3", data); err != nil {
		return nil, fmt.Errorf("unpack aggregate3: %w", err)
	}
	return results, nil
}
