// Package offchainresolver contains Go bindings for the ENSIP-10 wildcard
// resolve(bytes,bytes) method.
package offchainresolver

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// OffchainResolverABI is the input ABI used to generate the binding from.
const OffchainResolverABI = `[
	{"type":"function","name":"resolve","stateMutability":"view",
	 "inputs":[{"name":"name","type":"bytes"},{"name":"data","type":"bytes"}],
	 "outputs":[{"name":"","type":"bytes"}]}
]`

// ResolveSelector is the 4-byte selector of resolve(bytes,bytes), also the ENSIP-10 interface id.
var ResolveSelector = [4]byte{0x90, 0x61, 0xb9, 0x23}

var (
	parsedABI     abi.ABI
	parsedABIErr  error
	parsedABIOnce sync.Once
)

// ParsedABI returns the parsed OffchainResolverABI.
func ParsedABI() (*abi.ABI, error) {
	parsedABIOnce.Do(func() {
		parsedABI, parsedABIErr = abi.JSON(strings.NewReader(OffchainResolverABI))
	})
	if parsedABIErr != nil {
		return nil, parsedABIErr
	}
	return &parsedABI, nil
}

// OffchainResolverCaller is a read-only binding to a resolver contract.
type OffchainResolverCaller struct {
	contract *bind.BoundContract
}

// NewOffchainResolverCaller creates a new read-only instance of the resolver, bound to a specific deployed contract.
func NewOffchainResolverCaller(address common.Address, caller bind.ContractCaller) (*OffchainResolverCaller, error) {
	parsed, err := ParsedABI()
	if err != nil {
		return nil, err
	}
	return &OffchainResolverCaller{
		contract: bind.NewBoundContract(address, *parsed, caller, nil, nil),
	}, nil
}

// Resolve is a free data retrieval call binding the contract method 0x9061b923.
//
// Solidity: function resolve(bytes name, bytes data) view returns(bytes)
func (c *OffchainResolverCaller) Resolve(opts *bind.CallOpts, name []byte, data []byte) ([]byte, error) {
	var out []interface{}
	err := c.contract.Call(opts, &out, "resolve", name, data)
	if err != nil {
		return nil, err
	}

	out0 := *abi.ConvertType(out[0], new([]byte)).(*[]byte)
	return out0, nil
}

// PackResolve encodes a call to resolve(bytes name, bytes data).
func PackResolve(name []byte, data []byte) ([]byte, error) {
	parsed, err := ParsedABI()
	if err != nil {
		return nil, err
	}
	return parsed.Pack("resolve", name, data)
}

// ErrNotResolveCall is returned by UnpackResolve for calldata with another selector.
var ErrNotResolveCall = errors.New("calldata is not a resolve(bytes,bytes) call")

// UnpackResolve decodes calldata of resolve(bytes name, bytes data) into its two arguments.
func UnpackResolve(calldata []byte) (name []byte, data []byte, err error) {
	if len(calldata) < 4 {
		return nil, nil, fmt.Errorf("%w: calldata shorter than a selector", ErrNotResolveCall)
	}
	if [4]byte(calldata[:4]) != ResolveSelector {
		return nil, nil, fmt.Errorf("%w: selector %x", ErrNotResolveCall, calldata[:4])
	}

	parsed, err := ParsedABI()
	if err != nil {
		return nil, nil, err
	}

	values, err := parsed.Methods["resolve"].Inputs.Unpack(calldata[4:])
	if err != nil {
		return nil, nil, err
	}

	name = *abi.ConvertType(values[0], new([]byte)).(*[]byte)
	data = *abi.ConvertType(values[1], new([]byte)).(*[]byte)
	return name, data, nil
}
