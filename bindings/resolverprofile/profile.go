// Package resolverprofile decodes and encodes calls to the standard ENS
// resolver profiles (addr, text, contenthash, ...). The gateway forwards these
// calls verbatim and only decodes them for diagnostics.
package resolverprofile

import (
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ruteri/ccip-read-gateway/interfaces"
)

// ResolverProfileABI lists the resolver profile functions understood by Describe.
const ResolverProfileABI = `[
	{"type":"function","name":"addr","stateMutability":"view",
	 "inputs":[{"name":"node","type":"bytes32"}],
	 "outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"addr","stateMutability":"view",
	 "inputs":[{"name":"node","type":"bytes32"},{"name":"coinType","type":"uint256"}],
	 "outputs":[{"name":"","type":"bytes"}]},
	{"type":"function","name":"text","stateMutability":"view",
	 "inputs":[{"name":"node","type":"bytes32"},{"name":"key","type":"string"}],
	 "outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"contenthash","stateMutability":"view",
	 "inputs":[{"name":"node","type":"bytes32"}],
	 "outputs":[{"name":"","type":"bytes"}]},
	{"type":"function","name":"name","stateMutability":"view",
	 "inputs":[{"name":"node","type":"bytes32"}],
	 "outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"pubkey","stateMutability":"view",
	 "inputs":[{"name":"node","type":"bytes32"}],
	 "outputs":[{"name":"x","type":"bytes32"},{"name":"y","type":"bytes32"}]},
	{"type":"function","name":"ABI","stateMutability":"view",
	 "inputs":[{"name":"node","type":"bytes32"},{"name":"contentTypes","type":"uint256"}],
	 "outputs":[{"name":"","type":"uint256"},{"name":"","type":"bytes"}]},
	{"type":"function","name":"interfaceImplementer","stateMutability":"view",
	 "inputs":[{"name":"node","type":"bytes32"},{"name":"interfaceID","type":"bytes4"}],
	 "outputs":[{"name":"","type":"address"}]}
]`

var (
	parsedABI     abi.ABI
	parsedABIErr  error
	parsedABIOnce sync.Once
)

// ParsedABI returns the parsed ResolverProfileABI.
// Overloaded functions follow go-ethereum naming: addr(bytes32,uint256) is "addr0".
func ParsedABI() (*abi.ABI, error) {
	parsedABIOnce.Do(func() {
		parsedABI, parsedABIErr = abi.JSON(strings.NewReader(ResolverProfileABI))
	})
	if parsedABIErr != nil {
		return nil, parsedABIErr
	}
	return &parsedABI, nil
}

// Arg is one decoded argument of a resolver call.
type Arg struct {
	Name  string
	Value string
}

// Call is the diagnostic view of a resolver call.
type Call struct {
	Selector string
	// Method is the canonical signature, or "unknown" when the selector is not a known profile.
	Method string
	Args   []Arg
}

// Known reports whether the selector matched a resolver profile.
func (c *Call) Known() bool {
	return c.Method != "unknown"
}

// LogValue renders the call as a structured log group.
func (c *Call) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("selector", c.Selector),
		slog.String("method", c.Method),
	}
	for _, arg := range c.Args {
		attrs = append(attrs, slog.String(arg.Name, arg.Value))
	}
	return slog.GroupValue(attrs...)
}

// Describe decodes a resolver call for logging.
// Calls shorter than a selector, and known selectors whose arguments do not
// decode, fail with ErrMalformedEncoding. Unknown selectors are not an error.
func Describe(call []byte) (*Call, error) {
	if len(call) < 4 {
		return nil, fmt.Errorf("%w: resolver call of %d bytes has no selector", interfaces.ErrMalformedEncoding, len(call))
	}

	parsed, err := ParsedABI()
	if err != nil {
		return nil, err
	}

	selector := hexutil.Encode(call[:4])
	method, err := parsed.MethodById(call[:4])
	if err != nil {
		return &Call{Selector: selector, Method: "unknown"}, nil
	}

	values, err := method.Inputs.Unpack(call[4:])
	if err != nil {
		return nil, fmt.Errorf("%w: cannot decode %s arguments: %v", interfaces.ErrMalformedEncoding, method.Sig, err)
	}

	args := make([]Arg, len(values))
	for i, value := range values {
		args[i] = Arg{Name: method.Inputs[i].Name, Value: formatValue(value)}
	}

	return &Call{
		Selector: selector,
		Method:   method.Sig,
		Args:     args,
	}, nil
}

func formatValue(value interface{}) string {
	switch v := value.(type) {
	case [32]byte:
		return hexutil.Encode(v[:])
	case [4]byte:
		return hexutil.Encode(v[:])
	case []byte:
		return hexutil.Encode(v)
	case *big.Int:
		return v.String()
	case common.Address:
		return v.Hex()
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// PackAddr encodes addr(bytes32 node).
func PackAddr(node common.Hash) ([]byte, error) {
	return pack("addr", node)
}

// PackAddrCoinType encodes addr(bytes32 node, uint256 coinType).
func PackAddrCoinType(node common.Hash, coinType *big.Int) ([]byte, error) {
	return pack("addr0", node, coinType)
}

// PackText encodes text(bytes32 node, string key).
func PackText(node common.Hash, key string) ([]byte, error) {
	return pack("text", node, key)
}

// PackContenthash encodes contenthash(bytes32 node).
func PackContenthash(node common.Hash) ([]byte, error) {
	return pack("contenthash", node)
}

func pack(method string, args ...interface{}) ([]byte, error) {
	parsed, err := ParsedABI()
	if err != nil {
		return nil, err
	}
	return parsed.Pack(method, args...)
}

// UnpackResult decodes the return data of the profile call identified by
// call's selector.
func UnpackResult(call []byte, result []byte) ([]interface{}, error) {
	if len(call) < 4 {
		return nil, fmt.Errorf("%w: resolver call has no selector", interfaces.ErrMalformedEncoding)
	}

	parsed, err := ParsedABI()
	if err != nil {
		return nil, err
	}

	method, err := parsed.MethodById(call[:4])
	if err != nil {
		return nil, fmt.Errorf("unknown resolver profile %x: %w", call[:4], err)
	}

	return method.Outputs.Unpack(result)
}
