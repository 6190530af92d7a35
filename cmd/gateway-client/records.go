package main

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ruteri/ccip-read-gateway/bindings/offchainresolver"
	"github.com/ruteri/ccip-read-gateway/bindings/resolverprofile"
	"github.com/ruteri/ccip-read-gateway/dnsname"
)

// Lookup is a resolve(name, call) request for one record of a name.
type Lookup struct {
	Name         string
	Record       string
	EncodedName  []byte
	ResolverCall []byte
	Calldata     []byte
}

// NewLookup builds the calldata for record of name.
// record is one of addr, addr:<coinType>, text:<key> or contenthash.
func NewLookup(name, record string) (*Lookup, error) {
	encodedName, err := dnsname.Encode(name)
	if err != nil {
		return nil, fmt.Errorf("could not encode name: %w", err)
	}
	node := dnsname.NameHash(name)

	kind, arg, _ := strings.Cut(record, ":")

	var call []byte
	switch kind {
	case "addr":
		if arg == "" {
			call, err = resolverprofile.PackAddr(node)
			break
		}
		coinType, ok := new(big.Int).SetString(arg, 10)
		if !ok || coinType.Sign() < 0 {
			return nil, fmt.Errorf("invalid coin type %q", arg)
		}
		call, err = resolverprofile.PackAddrCoinType(node, coinType)
	case "text":
		if arg == "" {
			return nil, fmt.Errorf("text record needs a key, e.g. text:url")
		}
		call, err = resolverprofile.PackText(node, arg)
	case "contenthash":
		call, err = resolverprofile.PackContenthash(node)
	default:
		return nil, fmt.Errorf("unsupported record %q", record)
	}
	if err != nil {
		return nil, fmt.Errorf("could not encode %s call: %w", kind, err)
	}

	calldata, err := offchainresolver.PackResolve(encodedName, call)
	if err != nil {
		return nil, fmt.Errorf("could not encode resolve call: %w", err)
	}

	return &Lookup{
		Name:         name,
		Record:       record,
		EncodedName:  encodedName,
		ResolverCall: call,
		Calldata:     calldata,
	}, nil
}

// FormatResult decodes the verified result of the lookup for display.
func (l *Lookup) FormatResult(result []byte) (string, error) {
	values, err := resolverprofile.UnpackResult(l.ResolverCall, result)
	if err != nil {
		return "", err
	}
	if len(values) != 1 {
		return "", fmt.Errorf("expected a single return value, got %d", len(values))
	}

	switch v := values[0].(type) {
	case common.Address:
		return v.Hex(), nil
	case []byte:
		return hexutil.Encode(v), nil
	case string:
		return v, nil
	default:
		return fmt.Sprintf("%v", v), nil
	}
}
