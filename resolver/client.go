package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ruteri/ccip-read-gateway/bindings/offchainresolver"
	"github.com/ruteri/ccip-read-gateway/interfaces"
)

// DefaultUpstreamTimeout bounds a single resolve call against the authoritative chain.
const DefaultUpstreamTimeout = 15 * time.Second

var _ interfaces.AuthoritativeReader = (*ChainReader)(nil)

// ChainReader implements interfaces.AuthoritativeReader for a resolver contract
// deployed on the authoritative chain.
type ChainReader struct {
	contract *offchainresolver.OffchainResolverCaller
	address  common.Address
	timeout  time.Duration
	log      *slog.Logger
}

// NewChainReader creates a reader for the resolver contract at address.
// The caller is typically an *ethclient.Client; a zero timeout selects DefaultUpstreamTimeout.
func NewChainReader(caller bind.ContractCaller, address common.Address, timeout time.Duration, log *slog.Logger) (*ChainReader, error) {
	contract, err := offchainresolver.NewOffchainResolverCaller(address, caller)
	if err != nil {
		return nil, err
	}

	if timeout == 0 {
		timeout = DefaultUpstreamTimeout
	}

	return &ChainReader{
		contract: contract,
		address:  address,
		timeout:  timeout,
		log:      log,
	}, nil
}

// Address returns the resolver contract address.
func (c *ChainReader) Address() common.Address {
	return c.address
}

// Resolve calls resolve(encodedName, resolverCall) on the resolver contract.
// The call is cancelled when ctx is done or the upstream timeout elapses.
// RPC failures, reverts and undecodable return data wrap ErrUpstreamCall.
func (c *ChainReader) Resolve(ctx context.Context, encodedName []byte, resolverCall []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	opts := &bind.CallOpts{Context: ctx}

	result, err := c.contract.Resolve(opts, encodedName, resolverCall)
	if err != nil {
		c.log.Warn("Authoritative resolve call failed", "err", err, "resolver", c.address.Hex())
		return nil, fmt.Errorf("%w: %v", interfaces.ErrUpstreamCall, err)
	}

	return result, nil
}
