package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ruteri/ccip-read-gateway/bindings/offchainresolver"
	"github.com/ruteri/ccip-read-gateway/bindings/resolverprofile"
	"github.com/ruteri/ccip-read-gateway/dnsname"
	"github.com/ruteri/ccip-read-gateway/interfaces"
	"github.com/ruteri/ccip-read-gateway/metrics"
)

// Gateway drives a CCIP-Read request from validated calldata to a signed response.
type Gateway struct {
	reader interfaces.AuthoritativeReader
	signer interfaces.ResponseSigner
	log    *slog.Logger
}

// New creates a Gateway resolving through reader and signing with signer.
func New(reader interfaces.AuthoritativeReader, signer interfaces.ResponseSigner, log *slog.Logger) *Gateway {
	return &Gateway{
		reader: reader,
		signer: signer,
		log:    log,
	}
}

// SignerAddress returns the address responses are signed by.
func (g *Gateway) SignerAddress() common.Address {
	return g.signer.Address()
}

// Handle validates the raw route parameters and resolves the request.
func (g *Gateway) Handle(ctx context.Context, sender, data string) ([]byte, error) {
	req, err := ParseRequest(sender, data)
	if err != nil {
		g.finish(g.log, StateReceived, err)
		return nil, err
	}
	return g.Resolve(ctx, req)
}

// Resolve runs a validated request through the pipeline and returns the
// ABI-encoded (bytes result, uint64 expires, bytes signature) response.
//
// Errors wrap ErrMalformedEncoding when the calldata, name or resolver call
// cannot be decoded, ErrUpstreamCall when the authoritative chain call fails,
// or the signer's error.
func (g *Gateway) Resolve(ctx context.Context, req *interfaces.CCIPReadRequest) ([]byte, error) {
	log := g.log.With("sender", req.Sender.Hex())
	state := StateValidated
	log.Debug("Request validated", "state", state, "dataLength", len(req.Data))

	encodedName, resolverCall, err := offchainresolver.UnpackResolve(req.Data)
	if err != nil {
		err = fmt.Errorf("%w: %v", interfaces.ErrMalformedEncoding, err)
		g.finish(log, state, err)
		return nil, err
	}

	name, err := dnsname.Decode(encodedName)
	if err != nil {
		g.finish(log, state, err)
		return nil, err
	}

	call, err := resolverprofile.Describe(resolverCall)
	if err != nil {
		g.finish(log, state, err)
		return nil, err
	}

	state = StateNameDecoded
	log.Info("Resolving name",
		"state", state,
		"name", name,
		"namehash", dnsname.NameHash(name).Hex(),
		"call", call,
	)
	if !call.Known() {
		log.Warn("Forwarding unrecognised resolver call", "selector", call.Selector)
	}

	result, err := g.reader.Resolve(ctx, encodedName, resolverCall)
	if err != nil {
		g.finish(log, state, err)
		return nil, err
	}

	state = StateUpstreamFetched
	log.Debug("Fetched authoritative result", "state", state, "result", hexutil.Encode(result))

	response, err := g.signer.Sign(req.Sender, req.Data, result)
	if err != nil {
		g.finish(log, state, err)
		return nil, err
	}

	state = StateSigned
	log.Debug("Signed response", "state", state, "signer", g.signer.Address().Hex())

	g.finish(log, StateResponded, nil)
	return response, nil
}

// finish records the final state of a request. For failed requests, failedAt
// is the last state reached before the error.
func (g *Gateway) finish(log *slog.Logger, failedAt State, err error) {
	if err == nil {
		metrics.RecordResolution(StateResponded.String(), Outcome(nil))
		return
	}

	outcome := Outcome(err)
	metrics.RecordResolution(failedAt.String(), outcome)

	if errors.Is(err, interfaces.ErrInvalidRequest) || errors.Is(err, interfaces.ErrMalformedEncoding) {
		log.Info("Rejected request", "state", StateErrored, "after", failedAt, "outcome", outcome, "err", err)
		return
	}
	log.Error("Resolution failed", "state", StateErrored, "after", failedAt, "outcome", outcome, "err", err)
}
