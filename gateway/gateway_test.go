package gateway

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ruteri/ccip-read-gateway/bindings/offchainresolver"
	"github.com/ruteri/ccip-read-gateway/bindings/resolverprofile"
	"github.com/ruteri/ccip-read-gateway/dnsname"
	"github.com/ruteri/ccip-read-gateway/interfaces"
	"github.com/ruteri/ccip-read-gateway/keysource"
	"github.com/ruteri/ccip-read-gateway/resolver"
	"github.com/ruteri/ccip-read-gateway/signer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testKeyHex = "0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

var (
	testSender  = common.HexToAddress("0x1111111111111111111111111111111111111111")
	testAddress = common.HexToAddress("0x5555555555555555555555555555555555555555")
)

type failingSigner struct{}

func (failingSigner) Sign(common.Address, []byte, []byte) ([]byte, error) {
	return nil, errors.New("hsm unavailable")
}

func (failingSigner) Address() common.Address { return common.Address{} }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestGateway(t *testing.T, reader interfaces.AuthoritativeReader) (*Gateway, *signer.Signer) {
	t.Helper()
	key, err := keysource.ParseHexKey(testKeyHex)
	require.NoError(t, err)
	s, err := signer.New(key, signer.DefaultTTL)
	require.NoError(t, err)
	return New(reader, s, testLogger()), s
}

// addrRequest builds resolve(dnsEncode(name), addr(namehash(name))) calldata.
func addrRequest(t *testing.T, name string) (calldata, encodedName, resolverCall []byte) {
	t.Helper()
	encodedName, err := dnsname.Encode(name)
	require.NoError(t, err)
	resolverCall, err = resolverprofile.PackAddr(dnsname.NameHash(name))
	require.NoError(t, err)
	calldata, err = offchainresolver.PackResolve(encodedName, resolverCall)
	require.NoError(t, err)
	return calldata, encodedName, resolverCall
}

func TestParseRequest(t *testing.T) {
	data := "0x9061b923"

	testCases := []struct {
		name    string
		sender  string
		data    string
		field   string
		want    []byte
		wantErr bool
	}{
		{name: "prefixed", sender: testSender.Hex(), data: data, want: []byte{0x90, 0x61, 0xb9, 0x23}},
		{name: "unprefixed data", sender: testSender.Hex(), data: "9061b923", want: []byte{0x90, 0x61, 0xb9, 0x23}},
		{name: "json suffix", sender: testSender.Hex(), data: data + ".json", want: []byte{0x90, 0x61, 0xb9, 0x23}},
		{name: "lowercase sender", sender: "0x1111111111111111111111111111111111111111", data: data, want: []byte{0x90, 0x61, 0xb9, 0x23}},
		{name: "not an address", sender: "not-an-address", data: data, field: "sender", wantErr: true},
		{name: "short address", sender: "0x1111", data: data, field: "sender", wantErr: true},
		{name: "not hex", sender: testSender.Hex(), data: "not-hex", field: "data", wantErr: true},
		{name: "odd length", sender: testSender.Hex(), data: "0xabc", field: "data", wantErr: true},
		{name: "empty", sender: testSender.Hex(), data: "0x", field: "data", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := ParseRequest(tc.sender, tc.data)
			if tc.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, interfaces.ErrInvalidRequest)

				var validationErr *interfaces.ValidationError
				require.True(t, errors.As(err, &validationErr))
				assert.Equal(t, tc.field, validationErr.Field)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, testSender, req.Sender)
			assert.Equal(t, tc.want, req.Data)
		})
	}
}

func TestHandle_InvalidInputNeverReachesReader(t *testing.T) {
	reader := new(resolver.MockReader)
	gw, _ := newTestGateway(t, reader)

	_, err := gw.Handle(context.Background(), "not-an-address", "0x9061b923")
	assert.ErrorIs(t, err, interfaces.ErrInvalidRequest)

	_, err = gw.Handle(context.Background(), testSender.Hex(), "not-hex")
	assert.ErrorIs(t, err, interfaces.ErrInvalidRequest)

	reader.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything, mock.Anything)
}

// Test the full pipeline for addr(bytes32) against a stubbed authoritative chain
func TestResolve_AddrEndToEnd(t *testing.T) {
	calldata, encodedName, resolverCall := addrRequest(t, "foo.eth")
	upstreamResult := common.LeftPadBytes(testAddress.Bytes(), 32)

	reader := new(resolver.MockReader)
	reader.On("Resolve", mock.Anything, encodedName, resolverCall).Return(upstreamResult, nil).Once()

	gw, s := newTestGateway(t, reader)
	assert.Equal(t, s.Address(), gw.SignerAddress())

	response, err := gw.Handle(context.Background(), testSender.Hex(), hexutil.Encode(calldata))
	require.NoError(t, err)
	reader.AssertExpectations(t)

	result, expires, sig, err := signer.DecodeResponse(response)
	require.NoError(t, err)
	assert.Equal(t, upstreamResult, result)
	assert.Greater(t, expires, uint64(time.Now().Unix()))
	assert.Len(t, sig, 65)

	recovered, err := signer.RecoverSigner(testSender, expires, calldata, result, sig)
	require.NoError(t, err)
	assert.Equal(t, s.Address(), recovered)

	decoded, err := resolverprofile.UnpackResult(resolverCall, result)
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	assert.Equal(t, testAddress, decoded[0])
}

func TestResolve_MalformedEncoding(t *testing.T) {
	unterminatedName := []byte{0x03, 'f', 'o', 'o'}
	addrCall, err := resolverprofile.PackAddr(dnsname.NameHash("foo.eth"))
	require.NoError(t, err)

	badName, err := offchainresolver.PackResolve(unterminatedName, addrCall)
	require.NoError(t, err)

	truncatedCall, err := offchainresolver.PackResolve([]byte("\x03foo\x03eth\x00"), []byte{0x3b, 0x3b, 0x57, 0xde, 0x01})
	require.NoError(t, err)

	noSelector, err := offchainresolver.PackResolve([]byte("\x03foo\x03eth\x00"), []byte{0x3b})
	require.NoError(t, err)

	testCases := []struct {
		name string
		data []byte
	}{
		{"wrong outer selector", append([]byte{0xde, 0xad, 0xbe, 0xef}, badName[4:]...)},
		{"truncated outer arguments", badName[:40]},
		{"unterminated name", badName},
		{"known selector with truncated arguments", truncatedCall},
		{"resolver call without selector", noSelector},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			reader := new(resolver.MockReader)
			gw, _ := newTestGateway(t, reader)

			_, err := gw.Resolve(context.Background(), &interfaces.CCIPReadRequest{Sender: testSender, Data: tc.data})
			assert.ErrorIs(t, err, interfaces.ErrMalformedEncoding)
			reader.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestResolve_UnknownResolverCallIsForwarded(t *testing.T) {
	encodedName := []byte("\x03foo\x03eth\x00")
	unknownCall := []byte{0x01, 0x02, 0x03, 0x04, 0xff}
	calldata, err := offchainresolver.PackResolve(encodedName, unknownCall)
	require.NoError(t, err)

	reader := new(resolver.MockReader)
	reader.On("Resolve", mock.Anything, encodedName, unknownCall).Return([]byte{0x42}, nil).Once()

	gw, s := newTestGateway(t, reader)
	response, err := gw.Resolve(context.Background(), &interfaces.CCIPReadRequest{Sender: testSender, Data: calldata})
	require.NoError(t, err)

	result, err := signer.Verify(response, testSender, calldata, s.Address(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, []byte{0x42}, result)
	reader.AssertExpectations(t)
}

func TestResolve_UpstreamFailure(t *testing.T) {
	calldata, encodedName, resolverCall := addrRequest(t, "foo.eth")
	upstreamErr := errors.New("execution reverted")

	reader := new(resolver.MockReader)
	reader.On("Resolve", mock.Anything, encodedName, resolverCall).
		Return(nil, errors.Join(interfaces.ErrUpstreamCall, upstreamErr)).Once()

	gw, _ := newTestGateway(t, reader)
	_, err := gw.Resolve(context.Background(), &interfaces.CCIPReadRequest{Sender: testSender, Data: calldata})
	assert.ErrorIs(t, err, interfaces.ErrUpstreamCall)
	assert.Equal(t, "upstream_error", Outcome(err))
}

func TestResolve_SigningFailure(t *testing.T) {
	calldata, encodedName, resolverCall := addrRequest(t, "foo.eth")

	reader := new(resolver.MockReader)
	reader.On("Resolve", mock.Anything, encodedName, resolverCall).Return([]byte{0x01}, nil).Once()

	gw := New(reader, failingSigner{}, testLogger())
	_, err := gw.Resolve(context.Background(), &interfaces.CCIPReadRequest{Sender: testSender, Data: calldata})
	require.Error(t, err)
	assert.Equal(t, "internal_error", Outcome(err))
}

func TestResolve_ContextIsPassedToReader(t *testing.T) {
	calldata, encodedName, resolverCall := addrRequest(t, "foo.eth")

	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "request")

	reader := new(resolver.MockReader)
	reader.On("Resolve", mock.MatchedBy(func(c context.Context) bool {
		return c.Value(ctxKey{}) == "request"
	}), encodedName, resolverCall).Return([]byte{0x01}, nil).Once()

	gw, _ := newTestGateway(t, reader)
	_, err := gw.Resolve(ctx, &interfaces.CCIPReadRequest{Sender: testSender, Data: calldata})
	require.NoError(t, err)
	reader.AssertExpectations(t)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "RECEIVED", StateReceived.String())
	assert.Equal(t, "NAME_DECODED", StateNameDecoded.String())
	assert.Equal(t, "RESPONDED", StateResponded.String())
	assert.Equal(t, "ERRORED", StateErrored.String())
	assert.Equal(t, "UNKNOWN", State(42).String())
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "success", Outcome(nil))
	assert.Equal(t, "invalid_request", Outcome(&interfaces.ValidationError{Field: "sender"}))
	assert.Equal(t, "malformed_encoding", Outcome(interfaces.ErrMalformedEncoding))
	assert.Equal(t, "signing_error", Outcome(interfaces.ErrSigningConfiguration))
	assert.Equal(t, "internal_error", Outcome(errors.New("boom")))
}
