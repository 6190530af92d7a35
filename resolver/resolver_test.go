package resolver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ruteri/ccip-read-gateway/bindings/offchainresolver"
	"github.com/ruteri/ccip-read-gateway/cache"
	"github.com/ruteri/ccip-read-gateway/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var resolverAddress = common.HexToAddress("0x00000000000000000000000000000000000e45e5")

// fakeResolverContract implements bind.ContractCaller by decoding resolve calldata
// with the real ABI and answering from a fixed table.
type fakeResolverContract struct {
	mu      sync.Mutex
	calls   int
	results map[string][]byte
	err     error
	raw     []byte
	block   bool
}

func newFakeResolverContract() *fakeResolverContract {
	return &fakeResolverContract{results: make(map[string][]byte)}
}

func (f *fakeResolverContract) set(name, call, result []byte) {
	f.results[string(name)+"|"+string(call)] = result
}

func (f *fakeResolverContract) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeResolverContract) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	return []byte{0x60, 0x80, 0x60, 0x40}, nil
}

func (f *fakeResolverContract) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if call.To == nil || *call.To != resolverAddress {
		return nil, errors.New("call to unexpected contract")
	}
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.raw != nil {
		return f.raw, nil
	}

	name, data, err := offchainresolver.UnpackResolve(call.Data)
	if err != nil {
		return nil, err
	}

	result, ok := f.results[string(name)+"|"+string(data)]
	if !ok {
		return nil, errors.New("execution reverted")
	}

	parsed, err := offchainresolver.ParsedABI()
	if err != nil {
		return nil, err
	}
	return parsed.Methods["resolve"].Outputs.Pack(result)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Test ChainReader - Success Path
func TestChainReader_Resolve(t *testing.T) {
	contract := newFakeResolverContract()
	name := []byte("\x03foo\x03eth\x00")
	call := []byte{0x3b, 0x3b, 0x57, 0xde, 0x01}
	expected := common.LeftPadBytes(common.HexToAddress("0x5555555555555555555555555555555555555555").Bytes(), 32)
	contract.set(name, call, expected)

	reader, err := NewChainReader(contract, resolverAddress, time.Second, testLogger())
	require.NoError(t, err)
	assert.Equal(t, resolverAddress, reader.Address())

	result, err := reader.Resolve(context.Background(), name, call)
	require.NoError(t, err)
	assert.Equal(t, expected, result)
	assert.Equal(t, 1, contract.callCount())
}

// Test ChainReader - Failure Paths
func TestChainReader_Errors(t *testing.T) {
	testCases := []struct {
		name  string
		setup func(f *fakeResolverContract)
	}{
		{"revert", func(f *fakeResolverContract) {}},
		{"rpc failure", func(f *fakeResolverContract) { f.err = errors.New("connection refused") }},
		{"malformed return data", func(f *fakeResolverContract) { f.raw = []byte{0x01, 0x02, 0x03} }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			contract := newFakeResolverContract()
			tc.setup(contract)

			reader, err := NewChainReader(contract, resolverAddress, time.Second, testLogger())
			require.NoError(t, err)

			_, err = reader.Resolve(context.Background(), []byte("\x03foo\x03eth\x00"), []byte{0x3b, 0x3b, 0x57, 0xde})
			assert.ErrorIs(t, err, interfaces.ErrUpstreamCall)
		})
	}
}

func TestChainReader_Timeout(t *testing.T) {
	contract := newFakeResolverContract()
	contract.block = true

	reader, err := NewChainReader(contract, resolverAddress, 20*time.Millisecond, testLogger())
	require.NoError(t, err)

	start := time.Now()
	_, err = reader.Resolve(context.Background(), []byte{0x00}, []byte{0x3b, 0x3b, 0x57, 0xde})
	assert.ErrorIs(t, err, interfaces.ErrUpstreamCall)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestChainReader_CallerCancellation(t *testing.T) {
	contract := newFakeResolverContract()
	contract.block = true

	reader, err := NewChainReader(contract, resolverAddress, time.Minute, testLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err = reader.Resolve(ctx, []byte{0x00}, []byte{0x3b, 0x3b, 0x57, 0xde})
	assert.ErrorIs(t, err, interfaces.ErrUpstreamCall)
}

// Test CachingReader - repeated lookups within the TTL reach upstream once
func TestCachingReader_HitEquivalence(t *testing.T) {
	name := []byte("\x03foo\x03eth\x00")
	call := []byte{0x3b, 0x3b, 0x57, 0xde}

	upstream := new(MockReader)
	upstream.On("Resolve", mock.Anything, name, call).Return([]byte{0xcc, 0xdd}, nil).Once()

	reader := NewCachingReader(upstream, cache.NewMemoryCache(), 0, testLogger())

	first, err := reader.Resolve(context.Background(), name, call)
	require.NoError(t, err)
	second, err := reader.Resolve(context.Background(), name, call)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	upstream.AssertNumberOfCalls(t, "Resolve", 1)
	upstream.AssertExpectations(t)
}

// Test CachingReader - a lookup after the TTL triggers exactly one new upstream call
func TestCachingReader_Expiry(t *testing.T) {
	name := []byte("\x03foo\x03eth\x00")
	call := []byte{0x3b, 0x3b, 0x57, 0xde}

	now := time.Unix(1_700_000_000, 0)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	advance := func(d time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(d)
	}

	memory := cache.NewMemoryCacheWithClock(clock)
	upstream := new(MockReader)
	upstream.On("Resolve", mock.Anything, name, call).Return([]byte{0x01}, nil).Once()
	upstream.On("Resolve", mock.Anything, name, call).Return([]byte{0x02}, nil).Once()

	reader := NewCachingReader(upstream, memory, 5*time.Minute, testLogger())

	result, err := reader.Resolve(context.Background(), name, call)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01}, result)

	advance(4 * time.Minute)
	result, err = reader.Resolve(context.Background(), name, call)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01}, result)
	upstream.AssertNumberOfCalls(t, "Resolve", 1)

	advance(time.Minute)
	assert.Equal(t, 1, memory.Len(), "expired entry is still present in the map")

	result, err = reader.Resolve(context.Background(), name, call)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x02}, result)
	upstream.AssertNumberOfCalls(t, "Resolve", 2)

	result, err = reader.Resolve(context.Background(), name, call)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x02}, result)
	upstream.AssertNumberOfCalls(t, "Resolve", 2)
}

// Test CachingReader - failures are never cached
func TestCachingReader_FailuresNotCached(t *testing.T) {
	name := []byte("\x03foo\x03eth\x00")
	call := []byte{0x3b, 0x3b, 0x57, 0xde}
	upstreamErr := errors.New("upstream call failed: execution reverted")

	upstream := new(MockReader)
	upstream.On("Resolve", mock.Anything, name, call).Return(nil, upstreamErr).Once()
	upstream.On("Resolve", mock.Anything, name, call).Return([]byte{0xaa}, nil).Once()

	memory := cache.NewMemoryCache()
	reader := NewCachingReader(upstream, memory, time.Minute, testLogger())

	_, err := reader.Resolve(context.Background(), name, call)
	assert.ErrorIs(t, err, upstreamErr)
	assert.Equal(t, 0, memory.Len())

	result, err := reader.Resolve(context.Background(), name, call)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xaa}, result)
	upstream.AssertNumberOfCalls(t, "Resolve", 2)
}

// Test CachingReader over ChainReader - distinct calls for the same name are cached separately
func TestCachingReader_WithChainReader(t *testing.T) {
	contract := newFakeResolverContract()
	name := []byte("\x03foo\x03eth\x00")
	addrCall := []byte{0x3b, 0x3b, 0x57, 0xde, 0x01}
	textCall := []byte{0x59, 0xd1, 0xd4, 0x3c, 0x02}
	contract.set(name, addrCall, []byte{0x0a})
	contract.set(name, textCall, []byte{0x0b})

	chain, err := NewChainReader(contract, resolverAddress, time.Second, testLogger())
	require.NoError(t, err)
	reader := NewCachingReader(chain, cache.NewMemoryCache(), time.Minute, testLogger())

	for i := 0; i < 3; i++ {
		result, err := reader.Resolve(context.Background(), name, addrCall)
		require.NoError(t, err)
		assert.Equal(t, []byte{0x0a}, result)

		result, err = reader.Resolve(context.Background(), name, textCall)
		require.NoError(t, err)
		assert.Equal(t, []byte{0x0b}, result)
	}

	assert.Equal(t, 2, contract.callCount())
}
