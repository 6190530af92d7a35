package resolver

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockReader mocks the interfaces.AuthoritativeReader interface
type MockReader struct {
	mock.Mock
}

// Resolve mocks the Resolve method
func (m *MockReader) Resolve(ctx context.Context, encodedName []byte, resolverCall []byte) ([]byte, error) {
	args := m.Called(ctx, encodedName, resolverCall)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
