package mocks

import (
	"context"

	"domsync/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockURLResolver struct {
	mock.Mock
}

var _ storage.URLResolver = (*MockURLResolver)(nil)

func (m *MockURLResolver) Resolve(ctx context.Context, uri string) (string, error) {
	args := m.Called(ctx, uri)
	return args.String(0), args.Error(1)
}
