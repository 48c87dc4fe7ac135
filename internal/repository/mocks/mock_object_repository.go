package mocks

import (
	"context"

	"domsync/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockObjectRepository struct {
	mock.Mock
}

var _ repository.ObjectRepository = (*MockObjectRepository)(nil)

func (m *MockObjectRepository) NewObject(ctx context.Context, identifiers, collections []string, logMessage string) (string, error) {
	args := m.Called(ctx, identifiers, collections, logMessage)
	return args.String(0), args.Error(1)
}

func (m *MockObjectRepository) GetObjectProfile(ctx context.Context, pid string) (*repository.ObjectProfile, error) {
	args := m.Called(ctx, pid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.ObjectProfile), args.Error(1)
}

func (m *MockObjectRepository) GetDatastreamContent(ctx context.Context, pid, datastreamID string) ([]byte, error) {
	args := m.Called(ctx, pid, datastreamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	if s, ok := args.Get(0).(string); ok {
		return []byte(s), args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockObjectRepository) WriteDatastream(ctx context.Context, pid, datastreamID string, content []byte, checksum, logMessage string) error {
	args := m.Called(ctx, pid, datastreamID, content, checksum, logMessage)
	return args.Error(0)
}

func (m *MockObjectRepository) DeleteDatastream(ctx context.Context, pid, datastreamID, logMessage string) error {
	args := m.Called(ctx, pid, datastreamID, logMessage)
	return args.Error(0)
}

func (m *MockObjectRepository) AddExternalDatastream(ctx context.Context, pid, datastreamID, filename, url, controlGroup, mimeType, logMessage string) error {
	args := m.Called(ctx, pid, datastreamID, filename, url, controlGroup, mimeType, logMessage)
	return args.Error(0)
}

func (m *MockObjectRepository) AddRelation(ctx context.Context, pid, subject, predicate, object string, isLiteral bool, logMessage string) error {
	args := m.Called(ctx, pid, subject, predicate, object, isLiteral, logMessage)
	return args.Error(0)
}

func (m *MockObjectRepository) SetLabel(ctx context.Context, pid, label, logMessage string) error {
	args := m.Called(ctx, pid, label, logMessage)
	return args.Error(0)
}

func (m *MockObjectRepository) FindObjectsByIdentifier(ctx context.Context, identifier string) ([]string, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
