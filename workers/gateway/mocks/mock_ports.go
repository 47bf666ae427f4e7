package mocks

import (
	"context"
	"io"

	"github.com/harshkrt/FinAgent/shared/application/ports"
	"github.com/harshkrt/FinAgent/workers/gateway/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockStorage is a mock implementation of ports.Storage
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) EnsureBucket(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStorage) Put(ctx context.Context, key string, reader io.Reader, metadata ports.ObjectMetadata) (string, error) {
	args := m.Called(ctx, key, reader, metadata)
	return args.String(0), args.Error(1)
}

// MockQueue is a mock implementation of ports.Queue
type MockQueue struct {
	mock.Mock
}

func (m *MockQueue) Publish(ctx context.Context, message *ports.QueueMessage) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockQueue) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockFetcher is a mock implementation of usecase.Fetcher
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, rawURL string) (*domain.FetchedDocument, error) {
	args := m.Called(ctx, rawURL)

	var doc *domain.FetchedDocument
	if args.Get(0) != nil {
		doc = args.Get(0).(*domain.FetchedDocument)
	}
	return doc, args.Error(1)
}
