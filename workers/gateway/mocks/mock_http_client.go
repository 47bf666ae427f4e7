package mocks

import (
	"context"
	"io"
	"strings"

	"github.com/stretchr/testify/mock"
)

// MockHTTPClient is a mock implementation of ports.HTTPClient
type MockHTTPClient struct {
	mock.Mock
}

func (m *MockHTTPClient) Download(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, map[string]string, error) {
	args := m.Called(ctx, url, headers)

	var reader io.ReadCloser
	if args.Get(0) != nil {
		reader = args.Get(0).(io.ReadCloser)
	}

	var respHeaders map[string]string
	if args.Get(1) != nil {
		respHeaders = args.Get(1).(map[string]string)
	}

	return reader, respHeaders, args.Error(2)
}

// TrackingBody is a response body that records how much of it was consumed
// and whether it was closed.
type TrackingBody struct {
	Reader    io.Reader
	BytesRead int
	Closed    bool
}

func NewTrackingBody(content string) *TrackingBody {
	return &TrackingBody{Reader: strings.NewReader(content)}
}

func (b *TrackingBody) Read(p []byte) (int, error) {
	n, err := b.Reader.Read(p)
	b.BytesRead += n
	return n, err
}

func (b *TrackingBody) Close() error {
	b.Closed = true
	return nil
}
