package ports

import (
	"context"
	"io"
)

// ObjectMetadata describes an object being written.
type ObjectMetadata struct {
	ContentType   string
	ContentLength int64
	UserMetadata  map[string]string
}

// Storage writes raw filings to an object store bucket fixed at construction.
type Storage interface {
	// EnsureBucket creates the bucket when it does not exist. It is safe to
	// call repeatedly and concurrently.
	EnsureBucket(ctx context.Context) error

	// Put streams reader to key and returns the key written. An existing
	// object under the same key is overwritten.
	Put(ctx context.Context, key string, reader io.Reader, metadata ObjectMetadata) (string, error)
}
