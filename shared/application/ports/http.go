package ports

import (
	"context"
	"io"
)

// HTTPClient downloads remote documents.
type HTTPClient interface {
	// Download issues a GET and returns the body and response headers of a
	// 2xx response. Any other outcome is an error and the body is closed.
	// Header names are canonical, e.g. "Content-Type".
	Download(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, map[string]string, error)
}
