package fs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harshkrt/FinAgent/shared/application/ports"
)

// Storage implements ports.Storage on the local filesystem. The bucket is a
// directory under basePath and keys map to relative file paths.
type Storage struct {
	bucketPath string
	logger     ports.Logger
	metrics    ports.Metrics
}

// NewStorage creates a filesystem storage rooted at basePath/bucket.
func NewStorage(basePath, bucket string, logger ports.Logger, metrics ports.Metrics) (*Storage, error) {
	if bucket == "" || strings.ContainsAny(bucket, `/\`) || bucket == "." || bucket == ".." {
		return nil, fmt.Errorf("invalid bucket name: %q", bucket)
	}

	absBase, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base path: %w", err)
	}

	s := &Storage{
		bucketPath: filepath.Join(absBase, bucket),
		logger:     logger,
		metrics:    metrics.WithTags(map[string]string{"storage": "filesystem"}),
	}

	if err := s.EnsureBucket(context.Background()); err != nil {
		return nil, err
	}

	logger.Info("Filesystem storage initialized", "path", s.bucketPath)
	return s, nil
}

// EnsureBucket creates the bucket directory. MkdirAll is idempotent.
func (s *Storage) EnsureBucket(_ context.Context) error {
	if err := os.MkdirAll(s.bucketPath, 0o755); err != nil {
		s.logger.Error("Failed to create bucket directory", "path", s.bucketPath, "error", err)
		return fmt.Errorf("failed to create bucket directory: %w", err)
	}
	return nil
}

// Put writes reader to a temporary file beside the target and renames it
// into place, so readers never observe a partial object.
func (s *Storage) Put(ctx context.Context, key string, reader io.Reader, _ ports.ObjectMetadata) (string, error) {
	start := time.Now()

	objectPath, err := s.objectPath(key)
	if err != nil {
		s.metrics.IncrementCounter("storage.put.errors", map[string]string{"error": "key"})
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(objectPath), 0o755); err != nil {
		s.metrics.IncrementCounter("storage.put.errors", map[string]string{"error": "mkdir"})
		return "", fmt.Errorf("failed to create object directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(objectPath), ".upload-*")
	if err != nil {
		s.metrics.IncrementCounter("storage.put.errors", map[string]string{"error": "create"})
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, &contextReader{ctx: ctx, r: reader})
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		s.logger.Error("Failed to write data", "key", key, "error", err)
		s.metrics.IncrementCounter("storage.put.errors", map[string]string{"error": "write"})
		return "", fmt.Errorf("failed to write data: %w", err)
	}

	if err := os.Rename(tmp.Name(), objectPath); err != nil {
		s.metrics.IncrementCounter("storage.put.errors", map[string]string{"error": "rename"})
		return "", fmt.Errorf("failed to move object into place: %w", err)
	}

	s.logger.Info("Object stored successfully",
		"key", key,
		"size_bytes", written,
		"duration_ms", time.Since(start).Milliseconds())
	s.metrics.IncrementCounter("storage.put.success", nil)
	s.metrics.RecordHistogram("storage.put.size", float64(written), nil)

	return key, nil
}

// objectPath maps key below the bucket directory. Keys carry caller supplied
// company names, so anything resolving outside the bucket is rejected.
func (s *Storage) objectPath(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("object key is required")
	}

	p := filepath.Join(s.bucketPath, filepath.FromSlash(key))
	if !strings.HasPrefix(p, s.bucketPath+string(filepath.Separator)) {
		return "", fmt.Errorf("object key %q escapes the bucket", key)
	}
	return p, nil
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
