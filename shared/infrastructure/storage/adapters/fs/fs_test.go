package fs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshkrt/FinAgent/shared/application/ports"
	"github.com/harshkrt/FinAgent/shared/mocks"
)

func newTestStorage(t *testing.T) (*Storage, string) {
	t.Helper()
	base := t.TempDir()
	logger, metrics := mocks.NewObservability()

	s, err := NewStorage(base, "filings", logger, metrics)
	require.NoError(t, err)
	return s, base
}

func TestNewStorage_CreatesBucketDirectory(t *testing.T) {
	s, base := newTestStorage(t)

	info, err := os.Stat(filepath.Join(base, "filings"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// idempotent
	assert.NoError(t, s.EnsureBucket(context.Background()))
	assert.NoError(t, s.EnsureBucket(context.Background()))
}

func TestNewStorage_InvalidBucket(t *testing.T) {
	logger, metrics := mocks.NewObservability()

	for _, bucket := range []string{"", "..", "a/b"} {
		_, err := NewStorage(t.TempDir(), bucket, logger, metrics)
		assert.Error(t, err, bucket)
	}
}

func TestPut_WritesAndOverwrites(t *testing.T) {
	s, base := newTestStorage(t)
	key := "raw_filings/ACME/10-Q/report.pdf"

	got, err := s.Put(context.Background(), key, strings.NewReader("first"), ports.ObjectMetadata{})
	require.NoError(t, err)
	assert.Equal(t, key, got)

	_, err = s.Put(context.Background(), key, strings.NewReader("second"), ports.ObjectMetadata{})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(base, "filings", "raw_filings", "ACME", "10-Q", "report.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(filepath.Join(base, "filings", "raw_filings", "ACME", "10-Q"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestPut_RejectsEscapingKeys(t *testing.T) {
	s, _ := newTestStorage(t)

	for _, key := range []string{"", "../outside.pdf", "raw_filings/../../x.pdf"} {
		_, err := s.Put(context.Background(), key, strings.NewReader("x"), ports.ObjectMetadata{})
		assert.Error(t, err, key)
	}
}

func TestPut_CancelledContextLeavesNoObject(t *testing.T) {
	s, base := newTestStorage(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Put(ctx, "raw_filings/ACME/10-K/a.pdf", strings.NewReader("data"), ports.ObjectMetadata{})

	require.ErrorIs(t, err, context.Canceled)
	_, statErr := os.Stat(filepath.Join(base, "filings", "raw_filings", "ACME", "10-K", "a.pdf"))
	assert.True(t, os.IsNotExist(statErr))
}
