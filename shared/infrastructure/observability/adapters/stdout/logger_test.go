package stdout

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "info", "json")

	logger.Error("Failed to store file", "error", errors.New("access denied"), "key", "k")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "Failed to store file", entry["msg"])
	assert.Equal(t, "access denied", entry["error"])
	assert.Equal(t, "k", entry["key"])
}

func TestLogger_WithFieldsIsSortedAndImmutable(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(&buf, "info", "text")

	child := base.WithFields(map[string]interface{}{"request_id": "r1", "component": "runtime.http"})
	child.Info("request received")
	base.Info("plain")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "component=runtime.http request_id=r1")
	assert.NotContains(t, lines[1], "request_id")
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "error", "text")

	logger.Info("hidden")
	logger.Error("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
