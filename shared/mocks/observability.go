package mocks

import (
	"io"

	"github.com/harshkrt/FinAgent/shared/application/ports"
	"github.com/harshkrt/FinAgent/shared/infrastructure/observability/adapters/stdout"
)

// NewObservability returns a logger that discards output and in-memory
// metrics that tests can assert on.
func NewObservability() (ports.Logger, *stdout.Metrics) {
	return stdout.NewLogger(io.Discard, "error", "text"), stdout.NewMetrics(nil)
}
