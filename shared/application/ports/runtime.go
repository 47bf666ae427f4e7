package ports

import (
	"context"

	"github.com/harshkrt/FinAgent/shared/application/dto"
)

// Ingestor accepts a filing submission and hands it off for processing.
type Ingestor interface {
	Ingest(ctx context.Context, req *dto.IngestRequest) (*dto.IngestResult, error)
}

// Runtime serves Ingestor over a transport.
type Runtime interface {
	Start() error
	Stop(ctx context.Context) error
}
