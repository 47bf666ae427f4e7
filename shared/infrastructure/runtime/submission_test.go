package runtime

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/harshkrt/FinAgent/shared/domain/filing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		reason string
	}{
		{"missing input", filing.InvalidInput(filing.ErrMissingInput), http.StatusBadRequest, reasonMissingInput},
		{"conflicting input", filing.InvalidInput(filing.ErrConflictingInput), http.StatusBadRequest, reasonConflictingInput},
		{"unfetchable url", filing.NewIngestionError(filing.CodeNetworkFailure, "failed to fetch file: only HTTP and HTTPS URLs are supported", nil, false), http.StatusBadGateway, reasonFetchFailure},
		{"unsupported content type", filing.UnsupportedContentType("application/json"), http.StatusUnsupportedMediaType, reasonUnsupportedContentType},
		{"network failure", filing.NetworkFailure("failed to download", errors.New("refused")), http.StatusBadGateway, reasonFetchFailure},
		{"storage failure", filing.StorageFailed("failed to store file", errors.New("denied")), http.StatusInternalServerError, reasonStorageFailure},
		{"too large", fmt.Errorf("multipart: %w", &http.MaxBytesError{Limit: 10}), http.StatusRequestEntityTooLarge, reasonPayloadTooLarge},
		{"malformed", &malformedRequestError{err: errors.New("bad boundary")}, http.StatusBadRequest, reasonMalformedRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, reasonInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, reason := classify(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestPublicMessage(t *testing.T) {
	assert.Equal(t, filing.ErrMissingInput.Error(), publicMessage(filing.InvalidInput(filing.ErrMissingInput)))
	assert.Equal(t, "failed to store file",
		publicMessage(filing.StorageFailed("failed to store file", errors.New("AccessDenied: bucket filings, key raw_filings/ACME"))))
	assert.Equal(t, "failed to download file: connection refused",
		publicMessage(filing.NetworkFailure("failed to download file", errors.New("connection refused"))))
	assert.Contains(t, publicMessage(filing.UnsupportedContentType("text/plain")), `"text/plain"`)
}

func TestSubmitter_IngestErrorsAreMapped(t *testing.T) {
	ingestor := &mockIngestor{}
	ingestor.On("Ingest", mock.Anything, mock.Anything).Return(nil, filing.UnsupportedContentType("application/json"))

	rt := newTestHTTPRuntime(t, ingestor, 1<<20)
	req, _ := http.NewRequest(http.MethodPost, SubmissionPath, nil)
	req.Header.Set("Content-Type", "application/json")

	status, body := rt.submit(req, "req-7")

	assert.Equal(t, http.StatusUnsupportedMediaType, status)
	resp, ok := body.(errorResponse)
	assert.True(t, ok)
	assert.Equal(t, reasonUnsupportedContentType, resp.Reason)
	assert.Equal(t, "req-7", resp.RequestID)
}
