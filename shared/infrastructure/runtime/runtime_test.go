package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/harshkrt/FinAgent/shared/application/dto"
	"github.com/harshkrt/FinAgent/shared/application/ports"
	"github.com/harshkrt/FinAgent/shared/infrastructure/config"
	"github.com/harshkrt/FinAgent/shared/infrastructure/observability"
	"github.com/harshkrt/FinAgent/shared/mocks"
)

type mockIngestor struct {
	mock.Mock
}

func (m *mockIngestor) Ingest(ctx context.Context, req *dto.IngestRequest) (*dto.IngestResult, error) {
	args := m.Called(ctx, req)

	var result *dto.IngestResult
	if args.Get(0) != nil {
		result = args.Get(0).(*dto.IngestResult)
	}
	return result, args.Error(1)
}

func testObservability() ports.Observability {
	logger, metrics := mocks.NewObservability()
	return observability.New(&config.Config{ServiceName: "filing-gateway"}, logger, metrics)
}

func newTestHTTPRuntime(t *testing.T, ingestor ports.Ingestor, maxUpload int64) *httpRuntime {
	t.Helper()
	rt, err := newHTTPRuntime(&config.HTTPConfig{Addr: ":0", MaxUploadBytes: maxUpload}, ingestor, nil, testObservability())
	require.NoError(t, err)
	return rt
}

func multipartBody(t *testing.T, fields map[string]string, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" || content != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func decode(t *testing.T, body io.Reader) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestHTTPRuntime_MultipartUpload(t *testing.T) {
	ingestor := &mockIngestor{}
	var uploaded string
	ingestor.On("Ingest", mock.Anything, mock.MatchedBy(func(req *dto.IngestRequest) bool {
		return req.HasUpload() && req.Upload.Filename == "report.pdf" &&
			req.CompanyName == "acme" && req.ReportType == "10-Q" && req.RequestID == "req-42"
	})).
		Run(func(args mock.Arguments) {
			data, _ := io.ReadAll(args.Get(1).(*dto.IngestRequest).Upload.Reader)
			uploaded = string(data)
		}).
		Return(&dto.IngestResult{ObjectKey: "raw_filings/ACME/10-Q/report.pdf", Filename: "report.pdf", Enqueued: true}, nil)

	body, contentType := multipartBody(t, map[string]string{"company_name": "acme", "report_type": "10-Q"}, "report.pdf", "%PDF-1.4")
	req := httptest.NewRequest(http.MethodPost, SubmissionPath, body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(requestIDHeader, "req-42")
	rec := httptest.NewRecorder()

	newTestHTTPRuntime(t, ingestor, 1<<20).routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "req-42", rec.Header().Get(requestIDHeader))
	assert.Equal(t, "%PDF-1.4", uploaded)

	resp := decode(t, rec.Body)
	assert.Equal(t, "raw_filings/ACME/10-Q/report.pdf", resp["s3_path"])
	assert.Equal(t, "report.pdf", resp["filename"])
	assert.Equal(t, true, resp["enqueued"])
	assert.Equal(t, "req-42", resp["request_id"])
	ingestor.AssertExpectations(t)
}

func TestHTTPRuntime_EmptyFilePartIsAbsent(t *testing.T) {
	ingestor := &mockIngestor{}
	ingestor.On("Ingest", mock.Anything, mock.MatchedBy(func(req *dto.IngestRequest) bool {
		return req.Upload == nil && req.SourceURL == "https://x.test/doc"
	})).Return(&dto.IngestResult{ObjectKey: "raw_filings/UNKNOWN/10-K/doc", Filename: "doc", Enqueued: true}, nil)

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	require.NoError(t, w.WriteField("source_url", "https://x.test/doc"))
	_, err := w.CreateFormFile("file", "")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, SubmissionPath, body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()

	newTestHTTPRuntime(t, ingestor, 1<<20).routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	ingestor.AssertExpectations(t)
}

func TestHTTPRuntime_FormAndJSONSubmissions(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentType string
	}{
		{
			name:        "urlencoded",
			body:        url.Values{"source_url": {"https://x.test/filings/doc"}, "company_name": {"globex"}}.Encode(),
			contentType: "application/x-www-form-urlencoded",
		},
		{
			name:        "json",
			body:        `{"source_url":"https://x.test/filings/doc","company_name":"globex"}`,
			contentType: "application/json; charset=utf-8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ingestor := &mockIngestor{}
			ingestor.On("Ingest", mock.Anything, mock.MatchedBy(func(req *dto.IngestRequest) bool {
				return req.SourceURL == "https://x.test/filings/doc" && req.CompanyName == "globex" && req.Upload == nil
			})).Return(&dto.IngestResult{ObjectKey: "raw_filings/GLOBEX/10-K/doc", Filename: "doc", Enqueued: true}, nil)

			req := httptest.NewRequest(http.MethodPost, SubmissionPath, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			rec := httptest.NewRecorder()

			newTestHTTPRuntime(t, ingestor, 1<<20).routes().ServeHTTP(rec, req)

			assert.Equal(t, http.StatusAccepted, rec.Code)
			assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
			ingestor.AssertExpectations(t)
		})
	}
}

func TestHTTPRuntime_MalformedJSON(t *testing.T) {
	ingestor := &mockIngestor{}
	req := httptest.NewRequest(http.MethodPost, SubmissionPath, strings.NewReader(`{"source_url":`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	newTestHTTPRuntime(t, ingestor, 1<<20).routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, reasonMalformedRequest, decode(t, rec.Body)["reason"])
	ingestor.AssertNotCalled(t, "Ingest", mock.Anything, mock.Anything)
}

func TestHTTPRuntime_BodyTooLarge(t *testing.T) {
	ingestor := &mockIngestor{}
	body, contentType := multipartBody(t, nil, "big.pdf", strings.Repeat("a", 4096))
	req := httptest.NewRequest(http.MethodPost, SubmissionPath, body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	newTestHTTPRuntime(t, ingestor, 1024).routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, reasonPayloadTooLarge, decode(t, rec.Body)["reason"])
	ingestor.AssertNotCalled(t, "Ingest", mock.Anything, mock.Anything)
}

func TestHTTPRuntime_Health(t *testing.T) {
	rt := newTestHTTPRuntime(t, &mockIngestor{}, 0)

	for _, path := range []string{"/", "/healthz"} {
		rec := httptest.NewRecorder()
		rt.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String(), path)
		assert.NotEmpty(t, rec.Header().Get(requestIDHeader), path)
	}

	rec := httptest.NewRecorder()
	rt.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHTTPRuntime_MetricsEndpoint(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("# HELP up\n"))
	})
	rt, err := newHTTPRuntime(&config.HTTPConfig{}, &mockIngestor{}, metrics, testObservability())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	rt.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "# HELP up")
}

func TestNewHTTPRuntime_RequiresIngestor(t *testing.T) {
	_, err := NewHTTPRuntime(&config.HTTPConfig{}, nil, nil, testObservability())
	assert.Error(t, err)
}
