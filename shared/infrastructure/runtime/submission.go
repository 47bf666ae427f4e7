package runtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/harshkrt/FinAgent/shared/application/dto"
	"github.com/harshkrt/FinAgent/shared/application/ports"
	"github.com/harshkrt/FinAgent/shared/domain/filing"
)

const (
	requestIDHeader = "X-Request-ID"

	// multipart parts above this size spill to temporary files
	multipartMemory = 32 << 20

	acceptedMessage = "Document accepted for processing"
)

// Rejection reasons reported to callers.
const (
	reasonMissingInput           = "missing-input"
	reasonConflictingInput       = "conflicting-input"
	reasonUnsupportedContentType = "unsupported-content-type"
	reasonFetchFailure           = "fetch-failure"
	reasonStorageFailure         = "storage-failure"
	reasonPayloadTooLarge        = "payload-too-large"
	reasonMalformedRequest       = "malformed-request"
	reasonInternal               = "internal-error"
)

type acceptedResponse struct {
	Message   string `json:"message"`
	S3Path    string `json:"s3_path"`
	Filename  string `json:"filename"`
	Enqueued  bool   `json:"enqueued"`
	RequestID string `json:"request_id"`
}

type errorResponse struct {
	Error     string `json:"error"`
	Reason    string `json:"reason"`
	RequestID string `json:"request_id"`
}

type statusResponse struct {
	Status string `json:"status"`
}

// jsonSubmission is the body accepted for application/json submissions.
// Uploads require multipart.
type jsonSubmission struct {
	SourceURL   string `json:"source_url"`
	CompanyName string `json:"company_name"`
	ReportType  string `json:"report_type"`
}

// malformedRequestError marks a body that could not be decoded at all.
type malformedRequestError struct {
	err error
}

func (e *malformedRequestError) Error() string {
	return fmt.Sprintf("malformed request: %v", e.err)
}

func (e *malformedRequestError) Unwrap() error {
	return e.err
}

// submitter turns an HTTP submission into an ingest call. It is shared by
// the HTTP and Lambda runtimes.
type submitter struct {
	ingestor ports.Ingestor
	logger   ports.Logger
	metrics  ports.Metrics
}

// submit parses r, runs the ingestion and returns the status and JSON body
// to send back.
func (s *submitter) submit(r *http.Request, requestID string) (int, interface{}) {
	logger := s.logger.WithFields(map[string]interface{}{"request_id": requestID})

	req, cleanup, err := parseSubmission(r)
	defer cleanup()
	if err != nil {
		status, body := rejection(err, requestID)
		logger.Error("Rejected submission", "status", status, "reason", body.Reason, "error", err)
		s.metrics.IncrementCounter("http.rejected", map[string]string{"reason": body.Reason})
		return status, body
	}
	req.RequestID = requestID

	result, err := s.ingestor.Ingest(r.Context(), req)
	if err != nil {
		status, body := rejection(err, requestID)
		s.metrics.IncrementCounter("http.rejected", map[string]string{"reason": body.Reason})
		return status, body
	}

	logger.Info("Submission accepted", "s3_path", result.ObjectKey, "enqueued", result.Enqueued)
	return http.StatusAccepted, acceptedResponse{
		Message:   acceptedMessage,
		S3Path:    result.ObjectKey,
		Filename:  result.Filename,
		Enqueued:  result.Enqueued,
		RequestID: requestID,
	}
}

// parseSubmission reads the form fields and optional file part from r. The
// returned cleanup releases the upload and any temporary files and must be
// called once the ingestion finished.
func parseSubmission(r *http.Request) (*dto.IngestRequest, func(), error) {
	noop := func() {}

	mediaType := ""
	if ct := r.Header.Get("Content-Type"); ct != "" {
		parsed, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return nil, noop, &malformedRequestError{err: err}
		}
		mediaType = parsed
	}

	switch mediaType {
	case "multipart/form-data":
		return parseMultipart(r)

	case "application/json":
		var body jsonSubmission
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			return nil, noop, wrapBodyError(err)
		}
		return &dto.IngestRequest{
			SourceURL:   body.SourceURL,
			CompanyName: body.CompanyName,
			ReportType:  body.ReportType,
		}, noop, nil

	default:
		if err := r.ParseForm(); err != nil {
			return nil, noop, wrapBodyError(err)
		}
		return &dto.IngestRequest{
			SourceURL:   r.PostForm.Get("source_url"),
			CompanyName: r.PostForm.Get("company_name"),
			ReportType:  r.PostForm.Get("report_type"),
		}, noop, nil
	}
}

func parseMultipart(r *http.Request) (*dto.IngestRequest, func(), error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, func() {}, wrapBodyError(err)
	}
	form := r.MultipartForm

	closers := []io.Closer{}
	cleanup := func() {
		for _, c := range closers {
			c.Close()
		}
		form.RemoveAll()
	}

	req := &dto.IngestRequest{
		SourceURL:   firstValue(form.Value, "source_url"),
		CompanyName: firstValue(form.Value, "company_name"),
		ReportType:  firstValue(form.Value, "report_type"),
	}

	// a file field with no filename is what browsers send for an empty input
	if files := form.File["file"]; len(files) > 0 && files[0].Filename != "" {
		header := files[0]
		file, err := header.Open()
		if err != nil {
			return nil, cleanup, fmt.Errorf("failed to open uploaded file: %w", err)
		}
		closers = append(closers, file)

		req.Upload = &dto.Upload{
			Reader:      file,
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
		}
	}

	return req, cleanup, nil
}

func firstValue(values map[string][]string, key string) string {
	if v := values[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func wrapBodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	return &malformedRequestError{err: err}
}

// rejection maps an error to the status code and body sent to the caller.
func rejection(err error, requestID string) (int, errorResponse) {
	status, reason := classify(err)
	return status, errorResponse{
		Error:     publicMessage(err),
		Reason:    reason,
		RequestID: requestID,
	}
}

func classify(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge, reasonPayloadTooLarge
	}
	var malformed *malformedRequestError
	if errors.As(err, &malformed) {
		return http.StatusBadRequest, reasonMalformedRequest
	}

	switch filing.CodeOf(err) {
	case filing.CodeInvalidInput:
		if errors.Is(err, filing.ErrConflictingInput) {
			return http.StatusBadRequest, reasonConflictingInput
		}
		return http.StatusBadRequest, reasonMissingInput
	case filing.CodeUnsupportedContentType:
		return http.StatusUnsupportedMediaType, reasonUnsupportedContentType
	case filing.CodeNetworkFailure:
		return http.StatusBadGateway, reasonFetchFailure
	case filing.CodeStorageFailed:
		return http.StatusInternalServerError, reasonStorageFailure
	default:
		return http.StatusInternalServerError, reasonInternal
	}
}

func publicMessage(err error) string {
	var ingestErr *filing.IngestionError
	if !errors.As(err, &ingestErr) {
		return err.Error()
	}
	if ingestErr.Code == filing.CodeInvalidInput && ingestErr.Err != nil {
		return ingestErr.Err.Error()
	}
	// storage causes carry bucket names, credentials detail and paths
	if ingestErr.Code == filing.CodeStorageFailed {
		return ingestErr.Message
	}
	if ingestErr.Err != nil {
		return ingestErr.Message + ": " + ingestErr.Err.Error()
	}
	return ingestErr.Message
}

// requestID returns the caller-supplied request id or a new one.
func requestID(header http.Header) string {
	if id := strings.TrimSpace(header.Get(requestIDHeader)); id != "" {
		return id
	}
	return uuid.NewString()
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(body)
}
