package filing

import (
	"errors"
	"fmt"
)

// ErrorCode classifies why an ingestion did not complete.
type ErrorCode string

const (
	CodeInvalidInput           ErrorCode = "INVALID_INPUT"
	CodeUnsupportedContentType ErrorCode = "UNSUPPORTED_CONTENT_TYPE"
	CodeNetworkFailure         ErrorCode = "NETWORK_FAILURE"
	CodeStorageFailed          ErrorCode = "STORAGE_FAILED"
	CodePublishFailed          ErrorCode = "PUBLISH_FAILED"
)

// Input shape violations. Both are reported under CodeInvalidInput.
var (
	ErrMissingInput     = errors.New("either a 'source_url' or a 'file' must be provided")
	ErrConflictingInput = errors.New("provide either a 'source_url' or a 'file', not both")
)

// IngestionError is the error type returned by every stage of the pipeline.
type IngestionError struct {
	Code      ErrorCode
	Message   string
	Err       error
	Retryable bool
}

func (e *IngestionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s - %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *IngestionError) Unwrap() error {
	return e.Err
}

// NewIngestionError creates a new ingestion error
func NewIngestionError(code ErrorCode, message string, err error, retryable bool) *IngestionError {
	return &IngestionError{
		Code:      code,
		Message:   message,
		Err:       err,
		Retryable: retryable,
	}
}

func InvalidInput(err error) *IngestionError {
	return NewIngestionError(CodeInvalidInput, "invalid request", err, false)
}

func UnsupportedContentType(contentType string) *IngestionError {
	return NewIngestionError(CodeUnsupportedContentType,
		fmt.Sprintf("unsupported content type %q, only PDF and HTML are accepted", contentType), nil, false)
}

func NetworkFailure(message string, err error) *IngestionError {
	return NewIngestionError(CodeNetworkFailure, message, err, true)
}

func StorageFailed(message string, err error) *IngestionError {
	return NewIngestionError(CodeStorageFailed, message, err, true)
}

func PublishFailed(err error) *IngestionError {
	return NewIngestionError(CodePublishFailed, "failed to enqueue stored document", err, true)
}

// CodeOf returns the code of the first IngestionError in err's chain, or an
// empty code when there is none.
func CodeOf(err error) ErrorCode {
	var ingestErr *IngestionError
	if errors.As(err, &ingestErr) {
		return ingestErr.Code
	}
	return ""
}

// IsRetryable reports whether resubmitting the same request may succeed.
func IsRetryable(err error) bool {
	var ingestErr *IngestionError
	if errors.As(err, &ingestErr) {
		return ingestErr.Retryable
	}
	return false
}
