package dto

import (
	"io"
	"strings"
)

// Upload is a document streamed by the caller.
type Upload struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	// Size is -1 when unknown
	Size int64
}

// IngestRequest is a filing submission. Exactly one of Upload and SourceURL
// must be set.
type IngestRequest struct {
	RequestID   string
	Upload      *Upload
	SourceURL   string
	CompanyName string
	ReportType  string
}

// HasUpload reports whether an upload with both a body and a filename was
// submitted. A file field with an empty filename counts as absent.
func (r *IngestRequest) HasUpload() bool {
	return r.Upload != nil && r.Upload.Reader != nil && strings.TrimSpace(r.Upload.Filename) != ""
}

func (r *IngestRequest) HasSourceURL() bool {
	return strings.TrimSpace(r.SourceURL) != ""
}

// Mode names the submitted input mode for logs and metric tags.
func (r *IngestRequest) Mode() string {
	switch {
	case r.HasUpload() && r.HasSourceURL():
		return "conflicting"
	case r.HasUpload():
		return "upload"
	case r.HasSourceURL():
		return "url"
	default:
		return "none"
	}
}

// IngestResult is the handoff receipt for a stored filing.
type IngestResult struct {
	ObjectKey string
	Filename  string
	// Enqueued is false when the object was stored but publishing failed.
	Enqueued bool
}
