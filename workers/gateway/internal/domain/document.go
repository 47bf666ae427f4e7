package domain

import "bytes"

// FetchedDocument is a remote document read fully into memory after its
// content type was accepted.
type FetchedDocument struct {
	Body        *bytes.Reader
	Filename    string
	ContentType string
	Size        int64
	SourceURL   string
}
