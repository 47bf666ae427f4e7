package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/harshkrt/FinAgent/shared/application/ports"
	"github.com/harshkrt/FinAgent/shared/domain/filing"
	"github.com/harshkrt/FinAgent/workers/gateway/internal/domain"
)

// Fetcher downloads a filing from a source URL. The Content-Type header is
// checked before any of the body is read.
type Fetcher struct {
	httpClient ports.HTTPClient
	maxBytes   int64
	logger     ports.Logger
	metrics    ports.Metrics
}

func NewFetcher(httpClient ports.HTTPClient, maxBytes int64, logger ports.Logger, metrics ports.Metrics) *Fetcher {
	return &Fetcher{
		httpClient: httpClient,
		maxBytes:   maxBytes,
		logger:     logger,
		metrics:    metrics,
	}
}

func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*domain.FetchedDocument, error) {
	start := time.Now()
	defer func() {
		f.metrics.RecordHistogram("fetch.duration", time.Since(start).Seconds(), nil)
	}()

	u, err := parseSourceURL(rawURL)
	if err != nil {
		f.metrics.IncrementCounter("fetch.failed", map[string]string{"reason": "invalid_url"})
		return nil, err
	}

	body, headers, err := f.httpClient.Download(ctx, u.String(), nil)
	if err != nil {
		f.metrics.IncrementCounter("fetch.failed", map[string]string{"reason": "network"})
		f.logger.Error("failed to fetch document", "url", u.Redacted(), "error", err)
		return nil, filing.NetworkFailure(fmt.Sprintf("failed to download file from URL %s", u.Redacted()), err)
	}
	defer body.Close()

	contentType := headers["Content-Type"]
	if !filing.AllowedContentType(contentType) {
		f.metrics.IncrementCounter("fetch.failed", map[string]string{"reason": "content_type"})
		f.logger.Info("rejected fetched document", "url", u.Redacted(), "content_type", contentType)
		return nil, filing.UnsupportedContentType(contentType)
	}

	reader := io.Reader(body)
	if f.maxBytes > 0 {
		reader = io.LimitReader(body, f.maxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		f.metrics.IncrementCounter("fetch.failed", map[string]string{"reason": "read"})
		return nil, filing.NetworkFailure("failed to read response body", err)
	}
	if f.maxBytes > 0 && int64(len(data)) > f.maxBytes {
		f.metrics.IncrementCounter("fetch.failed", map[string]string{"reason": "too_large"})
		return nil, filing.NetworkFailure(fmt.Sprintf("response body exceeds %d bytes", f.maxBytes), nil)
	}

	f.metrics.RecordHistogram("fetch.bytes", float64(len(data)), nil)

	return &domain.FetchedDocument{
		Body:        bytes.NewReader(data),
		Filename:    filing.FilenameFromURL(u),
		ContentType: contentType,
		Size:        int64(len(data)),
		SourceURL:   u.String(),
	}, nil
}

// parseSourceURL rejects URLs that can never be fetched. They are reported
// as fetch failures, not retryable.
func parseSourceURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, filing.NewIngestionError(filing.CodeNetworkFailure, "failed to fetch file: invalid source_url", err, false)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, filing.NewIngestionError(filing.CodeNetworkFailure, "failed to fetch file: only HTTP and HTTPS URLs are supported", nil, false)
	}
	if u.Host == "" {
		return nil, filing.NewIngestionError(filing.CodeNetworkFailure, "failed to fetch file: source_url has no host", nil, false)
	}
	return u, nil
}
