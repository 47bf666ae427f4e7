package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/harshkrt/FinAgent/shared/application/ports"
	"github.com/harshkrt/FinAgent/shared/infrastructure/config"
)

// StatusError is returned for responses outside the 2xx range.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d from %s", e.StatusCode, e.URL)
}

// Client implements the HTTPClient port. Requests are never retried.
type Client struct {
	client  *http.Client
	config  config.FetchConfig
	logger  ports.Logger
	metrics ports.Metrics
}

// CreateHTTPClient creates a client bounded by cfg.Timeout that follows at
// most cfg.MaxRedirects redirects.
func CreateHTTPClient(cfg config.FetchConfig, obs ports.Observability) (*Client, error) {
	logger, metrics, err := obs.ComponentsScoped("http.client")
	if err != nil {
		return nil, fmt.Errorf("failed to get observability components: %w", err)
	}
	return NewClient(cfg, logger, metrics), nil
}

func NewClient(cfg config.FetchConfig, logger ports.Logger, metrics ports.Metrics) *Client {
	maxRedirects := cfg.MaxRedirects
	return &Client{
		client: &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) > maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		config:  cfg,
		logger:  logger,
		metrics: metrics,
	}
}

// Download implements the HTTPClient interface
func (c *Client) Download(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, map[string]string, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.IncrementCounter("http.client.errors", map[string]string{"error_type": "transport"})
		c.logger.Error("Request failed", "url", url, "error", err)
		return nil, nil, fmt.Errorf("request failed: %w", err)
	}

	c.metrics.IncrementCounter("http.client.responses", map[string]string{"status": strconv.Itoa(resp.StatusCode)})
	c.metrics.RecordHistogram("http.client.duration", time.Since(start).Seconds(), nil)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		c.logger.Error("Unexpected response status", "url", url, "status", resp.StatusCode)
		return nil, nil, &StatusError{StatusCode: resp.StatusCode, URL: url}
	}

	responseHeaders := make(map[string]string, len(resp.Header))
	for key := range resp.Header {
		responseHeaders[key] = resp.Header.Get(key)
	}

	c.logger.Info("Response received",
		"url", url,
		"final_url", resp.Request.URL.String(),
		"status", resp.StatusCode,
		"content_type", resp.Header.Get("Content-Type"))

	return resp.Body, responseHeaders, nil
}
