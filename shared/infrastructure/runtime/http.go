package runtime

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/harshkrt/FinAgent/shared/application/ports"
	"github.com/harshkrt/FinAgent/shared/infrastructure/config"
)

// SubmissionPath is the route accepting filing submissions.
const SubmissionPath = "/api/v1/process-document"

// handles HTTP server runtime integration
type httpRuntime struct {
	submitter
	config         *config.HTTPConfig
	metricsHandler http.Handler
	server         *http.Server
	inFlight       atomic.Int64
}

// NewHTTPRuntime creates the HTTP runtime. metricsHandler is mounted on
// /metrics when not nil.
func NewHTTPRuntime(cfg *config.HTTPConfig, ingestor ports.Ingestor, metricsHandler http.Handler, obs ports.Observability) (ports.Runtime, error) {
	return newHTTPRuntime(cfg, ingestor, metricsHandler, obs)
}

func newHTTPRuntime(cfg *config.HTTPConfig, ingestor ports.Ingestor, metricsHandler http.Handler, obs ports.Observability) (*httpRuntime, error) {
	if ingestor == nil {
		return nil, fmt.Errorf("failed to create runtime: ingestor is required")
	}
	logger, metrics, err := obs.ComponentsScoped("runtime.http")
	if err != nil {
		return nil, fmt.Errorf("failed to create runtime: observability was not initialized: %w", err)
	}

	rt := &httpRuntime{
		submitter: submitter{
			ingestor: ingestor,
			logger:   logger,
			metrics:  metrics,
		},
		config:         cfg,
		metricsHandler: metricsHandler,
	}
	// built up front so Start and Stop never race on it; a Stop that lands
	// before Start makes ListenAndServe return ErrServerClosed at once
	rt.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      rt.routes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return rt, nil
}

// Start serves until Stop is called. It returns nil at once when Stop has
// already run.
func (httpRuntime *httpRuntime) Start() error {
	httpRuntime.logStartup()

	if err := httpRuntime.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Stop gracefully shuts down the HTTP server
func (httpRuntime *httpRuntime) Stop(ctx context.Context) error {
	httpRuntime.logger.Info("Shutting down HTTP server")
	return httpRuntime.server.Shutdown(ctx)
}

func (httpRuntime *httpRuntime) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+SubmissionPath, httpRuntime.handleSubmission)
	mux.HandleFunc("GET /{$}", httpRuntime.handleHealth)
	mux.HandleFunc("GET /healthz", httpRuntime.handleHealth)
	if httpRuntime.metricsHandler != nil {
		mux.Handle("GET /metrics", httpRuntime.metricsHandler)
	}
	return withRequestID(withRecovery(httpRuntime.logger, httpRuntime.metrics, mux))
}

func (httpRuntime *httpRuntime) handleSubmission(resWriter http.ResponseWriter, request *http.Request) {
	invocation := httpRuntime.trackRequest(request)
	defer invocation.recordDuration()

	if httpRuntime.config.MaxUploadBytes > 0 {
		request.Body = http.MaxBytesReader(resWriter, request.Body, httpRuntime.config.MaxUploadBytes)
	}

	status, body := httpRuntime.submit(request, request.Header.Get(requestIDHeader))
	invocation.status = status

	if err := writeJSON(resWriter, status, body); err != nil {
		httpRuntime.logger.Error("Failed to encode response", "error", err)
	}
}

func (httpRuntime *httpRuntime) handleHealth(resWriter http.ResponseWriter, _ *http.Request) {
	if err := writeJSON(resWriter, http.StatusOK, statusResponse{Status: "ok"}); err != nil {
		httpRuntime.logger.Error("Failed to encode response", "error", err)
	}
}

// --- Logging Helpers ---

func (httpRuntime *httpRuntime) logStartup() {
	httpRuntime.logger.Info("Starting HTTP adapter",
		"address", httpRuntime.config.Addr,
		"max_upload_bytes", httpRuntime.config.MaxUploadBytes,
		"metrics_endpoint", httpRuntime.metricsHandler != nil)
}

// --- Metrics Helpers ---

type requestTracker struct {
	httpRuntime *httpRuntime
	startTime   time.Time
	status      int
}

func (httpRuntime *httpRuntime) trackRequest(request *http.Request) *requestTracker {
	httpRuntime.logger.Info("HTTP request received",
		"method", request.Method,
		"path", request.URL.Path,
		"remote_addr", request.RemoteAddr,
		"request_id", request.Header.Get(requestIDHeader))
	httpRuntime.metrics.IncrementCounter("http.requests", nil)
	httpRuntime.metrics.RecordGauge("http.in_flight", float64(httpRuntime.inFlight.Add(1)), nil)

	return &requestTracker{
		httpRuntime: httpRuntime,
		startTime:   time.Now(),
	}
}

func (t *requestTracker) recordDuration() {
	t.httpRuntime.metrics.RecordGauge("http.in_flight", float64(t.httpRuntime.inFlight.Add(-1)), nil)

	duration := time.Since(t.startTime)
	t.httpRuntime.metrics.RecordHistogram("http.request.duration",
		duration.Seconds(),
		map[string]string{"status": fmt.Sprintf("%d", t.status)})
}
