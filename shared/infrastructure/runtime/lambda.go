package runtime

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/harshkrt/FinAgent/shared/application/ports"
	"github.com/harshkrt/FinAgent/shared/infrastructure/config"
)

// handles Lambda runtime integration behind an API Gateway proxy
type lambdaRuntime struct {
	submitter
	config         *config.LambdaConfig
	maxUploadBytes int64
}

// NewLambdaRuntime creates a new Lambda runtime
func NewLambdaRuntime(cfg *config.LambdaConfig, maxUploadBytes int64, ingestor ports.Ingestor, obs ports.Observability) (ports.Runtime, error) {
	return newLambdaRuntime(cfg, maxUploadBytes, ingestor, obs)
}

func newLambdaRuntime(cfg *config.LambdaConfig, maxUploadBytes int64, ingestor ports.Ingestor, obs ports.Observability) (*lambdaRuntime, error) {
	if ingestor == nil {
		return nil, fmt.Errorf("failed to create runtime: ingestor is required")
	}
	logger, metrics, err := obs.ComponentsScoped("runtime.lambda")
	if err != nil {
		return nil, fmt.Errorf("failed to create runtime: observability was not initialized: %w", err)
	}

	return &lambdaRuntime{
		submitter: submitter{
			ingestor: ingestor,
			logger:   logger,
			metrics:  metrics,
		},
		config:         cfg,
		maxUploadBytes: maxUploadBytes,
	}, nil
}

// Start blocks serving invocations.
func (runtime *lambdaRuntime) Start() error {
	runtime.logStartup()
	lambda.Start(runtime.handleEvent)
	return nil
}

// Stop is a no-op, the Lambda service owns the process lifecycle.
func (runtime *lambdaRuntime) Stop(_ context.Context) error {
	return nil
}

// handleEvent is the main Lambda entry point
func (runtime *lambdaRuntime) handleEvent(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	invocation := runtime.trackInvocation(event)
	defer invocation.recordDuration()

	if runtime.config != nil && runtime.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, runtime.config.Timeout)
		defer cancel()
	}

	request, err := runtime.buildRequest(ctx, event)
	if err != nil {
		status, body := rejection(&malformedRequestError{err: err}, "")
		return runtime.respond(status, body, "")
	}
	id := requestID(request.Header)
	request.Header.Set(requestIDHeader, id)

	switch {
	case event.HTTPMethod == http.MethodPost && request.URL.Path == SubmissionPath:
		invocation.eventType = "submission"
		if runtime.maxUploadBytes > 0 && request.ContentLength > runtime.maxUploadBytes {
			body := errorResponse{
				Error:     fmt.Sprintf("request body exceeds %d bytes", runtime.maxUploadBytes),
				Reason:    reasonPayloadTooLarge,
				RequestID: id,
			}
			return runtime.respond(http.StatusRequestEntityTooLarge, body, id)
		}
		status, body := runtime.submit(request, id)
		return runtime.respond(status, body, id)

	case event.HTTPMethod == http.MethodGet && (request.URL.Path == "/" || request.URL.Path == "/healthz"):
		invocation.eventType = "health"
		return runtime.respond(http.StatusOK, statusResponse{Status: "ok"}, id)

	default:
		runtime.recordUnsupportedEvent(event)
		body := errorResponse{Error: "route not found", Reason: "not-found", RequestID: id}
		return runtime.respond(http.StatusNotFound, body, id)
	}
}

// buildRequest converts the proxy event into an *http.Request so the form
// parsing shared with the HTTP runtime applies.
func (runtime *lambdaRuntime) buildRequest(ctx context.Context, event events.APIGatewayProxyRequest) (*http.Request, error) {
	body := []byte(event.Body)
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 body: %w", err)
		}
		body = decoded
	}

	path := event.Path
	if path == "" {
		path = "/"
	}

	request, err := http.NewRequestWithContext(ctx, event.HTTPMethod, path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	for key, values := range event.MultiValueHeaders {
		for _, v := range values {
			request.Header.Add(key, v)
		}
	}
	for key, value := range event.Headers {
		if request.Header.Get(key) == "" {
			request.Header.Set(key, value)
		}
	}
	return request, nil
}

func (runtime *lambdaRuntime) respond(status int, body interface{}, id string) (events.APIGatewayProxyResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		runtime.logger.Error("Failed to encode response", "error", err)
		return events.APIGatewayProxyResponse{}, err
	}

	headers := map[string]string{"Content-Type": "application/json"}
	if id != "" {
		headers[requestIDHeader] = id
	}

	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       string(payload),
	}, nil
}

// --- Logging Helpers ---

func (runtime *lambdaRuntime) logStartup() {
	runtime.logger.Info("Starting Lambda runtime")
	runtime.metrics.IncrementCounter("lambda.starts", nil)
}

func (runtime *lambdaRuntime) recordUnsupportedEvent(event events.APIGatewayProxyRequest) {
	runtime.logger.Error("Unsupported route",
		"method", event.HTTPMethod,
		"path", strings.TrimSpace(event.Path))
	runtime.metrics.IncrementCounter("lambda.invocations.unsupported", nil)
}

// --- Metrics Helpers ---

// invocationTracker tracks metrics for a single invocation
type invocationTracker struct {
	runtime   *lambdaRuntime
	startTime time.Time
	eventType string
}

func (runtime *lambdaRuntime) trackInvocation(event events.APIGatewayProxyRequest) *invocationTracker {
	runtime.logger.Info("Lambda invoked",
		"method", event.HTTPMethod,
		"path", event.Path,
		"event_size", len(event.Body))
	runtime.metrics.IncrementCounter("lambda.invocations", nil)

	return &invocationTracker{
		runtime:   runtime,
		startTime: time.Now(),
	}
}

func (t *invocationTracker) recordDuration() {
	if t.eventType == "" {
		return
	}

	duration := time.Since(t.startTime)
	t.runtime.metrics.RecordHistogram("lambda.duration",
		duration.Seconds(),
		map[string]string{"event_type": t.eventType})
}
