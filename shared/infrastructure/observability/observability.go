package observability

import (
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/harshkrt/FinAgent/shared/application/ports"
	"github.com/harshkrt/FinAgent/shared/infrastructure/config"
	promadapter "github.com/harshkrt/FinAgent/shared/infrastructure/observability/adapters/prometheus"
	"github.com/harshkrt/FinAgent/shared/infrastructure/observability/adapters/stdout"
)

type observability struct {
	config  *config.Config
	logger  ports.Logger
	metrics ports.Metrics
}

// CreateObservability builds the logger writing to out and the metrics
// adapter selected by ADAPTER_METRICS. reg is only used by the prometheus
// adapter.
func CreateObservability(cfg *config.Config, out io.Writer, reg prometheus.Registerer) (ports.Observability, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}

	logger := stdout.NewLogger(out, cfg.LogLevel, cfg.LogFormat)

	var metrics ports.Metrics
	switch cfg.Adapters.Metrics {
	case "prometheus":
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		m, err := promadapter.New(reg, cfg.ServiceName)
		if err != nil {
			return nil, fmt.Errorf("failed to register prometheus metrics: %w", err)
		}
		metrics = m
	case "stdout":
		metrics = stdout.NewMetrics(logger.Slog())
	default:
		return nil, fmt.Errorf("unsupported metrics adapter: %s", cfg.Adapters.Metrics)
	}

	return New(cfg, logger, metrics), nil
}

// New wraps an existing logger and metrics pair.
func New(cfg *config.Config, logger ports.Logger, metrics ports.Metrics) ports.Observability {
	return &observability{
		config:  cfg,
		logger:  logger,
		metrics: metrics,
	}
}

var errNotInitialized = errors.New("observability not initialized")

// ComponentsScoped returns a logger and metrics that carry the component
// name plus the service, version and env of the process.
func (obs *observability) ComponentsScoped(component string) (ports.Logger, ports.Metrics, error) {
	logger, err := obs.LoggerScoped(component)
	if err != nil {
		return nil, nil, err
	}
	metrics, err := obs.MetricsScoped(component)
	if err != nil {
		return nil, nil, err
	}
	return logger, metrics, nil
}

func (obs *observability) LoggerScoped(component string) (ports.Logger, error) {
	if obs.logger == nil {
		return nil, errNotInitialized
	}
	fields := make(map[string]interface{})
	for k, v := range obs.scope(component) {
		fields[k] = v
	}
	return obs.logger.WithFields(fields), nil
}

func (obs *observability) MetricsScoped(component string) (ports.Metrics, error) {
	if obs.metrics == nil {
		return nil, errNotInitialized
	}
	return obs.metrics.WithTags(obs.scope(component)), nil
}

func (obs *observability) scope(component string) map[string]string {
	tags := map[string]string{"component": component}
	if obs.config != nil {
		tags["service"] = obs.config.ServiceName
		tags["version"] = obs.config.Version
		tags["env"] = obs.config.Environment
	}
	return tags
}
