package runtime

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/harshkrt/FinAgent/shared/application/ports"
	"github.com/harshkrt/FinAgent/shared/infrastructure/config"
)

// Create creates the runtime selected by ADAPTER_RUNTIME. gatherer backs the
// /metrics endpoint of the HTTP runtime when the prometheus metrics adapter
// is selected.
func Create(cfg *config.Config, ingestor ports.Ingestor, obs ports.Observability, gatherer prometheus.Gatherer) (ports.Runtime, error) {
	switch cfg.Adapters.Runtime {
	case "lambda":
		return NewLambdaRuntime(&cfg.Lambda, cfg.HTTP.MaxUploadBytes, ingestor, obs)
	case "http":
		return NewHTTPRuntime(&cfg.HTTP, ingestor, metricsHandler(cfg, gatherer), obs)
	default:
		return nil, fmt.Errorf("unsupported runtime adapter: %s", cfg.Adapters.Runtime)
	}
}

func metricsHandler(cfg *config.Config, gatherer prometheus.Gatherer) http.Handler {
	if cfg.Adapters.Metrics != "prometheus" || gatherer == nil {
		return nil
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
