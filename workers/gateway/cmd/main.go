package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/harshkrt/FinAgent/shared/application/ports"
	"github.com/harshkrt/FinAgent/shared/infrastructure/config"
	infrahttp "github.com/harshkrt/FinAgent/shared/infrastructure/http"
	"github.com/harshkrt/FinAgent/shared/infrastructure/observability"
	"github.com/harshkrt/FinAgent/shared/infrastructure/queue"
	"github.com/harshkrt/FinAgent/shared/infrastructure/runtime"
	"github.com/harshkrt/FinAgent/shared/infrastructure/storage"
	"github.com/harshkrt/FinAgent/workers/gateway/internal/service"
	"github.com/harshkrt/FinAgent/workers/gateway/internal/usecase"
)

func main() {
	cfg := loadConfiguration()

	deps := initializeDependencies(cfg)
	defer deps.queue.Close()

	app := buildApplication(cfg, deps)

	startApplication(cfg, app)
}

// Dependencies holds all initialized infrastructure components
type Dependencies struct {
	obs        ports.Observability
	storage    ports.Storage
	queue      ports.Queue
	httpClient ports.HTTPClient
}

// Application holds the complete application stack
type Application struct {
	runtime ports.Runtime
	logger  ports.Logger
	metrics ports.Metrics
}

func loadConfiguration() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	return cfg
}

// initializeDependencies sets up all infrastructure dependencies. Storage
// must be reachable and its bucket ensured before the service starts.
func initializeDependencies(cfg *config.Config) *Dependencies {
	obs, err := observability.CreateObservability(cfg, os.Stdout, prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("Failed to initialize observability: %v", err)
	}

	logStartup(cfg, obs)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Storage.Timeout)
	defer cancel()

	store, err := storage.Create(ctx, cfg, obs)
	if err != nil {
		recordInitFailure(obs, "storage", err)
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	q, err := queue.CreateQueue(ctx, cfg, obs)
	if err != nil {
		recordInitFailure(obs, "queue", err)
		log.Fatalf("Failed to initialize queue: %v", err)
	}

	httpClient, err := infrahttp.CreateHTTPClient(cfg.Fetch, obs)
	if err != nil {
		recordInitFailure(obs, "http_client", err)
		log.Fatalf("Failed to initialize HTTP client: %v", err)
	}

	return &Dependencies{
		obs:        obs,
		storage:    store,
		queue:      q,
		httpClient: httpClient,
	}
}

func logStartup(cfg *config.Config, obs ports.Observability) {
	logger, metrics, err := obs.ComponentsScoped("main")
	if err != nil {
		log.Fatalf("Failed to scope observability: %v", err)
	}

	logger.Info("Starting application",
		"service", cfg.ServiceName,
		"version", cfg.Version,
		"environment", cfg.Environment,
		"runtime", cfg.Adapters.Runtime,
		"storage", cfg.Adapters.Storage,
		"queue", cfg.Adapters.Queue)

	metrics.IncrementCounter("application.starts", nil)
}

func recordInitFailure(obs ports.Observability, component string, err error) {
	logger, metrics, scopeErr := obs.ComponentsScoped("main")
	if scopeErr != nil {
		return
	}
	logger.Error("Initialization failed", "component", component, "error", err)
	metrics.IncrementCounter("init.failures", map[string]string{"component": component})
}

// buildApplication wires the ingestion pipeline into the selected runtime
func buildApplication(cfg *config.Config, deps *Dependencies) *Application {
	fetchLogger, fetchMetrics, err := deps.obs.ComponentsScoped("fetcher")
	if err != nil {
		log.Fatalf("Failed to scope observability: %v", err)
	}
	fetcher := service.NewFetcher(deps.httpClient, cfg.Fetch.MaxBytes, fetchLogger, fetchMetrics)

	ingestLogger, ingestMetrics, err := deps.obs.ComponentsScoped("ingestor")
	if err != nil {
		log.Fatalf("Failed to scope observability: %v", err)
	}
	ingestor := usecase.NewIngestor(
		fetcher,
		deps.storage,
		deps.queue,
		cfg.Queue.Name,
		cfg.Queue.PublishTimeout,
		ingestLogger,
		ingestMetrics,
	)

	rt, err := runtime.Create(cfg, ingestor, deps.obs, prometheus.DefaultGatherer)
	if err != nil {
		log.Fatalf("Failed to create runtime: %v", err)
	}

	logger, metrics, err := deps.obs.ComponentsScoped("app")
	if err != nil {
		log.Fatalf("Failed to scope observability: %v", err)
	}

	return &Application{
		runtime: rt,
		logger:  logger,
		metrics: metrics,
	}
}

// startApplication runs the runtime until it fails or a termination signal
// arrives, then shuts it down within HTTP_SHUTDOWN_TIMEOUT.
func startApplication(cfg *config.Config, app *Application) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.logger.Info("Starting runtime", "adapter", cfg.Adapters.Runtime)
		return app.runtime.Start()
	})

	g.Go(func() error {
		<-gctx.Done()
		app.logger.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return app.runtime.Stop(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		app.logger.Error("Application stopped with error", "error", err)
		app.metrics.IncrementCounter("application.failures", nil)
		os.Exit(1)
	}

	app.logger.Info("Application stopped")
}
