package ports

// Observability hands out loggers and metrics scoped to a
// component name that is attached to every log line and metric.
type Observability interface {
	ComponentsScoped(component string) (Logger, Metrics, error)
	LoggerScoped(component string) (Logger, error)
	MetricsScoped(component string) (Metrics, error)
}

// Logger is the structured logger used across the gateway.
// Fields are passed as alternating key/value pairs.
type Logger interface {
	Info(msg string, fields ...interface{})

	// Error logs a failure. Pass the error under the "error" key.
	Error(msg string, fields ...interface{})

	// WithFields returns a child logger that adds fields to every entry,
	// e.g. request_id.
	WithFields(fields map[string]interface{}) Logger
}

// Metrics records counters, histograms and gauges.
type Metrics interface {
	IncrementCounter(name string, tags map[string]string)

	// RecordHistogram records latencies and sizes.
	RecordHistogram(name string, value float64, tags map[string]string)

	RecordGauge(name string, value float64, tags map[string]string)

	// WithTags returns a Metrics that adds tags to every measurement.
	WithTags(tags map[string]string) Metrics
}
