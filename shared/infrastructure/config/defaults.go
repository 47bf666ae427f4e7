package config

import (
	"time"

	"github.com/harshkrt/FinAgent/shared/domain/filing"
)

const (
	defaultServiceName = "filing-gateway"
	defaultS3Endpoint  = "http://minio:9000"
	defaultRegion      = "us-east-1"
	defaultMaxBytes    = 100 << 20

	// FETCH_MAX_REDIRECTS=0 disables redirects, so unset needs its own marker
	unsetRedirects = -1
)

// applyDefaults fills every setting left empty by the environment
func applyDefaults(cfg *Config) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = defaultServiceName
	}
	if cfg.Version == "" {
		cfg.Version = "1.0.0"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
		if cfg.IsProduction() || IsLambda() {
			cfg.LogFormat = "json"
		}
	}

	applyAdapterDefaults(&cfg.Adapters)

	setDuration(&cfg.HTTP.ReadTimeout, 60*time.Second)
	setDuration(&cfg.HTTP.WriteTimeout, 120*time.Second)
	setDuration(&cfg.HTTP.ShutdownTimeout, 15*time.Second)
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8000"
	}
	if cfg.HTTP.MaxUploadBytes == 0 {
		cfg.HTTP.MaxUploadBytes = defaultMaxBytes
	}

	setDuration(&cfg.Lambda.Timeout, 60*time.Second)

	setDuration(&cfg.Fetch.Timeout, 30*time.Second)
	if cfg.Fetch.MaxRedirects == unsetRedirects {
		cfg.Fetch.MaxRedirects = 10
	}
	if cfg.Fetch.MaxBytes == 0 {
		cfg.Fetch.MaxBytes = defaultMaxBytes
	}
	if cfg.Fetch.UserAgent == "" {
		cfg.Fetch.UserAgent = cfg.ServiceName + "/" + cfg.Version
	}

	setDuration(&cfg.Storage.Timeout, 2*time.Minute)
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "/tmp/storage"
	}
	if cfg.Storage.S3.Region == "" {
		cfg.Storage.S3.Region = defaultRegion
	}
	if cfg.Storage.S3.Endpoint == "" && !IsLambda() {
		cfg.Storage.S3.Endpoint = defaultS3Endpoint
	}

	if cfg.Queue.Name == "" {
		cfg.Queue.Name = filing.ProcessingQueue
	}
	setDuration(&cfg.Queue.PublishTimeout, 10*time.Second)

	rmq := &cfg.Queue.RabbitMQ
	if rmq.Host == "" {
		rmq.Host = "rabbitmq"
	}
	if rmq.Port == 0 {
		rmq.Port = 5672
	}
	if rmq.Username == "" {
		rmq.Username = "guest"
	}
	if rmq.Password == "" {
		rmq.Password = "guest"
	}
	if rmq.VHost == "" {
		rmq.VHost = "/"
	}
	setDuration(&rmq.DialTimeout, 10*time.Second)

	if cfg.Queue.SQS.Region == "" {
		cfg.Queue.SQS.Region = cfg.Storage.S3.Region
	}
}

func applyAdapterDefaults(a *AdapterConfig) {
	if a.Runtime == "" {
		a.Runtime = "http"
		if IsLambda() {
			a.Runtime = "lambda"
		}
	}
	if a.Storage == "" {
		a.Storage = "s3"
	}
	if a.Queue == "" {
		a.Queue = "rabbitmq"
	}
	if a.Metrics == "" {
		a.Metrics = "prometheus"
	}
}

func setDuration(d *time.Duration, value time.Duration) {
	if *d <= 0 {
		*d = value
	}
}
