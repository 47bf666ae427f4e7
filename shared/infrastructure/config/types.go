package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Core settings
	Environment string
	ServiceName string
	LogLevel    string
	LogFormat   string // "text", "json"
	Version     string

	// Adapter selection
	Adapters AdapterConfig

	// Component configurations
	HTTP    HTTPConfig
	Lambda  LambdaConfig
	Fetch   FetchConfig
	Storage StorageConfig
	Queue   QueueConfig
}

// AdapterConfig specifies which implementations to use
type AdapterConfig struct {
	Runtime string // "http", "lambda"
	Storage string // "s3", "filesystem"
	Queue   string // "rabbitmq", "sqs"
	Metrics string // "prometheus", "stdout"
}

// HTTPConfig configures the inbound HTTP server
type HTTPConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MaxUploadBytes  int64
}

type LambdaConfig struct {
	Timeout time.Duration
}

// FetchConfig configures outbound downloads of source URLs
type FetchConfig struct {
	Timeout      time.Duration
	MaxRedirects int
	MaxBytes     int64
	UserAgent    string
}

type StorageConfig struct {
	Bucket  string
	Timeout time.Duration

	// Path is the base directory of the filesystem adapter
	Path string

	S3 S3Config
}

// S3Config holds S3 and MinIO settings
type S3Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	UsePathStyle    bool
}

type QueueConfig struct {
	// Name of the durable queue processing messages are published to
	Name           string
	PublishTimeout time.Duration

	RabbitMQ RabbitMQConfig
	SQS      SQSConfig
}

type RabbitMQConfig struct {
	// URL overrides the individual connection fields when set
	URL         string
	Host        string
	Port        int
	Username    string
	Password    string
	VHost       string
	DialTimeout time.Duration
}

// ConnectionURL returns the AMQP URL to dial.
func (r RabbitMQConfig) ConnectionURL() string {
	if r.URL != "" {
		return r.URL
	}

	u := url.URL{
		Scheme: "amqp",
		User:   url.UserPassword(r.Username, r.Password),
		Host:   fmt.Sprintf("%s:%d", r.Host, r.Port),
		Path:   "/" + r.VHost,
	}
	if r.VHost == "/" || r.VHost == "" {
		u.Path = "/"
	}
	return u.String()
}

type SQSConfig struct {
	Region   string
	Endpoint string
}
