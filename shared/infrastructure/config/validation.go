package config

import (
	"fmt"
	"strings"
)

// Validate validates the entire configuration
func (c *Config) Validate() error {
	var errors []string

	if c.ServiceName == "" {
		errors = append(errors, "SERVICE_NAME is required")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.LogLevel)] {
		errors = append(errors, fmt.Sprintf("invalid LOG_LEVEL: %s", c.LogLevel))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errors = append(errors, fmt.Sprintf("invalid LOG_FORMAT: %s (must be text or json)", c.LogFormat))
	}

	if err := c.Adapters.Validate(); err != nil {
		errors = append(errors, err.Error())
	}

	switch c.Adapters.Runtime {
	case "http":
		if err := c.HTTP.Validate(); err != nil {
			errors = append(errors, err.Error())
		}
	case "lambda":
		if c.Lambda.Timeout <= 0 {
			errors = append(errors, "LAMBDA_TIMEOUT must be positive")
		}
	}

	if err := c.Fetch.Validate(); err != nil {
		errors = append(errors, err.Error())
	}

	if err := c.Storage.Validate(c.Adapters); err != nil {
		errors = append(errors, err.Error())
	}

	if err := c.Queue.Validate(c.Adapters); err != nil {
		errors = append(errors, err.Error())
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

// Validate validates adapter configuration
func (a *AdapterConfig) Validate() error {
	var errors []string

	if a.Runtime != "http" && a.Runtime != "lambda" {
		errors = append(errors, fmt.Sprintf("invalid runtime adapter: %s (must be http or lambda)", a.Runtime))
	}
	if a.Storage != "s3" && a.Storage != "filesystem" {
		errors = append(errors, fmt.Sprintf("invalid storage adapter: %s (must be s3 or filesystem)", a.Storage))
	}
	if a.Queue != "rabbitmq" && a.Queue != "sqs" {
		errors = append(errors, fmt.Sprintf("invalid queue adapter: %s (must be rabbitmq or sqs)", a.Queue))
	}
	if a.Metrics != "prometheus" && a.Metrics != "stdout" {
		errors = append(errors, fmt.Sprintf("invalid metrics adapter: %s (must be prometheus or stdout)", a.Metrics))
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "; "))
	}
	return nil
}

// Validate validates HTTP server configuration
func (h *HTTPConfig) Validate() error {
	if h.Addr == "" {
		return fmt.Errorf("HTTP_ADDR is required for HTTP runtime")
	}
	if h.MaxUploadBytes <= 0 {
		return fmt.Errorf("HTTP_MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

func (f *FetchConfig) Validate() error {
	if f.Timeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT must be positive")
	}
	if f.MaxRedirects < 0 {
		return fmt.Errorf("FETCH_MAX_REDIRECTS cannot be negative")
	}
	if f.MaxBytes <= 0 {
		return fmt.Errorf("FETCH_MAX_BYTES must be positive")
	}
	return nil
}

// Validate checks the storage settings required by the selected adapter.
// A missing bucket or credential is fatal at startup.
func (s *StorageConfig) Validate(adapters AdapterConfig) error {
	var errors []string

	if s.Bucket == "" {
		errors = append(errors, "S3_BUCKET_NAME is required")
	}
	if s.Timeout <= 0 {
		errors = append(errors, "STORAGE_TIMEOUT must be positive")
	}

	switch adapters.Storage {
	case "s3":
		if s.S3.AccessKeyID == "" {
			errors = append(errors, "MINIO_ROOT_USER or AWS_ACCESS_KEY_ID is required for s3 storage")
		}
		if s.S3.SecretAccessKey == "" {
			errors = append(errors, "MINIO_ROOT_PASSWORD or AWS_SECRET_ACCESS_KEY is required for s3 storage")
		}
		if s.S3.Region == "" {
			errors = append(errors, "AWS_REGION is required for s3 storage")
		}
	case "filesystem":
		if s.Path == "" {
			errors = append(errors, "STORAGE_PATH is required for filesystem storage")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "; "))
	}
	return nil
}

func (q *QueueConfig) Validate(adapters AdapterConfig) error {
	if q.Name == "" {
		return fmt.Errorf("QUEUE_NAME is required")
	}
	if q.PublishTimeout <= 0 {
		return fmt.Errorf("QUEUE_PUBLISH_TIMEOUT must be positive")
	}

	switch adapters.Queue {
	case "rabbitmq":
		if q.RabbitMQ.URL == "" && q.RabbitMQ.Host == "" {
			return fmt.Errorf("RABBITMQ_HOST or RABBITMQ_URL is required for rabbitmq queue")
		}
	case "sqs":
		if q.SQS.Region == "" {
			return fmt.Errorf("SQS_REGION is required for sqs queue")
		}
	}
	return nil
}
