package config

import (
	"github.com/harshkrt/FinAgent/shared/utils"
)

// parse reads configuration from environment variables
func parse() *Config {
	return &Config{
		Environment: utils.GetEnvFirst("local", "ENVIRONMENT", "ENV"),
		ServiceName: utils.GetEnv("SERVICE_NAME", ""),
		LogLevel:    utils.GetEnv("LOG_LEVEL", ""),
		LogFormat:   utils.GetEnv("LOG_FORMAT", ""),
		Version:     utils.GetEnv("SERVICE_VERSION", ""),

		Adapters: AdapterConfig{
			Runtime: utils.GetEnv("ADAPTER_RUNTIME", ""),
			Storage: utils.GetEnv("ADAPTER_STORAGE", ""),
			Queue:   utils.GetEnv("ADAPTER_QUEUE", ""),
			Metrics: utils.GetEnv("ADAPTER_METRICS", ""),
		},

		HTTP: HTTPConfig{
			Addr:            utils.GetEnv("HTTP_ADDR", ""),
			ReadTimeout:     utils.GetEnvDuration("HTTP_READ_TIMEOUT", 0),
			WriteTimeout:    utils.GetEnvDuration("HTTP_WRITE_TIMEOUT", 0),
			ShutdownTimeout: utils.GetEnvDuration("HTTP_SHUTDOWN_TIMEOUT", 0),
			MaxUploadBytes:  utils.GetEnvInt64("HTTP_MAX_UPLOAD_BYTES", 0),
		},

		Lambda: LambdaConfig{
			Timeout: utils.GetEnvDuration("LAMBDA_TIMEOUT", 0),
		},

		Fetch: FetchConfig{
			Timeout:      utils.GetEnvDuration("FETCH_TIMEOUT", 0),
			MaxRedirects: utils.GetEnvInt("FETCH_MAX_REDIRECTS", unsetRedirects),
			MaxBytes:     utils.GetEnvInt64("FETCH_MAX_BYTES", 0),
			UserAgent:    utils.GetEnv("FETCH_USER_AGENT", ""),
		},

		Storage: StorageConfig{
			Bucket:  utils.GetEnvFirst("", "S3_BUCKET_NAME", "STORAGE_BUCKET"),
			Timeout: utils.GetEnvDuration("STORAGE_TIMEOUT", 0),
			Path:    utils.GetEnv("STORAGE_PATH", ""),
			S3: S3Config{
				Region:          utils.GetEnv("AWS_REGION", ""),
				AccessKeyID:     utils.GetEnvFirst("", "MINIO_ROOT_USER", "AWS_ACCESS_KEY_ID"),
				SecretAccessKey: utils.GetEnvFirst("", "MINIO_ROOT_PASSWORD", "AWS_SECRET_ACCESS_KEY"),
				Endpoint:        utils.GetEnv("S3_ENDPOINT", ""),
				UsePathStyle:    utils.GetEnvBool("S3_USE_PATH_STYLE", true),
			},
		},

		Queue: QueueConfig{
			Name:           utils.GetEnv("QUEUE_NAME", ""),
			PublishTimeout: utils.GetEnvDuration("QUEUE_PUBLISH_TIMEOUT", 0),

			RabbitMQ: RabbitMQConfig{
				URL:         utils.GetEnv("RABBITMQ_URL", ""),
				Host:        utils.GetEnv("RABBITMQ_HOST", ""),
				Port:        utils.GetEnvInt("RABBITMQ_PORT", 0),
				Username:    utils.GetEnv("RABBITMQ_USER", ""),
				Password:    utils.GetEnv("RABBITMQ_PASS", ""),
				VHost:       utils.GetEnv("RABBITMQ_VHOST", ""),
				DialTimeout: utils.GetEnvDuration("RABBITMQ_DIAL_TIMEOUT", 0),
			},

			SQS: SQSConfig{
				Region:   utils.GetEnvFirst("", "SQS_REGION", "AWS_REGION"),
				Endpoint: utils.GetEnv("SQS_ENDPOINT", ""),
			},
		},
	}
}
