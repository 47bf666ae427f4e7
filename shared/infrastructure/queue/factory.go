package queue

import (
	"context"
	"fmt"

	"github.com/harshkrt/FinAgent/shared/application/ports"
	"github.com/harshkrt/FinAgent/shared/infrastructure/config"
)

// CreateQueue builds the publisher selected by ADAPTER_QUEUE.
func CreateQueue(ctx context.Context, cfg *config.Config, obs ports.Observability) (ports.Queue, error) {
	logger, err := obs.LoggerScoped("queue.factory")
	if err != nil {
		return nil, fmt.Errorf("failed to get logger from observability: %w", err)
	}

	switch cfg.Adapters.Queue {
	case "rabbitmq":
		logger.Info("Creating RabbitMQ queue adapter",
			"host", cfg.Queue.RabbitMQ.Host,
			"queue", cfg.Queue.Name)
		q, err := NewRabbitMQQueue(&cfg.Queue.RabbitMQ, cfg.ServiceName, obs)
		if err != nil {
			return nil, err
		}
		return q, nil

	case "sqs":
		logger.Info("Creating SQS queue adapter",
			"region", cfg.Queue.SQS.Region,
			"queue", cfg.Queue.Name)
		q, err := NewSQSQueue(ctx, &cfg.Queue.SQS, obs)
		if err != nil {
			return nil, err
		}
		return q, nil

	default:
		return nil, fmt.Errorf("unsupported queue adapter: %s", cfg.Adapters.Queue)
	}
}
