package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"golang.org/x/sync/singleflight"

	"github.com/harshkrt/FinAgent/shared/application/ports"
	"github.com/harshkrt/FinAgent/shared/infrastructure/config"
)

type sqsAPI interface {
	GetQueueUrl(ctx context.Context, params *sqs.GetQueueUrlInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error)
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSQueue publishes to Amazon SQS. SendMessage only succeeds once SQS has
// stored the message redundantly, which matches a confirmed persistent
// RabbitMQ publish.
type SQSQueue struct {
	client  sqsAPI
	logger  ports.Logger
	metrics ports.Metrics

	// queue name -> URL, resolved once per name
	urls    sync.Map
	resolve singleflight.Group
}

func NewSQSQueue(ctx context.Context, cfg *config.SQSConfig, obs ports.Observability) (*SQSQueue, error) {
	logger, metrics, err := obs.ComponentsScoped("queue.sqs")
	if err != nil {
		return nil, fmt.Errorf("failed to get observability components: %w", err)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithRetryMaxAttempts(1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	logger.Info("SQS queue ready", "region", cfg.Region, "endpoint", cfg.Endpoint)
	return newSQSQueue(client, logger, metrics), nil
}

func newSQSQueue(client sqsAPI, logger ports.Logger, metrics ports.Metrics) *SQSQueue {
	return &SQSQueue{
		client:  client,
		logger:  logger,
		metrics: metrics,
	}
}

func (q *SQSQueue) Publish(ctx context.Context, message *ports.QueueMessage) error {
	target := message.Target
	started := time.Now()
	defer func() {
		q.metrics.RecordHistogram("queue.publish.duration", time.Since(started).Seconds(),
			map[string]string{"target": target})
	}()

	body, err := encodeBody(message.Body)
	if err != nil {
		q.recordError(target, "marshal_failed")
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	queueURL, err := q.queueURL(ctx, target)
	if err != nil {
		q.logger.Error("SQS queue lookup failed", "queue", target, "error", err)
		q.recordError(target, "queue_url_failed")
		return err
	}

	out, err := q.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"content_type": {DataType: aws.String("String"), StringValue: aws.String("application/json")},
		},
	})
	if err != nil {
		q.logger.Error("SQS send failed", "queue", target, "error", err)
		q.recordError(target, "send_failed")
		return fmt.Errorf("failed to send message to %s: %w", target, err)
	}

	q.logger.Info("Message stored by SQS",
		"queue", target,
		"message_id", aws.ToString(out.MessageId),
		"bytes", len(body))
	q.metrics.IncrementCounter("queue.publish.success", map[string]string{"target": target})
	return nil
}

// queueURL resolves name once; concurrent first callers share one lookup.
func (q *SQSQueue) queueURL(ctx context.Context, name string) (string, error) {
	if cached, ok := q.urls.Load(name); ok {
		return cached.(string), nil
	}

	v, err, _ := q.resolve.Do(name, func() (interface{}, error) {
		out, err := q.client.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{QueueName: aws.String(name)})
		if err != nil {
			return "", fmt.Errorf("failed to get queue URL for %s: %w", name, err)
		}
		url := aws.ToString(out.QueueUrl)
		q.urls.Store(name, url)
		return url, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (q *SQSQueue) recordError(target, reason string) {
	q.metrics.IncrementCounter("queue.publish.error", map[string]string{"target": target, "error": reason})
}

func (q *SQSQueue) Close() error {
	return nil
}
