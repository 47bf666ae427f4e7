package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/harshkrt/FinAgent/shared/application/ports"
	"github.com/harshkrt/FinAgent/shared/infrastructure/config"
)

// ErrPublishNacked is returned when the broker refuses a published message.
var ErrPublishNacked = errors.New("broker did not acknowledge message")

type brokerConnection interface {
	Channel() (brokerChannel, error)
	Close() error
}

type brokerChannel interface {
	Confirm(noWait bool) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp091.Table) (amqp091.Queue, error)
	PublishWithDeferredConfirmWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) (confirmation, error)
	Close() error
}

type confirmation interface {
	WaitContext(ctx context.Context) (bool, error)
}

// dialer opens a broker connection.
type dialer func(url string, cfg amqp091.Config) (brokerConnection, error)

// RabbitMQQueue publishes persistent messages to durable queues on the
// default exchange. Every Publish opens and closes its own connection.
type RabbitMQQueue struct {
	url     string
	amqpCfg amqp091.Config
	dial    dialer
	logger  ports.Logger
	metrics ports.Metrics
}

func NewRabbitMQQueue(cfg *config.RabbitMQConfig, serviceName string, obs ports.Observability) (*RabbitMQQueue, error) {
	logger, metrics, err := obs.ComponentsScoped("queue.rabbitmq")
	if err != nil {
		return nil, fmt.Errorf("failed to get observability components: %w", err)
	}

	props := amqp091.NewConnectionProperties()
	props.SetClientConnectionName(serviceName)

	q := newRabbitMQQueue(cfg.ConnectionURL(), amqp091.Config{
		Dial:       amqp091.DefaultDial(cfg.DialTimeout),
		Properties: props,
	}, dialAMQP, logger, metrics)

	logger.Info("RabbitMQ publisher initialized", "host", cfg.Host, "vhost", cfg.VHost)
	return q, nil
}

func newRabbitMQQueue(url string, amqpCfg amqp091.Config, dial dialer, logger ports.Logger, metrics ports.Metrics) *RabbitMQQueue {
	return &RabbitMQQueue{
		url:     url,
		amqpCfg: amqpCfg,
		dial:    dial,
		logger:  logger,
		metrics: metrics,
	}
}

// Publish declares message.Target as a durable queue and publishes the body
// with persistent delivery, waiting for the broker's publisher confirm.
func (q *RabbitMQQueue) Publish(ctx context.Context, message *ports.QueueMessage) error {
	startTime := time.Now()
	defer func() {
		q.metrics.RecordHistogram("queue.publish.duration",
			time.Since(startTime).Seconds(),
			map[string]string{"target": message.Target})
	}()

	body, err := encodeBody(message.Body)
	if err != nil {
		q.logger.Error("failed to marshal message", "error", err)
		q.recordError(message.Target, "marshal_failed")
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	conn, err := q.dial(q.url, q.amqpCfg)
	if err != nil {
		q.logger.Error("failed to connect to RabbitMQ", "error", err)
		q.recordError(message.Target, "connect_failed")
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	defer conn.Close()

	channel, err := conn.Channel()
	if err != nil {
		q.logger.Error("failed to create channel", "error", err)
		q.recordError(message.Target, "channel_failed")
		return fmt.Errorf("failed to create channel: %w", err)
	}
	defer channel.Close()

	if err := channel.Confirm(false); err != nil {
		q.logger.Error("failed to enable publisher confirms", "error", err)
		q.recordError(message.Target, "confirm_mode_failed")
		return fmt.Errorf("failed to enable publisher confirms: %w", err)
	}

	_, err = channel.QueueDeclare(
		message.Target, // queue name
		true,           // durable
		false,          // auto-delete
		false,          // exclusive
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		q.logger.Error("failed to declare queue", "error", err, "queue", message.Target)
		q.recordError(message.Target, "declare_failed")
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	amqpMsg := amqp091.Publishing{
		DeliveryMode: amqp091.Persistent,
		ContentType:  "application/json",
		Body:         body,
		Timestamp:    time.Now().UTC(),
	}

	confirm, err := channel.PublishWithDeferredConfirmWithContext(
		ctx,
		"",             // default exchange
		message.Target, // routing key is the queue name
		false,          // mandatory
		false,          // immediate
		amqpMsg,
	)
	if err != nil {
		q.logger.Error("failed to publish message", "error", err, "target", message.Target)
		q.recordError(message.Target, "publish_failed")
		return fmt.Errorf("failed to publish message: %w", err)
	}

	acked, err := confirm.WaitContext(ctx)
	if err != nil {
		q.logger.Error("failed waiting for publisher confirm", "error", err, "target", message.Target)
		q.recordError(message.Target, "confirm_failed")
		return fmt.Errorf("failed waiting for publisher confirm: %w", err)
	}
	if !acked {
		q.logger.Error("message nacked by broker", "target", message.Target)
		q.recordError(message.Target, "nacked")
		return ErrPublishNacked
	}

	q.logger.Info("message published successfully", "target", message.Target, "size", len(body))
	q.metrics.IncrementCounter("queue.publish.success",
		map[string]string{"target": message.Target})

	return nil
}

// Close is a no-op; connections never outlive a Publish call.
func (q *RabbitMQQueue) Close() error {
	return nil
}

func (q *RabbitMQQueue) recordError(target, reason string) {
	q.metrics.IncrementCounter("queue.publish.error",
		map[string]string{"target": target, "error": reason})
}

func dialAMQP(url string, cfg amqp091.Config) (brokerConnection, error) {
	conn, err := amqp091.DialConfig(url, cfg)
	if err != nil {
		return nil, err
	}
	return &amqpConnection{conn: conn}, nil
}

type amqpConnection struct {
	conn *amqp091.Connection
}

func (c *amqpConnection) Channel() (brokerChannel, error) {
	ch, err := c.conn.Channel()
	if err != nil {
		return nil, err
	}
	return &amqpChannel{Channel: ch}, nil
}

func (c *amqpConnection) Close() error {
	return c.conn.Close()
}

type amqpChannel struct {
	*amqp091.Channel
}

func (c *amqpChannel) PublishWithDeferredConfirmWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) (confirmation, error) {
	dc, err := c.Channel.PublishWithDeferredConfirmWithContext(ctx, exchange, key, mandatory, immediate, msg)
	if err != nil {
		return nil, err
	}
	if dc == nil {
		return nil, fmt.Errorf("channel is not in confirm mode")
	}
	return dc, nil
}
