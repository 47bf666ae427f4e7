package ports

import (
	"context"
)

// QueueMessage is a message to publish.
type QueueMessage struct {
	// Target is the queue name
	Target string
	// Body is JSON encoded before publishing. []byte bodies are sent as is.
	Body interface{}
}

// Queue publishes messages to a durable broker.
type Queue interface {
	// Publish returns nil only once the broker has accepted the message
	// for durable storage.
	Publish(ctx context.Context, message *QueueMessage) error

	Close() error
}
