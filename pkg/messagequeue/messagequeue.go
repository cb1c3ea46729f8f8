package messagequeue

import (
	"context"
	"errors"
)

var (
	// ErrQueueFull is returned when a bounded queue cannot accept more messages.
	ErrQueueFull = errors.New("message queue is full")
	// ErrClosed is returned when publishing to a closed queue.
	ErrClosed = errors.New("message queue is closed")
)

// Handler processes one message body. A returned error is logged by the driver
// and the message is not redelivered.
type Handler func(ctx context.Context, body []byte) error

// MessageQueue defines the interface for message queue services.
type MessageQueue interface {
	Publish(ctx context.Context, topic string, body []byte) error
	// Consume blocks, calling handler for each message on topic, until ctx is
	// done or the queue is closed.
	Consume(ctx context.Context, topic string, handler Handler) error
	Close() error
}

var (
	_ MessageQueue = (*MemoryQueue)(nil)
	_ MessageQueue = (*RabbitMQService)(nil)
	_ MessageQueue = (*KafkaQueue)(nil)
)
