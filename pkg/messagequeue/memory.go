package messagequeue

import (
	"context"
	"log"
	"sync"
	"time"
)

// MemoryQueue is an in-process queue backed by one buffered channel per topic.
type MemoryQueue struct {
	mu           sync.Mutex
	topics       map[string]chan []byte
	size         int
	closed       bool
	pending      sync.WaitGroup
	drainTimeout time.Duration
}

// NewMemoryQueueConfig contains options for creating a new MemoryQueue.
type NewMemoryQueueConfig struct {
	// BufferSize bounds each topic. Publishing to a full topic fails with ErrQueueFull.
	BufferSize int
	// DrainTimeout bounds how long Close waits for queued messages to be handled.
	DrainTimeout time.Duration
}

// NewMemoryQueue creates a MemoryQueue.
func NewMemoryQueue(cfg NewMemoryQueueConfig) *MemoryQueue {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 100
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = 5 * time.Second
	}
	return &MemoryQueue{
		topics:       make(map[string]chan []byte),
		size:         cfg.BufferSize,
		drainTimeout: cfg.DrainTimeout,
	}
}

// topic returns the channel for name. Callers hold q.mu.
func (q *MemoryQueue) topic(name string) chan []byte {
	ch, ok := q.topics[name]
	if !ok {
		ch = make(chan []byte, q.size)
		q.topics[name] = ch
	}
	return ch
}

// Publish enqueues body without blocking.
func (q *MemoryQueue) Publish(ctx context.Context, topic string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrClosed
	}
	msg := make([]byte, len(body))
	copy(msg, body)

	q.pending.Add(1)
	select {
	case q.topic(topic) <- msg:
		return nil
	default:
		q.pending.Done()
		return ErrQueueFull
	}
}

// Consume handles messages on topic until ctx is done or the queue is closed.
func (q *MemoryQueue) Consume(ctx context.Context, topic string, handler Handler) error {
	q.mu.Lock()
	ch := q.topic(topic)
	q.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case body, ok := <-ch:
			if !ok {
				return nil
			}
			if err := handler(ctx, body); err != nil {
				log.Printf("memory queue: handler error on topic %s: %v", topic, err)
			}
			q.pending.Done()
		}
	}
}

// Close stops accepting messages, waits up to the drain timeout for queued
// messages to be handled, then releases consumers.
func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	q.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		q.pending.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-time.After(q.drainTimeout):
		log.Printf("memory queue: closed with undelivered messages after %s", q.drainTimeout)
	}

	q.mu.Lock()
	for name, ch := range q.topics {
		close(ch)
		delete(q.topics, name)
	}
	q.mu.Unlock()
	return nil
}
