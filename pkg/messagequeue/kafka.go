package messagequeue

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
)

// KafkaQueue implements MessageQueue on Kafka topics.
type KafkaQueue struct {
	brokers []string
	groupID string
	dialer  *kafka.Dialer
	writer  *kafka.Writer

	mu      sync.Mutex
	readers []*kafka.Reader
}

// NewKafkaQueueConfig contains options for creating a new KafkaQueue.
type NewKafkaQueueConfig struct {
	Brokers []string
	GroupID string
	// Username and Password enable SASL/PLAIN over TLS when set.
	Username string
	Password string
}

// NewKafkaQueue creates a KafkaQueue. Connections are opened lazily.
func NewKafkaQueue(cfg NewKafkaQueueConfig) (*KafkaQueue, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: at least one broker is required")
	}

	dialer := &kafka.Dialer{Timeout: 10 * time.Second, DualStack: true}
	transport := &kafka.Transport{}
	if cfg.Username != "" {
		mech := plain.Mechanism{Username: cfg.Username, Password: cfg.Password}
		dialer.TLS = &tls.Config{MinVersion: tls.VersionTLS12}
		dialer.SASLMechanism = mech
		transport.TLS = &tls.Config{MinVersion: tls.VersionTLS12}
		transport.SASL = mech
	}

	return &KafkaQueue{
		brokers: cfg.Brokers,
		groupID: cfg.GroupID,
		dialer:  dialer,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireAll,
			Transport:    transport,
			WriteTimeout: 10 * time.Second,
		},
	}, nil
}

// Publish writes body to topic and waits for acknowledgement.
func (k *KafkaQueue) Publish(ctx context.Context, topic string, body []byte) error {
	err := k.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Value: body,
		Time:  time.Now(),
	})
	if err != nil {
		return fmt.Errorf("kafka: publish to %s: %w", topic, err)
	}
	return nil
}

// Consume reads topic as part of the configured consumer group. Offsets are
// committed after the handler returns, whether or not it failed.
func (k *KafkaQueue) Consume(ctx context.Context, topic string, handler Handler) error {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  k.brokers,
		GroupID:  k.groupID,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10e6,
		Dialer:   k.dialer,
	})
	k.mu.Lock()
	k.readers = append(k.readers, reader)
	k.mu.Unlock()
	defer reader.Close()

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			log.Printf("kafka: fetch error on %s: %v", topic, err)
			continue
		}
		if err := handler(ctx, msg.Value); err != nil {
			log.Printf("kafka: handler error on %s: %v", topic, err)
		}
		if err := reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			log.Printf("kafka: commit error on %s: %v", topic, err)
		}
	}
}

// Close flushes the writer and stops all readers.
func (k *KafkaQueue) Close() error {
	k.mu.Lock()
	readers := k.readers
	k.readers = nil
	k.mu.Unlock()

	var lastErr error
	for _, r := range readers {
		if err := r.Close(); err != nil {
			lastErr = err
		}
	}
	if err := k.writer.Close(); err != nil {
		lastErr = err
	}
	return lastErr
}
