// internal/infrastructure/messaging/kafka/publisher.go
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/your-org/campus-delivery-backend/internal/config"
	"github.com/your-org/campus-delivery-backend/internal/domain/order"
)

const eventTypeHeader = "event-type"

// messageWriter abstracts kafka.Writer for testability
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes order events to the order topic, keyed by reference
type Publisher struct {
	writer  messageWriter
	timeout time.Duration
}

// NewPublisher creates a synchronous publisher for the configured brokers
func NewPublisher(cfg config.KafkaConfig) *Publisher {
	return NewPublisherWith(&kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.OrderTopic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}, cfg.WriteTimeout)
}

// NewPublisherWith wraps an existing writer
func NewPublisherWith(w messageWriter, timeout time.Duration) *Publisher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Publisher{writer: w, timeout: timeout}
}

// Publish implements order.Publisher
func (p *Publisher) Publish(ctx context.Context, evt order.Event) error {
	value, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", evt.Type, err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(evt.Reference),
		Value:   value,
		Time:    evt.OccurredAt,
		Headers: []kafka.Header{{Key: eventTypeHeader, Value: []byte(evt.Type)}},
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s for %s: %w", evt.Type, evt.Reference, err)
	}
	return nil
}

// Close flushes and closes the writer
func (p *Publisher) Close() error {
	return p.writer.Close()
}
