// internal/infrastructure/messaging/kafka/consumer.go
package kafka

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/your-org/campus-delivery-backend/internal/config"
	"github.com/your-org/campus-delivery-backend/internal/domain/order"
)

// messageReader abstracts kafka.Reader for testability
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Consumer reads order events back from the topic, so every API instance can
// feed its own websocket subscribers
type Consumer struct {
	reader messageReader
	logger logrus.FieldLogger
}

// NewConsumer creates a consumer in the given group
func NewConsumer(cfg config.KafkaConfig, groupID string, logger logrus.FieldLogger) *Consumer {
	return NewConsumerWith(kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     groupID,
		Topic:       cfg.OrderTopic,
		StartOffset: kafka.LastOffset,
	}), logger)
}

// NewConsumerWith wraps an existing reader
func NewConsumerWith(r messageReader, logger logrus.FieldLogger) *Consumer {
	return &Consumer{reader: r, logger: logger}
}

// Consume hands every decoded event to handler until ctx is done
func (c *Consumer) Consume(ctx context.Context, handler order.Publisher) error {
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			c.logger.WithError(err).Warn("Kafka read error")
			continue
		}

		var evt order.Event
		if err := json.Unmarshal(m.Value, &evt); err != nil {
			c.logger.WithError(err).WithField("offset", m.Offset).Warn("Skipping undecodable order event")
			continue
		}
		if evt.Type == "" {
			evt.Type = headerValue(m.Headers, eventTypeHeader)
		}

		c.logger.WithFields(logrus.Fields{
			"topic":     m.Topic,
			"partition": m.Partition,
			"offset":    m.Offset,
			"type":      evt.Type,
			"reference": evt.Reference,
		}).Debug("Kafka message consumed")

		if err := handler.Publish(ctx, evt); err != nil {
			c.logger.WithError(err).Warn("Order event handler error")
		}
	}
}

// Close closes the reader
func (c *Consumer) Close() error {
	return c.reader.Close()
}

func headerValue(headers []kafka.Header, key string) string {
	for _, h := range headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
