package kafka

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bibbank/credit-service/pkg/events"
	pkgkafka "github.com/bibbank/credit-service/pkg/kafka"
)

// OutboxPublisher writes stored outbox entries to the domain-event topic.
// The payload is published as stored, so consumers see the event JSON the
// aggregate produced.
type OutboxPublisher struct {
	producer Producer
	topic    string
	logger   *slog.Logger
}

// NewOutboxPublisher creates a publisher targeting the given producer and topic.
func NewOutboxPublisher(producer Producer, topic string, logger *slog.Logger) *OutboxPublisher {
	return &OutboxPublisher{producer: producer, topic: topic, logger: logger}
}

// Publish sends entries in order, keyed by aggregate so one application's
// events land on one partition.
func (p *OutboxPublisher) Publish(ctx context.Context, entries ...events.OutboxEntry) error {
	if len(entries) == 0 {
		return nil
	}

	messages := make([]pkgkafka.Message, 0, len(entries))
	for _, e := range entries {
		p.logger.DebugContext(ctx, "publishing domain event",
			"event_type", e.EventType,
			"aggregate_id", e.AggregateID,
			"topic", p.topic,
			"payload_size", len(e.Payload),
		)
		messages = append(messages, pkgkafka.Message{
			Key:     []byte(e.AggregateID),
			Value:   e.Payload,
			Headers: e.Headers(),
		})
	}

	if err := p.producer.Publish(ctx, p.topic, messages...); err != nil {
		return fmt.Errorf("failed to publish events to topic %s: %w", p.topic, err)
	}
	return nil
}
