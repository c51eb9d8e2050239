package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/bibbank/credit-service/internal/domain/port"
	pkgkafka "github.com/bibbank/credit-service/pkg/kafka"
)

// Producer is the subset of *pkgkafka.Producer the sinks use.
type Producer interface {
	Publish(ctx context.Context, topic string, messages ...pkgkafka.Message) error
}

// NotificationSink implements port.NotificationSink by writing each
// notification to a Kafka topic consumed by the notification service.
type NotificationSink struct {
	producer Producer
	topic    string
	logger   *slog.Logger
}

// NewNotificationSink creates a sink targeting the given producer and topic.
func NewNotificationSink(producer Producer, topic string, logger *slog.Logger) *NotificationSink {
	return &NotificationSink{producer: producer, topic: topic, logger: logger}
}

// Notify serialises n and publishes it keyed by recipient.
func (s *NotificationSink) Notify(ctx context.Context, n port.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification %s: %w", n.Type, err)
	}

	s.logger.DebugContext(ctx, "publishing notification",
		"type", n.Type,
		"user_id", n.UserID,
		"topic", s.topic,
		"payload_size", len(payload),
	)

	msg := pkgkafka.Message{
		Key:   []byte(n.UserID),
		Value: payload,
		Headers: map[string]string{
			"notification_type": n.Type,
			"message_id":        uuid.NewString(),
		},
	}
	if err := s.producer.Publish(ctx, s.topic, msg); err != nil {
		return fmt.Errorf("failed to publish notification to topic %s: %w", s.topic, err)
	}
	return nil
}

// AuditSink implements port.AuditSink by writing audit records to Kafka.
type AuditSink struct {
	producer Producer
	topic    string
	logger   *slog.Logger
}

// NewAuditSink creates a sink targeting the given producer and topic.
func NewAuditSink(producer Producer, topic string, logger *slog.Logger) *AuditSink {
	return &AuditSink{producer: producer, topic: topic, logger: logger}
}

// LogAction serialises r and publishes it keyed by resource.
func (s *AuditSink) LogAction(ctx context.Context, r port.AuditRecord) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal audit record %s: %w", r.Action, err)
	}

	s.logger.DebugContext(ctx, "publishing audit record",
		"action", r.Action,
		"resource_id", r.ResourceID,
		"topic", s.topic,
	)

	msg := pkgkafka.Message{
		Key:   []byte(r.ResourceID),
		Value: payload,
		Headers: map[string]string{
			"action":        r.Action,
			"resource_type": r.ResourceType,
			"message_id":    uuid.NewString(),
		},
	}
	if err := s.producer.Publish(ctx, s.topic, msg); err != nil {
		return fmt.Errorf("failed to publish audit record to topic %s: %w", s.topic, err)
	}
	return nil
}
