package adapter

import (
	"context"
	"log/slog"

	"github.com/bibbank/credit-service/internal/domain/port"
	"github.com/bibbank/credit-service/pkg/events"
)

// LogNotificationSink writes notifications to the log. The service uses it
// when no Kafka brokers are configured.
type LogNotificationSink struct {
	logger *slog.Logger
}

func NewLogNotificationSink(logger *slog.Logger) *LogNotificationSink {
	return &LogNotificationSink{logger: logger}
}

func (s *LogNotificationSink) Notify(ctx context.Context, n port.Notification) error {
	s.logger.InfoContext(ctx, "notification",
		"user_id", n.UserID,
		"type", n.Type,
		"priority", n.Priority,
		"resource_ref", n.ResourceRef,
	)
	return nil
}

// LogAuditSink writes audit records to the log.
type LogAuditSink struct {
	logger *slog.Logger
}

func NewLogAuditSink(logger *slog.Logger) *LogAuditSink {
	return &LogAuditSink{logger: logger}
}

func (s *LogAuditSink) LogAction(ctx context.Context, r port.AuditRecord) error {
	s.logger.InfoContext(ctx, "audit",
		"action", r.Action,
		"resource_type", r.ResourceType,
		"resource_id", r.ResourceID,
		"actor_id", r.ActorID,
		"previous_state", r.PreviousState,
		"new_state", r.NewState,
	)
	return nil
}

// LogEventPublisher stands in for the broker when the outbox relay runs
// without Kafka.
type LogEventPublisher struct {
	logger *slog.Logger
}

func NewLogEventPublisher(logger *slog.Logger) *LogEventPublisher {
	return &LogEventPublisher{logger: logger}
}

func (p *LogEventPublisher) Publish(ctx context.Context, entries ...events.OutboxEntry) error {
	for _, e := range entries {
		p.logger.InfoContext(ctx, "domain event",
			"event_id", e.ID,
			"event_type", e.EventType,
			"aggregate_id", e.AggregateID,
		)
	}
	return nil
}
