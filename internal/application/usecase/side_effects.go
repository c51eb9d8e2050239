package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bibbank/credit-service/internal/domain/model"
	"github.com/bibbank/credit-service/internal/domain/port"
	vo "github.com/bibbank/credit-service/internal/domain/valueobject"
)

const (
	resourceCreditApplication = "credit_application"
	resourceApprovalRules     = "approval_rules"
	defaultSideEffectTimeout  = 5 * time.Second
)

// SideEffects dispatches audit records and notifications after a write has
// committed. Failures are logged and counted but never returned: the state
// change already happened and the outbox carries the durable copy.
type SideEffects struct {
	notifier port.NotificationSink
	audit    port.AuditSink
	metrics  port.Metrics
	logger   *slog.Logger
	timeout  time.Duration
}

// NewSideEffects wires the sinks. A nil logger means slog.Default().
func NewSideEffects(notifier port.NotificationSink, audit port.AuditSink, metrics port.Metrics, logger *slog.Logger) *SideEffects {
	if logger == nil {
		logger = slog.Default()
	}
	return &SideEffects{
		notifier: notifier,
		audit:    audit,
		metrics:  metrics,
		logger:   logger,
		timeout:  defaultSideEffectTimeout,
	}
}

// Audit records one action. The caller's cancellation does not abort it.
func (s *SideEffects) Audit(ctx context.Context, r port.AuditRecord) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()
	if err := s.audit.LogAction(ctx, r); err != nil {
		s.metrics.SideEffectFailed("audit")
		s.logger.WarnContext(ctx, "audit record not delivered",
			"application_id", r.ResourceID, "action", r.Action, "error", err)
	}
}

// Notify delivers one notification.
func (s *SideEffects) Notify(ctx context.Context, n port.Notification) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.metrics.SideEffectFailed("notification")
		s.logger.WarnContext(ctx, "notification not delivered",
			"application_id", n.ResourceRef, "action", n.Type, "user_id", n.UserID, "error", err)
	}
}

// Transition audits a status change, counts it and, for returns to the
// commercial channel, tells the submitter.
func (s *SideEffects) Transition(ctx context.Context, actorID string, t vo.Transition, before, after model.CreditApplication, description string) {
	s.metrics.TransitionApplied(t.From.String(), t.To.String(), t.Action.String())
	s.Audit(ctx, port.AuditRecord{
		Action:        t.Action.String(),
		ResourceType:  resourceCreditApplication,
		ResourceID:    after.ID(),
		ActorID:       actorID,
		Description:   description,
		PreviousState: before.Status().String(),
		NewState:      after.Status().String(),
	})
	if t.To != vo.StatusCommercialReturned {
		return
	}
	last, _ := after.LastReturn()
	s.Notify(ctx, port.Notification{
		UserID:      after.SubmitterID(),
		Type:        "CREDIT_APPLICATION_RETURNED",
		Title:       fmt.Sprintf("Application %s returned", after.Radication()),
		Message:     last.Reason,
		Priority:    "HIGH",
		ResourceRef: after.ID(),
	})
}
