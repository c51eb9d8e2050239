package port

import (
	"context"

	"github.com/bibbank/credit-service/internal/domain/model"
)

// ---------------------------------------------------------------------------
// Side-effect sinks (best-effort, never fail a transition)
// ---------------------------------------------------------------------------

// Notification is a message for a platform user.
type Notification struct {
	UserID      string `json:"user_id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Message     string `json:"message"`
	Priority    string `json:"priority"`
	ResourceRef string `json:"resource_ref"`
}

// NotificationSink delivers notifications.
type NotificationSink interface {
	Notify(ctx context.Context, n Notification) error
}

// AuditRecord describes one action taken on a resource.
type AuditRecord struct {
	Action        string `json:"action"`
	ResourceType  string `json:"resource_type"`
	ResourceID    string `json:"resource_id"`
	ActorID       string `json:"actor_id"`
	Description   string `json:"description"`
	PreviousState string `json:"previous_state,omitempty"`
	NewState      string `json:"new_state,omitempty"`
}

// AuditSink records actions for compliance.
type AuditSink interface {
	LogAction(ctx context.Context, r AuditRecord) error
}

// ---------------------------------------------------------------------------
// Oracles consulted by the scoring engine
// ---------------------------------------------------------------------------

// BlacklistChecker reports whether an identity document is blacklisted.
type BlacklistChecker interface {
	IsBlacklisted(ctx context.Context, documentType, documentNumber string) (bool, error)
}

// RiskCentralsChecker reports whether the applicant has adverse records
// with the credit risk centrals.
type RiskCentralsChecker interface {
	HasAdverseRecords(ctx context.Context, applicant model.Applicant) (bool, error)
}

// SignatureProvider issues contract-signing links.
type SignatureProvider interface {
	CreateLink(ctx context.Context, applicationID, radication string) (url, token string, err error)
}

// ---------------------------------------------------------------------------
// Metrics
// ---------------------------------------------------------------------------

// Metrics records engine counters.
type Metrics interface {
	TransitionApplied(from, to, action string)
	SideEffectFailed(sink string)
	ConflictRetried()
}
