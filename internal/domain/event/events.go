package event

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/credit-service/pkg/events"
)

// DomainEvent is an alias for the shared pkg/events.DomainEvent interface.
type DomainEvent = events.DomainEvent

// AggregateType is the aggregate name stamped on every credit event.
const AggregateType = "CreditApplication"

const (
	TypeApplicationCreated     = "credit.application.created"
	TypeStatusChanged          = "credit.application.status_changed"
	TypeApplicationReturned    = "credit.application.returned"
	TypeApplicantDataUpdated   = "credit.application.data_updated"
	TypeValidationsRecorded    = "credit.application.validations_recorded"
	TypeCommentAdded           = "credit.application.comment_added"
	TypeSignatureLinkGenerated = "credit.application.signature_link_generated"
	TypeDisbursementConfirmed  = "credit.application.disbursement_confirmed"
	TypeLegacyStatusMigrated   = "credit.application.legacy_status_migrated"
)

// ApplicationCreated is raised when an application is registered.
type ApplicationCreated struct {
	events.BaseEvent
	Radication      string          `json:"radication"`
	Source          string          `json:"source"`
	SubmitterID     string          `json:"submitter_id"`
	Status          string          `json:"status"`
	RequestedAmount decimal.Decimal `json:"requested_amount"`
	TermMonths      int             `json:"term_months"`
}

func NewApplicationCreated(
	applicationID, radication, source, submitterID, status string,
	amount decimal.Decimal, termMonths int, at time.Time,
) ApplicationCreated {
	return ApplicationCreated{
		BaseEvent:       events.NewBaseEvent(TypeApplicationCreated, applicationID, AggregateType, at),
		Radication:      radication,
		Source:          source,
		SubmitterID:     submitterID,
		Status:          status,
		RequestedAmount: amount,
		TermMonths:      termMonths,
	}
}

// StatusChanged is raised for every lifecycle transition.
type StatusChanged struct {
	events.BaseEvent
	Radication string `json:"radication"`
	From       string `json:"from"`
	To         string `json:"to"`
	Action     string `json:"action"`
	ActorID    string `json:"actor_id"`
	Reason     string `json:"reason,omitempty"`
}

func NewStatusChanged(applicationID, radication, from, to, action, actorID, reason string, at time.Time) StatusChanged {
	return StatusChanged{
		BaseEvent:  events.NewBaseEvent(TypeStatusChanged, applicationID, AggregateType, at),
		Radication: radication,
		From:       from,
		To:         to,
		Action:     action,
		ActorID:    actorID,
		Reason:     reason,
	}
}

// ApplicationReturned is raised when a reviewer sends an application back.
// Consumers use SubmitterID to notify the originating channel.
type ApplicationReturned struct {
	events.BaseEvent
	Radication     string `json:"radication"`
	ReturnedBy     string `json:"returned_by"`
	ReturnedTo     string `json:"returned_to"`
	PreviousStatus string `json:"previous_status"`
	Reason         string `json:"reason"`
	SubmitterID    string `json:"submitter_id"`
}

func NewApplicationReturned(
	applicationID, radication, returnedBy, returnedTo, previousStatus, reason, submitterID string, at time.Time,
) ApplicationReturned {
	return ApplicationReturned{
		BaseEvent:      events.NewBaseEvent(TypeApplicationReturned, applicationID, AggregateType, at),
		Radication:     radication,
		ReturnedBy:     returnedBy,
		ReturnedTo:     returnedTo,
		PreviousStatus: previousStatus,
		Reason:         reason,
		SubmitterID:    submitterID,
	}
}

// ApplicantDataUpdated is raised when a reviewer edits the applicant snapshot.
type ApplicantDataUpdated struct {
	events.BaseEvent
	ActorID string `json:"actor_id"`
}

func NewApplicantDataUpdated(applicationID, actorID string, at time.Time) ApplicantDataUpdated {
	return ApplicantDataUpdated{
		BaseEvent: events.NewBaseEvent(TypeApplicantDataUpdated, applicationID, AggregateType, at),
		ActorID:   actorID,
	}
}

// ValidationsRecorded is raised when a fresh scoring result is stored.
type ValidationsRecorded struct {
	events.BaseEvent
	Score  int  `json:"score"`
	Passed bool `json:"passed"`
}

func NewValidationsRecorded(applicationID string, score int, passed bool, at time.Time) ValidationsRecorded {
	return ValidationsRecorded{
		BaseEvent: events.NewBaseEvent(TypeValidationsRecorded, applicationID, AggregateType, at),
		Score:     score,
		Passed:    passed,
	}
}

type CommentAdded struct {
	events.BaseEvent
	AuthorID string `json:"author_id"`
}

func NewCommentAdded(applicationID, authorID string, at time.Time) CommentAdded {
	return CommentAdded{
		BaseEvent: events.NewBaseEvent(TypeCommentAdded, applicationID, AggregateType, at),
		AuthorID:  authorID,
	}
}

type SignatureLinkGenerated struct {
	events.BaseEvent
	URL     string `json:"url"`
	ActorID string `json:"actor_id"`
}

func NewSignatureLinkGenerated(applicationID, url, actorID string, at time.Time) SignatureLinkGenerated {
	return SignatureLinkGenerated{
		BaseEvent: events.NewBaseEvent(TypeSignatureLinkGenerated, applicationID, AggregateType, at),
		URL:       url,
		ActorID:   actorID,
	}
}

type DisbursementConfirmed struct {
	events.BaseEvent
	Amount  decimal.Decimal `json:"amount"`
	Method  string          `json:"method"`
	ActorID string          `json:"actor_id"`
}

func NewDisbursementConfirmed(applicationID string, amount decimal.Decimal, method, actorID string, at time.Time) DisbursementConfirmed {
	return DisbursementConfirmed{
		BaseEvent: events.NewBaseEvent(TypeDisbursementConfirmed, applicationID, AggregateType, at),
		Amount:    amount,
		Method:    method,
		ActorID:   actorID,
	}
}

// LegacyStatusMigrated is raised when a deprecated stored status is rewritten.
type LegacyStatusMigrated struct {
	events.BaseEvent
	From string `json:"from"`
	To   string `json:"to"`
}

func NewLegacyStatusMigrated(applicationID, from, to string, at time.Time) LegacyStatusMigrated {
	return LegacyStatusMigrated{
		BaseEvent: events.NewBaseEvent(TypeLegacyStatusMigrated, applicationID, AggregateType, at),
		From:      from,
		To:        to,
	}
}
