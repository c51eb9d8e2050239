package model

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bibbank/credit-service/internal/domain/errs"
	"github.com/bibbank/credit-service/internal/domain/event"
	"github.com/bibbank/credit-service/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// CreditApplication aggregate root
// ---------------------------------------------------------------------------

// CreditApplication is an immutable aggregate. Every mutation returns a new
// copy carrying the domain events it raised.
//
// The status only changes through ApplyTransition or Return, both of which
// append exactly one status-history entry, so the last entry always matches
// the current status.
type CreditApplication struct {
	id             string
	radication     valueobject.RadicationNumber
	radicationDate time.Time
	source         valueobject.RadicationSource
	submitterID    string
	status         valueobject.CreditStatus
	storedStatus   string
	applicant      Applicant
	statusHistory  []StatusEntry
	returnHistory  []ReturnEntry
	reviews        StageReviews
	validations    *ValidationResult
	comments       []Comment
	signature      *SignatureLink
	disbursement   *Disbursement
	version        int
	createdAt      time.Time
	updatedAt      time.Time
	domainEvents   []event.DomainEvent
}

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

// NewCreditApplication registers a new application in DRAFT or SUBMITTED.
// Drafts may carry incomplete applicant data; submitted applications may not.
func NewCreditApplication(
	radication valueobject.RadicationNumber,
	source valueobject.RadicationSource,
	submitterID string,
	applicant Applicant,
	initial valueobject.CreditStatus,
	now time.Time,
) (CreditApplication, error) {
	const op = "new credit application"
	if radication.IsZero() {
		return CreditApplication{}, errs.Validation(op, "radication number is required")
	}
	if source.IsZero() {
		return CreditApplication{}, errs.Validation(op, "radication source is required")
	}
	if strings.TrimSpace(submitterID) == "" {
		return CreditApplication{}, errs.Validation(op, "submitter id is required")
	}
	switch initial {
	case valueobject.StatusSubmitted:
		if err := applicant.Validate(); err != nil {
			return CreditApplication{}, err
		}
	case valueobject.StatusDraft:
	default:
		return CreditApplication{}, errs.Validation(op, "applications start in DRAFT or SUBMITTED, not %s", initial)
	}

	id := uuid.NewString()
	app := CreditApplication{
		id:             id,
		radication:     radication,
		radicationDate: now,
		source:         source,
		submitterID:    submitterID,
		status:         initial,
		storedStatus:   initial.String(),
		applicant:      applicant,
		statusHistory: []StatusEntry{{
			Status:  initial,
			At:      now,
			ActorID: submitterID,
			Reason:  "application registered",
		}},
		version:   1,
		createdAt: now,
		updatedAt: now,
	}
	app.domainEvents = []event.DomainEvent{event.NewApplicationCreated(
		id, radication.String(), source.String(), submitterID, initial.String(),
		applicant.Financials.RequestedAmount, applicant.Financials.TermMonths, now,
	)}
	return app, nil
}

// CreditApplicationSnapshot is the flat persistence form of the aggregate.
type CreditApplicationSnapshot struct {
	ID             string
	Radication     string
	RadicationDate time.Time
	Source         string
	SubmitterID    string
	// Status is the raw stored value, which may be a legacy flat status.
	Status        string
	Applicant     Applicant
	StatusHistory []StatusEntry
	ReturnHistory []ReturnEntry
	Reviews       StageReviews
	Validations   *ValidationResult
	Comments      []Comment
	Signature     *SignatureLink
	Disbursement  *Disbursement
	Version       int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ReconstructCreditApplication rebuilds an aggregate from persistence without
// side-effects. The stored status is normalized here and nowhere else.
func ReconstructCreditApplication(s CreditApplicationSnapshot) (CreditApplication, error) {
	status, err := valueobject.NormalizeStatus(s.Status)
	if err != nil {
		return CreditApplication{}, err
	}
	radication, err := valueobject.ParseRadicationNumber(s.Radication)
	if err != nil {
		return CreditApplication{}, err
	}
	source, err := valueobject.NewRadicationSource(s.Source)
	if err != nil {
		return CreditApplication{}, err
	}
	return CreditApplication{
		id:             s.ID,
		radication:     radication,
		radicationDate: s.RadicationDate,
		source:         source,
		submitterID:    s.SubmitterID,
		status:         status,
		storedStatus:   s.Status,
		applicant:      s.Applicant,
		statusHistory:  s.StatusHistory,
		returnHistory:  s.ReturnHistory,
		reviews:        s.Reviews,
		validations:    s.Validations,
		comments:       s.Comments,
		signature:      s.Signature,
		disbursement:   s.Disbursement,
		version:        s.Version,
		createdAt:      s.CreatedAt,
		updatedAt:      s.UpdatedAt,
	}, nil
}

// Snapshot returns the persistence form. The Status field carries the raw
// stored value, so reading and saving a legacy row never rewrites it.
func (a CreditApplication) Snapshot() CreditApplicationSnapshot {
	return CreditApplicationSnapshot{
		ID:             a.id,
		Radication:     a.radication.String(),
		RadicationDate: a.radicationDate,
		Source:         a.source.String(),
		SubmitterID:    a.submitterID,
		Status:         a.storedStatus,
		Applicant:      a.applicant,
		StatusHistory:  slices.Clone(a.statusHistory),
		ReturnHistory:  slices.Clone(a.returnHistory),
		Reviews:        a.reviews,
		Validations:    a.validations,
		Comments:       slices.Clone(a.comments),
		Signature:      a.signature,
		Disbursement:   a.disbursement,
		Version:        a.version,
		CreatedAt:      a.createdAt,
		UpdatedAt:      a.updatedAt,
	}
}

// ---------------------------------------------------------------------------
// State transitions (each returns a new copy)
// ---------------------------------------------------------------------------

// ApplyTransition moves the application along t. It fails when t does not
// start from the current status, which is how a stale decision computed
// against an older read is caught.
func (a CreditApplication) ApplyTransition(t valueobject.Transition, actorID, reason string, now time.Time) (CreditApplication, error) {
	if !t.From.Equal(a.status) {
		return a, errs.IllegalTransition("apply transition", a.status.String(), t.Action.String())
	}
	next := a.touch(now)
	next.status = t.To
	next.storedStatus = t.To.String()
	next.statusHistory = append(slices.Clone(a.statusHistory), StatusEntry{
		Status:  t.To,
		At:      now,
		ActorID: actorID,
		Reason:  reason,
	})
	next.domainEvents = append(next.domainEvents, event.NewStatusChanged(
		a.id, a.radication.String(), t.From.String(), t.To.String(), t.Action.String(), actorID, reason, now,
	))
	return next, nil
}

// Return applies a RETURN transition and appends the matching return-history
// entry. PreviousStatus and At are filled in from the current state.
func (a CreditApplication) Return(t valueobject.Transition, entry ReturnEntry, now time.Time) (CreditApplication, error) {
	if t.Action != valueobject.ActionReturn {
		return a, errs.IllegalTransition("return application", a.status.String(), t.Action.String())
	}
	if strings.TrimSpace(entry.Reason) == "" {
		return a, errs.Validation("return application", "a reason is required to return an application")
	}
	next, err := a.ApplyTransition(t, entry.ReturnedBy, entry.Reason, now)
	if err != nil {
		return a, err
	}
	entry.PreviousStatus = a.status
	entry.At = now
	entry.Attachments = slices.Clone(entry.Attachments)
	next.returnHistory = append(slices.Clone(a.returnHistory), entry)
	next.domainEvents = append(next.domainEvents, event.NewApplicationReturned(
		a.id, a.radication.String(), entry.ReturnedBy, entry.ReturnedTo,
		a.status.String(), entry.Reason, a.submitterID, now,
	))
	return next, nil
}

// NormalizeStoredStatus rewrites a legacy stored status to its canonical
// value. The boolean is false when nothing needed rewriting.
func (a CreditApplication) NormalizeStoredStatus(now time.Time) (CreditApplication, bool) {
	if a.storedStatus == a.status.String() {
		return a, false
	}
	next := a.touch(now)
	next.storedStatus = a.status.String()
	next.domainEvents = append(next.domainEvents, event.NewLegacyStatusMigrated(a.id, a.storedStatus, a.status.String(), now))
	return next, true
}

// ---------------------------------------------------------------------------
// Non-status mutations
// ---------------------------------------------------------------------------

// RecordStageReview stamps stage's review metadata.
func (a CreditApplication) RecordStageReview(stage valueobject.Stage, review StageReview) CreditApplication {
	next := a.touch(review.ReviewedAt)
	next.reviews = a.reviews.with(stage, review)
	return next
}

// SetReferencesVerification stores the stage-2 reference checks.
func (a CreditApplication) SetReferencesVerification(v ReferencesVerification, now time.Time) CreditApplication {
	next := a.touch(now)
	next.reviews = a.reviews
	next.reviews.References = &v
	return next
}

// UpdateApplicant applies a partial update of the applicant snapshot.
func (a CreditApplication) UpdateApplicant(patch ApplicantPatch, actorID string, now time.Time) (CreditApplication, error) {
	if patch.IsEmpty() {
		return a, errs.Validation("update applicant", "no fields to update")
	}
	applicant, err := patch.Apply(a.applicant)
	if err != nil {
		return a, err
	}
	next := a.touch(now)
	next.applicant = applicant
	next.domainEvents = append(next.domainEvents, event.NewApplicantDataUpdated(a.id, actorID, now))
	return next, nil
}

// RecordValidations caches a fresh scoring result.
func (a CreditApplication) RecordValidations(result ValidationResult) CreditApplication {
	next := a.touch(result.EvaluatedAt)
	next.validations = &result
	next.domainEvents = append(next.domainEvents, event.NewValidationsRecorded(a.id, result.Score, result.Passed, result.EvaluatedAt))
	return next
}

// AddComment appends a note. Comments are never edited or removed.
func (a CreditApplication) AddComment(c Comment) (CreditApplication, error) {
	c.Text = strings.TrimSpace(c.Text)
	if c.Text == "" {
		return a, errs.Validation("add comment", "comment text is required")
	}
	next := a.touch(c.At)
	next.comments = append(slices.Clone(a.comments), c)
	next.domainEvents = append(next.domainEvents, event.NewCommentAdded(a.id, c.AuthorID, c.At))
	return next, nil
}

// AttachSignatureLink stores the link sent to the applicant.
func (a CreditApplication) AttachSignatureLink(link SignatureLink) CreditApplication {
	next := a.touch(link.GeneratedAt)
	next.signature = &link
	next.domainEvents = append(next.domainEvents, event.NewSignatureLinkGenerated(a.id, link.URL, link.GeneratedBy, link.GeneratedAt))
	return next
}

// RecordDisbursement stores the confirmed payout instruction.
func (a CreditApplication) RecordDisbursement(d Disbursement) CreditApplication {
	next := a.touch(d.ConfirmedAt)
	next.disbursement = &d
	next.domainEvents = append(next.domainEvents, event.NewDisbursementConfirmed(a.id, d.Amount, d.Method, d.ConfirmedBy, d.ConfirmedAt))
	return next
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (a CreditApplication) ID() string                               { return a.id }
func (a CreditApplication) Radication() valueobject.RadicationNumber { return a.radication }
func (a CreditApplication) RadicationDate() time.Time                { return a.radicationDate }
func (a CreditApplication) Source() valueobject.RadicationSource     { return a.source }
func (a CreditApplication) SubmitterID() string                      { return a.submitterID }
func (a CreditApplication) Status() valueobject.CreditStatus         { return a.status }
func (a CreditApplication) StoredStatus() string                     { return a.storedStatus }
func (a CreditApplication) Applicant() Applicant                     { return a.applicant }
func (a CreditApplication) StatusHistory() []StatusEntry             { return slices.Clone(a.statusHistory) }
func (a CreditApplication) ReturnHistory() []ReturnEntry             { return slices.Clone(a.returnHistory) }
func (a CreditApplication) Reviews() StageReviews                    { return a.reviews }
func (a CreditApplication) Validations() *ValidationResult           { return a.validations }
func (a CreditApplication) Comments() []Comment                      { return slices.Clone(a.comments) }
func (a CreditApplication) Signature() *SignatureLink                { return a.signature }
func (a CreditApplication) Disbursement() *Disbursement              { return a.disbursement }
func (a CreditApplication) Version() int                             { return a.version }
func (a CreditApplication) CreatedAt() time.Time                     { return a.createdAt }
func (a CreditApplication) UpdatedAt() time.Time                     { return a.updatedAt }
func (a CreditApplication) DomainEvents() []event.DomainEvent        { return a.domainEvents }

// LastReturn returns the most recent return entry.
func (a CreditApplication) LastReturn() (ReturnEntry, bool) {
	if len(a.returnHistory) == 0 {
		return ReturnEntry{}, false
	}
	return a.returnHistory[len(a.returnHistory)-1], true
}

// ClearEvents returns a copy with an empty event list (call after publishing).
func (a CreditApplication) ClearEvents() CreditApplication {
	next := a
	next.domainEvents = nil
	return next
}

// Committed returns the state a repository holds after a successful CAS
// update: the version is one higher and the pending events are gone.
func (a CreditApplication) Committed() CreditApplication {
	next := a.ClearEvents()
	next.version = a.version + 1
	return next
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func (a CreditApplication) touch(now time.Time) CreditApplication {
	next := a
	next.updatedAt = now
	next.domainEvents = slices.Clone(a.domainEvents)
	return next
}
