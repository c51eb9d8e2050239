package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/credit-service/internal/domain/valueobject"
)

// StatusEntry is one step of the append-only status timeline.
type StatusEntry struct {
	Status  valueobject.CreditStatus `json:"status"`
	At      time.Time                `json:"at"`
	ActorID string                   `json:"actor_id"`
	Reason  string                   `json:"reason,omitempty"`
}

// ReturnEntry records an application being sent back.
type ReturnEntry struct {
	ReturnedBy     string                   `json:"returned_by"`
	ReturnedByRole string                   `json:"returned_by_role"`
	ReturnedTo     string                   `json:"returned_to"`
	Reason         string                   `json:"reason"`
	At             time.Time                `json:"at"`
	PreviousStatus valueobject.CreditStatus `json:"previous_status"`
	Attachments    []string                 `json:"attachments,omitempty"`
}

// StageReview is the stamp a reviewer leaves on their stage.
type StageReview struct {
	ReviewerID string    `json:"reviewer_id"`
	ReviewedAt time.Time `json:"reviewed_at"`
	Notes      string    `json:"notes,omitempty"`
}

// ReferencesVerification is the stage-2 outcome of calling the references.
type ReferencesVerification struct {
	PersonalVerified   bool   `json:"personal_verified"`
	LaborVerified      bool   `json:"labor_verified"`
	CommercialVerified bool   `json:"commercial_verified"`
	Notes              string `json:"notes,omitempty"`
}

// StageReviews holds the optional stamp of each analyst stage.
type StageReviews struct {
	Analyst1   *StageReview            `json:"analyst1,omitempty"`
	Analyst2   *StageReview            `json:"analyst2,omitempty"`
	Analyst3   *StageReview            `json:"analyst3,omitempty"`
	References *ReferencesVerification `json:"references,omitempty"`
}

// For returns the stamp of stage, or nil.
func (r StageReviews) For(stage valueobject.Stage) *StageReview {
	switch stage {
	case valueobject.StageAnalyst1:
		return r.Analyst1
	case valueobject.StageAnalyst2:
		return r.Analyst2
	case valueobject.StageAnalyst3:
		return r.Analyst3
	}
	return nil
}

func (r StageReviews) with(stage valueobject.Stage, review StageReview) StageReviews {
	next := r
	switch stage {
	case valueobject.StageAnalyst1:
		next.Analyst1 = &review
	case valueobject.StageAnalyst2:
		next.Analyst2 = &review
	case valueobject.StageAnalyst3:
		next.Analyst3 = &review
	}
	return next
}

// Comment is a free-text note left by any authenticated actor.
type Comment struct {
	Text     string    `json:"text"`
	AuthorID string    `json:"author_id"`
	At       time.Time `json:"at"`
}

// SignatureLink is the contract-signing link handed to the applicant.
type SignatureLink struct {
	URL         string    `json:"url"`
	Token       string    `json:"token"`
	GeneratedBy string    `json:"generated_by"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Disbursement is the payout instruction confirmed by stage 3.
type Disbursement struct {
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method"`
	BankName      string          `json:"bank_name,omitempty"`
	AccountNumber string          `json:"account_number,omitempty"`
	Reference     string          `json:"reference,omitempty"`
	ConfirmedBy   string          `json:"confirmed_by"`
	ConfirmedAt   time.Time       `json:"confirmed_at"`
}
