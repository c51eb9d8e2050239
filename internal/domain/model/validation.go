package model

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// ValidationDetails is the per-check breakdown of a scoring run.
type ValidationDetails struct {
	KYCScore           int             `json:"kyc_score"`
	DebtCapacityRatio  decimal.Decimal `json:"debt_capacity_ratio"`
	BlacklistPassed    bool            `json:"blacklist_passed"`
	RiskCentralsPassed bool            `json:"risk_centrals_passed"`
	FraudScore         int             `json:"fraud_score"`
	DocumentCompletion int             `json:"document_completion"`
}

// ValidationResult is the outcome of the automatic validations. Errors make
// Passed false; warnings never do.
type ValidationResult struct {
	Passed      bool              `json:"passed"`
	Score       int               `json:"score"`
	Details     ValidationDetails `json:"details"`
	Warnings    []string          `json:"warnings"`
	Errors      []string          `json:"errors"`
	EvaluatedAt time.Time         `json:"evaluated_at"`
}

// SameOutcome compares two results ignoring when they were computed.
func (r ValidationResult) SameOutcome(other ValidationResult) bool {
	a, b := r.Details, other.Details
	return r.Passed == other.Passed &&
		r.Score == other.Score &&
		a.KYCScore == b.KYCScore &&
		a.DebtCapacityRatio.Equal(b.DebtCapacityRatio) &&
		a.BlacklistPassed == b.BlacklistPassed &&
		a.RiskCentralsPassed == b.RiskCentralsPassed &&
		a.FraudScore == b.FraudScore &&
		a.DocumentCompletion == b.DocumentCompletion &&
		slices.Equal(r.Warnings, other.Warnings) &&
		slices.Equal(r.Errors, other.Errors)
}
