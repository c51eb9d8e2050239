package dto

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/credit-service/internal/domain/model"
	"github.com/bibbank/credit-service/internal/domain/service"
)

// DateLayout is the calendar-date format accepted for birth and admission dates.
const DateLayout = "2006-01-02"

// Actor is the authenticated caller. Role tags are trusted as given.
type Actor struct {
	ID    string   `json:"id"`
	Roles []string `json:"roles"`
}

// HasRole reports whether the actor carries role.
func (a Actor) HasRole(role string) bool {
	return slices.Contains(a.Roles, role)
}

// ---------------------------------------------------------------------------
// Request DTOs
// ---------------------------------------------------------------------------

// ApplicantInput carries the applicant snapshot of a new application.
type ApplicantInput struct {
	FirstName        string            `json:"first_name"`
	LastName         string            `json:"last_name"`
	DocumentType     string            `json:"document_type"`
	DocumentNumber   string            `json:"document_number"`
	Email            string            `json:"email"`
	Phone            string            `json:"phone"`
	DateOfBirth      string            `json:"date_of_birth"`
	Company          string            `json:"company"`
	CompanyPhone     string            `json:"company_phone"`
	Position         string            `json:"position"`
	ContractType     string            `json:"contract_type"`
	AdmissionDate    string            `json:"admission_date"`
	MonthlyIncome    decimal.Decimal   `json:"monthly_income"`
	MonthlyExpenses  decimal.Decimal   `json:"monthly_expenses"`
	RequestedAmount  decimal.Decimal   `json:"requested_amount"`
	TermMonths       int               `json:"term_months"`
	References       []model.Reference `json:"references,omitempty"`
	CreditExperience string            `json:"credit_experience,omitempty"`
}

// ApplicantPatchInput is a partial applicant update; nil fields are kept.
type ApplicantPatchInput struct {
	FirstName        *string           `json:"first_name,omitempty"`
	LastName         *string           `json:"last_name,omitempty"`
	Email            *string           `json:"email,omitempty"`
	Phone            *string           `json:"phone,omitempty"`
	DateOfBirth      *string           `json:"date_of_birth,omitempty"`
	Company          *string           `json:"company,omitempty"`
	CompanyPhone     *string           `json:"company_phone,omitempty"`
	Position         *string           `json:"position,omitempty"`
	ContractType     *string           `json:"contract_type,omitempty"`
	AdmissionDate    *string           `json:"admission_date,omitempty"`
	MonthlyIncome    *decimal.Decimal  `json:"monthly_income,omitempty"`
	MonthlyExpenses  *decimal.Decimal  `json:"monthly_expenses,omitempty"`
	RequestedAmount  *decimal.Decimal  `json:"requested_amount,omitempty"`
	TermMonths       *int              `json:"term_months,omitempty"`
	References       []model.Reference `json:"references,omitempty"`
	CreditExperience *string           `json:"credit_experience,omitempty"`
}

// CreateApplicationRequest registers a new application. Draft applications
// may be incomplete and are submitted later.
type CreateApplicationRequest struct {
	Actor     Actor          `json:"-"`
	Source    string         `json:"source"`
	Draft     bool           `json:"draft"`
	Applicant ApplicantInput `json:"applicant"`
}

// ApplicationRef identifies an application acted on by Actor.
type ApplicationRef struct {
	Actor         Actor  `json:"-"`
	ApplicationID string `json:"application_id"`
}

// ResubmitRequest sends a returned application back into review, optionally
// with corrected applicant data.
type ResubmitRequest struct {
	Actor         Actor                `json:"-"`
	ApplicationID string               `json:"application_id"`
	Note          string               `json:"note"`
	Patch         *ApplicantPatchInput `json:"patch,omitempty"`
}

// ListInboxRequest lists a stage's work queue.
type ListInboxRequest struct {
	Actor  Actor  `json:"-"`
	Stage  string `json:"stage"`
	Search string `json:"search"`
	Limit  int    `json:"limit"`
}

// ReferencesInput is the stage-2 reference verification payload.
type ReferencesInput struct {
	PersonalVerified   bool   `json:"personal_verified"`
	LaborVerified      bool   `json:"labor_verified"`
	CommercialVerified bool   `json:"commercial_verified"`
	Notes              string `json:"notes"`
}

// ProcessApplicationRequest is a reviewer decision.
type ProcessApplicationRequest struct {
	Actor         Actor  `json:"-"`
	ApplicationID string `json:"application_id"`
	Stage         string `json:"stage"`
	// Action is APPROVE, REJECT or RETURN.
	Action string `json:"action"`
	// Reason is the approval note, or the mandatory reason for REJECT and RETURN.
	Reason string `json:"reason"`
	// ReturnTo is "commercial" to return to the sales channel; empty returns
	// to the preceding stage.
	ReturnTo    string           `json:"return_to"`
	Attachments []string         `json:"attachments,omitempty"`
	References  *ReferencesInput `json:"references,omitempty"`
}

// UpdateApplicationDataRequest edits the applicant snapshot.
type UpdateApplicationDataRequest struct {
	Actor         Actor               `json:"-"`
	ApplicationID string              `json:"application_id"`
	Stage         string              `json:"stage"`
	Patch         ApplicantPatchInput `json:"patch"`
}

// AddCommentRequest appends a note.
type AddCommentRequest struct {
	Actor         Actor  `json:"-"`
	ApplicationID string `json:"application_id"`
	Text          string `json:"text"`
}

// ConfirmDisburseRequest confirms the payout instruction.
type ConfirmDisburseRequest struct {
	Actor         Actor           `json:"-"`
	ApplicationID string          `json:"application_id"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method"`
	BankName      string          `json:"bank_name"`
	AccountNumber string          `json:"account_number"`
	Reference     string          `json:"reference"`
}

// AdvanceLoanRequest moves a funded loan along (DISBURSE, ACTIVATE,
// COMPLETE or DEFAULT).
type AdvanceLoanRequest struct {
	Actor         Actor  `json:"-"`
	ApplicationID string `json:"application_id"`
	Action        string `json:"action"`
	Reason        string `json:"reason"`
}

// PreApprovalRequest holds raw financial inputs for a no-record evaluation.
type PreApprovalRequest struct {
	MonthlyIncome     decimal.Decimal  `json:"monthly_income"`
	MonthlyExpenses   decimal.Decimal  `json:"monthly_expenses"`
	RequestedAmount   decimal.Decimal  `json:"requested_amount"`
	TermMonths        int              `json:"term_months"`
	Age               int              `json:"age"`
	ContractType      string           `json:"contract_type"`
	TenureMonths      int              `json:"tenure_months"`
	AnnualRatePercent *decimal.Decimal `json:"annual_rate_percent,omitempty"`
}

// UpdateRulesRequest replaces the approval thresholds.
type UpdateRulesRequest struct {
	Actor Actor               `json:"-"`
	Rules service.RulesConfig `json:"rules"`
}

// EvaluateAutoApprovalRequest asks which auto-approval conditions hold.
type EvaluateAutoApprovalRequest struct {
	Actor             Actor           `json:"-"`
	RequestedAmount   decimal.Decimal `json:"requested_amount"`
	Score             int             `json:"score"`
	MonthlyIncome     decimal.Decimal `json:"monthly_income"`
	CurrentDebt       decimal.Decimal `json:"current_debt"`
	DocumentsVerified bool            `json:"documents_verified"`
}

// AmortizationRequest asks for a payment schedule.
type AmortizationRequest struct {
	Principal         decimal.Decimal `json:"principal"`
	AnnualRatePercent decimal.Decimal `json:"annual_rate_percent"`
	TermMonths        int             `json:"term_months"`
	// StartDate defaults to today.
	StartDate string `json:"start_date,omitempty"`
}

// MigrateLegacyStatusesRequest rewrites deprecated stored statuses.
type MigrateLegacyStatusesRequest struct {
	Actor  Actor `json:"-"`
	DryRun bool  `json:"dry_run"`
}

// ---------------------------------------------------------------------------
// Response DTOs
// ---------------------------------------------------------------------------

// ApplicationResponse is the external representation of a credit application.
type ApplicationResponse struct {
	ID             string                  `json:"id"`
	Radication     string                  `json:"radication"`
	RadicationDate time.Time               `json:"radication_date"`
	Source         string                  `json:"source"`
	SubmitterID    string                  `json:"submitter_id"`
	Status         string                  `json:"status"`
	ApprovalLevel  string                  `json:"approval_level"`
	ExpectedDays   int                     `json:"expected_approval_days"`
	AllowedActions []string                `json:"allowed_actions"`
	Applicant      model.Applicant         `json:"applicant"`
	StatusHistory  []model.StatusEntry     `json:"status_history"`
	ReturnHistory  []model.ReturnEntry     `json:"return_history"`
	Reviews        model.StageReviews      `json:"reviews"`
	Validations    *model.ValidationResult `json:"automatic_validations,omitempty"`
	Comments       []model.Comment         `json:"comments"`
	Signature      *model.SignatureLink    `json:"signature,omitempty"`
	Disbursement   *model.Disbursement     `json:"disbursement,omitempty"`
	Version        int                     `json:"version"`
	CreatedAt      time.Time               `json:"created_at"`
	UpdatedAt      time.Time               `json:"updated_at"`
}

// ApplicationSummary is an inbox row.
type ApplicationSummary struct {
	ID              string          `json:"id"`
	Radication      string          `json:"radication"`
	Status          string          `json:"status"`
	ApplicantName   string          `json:"applicant_name"`
	DocumentNumber  string          `json:"document_number"`
	RequestedAmount decimal.Decimal `json:"requested_amount"`
	TermMonths      int             `json:"term_months"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// InboxResponse lists a stage's queue.
type InboxResponse struct {
	Stage        string               `json:"stage"`
	Applications []ApplicationSummary `json:"applications"`
}

// TrackingResponse is what an applicant sees for a radication number.
type TrackingResponse struct {
	Radication     string    `json:"radication"`
	RadicationDate time.Time `json:"radication_date"`
	Status         string    `json:"status"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// StartReviewResponse reports where the application was routed.
type StartReviewResponse struct {
	Application  ApplicationResponse        `json:"application"`
	AutoApproved bool                       `json:"auto_approved"`
	AutoApproval service.AutoApprovalReport `json:"auto_approval"`
}

// PreApprovalResponse is the outcome of a public evaluation.
type PreApprovalResponse struct {
	Score          int                        `json:"score"`
	Recommendation string                     `json:"recommendation"`
	Details        model.ValidationDetails    `json:"details"`
	Warnings       []string                   `json:"warnings"`
	Errors         []string                   `json:"errors"`
	AutoApproval   service.AutoApprovalReport `json:"auto_approval"`
	ApprovalLevel  string                     `json:"approval_level"`
	ExpectedDays   int                        `json:"expected_approval_days"`
	Quote          *model.AmortizationPlan    `json:"quote,omitempty"`
}

// ApprovalLevelResponse names the authority that must grant an amount.
type ApprovalLevelResponse struct {
	Amount       decimal.Decimal `json:"amount"`
	Level        string          `json:"level"`
	ExpectedDays int             `json:"expected_approval_days"`
}

// MigrationResponse summarises a legacy status migration.
type MigrationResponse struct {
	Scanned  int      `json:"scanned"`
	Migrated int      `json:"migrated"`
	IDs      []string `json:"ids"`
	DryRun   bool     `json:"dry_run"`
}
