package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/credit-service/internal/domain/errs"
)

// Contract types recognised by the scoring rules.
const (
	ContractPermanent  = "PERMANENT"
	ContractIndefinite = "INDEFINITE"
	ContractFixedTerm  = "FIXED_TERM"
	ContractServices   = "SERVICES"
	ContractSelfEmploy = "SELF_EMPLOYED"
)

// Reference kinds.
const (
	ReferencePersonal   = "PERSONAL"
	ReferenceLabor      = "LABOR"
	ReferenceCommercial = "COMMERCIAL"
)

// Employment describes the applicant's current job.
type Employment struct {
	Company       string    `json:"company"`
	CompanyPhone  string    `json:"company_phone"`
	Position      string    `json:"position"`
	ContractType  string    `json:"contract_type"`
	AdmissionDate time.Time `json:"admission_date"`
}

// Financials holds the declared amounts. Money is never float.
type Financials struct {
	MonthlyIncome   decimal.Decimal `json:"monthly_income"`
	MonthlyExpenses decimal.Decimal `json:"monthly_expenses"`
	RequestedAmount decimal.Decimal `json:"requested_amount"`
	TermMonths      int             `json:"term_months"`
}

// Reference is a contact the stage-2 reviewer may call.
type Reference struct {
	Kind         string `json:"kind"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship,omitempty"`
}

// Applicant is the snapshot of the requester's data held on an application.
type Applicant struct {
	FirstName        string      `json:"first_name"`
	LastName         string      `json:"last_name"`
	DocumentType     string      `json:"document_type"`
	DocumentNumber   string      `json:"document_number"`
	Email            string      `json:"email"`
	Phone            string      `json:"phone"`
	DateOfBirth      time.Time   `json:"date_of_birth"`
	Employment       Employment  `json:"employment"`
	Financials       Financials  `json:"financials"`
	References       []Reference `json:"references,omitempty"`
	CreditExperience string      `json:"credit_experience,omitempty"`
}

// FullName joins first and last name.
func (a Applicant) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// AgeAt returns completed years at the given instant, or -1 when the date of
// birth is unknown.
func (a Applicant) AgeAt(at time.Time) int {
	if a.DateOfBirth.IsZero() {
		return -1
	}
	return completedYears(a.DateOfBirth, at)
}

// TenureMonthsAt returns completed months since admission, or 0 when unknown.
func (a Applicant) TenureMonthsAt(at time.Time) int {
	from := a.Employment.AdmissionDate
	if from.IsZero() || at.Before(from) {
		return 0
	}
	months := (at.Year()-from.Year())*12 + int(at.Month()-from.Month())
	if at.Day() < from.Day() {
		months--
	}
	return max(months, 0)
}

// Validate checks the fields every submitted application must carry.
func (a Applicant) Validate() error {
	const op = "validate applicant"
	switch {
	case strings.TrimSpace(a.FirstName) == "" || strings.TrimSpace(a.LastName) == "":
		return errs.Validation(op, "applicant name is required")
	case strings.TrimSpace(a.DocumentNumber) == "":
		return errs.Validation(op, "document number is required")
	}
	return a.Financials.Validate()
}

// Validate checks the amounts are usable.
func (f Financials) Validate() error {
	const op = "validate financials"
	switch {
	case f.RequestedAmount.LessThanOrEqual(decimal.Zero):
		return errs.Validation(op, "requested amount must be positive")
	case f.TermMonths <= 0:
		return errs.Validation(op, "term must be at least one month")
	case f.MonthlyIncome.IsNegative():
		return errs.Validation(op, "monthly income cannot be negative")
	case f.MonthlyExpenses.IsNegative():
		return errs.Validation(op, "monthly expenses cannot be negative")
	}
	return nil
}

// ApplicantPatch is a partial update. Nil fields are left untouched.
type ApplicantPatch struct {
	FirstName        *string
	LastName         *string
	Email            *string
	Phone            *string
	DateOfBirth      *time.Time
	Company          *string
	CompanyPhone     *string
	Position         *string
	ContractType     *string
	AdmissionDate    *time.Time
	MonthlyIncome    *decimal.Decimal
	MonthlyExpenses  *decimal.Decimal
	RequestedAmount  *decimal.Decimal
	TermMonths       *int
	References       []Reference
	CreditExperience *string
}

// IsEmpty reports whether the patch changes nothing.
func (p ApplicantPatch) IsEmpty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Email == nil && p.Phone == nil &&
		p.DateOfBirth == nil && p.Company == nil && p.CompanyPhone == nil && p.Position == nil &&
		p.ContractType == nil && p.AdmissionDate == nil && p.MonthlyIncome == nil &&
		p.MonthlyExpenses == nil && p.RequestedAmount == nil && p.TermMonths == nil &&
		p.References == nil && p.CreditExperience == nil
}

// Apply returns a copy of a with the patch applied. The result is validated
// before it is returned so a bad patch never reaches the aggregate.
func (p ApplicantPatch) Apply(a Applicant) (Applicant, error) {
	next := a
	setString(&next.FirstName, p.FirstName)
	setString(&next.LastName, p.LastName)
	setString(&next.Email, p.Email)
	setString(&next.Phone, p.Phone)
	setString(&next.Employment.Company, p.Company)
	setString(&next.Employment.CompanyPhone, p.CompanyPhone)
	setString(&next.Employment.Position, p.Position)
	setString(&next.Employment.ContractType, p.ContractType)
	setString(&next.CreditExperience, p.CreditExperience)
	if p.DateOfBirth != nil {
		next.DateOfBirth = *p.DateOfBirth
	}
	if p.AdmissionDate != nil {
		next.Employment.AdmissionDate = *p.AdmissionDate
	}
	if p.MonthlyIncome != nil {
		next.Financials.MonthlyIncome = *p.MonthlyIncome
	}
	if p.MonthlyExpenses != nil {
		next.Financials.MonthlyExpenses = *p.MonthlyExpenses
	}
	if p.RequestedAmount != nil {
		next.Financials.RequestedAmount = *p.RequestedAmount
	}
	if p.TermMonths != nil {
		next.Financials.TermMonths = *p.TermMonths
	}
	if p.References != nil {
		next.References = append([]Reference(nil), p.References...)
	}
	if err := next.Validate(); err != nil {
		return a, err
	}
	return next, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func completedYears(from, to time.Time) int {
	years := to.Year() - from.Year()
	if to.Month() < from.Month() || (to.Month() == from.Month() && to.Day() < from.Day()) {
		years--
	}
	return years
}
