package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/bibbank/credit-service/internal/domain/errs"
	"github.com/bibbank/credit-service/internal/domain/model"
	"github.com/bibbank/credit-service/internal/domain/port"
)

// ---------------------------------------------------------------------------
// ScoringEngine – automatic validations
// ---------------------------------------------------------------------------

// Thresholds of the automatic validations.
const (
	kycErrorBelow      = 60
	kycWarnBelow       = 75
	fraudErrorAbove    = 70
	fraudWarnFrom      = 50
	minPhoneDigits     = 7
	documentsCompleted = 100

	// ratioDisplayPlaces is the precision ratios are reported with.
	ratioDisplayPlaces = 4
)

var (
	debtErrorAbove = decimal.RequireFromString("0.7")
	debtWarnFrom   = decimal.RequireFromString("0.5")
)

// Weights of the total score. They sum to 1.
var (
	weightKYC          = decimal.RequireFromString("0.30")
	weightDebt         = decimal.RequireFromString("0.25")
	weightBlacklist    = decimal.RequireFromString("0.20")
	weightRiskCentrals = decimal.RequireFromString("0.15")
	weightFraud        = decimal.RequireFromString("0.05")
	weightDocuments    = decimal.RequireFromString("0.05")
)

var hundredDec = decimal.NewFromInt(100)

// ScoringEngine computes the creditworthiness score and its breakdown.
// It is deterministic given deterministic oracles and a fixed clock.
type ScoringEngine struct {
	blacklist port.BlacklistChecker
	risk      port.RiskCentralsChecker
}

// NewScoringEngine returns an engine consulting the given oracles.
func NewScoringEngine(blacklist port.BlacklistChecker, risk port.RiskCentralsChecker) *ScoringEngine {
	return &ScoringEngine{blacklist: blacklist, risk: risk}
}

// Evaluate runs every check against a and returns the full result. Oracle
// failures are returned as external-dependency errors; nothing is cached.
func (e *ScoringEngine) Evaluate(ctx context.Context, a model.Applicant, at time.Time) (model.ValidationResult, error) {
	const op = "run automatic validations"

	blacklisted, err := e.blacklist.IsBlacklisted(ctx, a.DocumentType, a.DocumentNumber)
	if err != nil {
		return model.ValidationResult{}, errs.External(op+": blacklist", err)
	}
	adverse, err := e.risk.HasAdverseRecords(ctx, a)
	if err != nil {
		return model.ValidationResult{}, errs.External(op+": risk centrals", err)
	}

	d := model.ValidationDetails{
		KYCScore:           KYCScore(a, at),
		DebtCapacityRatio:  DebtCapacityRatio(a.Financials),
		BlacklistPassed:    !blacklisted,
		RiskCentralsPassed: !adverse,
		FraudScore:         FraudScore(a, at),
		DocumentCompletion: DocumentCompletion(a),
	}

	return classify(d, at), nil
}

// PreScreenInput is the raw data of a public pre-approval request.
type PreScreenInput struct {
	MonthlyIncome   decimal.Decimal
	MonthlyExpenses decimal.Decimal
	RequestedAmount decimal.Decimal
	TermMonths      int
	Age             int
	ContractType    string
	TenureMonths    int
}

// PreScreen scores raw inputs without an applicant record. The oracles are
// not consulted and contact data is not assessed, so blacklist and risk
// centrals count as passed and documentation as complete.
func PreScreen(in PreScreenInput, at time.Time) (model.ValidationResult, error) {
	const op = "pre-screen"
	f := model.Financials{
		MonthlyIncome:   in.MonthlyIncome,
		MonthlyExpenses: in.MonthlyExpenses,
		RequestedAmount: in.RequestedAmount,
		TermMonths:      in.TermMonths,
	}
	if err := f.Validate(); err != nil {
		return model.ValidationResult{}, err
	}
	if in.Age <= 0 {
		return model.ValidationResult{}, errs.Validation(op, "age must be positive")
	}
	if in.TenureMonths < 0 {
		return model.ValidationResult{}, errs.Validation(op, "tenure must not be negative")
	}

	a := model.Applicant{
		DateOfBirth: at.AddDate(-in.Age, 0, 0),
		Employment:  model.Employment{ContractType: in.ContractType},
		Financials:  f,
	}
	if in.TenureMonths > 0 {
		a.Employment.AdmissionDate = at.AddDate(0, -in.TenureMonths, 0)
	}

	d := model.ValidationDetails{
		KYCScore:           KYCScore(a, at),
		DebtCapacityRatio:  DebtCapacityRatio(f),
		BlacklistPassed:    true,
		RiskCentralsPassed: true,
		FraudScore:         min(financialFraudSignals(a, at), 100),
		DocumentCompletion: documentsCompleted,
	}
	return classify(d, at), nil
}

func classify(d model.ValidationDetails, at time.Time) model.ValidationResult {
	result := model.ValidationResult{
		Score:       TotalScore(d),
		Details:     d,
		Warnings:    []string{},
		Errors:      []string{},
		EvaluatedAt: at,
	}

	switch {
	case d.KYCScore < kycErrorBelow:
		result.Errors = append(result.Errors, fmt.Sprintf("KYC score %d is below %d", d.KYCScore, kycErrorBelow))
	case d.KYCScore < kycWarnBelow:
		result.Warnings = append(result.Warnings, fmt.Sprintf("KYC score %d is below %d", d.KYCScore, kycWarnBelow))
	}
	shownRatio := d.DebtCapacityRatio.Round(ratioDisplayPlaces)
	switch {
	case d.DebtCapacityRatio.GreaterThan(debtErrorAbove):
		result.Errors = append(result.Errors, fmt.Sprintf("debt capacity ratio %s exceeds %s", shownRatio, debtErrorAbove))
	case d.DebtCapacityRatio.GreaterThanOrEqual(debtWarnFrom):
		result.Warnings = append(result.Warnings, fmt.Sprintf("debt capacity ratio %s is at or above %s", shownRatio, debtWarnFrom))
	}
	if !d.BlacklistPassed {
		result.Errors = append(result.Errors, "document is blacklisted")
	}
	if !d.RiskCentralsPassed {
		result.Errors = append(result.Errors, "adverse records in risk centrals")
	}
	switch {
	case d.FraudScore > fraudErrorAbove:
		result.Errors = append(result.Errors, fmt.Sprintf("fraud score %d exceeds %d", d.FraudScore, fraudErrorAbove))
	case d.FraudScore >= fraudWarnFrom:
		result.Warnings = append(result.Warnings, fmt.Sprintf("fraud score %d is at or above %d", d.FraudScore, fraudWarnFrom))
	}
	if d.DocumentCompletion < documentsCompleted {
		result.Warnings = append(result.Warnings, fmt.Sprintf("documentation %d%% complete", d.DocumentCompletion))
	}

	result.Passed = len(result.Errors) == 0
	result.Details.DebtCapacityRatio = shownRatio
	return result
}

// KYCScore starts at 50 and adds points for age band, income tier, contract
// type and tenure, capped at 100.
func KYCScore(a model.Applicant, at time.Time) int {
	score := 50

	switch age := a.AgeAt(at); {
	case age >= 25 && age <= 55:
		score += 15
	case age >= 18 && age <= 24:
		score += 5
	case age >= 56 && age <= 65:
		score += 10
	}

	income := a.Financials.MonthlyIncome
	switch {
	case income.GreaterThanOrEqual(decimal.NewFromInt(5_000_000)):
		score += 20
	case income.GreaterThanOrEqual(decimal.NewFromInt(3_000_000)):
		score += 15
	case income.GreaterThanOrEqual(decimal.NewFromInt(2_000_000)):
		score += 10
	case income.GreaterThanOrEqual(decimal.NewFromInt(1_000_000)):
		score += 5
	}

	switch strings.ToUpper(a.Employment.ContractType) {
	case model.ContractPermanent, model.ContractIndefinite:
		score += 10
	case model.ContractFixedTerm:
		score += 5
	}

	switch tenure := a.TenureMonthsAt(at); {
	case tenure >= 24:
		score += 5
	case tenure >= 12:
		score += 3
	}

	return min(score, 100)
}

// DebtCapacityRatio is expenses over income, or 1 when there is no income.
// The quotient is not rounded; thresholds compare against it as is.
func DebtCapacityRatio(f model.Financials) decimal.Decimal {
	if !f.MonthlyIncome.IsPositive() {
		return decimal.NewFromInt(1)
	}
	return f.MonthlyExpenses.Div(f.MonthlyIncome)
}

// FraudScore adds risk signals, capped at 100.
func FraudScore(a model.Applicant, at time.Time) int {
	score := 0
	if digits(a.Phone) < minPhoneDigits {
		score += 20
	}
	if digits(a.Employment.CompanyPhone) < minPhoneDigits {
		score += 15
	}
	return min(score+financialFraudSignals(a, at), 100)
}

func financialFraudSignals(a model.Applicant, at time.Time) int {
	score := 0
	requested := a.Financials.RequestedAmount
	income := a.Financials.MonthlyIncome
	switch {
	case requested.IsPositive() && !income.IsPositive():
		score += 30
	case income.IsPositive():
		ratio := requested.Div(income)
		if ratio.GreaterThan(decimal.NewFromInt(20)) {
			score += 30
		} else if ratio.GreaterThan(decimal.NewFromInt(10)) {
			score += 15
		}
	}

	if age := a.AgeAt(at); age >= 0 && (age < 18 || age > 80) {
		score += 25
	}
	return score
}

// DocumentCompletion is the percentage of required fields that are filled.
func DocumentCompletion(a model.Applicant) int {
	checks := []bool{
		a.FirstName != "",
		a.LastName != "",
		a.DocumentType != "",
		a.DocumentNumber != "",
		a.Email != "",
		a.Phone != "",
		!a.DateOfBirth.IsZero(),
		a.Employment.Company != "",
		a.Employment.Position != "",
		a.Employment.ContractType != "",
		!a.Employment.AdmissionDate.IsZero(),
		a.Financials.MonthlyIncome.IsPositive(),
		a.Financials.RequestedAmount.IsPositive(),
		a.Financials.TermMonths > 0,
	}
	filled := 0
	for _, ok := range checks {
		if ok {
			filled++
		}
	}
	return filled * 100 / len(checks)
}

// TotalScore weighs the sub-scores into a 0-100 integer.
func TotalScore(d model.ValidationDetails) int {
	debtScore := hundredDec.Sub(d.DebtCapacityRatio.Mul(hundredDec))
	if debtScore.IsNegative() {
		debtScore = decimal.Zero
	}
	total := decimal.NewFromInt(int64(d.KYCScore)).Mul(weightKYC).
		Add(debtScore.Mul(weightDebt)).
		Add(passPoints(d.BlacklistPassed).Mul(weightBlacklist)).
		Add(passPoints(d.RiskCentralsPassed).Mul(weightRiskCentrals)).
		Add(decimal.NewFromInt(int64(100 - d.FraudScore)).Mul(weightFraud)).
		Add(decimal.NewFromInt(int64(d.DocumentCompletion)).Mul(weightDocuments))
	return int(total.Round(0).IntPart())
}

func passPoints(passed bool) decimal.Decimal {
	if passed {
		return hundredDec
	}
	return decimal.Zero
}

func digits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}
