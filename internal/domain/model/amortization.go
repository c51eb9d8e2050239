package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/credit-service/internal/domain/errs"
)

// workingPrecision is the number of decimal places carried between periods.
// Outputs are rounded to cents only when they leave the calculator.
const workingPrecision = 20

var (
	one           = decimal.NewFromInt(1)
	monthsPerYear = decimal.NewFromInt(12)
	hundred       = decimal.NewFromInt(100)
)

// AmortizationEntry is an immutable value object representing one period in an
// amortization schedule.
type AmortizationEntry struct {
	Period           int             `json:"period"`
	DueDate          time.Time       `json:"due_date"`
	Payment          decimal.Decimal `json:"payment"`
	Principal        decimal.Decimal `json:"principal"`
	Interest         decimal.Decimal `json:"interest"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}

// AmortizationPlan is the result of CalculateAmortization.
type AmortizationPlan struct {
	MonthlyPayment decimal.Decimal     `json:"monthly_payment"`
	TotalCost      decimal.Decimal     `json:"total_cost"`
	TotalInterest  decimal.Decimal     `json:"total_interest"`
	Schedule       []AmortizationEntry `json:"schedule"`
}

// CalculateAmortization computes a standard fixed-payment schedule.
//
//	monthlyRate = annualRatePercent / 100 / 12
//	payment     = P * r * (1+r)^n / ((1+r)^n - 1)   (P / n when r == 0)
//
// Entry i is due i months after start.
func CalculateAmortization(
	principal, annualRatePercent decimal.Decimal,
	termMonths int,
	start time.Time,
) (AmortizationPlan, error) {
	const op = "calculate amortization"
	if termMonths <= 0 {
		return AmortizationPlan{}, errs.Validation(op, "term must be a positive number of months, got %d", termMonths)
	}
	if principal.LessThanOrEqual(decimal.Zero) {
		return AmortizationPlan{}, errs.Validation(op, "principal must be positive, got %s", principal)
	}
	if annualRatePercent.IsNegative() {
		return AmortizationPlan{}, errs.Validation(op, "annual rate cannot be negative, got %s", annualRatePercent)
	}

	n := decimal.NewFromInt(int64(termMonths))
	rate := annualRatePercent.DivRound(hundred, workingPrecision).DivRound(monthsPerYear, workingPrecision)

	var payment decimal.Decimal
	if rate.IsZero() {
		payment = principal.DivRound(n, workingPrecision)
	} else {
		factor, err := one.Add(rate).PowWithPrecision(n, workingPrecision)
		if err != nil {
			return AmortizationPlan{}, errs.Validation(op, "rate %s cannot be compounded: %v", annualRatePercent, err)
		}
		payment = principal.Mul(rate).Mul(factor).DivRound(factor.Sub(one), workingPrecision)
	}

	schedule := make([]AmortizationEntry, 0, termMonths)
	balance := principal
	for period := 1; period <= termMonths; period++ {
		interest := balance.Mul(rate).Round(workingPrecision)
		principalPart := payment.Sub(interest)
		balance = balance.Sub(principalPart)
		if balance.IsNegative() {
			balance = decimal.Zero
		}
		schedule = append(schedule, AmortizationEntry{
			Period:           period,
			DueDate:          start.AddDate(0, period, 0),
			Payment:          payment.Round(2),
			Principal:        principalPart.Round(2),
			Interest:         interest.Round(2),
			RemainingBalance: balance.Round(2),
		})
	}

	totalCost := payment.Mul(n)
	return AmortizationPlan{
		MonthlyPayment: payment.Round(2),
		TotalCost:      totalCost.Round(2),
		TotalInterest:  totalCost.Sub(principal).Round(2),
		Schedule:       schedule,
	}, nil
}
