package usecase

import (
	"context"
	"strings"

	"github.com/bibbank/credit-service/internal/application/dto"
	"github.com/bibbank/credit-service/internal/domain/model"
	"github.com/bibbank/credit-service/internal/domain/service"
)

// Pre-approval recommendations.
const (
	RecommendationPreApproved  = "PRE_APPROVED"
	RecommendationManualReview = "MANUAL_REVIEW"
	RecommendationDeclined     = "DECLINED"
)

// EvaluatePreApprovalUseCase scores raw inputs for the public simulator.
// Nothing is stored and no oracle is consulted.
type EvaluatePreApprovalUseCase struct {
	rules *service.ApprovalRules
	clock Clock
}

// NewEvaluatePreApprovalUseCase wires dependencies. A nil clock means
// SystemClock.
func NewEvaluatePreApprovalUseCase(rules *service.ApprovalRules, clock Clock) *EvaluatePreApprovalUseCase {
	if clock == nil {
		clock = SystemClock
	}
	return &EvaluatePreApprovalUseCase{rules: rules, clock: clock}
}

// Execute returns the score, a recommendation and, when a rate is given, a
// payment quote.
func (uc *EvaluatePreApprovalUseCase) Execute(_ context.Context, req dto.PreApprovalRequest) (dto.PreApprovalResponse, error) {
	now := uc.clock()

	// 1. Score.
	result, err := service.PreScreen(service.PreScreenInput{
		MonthlyIncome:   req.MonthlyIncome,
		MonthlyExpenses: req.MonthlyExpenses,
		RequestedAmount: req.RequestedAmount,
		TermMonths:      req.TermMonths,
		Age:             req.Age,
		ContractType:    strings.ToUpper(strings.TrimSpace(req.ContractType)),
		TenureMonths:    req.TenureMonths,
	}, now)
	if err != nil {
		return dto.PreApprovalResponse{}, err
	}

	// 2. Recommend. Documents are never verified at this point, so the
	// auto-approval report is informative only.
	cfg := uc.rules.Config()
	recommendation := RecommendationManualReview
	switch {
	case len(result.Errors) > 0:
		recommendation = RecommendationDeclined
	case result.Score >= cfg.ScoreThreshold:
		recommendation = RecommendationPreApproved
	}
	report := uc.rules.EvaluateAutoApproval(service.AutoApprovalContext{
		RequestedAmount: req.RequestedAmount,
		Score:           result.Score,
		MonthlyIncome:   req.MonthlyIncome,
		CurrentDebt:     req.MonthlyExpenses,
	})
	level := uc.rules.RequiredApprovalLevel(req.RequestedAmount)

	resp := dto.PreApprovalResponse{
		Score:          result.Score,
		Recommendation: recommendation,
		Details:        result.Details,
		Warnings:       result.Warnings,
		Errors:         result.Errors,
		AutoApproval:   report,
		ApprovalLevel:  level.String(),
		ExpectedDays:   level.ExpectedDays(),
	}

	// 3. Quote.
	if req.AnnualRatePercent != nil {
		plan, err := model.CalculateAmortization(req.RequestedAmount, *req.AnnualRatePercent, req.TermMonths, now)
		if err != nil {
			return dto.PreApprovalResponse{}, err
		}
		resp.Quote = &plan
	}
	return resp, nil
}
