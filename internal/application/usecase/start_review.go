package usecase

import (
	"context"
	"time"

	"github.com/bibbank/credit-service/internal/application/dto"
	"github.com/bibbank/credit-service/internal/domain/errs"
	"github.com/bibbank/credit-service/internal/domain/model"
	"github.com/bibbank/credit-service/internal/domain/service"
	vo "github.com/bibbank/credit-service/internal/domain/valueobject"
)

// StartReviewUseCase takes a SUBMITTED application into stage 1. The
// automatic validations run first; when every auto-approval condition holds
// the application skips the analyst stages.
type StartReviewUseCase struct {
	store   *Store
	effects *SideEffects
	rules   *service.ApprovalRules
	scoring *service.ScoringEngine
}

// NewStartReviewUseCase wires dependencies.
func NewStartReviewUseCase(store *Store, effects *SideEffects, rules *service.ApprovalRules, scoring *service.ScoringEngine) *StartReviewUseCase {
	return &StartReviewUseCase{store: store, effects: effects, rules: rules, scoring: scoring}
}

// Execute scores the application and routes it.
func (uc *StartReviewUseCase) Execute(ctx context.Context, req dto.ApplicationRef) (dto.StartReviewResponse, error) {
	const op = "start review"
	if err := requireStage(op, req.Actor, vo.StageAnalyst1); err != nil {
		return dto.StartReviewResponse{}, err
	}

	var (
		t      vo.Transition
		report service.AutoApprovalReport
	)
	before, after, err := uc.store.Mutate(ctx, op, req.ApplicationID, func(app model.CreditApplication, now time.Time) (model.CreditApplication, error) {
		// 1. Only stage 1 picks up new applications.
		if err := service.Authorize(vo.StageAnalyst1, app.Status()); err != nil {
			return app, err
		}
		if app.Status() != vo.StatusSubmitted {
			return app, errs.IllegalTransition(op, app.Status().String(), vo.ActionReview.String())
		}

		// 2. Score.
		result, err := uc.scoring.Evaluate(ctx, app.Applicant(), now)
		if err != nil {
			return app, err
		}

		// 3. Route.
		f := app.Applicant().Financials
		x := service.AutoApprovalContext{
			RequestedAmount:   f.RequestedAmount,
			Score:             result.Score,
			MonthlyIncome:     f.MonthlyIncome,
			CurrentDebt:       f.MonthlyExpenses,
			DocumentsVerified: result.Details.DocumentCompletion == 100,
		}
		var ok bool
		t, report, ok = uc.rules.NextStatus(app.Status(), vo.ActionReview, service.TransitionContext{}, &x)
		if !ok {
			return app, errs.IllegalTransition(op, app.Status().String(), vo.ActionReview.String())
		}

		reason := "review started"
		if t.To == vo.StatusAnalyst3Approved {
			reason = "auto-approved: every auto-approval condition holds"
		}
		return app.RecordValidations(result).ApplyTransition(t, req.Actor.ID, reason, now)
	})
	if err != nil {
		return dto.StartReviewResponse{}, err
	}

	uc.effects.Transition(ctx, req.Actor.ID, t, before, after, "review started")
	return dto.StartReviewResponse{
		Application:  toApplicationResponse(after, uc.rules),
		AutoApproved: t.To == vo.StatusAnalyst3Approved,
		AutoApproval: report,
	}, nil
}
