package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/bibbank/credit-service/internal/application/dto"
	"github.com/bibbank/credit-service/internal/domain/errs"
	"github.com/bibbank/credit-service/internal/domain/model"
	"github.com/bibbank/credit-service/internal/domain/service"
	vo "github.com/bibbank/credit-service/internal/domain/valueobject"
)

// AdvanceLoanUseCase drives a funded loan: READY_TO_DISBURSE, DISBURSED,
// ACTIVE, then PAID or DEFAULTED.
type AdvanceLoanUseCase struct {
	store   *Store
	effects *SideEffects
	rules   *service.ApprovalRules
}

// NewAdvanceLoanUseCase wires dependencies.
func NewAdvanceLoanUseCase(store *Store, effects *SideEffects, rules *service.ApprovalRules) *AdvanceLoanUseCase {
	return &AdvanceLoanUseCase{store: store, effects: effects, rules: rules}
}

// Execute applies a servicing action.
func (uc *AdvanceLoanUseCase) Execute(ctx context.Context, req dto.AdvanceLoanRequest) (dto.ApplicationResponse, error) {
	const op = "advance loan"
	action, err := parseAction(op, req.Action)
	if err != nil {
		return dto.ApplicationResponse{}, err
	}
	if !action.IsServicing() {
		return dto.ApplicationResponse{}, errs.Validation(op, "action %s is not a servicing action", action)
	}
	if err := requireStage(op, req.Actor, vo.StageServicing); err != nil {
		return dto.ApplicationResponse{}, err
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = strings.ToLower(action.String())
	}

	var t vo.Transition
	before, after, err := uc.store.Mutate(ctx, op, req.ApplicationID, func(app model.CreditApplication, now time.Time) (model.CreditApplication, error) {
		if err := service.Authorize(vo.StageServicing, app.Status()); err != nil {
			return app, err
		}
		var ok bool
		t, ok = service.NextStatus(app.Status(), action, service.TransitionContext{})
		if !ok {
			return app, errs.IllegalTransition(op, app.Status().String(), action.String())
		}
		return app.ApplyTransition(t, req.Actor.ID, reason, now)
	})
	if err != nil {
		return dto.ApplicationResponse{}, err
	}

	uc.effects.Transition(ctx, req.Actor.ID, t, before, after, "loan "+strings.ToLower(action.String()))
	return toApplicationResponse(after, uc.rules), nil
}
