package usecase

import (
	"context"
	"time"

	"github.com/bibbank/credit-service/internal/application/dto"
	"github.com/bibbank/credit-service/internal/domain/errs"
	"github.com/bibbank/credit-service/internal/domain/model"
	"github.com/bibbank/credit-service/internal/domain/service"
	vo "github.com/bibbank/credit-service/internal/domain/valueobject"
	"github.com/bibbank/credit-service/pkg/auth"
)

// SubmitDraftUseCase moves a DRAFT or INCOMPLETE application to SUBMITTED.
type SubmitDraftUseCase struct {
	store   *Store
	effects *SideEffects
	rules   *service.ApprovalRules
}

// NewSubmitDraftUseCase wires dependencies.
func NewSubmitDraftUseCase(store *Store, effects *SideEffects, rules *service.ApprovalRules) *SubmitDraftUseCase {
	return &SubmitDraftUseCase{store: store, effects: effects, rules: rules}
}

// Execute validates the applicant data and submits the application.
func (uc *SubmitDraftUseCase) Execute(ctx context.Context, req dto.ApplicationRef) (dto.ApplicationResponse, error) {
	const op = "submit draft"
	if err := requireActor(op, req.Actor); err != nil {
		return dto.ApplicationResponse{}, err
	}

	var t vo.Transition
	before, after, err := uc.store.Mutate(ctx, op, req.ApplicationID, func(app model.CreditApplication, now time.Time) (model.CreditApplication, error) {
		if err := requireSubmitterOr(op, req.Actor, app.SubmitterID(), auth.RoleCommercial); err != nil {
			return app, err
		}
		if app.Status() != vo.StatusDraft && app.Status() != vo.StatusIncomplete {
			return app, errs.IllegalTransition(op, app.Status().String(), vo.ActionSubmit.String())
		}
		if err := app.Applicant().Validate(); err != nil {
			return app, err
		}
		var ok bool
		t, ok = service.NextStatus(app.Status(), vo.ActionSubmit, service.TransitionContext{})
		if !ok {
			return app, errs.IllegalTransition(op, app.Status().String(), vo.ActionSubmit.String())
		}
		return app.ApplyTransition(t, req.Actor.ID, "submitted by applicant", now)
	})
	if err != nil {
		return dto.ApplicationResponse{}, err
	}

	uc.effects.Transition(ctx, req.Actor.ID, t, before, after, "draft submitted")
	return toApplicationResponse(after, uc.rules), nil
}
