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
	"github.com/bibbank/credit-service/pkg/auth"
)

// ResubmitUseCase sends a returned application back into review. An
// application returned to the applicant re-enters stage 1; one returned to
// the commercial channel re-enters the stage that returned it.
type ResubmitUseCase struct {
	store   *Store
	effects *SideEffects
	rules   *service.ApprovalRules
}

// NewResubmitUseCase wires dependencies.
func NewResubmitUseCase(store *Store, effects *SideEffects, rules *service.ApprovalRules) *ResubmitUseCase {
	return &ResubmitUseCase{store: store, effects: effects, rules: rules}
}

// Execute applies the optional corrections and the RESUBMIT transition.
func (uc *ResubmitUseCase) Execute(ctx context.Context, req dto.ResubmitRequest) (dto.ApplicationResponse, error) {
	const op = "resubmit application"
	if err := requireActor(op, req.Actor); err != nil {
		return dto.ApplicationResponse{}, err
	}
	var patch model.ApplicantPatch
	if req.Patch != nil {
		p, err := toPatch(op, *req.Patch)
		if err != nil {
			return dto.ApplicationResponse{}, err
		}
		patch = p
	}

	var t vo.Transition
	before, after, err := uc.store.Mutate(ctx, op, req.ApplicationID, func(app model.CreditApplication, now time.Time) (model.CreditApplication, error) {
		if err := requireSubmitterOr(op, req.Actor, app.SubmitterID(), auth.RoleCommercial, auth.RoleApplicant); err != nil {
			return app, err
		}
		tc := service.TransitionContext{ReentryStatus: service.ReentryStatus(app)}
		var ok bool
		t, ok = service.NextStatus(app.Status(), vo.ActionResubmit, tc)
		if !ok {
			return app, errs.IllegalTransition(op, app.Status().String(), vo.ActionResubmit.String())
		}
		next := app
		if !patch.IsEmpty() {
			var err error
			if next, err = next.UpdateApplicant(patch, req.Actor.ID, now); err != nil {
				return app, err
			}
		}
		note := strings.TrimSpace(req.Note)
		if note == "" {
			note = "resubmitted after return"
		}
		return next.ApplyTransition(t, req.Actor.ID, note, now)
	})
	if err != nil {
		return dto.ApplicationResponse{}, err
	}

	uc.effects.Transition(ctx, req.Actor.ID, t, before, after, "returned application resubmitted")
	return toApplicationResponse(after, uc.rules), nil
}
