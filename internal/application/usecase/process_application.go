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

const rejectPrefix = "REJECTED: "

// ProcessApplicationUseCase applies an analyst's APPROVE, REJECT or RETURN
// decision.
type ProcessApplicationUseCase struct {
	store   *Store
	effects *SideEffects
	rules   *service.ApprovalRules
}

// NewProcessApplicationUseCase wires dependencies.
func NewProcessApplicationUseCase(store *Store, effects *SideEffects, rules *service.ApprovalRules) *ProcessApplicationUseCase {
	return &ProcessApplicationUseCase{store: store, effects: effects, rules: rules}
}

// Execute validates the decision against the latest state and applies it.
func (uc *ProcessApplicationUseCase) Execute(ctx context.Context, req dto.ProcessApplicationRequest) (dto.ApplicationResponse, error) {
	const op = "process application"

	// 1. Validate the request before touching storage.
	stage, err := parseStage(op, req.Stage)
	if err != nil {
		return dto.ApplicationResponse{}, err
	}
	if !stage.IsAnalyst() {
		return dto.ApplicationResponse{}, errs.Validation(op, "stage %s does not review applications", stage)
	}
	action, err := parseAction(op, req.Action)
	if err != nil {
		return dto.ApplicationResponse{}, err
	}
	if !action.IsReviewDecision() {
		return dto.ApplicationResponse{}, errs.Validation(op, "action %s is not a review decision", action)
	}
	reason := strings.TrimSpace(req.Reason)
	if (action == vo.ActionReject || action == vo.ActionReturn) && reason == "" {
		return dto.ApplicationResponse{}, errs.Validation(op, "a reason is required to %s", strings.ToLower(action.String()))
	}
	returnTo := strings.ToLower(strings.TrimSpace(req.ReturnTo))
	if returnTo != "" && returnTo != vo.ReturnTargetCommercial {
		return dto.ApplicationResponse{}, errs.Validation(op, "return_to must be empty or %q", vo.ReturnTargetCommercial)
	}
	if req.References != nil && stage != vo.StageAnalyst2 {
		return dto.ApplicationResponse{}, errs.Validation(op, "references are verified at stage analyst2 only")
	}
	if err := requireStage(op, req.Actor, stage); err != nil {
		return dto.ApplicationResponse{}, err
	}

	// 2. Apply under optimistic locking.
	var t vo.Transition
	before, after, err := uc.store.Mutate(ctx, op, req.ApplicationID, func(app model.CreditApplication, now time.Time) (model.CreditApplication, error) {
		if err := service.Authorize(stage, app.Status()); err != nil {
			return app, err
		}
		tc := service.TransitionContext{ToCommercial: returnTo == vo.ReturnTargetCommercial}
		var ok bool
		t, ok = service.NextStatus(app.Status(), action, tc)
		if !ok {
			return app, errs.IllegalTransition(op, app.Status().String(), action.String())
		}

		switch action {
		case vo.ActionApprove:
			next := app.RecordStageReview(stage, model.StageReview{
				ReviewerID: req.Actor.ID,
				ReviewedAt: now,
				Notes:      reason,
			})
			if req.References != nil {
				next = next.SetReferencesVerification(model.ReferencesVerification{
					PersonalVerified:   req.References.PersonalVerified,
					LaborVerified:      req.References.LaborVerified,
					CommercialVerified: req.References.CommercialVerified,
					Notes:              strings.TrimSpace(req.References.Notes),
				}, now)
			}
			return next.ApplyTransition(t, req.Actor.ID, reason, now)

		case vo.ActionReject:
			return app.RecordStageReview(stage, model.StageReview{
				ReviewerID: req.Actor.ID,
				ReviewedAt: now,
				Notes:      rejectPrefix + reason,
			}).ApplyTransition(t, req.Actor.ID, reason, now)

		default:
			target := stage.ReturnTarget()
			if tc.ToCommercial {
				target = vo.ReturnTargetCommercial
			}
			return app.Return(t, model.ReturnEntry{
				ReturnedBy:     req.Actor.ID,
				ReturnedByRole: stage.String(),
				ReturnedTo:     target,
				Reason:         reason,
				Attachments:    req.Attachments,
			}, now)
		}
	})
	if err != nil {
		return dto.ApplicationResponse{}, err
	}

	// 3. Best-effort side effects.
	uc.effects.Transition(ctx, req.Actor.ID, t, before, after, stage.String()+" "+strings.ToLower(action.String())+": "+reason)
	return toApplicationResponse(after, uc.rules), nil
}
