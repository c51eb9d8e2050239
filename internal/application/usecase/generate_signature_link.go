package usecase

import (
	"context"
	"time"

	"github.com/bibbank/credit-service/internal/application/dto"
	"github.com/bibbank/credit-service/internal/domain/errs"
	"github.com/bibbank/credit-service/internal/domain/model"
	"github.com/bibbank/credit-service/internal/domain/port"
	"github.com/bibbank/credit-service/internal/domain/service"
	vo "github.com/bibbank/credit-service/internal/domain/valueobject"
)

// GenerateSignatureLinkUseCase issues the contract-signing link for an
// application approved by stage 3 and moves it to PENDING_SIGNATURE.
type GenerateSignatureLinkUseCase struct {
	store     *Store
	effects   *SideEffects
	rules     *service.ApprovalRules
	signature port.SignatureProvider
}

// NewGenerateSignatureLinkUseCase wires dependencies.
func NewGenerateSignatureLinkUseCase(store *Store, effects *SideEffects, rules *service.ApprovalRules, signature port.SignatureProvider) *GenerateSignatureLinkUseCase {
	return &GenerateSignatureLinkUseCase{store: store, effects: effects, rules: rules, signature: signature}
}

// Execute requests a link from the provider and records it.
func (uc *GenerateSignatureLinkUseCase) Execute(ctx context.Context, req dto.ApplicationRef) (dto.ApplicationResponse, error) {
	const op = "generate signature link"
	if err := requireStage(op, req.Actor, vo.StageAnalyst3); err != nil {
		return dto.ApplicationResponse{}, err
	}

	var t vo.Transition
	before, after, err := uc.store.Mutate(ctx, op, req.ApplicationID, func(app model.CreditApplication, now time.Time) (model.CreditApplication, error) {
		if err := service.Authorize(vo.StageAnalyst3, app.Status()); err != nil {
			return app, err
		}
		if app.Status() != vo.StatusAnalyst3Approved {
			return app, errs.IllegalTransition(op, app.Status().String(), "SIGN")
		}
		var ok bool
		t, ok = service.NextStatus(app.Status(), vo.ActionApprove, service.TransitionContext{})
		if !ok {
			return app, errs.IllegalTransition(op, app.Status().String(), vo.ActionApprove.String())
		}

		url, token, err := uc.signature.CreateLink(ctx, app.ID(), app.Radication().String())
		if err != nil {
			return app, errs.External(op, err)
		}
		return app.AttachSignatureLink(model.SignatureLink{
			URL:         url,
			Token:       token,
			GeneratedBy: req.Actor.ID,
			GeneratedAt: now,
		}).ApplyTransition(t, req.Actor.ID, "signature link sent", now)
	})
	if err != nil {
		return dto.ApplicationResponse{}, err
	}

	uc.effects.Transition(ctx, req.Actor.ID, t, before, after, "signature link generated")
	uc.effects.Notify(ctx, port.Notification{
		UserID:      after.SubmitterID(),
		Type:        "CREDIT_SIGNATURE_REQUESTED",
		Title:       "Your credit is ready to sign",
		Message:     after.Signature().URL,
		Priority:    "NORMAL",
		ResourceRef: after.ID(),
	})
	return toApplicationResponse(after, uc.rules), nil
}
