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

// ConfirmDisburseUseCase records the payout instruction of a signed (or
// approved) application and hands it to servicing.
type ConfirmDisburseUseCase struct {
	store   *Store
	effects *SideEffects
	rules   *service.ApprovalRules
}

// NewConfirmDisburseUseCase wires dependencies.
func NewConfirmDisburseUseCase(store *Store, effects *SideEffects, rules *service.ApprovalRules) *ConfirmDisburseUseCase {
	return &ConfirmDisburseUseCase{store: store, effects: effects, rules: rules}
}

// Execute moves PENDING_SIGNATURE or ANALYST3_APPROVED to READY_TO_DISBURSE.
// A zero amount means the requested amount.
func (uc *ConfirmDisburseUseCase) Execute(ctx context.Context, req dto.ConfirmDisburseRequest) (dto.ApplicationResponse, error) {
	const op = "confirm disbursement"
	if err := requireStage(op, req.Actor, vo.StageAnalyst3); err != nil {
		return dto.ApplicationResponse{}, err
	}
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		return dto.ApplicationResponse{}, errs.Validation(op, "disbursement method is required")
	}
	if req.Amount.IsNegative() {
		return dto.ApplicationResponse{}, errs.Validation(op, "disbursement amount cannot be negative")
	}

	var t vo.Transition
	before, after, err := uc.store.Mutate(ctx, op, req.ApplicationID, func(app model.CreditApplication, now time.Time) (model.CreditApplication, error) {
		if err := service.Authorize(vo.StageAnalyst3, app.Status()); err != nil {
			return app, err
		}
		var ok bool
		t, ok = service.NextStatus(app.Status(), vo.ActionDisburse, service.TransitionContext{})
		if !ok {
			return app, errs.IllegalTransition(op, app.Status().String(), vo.ActionDisburse.String())
		}

		requested := app.Applicant().Financials.RequestedAmount
		amount := req.Amount
		if amount.IsZero() {
			amount = requested
		}
		if amount.GreaterThan(requested) {
			return app, errs.Validation(op, "disbursement %s exceeds the requested amount %s", amount, requested)
		}
		return app.RecordDisbursement(model.Disbursement{
			Amount:        amount,
			Method:        method,
			BankName:      strings.TrimSpace(req.BankName),
			AccountNumber: strings.TrimSpace(req.AccountNumber),
			Reference:     strings.TrimSpace(req.Reference),
			ConfirmedBy:   req.Actor.ID,
			ConfirmedAt:   now,
		}).ApplyTransition(t, req.Actor.ID, "disbursement confirmed", now)
	})
	if err != nil {
		return dto.ApplicationResponse{}, err
	}

	uc.effects.Transition(ctx, req.Actor.ID, t, before, after, "disbursement confirmed via "+method)
	return toApplicationResponse(after, uc.rules), nil
}
