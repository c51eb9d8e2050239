package usecase

import (
	"context"
	"time"

	"github.com/bibbank/credit-service/internal/application/dto"
	"github.com/bibbank/credit-service/internal/domain/model"
	"github.com/bibbank/credit-service/internal/domain/port"
	"github.com/bibbank/credit-service/internal/domain/service"
)

// UpdateApplicationDataUseCase lets a reviewer correct the applicant
// snapshot of an application in their inbox.
type UpdateApplicationDataUseCase struct {
	store   *Store
	effects *SideEffects
	rules   *service.ApprovalRules
}

// NewUpdateApplicationDataUseCase wires dependencies.
func NewUpdateApplicationDataUseCase(store *Store, effects *SideEffects, rules *service.ApprovalRules) *UpdateApplicationDataUseCase {
	return &UpdateApplicationDataUseCase{store: store, effects: effects, rules: rules}
}

// Execute applies the patch. The status does not change.
func (uc *UpdateApplicationDataUseCase) Execute(ctx context.Context, req dto.UpdateApplicationDataRequest) (dto.ApplicationResponse, error) {
	const op = "update application data"
	stage, err := parseStage(op, req.Stage)
	if err != nil {
		return dto.ApplicationResponse{}, err
	}
	if err := requireStage(op, req.Actor, stage); err != nil {
		return dto.ApplicationResponse{}, err
	}
	patch, err := toPatch(op, req.Patch)
	if err != nil {
		return dto.ApplicationResponse{}, err
	}

	_, after, err := uc.store.Mutate(ctx, op, req.ApplicationID, func(app model.CreditApplication, now time.Time) (model.CreditApplication, error) {
		if err := service.Authorize(stage, app.Status()); err != nil {
			return app, err
		}
		return app.UpdateApplicant(patch, req.Actor.ID, now)
	})
	if err != nil {
		return dto.ApplicationResponse{}, err
	}

	uc.effects.Audit(ctx, port.AuditRecord{
		Action:       "UPDATE_DATA",
		ResourceType: resourceCreditApplication,
		ResourceID:   after.ID(),
		ActorID:      req.Actor.ID,
		Description:  "applicant data updated by " + stage.String(),
	})
	return toApplicationResponse(after, uc.rules), nil
}
