package usecase

import (
	"context"

	"github.com/bibbank/credit-service/internal/application/dto"
	"github.com/bibbank/credit-service/internal/domain/errs"
	"github.com/bibbank/credit-service/internal/domain/port"
	"github.com/bibbank/credit-service/internal/domain/service"
	vo "github.com/bibbank/credit-service/internal/domain/valueobject"
	"github.com/bibbank/credit-service/pkg/auth"
)

// GetApplicationUseCase returns the full view of one application.
type GetApplicationUseCase struct {
	store *Store
	rules *service.ApprovalRules
}

// NewGetApplicationUseCase wires dependencies.
func NewGetApplicationUseCase(store *Store, rules *service.ApprovalRules) *GetApplicationUseCase {
	return &GetApplicationUseCase{store: store, rules: rules}
}

// Execute loads the application. Staff roles see any application; other
// actors only their own.
func (uc *GetApplicationUseCase) Execute(ctx context.Context, req dto.ApplicationRef) (dto.ApplicationResponse, error) {
	const op = "get application"
	if err := requireActor(op, req.Actor); err != nil {
		return dto.ApplicationResponse{}, err
	}
	app, err := uc.store.Load(ctx, op, req.ApplicationID)
	if err != nil {
		return dto.ApplicationResponse{}, err
	}
	staff := append([]string{auth.RoleServicing, auth.RoleCommercial}, reviewerRoles...)
	if err := requireSubmitterOr(op, req.Actor, app.SubmitterID(), staff...); err != nil {
		return dto.ApplicationResponse{}, err
	}
	return toApplicationResponse(app, uc.rules), nil
}

// TrackApplicationUseCase is the public status lookup by radication number.
type TrackApplicationUseCase struct {
	repo port.ApplicationRepository
}

// NewTrackApplicationUseCase wires dependencies.
func NewTrackApplicationUseCase(repo port.ApplicationRepository) *TrackApplicationUseCase {
	return &TrackApplicationUseCase{repo: repo}
}

// Execute returns the normalised status only; no personal data leaves.
func (uc *TrackApplicationUseCase) Execute(ctx context.Context, radication string) (dto.TrackingResponse, error) {
	const op = "track application"
	rad, err := vo.ParseRadicationNumber(radication)
	if err != nil {
		return dto.TrackingResponse{}, errs.Validation(op, "%v", err)
	}
	app, err := uc.repo.FindByRadication(ctx, rad.String())
	if err != nil {
		return dto.TrackingResponse{}, err
	}
	return dto.TrackingResponse{
		Radication:     app.Radication().String(),
		RadicationDate: app.RadicationDate(),
		Status:         app.Status().String(),
		UpdatedAt:      app.UpdatedAt(),
	}, nil
}
