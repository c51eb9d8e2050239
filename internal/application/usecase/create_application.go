package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/bibbank/credit-service/internal/application/dto"
	"github.com/bibbank/credit-service/internal/domain/errs"
	"github.com/bibbank/credit-service/internal/domain/model"
	"github.com/bibbank/credit-service/internal/domain/port"
	"github.com/bibbank/credit-service/internal/domain/service"
	vo "github.com/bibbank/credit-service/internal/domain/valueobject"
	"github.com/bibbank/credit-service/pkg/auth"
)

// CreateApplicationUseCase registers a new credit application.
type CreateApplicationUseCase struct {
	store   *Store
	effects *SideEffects
	rules   *service.ApprovalRules
}

// NewCreateApplicationUseCase wires dependencies.
func NewCreateApplicationUseCase(store *Store, effects *SideEffects, rules *service.ApprovalRules) *CreateApplicationUseCase {
	return &CreateApplicationUseCase{store: store, effects: effects, rules: rules}
}

// Execute assigns a radication number and persists the application in DRAFT
// or SUBMITTED.
func (uc *CreateApplicationUseCase) Execute(ctx context.Context, req dto.CreateApplicationRequest) (dto.ApplicationResponse, error) {
	const op = "create application"

	// 1. Authorise and parse input.
	if err := requireRole(op, req.Actor, auth.RoleApplicant, auth.RoleCommercial); err != nil {
		return dto.ApplicationResponse{}, err
	}
	source, err := vo.NewRadicationSource(strings.ToUpper(strings.TrimSpace(req.Source)))
	if err != nil {
		return dto.ApplicationResponse{}, errs.Validation(op, "%v", err)
	}
	applicant, err := toApplicant(op, req.Applicant)
	if err != nil {
		return dto.ApplicationResponse{}, err
	}
	initial := vo.StatusSubmitted
	if req.Draft {
		initial = vo.StatusDraft
	}

	// 2. Reserve a radication number.
	now := uc.store.Now()
	seq, err := uc.store.Repository().NextSequence(ctx)
	if err != nil {
		return dto.ApplicationResponse{}, fmt.Errorf("reserve radication sequence: %w", err)
	}
	radication, err := vo.NewRadicationNumber(now, seq)
	if err != nil {
		return dto.ApplicationResponse{}, fmt.Errorf("build radication number: %w", err)
	}

	// 3. Create the aggregate.
	app, err := model.NewCreditApplication(radication, source, req.Actor.ID, applicant, initial, now)
	if err != nil {
		return dto.ApplicationResponse{}, err
	}

	// 4. Persist.
	if err := uc.store.Repository().Create(ctx, app); err != nil {
		return dto.ApplicationResponse{}, fmt.Errorf("persist application: %w", err)
	}

	// 5. Audit.
	uc.effects.Audit(ctx, port.AuditRecord{
		Action:       "CREATE",
		ResourceType: resourceCreditApplication,
		ResourceID:   app.ID(),
		ActorID:      req.Actor.ID,
		Description:  fmt.Sprintf("application %s registered via %s", radication, source),
		NewState:     initial.String(),
	})

	return toApplicationResponse(app, uc.rules), nil
}
