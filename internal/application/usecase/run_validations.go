package usecase

import (
	"context"
	"time"

	"github.com/bibbank/credit-service/internal/application/dto"
	"github.com/bibbank/credit-service/internal/domain/model"
	"github.com/bibbank/credit-service/internal/domain/service"
)

// RunValidationsUseCase recomputes the automatic validations of an
// application and caches the result on it.
type RunValidationsUseCase struct {
	store   *Store
	scoring *service.ScoringEngine
}

// NewRunValidationsUseCase wires dependencies.
func NewRunValidationsUseCase(store *Store, scoring *service.ScoringEngine) *RunValidationsUseCase {
	return &RunValidationsUseCase{store: store, scoring: scoring}
}

// Execute always recomputes; a cached result is never returned as is.
func (uc *RunValidationsUseCase) Execute(ctx context.Context, req dto.ApplicationRef) (model.ValidationResult, error) {
	const op = "run validations"
	if err := requireRole(op, req.Actor, reviewerRoles...); err != nil {
		return model.ValidationResult{}, err
	}

	var result model.ValidationResult
	_, _, err := uc.store.Mutate(ctx, op, req.ApplicationID, func(app model.CreditApplication, now time.Time) (model.CreditApplication, error) {
		r, err := uc.scoring.Evaluate(ctx, app.Applicant(), now)
		if err != nil {
			return app, err
		}
		result = r
		return app.RecordValidations(r), nil
	})
	if err != nil {
		return model.ValidationResult{}, err
	}
	return result, nil
}
