package usecase

import (
	"context"
	"time"

	"github.com/bibbank/credit-service/internal/application/dto"
	"github.com/bibbank/credit-service/internal/domain/model"
	"github.com/bibbank/credit-service/internal/domain/service"
)

// AddCommentUseCase appends a note to an application.
type AddCommentUseCase struct {
	store *Store
	rules *service.ApprovalRules
}

// NewAddCommentUseCase wires dependencies.
func NewAddCommentUseCase(store *Store, rules *service.ApprovalRules) *AddCommentUseCase {
	return &AddCommentUseCase{store: store, rules: rules}
}

// Execute stores the comment with the actor and the current time.
func (uc *AddCommentUseCase) Execute(ctx context.Context, req dto.AddCommentRequest) (dto.ApplicationResponse, error) {
	const op = "add comment"
	if err := requireActor(op, req.Actor); err != nil {
		return dto.ApplicationResponse{}, err
	}
	_, after, err := uc.store.Mutate(ctx, op, req.ApplicationID, func(app model.CreditApplication, now time.Time) (model.CreditApplication, error) {
		return app.AddComment(model.Comment{Text: req.Text, AuthorID: req.Actor.ID, At: now})
	})
	if err != nil {
		return dto.ApplicationResponse{}, err
	}
	return toApplicationResponse(after, uc.rules), nil
}
