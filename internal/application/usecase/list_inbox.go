package usecase

import (
	"context"
	"fmt"

	"github.com/bibbank/credit-service/internal/application/dto"
	"github.com/bibbank/credit-service/internal/domain/port"
	"github.com/bibbank/credit-service/internal/domain/service"
	vo "github.com/bibbank/credit-service/internal/domain/valueobject"
)

const (
	defaultInboxLimit = 50
	maxInboxLimit     = 500
)

// ListInboxUseCase lists the applications a stage may act on.
type ListInboxUseCase struct {
	repo port.ApplicationRepository
}

// NewListInboxUseCase wires dependencies.
func NewListInboxUseCase(repo port.ApplicationRepository) *ListInboxUseCase {
	return &ListInboxUseCase{repo: repo}
}

// Execute returns the stage's queue. Legacy stored statuses are matched
// through their canonical equivalent.
func (uc *ListInboxUseCase) Execute(ctx context.Context, req dto.ListInboxRequest) (dto.InboxResponse, error) {
	const op = "list inbox"
	stage, err := parseStage(op, req.Stage)
	if err != nil {
		return dto.InboxResponse{}, err
	}
	if err := requireStage(op, req.Actor, stage); err != nil {
		return dto.InboxResponse{}, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultInboxLimit
	}
	limit = min(limit, maxInboxLimit)

	apps, err := uc.repo.List(ctx, port.ListFilter{
		StoredStatuses: vo.StoredValuesFor(service.Inbox(stage)),
		Search:         req.Search,
		Limit:          limit,
	})
	if err != nil {
		return dto.InboxResponse{}, fmt.Errorf("list applications: %w", err)
	}

	out := make([]dto.ApplicationSummary, 0, len(apps))
	for _, app := range apps {
		out = append(out, toSummary(app))
	}
	return dto.InboxResponse{Stage: stage.String(), Applications: out}, nil
}
