package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/credit-service/internal/application/dto"
	"github.com/bibbank/credit-service/internal/application/usecase"
	"github.com/bibbank/credit-service/internal/domain/errs"
	"github.com/bibbank/credit-service/internal/domain/model"
	"github.com/bibbank/credit-service/internal/domain/service"
)

func TestStartReview(t *testing.T) {
	t.Run("small strong application is auto-approved", func(t *testing.T) {
		h := newHarness(t)
		created := h.create(t, 3_000)

		resp := h.startReview(t, created.ID)

		assert.True(t, resp.AutoApproved)
		assert.True(t, resp.AutoApproval.Eligible)
		assert.Equal(t, "ANALYST3_APPROVED", resp.Application.Status)
		assert.Equal(t, "AUTO", resp.Application.ApprovalLevel)
		require.NotNil(t, resp.Application.Validations)
		assert.GreaterOrEqual(t, resp.Application.Validations.Score, 70)
	})

	t.Run("large application goes to stage 1 with the failed rule reported", func(t *testing.T) {
		h := newHarness(t)
		created := h.create(t, 20_000_000)

		resp := h.startReview(t, created.ID)

		assert.False(t, resp.AutoApproved)
		assert.Equal(t, "ANALYST1_REVIEW", resp.Application.Status)
		failed := resp.AutoApproval.Failed()
		require.NotEmpty(t, failed)
		assert.Equal(t, service.RuleAmountCeiling, failed[0].Rule)
	})

	t.Run("only SUBMITTED can be picked up", func(t *testing.T) {
		h := newHarness(t)
		created := h.create(t, 20_000_000)
		h.startReview(t, created.ID)

		uc := usecase.NewStartReviewUseCase(h.store, h.effects, h.rules, h.scoring)
		_, err := uc.Execute(context.Background(), dto.ApplicationRef{Actor: analyst1, ApplicationID: created.ID})
		assert.ErrorIs(t, err, errs.ErrIllegalTransition)
	})

	t.Run("oracle outage leaves the application untouched", func(t *testing.T) {
		h := newHarness(t)
		created := h.create(t, 20_000_000)
		scoring := service.NewScoringEngine(mockBlacklist{
			isBlacklistedFunc: func(context.Context, string, string) (bool, error) {
				return false, errors.New("blacklist service timeout")
			},
		}, mockRisk{})

		uc := usecase.NewStartReviewUseCase(h.store, h.effects, h.rules, scoring)
		_, err := uc.Execute(context.Background(), dto.ApplicationRef{Actor: analyst1, ApplicationID: created.ID})
		assert.ErrorIs(t, err, errs.ErrExternalDependency)

		stored, err := h.repo.FindByID(context.Background(), created.ID)
		require.NoError(t, err)
		assert.Equal(t, "SUBMITTED", stored.Status().String())
		assert.Nil(t, stored.Validations())
	})

	t.Run("blacklisted applicant is still routed to a human", func(t *testing.T) {
		h := newHarness(t)
		created := h.create(t, 3_000)
		h.scoring = service.NewScoringEngine(mockBlacklist{
			isBlacklistedFunc: func(context.Context, string, string) (bool, error) { return true, nil },
		}, mockRisk{
			hasAdverseFunc: func(context.Context, model.Applicant) (bool, error) { return true, nil },
		})

		resp := h.startReview(t, created.ID)
		assert.False(t, resp.AutoApproved)
		assert.Equal(t, "ANALYST1_REVIEW", resp.Application.Status)
		assert.False(t, resp.Application.Validations.Passed)
	})

	t.Run("requires stage 1", func(t *testing.T) {
		h := newHarness(t)
		created := h.create(t, 20_000_000)
		uc := usecase.NewStartReviewUseCase(h.store, h.effects, h.rules, h.scoring)
		_, err := uc.Execute(context.Background(), dto.ApplicationRef{Actor: analyst2, ApplicationID: created.ID})
		assert.ErrorIs(t, err, errs.ErrPermission)
	})
}
