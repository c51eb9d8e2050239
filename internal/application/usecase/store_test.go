package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/credit-service/internal/application/dto"
	"github.com/bibbank/credit-service/internal/application/usecase"
	"github.com/bibbank/credit-service/internal/domain/errs"
	"github.com/bibbank/credit-service/internal/domain/model"
)

func TestStore_RetriesVersionConflicts(t *testing.T) {
	h := newHarness(t)
	created := h.create(t, 20_000_000)

	t.Run("a concurrent write is absorbed by a re-read", func(t *testing.T) {
		calls := 0
		repo := &conflictingRepo{ApplicationRepo: h.repo}
		repo.updateFunc = func(ctx context.Context, app model.CreditApplication) error {
			calls++
			if calls == 1 {
				// Another writer lands first.
				current, err := h.repo.FindByID(ctx, app.ID())
				require.NoError(t, err)
				other, err := current.AddComment(model.Comment{Text: "parallel note", AuthorID: "analyst-9", At: baseTime})
				require.NoError(t, err)
				require.NoError(t, h.repo.Update(ctx, other))
			}
			return h.repo.Update(ctx, app)
		}
		store := usecase.NewStore(repo, h.metrics, h.clock).WithRetry(3, time.Millisecond)

		uc := usecase.NewAddCommentUseCase(store, h.rules)
		resp, err := uc.Execute(context.Background(), dto.AddCommentRequest{Actor: analyst1, ApplicationID: created.ID, Text: "mine"})

		require.NoError(t, err)
		assert.Equal(t, 2, calls)
		assert.Equal(t, 1, h.metrics.conflicts)
		require.Len(t, resp.Comments, 2)
		assert.Equal(t, "parallel note", resp.Comments[0].Text)
		assert.Equal(t, "mine", resp.Comments[1].Text)
		assert.Equal(t, 3, resp.Version)
	})

	t.Run("persistent conflicts surface as a conflict error", func(t *testing.T) {
		h.metrics.conflicts = 0
		calls := 0
		repo := &conflictingRepo{ApplicationRepo: h.repo}
		repo.updateFunc = func(context.Context, model.CreditApplication) error {
			calls++
			return errs.Conflict("update application", "version moved")
		}
		store := usecase.NewStore(repo, h.metrics, h.clock).WithRetry(3, time.Millisecond)

		uc := usecase.NewAddCommentUseCase(store, h.rules)
		_, err := uc.Execute(context.Background(), dto.AddCommentRequest{Actor: analyst1, ApplicationID: created.ID, Text: "lost"})

		assert.ErrorIs(t, err, errs.ErrConflict)
		assert.Equal(t, 3, calls)
		assert.Equal(t, 2, h.metrics.conflicts)
	})

	t.Run("other failures are not retried", func(t *testing.T) {
		calls := 0
		repo := &conflictingRepo{ApplicationRepo: h.repo}
		repo.updateFunc = func(context.Context, model.CreditApplication) error {
			calls++
			return errs.External("update application", assert.AnError)
		}
		store := usecase.NewStore(repo, h.metrics, h.clock).WithRetry(3, time.Millisecond)

		uc := usecase.NewAddCommentUseCase(store, h.rules)
		_, err := uc.Execute(context.Background(), dto.AddCommentRequest{Actor: analyst1, ApplicationID: created.ID, Text: "x"})

		assert.ErrorIs(t, err, errs.ErrExternalDependency)
		assert.Equal(t, 1, calls)
	})
}
