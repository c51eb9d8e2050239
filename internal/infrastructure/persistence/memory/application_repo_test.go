package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/credit-service/internal/domain/errs"
	"github.com/bibbank/credit-service/internal/domain/model"
	"github.com/bibbank/credit-service/internal/domain/port"
	vo "github.com/bibbank/credit-service/internal/domain/valueobject"
	"github.com/bibbank/credit-service/internal/infrastructure/persistence/memory"
)

var now = time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

func newApp(t *testing.T, repo *memory.ApplicationRepo, first string) model.CreditApplication {
	t.Helper()
	seq, err := repo.NextSequence(context.Background())
	require.NoError(t, err)
	rad, err := vo.NewRadicationNumber(now, seq)
	require.NoError(t, err)
	app, err := model.NewCreditApplication(rad, vo.SourceWeb, "user-1", model.Applicant{
		FirstName:      first,
		LastName:       "Rojas",
		DocumentNumber: "1020304050",
		Financials: model.Financials{
			MonthlyIncome:   decimal.NewFromInt(3_000_000),
			RequestedAmount: decimal.NewFromInt(8_000_000),
			TermMonths:      24,
		},
	}, vo.StatusSubmitted, now)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), app))
	return app
}

func TestApplicationRepo_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewApplicationRepo()
	app := newApp(t, repo, "Laura")

	got, err := repo.FindByID(ctx, app.ID())
	require.NoError(t, err)
	assert.Equal(t, app.Radication(), got.Radication())
	assert.Equal(t, vo.StatusSubmitted, got.Status())
	assert.Empty(t, got.DomainEvents())

	byRad, err := repo.FindByRadication(ctx, app.Radication().String())
	require.NoError(t, err)
	assert.Equal(t, app.ID(), byRad.ID())

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	assert.ErrorIs(t, repo.Create(ctx, app), errs.ErrConflict)
}

func TestApplicationRepo_UpdateIsCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewApplicationRepo()
	app := newApp(t, repo, "Laura")

	first, err := repo.FindByID(ctx, app.ID())
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, app.ID())
	require.NoError(t, err)

	review := vo.Transition{From: vo.StatusSubmitted, Action: vo.ActionReview, To: vo.StatusAnalyst1Review}
	next, err := first.ApplyTransition(review, "analyst-1", "review started", now.Add(time.Minute))
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, next))

	stale, err := second.AddComment(model.Comment{Text: "late", AuthorID: "analyst-2", At: now.Add(2 * time.Minute)})
	require.NoError(t, err)
	err = repo.Update(ctx, stale)
	assert.ErrorIs(t, err, errs.ErrConflict)

	stored, err := repo.FindByID(ctx, app.ID())
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Version())
	assert.Equal(t, vo.StatusAnalyst1Review, stored.Status())
	assert.Empty(t, stored.Comments())
}

func TestApplicationRepo_ListMatchesLegacyValues(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewApplicationRepo()
	a := newApp(t, repo, "Laura")
	b := newApp(t, repo, "Mateo")

	legacy := b.Snapshot()
	legacy.Status = "pending"
	repo.Put(legacy)

	got, err := repo.List(ctx, port.ListFilter{StoredStatuses: vo.StoredValuesFor([]vo.CreditStatus{vo.StatusSubmitted})})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, a.ID(), got[0].ID())
	assert.Equal(t, vo.StatusSubmitted, got[1].Status())
	assert.Equal(t, "pending", got[1].StoredStatus())

	got, err = repo.List(ctx, port.ListFilter{Search: "mat"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, b.ID(), got[0].ID())

	got, err = repo.List(ctx, port.ListFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestApplicationRepo_Outbox(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewApplicationRepo()
	newApp(t, repo, "Laura")
	newApp(t, repo, "Mateo")

	pending, err := repo.FetchUnpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "credit.application.created", pending[0].EventType)

	require.NoError(t, repo.MarkPublished(ctx, []string{pending[0].ID}))

	pending, err = repo.FetchUnpublished(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}
