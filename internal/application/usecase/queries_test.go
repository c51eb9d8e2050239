package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/credit-service/internal/application/dto"
	"github.com/bibbank/credit-service/internal/application/usecase"
	"github.com/bibbank/credit-service/internal/domain/errs"
	"github.com/bibbank/credit-service/pkg/auth"
)

func TestListInbox(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	fresh := h.create(t, 20_000_000)
	legacy := h.seed(t, "pending")
	inStage2 := h.seed(t, "ANALYST1_APPROVED")

	uc := usecase.NewListInboxUseCase(h.repo)

	resp, err := uc.Execute(ctx, dto.ListInboxRequest{Actor: analyst1, Stage: "1"})
	require.NoError(t, err)
	assert.Equal(t, "analyst1", resp.Stage)
	require.Len(t, resp.Applications, 2)
	assert.Equal(t, fresh.ID, resp.Applications[0].ID)
	assert.Equal(t, legacy.ID(), resp.Applications[1].ID)
	assert.Equal(t, "SUBMITTED", resp.Applications[1].Status)

	resp, err = uc.Execute(ctx, dto.ListInboxRequest{Actor: admin, Stage: "analyst2"})
	require.NoError(t, err)
	require.Len(t, resp.Applications, 1)
	assert.Equal(t, inStage2.ID(), resp.Applications[0].ID)

	resp, err = uc.Execute(ctx, dto.ListInboxRequest{Actor: analyst1, Stage: "1", Search: "rad-2026-0406-00001"})
	require.NoError(t, err)
	require.Len(t, resp.Applications, 1)
	assert.Equal(t, "Valentina Gómez", resp.Applications[0].ApplicantName)

	_, err = uc.Execute(ctx, dto.ListInboxRequest{Actor: analyst1, Stage: "2"})
	assert.ErrorIs(t, err, errs.ErrPermission)

	_, err = uc.Execute(ctx, dto.ListInboxRequest{Actor: analyst1, Stage: "reviewer"})
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestGetApplication(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	created := h.create(t, 20_000_000)
	legacy := h.seed(t, "disbursed")

	uc := usecase.NewGetApplicationUseCase(h.store, h.rules)

	resp, err := uc.Execute(ctx, dto.ApplicationRef{Actor: applicant, ApplicationID: created.ID})
	require.NoError(t, err)
	assert.Equal(t, created.Radication, resp.Radication)
	assert.ElementsMatch(t, []string{"SUBMIT", "REVIEW", "REJECT"}, resp.AllowedActions)

	resp, err = uc.Execute(ctx, dto.ApplicationRef{Actor: servicing, ApplicationID: legacy.ID()})
	require.NoError(t, err)
	assert.Equal(t, "DISBURSED", resp.Status)

	stranger := actor("applicant-9", auth.RoleApplicant)
	_, err = uc.Execute(ctx, dto.ApplicationRef{Actor: stranger, ApplicationID: created.ID})
	assert.ErrorIs(t, err, errs.ErrPermission)

	_, err = uc.Execute(ctx, dto.ApplicationRef{Actor: analyst1, ApplicationID: "3f1e0c4b-5b0f-4b8e-9c1e-1a2b3c4d5e6f"})
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestTrackApplication(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	created := h.create(t, 20_000_000)

	uc := usecase.NewTrackApplicationUseCase(h.repo)

	resp, err := uc.Execute(ctx, created.Radication)
	require.NoError(t, err)
	assert.Equal(t, "SUBMITTED", resp.Status)
	assert.Equal(t, created.Radication, resp.Radication)

	_, err = uc.Execute(ctx, "RAD-2026-0406-99999")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = uc.Execute(ctx, "12345")
	assert.ErrorIs(t, err, errs.ErrValidation)
}
