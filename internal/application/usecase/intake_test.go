package usecase_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/credit-service/internal/application/dto"
	"github.com/bibbank/credit-service/internal/application/usecase"
	"github.com/bibbank/credit-service/internal/domain/errs"
	"github.com/bibbank/credit-service/pkg/auth"
)

func TestCreateApplication(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns consecutive radication numbers", func(t *testing.T) {
		h := newHarness(t)
		first := h.create(t, 20_000_000)
		second := h.create(t, 9_000_000)

		assert.Regexp(t, regexp.MustCompile(`^RAD-2026-0406-00001$`), first.Radication)
		assert.Equal(t, "RAD-2026-0406-00002", second.Radication)
		assert.Equal(t, "SUBMITTED", first.Status)
		assert.Equal(t, "WEB", first.Source)
		assert.Equal(t, "applicant-1", first.SubmitterID)
		assert.Equal(t, "COMMITTEE", first.ApprovalLevel)
		assert.Equal(t, 10, first.ExpectedDays)
		assert.Equal(t, 1, first.Version)
		assert.Equal(t, "INDEFINITE", first.Applicant.Employment.ContractType)
		require.Len(t, first.StatusHistory, 1)
		assert.Equal(t, []string{"CREATE", "CREATE"}, h.audit.actions())
	})

	t.Run("rejects bad input", func(t *testing.T) {
		h := newHarness(t)
		uc := usecase.NewCreateApplicationUseCase(h.store, h.effects, h.rules)

		bad := applicantInput(1_000)
		bad.DateOfBirth = "14/09/1987"
		_, err := uc.Execute(ctx, dto.CreateApplicationRequest{Actor: applicant, Source: "WEB", Applicant: bad})
		assert.ErrorIs(t, err, errs.ErrValidation)

		_, err = uc.Execute(ctx, dto.CreateApplicationRequest{Actor: applicant, Source: "fax", Applicant: applicantInput(1_000)})
		assert.ErrorIs(t, err, errs.ErrValidation)

		_, err = uc.Execute(ctx, dto.CreateApplicationRequest{Actor: analyst1, Source: "WEB", Applicant: applicantInput(1_000)})
		assert.ErrorIs(t, err, errs.ErrPermission)

		incomplete := applicantInput(1_000)
		incomplete.RequestedAmount = decimal.Zero
		_, err = uc.Execute(ctx, dto.CreateApplicationRequest{Actor: applicant, Source: "WEB", Applicant: incomplete})
		assert.ErrorIs(t, err, errs.ErrValidation)
	})
}

func TestSubmitDraft(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	create := usecase.NewCreateApplicationUseCase(h.store, h.effects, h.rules)
	submit := usecase.NewSubmitDraftUseCase(h.store, h.effects, h.rules)

	partial := applicantInput(0)
	partial.TermMonths = 0
	draft, err := create.Execute(ctx, dto.CreateApplicationRequest{Actor: applicant, Source: "MOBILE", Draft: true, Applicant: partial})
	require.NoError(t, err)
	assert.Equal(t, "DRAFT", draft.Status)

	_, err = submit.Execute(ctx, dto.ApplicationRef{Actor: applicant, ApplicationID: draft.ID})
	assert.ErrorIs(t, err, errs.ErrValidation, "incomplete drafts cannot be submitted")

	amount := decimal.NewFromInt(4_000_000)
	term := 12
	update := usecase.NewResubmitUseCase(h.store, h.effects, h.rules)
	_, err = update.Execute(ctx, dto.ResubmitRequest{Actor: applicant, ApplicationID: draft.ID, Patch: &dto.ApplicantPatchInput{RequestedAmount: &amount, TermMonths: &term}})
	assert.ErrorIs(t, err, errs.ErrIllegalTransition, "drafts are not returned applications")

	other := actor("applicant-2", auth.RoleApplicant)
	_, err = submit.Execute(ctx, dto.ApplicationRef{Actor: other, ApplicationID: draft.ID})
	assert.ErrorIs(t, err, errs.ErrPermission)

	h2 := newHarness(t)
	create2 := usecase.NewCreateApplicationUseCase(h2.store, h2.effects, h2.rules)
	complete, err := create2.Execute(ctx, dto.CreateApplicationRequest{Actor: applicant, Source: "WEB", Draft: true, Applicant: applicantInput(4_000_000)})
	require.NoError(t, err)

	resp, err := usecase.NewSubmitDraftUseCase(h2.store, h2.effects, h2.rules).Execute(ctx, dto.ApplicationRef{Actor: applicant, ApplicationID: complete.ID})
	require.NoError(t, err)
	assert.Equal(t, "SUBMITTED", resp.Status)
	assert.Len(t, resp.StatusHistory, 2)

	_, err = usecase.NewSubmitDraftUseCase(h2.store, h2.effects, h2.rules).Execute(ctx, dto.ApplicationRef{Actor: applicant, ApplicationID: complete.ID})
	assert.ErrorIs(t, err, errs.ErrIllegalTransition)
}
