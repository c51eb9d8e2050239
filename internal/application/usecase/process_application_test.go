package usecase_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/credit-service/internal/application/dto"
	"github.com/bibbank/credit-service/internal/application/usecase"
	"github.com/bibbank/credit-service/internal/domain/errs"
	"github.com/bibbank/credit-service/internal/domain/port"
	vo "github.com/bibbank/credit-service/internal/domain/valueobject"
)

func TestProcessApplication_StageCannotActOutsideInbox(t *testing.T) {
	h := newHarness(t)
	app := h.seed(t, "ANALYST2_REVIEW")

	_, err := h.process(dto.ProcessApplicationRequest{
		Actor: analyst1, ApplicationID: app.ID(), Stage: "1", Action: "APPROVE", Reason: "ok",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrPermission)
	assert.Contains(t, err.Error(), "analyst1 cannot act on ANALYST2_REVIEW")

	stored, err := h.repo.FindByID(context.Background(), app.ID())
	require.NoError(t, err)
	assert.Equal(t, app.Version(), stored.Version())
}

func TestProcessApplication_ReturnRequiresReason(t *testing.T) {
	h := newHarness(t)
	created := h.create(t, 20_000_000)
	h.startReview(t, created.ID)

	before, err := h.repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)

	for _, reason := range []string{"", "   "} {
		_, err := h.process(dto.ProcessApplicationRequest{
			Actor: analyst1, ApplicationID: created.ID, Stage: "analyst1", Action: "RETURN", Reason: reason,
		})
		assert.ErrorIs(t, err, errs.ErrValidation)
	}

	after, err := h.repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Len(t, after.StatusHistory(), len(before.StatusHistory()))
	assert.Empty(t, after.ReturnHistory())
	assert.Equal(t, before.Version(), after.Version())
	assert.Equal(t, vo.StatusAnalyst1Review, after.Status())
}

func TestProcessApplication_RequestValidation(t *testing.T) {
	h := newHarness(t)
	created := h.create(t, 20_000_000)
	h.startReview(t, created.ID)

	tests := []struct {
		name string
		req  dto.ProcessApplicationRequest
		want error
	}{
		{"unknown stage", dto.ProcessApplicationRequest{Actor: analyst1, Stage: "9", Action: "APPROVE"}, errs.ErrValidation},
		{"servicing stage", dto.ProcessApplicationRequest{Actor: servicing, Stage: "servicing", Action: "APPROVE"}, errs.ErrValidation},
		{"not a decision", dto.ProcessApplicationRequest{Actor: analyst1, Stage: "1", Action: "DISBURSE"}, errs.ErrValidation},
		{"reject without reason", dto.ProcessApplicationRequest{Actor: analyst1, Stage: "1", Action: "REJECT"}, errs.ErrValidation},
		{"bad return target", dto.ProcessApplicationRequest{Actor: analyst1, Stage: "1", Action: "RETURN", Reason: "x", ReturnTo: "bank"}, errs.ErrValidation},
		{"references outside stage 2", dto.ProcessApplicationRequest{Actor: analyst1, Stage: "1", Action: "APPROVE", References: &dto.ReferencesInput{}}, errs.ErrValidation},
		{"wrong role", dto.ProcessApplicationRequest{Actor: analyst2, Stage: "1", Action: "APPROVE"}, errs.ErrPermission},
		{"anonymous", dto.ProcessApplicationRequest{Stage: "1", Action: "APPROVE"}, errs.ErrPermission},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.req.ApplicationID = created.ID
			_, err := h.process(tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	t.Run("illegal edge", func(t *testing.T) {
		app := h.seed(t, "SUBMITTED")
		_, err := h.process(dto.ProcessApplicationRequest{
			Actor: analyst1, ApplicationID: app.ID(), Stage: "1", Action: "APPROVE", Reason: "ok",
		})
		assert.ErrorIs(t, err, errs.ErrIllegalTransition)
	})

	t.Run("unknown application", func(t *testing.T) {
		_, err := h.process(dto.ProcessApplicationRequest{
			Actor: analyst1, ApplicationID: "8d0c5f5e-4a43-4c2e-9a55-0d8d7b1d7a10", Stage: "1", Action: "APPROVE",
		})
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})

	t.Run("malformed id", func(t *testing.T) {
		_, err := h.process(dto.ProcessApplicationRequest{
			Actor: analyst1, ApplicationID: "nope", Stage: "1", Action: "APPROVE",
		})
		assert.ErrorIs(t, err, errs.ErrValidation)
	})
}

func TestProcessApplication_FullLifecycle(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	created := h.create(t, 20_000_000)
	id := created.ID

	started := h.startReview(t, id)
	assert.False(t, started.AutoApproved)
	assert.Equal(t, "ANALYST1_REVIEW", started.Application.Status)
	require.NotNil(t, started.Application.Validations)

	resp, err := h.process(dto.ProcessApplicationRequest{Actor: analyst1, ApplicationID: id, Stage: "1", Action: "approve", Reason: "identity verified"})
	require.NoError(t, err)
	assert.Equal(t, "ANALYST1_APPROVED", resp.Status)

	resp, err = h.process(dto.ProcessApplicationRequest{
		Actor: analyst2, ApplicationID: id, Stage: "2", Action: "APPROVE", Reason: "references ok",
		References: &dto.ReferencesInput{PersonalVerified: true, LaborVerified: true, Notes: "called employer"},
	})
	require.NoError(t, err)
	assert.Equal(t, "ANALYST2_APPROVED", resp.Status)
	require.NotNil(t, resp.Reviews.References)
	assert.True(t, resp.Reviews.References.LaborVerified)

	resp, err = h.process(dto.ProcessApplicationRequest{Actor: analyst3, ApplicationID: id, Stage: "3", Action: "APPROVE", Reason: "committee ok"})
	require.NoError(t, err)
	assert.Equal(t, "ANALYST3_APPROVED", resp.Status)

	sign := usecase.NewGenerateSignatureLinkUseCase(h.store, h.effects, h.rules, mockSignature{})
	resp, err = sign.Execute(ctx, dto.ApplicationRef{Actor: analyst3, ApplicationID: id})
	require.NoError(t, err)
	assert.Equal(t, "PENDING_SIGNATURE", resp.Status)
	require.NotNil(t, resp.Signature)
	assert.Equal(t, "https://sign.example.com/"+created.Radication, resp.Signature.URL)

	disburse := usecase.NewConfirmDisburseUseCase(h.store, h.effects, h.rules)
	resp, err = disburse.Execute(ctx, dto.ConfirmDisburseRequest{Actor: analyst3, ApplicationID: id, Method: "transfer", BankName: "Banco Andino"})
	require.NoError(t, err)
	assert.Equal(t, "READY_TO_DISBURSE", resp.Status)
	require.NotNil(t, resp.Disbursement)
	assert.Equal(t, "20000000", resp.Disbursement.Amount.String())
	assert.Equal(t, "TRANSFER", resp.Disbursement.Method)

	advance := usecase.NewAdvanceLoanUseCase(h.store, h.effects, h.rules)
	for _, step := range []struct{ action, want string }{
		{"DISBURSE", "DISBURSED"},
		{"ACTIVATE", "ACTIVE"},
		{"COMPLETE", "PAID"},
	} {
		resp, err = advance.Execute(ctx, dto.AdvanceLoanRequest{Actor: servicing, ApplicationID: id, Action: step.action})
		require.NoError(t, err, step.action)
		assert.Equal(t, step.want, resp.Status)
	}

	assert.Len(t, resp.StatusHistory, 10)
	assert.Equal(t, resp.Status, resp.StatusHistory[len(resp.StatusHistory)-1].Status.String())
	assert.Equal(t, 10, resp.Version)
	assert.Empty(t, resp.AllowedActions)
	require.NotNil(t, resp.Reviews.Analyst1)
	require.NotNil(t, resp.Reviews.Analyst2)
	require.NotNil(t, resp.Reviews.Analyst3)
	assert.Equal(t, "analyst-3", resp.Reviews.Analyst3.ReviewerID)

	assert.Len(t, h.metrics.transitions, 9)
	assert.Equal(t, "CREATE", h.audit.actions()[0])
	assert.Len(t, h.audit.actions(), 10)
	require.Len(t, h.notifier.sent, 1)
	assert.Equal(t, "CREDIT_SIGNATURE_REQUESTED", h.notifier.sent[0].Type)

	_, err = advance.Execute(ctx, dto.AdvanceLoanRequest{Actor: servicing, ApplicationID: id, Action: "DEFAULT"})
	assert.ErrorIs(t, err, errs.ErrPermission)
}

func TestProcessApplication_Reject(t *testing.T) {
	h := newHarness(t)
	created := h.create(t, 20_000_000)
	h.startReview(t, created.ID)

	resp, err := h.process(dto.ProcessApplicationRequest{
		Actor: analyst1, ApplicationID: created.ID, Stage: "1", Action: "REJECT", Reason: "income not verifiable",
	})
	require.NoError(t, err)

	assert.Equal(t, "REJECTED", resp.Status)
	require.NotNil(t, resp.Reviews.Analyst1)
	assert.Equal(t, "REJECTED: income not verifiable", resp.Reviews.Analyst1.Notes)
	last := resp.StatusHistory[len(resp.StatusHistory)-1]
	assert.Equal(t, "income not verifiable", last.Reason)
	assert.Equal(t, "analyst-1", last.ActorID)
}

func TestProcessApplication_ReturnAndResubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("stage 2 returns to stage 1", func(t *testing.T) {
		h := newHarness(t)
		created := h.create(t, 20_000_000)
		h.startReview(t, created.ID)
		_, err := h.process(dto.ProcessApplicationRequest{Actor: analyst1, ApplicationID: created.ID, Stage: "1", Action: "APPROVE", Reason: "ok"})
		require.NoError(t, err)

		resp, err := h.process(dto.ProcessApplicationRequest{
			Actor: analyst2, ApplicationID: created.ID, Stage: "2", Action: "RETURN",
			Reason: "labor certificate missing", Attachments: []string{"memo.pdf"},
		})
		require.NoError(t, err)
		assert.Equal(t, "ANALYST2_RETURNED", resp.Status)
		require.Len(t, resp.ReturnHistory, 1)
		ret := resp.ReturnHistory[0]
		assert.Equal(t, "analyst-2", ret.ReturnedBy)
		assert.Equal(t, "analyst2", ret.ReturnedByRole)
		assert.Equal(t, "analyst1", ret.ReturnedTo)
		assert.Equal(t, vo.StatusAnalyst1Approved, ret.PreviousStatus)
		assert.Equal(t, []string{"memo.pdf"}, ret.Attachments)
		assert.Empty(t, h.notifier.sent)

		resp, err = h.process(dto.ProcessApplicationRequest{Actor: analyst1, ApplicationID: created.ID, Stage: "1", Action: "APPROVE", Reason: "certificate attached"})
		require.NoError(t, err)
		assert.Equal(t, "ANALYST1_APPROVED", resp.Status)
	})

	t.Run("stage 1 returns to the applicant", func(t *testing.T) {
		h := newHarness(t)
		created := h.create(t, 20_000_000)
		h.startReview(t, created.ID)

		resp, err := h.process(dto.ProcessApplicationRequest{Actor: analyst1, ApplicationID: created.ID, Stage: "1", Action: "RETURN", Reason: "blurry ID"})
		require.NoError(t, err)
		assert.Equal(t, "ANALYST1_RETURNED", resp.Status)
		assert.Equal(t, "applicant", resp.ReturnHistory[0].ReturnedTo)

		first := "Valentina María"
		resubmit := usecase.NewResubmitUseCase(h.store, h.effects, h.rules)
		resp, err = resubmit.Execute(ctx, dto.ResubmitRequest{
			Actor: applicant, ApplicationID: created.ID, Note: "new scan",
			Patch: &dto.ApplicantPatchInput{FirstName: &first},
		})
		require.NoError(t, err)
		assert.Equal(t, "ANALYST1_REVIEW", resp.Status)
		assert.Equal(t, "Valentina María", resp.Applicant.FirstName)
	})

	t.Run("return to commercial notifies the submitter and re-enters the returning stage", func(t *testing.T) {
		h := newHarness(t)
		created := h.create(t, 20_000_000)
		h.startReview(t, created.ID)
		_, err := h.process(dto.ProcessApplicationRequest{Actor: analyst1, ApplicationID: created.ID, Stage: "1", Action: "APPROVE", Reason: "ok"})
		require.NoError(t, err)

		resp, err := h.process(dto.ProcessApplicationRequest{
			Actor: analyst2, ApplicationID: created.ID, Stage: "2", Action: "RETURN", Reason: "call the client", ReturnTo: "Commercial",
		})
		require.NoError(t, err)
		assert.Equal(t, "COMMERCIAL_RETURNED", resp.Status)
		assert.Equal(t, "commercial", resp.ReturnHistory[0].ReturnedTo)
		require.Len(t, h.notifier.sent, 1)
		assert.Equal(t, "applicant-1", h.notifier.sent[0].UserID)
		assert.Equal(t, "call the client", h.notifier.sent[0].Message)

		resubmit := usecase.NewResubmitUseCase(h.store, h.effects, h.rules)
		_, err = resubmit.Execute(ctx, dto.ResubmitRequest{Actor: analyst1, ApplicationID: created.ID})
		assert.ErrorIs(t, err, errs.ErrPermission)

		resp, err = resubmit.Execute(ctx, dto.ResubmitRequest{Actor: applicant, ApplicationID: created.ID})
		require.NoError(t, err)
		assert.Equal(t, "ANALYST2_REVIEW", resp.Status)

		resp, err = h.process(dto.ProcessApplicationRequest{Actor: analyst2, ApplicationID: created.ID, Stage: "2", Action: "APPROVE", Reason: "client confirmed"})
		require.NoError(t, err)
		assert.Equal(t, "ANALYST3_APPROVED", resp.Status, "approving out of stage 2 review lands in stage 3's approved queue")
	})
}

func TestProcessApplication_SideEffectFailureDoesNotFailTransition(t *testing.T) {
	h := newHarness(t)
	created := h.create(t, 20_000_000)
	h.startReview(t, created.ID)
	h.audit.logFunc = func(context.Context, port.AuditRecord) error { return assert.AnError }

	resp, err := h.process(dto.ProcessApplicationRequest{Actor: analyst1, ApplicationID: created.ID, Stage: "1", Action: "APPROVE", Reason: "ok"})

	require.NoError(t, err)
	assert.Equal(t, "ANALYST1_APPROVED", resp.Status)
	assert.Equal(t, 1, h.metrics.failures["audit"])
}

func TestProcessApplication_ConcurrentDecisionsApplyOnce(t *testing.T) {
	const workers = 8
	h := newHarness(t)
	created := h.create(t, 20_000_000)
	h.startReview(t, created.ID)

	before, err := h.repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, vo.StatusAnalyst1Review, before.Status())

	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errCh = make(chan error, workers)
	)
	for i := range workers {
		req := dto.ProcessApplicationRequest{
			Actor: analyst1, ApplicationID: created.ID, Stage: "1", Action: "APPROVE", Reason: "looks fine",
		}
		if i%2 == 1 {
			req.Action = "REJECT"
			req.Reason = "income not verifiable"
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := h.process(req)
			errCh <- err
		}()
	}
	close(start)
	wg.Wait()
	close(errCh)

	succeeded := 0
	for err := range errCh {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one decision may win")

	after, err := h.repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, after.StatusHistory(), len(before.StatusHistory())+1)
	last := after.StatusHistory()[len(after.StatusHistory())-1]
	assert.Equal(t, after.Status(), last.Status)
	assert.Contains(t, []vo.CreditStatus{vo.StatusAnalyst1Approved, vo.StatusRejected}, after.Status())
	assert.Equal(t, before.Version()+1, after.Version())
}
