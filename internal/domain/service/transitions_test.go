package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/bibbank/credit-service/internal/domain/valueobject"
)

func TestNextStatus_TableEdges(t *testing.T) {
	tests := []struct {
		from   vo.CreditStatus
		action vo.Action
		ctx    TransitionContext
		want   vo.CreditStatus
	}{
		{vo.StatusDraft, vo.ActionSubmit, TransitionContext{}, vo.StatusSubmitted},
		{vo.StatusIncomplete, vo.ActionSubmit, TransitionContext{}, vo.StatusSubmitted},
		{vo.StatusSubmitted, vo.ActionReview, TransitionContext{}, vo.StatusAnalyst1Review},
		{vo.StatusSubmitted, vo.ActionReview, TransitionContext{AutoApprovable: true}, vo.StatusAnalyst3Approved},
		{vo.StatusSubmitted, vo.ActionSubmit, TransitionContext{AutoApprovable: true}, vo.StatusAnalyst3Approved},
		{vo.StatusSubmitted, vo.ActionReject, TransitionContext{}, vo.StatusRejected},
		{vo.StatusAnalyst1Review, vo.ActionApprove, TransitionContext{}, vo.StatusAnalyst1Approved},
		{vo.StatusAnalyst1Review, vo.ActionReturn, TransitionContext{}, vo.StatusAnalyst1Returned},
		{vo.StatusAnalyst1Review, vo.ActionReturn, TransitionContext{ToCommercial: true}, vo.StatusCommercialReturned},
		{vo.StatusAnalyst1Approved, vo.ActionApprove, TransitionContext{}, vo.StatusAnalyst2Approved},
		{vo.StatusAnalyst2Review, vo.ActionReturn, TransitionContext{}, vo.StatusAnalyst2Returned},
		{vo.StatusAnalyst2Returned, vo.ActionApprove, TransitionContext{}, vo.StatusAnalyst1Approved},
		{vo.StatusAnalyst2Approved, vo.ActionApprove, TransitionContext{}, vo.StatusAnalyst3Approved},
		{vo.StatusAnalyst3Review, vo.ActionReturn, TransitionContext{}, vo.StatusAnalyst3Returned},
		{vo.StatusAnalyst3Returned, vo.ActionApprove, TransitionContext{}, vo.StatusAnalyst2Approved},
		{vo.StatusAnalyst3Approved, vo.ActionApprove, TransitionContext{}, vo.StatusPendingSignature},
		{vo.StatusAnalyst3Approved, vo.ActionDisburse, TransitionContext{}, vo.StatusReadyToDisburse},
		{vo.StatusPendingSignature, vo.ActionDisburse, TransitionContext{}, vo.StatusReadyToDisburse},
		{vo.StatusReadyToDisburse, vo.ActionDisburse, TransitionContext{}, vo.StatusDisbursed},
		{vo.StatusDisbursed, vo.ActionActivate, TransitionContext{}, vo.StatusActive},
		{vo.StatusActive, vo.ActionComplete, TransitionContext{}, vo.StatusPaid},
		{vo.StatusActive, vo.ActionDefault, TransitionContext{}, vo.StatusDefaulted},
		{vo.StatusAnalyst1Returned, vo.ActionResubmit, TransitionContext{}, vo.StatusAnalyst1Review},
		{vo.StatusCommercialReturned, vo.ActionResubmit, TransitionContext{ReentryStatus: vo.StatusAnalyst3Review}, vo.StatusAnalyst3Review},
		{vo.StatusCommercialReturned, vo.ActionResubmit, TransitionContext{ReentryStatus: vo.StatusPaid}, vo.StatusAnalyst1Review},
		{vo.StatusCommercialReturned, vo.ActionResubmit, TransitionContext{}, vo.StatusAnalyst1Review},
	}
	for _, tt := range tests {
		t.Run(tt.from.String()+"/"+tt.action.String(), func(t *testing.T) {
			got, ok := NextStatus(tt.from, tt.action, tt.ctx)
			require.True(t, ok)
			assert.Equal(t, tt.want, got.To)
			assert.Equal(t, tt.from, got.From)
			assert.Equal(t, tt.action, got.Action)
		})
	}
}

func TestNextStatus_ReviewStagesAdvanceOneQueue(t *testing.T) {
	tests := []struct {
		from   vo.CreditStatus
		action vo.Action
		want   vo.CreditStatus
	}{
		{vo.StatusAnalyst2Review, vo.ActionApprove, vo.StatusAnalyst3Approved},
		{vo.StatusAnalyst2Approved, vo.ActionApprove, vo.StatusAnalyst3Approved},
		{vo.StatusAnalyst3Review, vo.ActionApprove, vo.StatusPendingSignature},
		{vo.StatusAnalyst3Approved, vo.ActionApprove, vo.StatusPendingSignature},
		{vo.StatusAnalyst2Review, vo.ActionReturn, vo.StatusAnalyst2Returned},
		{vo.StatusAnalyst2Approved, vo.ActionReturn, vo.StatusAnalyst2Returned},
		{vo.StatusAnalyst3Review, vo.ActionReturn, vo.StatusAnalyst3Returned},
		{vo.StatusAnalyst3Approved, vo.ActionReturn, vo.StatusAnalyst3Returned},
	}
	for _, tt := range tests {
		t.Run(tt.from.String()+"/"+tt.action.String(), func(t *testing.T) {
			got, ok := NextStatus(tt.from, tt.action, TransitionContext{})
			require.True(t, ok)
			assert.Equal(t, tt.want, got.To)

			got, ok = NextStatus(tt.from, tt.action, TransitionContext{ToCommercial: true})
			require.True(t, ok)
			if tt.action == vo.ActionReturn {
				assert.Equal(t, vo.StatusCommercialReturned, got.To)
			} else {
				assert.Equal(t, tt.want, got.To)
			}
		})
	}
}

func TestNextStatus_UndefinedPairsSignalNoTransition(t *testing.T) {
	contexts := []TransitionContext{{}, {AutoApprovable: true, ToCommercial: true, ReentryStatus: vo.StatusAnalyst2Review}}
	defined := 0
	for _, from := range vo.AllCreditStatuses() {
		for _, action := range allActions {
			_, inTable := transitionTable[transitionKey{from: from, action: action}]
			for _, c := range contexts {
				got, ok := NextStatus(from, action, c)
				assert.Equal(t, inTable, ok, "%s/%s", from, action)
				if !ok {
					assert.Equal(t, vo.Transition{}, got, "no fabricated target for %s/%s", from, action)
					continue
				}
				_, err := vo.NewCreditStatus(got.To.String())
				assert.NoError(t, err, "target of %s/%s must be a declared status", from, action)
			}
			if inTable {
				defined++
			}
		}
	}
	assert.Equal(t, len(transitionTable), defined)
}

func TestTerminalStatusesHaveNoEdges(t *testing.T) {
	for _, s := range []vo.CreditStatus{vo.StatusRejected, vo.StatusPaid, vo.StatusDefaulted} {
		assert.Empty(t, AllowedActions(s), s.String())
	}
	assert.Equal(t, []vo.Action{vo.ActionSubmit, vo.ActionReview, vo.ActionReject}, AllowedActions(vo.StatusSubmitted))
}
