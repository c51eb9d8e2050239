package service

import (
	vo "github.com/bibbank/credit-service/internal/domain/valueobject"
)

// TransitionContext carries the facts that pick between alternative targets
// of the same (status, action) pair.
type TransitionContext struct {
	// AutoApprovable routes SUBMITTED straight to ANALYST3_APPROVED.
	AutoApprovable bool
	// ToCommercial sends a RETURN to the commercial channel instead of the
	// preceding stage.
	ToCommercial bool
	// ReentryStatus is where a RESUBMIT from COMMERCIAL_RETURNED lands. It
	// must be an analyst review status; anything else falls back to stage 1.
	ReentryStatus vo.CreditStatus
}

type transitionKey struct {
	from   vo.CreditStatus
	action vo.Action
}

type resolver func(TransitionContext) vo.CreditStatus

func to(s vo.CreditStatus) resolver {
	return func(TransitionContext) vo.CreditStatus { return s }
}

func returnTo(stageTarget vo.CreditStatus) resolver {
	return func(c TransitionContext) vo.CreditStatus {
		if c.ToCommercial {
			return vo.StatusCommercialReturned
		}
		return stageTarget
	}
}

func submitted(c TransitionContext) vo.CreditStatus {
	if c.AutoApprovable {
		return vo.StatusAnalyst3Approved
	}
	return vo.StatusAnalyst1Review
}

func reentry(c TransitionContext) vo.CreditStatus {
	switch c.ReentryStatus {
	case vo.StatusAnalyst1Review, vo.StatusAnalyst2Review, vo.StatusAnalyst3Review:
		return c.ReentryStatus
	}
	return vo.StatusAnalyst1Review
}

// transitionTable is the only place lifecycle edges are defined.
var transitionTable = buildTransitionTable()

func buildTransitionTable() map[transitionKey]resolver {
	t := map[transitionKey]resolver{}
	add := func(r resolver, action vo.Action, from ...vo.CreditStatus) {
		for _, f := range from {
			t[transitionKey{from: f, action: action}] = r
		}
	}

	// Intake.
	add(to(vo.StatusSubmitted), vo.ActionSubmit, vo.StatusDraft, vo.StatusIncomplete)
	add(submitted, vo.ActionSubmit, vo.StatusSubmitted)
	add(submitted, vo.ActionReview, vo.StatusSubmitted)
	add(to(vo.StatusRejected), vo.ActionReject, vo.StatusSubmitted)

	// Stage 1 and what stage 2 sends back to it.
	stage1 := []vo.CreditStatus{vo.StatusAnalyst1Review, vo.StatusAnalyst2Returned}
	add(to(vo.StatusAnalyst1Approved), vo.ActionApprove, stage1...)
	add(to(vo.StatusRejected), vo.ActionReject, stage1...)
	add(returnTo(vo.StatusAnalyst1Returned), vo.ActionReturn, stage1...)

	// Stage 2. An approval out of its own review skips straight to stage 3's
	// approved queue.
	add(to(vo.StatusAnalyst2Approved), vo.ActionApprove, vo.StatusAnalyst1Approved, vo.StatusAnalyst3Returned)
	add(to(vo.StatusAnalyst3Approved), vo.ActionApprove, vo.StatusAnalyst2Review)
	add(to(vo.StatusRejected), vo.ActionReject, vo.StatusAnalyst1Approved, vo.StatusAnalyst2Review, vo.StatusAnalyst3Returned)
	add(returnTo(vo.StatusAnalyst2Returned), vo.ActionReturn,
		vo.StatusAnalyst1Approved, vo.StatusAnalyst2Review, vo.StatusAnalyst3Returned, vo.StatusAnalyst2Approved)

	// Stage 3.
	add(to(vo.StatusAnalyst3Approved), vo.ActionApprove, vo.StatusAnalyst2Approved)
	add(to(vo.StatusPendingSignature), vo.ActionApprove, vo.StatusAnalyst3Review, vo.StatusAnalyst3Approved)
	add(to(vo.StatusRejected), vo.ActionReject, vo.StatusAnalyst2Approved, vo.StatusAnalyst3Review, vo.StatusAnalyst3Approved)
	add(returnTo(vo.StatusAnalyst3Returned), vo.ActionReturn, vo.StatusAnalyst3Review, vo.StatusAnalyst3Approved)

	// Signature and funding.
	add(to(vo.StatusReadyToDisburse), vo.ActionDisburse, vo.StatusPendingSignature, vo.StatusAnalyst3Approved)
	add(to(vo.StatusDisbursed), vo.ActionDisburse, vo.StatusReadyToDisburse)
	add(to(vo.StatusActive), vo.ActionActivate, vo.StatusDisbursed)
	add(to(vo.StatusPaid), vo.ActionComplete, vo.StatusActive)
	add(to(vo.StatusDefaulted), vo.ActionDefault, vo.StatusActive)

	// Re-entry after a return.
	add(to(vo.StatusAnalyst1Review), vo.ActionResubmit, vo.StatusAnalyst1Returned)
	add(reentry, vo.ActionResubmit, vo.StatusCommercialReturned)

	return t
}

// NextStatus looks up the lifecycle edge for (from, action). The boolean is
// false when the table has no such edge; callers must treat that as an
// illegal transition, never guess a target.
func NextStatus(from vo.CreditStatus, action vo.Action, c TransitionContext) (vo.Transition, bool) {
	r, ok := transitionTable[transitionKey{from: from, action: action}]
	if !ok {
		return vo.Transition{}, false
	}
	return vo.Transition{From: from, Action: action, To: r(c)}, true
}

// AllowedActions lists the actions with an edge out of from.
func AllowedActions(from vo.CreditStatus) []vo.Action {
	var out []vo.Action
	for _, a := range allActions {
		if _, ok := transitionTable[transitionKey{from: from, action: a}]; ok {
			out = append(out, a)
		}
	}
	return out
}

var allActions = []vo.Action{
	vo.ActionSubmit, vo.ActionReview, vo.ActionApprove, vo.ActionReject, vo.ActionReturn,
	vo.ActionResubmit, vo.ActionDisburse, vo.ActionActivate, vo.ActionComplete, vo.ActionDefault,
}
