package service

import (
	"slices"

	"github.com/bibbank/credit-service/internal/domain/errs"
	"github.com/bibbank/credit-service/internal/domain/model"
	vo "github.com/bibbank/credit-service/internal/domain/valueobject"
)

// stageInboxes is the permission table: the statuses each stage may act on.
// An application sits in exactly one inbox at a time.
var stageInboxes = map[vo.Stage][]vo.CreditStatus{
	vo.StageAnalyst1:  {vo.StatusSubmitted, vo.StatusAnalyst1Review, vo.StatusAnalyst2Returned},
	vo.StageAnalyst2:  {vo.StatusAnalyst1Approved, vo.StatusAnalyst2Review, vo.StatusAnalyst3Returned},
	vo.StageAnalyst3:  {vo.StatusAnalyst2Approved, vo.StatusAnalyst3Review, vo.StatusAnalyst3Approved, vo.StatusPendingSignature},
	vo.StageServicing: {vo.StatusReadyToDisburse, vo.StatusDisbursed, vo.StatusActive},
}

// Inbox returns the statuses stage may act on.
func Inbox(stage vo.Stage) []vo.CreditStatus {
	return slices.Clone(stageInboxes[stage])
}

// Authorize fails with a permission error unless stage may act on status.
func Authorize(stage vo.Stage, status vo.CreditStatus) error {
	inbox, ok := stageInboxes[stage]
	if !ok {
		return errs.Validation("authorize", "unknown stage %d", int(stage))
	}
	if !slices.Contains(inbox, status) {
		return errs.Permission("authorize", "%s cannot act on %s", stage, status)
	}
	return nil
}

// StageOwning returns the stage whose inbox holds status.
func StageOwning(status vo.CreditStatus) (vo.Stage, bool) {
	for stage, inbox := range stageInboxes {
		if slices.Contains(inbox, status) {
			return stage, true
		}
	}
	return 0, false
}

// ReentryStatus is where a returned application goes back to once the
// applicant or the commercial channel resubmits it: the review status of the
// stage that returned it.
func ReentryStatus(app model.CreditApplication) vo.CreditStatus {
	last, ok := app.LastReturn()
	if !ok {
		return vo.StatusAnalyst1Review
	}
	stage, ok := StageOwning(last.PreviousStatus)
	if !ok {
		return vo.StatusAnalyst1Review
	}
	review, ok := stage.ReviewStatus()
	if !ok {
		return vo.StatusAnalyst1Review
	}
	return review
}
