package valueobject

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want CreditStatus
	}{
		{"pending", StatusSubmitted},
		{"approved", StatusAnalyst3Approved},
		{"disbursed", StatusDisbursed},
		{"rejected", StatusRejected},
		{"ANALYST2_REVIEW", StatusAnalyst2Review},
		{"DRAFT", StatusDraft},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := NormalizeStatus(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := NormalizeStatus("PENDING")
	assert.Error(t, err, "legacy lookup is exact")
	_, err = NewCreditStatus("pending")
	assert.Error(t, err, "strict parser rejects legacy values")
}

func TestStoredValuesFor(t *testing.T) {
	got := StoredValuesFor([]CreditStatus{StatusSubmitted, StatusAnalyst1Review})
	assert.Equal(t, []string{"ANALYST1_REVIEW", "SUBMITTED", "pending"}, got)

	got = StoredValuesFor([]CreditStatus{StatusAnalyst2Review})
	assert.Equal(t, []string{"ANALYST2_REVIEW"}, got)
}

func TestLegacyStatusValues(t *testing.T) {
	assert.Equal(t, []string{"approved", "disbursed", "pending", "rejected"}, LegacyStatusValues())
	assert.True(t, IsLegacyStatus("approved"))
	assert.False(t, IsLegacyStatus("APPROVED"))
}

func TestAllCreditStatuses(t *testing.T) {
	all := AllCreditStatuses()
	assert.Len(t, all, 20)
	for _, s := range all {
		parsed, err := NewCreditStatus(s.String())
		require.NoError(t, err)
		assert.True(t, parsed.Equal(s))
	}
}

func TestCreditStatusPredicates(t *testing.T) {
	assert.True(t, StatusRejected.IsTerminal())
	assert.True(t, StatusDefaulted.IsTerminal())
	assert.False(t, StatusActive.IsTerminal())
	assert.True(t, StatusCommercialReturned.IsReturned())
	assert.False(t, StatusAnalyst1Review.IsReturned())
	assert.True(t, CreditStatus{}.IsZero())
}

func TestNewAction(t *testing.T) {
	a, err := NewAction(" approve ")
	require.NoError(t, err)
	assert.Equal(t, ActionApprove, a)
	assert.True(t, a.IsReviewDecision())
	assert.False(t, a.IsServicing())
	assert.True(t, ActionDefault.IsServicing())

	_, err = NewAction("escalate")
	assert.Error(t, err)
}

func TestParseStage(t *testing.T) {
	for in, want := range map[string]Stage{"1": StageAnalyst1, "analyst2": StageAnalyst2, "3": StageAnalyst3, "servicing": StageServicing} {
		got, err := ParseStage(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseStage("5")
	assert.Error(t, err)
	_, err = ParseStage("analyst9")
	assert.Error(t, err)
}

func TestStageReturnTargets(t *testing.T) {
	assert.Equal(t, "applicant", StageAnalyst1.ReturnTarget())
	assert.Equal(t, "analyst1", StageAnalyst2.ReturnTarget())
	assert.Equal(t, "analyst2", StageAnalyst3.ReturnTarget())

	review, ok := StageAnalyst2.ReviewStatus()
	require.True(t, ok)
	assert.Equal(t, StatusAnalyst2Review, review)
	_, ok = StageServicing.ReviewStatus()
	assert.False(t, ok)
}

func TestRadicationNumber(t *testing.T) {
	date := time.Date(2026, time.March, 7, 15, 0, 0, 0, time.UTC)
	r, err := NewRadicationNumber(date, 42)
	require.NoError(t, err)
	assert.Equal(t, "RAD-2026-0307-00042", r.String())

	big, err := NewRadicationNumber(date, 123456)
	require.NoError(t, err)
	assert.Equal(t, "RAD-2026-0307-123456", big.String())

	_, err = NewRadicationNumber(date, 0)
	assert.Error(t, err)

	parsed, err := ParseRadicationNumber("RAD-2026-0307-00042")
	require.NoError(t, err)
	assert.Equal(t, r, parsed)
	_, err = ParseRadicationNumber("RAD-26-0307-42")
	assert.Error(t, err)
}

func TestApprovalLevelDays(t *testing.T) {
	assert.Equal(t, 0, ApprovalLevelAuto.ExpectedDays())
	assert.Equal(t, 2, ApprovalLevelLevel1.ExpectedDays())
	assert.Equal(t, 5, ApprovalLevelLevel2.ExpectedDays())
	assert.Equal(t, 10, ApprovalLevelCommittee.ExpectedDays())
}
