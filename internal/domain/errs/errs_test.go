package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindSentinels(t *testing.T) {
	tests := []struct {
		err      error
		sentinel error
		kind     Kind
	}{
		{Validation("op", "reason is required"), ErrValidation, KindValidation},
		{Permission("op", "analyst1 cannot act on ANALYST2_REVIEW"), ErrPermission, KindPermission},
		{NotFound("op", "application x not found"), ErrNotFound, KindNotFound},
		{Conflict("op", "stale version"), ErrConflict, KindConflict},
		{IllegalTransition("op", "DRAFT", "APPROVE"), ErrIllegalTransition, KindIllegalTransition},
		{External("op", errors.New("dial tcp")), ErrExternalDependency, KindExternalDependency},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			wrapped := fmt.Errorf("use case: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.sentinel)
			assert.Equal(t, tt.kind, KindOf(wrapped))
			for _, other := range sentinels {
				if other != tt.sentinel {
					assert.NotErrorIs(t, wrapped, other)
				}
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := Permission("process", "analyst1 cannot act on %s", "ANALYST2_REVIEW")
	assert.Equal(t, "process: analyst1 cannot act on ANALYST2_REVIEW", err.Error())
	assert.Equal(t, "analyst1 cannot act on ANALYST2_REVIEW", Reason(err))

	cause := errors.New("connection refused")
	ext := External("find application", cause)
	assert.ErrorIs(t, ext, cause)
	assert.Equal(t, "find application: dependency unavailable: connection refused", ext.Error())

	illegal := IllegalTransition("", "DRAFT", "APPROVE")
	assert.Equal(t, "action APPROVE is not allowed from status DRAFT", illegal.Error())
}

func TestKindOfForeignError(t *testing.T) {
	plain := errors.New("boom")
	assert.Equal(t, KindUnknown, KindOf(plain))
	assert.Equal(t, "boom", Reason(plain))
}
