package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPrometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheus(reg)

	m.TransitionApplied("ANALYST1_REVIEW", "ANALYST2_REVIEW", "APPROVE")
	m.TransitionApplied("ANALYST1_REVIEW", "ANALYST2_REVIEW", "APPROVE")
	m.SideEffectFailed("audit")
	m.ConflictRetried()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.transitions.WithLabelValues("ANALYST1_REVIEW", "ANALYST2_REVIEW", "APPROVE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sideEffectFailure.WithLabelValues("audit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.conflicts))

	n, err := testutil.GatherAndCount(reg)
	assert.NoError(t, err)
	assert.Equal(t, 3, n)
}
