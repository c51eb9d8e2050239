// Package metrics exposes the engine counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus implements port.Metrics.
type Prometheus struct {
	transitions       *prometheus.CounterVec
	sideEffectFailure *prometheus.CounterVec
	conflicts         prometheus.Counter
}

// NewPrometheus registers the engine counters on reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	factory := promauto.With(reg)
	return &Prometheus{
		transitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credit_transitions_total",
				Help: "Lifecycle transitions committed, by edge.",
			},
			[]string{"from", "to", "action"},
		),
		sideEffectFailure: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credit_side_effect_failures_total",
				Help: "Best-effort side effects that failed after a commit.",
			},
			[]string{"sink"},
		),
		conflicts: factory.NewCounter(prometheus.CounterOpts{
			Name: "credit_cas_conflicts_total",
			Help: "Optimistic-lock conflicts retried by the orchestrator.",
		}),
	}
}

func (m *Prometheus) TransitionApplied(from, to, action string) {
	m.transitions.WithLabelValues(from, to, action).Inc()
}

func (m *Prometheus) SideEffectFailed(sink string) {
	m.sideEffectFailure.WithLabelValues(sink).Inc()
}

func (m *Prometheus) ConflictRetried() {
	m.conflicts.Inc()
}
