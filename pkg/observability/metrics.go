package observability

import (
	"context"

	"github.com/aretw0/trustroute/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine's Prometheus collectors. Node identities are never used as
// labels, since the tables grow without bound.
type Metrics struct {
	Decisions    *prometheus.CounterVec
	QUpdates     prometheus.Counter
	QValues      prometheus.Histogram
	TrustUpdates prometheus.Counter
	TrustScores  prometheus.Histogram
	Outcomes     *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trustroute_decisions_total",
				Help: "Forwarding decisions by resulting action kind and gate state.",
			},
			[]string{"action", "gated", "seeded"},
		),
		QUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trustroute_q_updates_total",
			Help: "Q-value updates applied.",
		}),
		QValues: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "trustroute_q_value",
			Help:    "Distribution of Q-values written by the learner.",
			Buckets: []float64{0, 0.5, 1, 2, 4, 6, 8, 10, 15},
		}),
		TrustUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trustroute_trust_updates_total",
			Help: "Trust score updates applied.",
		}),
		TrustScores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "trustroute_trust_score",
			Help:    "Distribution of trust scores written by the learner.",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
		Outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trustroute_outcomes_total",
				Help: "Outcome feedback handled by the controller, by result.",
			},
			[]string{"result"},
		),
	}

	for _, c := range []prometheus.Collector{m.Decisions, m.QUpdates, m.QValues, m.TrustUpdates, m.TrustScores, m.Outcomes} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDecision: func(_ context.Context, e *domain.DecisionEvent) {
			m.Decisions.WithLabelValues(actionKind(e.Decision.Action), boolLabel(e.Decision.Gated), boolLabel(e.Decision.Seeded)).Inc()
		},
		OnQUpdate: func(_ context.Context, e *domain.QUpdateEvent) {
			m.QUpdates.Inc()
			m.QValues.Observe(e.New)
		},
		OnTrustUpdate: func(_ context.Context, e *domain.TrustUpdateEvent) {
			m.TrustUpdates.Inc()
			m.TrustScores.Observe(e.New)
		},
	}
}

// ObserveOutcome counts an outcome result ("applied", "rejected", "error").
func (m *Metrics) ObserveOutcome(result string) {
	m.Outcomes.WithLabelValues(result).Inc()
}

func actionKind(a domain.Action) string {
	if a.IsFlood() {
		return "flood"
	}
	return "port"
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
