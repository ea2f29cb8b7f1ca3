package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/underwriter/pkg/config"
	"mercator-hq/underwriter/pkg/credit"
)

// DecisionMetrics tracks application and profile decisions.
//
// Metrics:
//   - underwriter_applications_total: Applications by final decision and review flag
//   - underwriter_profile_decisions_total: Profile decisions by profile and decision
//   - underwriter_hard_declines_total: Hard declines by profile
type DecisionMetrics struct {
	applicationsTotal     *prometheus.CounterVec
	profileDecisionsTotal *prometheus.CounterVec
	hardDeclinesTotal     *prometheus.CounterVec
}

// NewDecisionMetrics creates and registers decision metrics with the provided registry.
func NewDecisionMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *DecisionMetrics {
	dm := &DecisionMetrics{
		applicationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "applications_total",
				Help:      "Total number of decided applications",
			},
			[]string{"decision", "review"},
		),

		profileDecisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "profile_decisions_total",
				Help:      "Total number of profile decisions",
			},
			[]string{"profile", "decision"},
		),

		hardDeclinesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "hard_declines_total",
				Help:      "Total number of profile decisions vetoed by a hard decline rule",
			},
			[]string{"profile"},
		),
	}

	registry.MustRegister(
		dm.applicationsTotal,
		dm.profileDecisionsTotal,
		dm.hardDeclinesTotal,
	)

	return dm
}

// RecordApplication counts one application decision.
func (dm *DecisionMetrics) RecordApplication(decision credit.Decision, needsReview bool) {
	dm.applicationsTotal.WithLabelValues(decision.String(), strconv.FormatBool(needsReview)).Inc()
}

// RecordProfileDecision counts one profile decision.
func (dm *DecisionMetrics) RecordProfileDecision(profileID string, decision credit.Decision, hardDecline bool) {
	dm.profileDecisionsTotal.WithLabelValues(profileID, decision.String()).Inc()
	if hardDecline {
		dm.hardDeclinesTotal.WithLabelValues(profileID).Inc()
	}
}
