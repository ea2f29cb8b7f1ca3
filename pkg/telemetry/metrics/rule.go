package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/underwriter/pkg/config"
	"mercator-hq/underwriter/pkg/decision/engine"
)

// RuleMetrics tracks rule evaluations and input rejections.
//
// Metrics:
//   - underwriter_rule_evaluations_total: Rule evaluations by outcome (fired, not_fired, fault)
//   - underwriter_rejections_total: Rejected input entities by kind
type RuleMetrics struct {
	evaluationsTotal *prometheus.CounterVec
	rejectionsTotal  *prometheus.CounterVec
}

// NewRuleMetrics creates and registers rule metrics with the provided registry.
func NewRuleMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RuleMetrics {
	rm := &RuleMetrics{
		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "rule_evaluations_total",
				Help:      "Total number of rule evaluations",
			},
			[]string{"outcome"},
		),

		rejectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "rejections_total",
				Help:      "Total number of structurally invalid input entities",
			},
			[]string{"kind"},
		),
	}

	registry.MustRegister(rm.evaluationsTotal, rm.rejectionsTotal)

	return rm
}

// RecordEvaluation counts one rule evaluation.
func (rm *RuleMetrics) RecordEvaluation(outcome engine.RuleOutcome) {
	rm.evaluationsTotal.WithLabelValues(string(outcome)).Inc()
}

// RecordRejection counts one rejected entity.
func (rm *RuleMetrics) RecordRejection(kind string) {
	rm.rejectionsTotal.WithLabelValues(kind).Inc()
}
