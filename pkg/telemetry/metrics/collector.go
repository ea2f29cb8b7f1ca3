package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/underwriter/pkg/config"
	"mercator-hq/underwriter/pkg/credit"
	"mercator-hq/underwriter/pkg/decision/engine"
)

// overflowLabel replaces profile labels once the cardinality limit is reached.
const overflowLabel = "other"

// Collector records decision metrics. It implements engine.Recorder and is
// passed to the engine with engine.WithRecorder.
//
// Every metric is registered on the collector's own registry, so several
// collectors can coexist in one process (for example in tests).
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	decisionMetrics *DecisionMetrics
	ruleMetrics     *RuleMetrics
	batchMetrics    *BatchMetrics

	// Bounds the number of distinct profile labels
	cardinalityLimiter *CardinalityLimiter
}

var _ engine.Recorder = (*Collector)(nil)

// NewCollector creates a new metrics collector with the specified
// configuration and Prometheus registry. If registry is nil, a new registry
// is created.
//
// Example:
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	eng, err := engine.New(cfg.EngineOptions(), engine.WithRecorder(collector))
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}

	c := &Collector{
		config:             cfg,
		registry:           registry,
		cardinalityLimiter: NewCardinalityLimiter(1000),
	}

	c.decisionMetrics = NewDecisionMetrics(cfg, registry)
	c.ruleMetrics = NewRuleMetrics(cfg, registry)
	c.batchMetrics = NewBatchMetrics(cfg, registry)

	return c
}

// RecordApplication counts one decided application.
func (c *Collector) RecordApplication(decision credit.Decision, needsReview bool) {
	if !c.config.Enabled {
		return
	}
	c.decisionMetrics.RecordApplication(decision, needsReview)
}

// RecordProfileDecision counts one profile decision. Profiles beyond the
// cardinality limit are counted under the "other" label.
func (c *Collector) RecordProfileDecision(profileID string, decision credit.Decision, hardDecline bool) {
	if !c.config.Enabled {
		return
	}
	if !c.cardinalityLimiter.Allow(profileID) {
		profileID = overflowLabel
	}
	c.decisionMetrics.RecordProfileDecision(profileID, decision, hardDecline)
}

// RecordRuleEvaluation counts one rule evaluation by outcome.
func (c *Collector) RecordRuleEvaluation(outcome engine.RuleOutcome) {
	if !c.config.Enabled {
		return
	}
	c.ruleMetrics.RecordEvaluation(outcome)
}

// RecordRejection counts one structurally invalid input entity.
func (c *Collector) RecordRejection(kind string) {
	if !c.config.Enabled {
		return
	}
	c.ruleMetrics.RecordRejection(kind)
}

// RecordBatch records the duration of one completed run.
func (c *Collector) RecordBatch(duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.batchMetrics.RecordBatch(duration)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter tracks unique label sets to prevent cardinality
// explosion. When the limit is reached, new label sets are rejected.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether a label set may be used: it was seen before or the
// limit has not been reached yet.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	_, exists := cl.current[labelSet]
	cl.mu.RUnlock()
	if exists {
		return true
	}

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[labelSet]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
