package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/underwriter/pkg/config"
)

// BatchMetrics tracks decision runs.
//
// Metrics:
//   - underwriter_batches_total: Completed decision runs
//   - underwriter_batch_duration_seconds: Run duration
//   - underwriter_last_batch_timestamp_seconds: Completion time of the last run
type BatchMetrics struct {
	batchesTotal  prometheus.Counter
	batchDuration prometheus.Histogram
	lastBatch     prometheus.Gauge
}

// NewBatchMetrics creates and registers batch metrics with the provided registry.
func NewBatchMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *BatchMetrics {
	bm := &BatchMetrics{
		batchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "batches_total",
			Help:      "Total number of decision runs",
		}),

		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "batch_duration_seconds",
			Help:      "Duration of decision runs in seconds",
			// 1ms to ~65s
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 17),
		}),

		lastBatch: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Name:      "last_batch_timestamp_seconds",
			Help:      "Unix time at which the last decision run finished",
		}),
	}

	registry.MustRegister(bm.batchesTotal, bm.batchDuration, bm.lastBatch)

	return bm
}

// RecordBatch records one completed run.
func (bm *BatchMetrics) RecordBatch(duration time.Duration) {
	bm.batchesTotal.Inc()
	bm.batchDuration.Observe(duration.Seconds())
	bm.lastBatch.SetToCurrentTime()
}
