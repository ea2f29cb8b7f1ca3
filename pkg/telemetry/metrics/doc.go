// Package metrics provides Prometheus metrics for decision runs.
//
// # Metrics
//
//   - applications_total{decision,review}: decided applications
//   - profile_decisions_total{profile,decision}: per-profile decisions
//   - hard_declines_total{profile}: decisions vetoed by a hard decline rule
//   - rule_evaluations_total{outcome}: rule evaluations (fired, not_fired, fault)
//   - rejections_total{kind}: structurally invalid applications and profiles
//   - batches_total, batch_duration_seconds, last_batch_timestamp_seconds: runs
//
// All names carry the configured namespace, "underwriter" by default.
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	eng, err := engine.New(cfg.EngineOptions(), engine.WithRecorder(collector))
//	...
//	result, err := eng.Decide(ctx, apps, profiles)
//	...
//	err = collector.WriteTextfile("/var/lib/node_exporter/underwriter.prom")
//
// Long-running processes can expose Handler on an HTTP endpoint instead.
//
// A collector whose configuration is disabled records nothing.
package metrics
