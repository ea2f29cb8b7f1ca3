// Package health provides liveness and readiness probes for long-running
// decision processes, such as the CLI's watch mode.
//
// A RunTracker records the outcome of each decision run and serves as the
// readiness check: the process is ready once a run has succeeded and stays
// ready while the latest run succeeds.
//
//	tracker := health.NewRunTracker()
//	checker := health.New(0)
//	checker.RegisterCheck("decisions", tracker.Check)
//
//	server := &http.Server{
//		Addr:    ":9090",
//		Handler: health.NewMux(checker, collector.Handler()),
//	}
//
// Endpoints:
//
//   - /healthz: always 200 while the process runs
//   - /readyz: 200 when every check passes, otherwise 503
//   - /metrics: Prometheus metrics, when a handler is given
package health
