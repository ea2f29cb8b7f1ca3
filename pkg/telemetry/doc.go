// Package telemetry groups the observability packages of the underwriter.
//
// # Components
//
//   - logging: slog loggers with run, application and profile context
//   - metrics: Prometheus decision metrics implementing engine.Recorder
//   - tracing: opt-in OTLP tracer provider for engine spans
//   - health: liveness and readiness probes for watch mode
//
// The decision engine depends on none of these directly. It takes a
// *slog.Logger, an engine.Recorder and a trace.Tracer as options, and the
// CLI wires the implementations from this tree:
//
//	logger, err := logging.New(cfg.LoggingOptions())
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	tracer, err := tracing.New(ctx, &cfg.Telemetry.Tracing)
//
//	eng, err := engine.New(cfg.EngineOptions(),
//		engine.WithLogger(logger),
//		engine.WithRecorder(collector),
//		engine.WithTracer(tracer.Tracer()),
//	)
package telemetry
