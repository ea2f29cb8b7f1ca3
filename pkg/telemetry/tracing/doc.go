// Package tracing installs an OpenTelemetry tracer provider for CLI runs.
//
// The decision engine creates spans through the global tracer provider and
// never installs one itself. When telemetry.tracing.enabled is set, New
// configures an OTLP gRPC exporter and registers its provider globally:
//
//	tracer, err := tracing.New(ctx, &cfg.Telemetry.Tracing)
//	if err != nil {
//		return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	eng, err := engine.New(cfg.EngineOptions(), engine.WithTracer(tracer.Tracer()))
//
// Spans:
//
//   - engine.Decide: one per run, with the run ID and input counts
//   - engine.evaluateApplication: one per application, with its decision
//
// Sampling is "always", "never" or "ratio" (with sample_ratio), each honoring
// the parent span's decision.
package tracing
