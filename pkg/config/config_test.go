package config

import (
	"testing"
	"time"

	"mercator-hq/underwriter/pkg/decision/engine"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	checks := []struct {
		name string
		got  any
		want any
	}{
		{"Engine.Workers", cfg.Engine.Workers, 0},
		{"Engine.RejectMode", cfg.Engine.RejectMode, DefaultRejectMode},
		{"Engine.MaxExpressionDepth", cfg.Engine.MaxExpressionDepth, DefaultMaxExpressionDepth},
		{"Engine.MaxExpressionLength", cfg.Engine.MaxExpressionLength, DefaultMaxExpressionLength},
		{"Input.DebounceInterval", cfg.Input.DebounceInterval, 100 * time.Millisecond},
		{"Output.Format", cfg.Output.Format, "text"},
		{"Telemetry.Logging.Level", cfg.Telemetry.Logging.Level, "info"},
		{"Telemetry.Logging.Format", cfg.Telemetry.Logging.Format, "text"},
		{"Telemetry.Metrics.Namespace", cfg.Telemetry.Metrics.Namespace, "underwriter"},
		{"Telemetry.Tracing.Enabled", cfg.Telemetry.Tracing.Enabled, false},
		{"Telemetry.Tracing.Endpoint", cfg.Telemetry.Tracing.Endpoint, "localhost:4317"},
		{"Telemetry.Tracing.Sampler", cfg.Telemetry.Tracing.Sampler, "always"},
		{"Telemetry.Tracing.Timeout", cfg.Telemetry.Tracing.Timeout, 10 * time.Second},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}

	if err := Validate(cfg); err != nil {
		t.Errorf("Validate(Default()) error = %v", err)
	}
}

func TestApplyDefaults_KeepsSetValues(t *testing.T) {
	cfg := &Config{
		Engine: EngineConfig{RejectMode: "fail", MaxExpressionDepth: 8},
		Output: OutputConfig{Format: "csv"},
	}
	ApplyDefaults(cfg)

	if cfg.Engine.RejectMode != "fail" {
		t.Errorf("RejectMode = %q, want fail", cfg.Engine.RejectMode)
	}
	if cfg.Engine.MaxExpressionDepth != 8 {
		t.Errorf("MaxExpressionDepth = %d, want 8", cfg.Engine.MaxExpressionDepth)
	}
	if cfg.Engine.MaxExpressionLength != DefaultMaxExpressionLength {
		t.Errorf("MaxExpressionLength = %d, want %d", cfg.Engine.MaxExpressionLength, DefaultMaxExpressionLength)
	}
	if cfg.Output.Format != "csv" {
		t.Errorf("Output.Format = %q, want csv", cfg.Output.Format)
	}
}

func TestConfig_EngineOptions(t *testing.T) {
	cfg := Default()
	cfg.Engine.Workers = 4
	cfg.Engine.ProfileParallelism = true
	cfg.Engine.MaxBatchSize = 1000
	cfg.Engine.RejectMode = "fail"

	opts := cfg.EngineOptions()
	if opts.Workers != 4 || !opts.ProfileParallelism || opts.MaxBatchSize != 1000 {
		t.Errorf("EngineOptions() = %+v", opts)
	}
	if opts.RejectMode != engine.RejectFail {
		t.Errorf("RejectMode = %q, want %q", opts.RejectMode, engine.RejectFail)
	}
	if opts.MaxExpressionDepth != DefaultMaxExpressionDepth || opts.MaxExpressionLength != DefaultMaxExpressionLength {
		t.Errorf("expression limits = %d/%d", opts.MaxExpressionDepth, opts.MaxExpressionLength)
	}
	if err := opts.Validate(); err != nil {
		t.Errorf("EngineOptions().Validate() error = %v", err)
	}
}

func TestConfig_LoggingOptions(t *testing.T) {
	cfg := Default()
	cfg.Telemetry.Logging.Level = "debug"
	cfg.Telemetry.Logging.AddSource = true

	opts := cfg.LoggingOptions()
	if opts.Level != "debug" || opts.Format != "text" || !opts.AddSource {
		t.Errorf("LoggingOptions() = %+v", opts)
	}
}
