package config

import "time"

// Default values for configuration fields.
const (
	// DefaultConfigPath is the configuration file read when no path is given.
	// A missing file at this path is not an error.
	DefaultConfigPath = "underwriter.yaml"

	// Engine defaults
	DefaultRejectMode          = "skip"
	DefaultMaxExpressionDepth  = 32
	DefaultMaxExpressionLength = 4096

	// Input defaults
	DefaultDebounceInterval = 100 * time.Millisecond

	// Output defaults
	DefaultOutputFormat = "text"

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"

	// Metrics defaults
	DefaultMetricsNamespace = "underwriter"

	// Tracing defaults
	DefaultTracingEndpoint    = "localhost:4317"
	DefaultTracingTimeout     = 10 * time.Second
	DefaultTracingSampler     = "always"
	DefaultTracingServiceName = "underwriter"
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills unset fields with their default values. Fields that
// already hold a value are left unchanged.
func ApplyDefaults(cfg *Config) {
	if cfg.Engine.RejectMode == "" {
		cfg.Engine.RejectMode = DefaultRejectMode
	}
	if cfg.Engine.MaxExpressionDepth == 0 {
		cfg.Engine.MaxExpressionDepth = DefaultMaxExpressionDepth
	}
	if cfg.Engine.MaxExpressionLength == 0 {
		cfg.Engine.MaxExpressionLength = DefaultMaxExpressionLength
	}

	if cfg.Input.DebounceInterval == 0 {
		cfg.Input.DebounceInterval = DefaultDebounceInterval
	}

	if cfg.Output.Format == "" {
		cfg.Output.Format = DefaultOutputFormat
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}

	tracing := &cfg.Telemetry.Tracing
	if tracing.Endpoint == "" {
		tracing.Endpoint = DefaultTracingEndpoint
	}
	if tracing.Timeout == 0 {
		tracing.Timeout = DefaultTracingTimeout
	}
	if tracing.Sampler == "" {
		tracing.Sampler = DefaultTracingSampler
	}
	if tracing.ServiceName == "" {
		tracing.ServiceName = DefaultTracingServiceName
	}
}
