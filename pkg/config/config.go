package config

import (
	"time"

	"mercator-hq/underwriter/pkg/decision/engine"
	"mercator-hq/underwriter/pkg/telemetry/logging"
)

// Config is the root configuration structure for the underwriter CLI.
// It contains all configuration sections for decision runs.
type Config struct {
	// Engine configures batch evaluation.
	Engine EngineConfig `yaml:"engine" envPrefix:"ENGINE_"`

	// Input configures where profiles and applications are read from.
	Input InputConfig `yaml:"input" envPrefix:"INPUT_"`

	// Output configures how decisions are written.
	Output OutputConfig `yaml:"output" envPrefix:"OUTPUT_"`

	// Telemetry configures logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry" envPrefix:"TELEMETRY_"`
}

// EngineConfig contains decision engine settings.
type EngineConfig struct {
	// Workers is the number of applications evaluated concurrently.
	// Zero uses one worker per CPU.
	Workers int `yaml:"workers" env:"WORKERS"`

	// ProfileParallelism scores the profiles of one application concurrently.
	ProfileParallelism bool `yaml:"profile_parallelism" env:"PROFILE_PARALLELISM"`

	// MaxBatchSize caps the number of applications per run. Zero is unlimited.
	MaxBatchSize int `yaml:"max_batch_size" env:"MAX_BATCH_SIZE"`

	// RejectMode is "skip" (report invalid entities and continue) or "fail".
	// Default: "skip"
	RejectMode string `yaml:"reject_mode" env:"REJECT_MODE"`

	// MaxExpressionDepth bounds the nesting of rule conditions.
	// Default: 32
	MaxExpressionDepth int `yaml:"max_expression_depth" env:"MAX_EXPRESSION_DEPTH"`

	// MaxExpressionLength bounds the length of rule conditions in bytes.
	// Default: 4096
	MaxExpressionLength int `yaml:"max_expression_length" env:"MAX_EXPRESSION_LENGTH"`
}

// InputConfig contains input locations.
type InputConfig struct {
	// Profiles is a profile file or a directory of profile files.
	Profiles string `yaml:"profiles" env:"PROFILES"`

	// Applications is an application file or a directory of application files.
	Applications string `yaml:"applications" env:"APPLICATIONS"`

	// Watch re-runs decisions when the profile files change.
	Watch bool `yaml:"watch" env:"WATCH"`

	// DebounceInterval coalesces bursts of file changes while watching.
	// Default: 100ms
	DebounceInterval time.Duration `yaml:"debounce_interval" env:"DEBOUNCE_INTERVAL"`
}

// OutputConfig contains output settings.
type OutputConfig struct {
	// Format is "text", "json" or "csv".
	// Default: "text"
	Format string `yaml:"format" env:"FORMAT"`

	// Summary appends comparison statistics to the output.
	Summary bool `yaml:"summary" env:"SUMMARY"`
}

// TelemetryConfig contains observability settings.
type TelemetryConfig struct {
	// Logging configures structured logging.
	Logging LoggingConfig `yaml:"logging" envPrefix:"LOGGING_"`

	// Metrics configures Prometheus metrics.
	Metrics MetricsConfig `yaml:"metrics" envPrefix:"METRICS_"`

	// Tracing configures OpenTelemetry trace export.
	Tracing TracingConfig `yaml:"tracing" envPrefix:"TRACING_"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	// Default: "info"
	Level string `yaml:"level" env:"LEVEL"`

	// Format is the log format: json or text.
	// Default: "text"
	Format string `yaml:"format" env:"FORMAT"`

	// AddSource includes source file and line in log records.
	AddSource bool `yaml:"add_source" env:"ADD_SOURCE"`
}

// MetricsConfig contains metrics settings.
type MetricsConfig struct {
	// Enabled turns on decision metrics.
	Enabled bool `yaml:"enabled" env:"ENABLED"`

	// Namespace prefixes every metric name.
	// Default: "underwriter"
	Namespace string `yaml:"namespace" env:"NAMESPACE"`

	// TextfilePath is where metrics are written after each run, in the
	// node_exporter textfile format. Empty disables the file.
	TextfilePath string `yaml:"textfile_path" env:"TEXTFILE_PATH"`

	// ListenAddress serves /metrics, /healthz and /readyz while watching
	// (e.g. ":9090"). Empty disables the listener.
	ListenAddress string `yaml:"listen_address" env:"LISTEN_ADDRESS"`
}

// TracingConfig contains trace export settings. Spans are only exported when
// Enabled is true.
type TracingConfig struct {
	// Enabled installs a tracer provider for the run.
	Enabled bool `yaml:"enabled" env:"ENABLED"`

	// Endpoint is the OTLP gRPC collector address.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint" env:"ENDPOINT"`

	// Insecure disables TLS towards the collector.
	Insecure bool `yaml:"insecure" env:"INSECURE"`

	// Timeout bounds each export.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`

	// Sampler is "always", "never" or "ratio".
	// Default: "always"
	Sampler string `yaml:"sampler" env:"SAMPLER"`

	// SampleRatio is the fraction of traces kept by the "ratio" sampler.
	SampleRatio float64 `yaml:"sample_ratio" env:"SAMPLE_RATIO"`

	// ServiceName is reported as the service.name resource attribute.
	// Default: "underwriter"
	ServiceName string `yaml:"service_name" env:"SERVICE_NAME"`
}

// EngineOptions converts the engine section into engine configuration.
func (c *Config) EngineOptions() *engine.EngineConfig {
	return engine.DefaultEngineConfig().
		WithWorkers(c.Engine.Workers).
		WithProfileParallelism(c.Engine.ProfileParallelism).
		WithMaxBatchSize(c.Engine.MaxBatchSize).
		WithRejectMode(engine.RejectMode(c.Engine.RejectMode)).
		WithExpressionLimits(c.Engine.MaxExpressionDepth, c.Engine.MaxExpressionLength)
}

// LoggingOptions converts the logging section into logger configuration.
func (c *Config) LoggingOptions() logging.Config {
	return logging.Config{
		Level:     c.Telemetry.Logging.Level,
		Format:    c.Telemetry.Logging.Format,
		AddSource: c.Telemetry.Logging.AddSource,
	}
}
