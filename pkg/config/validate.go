package config

import (
	"fmt"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "engine.workers").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. All validation errors are collected and
// returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateEngine(&cfg.Engine)...)
	errs = append(errs, validateInput(&cfg.Input)...)
	errs = append(errs, validateOutput(&cfg.Output)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

func validateEngine(cfg *EngineConfig) []FieldError {
	var errs []FieldError

	if cfg.Workers < 0 {
		errs = append(errs, FieldError{Field: "engine.workers", Message: "workers cannot be negative"})
	}
	if cfg.MaxBatchSize < 0 {
		errs = append(errs, FieldError{Field: "engine.max_batch_size", Message: "max batch size cannot be negative"})
	}
	if !oneOf(cfg.RejectMode, "skip", "fail") {
		errs = append(errs, FieldError{
			Field:   "engine.reject_mode",
			Message: fmt.Sprintf("invalid reject mode %q, must be one of: skip, fail", cfg.RejectMode),
		})
	}
	if cfg.MaxExpressionDepth <= 0 {
		errs = append(errs, FieldError{Field: "engine.max_expression_depth", Message: "max expression depth must be positive"})
	}
	if cfg.MaxExpressionLength <= 0 {
		errs = append(errs, FieldError{Field: "engine.max_expression_length", Message: "max expression length must be positive"})
	}

	return errs
}

func validateInput(cfg *InputConfig) []FieldError {
	var errs []FieldError

	if cfg.DebounceInterval < 0 {
		errs = append(errs, FieldError{Field: "input.debounce_interval", Message: "debounce interval cannot be negative"})
	}
	if cfg.Watch && cfg.Profiles == "" {
		errs = append(errs, FieldError{Field: "input.watch", Message: "watching requires input.profiles"})
	}

	return errs
}

func validateOutput(cfg *OutputConfig) []FieldError {
	if oneOf(cfg.Format, "text", "json", "csv") {
		return nil
	}
	return []FieldError{{
		Field:   "output.format",
		Message: fmt.Sprintf("invalid output format %q, must be one of: text, json, csv", cfg.Format),
	}}
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	if !oneOf(cfg.Logging.Level, "debug", "info", "warn", "warning", "error", "DEBUG", "INFO", "WARN", "WARNING", "ERROR") {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid log level %q, must be one of: debug, info, warn, error", cfg.Logging.Level),
		})
	}
	if !oneOf(cfg.Logging.Format, "json", "text", "JSON", "TEXT") {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid log format %q, must be one of: json, text", cfg.Logging.Format),
		})
	}
	if cfg.Metrics.Enabled && cfg.Metrics.Namespace == "" {
		errs = append(errs, FieldError{Field: "telemetry.metrics.namespace", Message: "namespace is required when metrics are enabled"})
	}

	errs = append(errs, validateTracing(&cfg.Tracing)...)

	return errs
}

func validateTracing(cfg *TracingConfig) []FieldError {
	if !cfg.Enabled {
		return nil
	}

	var errs []FieldError
	if cfg.Endpoint == "" {
		errs = append(errs, FieldError{Field: "telemetry.tracing.endpoint", Message: "endpoint is required when tracing is enabled"})
	}
	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{Field: "telemetry.tracing.timeout", Message: "timeout cannot be negative"})
	}
	if !oneOf(cfg.Sampler, "always", "never", "ratio") {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sampler",
			Message: fmt.Sprintf("invalid sampler %q, must be one of: always, never, ratio", cfg.Sampler),
		})
	}
	if cfg.Sampler == "ratio" && (cfg.SampleRatio < 0 || cfg.SampleRatio > 1) {
		errs = append(errs, FieldError{Field: "telemetry.tracing.sample_ratio", Message: "sample ratio must be between 0.0 and 1.0"})
	}
	return errs
}

func oneOf(s string, values ...string) bool {
	for _, v := range values {
		if s == v {
			return true
		}
	}
	return false
}
