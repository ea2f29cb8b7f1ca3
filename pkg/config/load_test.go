package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "underwriter.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `
engine:
  workers: 8
  profile_parallelism: true
  reject_mode: fail
input:
  profiles: ./profiles
  applications: ./apps.jsonl
  debounce_interval: 250ms
output:
  format: json
  summary: true
telemetry:
  logging:
    level: debug
    format: json
  metrics:
    enabled: true
    textfile_path: /tmp/underwriter.prom
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Engine.Workers != 8 || !cfg.Engine.ProfileParallelism || cfg.Engine.RejectMode != "fail" {
		t.Errorf("Engine = %+v", cfg.Engine)
	}
	if cfg.Input.Profiles != "./profiles" || cfg.Input.Applications != "./apps.jsonl" {
		t.Errorf("Input = %+v", cfg.Input)
	}
	if cfg.Input.DebounceInterval != 250*time.Millisecond {
		t.Errorf("DebounceInterval = %v, want 250ms", cfg.Input.DebounceInterval)
	}
	if cfg.Output.Format != "json" || !cfg.Output.Summary {
		t.Errorf("Output = %+v", cfg.Output)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Telemetry.Logging.Level)
	}
	if !cfg.Telemetry.Metrics.Enabled || cfg.Telemetry.Metrics.TextfilePath != "/tmp/underwriter.prom" {
		t.Errorf("Metrics = %+v", cfg.Telemetry.Metrics)
	}

	// Unset fields receive defaults
	if cfg.Engine.MaxExpressionDepth != DefaultMaxExpressionDepth {
		t.Errorf("MaxExpressionDepth = %d, want %d", cfg.Engine.MaxExpressionDepth, DefaultMaxExpressionDepth)
	}
	if cfg.Telemetry.Metrics.Namespace != DefaultMetricsNamespace {
		t.Errorf("Metrics.Namespace = %q, want %q", cfg.Telemetry.Metrics.Namespace, DefaultMetricsNamespace)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		path    func(t *testing.T) string
		wantErr string
	}{
		{
			name:    "missing file",
			path:    func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing.yaml") },
			wantErr: "failed to read configuration file",
		},
		{
			name:    "invalid yaml",
			path:    func(t *testing.T) string { return writeConfig(t, "engine: [unclosed") },
			wantErr: "failed to parse configuration file",
		},
		{
			name:    "invalid values",
			path:    func(t *testing.T) string { return writeConfig(t, "engine:\n  workers: -1\noutput:\n  format: xml\n") },
			wantErr: "configuration validation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(tt.path(t))
			if err == nil {
				t.Fatal("LoadConfig() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("LoadConfig() error = %q, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig_ValidationErrorIsAccessible(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "engine:\n  workers: -1\noutput:\n  format: xml\n"))

	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("LoadConfig() error = %v, want ValidationError", err)
	}
	if len(verr.Errors) != 2 {
		t.Errorf("len(Errors) = %d, want 2: %v", len(verr.Errors), verr.Errors)
	}
}

func TestLoadConfig_DefaultPath(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig(DefaultConfigPath)
	if err != nil {
		t.Fatalf("LoadConfig(DefaultConfigPath) error = %v", err)
	}
	if cfg.Output.Format != DefaultOutputFormat {
		t.Errorf("Output.Format = %q, want %q", cfg.Output.Format, DefaultOutputFormat)
	}

	cfg, err = LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig(\"\") error = %v", err)
	}
	if cfg.Engine.RejectMode != DefaultRejectMode {
		t.Errorf("Engine.RejectMode = %q, want %q", cfg.Engine.RejectMode, DefaultRejectMode)
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
engine:
  workers: 2
output:
  format: json
telemetry:
  logging:
    level: info
`)

	t.Setenv("UNDERWRITER_ENGINE_WORKERS", "16")
	t.Setenv("UNDERWRITER_ENGINE_REJECT_MODE", "fail")
	t.Setenv("UNDERWRITER_INPUT_PROFILES", "/etc/underwriter/profiles")
	t.Setenv("UNDERWRITER_INPUT_DEBOUNCE_INTERVAL", "1s")
	t.Setenv("UNDERWRITER_OUTPUT_SUMMARY", "true")
	t.Setenv("UNDERWRITER_TELEMETRY_LOGGING_LEVEL", "warn")
	t.Setenv("UNDERWRITER_TELEMETRY_METRICS_ENABLED", "true")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}

	if cfg.Engine.Workers != 16 {
		t.Errorf("Engine.Workers = %d, want 16", cfg.Engine.Workers)
	}
	if cfg.Engine.RejectMode != "fail" {
		t.Errorf("Engine.RejectMode = %q, want fail", cfg.Engine.RejectMode)
	}
	if cfg.Input.Profiles != "/etc/underwriter/profiles" {
		t.Errorf("Input.Profiles = %q", cfg.Input.Profiles)
	}
	if cfg.Input.DebounceInterval != time.Second {
		t.Errorf("Input.DebounceInterval = %v, want 1s", cfg.Input.DebounceInterval)
	}
	if !cfg.Output.Summary {
		t.Error("Output.Summary = false, want true")
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Telemetry.Logging.Level)
	}
	if !cfg.Telemetry.Metrics.Enabled {
		t.Error("Metrics.Enabled = false, want true")
	}

	// Values without an override come from the file
	if cfg.Output.Format != "json" {
		t.Errorf("Output.Format = %q, want json", cfg.Output.Format)
	}
}

func TestLoadConfigWithEnvOverrides_Invalid(t *testing.T) {
	t.Setenv("UNDERWRITER_ENGINE_WORKERS", "many")

	if _, err := LoadConfigWithEnvOverrides(""); err == nil {
		t.Error("LoadConfigWithEnvOverrides() error = nil, want parse error")
	}
}

func TestLoadConfigWithEnvOverrides_RevalidatesOverrides(t *testing.T) {
	t.Setenv("UNDERWRITER_OUTPUT_FORMAT", "xml")

	_, err := LoadConfigWithEnvOverrides("")
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v, want ValidationError", err)
	}
	if verr.Errors[0].Field != "output.format" {
		t.Errorf("Field = %q, want output.format", verr.Errors[0].Field)
	}
}
