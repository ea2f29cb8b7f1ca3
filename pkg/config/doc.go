// Package config provides configuration management for the underwriter CLI.
//
// Configuration is read from a YAML file, completed with defaults and then
// overridden from the environment:
//
//	cfg, err := config.LoadConfigWithEnvOverrides("underwriter.yaml")
//
// # File Format
//
//	engine:
//	  workers: 8
//	  reject_mode: skip
//	  max_batch_size: 100000
//	input:
//	  profiles: ./profiles
//	  applications: ./applications.jsonl
//	output:
//	  format: json
//	  summary: true
//	telemetry:
//	  logging:
//	    level: info
//	    format: json
//	  metrics:
//	    enabled: true
//	    textfile_path: /var/lib/node_exporter/underwriter.prom
//
// # Environment Variable Overrides
//
// Every field can be set from the environment. The variable name is the YAML
// path in upper case, joined by underscores, with the UNDERWRITER_ prefix:
//
//   - UNDERWRITER_ENGINE_WORKERS overrides engine.workers
//   - UNDERWRITER_INPUT_PROFILES overrides input.profiles
//   - UNDERWRITER_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Precedence
//
// Values are applied in the following order (later overrides earlier):
//
//  1. Values from the YAML file
//  2. Default values for fields the file left unset
//  3. Environment variable overrides
//
// Validation runs last and reports every invalid field at once.
//
// A missing file is an error, except at DefaultConfigPath, where the
// defaults are used instead.
package config
