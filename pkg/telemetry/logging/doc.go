// Package logging builds the structured loggers used by the engine and CLI.
//
// # Overview
//
// The package wraps Go's standard log/slog package to provide:
//   - JSON and text output formats
//   - Configurable log levels (debug, info, warn, error)
//   - Context-aware records carrying run_id, application_id and profile_id
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//	if err != nil {
//	    return err
//	}
//
//	ctx = logging.WithRunID(ctx, runID)
//	logger.InfoContext(ctx, "batch started", "applications", 120)
//	// {"level":"INFO","msg":"batch started","applications":120,"run_id":"..."}
//
// Context fields are added by ContextHandler, so they appear on every record
// logged through a *Context method, including records from loggers derived
// with With.
package logging
