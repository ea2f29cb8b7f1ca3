package cli

import (
	"errors"
	"fmt"

	"mercator-hq/underwriter/pkg/decision/engine"
)

// Process exit codes.
const (
	ExitOK       = 0
	ExitFailure  = 1 // unexpected failure (I/O, cancelled run)
	ExitUsage    = 2 // invalid flags or configuration
	ExitRejected = 3 // inputs rejected, or lint found problems
)

// ConfigError represents an error in configuration or flags.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

// CommandError represents an error from a command execution.
type CommandError struct {
	Command string
	Code    int
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
	}
}

// NewCommandError creates a new CommandError. The exit code is derived from
// err.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Code:    exitCodeOf(err),
		Err:     err,
	}
}

// ExitCode returns the process exit code for an error returned by a command.
func ExitCode(err error) int {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code != 0 {
		return cmdErr.Code
	}
	return exitCodeOf(err)
}

func exitCodeOf(err error) int {
	var (
		cfgErr   *ConfigError
		batchErr *engine.BatchValidationError
	)
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &cfgErr), errors.Is(err, engine.ErrInvalidConfig):
		return ExitUsage
	case errors.As(err, &batchErr), errors.Is(err, engine.ErrBatchLimit):
		return ExitRejected
	default:
		return ExitFailure
	}
}
