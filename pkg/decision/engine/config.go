package engine

import (
	"fmt"
	"runtime"

	"mercator-hq/underwriter/pkg/rulexpr/parser"
)

// RejectMode determines how the engine handles structurally invalid entities.
type RejectMode string

const (
	// RejectSkip reports invalid entities in BatchResult.Rejected and
	// evaluates the remaining ones. This is the default.
	RejectSkip RejectMode = "skip"

	// RejectFail fails the whole batch with a *BatchValidationError.
	RejectFail RejectMode = "fail"
)

// EngineConfig contains configuration for the decision engine.
type EngineConfig struct {
	// Workers is the number of applications evaluated concurrently.
	// Zero means runtime.GOMAXPROCS(0). One evaluates serially.
	Workers int

	// ProfileParallelism additionally scores the profiles of one
	// application concurrently.
	// Default: false.
	ProfileParallelism bool

	// MaxBatchSize caps the number of applications per batch. Applications
	// past the cap are rejected. Zero means unlimited.
	MaxBatchSize int

	// RejectMode determines how structural faults are handled.
	// Default: RejectSkip.
	RejectMode RejectMode

	// MaxExpressionDepth bounds condition nesting.
	// Default: 32.
	MaxExpressionDepth int

	// MaxExpressionLength bounds condition length in bytes.
	// Default: 4096.
	MaxExpressionLength int
}

// DefaultEngineConfig returns the default engine configuration.
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		Workers:             0,
		ProfileParallelism:  false,
		MaxBatchSize:        0,
		RejectMode:          RejectSkip,
		MaxExpressionDepth:  parser.DefaultMaxDepth,
		MaxExpressionLength: parser.DefaultMaxLength,
	}
}

// Validate validates the engine configuration.
func (c *EngineConfig) Validate() error {
	switch c.RejectMode {
	case RejectSkip, RejectFail:
		// Valid
	default:
		return fmt.Errorf("%w: invalid reject mode %q", ErrInvalidConfig, c.RejectMode)
	}

	if c.Workers < 0 {
		return fmt.Errorf("%w: workers cannot be negative", ErrInvalidConfig)
	}
	if c.MaxBatchSize < 0 {
		return fmt.Errorf("%w: max batch size cannot be negative", ErrInvalidConfig)
	}
	if c.MaxExpressionDepth <= 0 {
		return fmt.Errorf("%w: max expression depth must be positive", ErrInvalidConfig)
	}
	if c.MaxExpressionLength <= 0 {
		return fmt.Errorf("%w: max expression length must be positive", ErrInvalidConfig)
	}

	return nil
}

// effectiveWorkers resolves the zero value of Workers.
func (c *EngineConfig) effectiveWorkers() int {
	if c.Workers == 0 {
		return runtime.GOMAXPROCS(0)
	}
	return c.Workers
}

// WithWorkers sets the number of concurrent application workers.
func (c *EngineConfig) WithWorkers(n int) *EngineConfig {
	c.Workers = n
	return c
}

// WithProfileParallelism enables or disables concurrent profile scoring.
func (c *EngineConfig) WithProfileParallelism(enabled bool) *EngineConfig {
	c.ProfileParallelism = enabled
	return c
}

// WithMaxBatchSize sets the batch size cap.
func (c *EngineConfig) WithMaxBatchSize(max int) *EngineConfig {
	c.MaxBatchSize = max
	return c
}

// WithRejectMode sets the structural fault handling mode.
func (c *EngineConfig) WithRejectMode(mode RejectMode) *EngineConfig {
	c.RejectMode = mode
	return c
}

// WithExpressionLimits sets the condition depth and length bounds.
func (c *EngineConfig) WithExpressionLimits(depth, length int) *EngineConfig {
	c.MaxExpressionDepth = depth
	c.MaxExpressionLength = length
	return c
}

func (c *EngineConfig) newParser() *parser.Parser {
	return parser.NewParser().
		WithMaxDepth(c.MaxExpressionDepth).
		WithMaxLength(c.MaxExpressionLength)
}
