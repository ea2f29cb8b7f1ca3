package engine

import (
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "mercator-hq/underwriter/pkg/decision/engine"

// ProgressFunc is called once per completed application with the number of
// completed applications and the number accepted for evaluation. Calls are
// serialized.
type ProgressFunc func(done, total int)

// Engine evaluates batches of applications against decision profiles.
// An Engine holds no per-run state and is safe for concurrent use.
type Engine struct {
	config   EngineConfig
	logger   *slog.Logger
	recorder Recorder
	tracer   trace.Tracer
	progress ProgressFunc
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithRecorder sets the metrics sink.
func WithRecorder(recorder Recorder) Option {
	return func(e *Engine) {
		if recorder != nil {
			e.recorder = recorder
		}
	}
}

// WithTracer sets the tracer used for engine spans. The default is the
// global tracer provider's tracer, which is a no-op unless the caller
// installs a provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) {
		if tracer != nil {
			e.tracer = tracer
		}
	}
}

// WithProgress sets a callback invoked as applications complete.
func WithProgress(fn ProgressFunc) Option {
	return func(e *Engine) {
		e.progress = fn
	}
}

// New creates a new decision engine. A nil config uses DefaultEngineConfig.
func New(config *EngineConfig, opts ...Option) (*Engine, error) {
	if config == nil {
		config = DefaultEngineConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		config:   *config,
		logger:   slog.Default(),
		recorder: noopRecorder{},
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() EngineConfig {
	return e.config
}
