package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Log formats accepted by Config.Format. The empty string selects JSON.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Config selects the level, encoding and destination of a logger.
type Config struct {
	// Level is debug, info, warn or error, in any case. Empty means info.
	Level string

	// Format is json or text, in any case. Empty means json.
	Format string

	// AddSource records the file and line of the logging call.
	AddSource bool

	// Writer receives the records. Nil means os.Stderr, which keeps stdout
	// free for decision output.
	Writer io.Writer
}

// New builds a logger for cfg. Records logged with a context carry the run,
// application and profile IDs stored in it.
func New(cfg Config) (*slog.Logger, error) {
	level, err := levelOf(cfg.Level)
	if err != nil {
		return nil, err
	}

	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: level, AddSource: cfg.AddSource}

	var base slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", FormatJSON:
		base = slog.NewJSONHandler(w, opts)
	case FormatText:
		base = slog.NewTextHandler(w, opts)
	default:
		return nil, fmt.Errorf("invalid log format %q: want json or text", cfg.Format)
	}
	return slog.New(NewContextHandler(base)), nil
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

func levelOf(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid log level %q: want debug, info, warn or error", s)
}
