package source

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches profile files for changes and triggers reloads.
// Rapid bursts of events are debounced into a single reload.
type Watcher struct {
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	config   *WatcherConfig
	debounce *Debouncer

	// file is set when Path names a single file; its directory is watched
	// so that editors replacing the file are still observed.
	file string

	mu        sync.Mutex
	running   bool
	stopCh    chan struct{}
	stopOnce  sync.Once
	closeOnce sync.Once
}

// WatcherConfig contains configuration for the watcher.
type WatcherConfig struct {
	// Path is the file or directory to watch.
	Path string

	// DebounceInterval is the quiet period after the last event before a
	// reload is triggered (default: 100ms).
	DebounceInterval time.Duration

	// Extensions lists the file extensions that trigger reloads.
	Extensions []string
}

// DefaultWatcherConfig returns the default watcher configuration.
func DefaultWatcherConfig() *WatcherConfig {
	return &WatcherConfig{
		DebounceInterval: 100 * time.Millisecond,
		Extensions:       []string{".yaml", ".yml", ".json"},
	}
}

// NewWatcher creates a new watcher.
func NewWatcher(config *WatcherConfig, logger *slog.Logger) (*Watcher, error) {
	if config == nil {
		config = DefaultWatcherConfig()
	}
	if config.Path == "" {
		return nil, fmt.Errorf("watch path is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		watcher:  fsw,
		logger:   logger,
		config:   config,
		debounce: NewDebouncer(config.DebounceInterval),
		stopCh:   make(chan struct{}),
	}, nil
}

// Watch blocks until ctx is cancelled or Stop is called, calling onReload
// after each debounced burst of relevant file events. Reload errors are
// logged and do not stop the watcher.
func (w *Watcher) Watch(ctx context.Context, onReload func() error) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	if err := w.addPath(w.config.Path); err != nil {
		return fmt.Errorf("failed to watch path: %w", err)
	}

	w.logger.InfoContext(ctx, "file watcher started",
		"path", w.config.Path,
		"debounce_ms", w.config.DebounceInterval.Milliseconds(),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "file watcher stopped (context cancelled)")
			return nil

		case <-w.stopCh:
			w.logger.InfoContext(ctx, "file watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.shouldProcessEvent(event) {
				continue
			}

			w.logger.DebugContext(ctx, "file event detected",
				"path", event.Name,
				"op", event.Op.String(),
			)

			w.debounce.Trigger(func() {
				w.logger.InfoContext(ctx, "triggering reload", "path", event.Name)
				if err := onReload(); err != nil {
					w.logger.ErrorContext(ctx, "reload failed", "error", err)
				}
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.ErrorContext(ctx, "file watcher error", "error", err)
		}
	}
}

// Stop stops the watcher and releases its resources. It is safe to call
// more than once and whether or not Watch is running.
func (w *Watcher) Stop() error {
	w.stopOnce.Do(func() { close(w.stopCh) })
	w.debounce.Stop()

	var err error
	w.closeOnce.Do(func() {
		if cerr := w.watcher.Close(); cerr != nil {
			err = fmt.Errorf("failed to close watcher: %w", cerr)
		}
	})
	return err
}

// Running reports whether Watch is active.
func (w *Watcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Watcher) addPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		w.file = abs
		return w.watcher.Add(filepath.Dir(abs))
	}

	// Watch the directory and all non-hidden subdirectories
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != path && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(p); err != nil {
			return fmt.Errorf("failed to watch directory %q: %w", p, err)
		}
		w.logger.Debug("watching directory", "path", p)
		return nil
	})
}

// shouldProcessEvent determines if an event should trigger a reload.
func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}

	if w.file != "" {
		abs, err := filepath.Abs(event.Name)
		return err == nil && abs == w.file
	}

	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return false
	}

	ext := strings.ToLower(filepath.Ext(event.Name))
	for _, valid := range w.config.Extensions {
		if ext == strings.ToLower(valid) {
			return true
		}
	}
	return false
}

// Debouncer collects rapid events and runs the latest callback only after
// a quiet period.
type Debouncer struct {
	interval time.Duration
	mu       sync.Mutex
	timer    *time.Timer
	callback func()
	stopped  bool
}

// NewDebouncer creates a new debouncer.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{interval: interval}
}

// Trigger schedules callback to run after the debounce interval, replacing
// any callback still pending.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.callback = callback

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		cb := d.callback
		d.callback = nil
		stopped := d.stopped
		d.mu.Unlock()

		if cb != nil && !stopped {
			cb()
		}
	})
}

// Stop cancels any pending callback. Later triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
}
