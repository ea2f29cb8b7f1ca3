package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"mercator-hq/underwriter/pkg/decision/engine"
)

// ProgressReporter reports how many applications of a batch are decided.
type ProgressReporter interface {
	Start(total int)
	Update(done int)
	Finish()
	Error(err error)
}

// barWidth is the number of cells in the progress bar.
const barWidth = 30

// BatchProgress draws a single-line progress bar. Redraws are limited to
// one per refresh interval; the first and last states are always drawn.
type BatchProgress struct {
	mu        sync.Mutex
	w         io.Writer
	refresh   time.Duration
	total     int
	done      int
	startedAt time.Time
	drawnAt   time.Time
}

// NewProgressReporter returns a BatchProgress writing to w, or to os.Stderr
// when w is nil.
func NewProgressReporter(w io.Writer) ProgressReporter {
	if w == nil {
		w = os.Stderr
	}
	return &BatchProgress{w: w, refresh: 100 * time.Millisecond}
}

// Start resets the bar for a batch of total applications.
func (p *BatchProgress) Start(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total, p.done = total, 0
	p.startedAt = time.Now()
	p.draw(true)
}

// Update records that done applications are decided.
func (p *BatchProgress) Update(done int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done = done
	p.draw(done >= p.total)
}

// Finish draws the completed bar and ends the line.
func (p *BatchProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.total == 0 {
		return
	}
	p.done = p.total
	p.draw(true)
	fmt.Fprintln(p.w)
}

// Error ends the bar with an error line.
func (p *BatchProgress) Error(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.w, "\n✗ %v\n", err)
}

func (p *BatchProgress) draw(force bool) {
	if p.total <= 0 {
		return
	}
	now := time.Now()
	if !force && now.Sub(p.drawnAt) < p.refresh {
		return
	}
	p.drawnAt = now

	filled := barWidth * p.done / p.total
	bar := strings.Repeat("=", filled) + strings.Repeat(" ", barWidth-filled)

	var rate float64
	if secs := now.Sub(p.startedAt).Seconds(); secs > 0 {
		rate = float64(p.done) / secs
	}
	fmt.Fprintf(p.w, "\rDeciding [%s] %d/%d applications (%.0f/s)", bar, p.done, p.total, rate)
}

// EngineProgress adapts a reporter to the engine's progress callback. The
// reporter is started on the first callback and finished when every
// application is decided.
func EngineProgress(p ProgressReporter) engine.ProgressFunc {
	var started bool
	return func(done, total int) {
		// The engine serializes progress callbacks
		if !started {
			started = true
			p.Start(total)
		}
		p.Update(done)
		if done == total {
			p.Finish()
		}
	}
}
