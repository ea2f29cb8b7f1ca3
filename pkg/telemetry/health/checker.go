package health

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// CheckFunc reports whether a component is healthy. It returns nil when
// healthy, or an error describing the problem.
type CheckFunc func(ctx context.Context) error

// CheckResult is the outcome of a single check.
type CheckResult struct {
	// Status is "ok" or "unhealthy".
	Status string `json:"status"`

	// Message describes an unhealthy result.
	Message string `json:"message,omitempty"`

	// Duration is how long the check took.
	Duration time.Duration `json:"duration_ms,omitempty"`
}

// HealthStatus is the aggregated health of the process.
type HealthStatus struct {
	// Status is "ok" (liveness), "ready" or "degraded".
	Status string `json:"status"`

	// Checks holds the individual readiness results.
	Checks map[string]CheckResult `json:"checks,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

// Checker runs registered readiness checks.
type Checker struct {
	mu     sync.RWMutex
	checks map[string]CheckFunc

	// Timeout for individual checks
	checkTimeout time.Duration
}

// ErrCheckTimeout is reported when a check does not return in time.
var ErrCheckTimeout = errors.New("health check timeout")

// New creates a checker. A zero timeout defaults to 5 seconds per check.
func New(checkTimeout time.Duration) *Checker {
	if checkTimeout == 0 {
		checkTimeout = 5 * time.Second
	}
	return &Checker{
		checks:       make(map[string]CheckFunc),
		checkTimeout: checkTimeout,
	}
}

// RegisterCheck registers or replaces the check for a named component.
func (c *Checker) RegisterCheck(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// ListChecks returns the registered check names in sorted order.
func (c *Checker) ListChecks() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CheckLiveness reports that the process is running.
func (c *Checker) CheckLiveness(ctx context.Context) HealthStatus {
	return HealthStatus{Status: "ok", Timestamp: time.Now()}
}

// CheckReadiness runs every registered check concurrently. The status is
// "degraded" when any check is unhealthy.
func (c *Checker) CheckReadiness(ctx context.Context) HealthStatus {
	c.mu.RLock()
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, check := range c.checks {
		checks[name] = check
	}
	c.mu.RUnlock()

	results := make(map[string]CheckResult, len(checks))
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for name, check := range checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result := c.runCheck(ctx, check)
			mu.Lock()
			results[name] = result
			mu.Unlock()
		}()
	}
	wg.Wait()

	status := "ready"
	for _, result := range results {
		if result.Status != "ok" {
			status = "degraded"
		}
	}

	return HealthStatus{Status: status, Checks: results, Timestamp: time.Now()}
}

func (c *Checker) runCheck(ctx context.Context, check CheckFunc) CheckResult {
	checkCtx, cancel := context.WithTimeout(ctx, c.checkTimeout)
	defer cancel()

	start := time.Now()
	errChan := make(chan error, 1)
	go func() {
		errChan <- check(checkCtx)
	}()

	var err error
	select {
	case err = <-errChan:
	case <-checkCtx.Done():
		err = ErrCheckTimeout
	}

	result := CheckResult{Status: "ok", Duration: time.Since(start)}
	if err != nil {
		result.Status = "unhealthy"
		result.Message = err.Error()
	}
	return result
}

// RunTracker remembers the outcome of the most recent decision run. Its
// Check method reports unhealthy until a run has succeeded, and whenever the
// latest run failed.
type RunTracker struct {
	mu       sync.RWMutex
	runs     int
	lastRun  time.Time
	lastErr  error
	lastGood time.Time
}

// NewRunTracker creates an empty tracker.
func NewRunTracker() *RunTracker {
	return &RunTracker{}
}

// Record stores the outcome of a run.
func (t *RunTracker) Record(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.runs++
	t.lastRun = time.Now()
	t.lastErr = err
	if err == nil {
		t.lastGood = t.lastRun
	}
}

// Runs returns the number of recorded runs.
func (t *RunTracker) Runs() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.runs
}

// Check implements CheckFunc.
func (t *RunTracker) Check(ctx context.Context) error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	switch {
	case t.runs == 0:
		return errors.New("no decision run completed yet")
	case t.lastErr != nil:
		return errors.New("last decision run failed: " + t.lastErr.Error())
	default:
		return nil
	}
}
