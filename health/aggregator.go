package health

import (
	"context"
	"sync"
	"time"
)

// AggregatorConfig bounds a full check pass.
type AggregatorConfig struct {
	// Timeout caps the whole CheckAll pass. Checks still running when it
	// expires report ErrCheckTimeout.
	// Default: 10 seconds.
	Timeout time.Duration

	// Sequential runs checks one at a time instead of concurrently.
	Sequential bool
}

// registration pairs a checker with the name it answers to. A slice keeps
// registration order, which is also the order CheckerNames reports.
type registration struct {
	name    string
	checker Checker
}

// Aggregator runs the pipeline's dependency checks (provider circuit, cache
// store, anything else registered) and folds their results into one status.
type Aggregator struct {
	config  AggregatorConfig
	mu      sync.RWMutex
	entries []registration
}

// NewAggregator creates an aggregator. Without a config, checks run
// concurrently under a 10 second pass deadline.
func NewAggregator(config ...AggregatorConfig) *Aggregator {
	cfg := AggregatorConfig{}
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Aggregator{config: cfg}
}

// Register adds a checker under the given name. Registering an existing
// name replaces the checker but keeps its position.
func (a *Aggregator) Register(name string, checker Checker) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i, e := range a.entries {
		if e.name == name {
			a.entries[i].checker = checker
			return
		}
	}
	a.entries = append(a.entries, registration{name: name, checker: checker})
}

// Unregister removes the named checker if present.
func (a *Aggregator) Unregister(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i, e := range a.entries {
		if e.name == name {
			a.entries = append(a.entries[:i], a.entries[i+1:]...)
			return
		}
	}
}

// CheckerNames returns registered names in registration order.
func (a *Aggregator) CheckerNames() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	names := make([]string, len(a.entries))
	for i, e := range a.entries {
		names[i] = e.name
	}
	return names
}

// Check runs the single named check.
func (a *Aggregator) Check(ctx context.Context, name string) (Result, error) {
	a.mu.RLock()
	var checker Checker
	for _, e := range a.entries {
		if e.name == name {
			checker = e.checker
			break
		}
	}
	a.mu.RUnlock()

	if checker == nil {
		return Result{}, ErrCheckerNotFound
	}
	return a.runCheck(ctx, checker), nil
}

// CheckAll runs every registered check and returns results keyed by name.
func (a *Aggregator) CheckAll(ctx context.Context) map[string]Result {
	a.mu.RLock()
	entries := make([]registration, len(a.entries))
	copy(entries, a.entries)
	a.mu.RUnlock()

	results := make(map[string]Result, len(entries))
	if len(entries) == 0 {
		return results
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	if a.config.Sequential {
		for _, e := range entries {
			results[e.name] = a.runCheck(ctx, e.checker)
		}
		return results
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, e := range entries {
		wg.Add(1)
		go func(e registration) {
			defer wg.Done()
			result := a.runCheck(ctx, e.checker)
			mu.Lock()
			results[e.name] = result
			mu.Unlock()
		}(e)
	}
	wg.Wait()

	return results
}

// OverallStatus folds results into one status: any unhealthy check makes
// the whole set unhealthy, otherwise any degraded check makes it degraded.
// An empty set is healthy.
func (a *Aggregator) OverallStatus(results map[string]Result) Status {
	overall := StatusHealthy
	for _, result := range results {
		switch result.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			overall = StatusDegraded
		}
	}
	return overall
}

// runCheck runs one check on its own goroutine so a stuck checker cannot
// outlive the pass deadline.
func (a *Aggregator) runCheck(ctx context.Context, checker Checker) Result {
	start := time.Now()
	done := make(chan Result, 1)

	go func() {
		result := checker.Check(ctx)
		result.Duration = time.Since(start)
		if result.Timestamp.IsZero() {
			result.Timestamp = start
		}
		done <- result
	}()

	select {
	case result := <-done:
		return result
	case <-ctx.Done():
		return Result{
			Status:    StatusUnhealthy,
			Message:   "check did not finish before the pass deadline",
			Error:     ErrCheckTimeout,
			Duration:  time.Since(start),
			Timestamp: start,
		}
	}
}

// Checker wraps the aggregator so it can be registered inside another
// aggregator as one composite check.
func (a *Aggregator) Checker() Checker {
	return &aggregateChecker{agg: a}
}

type aggregateChecker struct {
	agg *Aggregator
}

func (c *aggregateChecker) Name() string {
	return "aggregate"
}

func (c *aggregateChecker) Check(ctx context.Context) Result {
	results := c.agg.CheckAll(ctx)
	status := c.agg.OverallStatus(results)

	details := make(map[string]any, len(results))
	for name, result := range results {
		details[name] = map[string]any{
			"status":   result.Status.String(),
			"message":  result.Message,
			"duration": result.Duration.String(),
		}
	}

	message := "all checks passed"
	switch status {
	case StatusDegraded:
		message = "some checks degraded"
	case StatusUnhealthy:
		message = "some checks failed"
	}

	return Result{
		Status:    status,
		Message:   message,
		Details:   details,
		Timestamp: time.Now(),
	}
}
