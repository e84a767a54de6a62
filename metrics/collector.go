// Package metrics provides per-invocation metrics collection.
//
// The Collector accumulates counters during a single runner invocation.
// It is a leaf package with no internal dependencies. Counters cover the
// invocation lifecycle (started, succeeded, warned, failed), launch
// attempts, and post-run artifact handling.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of all collected metrics.
// Returned by Collector.Snapshot(). Safe to read concurrently after creation.
type Snapshot struct {
	// Invocation lifecycle
	RunsStarted   int64 `json:"runs_started"`
	RunsSucceeded int64 `json:"runs_succeeded"`
	RunsWarned    int64 `json:"runs_warned"`
	RunsFailed    int64 `json:"runs_failed"`

	// Launcher
	LaunchSuccess int64 `json:"launch_success"`
	LaunchFailure int64 `json:"launch_failure"`

	// Post-run surfaces
	ArtifactsArchived int64 `json:"artifacts_archived"`
	ArchiveFailures   int64 `json:"archive_failures"`
	NotifyFailures    int64 `json:"notify_failures"`

	// Dimensions (informational, set at construction)
	Runner   string `json:"runner"`
	TestRoot string `json:"test_root"`
}

// Collector accumulates metrics during a single invocation.
// Thread-safe via sync.Mutex. All increment methods are nil-receiver safe
// so callers may pass a nil Collector to disable metrics entirely.
type Collector struct {
	mu sync.Mutex

	runsStarted   int64
	runsSucceeded int64
	runsWarned    int64
	runsFailed    int64

	launchSuccess int64
	launchFailure int64

	artifactsArchived int64
	archiveFailures   int64
	notifyFailures    int64

	runner   string
	testRoot string
}

// NewCollector creates a Collector with dimension labels.
func NewCollector(runner, testRoot string) *Collector {
	return &Collector{
		runner:   runner,
		testRoot: testRoot,
	}
}

// IncRunStarted records an invocation start.
func (c *Collector) IncRunStarted() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.runsStarted++
	c.mu.Unlock()
}

// IncRunSucceeded records a clean pass (exit code 0).
func (c *Collector) IncRunSucceeded() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.runsSucceeded++
	c.mu.Unlock()
}

// IncRunWarned records a failing run downgraded by IgnoreFailures.
func (c *Collector) IncRunWarned() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.runsWarned++
	c.mu.Unlock()
}

// IncRunFailed records a fatal failing run.
func (c *Collector) IncRunFailed() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.runsFailed++
	c.mu.Unlock()
}

// IncLaunchSuccess records a successful runner launch.
func (c *Collector) IncLaunchSuccess() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.launchSuccess++
	c.mu.Unlock()
}

// IncLaunchFailure records a failed runner launch.
func (c *Collector) IncLaunchFailure() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.launchFailure++
	c.mu.Unlock()
}

// AddArtifactsArchived records archived artifacts (per artifact, not per call).
func (c *Collector) AddArtifactsArchived(n int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.artifactsArchived += n
	c.mu.Unlock()
}

// IncArchiveFailure records a failed archive operation (per call).
func (c *Collector) IncArchiveFailure() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.archiveFailures++
	c.mu.Unlock()
}

// IncNotifyFailure records a failed completion notification.
func (c *Collector) IncNotifyFailure() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.notifyFailures++
	c.mu.Unlock()
}

// Snapshot returns an immutable point-in-time view of all metrics.
// The returned Snapshot is safe to read concurrently; the Collector can
// continue to be mutated independently.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		RunsStarted:   c.runsStarted,
		RunsSucceeded: c.runsSucceeded,
		RunsWarned:    c.runsWarned,
		RunsFailed:    c.runsFailed,

		LaunchSuccess: c.launchSuccess,
		LaunchFailure: c.launchFailure,

		ArtifactsArchived: c.artifactsArchived,
		ArchiveFailures:   c.archiveFailures,
		NotifyFailures:    c.notifyFailures,

		Runner:   c.runner,
		TestRoot: c.testRoot,
	}
}
