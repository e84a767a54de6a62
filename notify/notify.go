// Package notify defines the completion-notifier boundary.
//
// Notifiers push a summary of a finished invocation to downstream
// systems (CI dashboards, chat hooks). The CLI owns notifier lifecycle;
// users provide configuration only.
package notify

import "context"

// RunCompletedEvent is the payload published when an invocation finishes.
type RunCompletedEvent struct {
	EventType  string `json:"event_type"` // always "run_completed"
	Label      string `json:"label"`
	Outcome    string `json:"outcome"` // success, warned, failed
	Message    string `json:"message,omitempty"`
	ExitCode   int    `json:"exit_code"`
	DurationMs int64  `json:"duration_ms"`
	Timestamp  string `json:"timestamp"` // ISO 8601
	Version    string `json:"version"`
}

// Notifier publishes run completion events to a downstream system.
// Implementations must be safe for single-use per run.
type Notifier interface {
	// Publish sends a run completion event to the downstream system.
	// Must respect context cancellation and deadlines.
	Publish(ctx context.Context, event *RunCompletedEvent) error

	// Close releases notifier resources.
	Close() error
}
