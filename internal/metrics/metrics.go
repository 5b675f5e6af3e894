// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Auth gate metrics
	IncAuthResult(result string) // result: "ok", "missing", "invalid"

	// Task pipeline metrics
	IncTaskPublished(task string)
	IncTaskRun(task, status string) // status: "success", "retried", "dead_lettered"
	ObserveTaskDuration(task string, duration time.Duration)
	SetQueueDepth(queue string, depth int64)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
