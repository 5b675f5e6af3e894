package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncAuthResult is a no-op.
func (n *NoopRecorder) IncAuthResult(result string) {}

// IncTaskPublished is a no-op.
func (n *NoopRecorder) IncTaskPublished(task string) {}

// IncTaskRun is a no-op.
func (n *NoopRecorder) IncTaskRun(task, status string) {}

// ObserveTaskDuration is a no-op.
func (n *NoopRecorder) ObserveTaskDuration(task string, duration time.Duration) {}

// SetQueueDepth is a no-op.
func (n *NoopRecorder) SetQueueDepth(queue string, depth int64) {}
