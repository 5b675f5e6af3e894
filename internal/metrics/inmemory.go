package metrics

import (
	"sync"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	AuthResults    map[string]uint64
	TasksPublished map[string]uint64
	TaskRuns       map[string]uint64 // keyed "task:status"
	TaskDurationNs map[string]int64
	QueueDepths    map[string]int64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	mu             sync.Mutex
	authResults    map[string]uint64
	tasksPublished map[string]uint64
	taskRuns       map[string]uint64
	taskDurationNs map[string]int64
	queueDepths    map[string]int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		authResults:    make(map[string]uint64),
		tasksPublished: make(map[string]uint64),
		taskRuns:       make(map[string]uint64),
		taskDurationNs: make(map[string]int64),
		queueDepths:    make(map[string]int64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		AuthResults:    copyMap(m.authResults),
		TasksPublished: copyMap(m.tasksPublished),
		TaskRuns:       copyMap(m.taskRuns),
		TaskDurationNs: copyMap(m.taskDurationNs),
		QueueDepths:    copyMap(m.queueDepths),
	}
}

func copyMap[V uint64 | int64](src map[string]V) map[string]V {
	dst := make(map[string]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// IncAuthResult counts an auth gate outcome.
func (m *InMemoryRecorder) IncAuthResult(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.authResults[result]++
}

// IncTaskPublished counts a task enqueue.
func (m *InMemoryRecorder) IncTaskPublished(task string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasksPublished[task]++
}

// IncTaskRun counts a task run outcome.
func (m *InMemoryRecorder) IncTaskRun(task, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.taskRuns[task+":"+status]++
}

// ObserveTaskDuration accumulates task run time.
func (m *InMemoryRecorder) ObserveTaskDuration(task string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.taskDurationNs[task] += duration.Nanoseconds()
}

// SetQueueDepth records the latest depth for a queue.
func (m *InMemoryRecorder) SetQueueDepth(queue string, depth int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queueDepths[queue] = depth
}
