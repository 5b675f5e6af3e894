// Package task provides the background task runtime: named tasks,
// declared queues, and a Redis Streams based publisher/worker pair.
package task

import "fmt"

// Queue names. The set is fixed; concurrency limits are static and
// interpreted by the worker as a per-queue semaphore.
const (
	QueueDefault            = "default"
	QueueSetup              = "setup-queue"
	QueueCriticalSetup      = "critical-container-setup"
	QueueAutoKill           = "auto-kill-containers"
	QueuePauseContainer     = "pause-container-queue"
	QueueAutoPauseContainer = "auto-pause-containers-queue"
)

// queueConcurrency maps each declared queue to its concurrency limit.
var queueConcurrency = map[string]int{
	QueueDefault:            10,
	QueueSetup:              1,
	QueueCriticalSetup:      5,
	QueueAutoKill:           3,
	QueuePauseContainer:     3,
	QueueAutoPauseContainer: 1,
}

// Queues returns the declared queue names.
func Queues() []string {
	names := make([]string, 0, len(queueConcurrency))
	for name := range queueConcurrency {
		names = append(names, name)
	}
	return names
}

// ConcurrencyLimit returns the declared limit for queue, or 1 for an
// unknown queue name.
func ConcurrencyLimit(queue string) int {
	if limit, ok := queueConcurrency[queue]; ok {
		return limit
	}
	return 1
}

// StreamKey is the Redis stream that backs a queue.
func StreamKey(queue string) string {
	return fmt.Sprintf("tasks:%s", queue)
}

// DeadLetterKey is the stream that holds exhausted messages for a queue.
func DeadLetterKey(queue string) string {
	return fmt.Sprintf("tasks:%s:dlq", queue)
}
