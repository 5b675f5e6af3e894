package handler

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/makex/makex-api/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	for _, key := range sortedKeys(snap.AuthResults) {
		fmt.Fprintf(w, "makex_auth_results_total{result=%q} %d\n", key, snap.AuthResults[key])
	}
	for _, key := range sortedKeys(snap.TasksPublished) {
		fmt.Fprintf(w, "makex_tasks_published_total{task=%q} %d\n", key, snap.TasksPublished[key])
	}
	for _, key := range sortedKeys(snap.TaskRuns) {
		task, status, _ := strings.Cut(key, ":")
		fmt.Fprintf(w, "makex_task_runs_total{task=%q,status=%q} %d\n", task, status, snap.TaskRuns[key])
	}
	for _, key := range sortedKeys(snap.TaskDurationNs) {
		fmt.Fprintf(w, "makex_task_duration_seconds_sum{task=%q} %.6f\n", key, float64(snap.TaskDurationNs[key])/1e9)
	}
	for _, key := range sortedKeys(snap.QueueDepths) {
		fmt.Fprintf(w, "makex_queue_depth{queue=%q} %d\n", key, snap.QueueDepths[key])
	}
}

func sortedKeys[V uint64 | int64](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
