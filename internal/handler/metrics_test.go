package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/makex/makex-api/internal/metrics"
)

func TestMetrics(t *testing.T) {
	rec := metrics.NewInMemory()
	rec.IncAuthResult("ok")
	rec.IncAuthResult("ok")
	rec.IncAuthResult("missing")
	rec.IncTaskRun("email-signup", "success")
	rec.ObserveTaskDuration("email-signup", 250*time.Millisecond)
	rec.SetQueueDepth("setup-queue", 3)

	h := NewMetricsHandler(rec)

	w := httptest.NewRecorder()
	h.Metrics(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{
		`makex_auth_results_total{result="ok"} 2`,
		`makex_auth_results_total{result="missing"} 1`,
		`makex_task_runs_total{task="email-signup",status="success"} 1`,
		`makex_queue_depth{queue="setup-queue"} 3`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("missing metric line %q in:\n%s", want, body)
		}
	}
}

func TestMetrics_NoSnapshotter(t *testing.T) {
	h := NewMetricsHandler(nil)

	w := httptest.NewRecorder()
	h.Metrics(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}
