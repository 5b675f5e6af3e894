package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/makex/makex-api/internal/apperr"
	"github.com/makex/makex-api/internal/handler/dto"
	"github.com/makex/makex-api/internal/task"
)

// TaskEnqueuer publishes background task runs.
type TaskEnqueuer interface {
	Enqueue(ctx context.Context, name string, payload any) (string, error)
}

// WaitlistHandler handles public waitlist signups.
type WaitlistHandler struct {
	tasks  TaskEnqueuer
	logger *slog.Logger
}

// NewWaitlistHandler creates a new WaitlistHandler.
func NewWaitlistHandler(tasks TaskEnqueuer, logger *slog.Logger) *WaitlistHandler {
	return &WaitlistHandler{tasks: tasks, logger: logger}
}

// Join handles POST /api/waitlist. The email provider call happens in a
// background task so a slow provider never blocks signup.
func (h *WaitlistHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req dto.WaitlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAppError(w, apperr.Validation("Invalid request body"))
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		writeAppError(w, apperr.Validation("Valid email is required"))
		return
	}

	runID, err := h.tasks.Enqueue(r.Context(), task.TaskEmailSignup, task.EmailSignupPayload{Email: email})
	if err != nil {
		h.logger.Error("waitlist enqueue failed", "error", err)
		writeAppError(w, apperr.Upstream("Failed to join waitlist", err))
		return
	}

	h.logger.Info("waitlist signup enqueued", "run_id", runID)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
