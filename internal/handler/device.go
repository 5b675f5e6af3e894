package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/makex/makex-api/internal/apperr"
	"github.com/makex/makex-api/internal/auth"
	"github.com/makex/makex-api/internal/handler/dto"
)

// DeviceStore persists device token registrations.
type DeviceStore interface {
	UpsertDeviceToken(ctx context.Context, userID, token string) error
}

// DeviceHandler handles device token registration.
type DeviceHandler struct {
	store  DeviceStore
	logger *slog.Logger
}

// NewDeviceHandler creates a new DeviceHandler.
func NewDeviceHandler(store DeviceStore, logger *slog.Logger) *DeviceHandler {
	return &DeviceHandler{store: store, logger: logger}
}

// Register handles POST /api/device. The upsert is keyed on the token
// so repeated registration from the same device is idempotent.
func (h *DeviceHandler) Register(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	var req dto.DeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DeviceToken == "" {
		writeAppError(w, apperr.Validation("Missing device token"))
		return
	}

	if err := h.store.UpsertDeviceToken(r.Context(), user.ID, req.DeviceToken); err != nil {
		h.logger.Error("device token upsert failed", "user_id", user.ID, "error", err)
		writeAppError(w, apperr.Upstream("Failed to save token", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
