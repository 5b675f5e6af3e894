package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/makex/makex-api/internal/apperr"
	"github.com/makex/makex-api/internal/handler/dto"
)

// StuckAppResetter flips apps stuck in the building state back to failed.
type StuckAppResetter interface {
	ResetStuckApps(ctx context.Context, threshold time.Duration) (int64, error)
}

// RouteStore maintains the edge proxy's host-to-backend mappings.
type RouteStore interface {
	SetProxyRoute(ctx context.Context, appName, targetURL string) error
	DeleteProxyRoute(ctx context.Context, appName string) error
}

// OpsHandler handles maintenance endpoints guarded by a service key.
type OpsHandler struct {
	store     StuckAppResetter
	routes    RouteStore
	threshold time.Duration
	logger    *slog.Logger
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(store StuckAppResetter, routes RouteStore, threshold time.Duration, logger *slog.Logger) *OpsHandler {
	return &OpsHandler{store: store, routes: routes, threshold: threshold, logger: logger}
}

// ResetStuckApps handles POST /api/ops/reset-stuck-apps.
func (h *OpsHandler) ResetStuckApps(w http.ResponseWriter, r *http.Request) {
	reset, err := h.store.ResetStuckApps(r.Context(), h.threshold)
	if err != nil {
		h.logger.Error("reset stuck apps failed", "error", err)
		writeAppError(w, apperr.Upstream("Failed to reset stuck apps", err))
		return
	}

	h.logger.Info("stuck apps reset", "count", reset, "threshold", h.threshold)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "reset": reset})
}

// SetProxyRoute handles PUT /api/ops/proxy-route. It points a deployed
// app's public host at its backing URL for the edge proxy.
func (h *OpsHandler) SetProxyRoute(w http.ResponseWriter, r *http.Request) {
	var req dto.ProxyRouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AppName == "" || req.TargetURL == "" {
		writeAppError(w, apperr.Validation("App name and target URL are required"))
		return
	}

	if err := h.routes.SetProxyRoute(r.Context(), req.AppName, req.TargetURL); err != nil {
		h.logger.Error("set proxy route failed", "app_name", req.AppName, "error", err)
		writeAppError(w, apperr.Upstream("Failed to set proxy route", err))
		return
	}

	h.logger.Info("proxy route set", "app_name", req.AppName)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// DeleteProxyRoute handles DELETE /api/ops/proxy-route.
func (h *OpsHandler) DeleteProxyRoute(w http.ResponseWriter, r *http.Request) {
	var req dto.ProxyRouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AppName == "" {
		writeAppError(w, apperr.Validation("App name is required"))
		return
	}

	if err := h.routes.DeleteProxyRoute(r.Context(), req.AppName); err != nil {
		h.logger.Error("delete proxy route failed", "app_name", req.AppName, "error", err)
		writeAppError(w, apperr.Upstream("Failed to delete proxy route", err))
		return
	}

	h.logger.Info("proxy route deleted", "app_name", req.AppName)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
