package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/makex/makex-api/internal/apperr"
	"github.com/makex/makex-api/internal/auth"
	"github.com/makex/makex-api/internal/handler/dto"
	"github.com/makex/makex-api/internal/model"
	"github.com/makex/makex-api/internal/repository"
)

// AppStore provides app rows scoped to their owner.
type AppStore interface {
	GetAppForUser(ctx context.Context, appID, userID string) (*model.App, error)
	ListAppsForUser(ctx context.Context, userID string) ([]*model.App, error)
}

// AppHandler handles app lookup operations.
type AppHandler struct {
	store  AppStore
	logger *slog.Logger
}

// NewAppHandler creates a new AppHandler.
func NewAppHandler(store AppStore, logger *slog.Logger) *AppHandler {
	return &AppHandler{store: store, logger: logger}
}

// Remix handles POST /api/app/remix. Ownership is enforced by the row
// filter, not a separate check: an app that exists but belongs to
// someone else looks identical to one that does not exist.
func (h *AppHandler) Remix(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	var req dto.RemixRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AppID == "" {
		writeAppError(w, apperr.Validation("App ID is required"))
		return
	}

	app, err := h.store.GetAppForUser(r.Context(), req.AppID, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrAppNotFound) {
			writeAppError(w, apperr.NotFound("App not found"))
			return
		}
		h.logger.Error("remix lookup failed", "app_id", req.AppID, "user_id", user.ID, "error", err)
		writeAppError(w, apperr.Upstream("Error fetching app", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"app":     app,
	})
}

// List handles GET /api/apps.
func (h *AppHandler) List(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	apps, err := h.store.ListAppsForUser(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("list apps failed", "user_id", user.ID, "error", err)
		writeAppError(w, apperr.Upstream("Error fetching apps", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"apps": apps})
}
