package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/makex/makex-api/internal/apperr"
	"github.com/makex/makex-api/internal/auth"
	"github.com/makex/makex-api/internal/model"
)

// IntegrationStore checks which integrations a user has connected.
type IntegrationStore interface {
	HasIntegration(ctx context.Context, userID, integrationType string) (bool, error)
}

// IntegrationHandler handles integration presence checks.
type IntegrationHandler struct {
	store  IntegrationStore
	logger *slog.Logger
}

// NewIntegrationHandler creates a new IntegrationHandler.
func NewIntegrationHandler(store IntegrationStore, logger *slog.Logger) *IntegrationHandler {
	return &IntegrationHandler{store: store, logger: logger}
}

// Supabase handles GET /api/integrations/supabase. It returns only a
// presence flag, never row contents.
func (h *IntegrationHandler) Supabase(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	exists, err := h.store.HasIntegration(r.Context(), user.ID, model.IntegrationSupabase)
	if err != nil {
		h.logger.Error("integration lookup failed", "user_id", user.ID, "error", err)
		writeAppError(w, apperr.Upstream("Error fetching user integrations", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"exists": exists})
}
