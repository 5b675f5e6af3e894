package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/makex/makex-api/internal/apperr"
	"github.com/makex/makex-api/internal/model"
)

// ListingStore provides public app listing rows.
type ListingStore interface {
	GetListingByShareID(ctx context.Context, shareID string) (*model.AppListing, error)
	GetListingByAppID(ctx context.Context, appID string) (*model.AppListing, error)
}

// ShareHandler handles public share lookups. No auth.
type ShareHandler struct {
	store  ListingStore
	logger *slog.Logger
}

// NewShareHandler creates a new ShareHandler.
func NewShareHandler(store ListingStore, logger *slog.Logger) *ShareHandler {
	return &ShareHandler{store: store, logger: logger}
}

// Get handles GET /api/share. Any lookup failure, including a missing
// row, collapses to a 500 with no detail.
func (h *ShareHandler) Get(w http.ResponseWriter, r *http.Request) {
	shareID := r.URL.Query().Get("share_id")
	appID := r.URL.Query().Get("app_id")

	if shareID == "" && appID == "" {
		writeAppError(w, apperr.Validation("Either share_id or app_id is required"))
		return
	}

	var listing *model.AppListing
	var err error
	if shareID != "" {
		listing, err = h.store.GetListingByShareID(r.Context(), shareID)
	} else {
		listing, err = h.store.GetListingByAppID(r.Context(), appID)
	}
	if err != nil {
		h.logger.Error("share lookup failed", "share_id", shareID, "app_id", appID, "error", err)
		writeAppError(w, apperr.Upstream("Error fetching URL mapping", err))
		return
	}

	writeJSON(w, http.StatusOK, listing)
}
