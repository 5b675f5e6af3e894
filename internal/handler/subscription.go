package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/makex/makex-api/internal/apperr"
	"github.com/makex/makex-api/internal/auth"
	"github.com/makex/makex-api/internal/model"
)

// SubscriptionStore provides subscription rows.
type SubscriptionStore interface {
	GetLatestSubscription(ctx context.Context, userID string) (*model.Subscription, error)
}

// SubscriptionHandler handles subscription lookups.
type SubscriptionHandler struct {
	store  SubscriptionStore
	logger *slog.Logger
}

// NewSubscriptionHandler creates a new SubscriptionHandler.
func NewSubscriptionHandler(store SubscriptionStore, logger *slog.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{store: store, logger: logger}
}

// Get handles GET /api/subscription. A user with no subscription rows
// gets a 500, the same as a query failure. Clients treat both as "ask
// again later" rather than "not subscribed".
func (h *SubscriptionHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	sub, err := h.store.GetLatestSubscription(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("subscription lookup failed", "user_id", user.ID, "error", err)
		writeAppError(w, apperr.Upstream("Error fetching subscription", err))
		return
	}

	writeJSON(w, http.StatusOK, sub)
}
