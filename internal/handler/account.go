package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/makex/makex-api/internal/apperr"
	"github.com/makex/makex-api/internal/auth"
)

// UserDeleter removes a user on the auth service.
type UserDeleter interface {
	AdminDeleteUser(ctx context.Context, userID string) error
}

// AccountHandler handles account-level operations.
type AccountHandler struct {
	users  UserDeleter
	logger *slog.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(users UserDeleter, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{users: users, logger: logger}
}

// Delete handles DELETE /api/account. It deletes the authenticated user
// through the auth service's admin endpoint. Upstream failures propagate
// the service's status and error body verbatim.
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeAppError(w, apperr.Auth("Invalid token"))
		return
	}

	if err := h.users.AdminDeleteUser(r.Context(), user.ID); err != nil {
		var upstream *auth.UpstreamError
		if errors.As(err, &upstream) {
			h.logger.Error("account deletion rejected by auth service",
				"user_id", user.ID,
				"status", upstream.StatusCode,
			)
			writeAppError(w, apperr.UpstreamStatus(upstream.StatusCode, upstream.Body, err))
			return
		}
		h.logger.Error("account deletion failed", "user_id", user.ID, "error", err)
		writeAppError(w, apperr.Upstream("Failed to delete account", err))
		return
	}

	h.logger.Info("account deleted", "user_id", user.ID)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
