package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/makex/makex-api/internal/auth"
	"github.com/makex/makex-api/internal/metrics"
	"github.com/makex/makex-api/internal/model"
)

// TokenValidator resolves a bearer token to its user.
// *auth.Client is the production implementation.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*model.User, error)
}

// AuthConfig holds configuration for the auth gate.
type AuthConfig struct {
	Logger    *slog.Logger
	Validator TokenValidator
	// Metrics records auth outcomes. Nil means no recording.
	Metrics metrics.Recorder
}

// Auth returns the authenticated-request gate. It extracts a bearer token
// from the Authorization header and validates it against the hosted auth
// service; one network round trip per request, no caching. On success the
// principal is injected into the request context.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				cfg.Metrics.IncAuthResult("missing")
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "missing_token"),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w, "No authorization token provided")
				return
			}

			user, err := cfg.Validator.ValidateToken(r.Context(), token)
			if err != nil {
				cfg.Metrics.IncAuthResult("invalid")
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "invalid_token"),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w, "Invalid token")
				return
			}

			cfg.Metrics.IncAuthResult("ok")
			ctx := auth.ContextWithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken pulls the token from "Authorization: Bearer <token>".
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// writeAuthError writes a 401 Unauthorized response.
func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
