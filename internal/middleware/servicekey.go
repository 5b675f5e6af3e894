package middleware

import (
	"log/slog"
	"net/http"

	"github.com/makex/makex-api/internal/auth"
)

// ServiceKeyHeader carries the ops service key.
const ServiceKeyHeader = "X-API-Key"

// ServiceKey guards ops endpoints with an argon2id-hashed service key.
// keyHash is the PHC-format hash from config; an empty hash disables the
// surface entirely (404 would leak less, but 401 matches the rest of the
// API's failure shape).
func ServiceKey(logger *slog.Logger, keyHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(ServiceKeyHeader)
			if keyHash == "" || key == "" {
				writeAuthError(w, "No authorization token provided")
				return
			}

			match, err := auth.VerifyServiceKey(key, keyHash)
			if err != nil || !match {
				logger.Warn("service key rejected",
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w, "Invalid token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
