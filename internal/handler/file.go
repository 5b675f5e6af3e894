package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/makex/makex-api/internal/apperr"
)

// CodeFetcher retrieves generated source files from the file backend.
type CodeFetcher interface {
	FetchCode(ctx context.Context, path, baseOverride string) (json.RawMessage, error)
}

// FileHandler proxies file reads to the file-serving backend.
type FileHandler struct {
	fetcher CodeFetcher
	logger  *slog.Logger
}

// NewFileHandler creates a new FileHandler.
func NewFileHandler(fetcher CodeFetcher, logger *slog.Logger) *FileHandler {
	return &FileHandler{fetcher: fetcher, logger: logger}
}

// Get handles GET /api/file. The optional api_url query param targets a
// per-app backend instead of the configured default.
func (h *FileHandler) Get(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeAppError(w, apperr.Validation("File path is required"))
		return
	}

	raw, err := h.fetcher.FetchCode(r.Context(), path, r.URL.Query().Get("api_url"))
	if err != nil {
		h.logger.Error("file fetch failed", "path", path, "error", err)
		writeAppError(w, apperr.UpstreamStatus(http.StatusBadGateway, "File backend request failed", err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}
