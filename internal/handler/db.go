package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/makex/makex-api/internal/apperr"
	"github.com/makex/makex-api/internal/handler/dto"
)

// QueryExecutor runs one ad-hoc SQL query against a caller-supplied
// database.
type QueryExecutor interface {
	Execute(ctx context.Context, connectionURI, query string, params []any) ([]map[string]any, error)
}

// DBHandler handles ad-hoc query execution against user databases.
type DBHandler struct {
	executor QueryExecutor
	logger   *slog.Logger
}

// NewDBHandler creates a new DBHandler.
func NewDBHandler(executor QueryExecutor, logger *slog.Logger) *DBHandler {
	return &DBHandler{executor: executor, logger: logger}
}

// Query handles POST /api/db. The connection is opened for this request
// only and closed before the response is written.
func (h *DBHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req dto.DBQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAppError(w, apperr.Validation("Invalid request body"))
		return
	}
	if req.ConnectionURI == "" {
		writeAppError(w, apperr.Validation("Connection URI is required"))
		return
	}
	if req.Query == "" {
		writeAppError(w, apperr.Validation("Query is required"))
		return
	}

	results, err := h.executor.Execute(r.Context(), req.ConnectionURI, req.Query, req.Params)
	if err != nil {
		h.logger.Error("db query failed", "error", err)
		writeAppError(w, apperr.Upstream(err.Error(), err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}
