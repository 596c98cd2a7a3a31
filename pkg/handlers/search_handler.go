package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/lakegate-inc/lakegate-engine/pkg/apperrors"
	"github.com/lakegate-inc/lakegate-engine/pkg/services"
)

// SearchHandler serves full-text queries against the secondary index.
type SearchHandler struct {
	search services.SearchService
	logger *zap.Logger
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(search services.SearchService, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{search: search, logger: logger}
}

// RegisterRoutes registers the search routes on the given mux.
func (h *SearchHandler) RegisterRoutes(mux *http.ServeMux, mw func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("GET /search/full-text", mw(h.FullText))
}

// FullText handles GET /search/full-text requests. Matches the "query"
// text across the indexed fields, optionally restricted to records dated
// at or after "from_date" (YYYY-MM-DD), grouped by source dataset.
func (h *SearchHandler) FullText(w http.ResponseWriter, r *http.Request) {
	// A degraded index wins over parameter validation: the caller is told
	// the endpoint is down before being asked to fix the request.
	if h.search.Status() == services.StatusDegraded {
		h.unavailable(w)
		return
	}

	query := r.URL.Query().Get("query")
	if query == "" {
		WriteServiceError(w, fmt.Errorf("%w: query parameter is required", apperrors.ErrValidation), h.logger)
		return
	}

	fromDate, err := dateParam(r, "from_date")
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	result, err := h.search.Query(r.Context(), query, fromDate)
	if err != nil {
		if errors.Is(err, apperrors.ErrIndexUnavailable) {
			h.unavailable(w)
			return
		}
		h.logger.Error("Full-text query failed", zap.String("query", query), zap.Error(err))
		WriteServiceError(w, err, h.logger)
		return
	}

	response := map[string]any{
		"query":      query,
		"total_hits": result.TotalHits,
		"results":    result.Groups,
	}
	if fromDate != nil {
		response["from_date"] = fromDate.Format("2006-01-02")
	}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode search response", zap.Error(err))
	}
}

// unavailable reports the degraded index state with remediation guidance.
func (h *SearchHandler) unavailable(w http.ResponseWriter) {
	response := map[string]any{
		"error":   "index_unavailable",
		"message": "The search index is not available. Other endpoints remain fully functional.",
		"remediation": []string{
			"Verify the search backend is running and reachable from this service",
			"Check the configured search address",
			"Restart this service once the backend is healthy, or trigger POST /admin/reindex",
		},
	}
	if err := WriteJSON(w, http.StatusServiceUnavailable, response); err != nil {
		h.logger.Error("Failed to encode search unavailable response", zap.Error(err))
	}
}
