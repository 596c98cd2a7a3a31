package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/lakegate-inc/lakegate-engine/pkg/auth"
	"github.com/lakegate-inc/lakegate-engine/pkg/services"
)

const (
	recentSpendWindow  = 5 * time.Minute
	defaultTopProducts = 10
)

// StatsHandler serves aggregation endpoints over the materialized
// transaction store.
type StatsHandler struct {
	stats   services.StatsService
	access  services.AccessService
	dataset string
	now     func() time.Time
	logger  *zap.Logger
}

// NewStatsHandler creates a new StatsHandler. dataset is the canonical
// dataset every aggregation reads, so all stats routes require a right on
// it. now is the clock used for windowed aggregations; pass time.Now
// outside of tests.
func NewStatsHandler(stats services.StatsService, access services.AccessService, dataset string, now func() time.Time, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{stats: stats, access: access, dataset: dataset, now: now, logger: logger}
}

// RegisterRoutes registers the stats routes on the given mux.
func (h *StatsHandler) RegisterRoutes(mux *http.ServeMux, mw func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("GET /stats/last_5_minutes", mw(h.RecentSpend))
	mux.HandleFunc("GET /stats/total_by_user", mw(h.TotalsByUser))
	mux.HandleFunc("GET /stats/top_products", mw(h.TopProducts))
}

// RecentSpend handles GET /stats/last_5_minutes requests. Sums transaction
// amounts whose timestamp falls within the trailing five minute window.
func (h *StatsHandler) RecentSpend(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(w, r) {
		return
	}

	now := h.now()
	total, err := h.stats.SpentSince(r.Context(), now, recentSpendWindow)
	if err != nil {
		h.logger.Error("Failed to compute recent spend", zap.Error(err))
		WriteServiceError(w, err, h.logger)
		return
	}

	response := map[string]any{
		"window_minutes": 5,
		"as_of":          now.UTC().Format(time.RFC3339),
		"total_spent":    total,
	}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode recent spend response", zap.Error(err))
	}
}

// TotalsByUser handles GET /stats/total_by_user requests. Returns the
// per-user spend breakdown by status and payment method.
func (h *StatsHandler) TotalsByUser(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(w, r) {
		return
	}

	users, err := h.stats.TotalsByUser(r.Context())
	if err != nil {
		h.logger.Error("Failed to compute per-user totals", zap.Error(err))
		WriteServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]any{"users": users}); err != nil {
		h.logger.Error("Failed to encode per-user totals response", zap.Error(err))
	}
}

// TopProducts handles GET /stats/top_products requests. Returns the N
// most purchased products; N defaults to 10 and comes from the "limit"
// query parameter.
func (h *StatsHandler) TopProducts(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(w, r) {
		return
	}

	limit, err := limitParam(r, "limit", defaultTopProducts)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	products, err := h.stats.TopProducts(r.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to compute top products", zap.Error(err))
		WriteServiceError(w, err, h.logger)
		return
	}

	response := map[string]any{
		"limit":    limit,
		"products": products,
	}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode top products response", zap.Error(err))
	}
}

// authorized checks the caller's right on the canonical dataset and writes
// the error response when the check fails.
func (h *StatsHandler) authorized(w http.ResponseWriter, r *http.Request) bool {
	principal := auth.GetPrincipal(r.Context())
	if err := h.access.Authorize(r.Context(), principal, h.dataset); err != nil {
		WriteServiceError(w, err, h.logger)
		return false
	}
	return true
}
