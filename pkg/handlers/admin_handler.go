package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/lakegate-inc/lakegate-engine/pkg/services"
)

// AdminHandler exposes staff-only maintenance operations.
type AdminHandler struct {
	reindex services.ReindexService
	logger  *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(reindex services.ReindexService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{reindex: reindex, logger: logger}
}

// RegisterRoutes registers the admin routes on the given mux. staffMW must
// enforce the staff claim.
func (h *AdminHandler) RegisterRoutes(mux *http.ServeMux, staffMW func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("POST /admin/reindex", staffMW(h.Reindex))
}

// Reindex handles POST /admin/reindex requests. Rebuilds the full-text
// index from every dataset file under every lake version.
func (h *AdminHandler) Reindex(w http.ResponseWriter, r *http.Request) {
	report, err := h.reindex.Reindex(r.Context())
	if err != nil {
		h.logger.Error("Reindex failed", zap.Error(err))
		WriteServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("Reindex completed",
		zap.Int("versions", report.Versions),
		zap.Int("documents", report.Documents),
		zap.Int("item_errors", report.ItemErrors))

	if err := WriteJSON(w, http.StatusOK, report); err != nil {
		h.logger.Error("Failed to encode reindex response", zap.Error(err))
	}
}
