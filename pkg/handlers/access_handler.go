package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/lakegate-inc/lakegate-engine/pkg/services"
)

// AccessHandler exposes the configured access rights.
type AccessHandler struct {
	access services.AccessService
	logger *zap.Logger
}

// NewAccessHandler creates a new AccessHandler.
func NewAccessHandler(access services.AccessService, logger *zap.Logger) *AccessHandler {
	return &AccessHandler{access: access, logger: logger}
}

// RegisterRoutes registers the access handler's routes on the given mux.
func (h *AccessHandler) RegisterRoutes(mux *http.ServeMux, mw func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("GET /access", mw(h.List))
}

// List handles GET /access requests. Returns every access right in the
// system so operators can inspect who may read what.
func (h *AccessHandler) List(w http.ResponseWriter, r *http.Request) {
	rights, err := h.access.ListRights(r.Context())
	if err != nil {
		h.logger.Error("Failed to list access rights", zap.Error(err))
		WriteServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]any{"access_rights": rights}); err != nil {
		h.logger.Error("Failed to encode access rights response", zap.Error(err))
	}
}
