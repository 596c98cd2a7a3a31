package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/lakegate-inc/lakegate-engine/pkg/auth"
	"github.com/lakegate-inc/lakegate-engine/pkg/services"
)

// DataLakeHandler serves raw dataset reads and lake catalog browsing.
type DataLakeHandler struct {
	datasets services.DatasetService
	catalog  services.CatalogService
	access   services.AccessService
	logger   *zap.Logger
}

// NewDataLakeHandler creates a new DataLakeHandler.
func NewDataLakeHandler(datasets services.DatasetService, catalog services.CatalogService, access services.AccessService, logger *zap.Logger) *DataLakeHandler {
	return &DataLakeHandler{datasets: datasets, catalog: catalog, access: access, logger: logger}
}

// RegisterRoutes registers the data lake routes on the given mux. mw wraps
// each handler with the authenticated middleware chain; staffMW additionally
// requires the staff claim.
func (h *DataLakeHandler) RegisterRoutes(mux *http.ServeMux, mw, staffMW func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("GET /retrieve_all", mw(h.RetrieveAll))
	mux.HandleFunc("GET /retrieve_projection/{dataset}", mw(h.RetrieveProjection))
	mux.HandleFunc("GET /data_lake/resources", mw(h.Resources))
	mux.HandleFunc("GET /data_lake/{dataset}/version/{version}", mw(h.RetrieveVersion))
	mux.HandleFunc("GET /data_lake/{dataset}/access_history", staffMW(h.AccessHistory))
}

// RetrieveAll handles GET /retrieve_all requests. Returns one page of the
// union of every dataset the caller may read on the default version.
func (h *DataLakeHandler) RetrieveAll(w http.ResponseWriter, r *http.Request) {
	page, err := pageParam(r)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	principal := auth.GetPrincipal(r.Context())
	result, err := h.datasets.RetrieveAll(r.Context(), principal, page)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to encode retrieve_all response", zap.Error(err))
	}
}

// RetrieveProjection handles GET /retrieve_projection/{dataset} requests.
func (h *DataLakeHandler) RetrieveProjection(w http.ResponseWriter, r *http.Request) {
	dataset := r.PathValue("dataset")
	page, err := pageParam(r)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	principal := auth.GetPrincipal(r.Context())
	result, err := h.datasets.RetrieveProjection(r.Context(), principal, dataset, page)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to encode retrieve_projection response", zap.Error(err))
	}
}

// Resources handles GET /data_lake/resources requests. Returns every lake
// version with the dataset folders available under it.
func (h *DataLakeHandler) Resources(w http.ResponseWriter, r *http.Request) {
	resources, err := h.catalog.ListResources(r.Context())
	if err != nil {
		h.logger.Error("Failed to list lake resources", zap.Error(err))
		WriteServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]any{"resources": resources}); err != nil {
		h.logger.Error("Failed to encode resources response", zap.Error(err))
	}
}

// RetrieveVersion handles GET /data_lake/{dataset}/version/{version}
// requests. Returns the full dataset content under the named version,
// subject to version-scoped authorization.
func (h *DataLakeHandler) RetrieveVersion(w http.ResponseWriter, r *http.Request) {
	dataset := r.PathValue("dataset")
	version := r.PathValue("version")

	principal := auth.GetPrincipal(r.Context())
	content, err := h.datasets.RetrieveVersion(r.Context(), principal, dataset, version)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, content); err != nil {
		h.logger.Error("Failed to encode version content response", zap.Error(err))
	}
}

// AccessHistory handles GET /data_lake/{dataset}/access_history requests.
// Staff only; returns the audit trail for a dataset, newest first.
func (h *DataLakeHandler) AccessHistory(w http.ResponseWriter, r *http.Request) {
	dataset := r.PathValue("dataset")

	entries, err := h.access.AccessHistory(r.Context(), dataset)
	if err != nil {
		h.logger.Error("Failed to load access history", zap.String("dataset", dataset), zap.Error(err))
		WriteServiceError(w, err, h.logger)
		return
	}

	response := map[string]any{
		"dataset": dataset,
		"history": entries,
	}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode access history response", zap.Error(err))
	}
}
