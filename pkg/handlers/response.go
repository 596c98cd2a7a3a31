package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/lakegate-inc/lakegate-engine/pkg/apperrors"
)

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// WriteServiceError maps a service-layer error onto its HTTP status and
// writes the error response. Authorization and validation failures surface
// their reason verbatim; unexpected failures become a generic 500.
func WriteServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	status, code := mapServiceError(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}

	if werr := ErrorResponse(w, status, code, message); werr != nil {
		logger.Error("Failed to write error response", zap.Error(werr))
	}
}

func mapServiceError(err error) (int, string) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, apperrors.ErrAccessDenied):
		return http.StatusForbidden, "access_denied"
	case errors.Is(err, apperrors.ErrVersionNotPermitted):
		return http.StatusForbidden, "version_not_permitted"
	case errors.Is(err, apperrors.ErrVersionNotFound):
		return http.StatusNotFound, "version_not_found"
	case errors.Is(err, apperrors.ErrPageOutOfRange):
		return http.StatusNotFound, "page_out_of_range"
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, apperrors.ErrIndexUnavailable):
		return http.StatusServiceUnavailable, "index_unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
