package handlers

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lakegate-inc/lakegate-engine/pkg/apperrors"
	"github.com/lakegate-inc/lakegate-engine/pkg/auth"
	"github.com/lakegate-inc/lakegate-engine/pkg/models"
	"github.com/lakegate-inc/lakegate-engine/pkg/pagination"
	"github.com/lakegate-inc/lakegate-engine/pkg/services"
)

// TransactionsHandler serves filtered listings of materialized transaction
// records. The records come from the canonical dataset, so both routes
// require a right on it.
type TransactionsHandler struct {
	transactions services.TransactionService
	access       services.AccessService
	dataset      string
	pageSize     int
	logger       *zap.Logger
}

// NewTransactionsHandler creates a new TransactionsHandler.
func NewTransactionsHandler(transactions services.TransactionService, access services.AccessService, dataset string, pageSize int, logger *zap.Logger) *TransactionsHandler {
	return &TransactionsHandler{transactions: transactions, access: access, dataset: dataset, pageSize: pageSize, logger: logger}
}

// RegisterRoutes registers the transaction routes on the given mux.
func (h *TransactionsHandler) RegisterRoutes(mux *http.ServeMux, mw func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("GET /transactions", mw(h.List))
	mux.HandleFunc("GET /transactions/{id}", mw(h.Get))
}

// List handles GET /transactions requests. Supports exact and substring
// field filters, numeric comparisons, a cross-field search term, ordering
// and pagination.
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(w, r) {
		return
	}

	page, err := pageParam(r)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	filter, err := parseTransactionFilter(r)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	records, err := h.transactions.List(r.Context(), filter)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	result, err := pagination.Paginate(records, page, h.pageSize)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to encode transactions response", zap.Error(err))
	}
}

// Get handles GET /transactions/{id} requests.
func (h *TransactionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(w, r) {
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		WriteServiceError(w, fmt.Errorf("%w: id must be a UUID", apperrors.ErrValidation), h.logger)
		return
	}

	record, err := h.transactions.Get(r.Context(), id)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, record); err != nil {
		h.logger.Error("Failed to encode transaction response", zap.Error(err))
	}
}

func parseTransactionFilter(r *http.Request) (*models.TransactionFilter, error) {
	q := r.URL.Query()
	filter := &models.TransactionFilter{
		PaymentMethod:           q.Get("payment_method"),
		PaymentMethodContains:   q.Get("payment_method_contains"),
		Country:                 q.Get("country"),
		CountryContains:         q.Get("country_contains"),
		ProductCategory:         q.Get("product_category"),
		ProductCategoryContains: q.Get("product_category_contains"),
		Status:                  q.Get("status"),
		UserID:                  q.Get("user_id"),
		UserName:                q.Get("user_name"),
		UserNameContains:        q.Get("user_name_contains"),
		ProductID:               q.Get("product_id"),
		Search:                  q.Get("search"),
		Ordering:                q.Get("ordering"),
	}

	var err error
	if filter.Amount, err = floatParam(r, "amount"); err != nil {
		return nil, err
	}
	if filter.AmountGT, err = floatParam(r, "amount_gt"); err != nil {
		return nil, err
	}
	if filter.AmountLT, err = floatParam(r, "amount_lt"); err != nil {
		return nil, err
	}
	if filter.Rating, err = intParam(r, "rating"); err != nil {
		return nil, err
	}
	if filter.RatingGT, err = intParam(r, "rating_gt"); err != nil {
		return nil, err
	}
	if filter.RatingLT, err = intParam(r, "rating_lt"); err != nil {
		return nil, err
	}
	return filter, nil
}

// authorized checks the caller's right on the canonical dataset and writes
// the error response when the check fails.
func (h *TransactionsHandler) authorized(w http.ResponseWriter, r *http.Request) bool {
	principal := auth.GetPrincipal(r.Context())
	if err := h.access.Authorize(r.Context(), principal, h.dataset); err != nil {
		WriteServiceError(w, err, h.logger)
		return false
	}
	return true
}
