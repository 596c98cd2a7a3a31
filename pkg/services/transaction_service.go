package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lakegate-inc/lakegate-engine/pkg/models"
	"github.com/lakegate-inc/lakegate-engine/pkg/repositories"
)

// TransactionService serves filtered reads over the materialized record
// store for the canonical dataset, triggering lazy materialization on first
// access.
type TransactionService interface {
	// List returns the canonical dataset's records restricted by the
	// filter.
	List(ctx context.Context, filter *models.TransactionFilter) ([]*models.Transaction, error)

	// Get returns one record by its store identity, or
	// apperrors.ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
}

type transactionService struct {
	transactions repositories.TransactionRepository
	materializer MaterializerService
	catalog      CatalogService
	dataset      string
	version      string
	logger       *zap.Logger
}

// NewTransactionService creates a TransactionService over the canonical
// dataset on the given lake version.
func NewTransactionService(
	transactions repositories.TransactionRepository,
	materializer MaterializerService,
	catalog CatalogService,
	dataset, version string,
	logger *zap.Logger,
) TransactionService {
	return &transactionService{
		transactions: transactions,
		materializer: materializer,
		catalog:      catalog,
		dataset:      dataset,
		version:      version,
		logger:       logger.Named("transaction-service"),
	}
}

var _ TransactionService = (*transactionService)(nil)

func (s *transactionService) List(ctx context.Context, filter *models.TransactionFilter) ([]*models.Transaction, error) {
	version, err := s.catalog.Resolve(ctx, s.version)
	if err != nil {
		return nil, fmt.Errorf("resolve canonical version: %w", err)
	}

	if _, err := s.materializer.EnsureMaterialized(ctx, s.dataset, version); err != nil {
		return nil, fmt.Errorf("materialize canonical dataset: %w", err)
	}

	records, err := s.transactions.ListFiltered(ctx, s.dataset, version.Name, filter)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return records, nil
}

func (s *transactionService) Get(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	record, err := s.transactions.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get transaction %s: %w", id, err)
	}
	return record, nil
}
