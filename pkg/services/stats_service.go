package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/lakegate-inc/lakegate-engine/pkg/apperrors"
	"github.com/lakegate-inc/lakegate-engine/pkg/models"
	"github.com/lakegate-inc/lakegate-engine/pkg/repositories"
)

// StatusStats is the per-status or per-payment-method breakdown bucket.
type StatusStats struct {
	Count int     `json:"count"`
	Total float64 `json:"total"`
}

// UserStats aggregates one user's spend across all matching records.
type UserStats struct {
	UserID                string                  `json:"user_id"`
	TotalSpent            float64                 `json:"total_spent"`
	TotalTransactions     int                     `json:"total_transactions"`
	TransactionsByStatus  map[string]*StatusStats `json:"transactions_by_status"`
	TransactionsByPayment map[string]*StatusStats `json:"transactions_by_payment"`
}

// ProductStats is one entry of the top-products ranking.
type ProductStats struct {
	ProductID       string  `json:"product_id"`
	ProductCategory string  `json:"product_category"`
	TotalBought     int     `json:"total_bought"`
	TotalSpent      float64 `json:"total_spent"`
}

// StatsService computes grouped aggregates over the materialized record
// store for the canonical dataset. All aggregation is done in-process over a
// consistent snapshot of the store; the clock for time-window queries is
// supplied by the caller to keep results reproducible.
type StatsService interface {
	// SpentSince sums amounts of records with timestamp >= now-window.
	// An empty window yields 0, not an error.
	SpentSince(ctx context.Context, now time.Time, window time.Duration) (float64, error)

	// TotalsByUser groups records by (user, status, payment method) and
	// returns fully aggregated per-user breakdowns.
	TotalsByUser(ctx context.Context) ([]*UserStats, error)

	// TopProducts ranks products by purchase count descending, ties broken
	// by product id ascending. limit must be positive.
	TopProducts(ctx context.Context, limit int) ([]*ProductStats, error)
}

type statsService struct {
	transactions repositories.TransactionRepository
	materializer MaterializerService
	catalog      CatalogService
	dataset      string
	version      string
	logger       *zap.Logger
}

// NewStatsService creates a StatsService over the canonical dataset on the
// given lake version.
func NewStatsService(
	transactions repositories.TransactionRepository,
	materializer MaterializerService,
	catalog CatalogService,
	dataset, version string,
	logger *zap.Logger,
) StatsService {
	return &statsService{
		transactions: transactions,
		materializer: materializer,
		catalog:      catalog,
		dataset:      dataset,
		version:      version,
		logger:       logger.Named("stats-service"),
	}
}

var _ StatsService = (*statsService)(nil)

func (s *statsService) SpentSince(ctx context.Context, now time.Time, window time.Duration) (float64, error) {
	records, err := s.snapshot(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := now.Add(-window)
	total := 0.0
	for _, t := range records {
		if !t.Timestamp.Before(cutoff) {
			total += t.Amount
		}
	}
	return total, nil
}

func (s *statsService) TotalsByUser(ctx context.Context) ([]*UserStats, error) {
	records, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	users := make(map[string]*UserStats)
	for _, t := range records {
		u, ok := users[t.UserID]
		if !ok {
			u = &UserStats{
				UserID:                t.UserID,
				TransactionsByStatus:  make(map[string]*StatusStats),
				TransactionsByPayment: make(map[string]*StatusStats),
			}
			users[t.UserID] = u
		}

		u.TotalSpent += t.Amount
		u.TotalTransactions++
		bump(u.TransactionsByStatus, t.Status, t.Amount)
		bump(u.TransactionsByPayment, t.PaymentMethod, t.Amount)
	}

	result := make([]*UserStats, 0, len(users))
	for _, u := range users {
		result = append(result, u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })

	return result, nil
}

func (s *statsService) TopProducts(ctx context.Context, limit int) ([]*ProductStats, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be a positive integer", apperrors.ErrValidation)
	}

	records, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	type productKey struct {
		id       string
		category string
	}
	products := make(map[productKey]*ProductStats)
	for _, t := range records {
		key := productKey{id: t.ProductID, category: t.ProductCategory}
		p, ok := products[key]
		if !ok {
			p = &ProductStats{ProductID: t.ProductID, ProductCategory: t.ProductCategory}
			products[key] = p
		}
		p.TotalBought++
		p.TotalSpent += t.Amount
	}

	ranked := make([]*ProductStats, 0, len(products))
	for _, p := range products {
		ranked = append(ranked, p)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].TotalBought != ranked[j].TotalBought {
			return ranked[i].TotalBought > ranked[j].TotalBought
		}
		return ranked[i].ProductID < ranked[j].ProductID
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// snapshot ensures the canonical dataset is materialized and returns all of
// its records.
func (s *statsService) snapshot(ctx context.Context) ([]*models.Transaction, error) {
	version, err := s.catalog.Resolve(ctx, s.version)
	if err != nil {
		return nil, fmt.Errorf("resolve canonical version: %w", err)
	}

	if _, err := s.materializer.EnsureMaterialized(ctx, s.dataset, version); err != nil {
		return nil, fmt.Errorf("materialize canonical dataset: %w", err)
	}

	records, err := s.transactions.ListByDatasetVersion(ctx, s.dataset, version.Name)
	if err != nil {
		return nil, fmt.Errorf("list materialized records: %w", err)
	}
	return records, nil
}

func bump(buckets map[string]*StatusStats, key string, amount float64) {
	b, ok := buckets[key]
	if !ok {
		b = &StatusStats{}
		buckets[key] = b
	}
	b.Count++
	b.Total += amount
}
