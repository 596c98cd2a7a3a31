package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/lakegate-inc/lakegate-engine/pkg/apperrors"
	"github.com/lakegate-inc/lakegate-engine/pkg/database"
	"github.com/lakegate-inc/lakegate-engine/pkg/models"
)

// transactionColumns is the select list shared by all transaction queries.
var transactionColumns = []string{
	"id", "dataset_name", "version_name", "transaction_id", "payment_method",
	"country", "product_category", "status", "amount", "customer_rating",
	"timestamp", "user_id", "user_name", "product_id", "created_at",
}

// orderableColumns maps API ordering keys to table columns.
var orderableColumns = map[string]string{
	"amount":          "amount",
	"customer_rating": "customer_rating",
	"timestamp":       "timestamp",
}

// searchableColumns are the categorical fields matched by the free-text
// filter.
var searchableColumns = []string{
	"payment_method", "country", "product_category", "status", "user_name",
}

// TransactionRepository provides data access for materialized records.
// Records are write-once: the materializer inserts them in batches and no
// core operation mutates or deletes them.
type TransactionRepository interface {
	// InsertBatch stores a batch of materialized records.
	InsertBatch(ctx context.Context, records []*models.Transaction) error

	// CountByDatasetVersion returns the number of records materialized for
	// (dataset, version).
	CountByDatasetVersion(ctx context.Context, dataset, version string) (int, error)

	// ListByDatasetVersion returns every record for (dataset, version),
	// ordered by timestamp then id for determinism.
	ListByDatasetVersion(ctx context.Context, dataset, version string) ([]*models.Transaction, error)

	// ListFiltered returns records for (dataset, version) restricted by the
	// filter, in the filter's requested order.
	ListFiltered(ctx context.Context, dataset, version string, filter *models.TransactionFilter) ([]*models.Transaction, error)

	// GetByID returns one record, or apperrors.ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
}

type transactionRepository struct {
	db *database.DB
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db *database.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

var _ TransactionRepository = (*transactionRepository)(nil)

func (r *transactionRepository) InsertBatch(ctx context.Context, records []*models.Transaction) error {
	if len(records) == 0 {
		return nil
	}

	query := `
		INSERT INTO transactions (
			id, dataset_name, version_name, transaction_id, payment_method,
			country, product_category, status, amount, customer_rating,
			timestamp, user_id, user_name, product_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	batch := &pgx.Batch{}
	now := time.Now()
	for _, t := range records {
		if t.ID == uuid.Nil {
			t.ID = uuid.New()
		}
		t.CreatedAt = now
		batch.Queue(query,
			t.ID, t.DatasetName, t.VersionName, t.TransactionID, t.PaymentMethod,
			t.Country, t.ProductCategory, t.Status, t.Amount, t.CustomerRating,
			t.Timestamp, t.UserID, t.UserName, t.ProductID, t.CreatedAt,
		)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for range records {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert transaction batch: %w", err)
		}
	}

	return nil
}

func (r *transactionRepository) CountByDatasetVersion(ctx context.Context, dataset, version string) (int, error) {
	query := `SELECT COUNT(*) FROM transactions WHERE dataset_name = $1 AND version_name = $2`

	var count int
	if err := r.db.QueryRow(ctx, query, dataset, version).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

func (r *transactionRepository) ListByDatasetVersion(ctx context.Context, dataset, version string) ([]*models.Transaction, error) {
	builder := sq.Select(transactionColumns...).
		From("transactions").
		Where(sq.Eq{"dataset_name": dataset, "version_name": version}).
		OrderBy("timestamp ASC", "id ASC").
		PlaceholderFormat(sq.Dollar)

	return r.queryTransactions(ctx, builder)
}

func (r *transactionRepository) ListFiltered(ctx context.Context, dataset, version string, filter *models.TransactionFilter) ([]*models.Transaction, error) {
	builder := sq.Select(transactionColumns...).
		From("transactions").
		Where(sq.Eq{"dataset_name": dataset, "version_name": version}).
		PlaceholderFormat(sq.Dollar)

	if filter != nil {
		builder = applyFilter(builder, filter)

		orderBy, err := orderClause(filter.Ordering)
		if err != nil {
			return nil, err
		}
		builder = builder.OrderBy(orderBy, "id ASC")
	} else {
		builder = builder.OrderBy("timestamp ASC", "id ASC")
	}

	return r.queryTransactions(ctx, builder)
}

func (r *transactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	builder := sq.Select(transactionColumns...).
		From("transactions").
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction query: %w", err)
	}

	t, err := scanTransaction(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return t, nil
}

// applyFilter translates the filter struct into WHERE predicates. Substring
// matches use ILIKE; comparison filters map directly.
func applyFilter(builder sq.SelectBuilder, f *models.TransactionFilter) sq.SelectBuilder {
	exact := map[string]string{
		"payment_method":   f.PaymentMethod,
		"country":          f.Country,
		"product_category": f.ProductCategory,
		"status":           f.Status,
		"user_id":          f.UserID,
		"user_name":        f.UserName,
		"product_id":       f.ProductID,
	}
	for column, value := range exact {
		if value != "" {
			builder = builder.Where(sq.Eq{column: value})
		}
	}

	contains := map[string]string{
		"payment_method":   f.PaymentMethodContains,
		"country":          f.CountryContains,
		"product_category": f.ProductCategoryContains,
		"user_name":        f.UserNameContains,
	}
	for column, value := range contains {
		if value != "" {
			builder = builder.Where(sq.ILike{column: "%" + value + "%"})
		}
	}

	if f.AmountGT != nil {
		builder = builder.Where(sq.Gt{"amount": *f.AmountGT})
	}
	if f.AmountLT != nil {
		builder = builder.Where(sq.Lt{"amount": *f.AmountLT})
	}
	if f.Amount != nil {
		builder = builder.Where(sq.Eq{"amount": *f.Amount})
	}
	if f.RatingGT != nil {
		builder = builder.Where(sq.Gt{"customer_rating": *f.RatingGT})
	}
	if f.RatingLT != nil {
		builder = builder.Where(sq.Lt{"customer_rating": *f.RatingLT})
	}
	if f.Rating != nil {
		builder = builder.Where(sq.Eq{"customer_rating": *f.Rating})
	}

	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		or := sq.Or{}
		for _, column := range searchableColumns {
			or = append(or, sq.ILike{column: pattern})
		}
		builder = builder.Where(or)
	}

	return builder
}

// orderClause validates and translates the API ordering key. Unknown keys
// are a validation error, not silently ignored.
func orderClause(ordering string) (string, error) {
	if ordering == "" {
		return "timestamp ASC", nil
	}

	direction := "ASC"
	key := ordering
	if strings.HasPrefix(ordering, "-") {
		direction = "DESC"
		key = ordering[1:]
	}

	column, ok := orderableColumns[key]
	if !ok {
		return "", fmt.Errorf("%w: unknown ordering field %q", apperrors.ErrValidation, key)
	}
	return column + " " + direction, nil
}

func (r *transactionRepository) queryTransactions(ctx context.Context, builder sq.SelectBuilder) ([]*models.Transaction, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var records []*models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		records = append(records, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return records, nil
}

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(
		&t.ID,
		&t.DatasetName,
		&t.VersionName,
		&t.TransactionID,
		&t.PaymentMethod,
		&t.Country,
		&t.ProductCategory,
		&t.Status,
		&t.Amount,
		&t.CustomerRating,
		&t.Timestamp,
		&t.UserID,
		&t.UserName,
		&t.ProductID,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
