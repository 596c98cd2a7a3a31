package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/lakegate-inc/lakegate-engine/pkg/database"
	"github.com/lakegate-inc/lakegate-engine/pkg/models"
)

// AuditRepository persists access-control decisions and plain request audit
// events. The core only appends and reads; retention is external.
type AuditRepository interface {
	// CreateAccessEntry inserts one access-decision audit entry.
	CreateAccessEntry(ctx context.Context, entry *models.AccessAuditEntry) error

	// CreateRequestEntry inserts one request audit entry.
	CreateRequestEntry(ctx context.Context, entry *models.RequestAuditEntry) error

	// GetAccessHistory returns the access trail for a dataset, most recent
	// first.
	GetAccessHistory(ctx context.Context, datasetName string) ([]*models.AccessAuditEntry, error)
}

type auditRepository struct {
	db *database.DB
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *database.DB) AuditRepository {
	return &auditRepository{db: db}
}

var _ AuditRepository = (*auditRepository)(nil)

func (r *auditRepository) CreateAccessEntry(ctx context.Context, entry *models.AccessAuditEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now()

	query := `
		INSERT INTO access_audit_log (id, principal, dataset_name, version_name, access_type, success, error_detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		entry.ID,
		entry.Principal,
		entry.DatasetName,
		entry.VersionName,
		entry.AccessType,
		entry.Success,
		entry.ErrorDetail,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create access audit entry: %w", err)
	}

	return nil
}

func (r *auditRepository) CreateRequestEntry(ctx context.Context, entry *models.RequestAuditEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now()

	query := `
		INSERT INTO request_audit_log (id, principal, path, method, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		entry.ID,
		entry.Principal,
		entry.Path,
		entry.Method,
		entry.Body,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create request audit entry: %w", err)
	}

	return nil
}

func (r *auditRepository) GetAccessHistory(ctx context.Context, datasetName string) ([]*models.AccessAuditEntry, error) {
	query := `
		SELECT id, principal, dataset_name, version_name, access_type, success, error_detail, created_at
		FROM access_audit_log
		WHERE dataset_name = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, datasetName)
	if err != nil {
		return nil, fmt.Errorf("failed to query access history: %w", err)
	}
	defer rows.Close()

	var entries []*models.AccessAuditEntry
	for rows.Next() {
		entry, err := scanAccessAuditEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating access history: %w", err)
	}

	return entries, nil
}

func scanAccessAuditEntry(row pgx.Row) (*models.AccessAuditEntry, error) {
	var entry models.AccessAuditEntry
	err := row.Scan(
		&entry.ID,
		&entry.Principal,
		&entry.DatasetName,
		&entry.VersionName,
		&entry.AccessType,
		&entry.Success,
		&entry.ErrorDetail,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan access audit entry: %w", err)
	}
	return &entry, nil
}
