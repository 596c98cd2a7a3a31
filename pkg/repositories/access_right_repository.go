package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/lakegate-inc/lakegate-engine/pkg/apperrors"
	"github.com/lakegate-inc/lakegate-engine/pkg/database"
	"github.com/lakegate-inc/lakegate-engine/pkg/models"
)

// AccessRightRepository provides data access for access rights. Rights are
// administratively managed and read-only to the core; Create exists for
// provisioning and enforces the one-right-per-(principal, dataset)
// invariant.
type AccessRightRepository interface {
	// Create inserts a new access right. A second right for the same
	// (principal, dataset) pair fails with apperrors.ErrConflict.
	Create(ctx context.Context, right *models.AccessRight) error

	// Get returns the right for (principal, dataset), or nil when no such
	// right exists.
	Get(ctx context.Context, principal, datasetName string) (*models.AccessRight, error)

	// ListByPrincipal returns all rights held by the principal, ordered by
	// dataset name.
	ListByPrincipal(ctx context.Context, principal string) ([]*models.AccessRight, error)

	// List returns all rights ordered by dataset name then principal.
	List(ctx context.Context) ([]*models.AccessRight, error)
}

type accessRightRepository struct {
	db *database.DB
}

// NewAccessRightRepository creates a new AccessRightRepository.
func NewAccessRightRepository(db *database.DB) AccessRightRepository {
	return &accessRightRepository{db: db}
}

var _ AccessRightRepository = (*accessRightRepository)(nil)

func (r *accessRightRepository) Create(ctx context.Context, right *models.AccessRight) error {
	if right.ID == uuid.Nil {
		right.ID = uuid.New()
	}
	right.CreatedAt = time.Now()

	query := `
		INSERT INTO access_rights (id, principal, dataset_name, allowed_versions, can_access_all_versions, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		right.ID,
		right.Principal,
		right.DatasetName,
		right.AllowedVersions,
		right.CanAccessAllVersions,
		right.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("access right for (%s, %s) already exists: %w",
				right.Principal, right.DatasetName, apperrors.ErrConflict)
		}
		return fmt.Errorf("failed to create access right: %w", err)
	}

	return nil
}

func (r *accessRightRepository) Get(ctx context.Context, principal, datasetName string) (*models.AccessRight, error) {
	query := `
		SELECT id, principal, dataset_name, allowed_versions, can_access_all_versions, created_at
		FROM access_rights
		WHERE principal = $1 AND dataset_name = $2`

	right, err := scanAccessRight(r.db.QueryRow(ctx, query, principal, datasetName))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get access right: %w", err)
	}

	return right, nil
}

func (r *accessRightRepository) ListByPrincipal(ctx context.Context, principal string) ([]*models.AccessRight, error) {
	query := `
		SELECT id, principal, dataset_name, allowed_versions, can_access_all_versions, created_at
		FROM access_rights
		WHERE principal = $1
		ORDER BY dataset_name ASC`

	return r.queryRights(ctx, query, principal)
}

func (r *accessRightRepository) List(ctx context.Context) ([]*models.AccessRight, error) {
	query := `
		SELECT id, principal, dataset_name, allowed_versions, can_access_all_versions, created_at
		FROM access_rights
		ORDER BY dataset_name ASC, principal ASC`

	return r.queryRights(ctx, query)
}

func (r *accessRightRepository) queryRights(ctx context.Context, query string, args ...any) ([]*models.AccessRight, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query access rights: %w", err)
	}
	defer rows.Close()

	var rights []*models.AccessRight
	for rows.Next() {
		right, err := scanAccessRight(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan access right: %w", err)
		}
		rights = append(rights, right)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating access rights: %w", err)
	}

	return rights, nil
}

func scanAccessRight(row pgx.Row) (*models.AccessRight, error) {
	var right models.AccessRight
	err := row.Scan(
		&right.ID,
		&right.Principal,
		&right.DatasetName,
		&right.AllowedVersions,
		&right.CanAccessAllVersions,
		&right.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &right, nil
}
