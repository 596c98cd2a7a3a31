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

// VersionRepository provides data access for data lake versions.
type VersionRepository interface {
	// Create inserts a new lake version.
	Create(ctx context.Context, version *models.DataLakeVersion) error

	// GetByName returns the version with the given name, or
	// apperrors.ErrVersionNotFound.
	GetByName(ctx context.Context, name string) (*models.DataLakeVersion, error)

	// List returns all versions ordered by name ascending. The order is
	// arbitrary but must be deterministic for stable listings.
	List(ctx context.Context) ([]*models.DataLakeVersion, error)
}

type versionRepository struct {
	db *database.DB
}

// NewVersionRepository creates a new VersionRepository.
func NewVersionRepository(db *database.DB) VersionRepository {
	return &versionRepository{db: db}
}

var _ VersionRepository = (*versionRepository)(nil)

func (r *versionRepository) Create(ctx context.Context, version *models.DataLakeVersion) error {
	if version.ID == uuid.Nil {
		version.ID = uuid.New()
	}
	version.CreatedAt = time.Now()

	query := `
		INSERT INTO data_lake_versions (id, name, root_path, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(ctx, query,
		version.ID,
		version.Name,
		version.RootPath,
		version.IsActive,
		version.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("version %q already exists: %w", version.Name, apperrors.ErrConflict)
		}
		return fmt.Errorf("failed to create lake version: %w", err)
	}

	return nil
}

func (r *versionRepository) GetByName(ctx context.Context, name string) (*models.DataLakeVersion, error) {
	query := `
		SELECT id, name, root_path, is_active, created_at
		FROM data_lake_versions
		WHERE name = $1`

	var v models.DataLakeVersion
	err := r.db.QueryRow(ctx, query, name).Scan(
		&v.ID,
		&v.Name,
		&v.RootPath,
		&v.IsActive,
		&v.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrVersionNotFound
		}
		return nil, fmt.Errorf("failed to get lake version: %w", err)
	}

	return &v, nil
}

func (r *versionRepository) List(ctx context.Context) ([]*models.DataLakeVersion, error) {
	query := `
		SELECT id, name, root_path, is_active, created_at
		FROM data_lake_versions
		ORDER BY name ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list lake versions: %w", err)
	}
	defer rows.Close()

	var versions []*models.DataLakeVersion
	for rows.Next() {
		var v models.DataLakeVersion
		if err := rows.Scan(&v.ID, &v.Name, &v.RootPath, &v.IsActive, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan lake version: %w", err)
		}
		versions = append(versions, &v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lake versions: %w", err)
	}

	return versions, nil
}
