package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lakegate-inc/lakegate-engine/pkg/lake"
	"github.com/lakegate-inc/lakegate-engine/pkg/models"
	"github.com/lakegate-inc/lakegate-engine/pkg/repositories"
)

// VersionResource describes one lake version and the dataset folders
// available under its root.
type VersionResource struct {
	VersionInfo VersionInfo `json:"version_info"`
	Datasets    []string    `json:"datasets"`
}

// VersionInfo is the serialized subset of a lake version exposed by the
// resources listing.
type VersionInfo struct {
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	IsActive  bool   `json:"is_active"`
}

// CatalogService is the registry of data lake versions and their root
// locations.
type CatalogService interface {
	// Resolve returns the version with the given name, or
	// apperrors.ErrVersionNotFound.
	Resolve(ctx context.Context, name string) (*models.DataLakeVersion, error)

	// ListVersions returns all versions ordered by name ascending.
	ListVersions(ctx context.Context) ([]*models.DataLakeVersion, error)

	// ListResources maps each version name to its available dataset
	// folders. Versions whose root path is unreachable are silently
	// omitted; a missing root never fails the listing.
	ListResources(ctx context.Context) (map[string]*VersionResource, error)
}

type catalogService struct {
	versions repositories.VersionRepository
	reader   lake.Reader
	logger   *zap.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(versions repositories.VersionRepository, reader lake.Reader, logger *zap.Logger) CatalogService {
	return &catalogService{
		versions: versions,
		reader:   reader,
		logger:   logger.Named("catalog-service"),
	}
}

var _ CatalogService = (*catalogService)(nil)

func (s *catalogService) Resolve(ctx context.Context, name string) (*models.DataLakeVersion, error) {
	return s.versions.GetByName(ctx, name)
}

func (s *catalogService) ListVersions(ctx context.Context) ([]*models.DataLakeVersion, error) {
	return s.versions.List(ctx)
}

func (s *catalogService) ListResources(ctx context.Context) (map[string]*VersionResource, error) {
	versions, err := s.versions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list lake versions: %w", err)
	}

	resources := make(map[string]*VersionResource)
	for _, v := range versions {
		datasets, err := s.reader.ListDatasets(v.RootPath)
		if err != nil {
			s.logger.Debug("Skipping lake version with unreachable root",
				zap.String("version", v.Name),
				zap.String("root_path", v.RootPath),
				zap.Error(err))
			continue
		}

		resources[v.Name] = &VersionResource{
			VersionInfo: VersionInfo{
				Name:      v.Name,
				CreatedAt: v.CreatedAt.Format(time.RFC3339),
				IsActive:  v.IsActive,
			},
			Datasets: datasets,
		}
	}

	return resources, nil
}
