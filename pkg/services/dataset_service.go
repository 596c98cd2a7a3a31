package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/lakegate-inc/lakegate-engine/pkg/apperrors"
	"github.com/lakegate-inc/lakegate-engine/pkg/lake"
	"github.com/lakegate-inc/lakegate-engine/pkg/pagination"
	"github.com/lakegate-inc/lakegate-engine/pkg/repositories"
)

// VersionContent is the full content of one dataset under a specific lake
// version.
type VersionContent struct {
	Version string `json:"version"`
	Dataset string `json:"dataset"`
	Data    []any  `json:"data"`
}

// DatasetService serves raw dataset reads from the lake, gated by the
// access resolver. Dataset content is returned verbatim (as decoded JSON
// items), not through the materialized record store.
type DatasetService interface {
	// RetrieveAll returns one page of the union of every dataset the
	// principal may read on the default version. Authorization is
	// dataset-level only. A principal with no rights at all is denied.
	RetrieveAll(ctx context.Context, principal string, page int) (*pagination.Page[any], error)

	// RetrieveProjection returns one page of a single dataset, gated by a
	// dataset-level check.
	RetrieveProjection(ctx context.Context, principal, dataset string, page int) (*pagination.Page[any], error)

	// RetrieveVersion returns the full dataset content under the named
	// version, recording the access decision trail along the way.
	RetrieveVersion(ctx context.Context, principal, dataset, versionName string) (*VersionContent, error)
}

type datasetService struct {
	access   AccessService
	catalog  CatalogService
	rights   repositories.AccessRightRepository
	reader   lake.Reader
	version  string
	pageSize int
	logger   *zap.Logger
}

// NewDatasetService creates a new DatasetService reading the given default
// lake version with a fixed page size.
func NewDatasetService(
	access AccessService,
	catalog CatalogService,
	rights repositories.AccessRightRepository,
	reader lake.Reader,
	defaultVersion string,
	pageSize int,
	logger *zap.Logger,
) DatasetService {
	return &datasetService{
		access:   access,
		catalog:  catalog,
		rights:   rights,
		reader:   reader,
		version:  defaultVersion,
		pageSize: pageSize,
		logger:   logger.Named("dataset-service"),
	}
}

var _ DatasetService = (*datasetService)(nil)

func (s *datasetService) RetrieveAll(ctx context.Context, principal string, page int) (*pagination.Page[any], error) {
	rights, err := s.rights.ListByPrincipal(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("list principal rights: %w", err)
	}
	if len(rights) == 0 {
		return nil, fmt.Errorf("principal has no dataset access: %w", apperrors.ErrAccessDenied)
	}

	version, err := s.catalog.Resolve(ctx, s.version)
	if err != nil {
		return nil, fmt.Errorf("resolve default version: %w", err)
	}

	var items []any
	for _, right := range rights {
		if !s.reader.DatasetExists(version.RootPath, right.DatasetName) {
			continue
		}
		data, err := s.loadDataset(version.RootPath, right.DatasetName)
		if err != nil {
			return nil, err
		}
		items = append(items, data...)
	}

	return pagination.Paginate(items, page, s.pageSize)
}

func (s *datasetService) RetrieveProjection(ctx context.Context, principal, dataset string, page int) (*pagination.Page[any], error) {
	if err := s.access.Authorize(ctx, principal, dataset); err != nil {
		return nil, err
	}

	version, err := s.catalog.Resolve(ctx, s.version)
	if err != nil {
		return nil, fmt.Errorf("resolve default version: %w", err)
	}

	if !s.reader.DatasetExists(version.RootPath, dataset) {
		return nil, fmt.Errorf("dataset %q: %w", dataset, apperrors.ErrNotFound)
	}

	items, err := s.loadDataset(version.RootPath, dataset)
	if err != nil {
		return nil, err
	}

	return pagination.Paginate(items, page, s.pageSize)
}

func (s *datasetService) RetrieveVersion(ctx context.Context, principal, dataset, versionName string) (*VersionContent, error) {
	version, err := s.catalog.Resolve(ctx, versionName)
	if err != nil {
		// The version_check denial is emitted before any right lookup.
		s.access.RecordVersionNotFound(ctx, principal, dataset, versionName)
		return nil, err
	}

	if err := s.access.AuthorizeVersion(ctx, principal, dataset, version); err != nil {
		return nil, err
	}

	if !s.reader.DatasetExists(version.RootPath, dataset) {
		s.access.RecordReadOutcome(ctx, principal, dataset, version, false, "Dataset not found")
		return nil, fmt.Errorf("dataset %q under version %q: %w", dataset, versionName, apperrors.ErrNotFound)
	}

	items, err := s.loadDataset(version.RootPath, dataset)
	if err != nil {
		return nil, err
	}

	s.access.RecordReadOutcome(ctx, principal, dataset, version, true, "")

	return &VersionContent{
		Version: versionName,
		Dataset: dataset,
		Data:    items,
	}, nil
}

// loadDataset decodes every data file of a dataset in lexicographic order.
// Malformed files are skipped and reported; they never fail the read.
func (s *datasetService) loadDataset(root, dataset string) ([]any, error) {
	files, err := s.reader.ListFiles(root, dataset)
	if err != nil {
		return nil, fmt.Errorf("list dataset files: %w", err)
	}

	items := make([]any, 0)
	for _, name := range files {
		data, err := s.reader.ReadFile(root, dataset, name)
		if err != nil {
			s.logger.Warn("Skipping unreadable data file",
				zap.String("dataset", dataset),
				zap.String("file", name),
				zap.Error(err))
			continue
		}

		decoded, err := lake.DecodeRaw(data)
		if err != nil {
			s.logger.Warn("Skipping malformed data file",
				zap.String("dataset", dataset),
				zap.String("file", name),
				zap.Error(err))
			continue
		}
		items = append(items, decoded...)
	}

	return items, nil
}
