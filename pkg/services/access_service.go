package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/lakegate-inc/lakegate-engine/pkg/apperrors"
	"github.com/lakegate-inc/lakegate-engine/pkg/models"
	"github.com/lakegate-inc/lakegate-engine/pkg/repositories"
)

// AccessService resolves whether a principal may read a dataset, optionally
// scoped to a lake version. Every version-scoped decision, granted or
// denied, is recorded as one access audit entry; audit write failures are
// logged but never change the decision.
type AccessService interface {
	// Authorize grants iff an access right row exists for
	// (principal, dataset). The allow-list contents and the all-versions
	// flag are irrelevant for dataset-level reads.
	Authorize(ctx context.Context, principal, datasetName string) error

	// AuthorizeVersion grants iff a right exists AND it permits the version
	// (all-versions flag or allow-list membership). Returns
	// apperrors.ErrAccessDenied or apperrors.ErrVersionNotPermitted on
	// denial.
	AuthorizeVersion(ctx context.Context, principal, datasetName string, version *models.DataLakeVersion) error

	// RecordVersionNotFound records the version_check denial emitted when a
	// requested version name does not resolve, before any right lookup.
	RecordVersionNotFound(ctx context.Context, principal, datasetName, versionName string)

	// RecordReadOutcome records a read-path outcome that is decided outside
	// the resolver (e.g. dataset folder absent under the version root).
	RecordReadOutcome(ctx context.Context, principal, datasetName string, version *models.DataLakeVersion, success bool, detail string)

	// ListRights returns all access rights.
	ListRights(ctx context.Context) ([]*models.AccessRight, error)

	// AccessHistory returns the dataset's access trail, most recent first.
	AccessHistory(ctx context.Context, datasetName string) ([]*models.AccessAuditEntry, error)
}

type accessService struct {
	rights repositories.AccessRightRepository
	audit  repositories.AuditRepository
	logger *zap.Logger
}

// NewAccessService creates a new AccessService.
func NewAccessService(rights repositories.AccessRightRepository, audit repositories.AuditRepository, logger *zap.Logger) AccessService {
	return &accessService{
		rights: rights,
		audit:  audit,
		logger: logger.Named("access-service"),
	}
}

var _ AccessService = (*accessService)(nil)

func (s *accessService) Authorize(ctx context.Context, principal, datasetName string) error {
	right, err := s.rights.Get(ctx, principal, datasetName)
	if err != nil {
		return fmt.Errorf("lookup access right: %w", err)
	}
	if right == nil {
		return fmt.Errorf("no access right for dataset %q: %w", datasetName, apperrors.ErrAccessDenied)
	}
	return nil
}

func (s *accessService) AuthorizeVersion(ctx context.Context, principal, datasetName string, version *models.DataLakeVersion) error {
	right, err := s.rights.Get(ctx, principal, datasetName)
	if err != nil {
		return fmt.Errorf("lookup access right: %w", err)
	}

	if right == nil {
		s.recordAccess(ctx, principal, datasetName, &version.Name, models.AccessTypeRead, false, "Access denied")
		return fmt.Errorf("no access right for dataset %q: %w", datasetName, apperrors.ErrAccessDenied)
	}

	if !right.PermitsVersion(version.Name) {
		s.recordAccess(ctx, principal, datasetName, &version.Name, models.AccessTypeRead, false,
			fmt.Sprintf("No access to version %s", version.Name))
		return fmt.Errorf("version %q not permitted for dataset %q: %w",
			version.Name, datasetName, apperrors.ErrVersionNotPermitted)
	}

	return nil
}

func (s *accessService) RecordVersionNotFound(ctx context.Context, principal, datasetName, versionName string) {
	s.recordAccess(ctx, principal, datasetName, nil, models.AccessTypeVersionCheck, false,
		fmt.Sprintf("Version %s not found", versionName))
}

func (s *accessService) RecordReadOutcome(ctx context.Context, principal, datasetName string, version *models.DataLakeVersion, success bool, detail string) {
	var versionName *string
	if version != nil {
		versionName = &version.Name
	}
	s.recordAccess(ctx, principal, datasetName, versionName, models.AccessTypeRead, success, detail)
}

func (s *accessService) ListRights(ctx context.Context) ([]*models.AccessRight, error) {
	rights, err := s.rights.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list access rights: %w", err)
	}
	return rights, nil
}

func (s *accessService) AccessHistory(ctx context.Context, datasetName string) ([]*models.AccessAuditEntry, error) {
	entries, err := s.audit.GetAccessHistory(ctx, datasetName)
	if err != nil {
		return nil, fmt.Errorf("get access history: %w", err)
	}
	return entries, nil
}

func (s *accessService) recordAccess(ctx context.Context, principal, datasetName string, versionName *string, accessType string, success bool, detail string) {
	entry := &models.AccessAuditEntry{
		Principal:   principal,
		DatasetName: datasetName,
		VersionName: versionName,
		AccessType:  accessType,
		Success:     success,
		ErrorDetail: detail,
	}

	if err := s.audit.CreateAccessEntry(ctx, entry); err != nil {
		s.logger.Error("Failed to record access audit entry",
			zap.String("principal", principal),
			zap.String("dataset", datasetName),
			zap.String("access_type", accessType),
			zap.Error(err))
	}
}
