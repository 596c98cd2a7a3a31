package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/lakegate-inc/lakegate-engine/pkg/auth"
	"github.com/lakegate-inc/lakegate-engine/pkg/models"
	"github.com/lakegate-inc/lakegate-engine/pkg/pagination"
	"github.com/lakegate-inc/lakegate-engine/pkg/services"
)

// asPrincipal returns the request with the given subject's claims attached,
// the way the auth middleware does for a valid token.
func asPrincipal(r *http.Request, subject string) *http.Request {
	claims := &auth.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: subject}}
	return r.WithContext(context.WithValue(r.Context(), auth.ClaimsKey, claims))
}

// ============================================================================
// Stub Services
// ============================================================================

type stubStatsService struct {
	spent      float64
	spentErr   error
	users      []*services.UserStats
	usersErr   error
	products   []*services.ProductStats
	productErr error
	gotLimit   int
	gotWindow  time.Duration
}

func (s *stubStatsService) SpentSince(ctx context.Context, now time.Time, window time.Duration) (float64, error) {
	s.gotWindow = window
	return s.spent, s.spentErr
}

func (s *stubStatsService) TotalsByUser(ctx context.Context) ([]*services.UserStats, error) {
	return s.users, s.usersErr
}

func (s *stubStatsService) TopProducts(ctx context.Context, limit int) ([]*services.ProductStats, error) {
	s.gotLimit = limit
	return s.products, s.productErr
}

type stubSearchService struct {
	status   services.IndexStatus
	result   *models.SearchResult
	queryErr error
	gotText  string
	gotFrom  *time.Time
}

func (s *stubSearchService) Start(ctx context.Context) {}

func (s *stubSearchService) Status() services.IndexStatus { return s.status }

func (s *stubSearchService) Upsert(ctx context.Context, doc *models.SearchDocument) {}

func (s *stubSearchService) Query(ctx context.Context, text string, fromDate *time.Time) (*models.SearchResult, error) {
	s.gotText = text
	s.gotFrom = fromDate
	return s.result, s.queryErr
}

type stubTransactionService struct {
	records   []*models.Transaction
	listErr   error
	record    *models.Transaction
	getErr    error
	gotFilter *models.TransactionFilter
}

func (s *stubTransactionService) List(ctx context.Context, filter *models.TransactionFilter) ([]*models.Transaction, error) {
	s.gotFilter = filter
	return s.records, s.listErr
}

func (s *stubTransactionService) Get(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	return s.record, s.getErr
}

type stubDatasetService struct {
	page       *pagination.Page[any]
	pageErr    error
	content    *services.VersionContent
	contentErr error
	gotDataset string
	gotVersion string
}

func (s *stubDatasetService) RetrieveAll(ctx context.Context, principal string, page int) (*pagination.Page[any], error) {
	return s.page, s.pageErr
}

func (s *stubDatasetService) RetrieveProjection(ctx context.Context, principal, dataset string, page int) (*pagination.Page[any], error) {
	s.gotDataset = dataset
	return s.page, s.pageErr
}

func (s *stubDatasetService) RetrieveVersion(ctx context.Context, principal, dataset, versionName string) (*services.VersionContent, error) {
	s.gotDataset = dataset
	s.gotVersion = versionName
	return s.content, s.contentErr
}

type stubAccessService struct {
	authorizeErr error
	gotPrincipal string
	gotDataset   string
	rights       []*models.AccessRight
	rightsErr    error
	history      []*models.AccessAuditEntry
	historyErr   error
}

func (s *stubAccessService) Authorize(ctx context.Context, principal, datasetName string) error {
	s.gotPrincipal = principal
	s.gotDataset = datasetName
	return s.authorizeErr
}

func (s *stubAccessService) AuthorizeVersion(ctx context.Context, principal, datasetName string, version *models.DataLakeVersion) error {
	return nil
}

func (s *stubAccessService) RecordVersionNotFound(ctx context.Context, principal, datasetName, versionName string) {
}

func (s *stubAccessService) RecordReadOutcome(ctx context.Context, principal, datasetName string, version *models.DataLakeVersion, success bool, detail string) {
}

func (s *stubAccessService) ListRights(ctx context.Context) ([]*models.AccessRight, error) {
	return s.rights, s.rightsErr
}

func (s *stubAccessService) AccessHistory(ctx context.Context, datasetName string) ([]*models.AccessAuditEntry, error) {
	return s.history, s.historyErr
}

type stubReindexService struct {
	report *services.ReindexReport
	err    error
}

func (s *stubReindexService) Reindex(ctx context.Context) (*services.ReindexReport, error) {
	return s.report, s.err
}
