package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/lakegate-inc/lakegate-engine/pkg/apperrors"
	"github.com/lakegate-inc/lakegate-engine/pkg/models"
	"github.com/lakegate-inc/lakegate-engine/pkg/retry"
	"github.com/lakegate-inc/lakegate-engine/pkg/search"
)

// IndexStatus is the synchronizer's connection state.
type IndexStatus int32

const (
	// StatusConnecting is the initial state while the bounded startup
	// attempts run.
	StatusConnecting IndexStatus = iota
	// StatusReady means the backend answered and the index exists.
	StatusReady
	// StatusDegraded means all startup attempts failed; the synchronizer
	// stays degraded for the remainder of the process lifetime.
	StatusDegraded
)

func (s IndexStatus) String() string {
	switch s {
	case StatusConnecting:
		return "connecting"
	case StatusReady:
		return "ready"
	case StatusDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}

// SearchService keeps the secondary full-text index consistent with the
// record store and serves grouped text queries. The backend is optional:
// when it cannot be reached at startup the service degrades, upserts become
// silent no-ops, and queries fail fast without network I/O.
type SearchService interface {
	DocumentSink

	// Start performs the one-shot bounded connection sequence. It blocks
	// until the state settles and is intended to run in its own goroutine
	// at boot so request processing is never held up by it.
	Start(ctx context.Context)

	// Status returns the current connection state.
	Status() IndexStatus

	// Query matches text across the indexed fields, optionally filtered to
	// timestamps at or after fromDate, grouped by source dataset. Returns
	// apperrors.ErrIndexUnavailable unless the service is ready.
	Query(ctx context.Context, text string, fromDate *time.Time) (*models.SearchResult, error)
}

type searchService struct {
	indexer    search.Indexer
	maxRetries int
	delay      time.Duration
	status     atomic.Int32
	logger     *zap.Logger
}

// NewSearchService creates a SearchService over the given index backend.
func NewSearchService(indexer search.Indexer, maxRetries int, delay time.Duration, logger *zap.Logger) SearchService {
	s := &searchService{
		indexer:    indexer,
		maxRetries: maxRetries,
		delay:      delay,
		logger:     logger.Named("search-service"),
	}
	s.status.Store(int32(StatusConnecting))
	return s
}

var _ SearchService = (*searchService)(nil)

func (s *searchService) Start(ctx context.Context) {
	// N attempts with a fixed pause between them; retry.Do counts retries
	// after the first attempt.
	cfg := retry.FixedConfig(s.maxRetries-1, s.delay)

	attempt := 0
	err := retry.Do(ctx, cfg, func() error {
		attempt++
		if err := s.indexer.Ping(ctx); err != nil {
			s.logger.Warn("Search backend not reachable",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", s.maxRetries),
				zap.Error(err))
			return err
		}
		return nil
	})
	if err != nil {
		s.status.Store(int32(StatusDegraded))
		s.logger.Error("Search backend unavailable, entering degraded mode", zap.Error(err))
		return
	}

	if err := s.indexer.EnsureIndex(ctx); err != nil {
		s.status.Store(int32(StatusDegraded))
		s.logger.Error("Failed to prepare search index, entering degraded mode", zap.Error(err))
		return
	}

	s.status.Store(int32(StatusReady))
	s.logger.Info("Search index ready")
}

func (s *searchService) Status() IndexStatus {
	return IndexStatus(s.status.Load())
}

// Upsert indexes one document under its deterministic id. Indexing must
// never fail materialization: while not ready it is a no-op, and backend
// errors are only logged.
func (s *searchService) Upsert(ctx context.Context, doc *models.SearchDocument) {
	if s.Status() != StatusReady {
		s.logger.Debug("Skipping index upsert, backend not ready",
			zap.String("document_id", doc.DocumentID()))
		return
	}

	if err := s.indexer.Index(ctx, doc.DocumentID(), doc); err != nil {
		s.logger.Warn("Failed to upsert search document",
			zap.String("document_id", doc.DocumentID()),
			zap.Error(err))
	}
}

func (s *searchService) Query(ctx context.Context, text string, fromDate *time.Time) (*models.SearchResult, error) {
	if s.Status() != StatusReady {
		return nil, apperrors.ErrIndexUnavailable
	}

	docs, total, err := s.indexer.Search(ctx, text, fromDate)
	if err != nil {
		return nil, fmt.Errorf("search query failed: %w", err)
	}

	result := &models.SearchResult{
		TotalHits: total,
		Groups:    make(map[string]*models.SearchGroup),
	}
	for _, doc := range docs {
		group, ok := result.Groups[doc.DatasetSource]
		if !ok {
			group = &models.SearchGroup{VersionName: doc.VersionName}
			result.Groups[doc.DatasetSource] = group
		}
		group.Items = append(group.Items, doc)
	}

	return result, nil
}
