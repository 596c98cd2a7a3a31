package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lakegate-inc/lakegate-engine/pkg/lake"
	"github.com/lakegate-inc/lakegate-engine/pkg/models"
	"github.com/lakegate-inc/lakegate-engine/pkg/repositories"
)

// ingestionState tracks where one (dataset, version) pair is in its
// materialization lifecycle.
type ingestionState int

const (
	stateNotLoaded ingestionState = iota
	stateLoaded
)

// ingestionEntry serializes materialization of one (dataset, version) pair.
// The mutex is held for the whole check-and-load sequence so concurrent
// first readers cannot both observe an empty store.
type ingestionEntry struct {
	mu    sync.Mutex
	state ingestionState
}

// MaterializerService lazily loads a dataset's lake files into the
// queryable record store, exactly once per (dataset, version) within a
// process lifetime.
//
// The in-process registry is authoritative once a pair reaches the loaded
// state: records deleted externally afterwards are not re-ingested until the
// process restarts and re-observes an empty store. This closes the
// duplicate-ingestion window that inferring emptiness on every call would
// leave open.
type MaterializerService interface {
	// EnsureMaterialized loads (dataset, version) into the store if it is
	// not already present, and returns the number of records now stored.
	EnsureMaterialized(ctx context.Context, dataset string, version *models.DataLakeVersion) (int, error)
}

// DocumentSink receives the normalized records as a side channel for the
// secondary index. Implementations must never fail materialization.
type DocumentSink interface {
	Upsert(ctx context.Context, doc *models.SearchDocument)
}

type materializerService struct {
	transactions repositories.TransactionRepository
	reader       lake.Reader
	sink         DocumentSink
	logger       *zap.Logger

	mu      sync.Mutex
	entries map[string]*ingestionEntry
}

// NewMaterializerService creates a new MaterializerService. The sink may be
// nil when no secondary index is configured.
func NewMaterializerService(transactions repositories.TransactionRepository, reader lake.Reader, sink DocumentSink, logger *zap.Logger) MaterializerService {
	return &materializerService{
		transactions: transactions,
		reader:       reader,
		sink:         sink,
		logger:       logger.Named("materializer"),
		entries:      make(map[string]*ingestionEntry),
	}
}

var _ MaterializerService = (*materializerService)(nil)

func (s *materializerService) EnsureMaterialized(ctx context.Context, dataset string, version *models.DataLakeVersion) (int, error) {
	entry := s.entry(dataset, version.Name)

	// Serializes concurrent materializations of the same pair; unrelated
	// datasets proceed on their own entries.
	entry.mu.Lock()
	defer entry.mu.Unlock()

	count, err := s.transactions.CountByDatasetVersion(ctx, dataset, version.Name)
	if err != nil {
		return 0, fmt.Errorf("count materialized records: %w", err)
	}

	if entry.state == stateLoaded || count > 0 {
		entry.state = stateLoaded
		return count, nil
	}

	inserted, err := s.ingest(ctx, dataset, version)
	if err != nil {
		return 0, err
	}

	entry.state = stateLoaded
	return inserted, nil
}

// ingest scans every data file under the dataset directory in lexicographic
// order. A file that fails to decode is skipped entirely; a record that
// fails to normalize is skipped individually. Neither aborts the batch.
func (s *materializerService) ingest(ctx context.Context, dataset string, version *models.DataLakeVersion) (int, error) {
	files, err := s.reader.ListFiles(version.RootPath, dataset)
	if err != nil {
		return 0, fmt.Errorf("list dataset files: %w", err)
	}

	now := time.Now()
	var records []*models.Transaction
	itemErrors := 0

	for _, name := range files {
		data, err := s.reader.ReadFile(version.RootPath, dataset, name)
		if err != nil {
			itemErrors++
			s.logger.Warn("Skipping unreadable data file",
				zap.String("dataset", dataset),
				zap.String("version", version.Name),
				zap.String("file", name),
				zap.Error(err))
			continue
		}

		decoded, err := lake.DecodeFile(data)
		if err != nil {
			itemErrors++
			s.logger.Warn("Skipping malformed data file",
				zap.String("dataset", dataset),
				zap.String("version", version.Name),
				zap.String("file", name),
				zap.Error(err))
			continue
		}

		for _, raw := range decoded.Records {
			record, err := lake.NormalizeRecord(raw, dataset, version.Name, now)
			if err != nil {
				itemErrors++
				s.logger.Warn("Skipping unnormalizable record",
					zap.String("dataset", dataset),
					zap.String("version", version.Name),
					zap.String("file", name),
					zap.Error(err))
				continue
			}
			records = append(records, record)
		}
	}

	if err := s.transactions.InsertBatch(ctx, records); err != nil {
		return 0, fmt.Errorf("store materialized records: %w", err)
	}

	if s.sink != nil {
		for _, record := range records {
			s.sink.Upsert(ctx, models.SearchDocumentFromTransaction(record))
		}
	}

	s.logger.Info("Materialized dataset",
		zap.String("dataset", dataset),
		zap.String("version", version.Name),
		zap.Int("records", len(records)),
		zap.Int("item_errors", itemErrors))

	return len(records), nil
}

func (s *materializerService) entry(dataset, version string) *ingestionEntry {
	key := dataset + "\x00" + version

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		e = &ingestionEntry{}
		s.entries[key] = e
	}
	return e
}
