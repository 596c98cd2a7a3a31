package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lakegate-inc/lakegate-engine/pkg/apperrors"
	"github.com/lakegate-inc/lakegate-engine/pkg/models"
)

// ============================================================================
// Mock Repositories
// ============================================================================

type mockVersionRepo struct {
	versions map[string]*models.DataLakeVersion
	listErr  error
}

func newMockVersionRepo(versions ...*models.DataLakeVersion) *mockVersionRepo {
	m := &mockVersionRepo{versions: make(map[string]*models.DataLakeVersion)}
	for _, v := range versions {
		m.versions[v.Name] = v
	}
	return m
}

func (m *mockVersionRepo) Create(ctx context.Context, version *models.DataLakeVersion) error {
	m.versions[version.Name] = version
	return nil
}

func (m *mockVersionRepo) GetByName(ctx context.Context, name string) (*models.DataLakeVersion, error) {
	if v, ok := m.versions[name]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("version %q: %w", name, apperrors.ErrVersionNotFound)
}

func (m *mockVersionRepo) List(ctx context.Context) ([]*models.DataLakeVersion, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []*models.DataLakeVersion
	for _, v := range m.versions {
		result = append(result, v)
	}
	return result, nil
}

type mockRightsRepo struct {
	rights []*models.AccessRight
	getErr error
}

func (m *mockRightsRepo) Create(ctx context.Context, right *models.AccessRight) error {
	m.rights = append(m.rights, right)
	return nil
}

func (m *mockRightsRepo) Get(ctx context.Context, principal, datasetName string) (*models.AccessRight, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, r := range m.rights {
		if r.Principal == principal && r.DatasetName == datasetName {
			return r, nil
		}
	}
	return nil, nil
}

func (m *mockRightsRepo) ListByPrincipal(ctx context.Context, principal string) ([]*models.AccessRight, error) {
	var result []*models.AccessRight
	for _, r := range m.rights {
		if r.Principal == principal {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *mockRightsRepo) List(ctx context.Context) ([]*models.AccessRight, error) {
	return m.rights, nil
}

type mockAuditRepo struct {
	mu             sync.Mutex
	accessEntries  []*models.AccessAuditEntry
	requestEntries []*models.RequestAuditEntry
	createErr      error
}

func (m *mockAuditRepo) CreateAccessEntry(ctx context.Context, entry *models.AccessAuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.accessEntries = append(m.accessEntries, entry)
	return nil
}

func (m *mockAuditRepo) CreateRequestEntry(ctx context.Context, entry *models.RequestAuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestEntries = append(m.requestEntries, entry)
	return nil
}

func (m *mockAuditRepo) GetAccessHistory(ctx context.Context, datasetName string) ([]*models.AccessAuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*models.AccessAuditEntry
	for i := len(m.accessEntries) - 1; i >= 0; i-- {
		if m.accessEntries[i].DatasetName == datasetName {
			result = append(result, m.accessEntries[i])
		}
	}
	return result, nil
}

type mockTransactionRepo struct {
	mu           sync.Mutex
	records      []*models.Transaction
	insertCalls  int
	insertErr    error
	countErr     error
	filterCalled *models.TransactionFilter
}

func (m *mockTransactionRepo) InsertBatch(ctx context.Context, records []*models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	m.insertCalls++
	m.records = append(m.records, records...)
	return nil
}

func (m *mockTransactionRepo) CountByDatasetVersion(ctx context.Context, dataset, version string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.countErr != nil {
		return 0, m.countErr
	}
	count := 0
	for _, r := range m.records {
		if r.DatasetName == dataset && r.VersionName == version {
			count++
		}
	}
	return count, nil
}

func (m *mockTransactionRepo) ListByDatasetVersion(ctx context.Context, dataset, version string) ([]*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*models.Transaction
	for _, r := range m.records {
		if r.DatasetName == dataset && r.VersionName == version {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *mockTransactionRepo) ListFiltered(ctx context.Context, dataset, version string, filter *models.TransactionFilter) ([]*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filterCalled = filter
	var result []*models.Transaction
	for _, r := range m.records {
		if r.DatasetName == dataset && r.VersionName == version {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *mockTransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

// ============================================================================
// Mock Lake Reader
// ============================================================================

// mockReader serves lake content from an in-memory tree:
// root -> dataset -> file name -> raw bytes.
type mockReader struct {
	mu    sync.Mutex
	tree  map[string]map[string]map[string][]byte
	reads int
}

func newMockReader() *mockReader {
	return &mockReader{tree: make(map[string]map[string]map[string][]byte)}
}

func (m *mockReader) addFile(root, dataset, name string, data []byte) {
	if m.tree[root] == nil {
		m.tree[root] = make(map[string]map[string][]byte)
	}
	if m.tree[root][dataset] == nil {
		m.tree[root][dataset] = make(map[string][]byte)
	}
	m.tree[root][dataset][name] = data
}

func (m *mockReader) ListDatasets(root string) ([]string, error) {
	datasets, ok := m.tree[root]
	if !ok {
		return nil, fmt.Errorf("no such root %q", root)
	}
	var names []string
	for name := range datasets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *mockReader) DatasetExists(root, dataset string) bool {
	_, ok := m.tree[root][dataset]
	return ok
}

func (m *mockReader) ListFiles(root, dataset string) ([]string, error) {
	files, ok := m.tree[root][dataset]
	if !ok {
		return nil, fmt.Errorf("no such dataset %q under %q", dataset, root)
	}
	var names []string
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *mockReader) ReadFile(root, dataset, name string) ([]byte, error) {
	m.mu.Lock()
	m.reads++
	m.mu.Unlock()
	data, ok := m.tree[root][dataset][name]
	if !ok {
		return nil, fmt.Errorf("no such file %q", name)
	}
	return data, nil
}

// ============================================================================
// Mock Search Indexer
// ============================================================================

type mockIndexer struct {
	mu         sync.Mutex
	docs       map[string]*models.SearchDocument
	pingErr    error
	pingFails  int
	pingCalls  int
	ensureErr  error
	indexErr   error
	searchHits []*models.SearchDocument
	searchErr  error
}

func newMockIndexer() *mockIndexer {
	return &mockIndexer{docs: make(map[string]*models.SearchDocument)}
}

func (m *mockIndexer) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingCalls++
	if m.pingFails > 0 {
		m.pingFails--
		return fmt.Errorf("connection refused")
	}
	return m.pingErr
}

func (m *mockIndexer) EnsureIndex(ctx context.Context) error {
	return m.ensureErr
}

func (m *mockIndexer) Index(ctx context.Context, id string, doc *models.SearchDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.indexErr != nil {
		return m.indexErr
	}
	m.docs[id] = doc
	return nil
}

func (m *mockIndexer) Search(ctx context.Context, text string, fromDate *time.Time) ([]*models.SearchDocument, int64, error) {
	if m.searchErr != nil {
		return nil, 0, m.searchErr
	}
	return m.searchHits, int64(len(m.searchHits)), nil
}
