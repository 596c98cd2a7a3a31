package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lakegate-inc/lakegate-engine/pkg/models"
)

func testVersionAt(name, root string) *models.DataLakeVersion {
	return &models.DataLakeVersion{Name: name, RootPath: root}
}

func storedRecord(dataset, version, transactionID string) *models.Transaction {
	return &models.Transaction{
		ID:            uuid.New(),
		DatasetName:   dataset,
		VersionName:   version,
		TransactionID: transactionID,
	}
}

func TestMaterializer_FirstCallIngests(t *testing.T) {
	reader := newMockReader()
	reader.addFile("/lake/v1", "SALES", "a.json",
		[]byte(`[{"TRANSACTION_ID": "tx-1", "AMOUNT": 10}, {"TRANSACTION_ID": "tx-2", "AMOUNT": 5}]`))
	repo := &mockTransactionRepo{}
	svc := NewMaterializerService(repo, reader, nil, zap.NewNop())

	count, err := svc.EnsureMaterialized(context.Background(), "SALES", testVersionAt("V1", "/lake/v1"))
	require.NoError(t, err)

	assert.Equal(t, 2, count)
	assert.Equal(t, 1, repo.insertCalls)
}

func TestMaterializer_SecondCallSkipsIngestion(t *testing.T) {
	reader := newMockReader()
	reader.addFile("/lake/v1", "SALES", "a.json", []byte(`{"TRANSACTION_ID": "tx-1", "AMOUNT": 10}`))
	repo := &mockTransactionRepo{}
	svc := NewMaterializerService(repo, reader, nil, zap.NewNop())

	_, err := svc.EnsureMaterialized(context.Background(), "SALES", testVersionAt("V1", "/lake/v1"))
	require.NoError(t, err)
	count, err := svc.EnsureMaterialized(context.Background(), "SALES", testVersionAt("V1", "/lake/v1"))
	require.NoError(t, err)

	assert.Equal(t, 1, count)
	assert.Equal(t, 1, repo.insertCalls)
}

func TestMaterializer_SkipsPreloadedStore(t *testing.T) {
	// Records already in the store (e.g. from a prior process) suppress
	// ingestion on the first observation.
	reader := newMockReader()
	reader.addFile("/lake/v1", "SALES", "a.json", []byte(`{"TRANSACTION_ID": "tx-1", "AMOUNT": 10}`))
	repo := &mockTransactionRepo{}
	repo.records = append(repo.records, storedRecord("SALES", "V1", "seeded"))
	svc := NewMaterializerService(repo, reader, nil, zap.NewNop())

	count, err := svc.EnsureMaterialized(context.Background(), "SALES", testVersionAt("V1", "/lake/v1"))
	require.NoError(t, err)

	assert.Equal(t, 1, count)
	assert.Equal(t, 0, repo.insertCalls)
}

func TestMaterializer_ItemErrorsDoNotAbortBatch(t *testing.T) {
	reader := newMockReader()
	reader.addFile("/lake/v1", "SALES", "a.json", []byte(`not json at all`))
	reader.addFile("/lake/v1", "SALES", "b.json",
		[]byte(`[{"TRANSACTION_ID": "ok-1", "AMOUNT": 1}, {"TRANSACTION_ID": "bad", "AMOUNT": -5}, {"TRANSACTION_ID": "ok-2", "AMOUNT": 2}]`))
	repo := &mockTransactionRepo{}
	svc := NewMaterializerService(repo, reader, nil, zap.NewNop())

	count, err := svc.EnsureMaterialized(context.Background(), "SALES", testVersionAt("V1", "/lake/v1"))
	require.NoError(t, err)

	assert.Equal(t, 2, count)
	require.Len(t, repo.records, 2)
	assert.Equal(t, "ok-1", repo.records[0].TransactionID)
	assert.Equal(t, "ok-2", repo.records[1].TransactionID)
}

func TestMaterializer_ConcurrentFirstLoadIngestsOnce(t *testing.T) {
	reader := newMockReader()
	reader.addFile("/lake/v1", "SALES", "a.json", []byte(`{"TRANSACTION_ID": "tx-1", "AMOUNT": 10}`))
	repo := &mockTransactionRepo{}
	svc := NewMaterializerService(repo, reader, nil, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.EnsureMaterialized(context.Background(), "SALES", testVersionAt("V1", "/lake/v1"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, repo.insertCalls)
	assert.Len(t, repo.records, 1)
}

func TestMaterializer_IndependentDatasetsDoNotShareState(t *testing.T) {
	reader := newMockReader()
	reader.addFile("/lake/v1", "SALES", "a.json", []byte(`{"TRANSACTION_ID": "s-1", "AMOUNT": 1}`))
	reader.addFile("/lake/v1", "REFUNDS", "a.json", []byte(`{"TRANSACTION_ID": "r-1", "AMOUNT": 2}`))
	repo := &mockTransactionRepo{}
	svc := NewMaterializerService(repo, reader, nil, zap.NewNop())

	_, err := svc.EnsureMaterialized(context.Background(), "SALES", testVersionAt("V1", "/lake/v1"))
	require.NoError(t, err)
	_, err = svc.EnsureMaterialized(context.Background(), "REFUNDS", testVersionAt("V1", "/lake/v1"))
	require.NoError(t, err)

	assert.Equal(t, 2, repo.insertCalls)
}

func TestMaterializer_FeedsDocumentSink(t *testing.T) {
	reader := newMockReader()
	reader.addFile("/lake/v1", "SALES", "a.json",
		[]byte(`[{"TRANSACTION_ID": "tx-1", "AMOUNT": 1}, {"TRANSACTION_ID": "tx-2", "AMOUNT": 2}]`))
	repo := &mockTransactionRepo{}
	indexer := newMockIndexer()
	search := readySearchService(t, indexer)
	svc := NewMaterializerService(repo, reader, search, zap.NewNop())

	_, err := svc.EnsureMaterialized(context.Background(), "SALES", testVersionAt("V1", "/lake/v1"))
	require.NoError(t, err)

	assert.Len(t, indexer.docs, 2)
	assert.Contains(t, indexer.docs, "V1_SALES_tx-1")
	assert.Contains(t, indexer.docs, "V1_SALES_tx-2")
}
