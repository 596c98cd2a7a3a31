package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lakegate-inc/lakegate-engine/pkg/apperrors"
	"github.com/lakegate-inc/lakegate-engine/pkg/services"
)

func TestAdminHandler_Reindex(t *testing.T) {
	svc := &stubReindexService{report: &services.ReindexReport{
		Versions: 2, Datasets: 3, Documents: 40, ItemErrors: 1,
	}}
	handler := NewAdminHandler(svc, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/admin/reindex", nil)
	rec := httptest.NewRecorder()
	handler.Reindex(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var report services.ReindexReport
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&report))
	assert.Equal(t, 40, report.Documents)
	assert.Equal(t, 1, report.ItemErrors)
}

func TestAdminHandler_Reindex_IndexUnavailable(t *testing.T) {
	handler := NewAdminHandler(&stubReindexService{err: apperrors.ErrIndexUnavailable}, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/admin/reindex", nil)
	rec := httptest.NewRecorder()
	handler.Reindex(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
