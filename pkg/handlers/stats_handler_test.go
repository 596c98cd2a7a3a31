package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lakegate-inc/lakegate-engine/pkg/apperrors"
	"github.com/lakegate-inc/lakegate-engine/pkg/services"
)

const statsDataset = "TRANSACTIONS_COMPLETED"

func TestStatsHandler_RecentSpend(t *testing.T) {
	stats := &stubStatsService{spent: 123.45}
	access := &stubAccessService{}
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	handler := NewStatsHandler(stats, access, statsDataset, func() time.Time { return fixed }, zap.NewNop())

	req := asPrincipal(httptest.NewRequest(http.MethodGet, "/stats/last_5_minutes", nil), "alice")
	rec := httptest.NewRecorder()
	handler.RecentSpend(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5*time.Minute, stats.gotWindow)
	assert.Equal(t, "alice", access.gotPrincipal)
	assert.Equal(t, statsDataset, access.gotDataset)

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, 123.45, body["total_spent"])
	assert.Equal(t, float64(5), body["window_minutes"])
	assert.Equal(t, "2024-06-01T12:00:00Z", body["as_of"])
}

func TestStatsHandler_TotalsByUser(t *testing.T) {
	stats := &stubStatsService{users: []*services.UserStats{
		{UserID: "u1", TotalSpent: 10, TotalTransactions: 2},
	}}
	handler := NewStatsHandler(stats, &stubAccessService{}, statsDataset, time.Now, zap.NewNop())

	req := asPrincipal(httptest.NewRequest(http.MethodGet, "/stats/total_by_user", nil), "alice")
	rec := httptest.NewRecorder()
	handler.TotalsByUser(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Users []*services.UserStats `json:"users"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Users, 1)
	assert.Equal(t, "u1", body.Users[0].UserID)
}

func TestStatsHandler_TopProducts_DefaultLimit(t *testing.T) {
	stats := &stubStatsService{}
	handler := NewStatsHandler(stats, &stubAccessService{}, statsDataset, time.Now, zap.NewNop())

	req := asPrincipal(httptest.NewRequest(http.MethodGet, "/stats/top_products", nil), "alice")
	rec := httptest.NewRecorder()
	handler.TopProducts(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, stats.gotLimit)
}

func TestStatsHandler_TopProducts_ExplicitLimit(t *testing.T) {
	stats := &stubStatsService{}
	handler := NewStatsHandler(stats, &stubAccessService{}, statsDataset, time.Now, zap.NewNop())

	req := asPrincipal(httptest.NewRequest(http.MethodGet, "/stats/top_products?limit=3", nil), "alice")
	rec := httptest.NewRecorder()
	handler.TopProducts(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, stats.gotLimit)
}

func TestStatsHandler_TopProducts_InvalidLimit(t *testing.T) {
	handler := NewStatsHandler(&stubStatsService{}, &stubAccessService{}, statsDataset, time.Now, zap.NewNop())

	for _, raw := range []string{"0", "-2", "abc"} {
		req := asPrincipal(httptest.NewRequest(http.MethodGet, "/stats/top_products?limit="+raw, nil), "alice")
		rec := httptest.NewRecorder()
		handler.TopProducts(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "limit=%s", raw)
	}
}

func TestStatsHandler_DeniedWithoutDatasetRight(t *testing.T) {
	access := &stubAccessService{authorizeErr: apperrors.ErrAccessDenied}
	stats := &stubStatsService{spent: 42.5}
	handler := NewStatsHandler(stats, access, statsDataset, time.Now, zap.NewNop())

	routes := map[string]http.HandlerFunc{
		"/stats/last_5_minutes": handler.RecentSpend,
		"/stats/total_by_user":  handler.TotalsByUser,
		"/stats/top_products":   handler.TopProducts,
	}
	for path, serve := range routes {
		req := asPrincipal(httptest.NewRequest(http.MethodGet, path, nil), "mallory")
		rec := httptest.NewRecorder()
		serve(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code, path)
		assert.NotContains(t, rec.Body.String(), "42.5", path)
		assert.Equal(t, "mallory", access.gotPrincipal)
		assert.Equal(t, statsDataset, access.gotDataset)
	}
}
