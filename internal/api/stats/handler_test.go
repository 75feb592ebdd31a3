// internal/api/stats/handler_test.go
package stats

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churnshield/internal/common/errors"
	"churnshield/internal/common/logger"
)

type fakeCounter struct {
	counts map[string]int
	err    error
	calls  int
}

func (f *fakeCounter) CountByRisk(context.Context) (map[string]int, error) {
	f.calls++
	return f.counts, f.err
}

func testSummary() DatasetSummary {
	return DatasetSummary{TotalCustomers: 7043, ChurnedCount: 1869, ChurnRate: 0.2654}
}

func getStats(h *Handler) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestStatsEndpoint(t *testing.T) {
	counter := &fakeCounter{counts: map[string]int{"Low": 10, "High": 3}}
	h := NewHandler(counter, testSummary(), nil, logger.NewTestLogger(t))

	w := getStats(h)
	require.Equal(t, http.StatusOK, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 7043, resp.Dataset.TotalCustomers)
	assert.InDelta(t, 0.2654, resp.Dataset.ChurnRate, 1e-9)
	assert.Equal(t, map[string]int{"Low": 10, "High": 3}, resp.Predictions)
}

func TestStatsEndpoint_CacheMissThenWrite(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectGet(cacheKey).RedisNil()
	mock.Regexp().ExpectSet(cacheKey, `.*`, cacheTTL).SetVal("OK")

	counter := &fakeCounter{counts: map[string]int{"Medium": 4}}
	h := NewHandler(counter, testSummary(), client, logger.NewTestLogger(t))

	w := getStats(h)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, counter.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsEndpoint_CacheHitSkipsStore(t *testing.T) {
	cached := `{"dataset":{"total_customers":1,"churned_count":0,"churn_rate":0},"predictions_by_risk":{},"generated_at":"2025-06-01T00:00:00Z"}`
	client, mock := redismock.NewClientMock()
	mock.ExpectGet(cacheKey).SetVal(cached)

	counter := &fakeCounter{counts: map[string]int{"Low": 99}}
	h := NewHandler(counter, testSummary(), client, logger.NewTestLogger(t))

	w := getStats(h)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hit", w.Header().Get("X-Cache"))
	assert.JSONEq(t, cached, w.Body.String())
	assert.Zero(t, counter.calls, "cache hit must not query the store")
}

func TestStatsEndpoint_CacheFailureFallsThrough(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectGet(cacheKey).SetErr(assert.AnError)
	mock.Regexp().ExpectSet(cacheKey, `.*`, cacheTTL).SetErr(assert.AnError)

	counter := &fakeCounter{counts: map[string]int{}}
	h := NewHandler(counter, testSummary(), client, logger.NewTestLogger(t))

	w := getStats(h)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, counter.calls)
}

func TestStatsEndpoint_NoCounter(t *testing.T) {
	h := NewHandler(nil, testSummary(), nil, logger.NewTestLogger(t))

	w := getStats(h)
	require.Equal(t, http.StatusOK, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Predictions)
}

func TestStatsEndpoint_StoreFailure(t *testing.T) {
	counter := &fakeCounter{err: errors.NewQueryExecutionFailedError("count-by-risk", assert.AnError)}
	h := NewHandler(counter, testSummary(), nil, logger.NewTestLogger(t))

	w := getStats(h)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestStatsEndpoint_MethodNotAllowed(t *testing.T) {
	h := NewHandler(nil, testSummary(), nil, logger.NewTestLogger(t))

	req := httptest.NewRequest(http.MethodPost, "/stats", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
