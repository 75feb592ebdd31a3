// internal/api/stats/handler.go
package stats

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"churnshield/internal/common/errors"
	"churnshield/internal/common/logger"
)

const (
	cacheKey = "churnshield:stats"
	cacheTTL = 60 * time.Second
)

// RiskCounter is the subset of the prediction log store the handler needs.
type RiskCounter interface {
	CountByRisk(ctx context.Context) (map[string]int, error)
}

// DatasetSummary describes the training dataset. It is computed once at
// startup and never changes while the process runs.
type DatasetSummary struct {
	TotalCustomers int     `json:"total_customers"`
	ChurnedCount   int     `json:"churned_count"`
	ChurnRate      float64 `json:"churn_rate"`
}

// Response is the JSON body returned by GET /stats.
type Response struct {
	Dataset     DatasetSummary `json:"dataset"`
	Predictions map[string]int `json:"predictions_by_risk"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// Handler serves GET /stats: dataset-level churn numbers plus a breakdown of
// served predictions by risk level. Results are cached in Redis for a short
// TTL since the dataset part is static and the log counts tolerate staleness.
type Handler struct {
	counter RiskCounter
	summary DatasetSummary
	cache   *redis.Client
	logger  logger.Logger
}

// NewHandler wires the stats endpoint. counter may be nil when the database
// is down (risk counts come back empty) and cache may be nil to disable
// caching.
func NewHandler(counter RiskCounter, summary DatasetSummary, cache *redis.Client, log logger.Logger) *Handler {
	return &Handler{
		counter: counter,
		summary: summary,
		cache:   cache,
		logger:  log.WithFields(map[string]interface{}{"endpoint": "stats"}),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if cached, ok := h.fromCache(ctx); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "hit")
		_, _ = w.Write(cached)
		return
	}

	resp := Response{
		Dataset:     h.summary,
		Predictions: map[string]int{},
		GeneratedAt: time.Now().UTC(),
	}
	if h.counter != nil {
		counts, err := h.counter.CountByRisk(ctx)
		if err != nil {
			h.logger.Error("failed to count predictions by risk", map[string]interface{}{"error": err})
			errors.WriteHTTP(w, err)
			return
		}
		resp.Predictions = counts
	}

	body, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "failed to encode stats", http.StatusInternalServerError)
		return
	}
	h.toCache(ctx, body)

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

func (h *Handler) fromCache(ctx context.Context) ([]byte, bool) {
	if h.cache == nil {
		return nil, false
	}
	val, err := h.cache.Get(ctx, cacheKey).Result()
	if err != nil {
		if err != redis.Nil {
			h.logger.Warn("stats cache read failed", map[string]interface{}{"error": err})
		}
		return nil, false
	}
	return []byte(val), true
}

func (h *Handler) toCache(ctx context.Context, body []byte) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Set(ctx, cacheKey, body, cacheTTL).Err(); err != nil {
		h.logger.Warn("stats cache write failed", map[string]interface{}{"error": err})
	}
}
