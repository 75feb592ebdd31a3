// internal/api/predict/handler.go
package predict

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"churnshield/internal/analytics"
	"churnshield/internal/common/errors"
	"churnshield/internal/common/logger"
	"churnshield/internal/common/metrics"
	"churnshield/internal/common/observability"
	"churnshield/internal/ml/pipeline"
	"churnshield/internal/models"
	"churnshield/internal/notify"
)

// LogSink is the subset of the prediction log store the handler needs.
type LogSink interface {
	Insert(ctx context.Context, entry *models.PredictionLogEntry) error
}

// Handler serves POST /predict. The pipeline is injected read-only; every
// request is an independent unit of work with no shared mutable state.
type Handler struct {
	pipe    *pipeline.Pipeline
	opts    pipeline.Options
	logs    LogSink
	indexer *analytics.Indexer
	alerter *notify.Alerter
	obs     *observability.Observability
	logger  logger.Logger
}

// NewHandler wires the prediction endpoint. pipe may be nil (degraded mode:
// every request gets 503); logs, indexer and alerter may be nil to disable
// the corresponding sink.
func NewHandler(pipe *pipeline.Pipeline, opts pipeline.Options, logs LogSink, indexer *analytics.Indexer, alerter *notify.Alerter, obs *observability.Observability, log logger.Logger) *Handler {
	return &Handler{
		pipe:    pipe,
		opts:    opts,
		logs:    logs,
		indexer: indexer,
		alerter: alerter,
		obs:     obs,
		logger:  log.WithFields(map[string]interface{}{"endpoint": "predict"}),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if h.pipe == nil {
		h.reject(w, errors.NewModelNotLoadedError())
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		h.reject(w, errors.NewInvalidInputError("failed to read request body"))
		return
	}

	result, err := validateRequest(body)
	if err != nil {
		h.reject(w, errors.NewInvalidInputError(err.Error()))
		return
	}
	if !result.Valid {
		h.reject(w, errors.NewInvalidInputError(strings.Join(result.Errors, "; ")))
		return
	}

	var raw models.RawRecord
	if err := json.Unmarshal(body, &raw); err != nil {
		h.reject(w, errors.NewInvalidInputError("request body is not a JSON object"))
		return
	}

	start := time.Now()
	prediction, err := h.pipe.Predict(raw, h.opts)
	if err != nil {
		h.reject(w, err)
		return
	}
	elapsed := time.Since(start)

	metrics.PredictionsTotal.WithLabelValues(string(prediction.RiskLevel)).Inc()
	metrics.PredictionDuration.Observe(elapsed.Seconds())
	if h.obs != nil {
		h.obs.RecordPrediction(r.Context(), string(prediction.RiskLevel))
		h.obs.RecordPredictionDuration(r.Context(), elapsed, "ok")
	}

	h.logger.Info("prediction served", map[string]interface{}{
		"customerId":  prediction.CustomerID,
		"probability": prediction.ChurnProbability,
		"riskLevel":   prediction.RiskLevel,
		"durationMs":  elapsed.Milliseconds(),
	})

	// fan out to log/analytics/alert sinks off the request path; their
	// failures never affect the response
	go h.fanOut(prediction)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(Response{
		CustomerID:       prediction.CustomerID,
		ChurnProbability: round4(prediction.ChurnProbability),
		RiskLevel:        prediction.RiskLevel,
		Explanations:     prediction.Explanations,
	})
}

func (h *Handler) fanOut(prediction *models.PredictionResult) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// the entry is keyed up front so every sink shares the same ID, whether
	// or not the log insert happens or succeeds
	entry := &models.PredictionLogEntry{
		ID:          uuid.NewString(),
		CustomerID:  prediction.CustomerID,
		Probability: prediction.ChurnProbability,
		RiskLevel:   string(prediction.RiskLevel),
	}
	if prediction.ChurnProbability > 0.5 {
		entry.PredictedClass = 1
	}

	if h.logs != nil {
		if err := h.logs.Insert(ctx, entry); err != nil {
			metrics.LogWriteFailures.Inc()
			h.logger.Warn("failed to log prediction", map[string]interface{}{"error": err})
		}
	}
	if h.indexer != nil {
		h.indexer.IndexPrediction(ctx, entry.ID, prediction)
	}
	if h.alerter != nil && prediction.RiskLevel == models.RiskHigh {
		h.alerter.HighRiskAlert(ctx, prediction)
	}
}

func (h *Handler) reject(w http.ResponseWriter, err error) {
	var code errors.ErrorCode = "INTERNAL"
	if stdErr, ok := err.(*errors.StandardError); ok {
		code = stdErr.Code
	}
	metrics.PredictionErrors.WithLabelValues(string(code)).Inc()
	h.logger.Warn("prediction rejected", map[string]interface{}{"error": err})
	errors.WriteHTTP(w, err)
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
