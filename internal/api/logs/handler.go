// internal/api/logs/handler.go
package logs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	apperrors "churnshield/internal/common/errors"
	"churnshield/internal/common/logger"
	"churnshield/internal/models"
)

// DefaultLimit is how many entries GET /logs returns.
const DefaultLimit = 10

var errStoreUnavailable = errors.New("prediction log store unavailable")

// LogSource is the subset of the prediction log store the handler needs.
type LogSource interface {
	Recent(ctx context.Context, limit int) ([]models.PredictionLogEntry, error)
}

// Handler serves GET /logs with the most recent prediction log entries.
type Handler struct {
	source LogSource
	logger logger.Logger
}

func NewHandler(source LogSource, log logger.Logger) *Handler {
	return &Handler{
		source: source,
		logger: log.WithFields(map[string]interface{}{"endpoint": "logs"}),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if h.source == nil {
		apperrors.WriteHTTP(w, apperrors.NewQueryExecutionFailedError("recent-logs", errStoreUnavailable))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	entries, err := h.source.Recent(ctx, DefaultLimit)
	if err != nil {
		h.logger.Error("failed to fetch recent logs", map[string]interface{}{"error": err})
		apperrors.WriteHTTP(w, err)
		return
	}
	if entries == nil {
		entries = []models.PredictionLogEntry{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"logs":  entries,
		"count": len(entries),
	})
}
