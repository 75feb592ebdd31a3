// internal/analytics/indexer.go

// Package analytics mirrors served predictions into Elasticsearch for ad-hoc
// analysis. The index is a secondary sink: failures are logged and swallowed,
// never surfaced to the caller.
package analytics

import (
	"context"
	"encoding/json"
	"time"

	"churnshield/internal/common/database"
	"churnshield/internal/common/logger"
	"churnshield/internal/models"
)

type document struct {
	CustomerID  string    `json:"customer_id"`
	Probability float64   `json:"churn_probability"`
	RiskLevel   string    `json:"risk_level"`
	TopFeature  string    `json:"top_feature,omitempty"`
	IndexedAt   time.Time `json:"indexed_at"`
}

// Indexer writes prediction documents to one Elasticsearch index.
type Indexer struct {
	es     *database.ElasticsearchClient
	index  string
	logger logger.Logger
}

func NewIndexer(es *database.ElasticsearchClient, index string, log logger.Logger) *Indexer {
	return &Indexer{
		es:     es,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "analytics-indexer"}),
	}
}

// IndexPrediction stores one prediction document keyed by log entry ID.
// Errors are swallowed after logging.
func (i *Indexer) IndexPrediction(ctx context.Context, entryID string, result *models.PredictionResult) {
	doc := document{
		CustomerID:  result.CustomerID,
		Probability: result.ChurnProbability,
		RiskLevel:   string(result.RiskLevel),
		IndexedAt:   time.Now().UTC(),
	}
	if len(result.Explanations) > 0 {
		doc.TopFeature = result.Explanations[0].Feature
	}

	body, err := json.Marshal(doc)
	if err != nil {
		i.logger.Error("failed to marshal prediction document", map[string]interface{}{"error": err})
		return
	}

	if err := i.es.Index(ctx, i.index, entryID, body); err != nil {
		i.logger.Warn("failed to index prediction", map[string]interface{}{
			"entryId": entryID,
			"error":   err,
		})
	}
}
