// internal/store/predictions.go

// Package store holds the relational persistence for prediction logs and
// dashboard users.
//
// Expected tables:
//
//	prediction_logs (id VARCHAR(36) PRIMARY KEY, customer_id VARCHAR(50),
//	                 prediction_prob DOUBLE PRECISION, prediction_class INT,
//	                 risk_level VARCHAR(20), prediction_date TIMESTAMPTZ)
//	users           (id SERIAL PRIMARY KEY, username VARCHAR(50) UNIQUE,
//	                 password VARCHAR(255), full_name VARCHAR(100))
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"churnshield/internal/common/errors"
	"churnshield/internal/models"
)

// PredictionLogStore is the append-only prediction log sink. Inserts from
// concurrent requests need no coordination; ordering between entries is not
// guaranteed and not required.
type PredictionLogStore struct {
	db *sql.DB
}

func NewPredictionLogStore(db *sql.DB) *PredictionLogStore {
	return &PredictionLogStore{db: db}
}

// Insert appends one log entry. An empty ID is assigned a fresh UUID.
func (s *PredictionLogStore) Insert(ctx context.Context, entry *models.PredictionLogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO prediction_logs (id, customer_id, prediction_prob, prediction_class, risk_level, prediction_date)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID, entry.CustomerID, entry.Probability, entry.PredictedClass, entry.RiskLevel, entry.CreatedAt,
	)
	if err != nil {
		return errors.NewLogWriteFailedError(err)
	}
	return nil
}

// Recent returns the newest entries, most recent first.
func (s *PredictionLogStore) Recent(ctx context.Context, limit int) ([]models.PredictionLogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, customer_id, prediction_prob, prediction_class, risk_level, prediction_date
		FROM prediction_logs
		ORDER BY prediction_date DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("recent-logs", err)
	}
	defer rows.Close()

	var entries []models.PredictionLogEntry
	for rows.Next() {
		var e models.PredictionLogEntry
		if err := rows.Scan(&e.ID, &e.CustomerID, &e.Probability, &e.PredictedClass, &e.RiskLevel, &e.CreatedAt); err != nil {
			return nil, errors.NewQueryExecutionFailedError("recent-logs", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("recent-logs", err)
	}
	return entries, nil
}

// CountByRisk returns how many logged predictions fall into each risk level.
func (s *PredictionLogStore) CountByRisk(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT risk_level, COUNT(*)
		FROM prediction_logs
		GROUP BY risk_level`)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("count-by-risk", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var level string
		var count int
		if err := rows.Scan(&level, &count); err != nil {
			return nil, errors.NewQueryExecutionFailedError("count-by-risk", err)
		}
		counts[level] = count
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("count-by-risk", err)
	}
	return counts, nil
}
