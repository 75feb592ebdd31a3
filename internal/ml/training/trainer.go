// internal/ml/training/trainer.go

// Package training fits the complete prediction pipeline from historical
// labeled data and persists it as the artifact the serving path consumes.
// Runs offline, never concurrently with serving.
package training

import (
	"fmt"
	"time"

	"churnshield/internal/common/logger"
	"churnshield/internal/ml/cleaner"
	"churnshield/internal/ml/dataset"
	"churnshield/internal/ml/encoder"
	"churnshield/internal/ml/gbdt"
	"churnshield/internal/ml/pipeline"
	"churnshield/internal/models"
)

// Config controls a single training run.
type Config struct {
	DataPath     string
	ArtifactPath string // empty skips persistence
	TestFraction float64
	Seed         int64
	Boosting     gbdt.Config
}

// DefaultConfig mirrors the production training setup: fixed 80/20
// stratified split with a fixed seed for reproducibility.
func DefaultConfig() Config {
	return Config{
		TestFraction: 0.2,
		Seed:         42,
		Boosting:     gbdt.DefaultConfig(),
	}
}

// Result is the outcome of a training run.
type Result struct {
	Pipeline  *pipeline.Pipeline
	Metrics   EvalMetrics
	TrainRows int
	TestRows  int
	PosWeight float64
}

// Run executes the full training procedure: load, split, fit cleaner+encoder
// +classifier in order, evaluate on the held-out fold, persist. Any failure
// aborts the run; the atomic artifact write guarantees no partial artifact
// is ever left behind.
func Run(cfg Config, log logger.Logger) (*Result, error) {
	table, err := dataset.LoadCSV(cfg.DataPath)
	if err != nil {
		return nil, err
	}
	log.Info("dataset loaded", map[string]interface{}{"rows": len(table.Rows), "path": cfg.DataPath})

	features, labels, err := table.SplitLabel()
	if err != nil {
		return nil, err
	}

	trainIdx, testIdx := dataset.StratifiedSplit(labels, cfg.TestFraction, cfg.Seed)

	clean := cleaner.New(encoder.DefaultNumericFeatures, encoder.DefaultCategoricalFeatures)
	cleanAll := func(idx []int) ([]*models.CanonicalRecord, []int, error) {
		records := make([]*models.CanonicalRecord, 0, len(idx))
		y := make([]int, 0, len(idx))
		for _, i := range idx {
			rec, err := clean.Clean(features[i])
			if err != nil {
				return nil, nil, fmt.Errorf("row %d failed cleaning: %w", i, err)
			}
			records = append(records, rec)
			y = append(y, labels[i])
		}
		return records, y, nil
	}

	trainRecords, trainY, err := cleanAll(trainIdx)
	if err != nil {
		return nil, err
	}
	testRecords, testY, err := cleanAll(testIdx)
	if err != nil {
		return nil, err
	}

	enc, err := encoder.Fit(trainRecords, encoder.DefaultNumericFeatures, encoder.DefaultCategoricalFeatures)
	if err != nil {
		return nil, fmt.Errorf("encoder fit failed: %w", err)
	}
	log.Info("encoder fitted", map[string]interface{}{"columns": len(enc.Columns)})

	encodeAll := func(records []*models.CanonicalRecord) ([][]float64, error) {
		X := make([][]float64, len(records))
		for i, rec := range records {
			vec, err := enc.Encode(rec)
			if err != nil {
				return nil, err
			}
			X[i] = vec
		}
		return X, nil
	}

	trainX, err := encodeAll(trainRecords)
	if err != nil {
		return nil, err
	}
	testX, err := encodeAll(testRecords)
	if err != nil {
		return nil, err
	}

	// class-imbalance weight from the actual training split, never hardcoded
	var pos, neg float64
	for _, l := range trainY {
		if l == 1 {
			pos++
		} else {
			neg++
		}
	}
	if pos == 0 {
		return nil, fmt.Errorf("training split has no positive examples")
	}
	posWeight := neg / pos

	log.Info("fitting classifier", map[string]interface{}{
		"trainRows": len(trainX),
		"posWeight": posWeight,
		"numTrees":  cfg.Boosting.NumTrees,
	})
	model, err := gbdt.Fit(trainX, trainY, posWeight, cfg.Boosting)
	if err != nil {
		return nil, fmt.Errorf("classifier fit failed: %w", err)
	}

	probs := make([]float64, len(testX))
	for i, x := range testX {
		probs[i] = model.PredictProbability(x)
	}
	metrics := Evaluate(probs, testY)
	log.Info("evaluation complete", map[string]interface{}{
		"precision": metrics.Precision,
		"recall":    metrics.Recall,
		"f1":        metrics.F1,
		"rocAuc":    metrics.ROCAUC,
	})

	p := pipeline.New(enc, model, time.Now().UTC())
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if cfg.ArtifactPath != "" {
		if err := p.Save(cfg.ArtifactPath); err != nil {
			return nil, fmt.Errorf("failed to persist artifact: %w", err)
		}
		log.Info("artifact saved", map[string]interface{}{"path": cfg.ArtifactPath})
	}

	return &Result{
		Pipeline:  p,
		Metrics:   metrics,
		TrainRows: len(trainX),
		TestRows:  len(testX),
		PosWeight: posWeight,
	}, nil
}
