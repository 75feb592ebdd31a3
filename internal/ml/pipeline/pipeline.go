// internal/ml/pipeline/pipeline.go

// Package pipeline bundles the fitted cleaner, encoder and classifier into a
// single immutable, versioned artifact. The bundle is created once by the
// training orchestrator and loaded read-only by the serving path, so both
// paths run byte-identical transform logic.
package pipeline

import (
	"time"

	"churnshield/internal/common/errors"
	"churnshield/internal/ml/cleaner"
	"churnshield/internal/ml/encoder"
	"churnshield/internal/ml/gbdt"
	"churnshield/internal/ml/shap"
	"churnshield/internal/models"
)

// ArtifactVersion is bumped whenever the serialized layout changes.
const ArtifactVersion = "1"

// Pipeline is the complete fitted prediction pipeline. Never mutated after
// load; safe for concurrent use by parallel requests.
type Pipeline struct {
	Version   string          `json:"version"`
	TrainedAt time.Time       `json:"trained_at"`
	Encoder   *encoder.Params `json:"encoder"`
	Model     *gbdt.Ensemble  `json:"model"`

	clean *cleaner.Cleaner
}

// Options carries the serving-policy constants (risk thresholds, top-K).
// These are configuration, not learned values.
type Options struct {
	TopK            int
	HighThreshold   float64
	MediumThreshold float64
}

// DefaultOptions mirrors the production policy.
func DefaultOptions() Options {
	return Options{TopK: 5, HighThreshold: 0.7, MediumThreshold: 0.4}
}

// New assembles a pipeline from fitted parts.
func New(enc *encoder.Params, model *gbdt.Ensemble, trainedAt time.Time) *Pipeline {
	return &Pipeline{
		Version:   ArtifactVersion,
		TrainedAt: trainedAt,
		Encoder:   enc,
		Model:     model,
		clean:     cleaner.New(enc.NumericFeatures, enc.CategoricalFeatures),
	}
}

// Schema returns the ordered encoded column names.
func (p *Pipeline) Schema() []string {
	return p.Encoder.Schema()
}

// Validate performs the structural compatibility check done once at load
// time. A broken artifact must abort serving readiness, never silently
// degrade into wrong predictions.
func (p *Pipeline) Validate() error {
	if p.Encoder == nil {
		return errors.NewModelIncompatibleError("artifact is missing encoder parameters")
	}
	if p.Model == nil || len(p.Model.Trees) == 0 {
		return errors.NewModelIncompatibleError("artifact is missing classifier trees")
	}
	if len(p.Encoder.Columns) == 0 {
		return errors.NewModelIncompatibleError("artifact has an empty feature schema")
	}
	if len(p.Encoder.Columns) != p.Model.NumFeatures {
		return errors.NewModelIncompatibleError("feature schema length does not match classifier input width")
	}
	return nil
}

// Encode runs the clean and encode stages for one raw record.
func (p *Pipeline) Encode(raw models.RawRecord) ([]float64, error) {
	rec, err := p.clean.Clean(raw)
	if err != nil {
		return nil, err
	}
	return p.Encoder.Encode(rec)
}

// Predict runs the full chain for one raw record: clean, encode, score,
// explain, tier. Pure given the fitted parameters; concurrent requests need
// no locking.
func (p *Pipeline) Predict(raw models.RawRecord, opts Options) (*models.PredictionResult, error) {
	vec, err := p.Encode(raw)
	if err != nil {
		return nil, err
	}

	prob := p.Model.PredictProbability(vec)

	attr, err := shap.Explain(vec, p.Model)
	if err != nil {
		return nil, errors.NewPredictionFailedError(err)
	}
	explanations, err := shap.Rank(attr, p.Encoder.Schema(), opts.TopK)
	if err != nil {
		return nil, errors.NewPredictionFailedError(err)
	}

	return &models.PredictionResult{
		CustomerID:       raw.CustomerID(),
		ChurnProbability: prob,
		RiskLevel:        Tier(prob, opts),
		Explanations:     explanations,
	}, nil
}

// Tier discretizes a probability into a risk bucket. Boundaries are
// exclusive at the lower edge: exactly 0.4 is Low, exactly 0.7 is Medium.
func Tier(prob float64, opts Options) models.RiskLevel {
	switch {
	case prob > opts.HighThreshold:
		return models.RiskHigh
	case prob > opts.MediumThreshold:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}
