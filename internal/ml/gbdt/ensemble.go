// internal/ml/gbdt/ensemble.go

// Package gbdt implements a gradient-boosted decision tree classifier for
// binary churn prediction: second-order boosting on the logistic loss with
// exact greedy splits. Fitting is fully deterministic for identical inputs;
// there is no sampling anywhere in the algorithm.
package gbdt

import (
	"fmt"
	"math"
)

// Config holds the boosting hyperparameters. The training procedure is
// fixed; these exist so tests can fit small models quickly.
type Config struct {
	NumTrees       int     `json:"num_trees"`
	LearningRate   float64 `json:"learning_rate"`
	MaxDepth       int     `json:"max_depth"`
	Lambda         float64 `json:"lambda"`
	MinChildWeight float64 `json:"min_child_weight"`
	MinSplitGain   float64 `json:"min_split_gain"`
}

// DefaultConfig mirrors the production training setup.
func DefaultConfig() Config {
	return Config{
		NumTrees:       100,
		LearningRate:   0.1,
		MaxDepth:       5,
		Lambda:         1.0,
		MinChildWeight: 1.0,
		MinSplitGain:   1e-6,
	}
}

// Ensemble is a fitted boosted-tree model. Immutable after Fit; safe for
// concurrent use.
type Ensemble struct {
	Trees       []*Tree `json:"trees"`
	NumFeatures int     `json:"num_features"`
	BaseScore   float64 `json:"base_score"`
	PosWeight   float64 `json:"pos_weight"`
	Config      Config  `json:"config"`
}

// Fit trains the ensemble on encoded feature vectors and binary labels.
// posWeight is the positive-class weight (negative count / positive count on
// the training split) used to correct class imbalance.
func Fit(X [][]float64, y []int, posWeight float64, cfg Config) (*Ensemble, error) {
	if len(X) == 0 {
		return nil, fmt.Errorf("cannot fit on empty training set")
	}
	if len(X) != len(y) {
		return nil, fmt.Errorf("feature matrix has %d rows but %d labels", len(X), len(y))
	}
	if posWeight <= 0 {
		posWeight = 1
	}

	n := len(X)
	e := &Ensemble{
		Trees:       make([]*Tree, 0, cfg.NumTrees),
		NumFeatures: len(X[0]),
		BaseScore:   0.5,
		PosWeight:   posWeight,
		Config:      cfg,
	}

	weights := make([]float64, n)
	for i, label := range y {
		if label == 1 {
			weights[i] = posWeight
		} else {
			weights[i] = 1
		}
	}

	margins := make([]float64, n)
	base := e.BaseMargin()
	for i := range margins {
		margins[i] = base
	}

	grad := make([]float64, n)
	hess := make([]float64, n)
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	for round := 0; round < cfg.NumTrees; round++ {
		for i := 0; i < n; i++ {
			p := sigmoid(margins[i])
			grad[i] = weights[i] * (p - float64(y[i]))
			h := weights[i] * p * (1 - p)
			if h < 1e-16 {
				h = 1e-16
			}
			hess[i] = h
		}

		builder := &treeBuilder{X: X, grad: grad, hess: hess, weights: weights, cfg: cfg}
		tree := &Tree{Root: builder.build(indices, 0)}
		e.Trees = append(e.Trees, tree)

		for i := 0; i < n; i++ {
			margins[i] += tree.Predict(X[i])
		}
	}

	return e, nil
}

// BaseMargin returns the raw-score offset implied by the base score.
func (e *Ensemble) BaseMargin() float64 {
	return math.Log(e.BaseScore / (1 - e.BaseScore))
}

// Margin returns the raw additive model output for one feature vector.
func (e *Ensemble) Margin(x []float64) float64 {
	m := e.BaseMargin()
	for _, t := range e.Trees {
		m += t.Predict(x)
	}
	return m
}

// PredictProbability maps the raw margin through the logistic link.
func (e *Ensemble) PredictProbability(x []float64) float64 {
	return sigmoid(e.Margin(x))
}

// ExpectedMargin is the model's baseline: the cover-weighted expected raw
// output over the training distribution. The attribution decomposition is
// anchored to this value.
func (e *Ensemble) ExpectedMargin() float64 {
	m := e.BaseMargin()
	for _, t := range e.Trees {
		m += t.ExpectedValue()
	}
	return m
}

func sigmoid(z float64) float64 {
	if z < -500 {
		return 0
	}
	if z > 500 {
		return 1
	}
	return 1 / (1 + math.Exp(-z))
}
