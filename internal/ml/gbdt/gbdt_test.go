// internal/ml/gbdt/gbdt_test.go
package gbdt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.NumTrees = 20
	cfg.MaxDepth = 3
	return cfg
}

// separableData is linearly separable on feature 0.
func separableData() ([][]float64, []int) {
	X := [][]float64{
		{0.1, 1.0}, {0.2, 0.5}, {0.3, 0.9}, {0.25, 0.1},
		{0.9, 0.4}, {0.8, 0.7}, {0.95, 0.2}, {0.85, 0.8},
	}
	y := []int{0, 0, 0, 0, 1, 1, 1, 1}
	return X, y
}

func TestFit_SeparatesClasses(t *testing.T) {
	X, y := separableData()
	e, err := Fit(X, y, 1.0, testConfig())
	require.NoError(t, err)

	for i, x := range X {
		p := e.PredictProbability(x)
		if y[i] == 1 {
			assert.Greater(t, p, 0.5, "row %d should score above 0.5", i)
		} else {
			assert.Less(t, p, 0.5, "row %d should score below 0.5", i)
		}
	}
}

func TestFit_Deterministic(t *testing.T) {
	X, y := separableData()

	a, err := Fit(X, y, 1.0, testConfig())
	require.NoError(t, err)
	b, err := Fit(X, y, 1.0, testConfig())
	require.NoError(t, err)

	require.Equal(t, len(a.Trees), len(b.Trees))
	probe := []float64{0.5, 0.5}
	assert.Equal(t, a.Margin(probe), b.Margin(probe))
	for i, x := range X {
		assert.Equal(t, a.Margin(x), b.Margin(x), "row %d margin differs between runs", i)
	}
}

func TestFit_InputValidation(t *testing.T) {
	tests := []struct {
		name string
		X    [][]float64
		y    []int
	}{
		{"empty matrix", nil, nil},
		{"row label mismatch", [][]float64{{1}}, []int{0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Fit(tt.X, tt.y, 1.0, testConfig())
			assert.Error(t, err)
		})
	}
}

func TestBaseMargin_IsZeroForHalf(t *testing.T) {
	e := &Ensemble{BaseScore: 0.5}
	assert.InDelta(t, 0.0, e.BaseMargin(), 1e-12)
}

func TestPosWeight_ShiftsTowardPositives(t *testing.T) {
	// one positive among many negatives; upweighting the positive must raise
	// its predicted probability
	X := [][]float64{{0.1}, {0.2}, {0.3}, {0.4}, {0.5}, {0.9}}
	y := []int{0, 0, 0, 0, 0, 1}

	plain, err := Fit(X, y, 1.0, testConfig())
	require.NoError(t, err)
	weighted, err := Fit(X, y, 5.0, testConfig())
	require.NoError(t, err)

	assert.Greater(t, weighted.PredictProbability([]float64{0.9}), plain.PredictProbability([]float64{0.9}))
}

func TestTreePredict_ThresholdRouting(t *testing.T) {
	tree := &Tree{Root: &Node{
		Feature:   0,
		Threshold: 1.0,
		Cover:     10,
		Left:      &Node{Leaf: true, Value: -1, Cover: 4},
		Right:     &Node{Leaf: true, Value: 1, Cover: 6},
	}}

	assert.Equal(t, -1.0, tree.Predict([]float64{0.5}), "below threshold goes left")
	assert.Equal(t, 1.0, tree.Predict([]float64{1.0}), "equal to threshold goes right")
	assert.Equal(t, 1.0, tree.Predict([]float64{1.5}))
}

func TestTreeExpectedValue_CoverWeighted(t *testing.T) {
	tree := &Tree{Root: &Node{
		Feature:   0,
		Threshold: 0,
		Cover:     10,
		Left:      &Node{Leaf: true, Value: -1, Cover: 4},
		Right:     &Node{Leaf: true, Value: 1, Cover: 6},
	}}

	// (4*-1 + 6*1) / 10
	assert.InDelta(t, 0.2, tree.ExpectedValue(), 1e-12)
}

func TestExpectedMargin_SumsTreeBaselines(t *testing.T) {
	X, y := separableData()
	e, err := Fit(X, y, 1.0, testConfig())
	require.NoError(t, err)

	want := e.BaseMargin()
	for _, tree := range e.Trees {
		want += tree.ExpectedValue()
	}
	assert.InDelta(t, want, e.ExpectedMargin(), 1e-12)
}
