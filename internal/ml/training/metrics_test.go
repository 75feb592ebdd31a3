// internal/ml/training/metrics_test.go
package training

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate_PerfectClassifier(t *testing.T) {
	probs := []float64{0.9, 0.8, 0.1, 0.2}
	labels := []int{1, 1, 0, 0}

	m := Evaluate(probs, labels)

	assert.Equal(t, 1.0, m.Accuracy)
	assert.Equal(t, 1.0, m.Precision)
	assert.Equal(t, 1.0, m.Recall)
	assert.Equal(t, 1.0, m.F1)
	assert.Equal(t, 1.0, m.ROCAUC)
}

func TestEvaluate_MixedPredictions(t *testing.T) {
	// tp=1 (0.9/1), fp=1 (0.8/0), tn=1 (0.1/0), fn=1 (0.2/1)
	probs := []float64{0.9, 0.8, 0.1, 0.2}
	labels := []int{1, 0, 0, 1}

	m := Evaluate(probs, labels)

	assert.Equal(t, 0.5, m.Accuracy)
	assert.Equal(t, 0.5, m.Precision)
	assert.Equal(t, 0.5, m.Recall)
	assert.Equal(t, 0.5, m.F1)
	// positives ranked 4 and 2 of 4: AUC = (6 - 3) / (2*2)
	assert.InDelta(t, 0.75, m.ROCAUC, 1e-9)
}

func TestEvaluate_ThresholdIsExclusive(t *testing.T) {
	// exactly 0.5 is predicted negative
	m := Evaluate([]float64{0.5}, []int{1})
	assert.Equal(t, 0.0, m.Recall)
}

func TestROCAUC_TiedScoresAverageRanks(t *testing.T) {
	probs := []float64{0.5, 0.5, 0.5, 0.5}
	labels := []int{1, 0, 1, 0}

	m := Evaluate(probs, labels)
	assert.InDelta(t, 0.5, m.ROCAUC, 1e-9, "uninformative scores must give AUC 0.5")
}

func TestEvaluate_NoPositives(t *testing.T) {
	m := Evaluate([]float64{0.1, 0.2}, []int{0, 0})
	assert.Equal(t, 1.0, m.Accuracy)
	assert.Equal(t, 0.0, m.ROCAUC)
}
