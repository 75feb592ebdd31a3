// internal/ml/training/metrics.go
package training

import "sort"

// EvalMetrics are the diagnostic classification metrics reported after a
// training run. They are for human review only; nothing on the serving path
// consumes them.
type EvalMetrics struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	ROCAUC    float64 `json:"roc_auc"`
}

// Evaluate computes classification metrics at a 0.5 decision threshold plus
// threshold-free ROC-AUC.
func Evaluate(probs []float64, labels []int) EvalMetrics {
	var tp, fp, tn, fn float64
	for i, p := range probs {
		predicted := 0
		if p > 0.5 {
			predicted = 1
		}
		switch {
		case predicted == 1 && labels[i] == 1:
			tp++
		case predicted == 1 && labels[i] == 0:
			fp++
		case predicted == 0 && labels[i] == 0:
			tn++
		default:
			fn++
		}
	}

	m := EvalMetrics{}
	total := tp + fp + tn + fn
	if total > 0 {
		m.Accuracy = (tp + tn) / total
	}
	if tp+fp > 0 {
		m.Precision = tp / (tp + fp)
	}
	if tp+fn > 0 {
		m.Recall = tp / (tp + fn)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	m.ROCAUC = rocAUC(probs, labels)
	return m
}

// rocAUC computes the area under the ROC curve via the rank-sum identity,
// with average ranks for tied scores.
func rocAUC(probs []float64, labels []int) float64 {
	n := len(probs)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return probs[idx[a]] < probs[idx[b]] })

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j < n-1 && probs[idx[j+1]] == probs[idx[i]] {
			j++
		}
		avgRank := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avgRank
		}
		i = j + 1
	}

	var posRankSum, pos, neg float64
	for i, l := range labels {
		if l == 1 {
			posRankSum += ranks[i]
			pos++
		} else {
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		return 0
	}
	return (posRankSum - pos*(pos+1)/2) / (pos * neg)
}
