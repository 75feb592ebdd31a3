// internal/ml/gbdt/tree.go
package gbdt

import "sort"

// Node is one node of a regression tree. Cover is the sum of training
// instance weights that reached the node; the attribution engine uses it to
// weight decision paths, so it is persisted with the model.
type Node struct {
	Leaf      bool    `json:"leaf"`
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Value     float64 `json:"value"`
	Cover     float64 `json:"cover"`
	Left      *Node   `json:"left,omitempty"`
	Right     *Node   `json:"right,omitempty"`
}

// Tree is a single regression tree over margin space.
type Tree struct {
	Root *Node `json:"root"`
}

// Predict returns the tree's output for one feature vector. Instances with
// x[feature] < threshold go left.
func (t *Tree) Predict(x []float64) float64 {
	node := t.Root
	for !node.Leaf {
		if x[node.Feature] < node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Value
}

// ExpectedValue returns the cover-weighted mean output of the tree, i.e. the
// model's baseline contribution over the training distribution.
func (t *Tree) ExpectedValue() float64 {
	return nodeExpectedValue(t.Root)
}

func nodeExpectedValue(n *Node) float64 {
	if n.Leaf {
		return n.Value
	}
	return (n.Left.Cover*nodeExpectedValue(n.Left) + n.Right.Cover*nodeExpectedValue(n.Right)) / n.Cover
}

// treeBuilder holds the per-round gradient statistics while growing a tree.
type treeBuilder struct {
	X       [][]float64
	grad    []float64
	hess    []float64
	weights []float64
	cfg     Config
}

func (b *treeBuilder) build(indices []int, depth int) *Node {
	var sumG, sumH, cover float64
	for _, i := range indices {
		sumG += b.grad[i]
		sumH += b.hess[i]
		cover += b.weights[i]
	}

	leaf := func() *Node {
		return &Node{
			Leaf:  true,
			Value: -sumG / (sumH + b.cfg.Lambda) * b.cfg.LearningRate,
			Cover: cover,
		}
	}

	if depth >= b.cfg.MaxDepth || len(indices) < 2 {
		return leaf()
	}

	split, ok := b.bestSplit(indices, sumG, sumH)
	if !ok {
		return leaf()
	}

	var left, right []int
	for _, i := range indices {
		if b.X[i][split.feature] < split.threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &Node{
		Feature:   split.feature,
		Threshold: split.threshold,
		Cover:     cover,
		Left:      b.build(left, depth+1),
		Right:     b.build(right, depth+1),
	}
}

type splitCandidate struct {
	feature   int
	threshold float64
	gain      float64
}

// bestSplit performs an exact greedy scan over every feature. Features are
// visited in schema order and improvements require strictly larger gain, so
// the grown tree is deterministic for identical inputs.
func (b *treeBuilder) bestSplit(indices []int, sumG, sumH float64) (splitCandidate, bool) {
	best := splitCandidate{gain: b.cfg.MinSplitGain}
	found := false
	parentScore := sumG * sumG / (sumH + b.cfg.Lambda)

	numFeatures := len(b.X[indices[0]])
	order := make([]int, len(indices))

	for f := 0; f < numFeatures; f++ {
		copy(order, indices)
		sortByFeature(order, b.X, f)

		var gl, hl float64
		for i := 0; i < len(order)-1; i++ {
			gl += b.grad[order[i]]
			hl += b.hess[order[i]]

			v, next := b.X[order[i]][f], b.X[order[i+1]][f]
			if v == next {
				continue
			}

			gr := sumG - gl
			hr := sumH - hl
			if hl < b.cfg.MinChildWeight || hr < b.cfg.MinChildWeight {
				continue
			}

			gain := 0.5 * (gl*gl/(hl+b.cfg.Lambda) + gr*gr/(hr+b.cfg.Lambda) - parentScore)
			if gain > best.gain {
				best = splitCandidate{feature: f, threshold: (v + next) / 2, gain: gain}
				found = true
			}
		}
	}

	return best, found
}

// sortByFeature orders indices by (feature value, original index) so tie
// handling never depends on input permutation.
func sortByFeature(indices []int, X [][]float64, f int) {
	sort.Slice(indices, func(a, c int) bool {
		if X[indices[a]][f] != X[indices[c]][f] {
			return X[indices[a]][f] < X[indices[c]][f]
		}
		return indices[a] < indices[c]
	})
}
