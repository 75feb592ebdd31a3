// internal/ml/shap/shap.go

// Package shap computes exact per-feature attributions for boosted-tree
// predictions using the polynomial-time TreeSHAP recursion (Lundberg et al.).
// The decomposition is additive: the sum of all contributions plus the
// model's expected margin reconstructs the raw output for the instance.
package shap

import (
	"fmt"
	"sort"

	"churnshield/internal/ml/gbdt"
	"churnshield/internal/models"
)

// Attribution holds the full decomposition of a single prediction.
type Attribution struct {
	// Contributions has one signed value per encoded column, in schema order.
	Contributions []float64
	// BaseValue is the expected raw model output over the training
	// distribution. BaseValue + sum(Contributions) equals the margin.
	BaseValue float64
}

// Explain decomposes the ensemble's raw output for one feature vector into
// per-column contributions.
func Explain(x []float64, ens *gbdt.Ensemble) (*Attribution, error) {
	if len(x) != ens.NumFeatures {
		return nil, fmt.Errorf("feature vector length %d does not match model width %d", len(x), ens.NumFeatures)
	}

	phi := make([]float64, len(x))
	for _, tree := range ens.Trees {
		treeShap(tree, x, phi)
	}

	return &Attribution{
		Contributions: phi,
		BaseValue:     ens.ExpectedMargin(),
	}, nil
}

// Rank converts a full attribution into the human-facing explanation:
// contributions sorted by descending absolute magnitude, ties broken by
// schema column order (stable sort), truncated to topK.
func Rank(attr *Attribution, schema []string, topK int) ([]models.Contribution, error) {
	if len(attr.Contributions) != len(schema) {
		return nil, fmt.Errorf("attribution length %d does not match schema length %d", len(attr.Contributions), len(schema))
	}

	ranked := make([]models.Contribution, len(schema))
	for i, name := range schema {
		ranked[i] = models.Contribution{Feature: name, Impact: attr.Contributions[i]}
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		return abs(ranked[a].Impact) > abs(ranked[b].Impact)
	})

	if topK > len(ranked) {
		topK = len(ranked)
	}
	return ranked[:topK], nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// pathElem is one entry of the unique decision path maintained by the
// TreeSHAP recursion.
type pathElem struct {
	featureIndex int
	zeroFraction float64
	oneFraction  float64
	pweight      float64
}

func treeShap(t *gbdt.Tree, x []float64, phi []float64) {
	recurse(t.Root, x, phi, nil, 1, 1, -1)
}

func recurse(node *gbdt.Node, x []float64, phi []float64, parent []pathElem, pz, po float64, pi int) {
	path := extendPath(parent, pz, po, pi)

	if node.Leaf {
		for i := 1; i < len(path); i++ {
			w := unwoundSum(path, i)
			phi[path[i].featureIndex] += w * (path[i].oneFraction - path[i].zeroFraction) * node.Value
		}
		return
	}

	hot, cold := node.Left, node.Right
	if x[node.Feature] >= node.Threshold {
		hot, cold = node.Right, node.Left
	}

	// if this feature was already split on higher up the path, undo its
	// previous extension and carry its fractions forward
	iz, io := 1.0, 1.0
	for i := 1; i < len(path); i++ {
		if path[i].featureIndex == node.Feature {
			iz, io = path[i].zeroFraction, path[i].oneFraction
			path = unwindPath(path, i)
			break
		}
	}

	recurse(hot, x, phi, path, iz*hot.Cover/node.Cover, io, node.Feature)
	recurse(cold, x, phi, path, iz*cold.Cover/node.Cover, 0, node.Feature)
}

// extendPath appends a new element and updates the permutation weights for
// every subset size. Returns a fresh slice; the parent path is not mutated.
func extendPath(parent []pathElem, pz, po float64, pi int) []pathElem {
	l := len(parent)
	path := make([]pathElem, l+1)
	copy(path, parent)

	path[l] = pathElem{featureIndex: pi, zeroFraction: pz, oneFraction: po}
	if l == 0 {
		path[l].pweight = 1
	}

	for i := l - 1; i >= 0; i-- {
		path[i+1].pweight += po * path[i].pweight * float64(i+1) / float64(l+1)
		path[i].pweight = pz * path[i].pweight * float64(l-i) / float64(l+1)
	}

	return path
}

// unwindPath removes element i from the path, reversing the weight updates
// extendPath applied for it.
func unwindPath(path []pathElem, i int) []pathElem {
	l := len(path) - 1
	oz := path[i].zeroFraction
	oo := path[i].oneFraction

	n := path[l].pweight
	for j := l - 1; j >= 0; j-- {
		if oo != 0 {
			tmp := path[j].pweight
			path[j].pweight = n * float64(l+1) / (float64(j+1) * oo)
			n = tmp - path[j].pweight*oz*float64(l-j)/float64(l+1)
		} else {
			path[j].pweight = path[j].pweight * float64(l+1) / (oz * float64(l-j))
		}
	}

	for j := i; j < l; j++ {
		path[j].featureIndex = path[j+1].featureIndex
		path[j].zeroFraction = path[j+1].zeroFraction
		path[j].oneFraction = path[j+1].oneFraction
	}

	return path[:l]
}

// unwoundSum computes the total permutation weight the path would have if
// element i were removed, without materializing the removal.
func unwoundSum(path []pathElem, i int) float64 {
	l := len(path) - 1
	oz := path[i].zeroFraction
	oo := path[i].oneFraction
	var total float64

	if oo != 0 {
		n := path[l].pweight
		for j := l - 1; j >= 0; j-- {
			tmp := n / (float64(j+1) * oo)
			total += tmp
			n = path[j].pweight - tmp*oz*float64(l-j)
		}
	} else {
		for j := l - 1; j >= 0; j-- {
			total += path[j].pweight / (oz * float64(l-j))
		}
	}

	return total * float64(l+1)
}
