// Package classifier provides crop classifiers that load pre-trained models from disk.
//
// The JSON forest is a RandomForestClassifier (or a single DecisionTreeClassifier) dumped with
// tolist() on its fitted attributes:
//
//	{
//	  "n_features_in_": clf.n_features_in_,
//	  "classes_": clf.classes_.tolist(),
//	  "estimators_": [{
//	    "children_left": t.tree_.children_left.tolist(),
//	    "children_right": t.tree_.children_right.tolist(),
//	    "feature": t.tree_.feature.tolist(),
//	    "threshold": t.tree_.threshold.tolist(),
//	    "value": t.tree_.value.tolist()
//	  } for t in clf.estimators_]
//	}
//
// tree_.value may be exported as is, with shape (nodes, 1, classes), or squeezed to (nodes, classes).
package classifier

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
)

// leaf marks a node without children in the serialized tree arrays.
const leaf = -1

// treeParams mirrors the arrays of a fitted scikit-learn tree (tree_ attribute).
// Nodes are stored in depth-first order, so every child index is greater than its parent's.
type treeParams struct {
	ChildrenLeft  []int       `json:"children_left"`
	ChildrenRight []int       `json:"children_right"`
	Feature       []int       `json:"feature"`
	Threshold     []float64   `json:"threshold"`
	Value         nodeValues  `json:"value"`
}

// nodeValues holds per-node class counts (or fractions).
type nodeValues [][]float64

// UnmarshalJSON accepts both (nodes, classes) and single-output (nodes, 1, classes) arrays.
func (v *nodeValues) UnmarshalJSON(b []byte) error {
	var flat [][]float64
	if err := json.Unmarshal(b, &flat); err == nil {
		*v = flat
		return nil
	}

	var nested [][][]float64
	if err := json.Unmarshal(b, &nested); err != nil {
		return fmt.Errorf("value must be (nodes, classes) or (nodes, 1, classes): %w", err)
	}
	out := make([][]float64, len(nested))
	for i, outputs := range nested {
		if len(outputs) != 1 {
			return fmt.Errorf("node %d has %d outputs, only single-output trees are supported", i, len(outputs))
		}
		out[i] = outputs[0]
	}
	*v = out
	return nil
}

type forestParams struct {
	NFeatures  int          `json:"n_features_in_"`
	Classes    []float64    `json:"classes_"`
	Estimators []treeParams `json:"estimators_"`
}

// Forest is a tree-ensemble classifier. Each tree votes with the class distribution of the leaf
// the sample falls into; the class with the highest mean probability wins.
// A single decision tree is a forest of one.
type Forest struct {
	nFeatures int
	classes   []int
	trees     []treeParams
}

// DecodeForest reads a serialized tree ensemble and validates its structure.
func DecodeForest(r io.Reader) (*Forest, error) {
	var p forestParams
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to decode forest: %w", err)
	}
	if p.NFeatures <= 0 {
		return nil, fmt.Errorf("forest: n_features_in_ must be positive, got %d", p.NFeatures)
	}
	if len(p.Classes) == 0 {
		return nil, fmt.Errorf("forest: classes_ is empty")
	}
	if len(p.Estimators) == 0 {
		return nil, fmt.Errorf("forest: estimators_ is empty")
	}

	classes := make([]int, len(p.Classes))
	for i, c := range p.Classes {
		if !almostInt(c) {
			return nil, fmt.Errorf("forest: class label %g is not an integer", c)
		}
		classes[i] = int(math.Round(c))
	}

	for i, t := range p.Estimators {
		if err := t.validate(p.NFeatures, len(classes)); err != nil {
			return nil, fmt.Errorf("forest: tree %d: %w", i, err)
		}
	}

	return &Forest{
		nFeatures: p.NFeatures,
		classes:   classes,
		trees:     p.Estimators,
	}, nil
}

// NumFeatures returns the number of features the forest was trained on.
func (f *Forest) NumFeatures() int { return f.nFeatures }

// Classes returns the labels the forest can emit.
func (f *Forest) Classes() []int { return append([]int(nil), f.classes...) }

// Predict returns the majority label for one sample.
func (f *Forest) Predict(x []float64) (int, error) {
	if len(x) != f.nFeatures {
		return 0, fmt.Errorf("forest expects %d features, got %d", f.nFeatures, len(x))
	}

	proba := make([]float64, len(f.classes))
	for _, t := range f.trees {
		dist := t.Value[t.apply(x)]
		total := 0.0
		for _, v := range dist {
			total += v
		}
		if total == 0 {
			continue
		}
		for k, v := range dist {
			proba[k] += v / total
		}
	}
	return f.classes[argmax(proba)], nil
}

// apply returns the index of the leaf x falls into.
func (t *treeParams) apply(x []float64) int {
	node := 0
	for t.ChildrenLeft[node] != leaf {
		if x[t.Feature[node]] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	return node
}

func (t *treeParams) validate(nFeatures, nClasses int) error {
	n := len(t.ChildrenLeft)
	if n == 0 {
		return fmt.Errorf("no nodes")
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return fmt.Errorf("node arrays have different lengths")
	}
	for i := 0; i < n; i++ {
		l, r := t.ChildrenLeft[i], t.ChildrenRight[i]
		if (l == leaf) != (r == leaf) {
			return fmt.Errorf("node %d has a single child", i)
		}
		if l != leaf {
			if l <= i || l >= n || r <= i || r >= n {
				return fmt.Errorf("node %d has out-of-order children %d, %d", i, l, r)
			}
			if t.Feature[i] < 0 || t.Feature[i] >= nFeatures {
				return fmt.Errorf("node %d splits on feature %d", i, t.Feature[i])
			}
		}
		if len(t.Value[i]) != nClasses {
			return fmt.Errorf("node %d has %d class counts, want %d", i, len(t.Value[i]), nClasses)
		}
	}
	return nil
}

// argmax returns the first index of the largest value.
func argmax(v []float64) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}

func almostInt(v float64) bool {
	return math.Abs(v-math.Round(v)) < 1e-9
}
