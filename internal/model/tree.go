package model

import (
	"encoding/json"
	"io"
	"sort"

	"github.com/haskel/mltrack/internal/dataset"
)

// DecisionTreeRegressor is a depth-capped CART regression tree using
// variance-reduction splits.
type DecisionTreeRegressor struct {
	state treeState
}

type treeState struct {
	MaxDepth int       `json:"max_depth"`
	Root     *treeNode `json:"root"`
}

// treeNode is one node of a fitted tree. Leaves have Left == nil.
type treeNode struct {
	Feature   int       `json:"feature,omitempty"`
	Threshold float64   `json:"threshold,omitempty"`
	Value     float64   `json:"value"`
	Left      *treeNode `json:"left,omitempty"`
	Right     *treeNode `json:"right,omitempty"`
}

// Kind returns the model kind.
func (m *DecisionTreeRegressor) Kind() Kind {
	return KindShallowDecisionTree
}

func (m *DecisionTreeRegressor) fit(cfg Config, train *dataset.Dataset) error {
	p := withDefaults(cfg.Kind, cfg.Params)
	m.state.MaxDepth = p.MaxDepth

	idx := make([]int, train.Len())
	for i := range idx {
		idx[i] = i
	}
	m.state.Root = buildRegressionNode(train, idx, p.MaxDepth)
	return nil
}

func buildRegressionNode(d *dataset.Dataset, idx []int, depth int) *treeNode {
	node := &treeNode{Value: meanTarget(d, idx)}
	if depth == 0 || len(idx) < 2 {
		return node
	}

	feature, threshold, ok := bestVarianceSplit(d, idx)
	if !ok {
		return node
	}

	left, right := partition(d, idx, feature, threshold)
	if len(left) == 0 || len(right) == 0 {
		return node
	}

	node.Feature = feature
	node.Threshold = threshold
	node.Left = buildRegressionNode(d, left, depth-1)
	node.Right = buildRegressionNode(d, right, depth-1)
	return node
}

// bestVarianceSplit finds the (feature, threshold) pair minimizing the
// summed squared error of the two children. Returns ok=false when no
// split improves on the parent.
func bestVarianceSplit(d *dataset.Dataset, idx []int) (feature int, threshold float64, ok bool) {
	parentSSE := sseTarget(d, idx)
	best := parentSSE
	for f := 0; f < d.NumFeatures(); f++ {
		for _, t := range splitCandidates(d, idx, f) {
			left, right := partition(d, idx, f, t)
			if len(left) == 0 || len(right) == 0 {
				continue
			}
			sse := sseTarget(d, left) + sseTarget(d, right)
			if sse < best-1e-12 {
				best = sse
				feature = f
				threshold = t
				ok = true
			}
		}
	}
	return feature, threshold, ok
}

// splitCandidates returns midpoints between consecutive distinct values
// of one feature over the given rows.
func splitCandidates(d *dataset.Dataset, idx []int, feature int) []float64 {
	vals := make([]float64, 0, len(idx))
	for _, i := range idx {
		vals = append(vals, d.Rows[i][feature])
	}
	sort.Float64s(vals)

	out := make([]float64, 0, len(vals))
	for i := 1; i < len(vals); i++ {
		if vals[i] > vals[i-1] {
			out = append(out, (vals[i]+vals[i-1])/2)
		}
	}
	return out
}

func partition(d *dataset.Dataset, idx []int, feature int, threshold float64) (left, right []int) {
	for _, i := range idx {
		if d.Rows[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return left, right
}

func meanTarget(d *dataset.Dataset, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	var sum float64
	for _, i := range idx {
		sum += d.Target[i]
	}
	return sum / float64(len(idx))
}

func sseTarget(d *dataset.Dataset, idx []int) float64 {
	mean := meanTarget(d, idx)
	var sse float64
	for _, i := range idx {
		diff := d.Target[i] - mean
		sse += diff * diff
	}
	return sse
}

// Predict walks the tree for one feature row.
func (m *DecisionTreeRegressor) Predict(row []float64) float64 {
	node := m.state.Root
	for node.Left != nil {
		if row[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Value
}

// PredictBatch returns predictions for a batch of feature rows.
func (m *DecisionTreeRegressor) PredictBatch(rows [][]float64) []float64 {
	out := make([]float64, len(rows))
	for i, row := range rows {
		out[i] = m.Predict(row)
	}
	return out
}

// Save serializes the fitted tree.
func (m *DecisionTreeRegressor) Save(w io.Writer) error {
	return json.NewEncoder(w).Encode(m.state)
}

// Load deserializes a fitted tree.
func (m *DecisionTreeRegressor) Load(r io.Reader) error {
	return json.NewDecoder(r).Decode(&m.state)
}
