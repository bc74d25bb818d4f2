package model

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"

	"github.com/haskel/mltrack/internal/dataset"
)

// RandomForestClassifier is a bagging ensemble of gini classification
// trees with per-split feature subsampling and majority voting.
type RandomForestClassifier struct {
	state forestState
}

type forestState struct {
	Classes int         `json:"classes"`
	Trees   []*treeNode `json:"trees"`
}

// Kind returns the model kind.
func (m *RandomForestClassifier) Kind() Kind {
	return KindRandomForestClassifier
}

func (m *RandomForestClassifier) fit(cfg Config, train *dataset.Dataset) error {
	params := withDefaults(cfg.Kind, cfg.Params)
	n := train.Len()

	k := train.Classes()
	if k < 2 {
		return fmt.Errorf("need at least 2 target classes, got %d", k)
	}
	for _, y := range train.Target {
		if y < 0 || y != math.Trunc(y) || int(y) >= k {
			return fmt.Errorf("target values must be class indexes in [0,%d)", k)
		}
	}
	m.state.Classes = k

	// sqrt(p) features considered per split, at least one.
	mtry := int(math.Sqrt(float64(train.NumFeatures())))
	if mtry < 1 {
		mtry = 1
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	m.state.Trees = make([]*treeNode, 0, params.NEstimators)
	for t := 0; t < params.NEstimators; t++ {
		treeRng := rand.New(rand.NewSource(rng.Int63()))

		// Bootstrap sample with replacement.
		idx := make([]int, n)
		for i := range idx {
			idx[i] = treeRng.Intn(n)
		}
		m.state.Trees = append(m.state.Trees, buildClassificationNode(train, idx, params.MaxDepth, k, mtry, treeRng))
	}
	return nil
}

func buildClassificationNode(d *dataset.Dataset, idx []int, depth, classes, mtry int, rng *rand.Rand) *treeNode {
	counts := classCounts(d, idx, classes)
	node := &treeNode{Value: float64(majorityClass(counts))}
	if depth == 0 || len(idx) < 2 || isPure(counts) {
		return node
	}

	feature, threshold, ok := bestGiniSplit(d, idx, classes, mtry, rng)
	if !ok {
		return node
	}

	left, right := partition(d, idx, feature, threshold)
	if len(left) == 0 || len(right) == 0 {
		return node
	}

	node.Feature = feature
	node.Threshold = threshold
	node.Left = buildClassificationNode(d, left, depth-1, classes, mtry, rng)
	node.Right = buildClassificationNode(d, right, depth-1, classes, mtry, rng)
	return node
}

// bestGiniSplit searches a random subset of mtry features for the split
// minimizing weighted gini impurity of the children.
func bestGiniSplit(d *dataset.Dataset, idx []int, classes, mtry int, rng *rand.Rand) (feature int, threshold float64, ok bool) {
	best := gini(classCounts(d, idx, classes), len(idx))
	for _, f := range rng.Perm(d.NumFeatures())[:mtry] {
		for _, t := range splitCandidates(d, idx, f) {
			left, right := partition(d, idx, f, t)
			if len(left) == 0 || len(right) == 0 {
				continue
			}
			nl, nr := float64(len(left)), float64(len(right))
			weighted := (nl*gini(classCounts(d, left, classes), len(left)) +
				nr*gini(classCounts(d, right, classes), len(right))) / float64(len(idx))
			if weighted < best-1e-12 {
				best = weighted
				feature = f
				threshold = t
				ok = true
			}
		}
	}
	return feature, threshold, ok
}

func classCounts(d *dataset.Dataset, idx []int, classes int) []int {
	counts := make([]int, classes)
	for _, i := range idx {
		counts[int(d.Target[i])]++
	}
	return counts
}

func majorityClass(counts []int) int {
	best := 0
	for c, n := range counts {
		if n > counts[best] {
			best = c
		}
	}
	return best
}

func isPure(counts []int) bool {
	nonZero := 0
	for _, n := range counts {
		if n > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

func gini(counts []int, total int) float64 {
	if total == 0 {
		return 0
	}
	impurity := 1.0
	for _, n := range counts {
		p := float64(n) / float64(total)
		impurity -= p * p
	}
	return impurity
}

// Predict returns the majority-vote class index for one feature row.
func (m *RandomForestClassifier) Predict(row []float64) float64 {
	votes := make([]int, m.state.Classes)
	for _, root := range m.state.Trees {
		node := root
		for node.Left != nil {
			if row[node.Feature] <= node.Threshold {
				node = node.Left
			} else {
				node = node.Right
			}
		}
		votes[int(node.Value)]++
	}
	return float64(majorityClass(votes))
}

// PredictBatch returns predicted class indexes for a batch of rows.
func (m *RandomForestClassifier) PredictBatch(rows [][]float64) []float64 {
	out := make([]float64, len(rows))
	for i, row := range rows {
		out[i] = m.Predict(row)
	}
	return out
}

// Save serializes the fitted ensemble.
func (m *RandomForestClassifier) Save(w io.Writer) error {
	return json.NewEncoder(w).Encode(m.state)
}

// Load deserializes a fitted ensemble.
func (m *RandomForestClassifier) Load(r io.Reader) error {
	return json.NewDecoder(r).Decode(&m.state)
}
