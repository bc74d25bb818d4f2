package model

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"

	"github.com/haskel/mltrack/internal/dataset"
)

// LogisticClassifier is a multinomial (softmax) logistic regression
// trained by batch gradient descent on standardized features.
type LogisticClassifier struct {
	state logisticState
}

type logisticState struct {
	Classes int         `json:"classes"`
	Means   []float64   `json:"means"`
	Stds    []float64   `json:"stds"`
	Weights [][]float64 `json:"weights"` // one weight vector per class
	Bias    []float64   `json:"bias"`
}

// Kind returns the model kind.
func (m *LogisticClassifier) Kind() Kind {
	return KindLogisticClassifier
}

func (m *LogisticClassifier) fit(cfg Config, train *dataset.Dataset) error {
	params := withDefaults(cfg.Kind, cfg.Params)
	n := train.Len()
	p := train.NumFeatures()

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
	m.state.Means, m.state.Stds = featureStats(train)

	// Standardized copy of the training rows.
	x := make([][]float64, n)
	for i, row := range train.Rows {
		x[i] = m.standardize(row)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	m.state.Weights = make([][]float64, k)
	m.state.Bias = make([]float64, k)
	for c := 0; c < k; c++ {
		w := make([]float64, p)
		for j := range w {
			w[j] = rng.NormFloat64() * 0.01
		}
		m.state.Weights[c] = w
	}

	probs := make([]float64, k)
	gradW := make([][]float64, k)
	gradB := make([]float64, k)
	for c := range gradW {
		gradW[c] = make([]float64, p)
	}

	for iter := 0; iter < params.MaxIter; iter++ {
		for c := 0; c < k; c++ {
			for j := 0; j < p; j++ {
				gradW[c][j] = 0
			}
			gradB[c] = 0
		}

		for i, row := range x {
			m.softmax(row, probs)
			for c := 0; c < k; c++ {
				diff := probs[c]
				if int(train.Target[i]) == c {
					diff -= 1
				}
				floats.AddScaled(gradW[c], diff, row)
				gradB[c] += diff
			}
		}

		scale := params.LearningRate / float64(n)
		for c := 0; c < k; c++ {
			floats.AddScaled(m.state.Weights[c], -scale, gradW[c])
			m.state.Bias[c] -= scale * gradB[c]
		}
	}
	return nil
}

func featureStats(d *dataset.Dataset) (means, stds []float64) {
	p := d.NumFeatures()
	means = make([]float64, p)
	stds = make([]float64, p)
	n := float64(d.Len())

	for _, row := range d.Rows {
		floats.Add(means, row)
	}
	floats.Scale(1/n, means)

	for _, row := range d.Rows {
		for j, v := range row {
			diff := v - means[j]
			stds[j] += diff * diff
		}
	}
	for j := range stds {
		stds[j] = math.Sqrt(stds[j] / n)
		if stds[j] < 1e-12 {
			stds[j] = 1
		}
	}
	return means, stds
}

func (m *LogisticClassifier) standardize(row []float64) []float64 {
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - m.state.Means[j]) / m.state.Stds[j]
	}
	return out
}

// softmax fills probs with class probabilities for a standardized row.
func (m *LogisticClassifier) softmax(row []float64, probs []float64) {
	maxScore := math.Inf(-1)
	for c := 0; c < m.state.Classes; c++ {
		probs[c] = m.state.Bias[c] + floats.Dot(m.state.Weights[c], row)
		if probs[c] > maxScore {
			maxScore = probs[c]
		}
	}
	var sum float64
	for c := range probs {
		probs[c] = math.Exp(probs[c] - maxScore)
		sum += probs[c]
	}
	floats.Scale(1/sum, probs)
}

// Predict returns the most probable class index for one feature row.
func (m *LogisticClassifier) Predict(row []float64) float64 {
	probs := make([]float64, m.state.Classes)
	m.softmax(m.standardize(row), probs)
	return float64(floats.MaxIdx(probs))
}

// PredictBatch returns predicted class indexes for a batch of rows.
func (m *LogisticClassifier) PredictBatch(rows [][]float64) []float64 {
	out := make([]float64, len(rows))
	for i, row := range rows {
		out[i] = m.Predict(row)
	}
	return out
}

// Save serializes the learned state.
func (m *LogisticClassifier) Save(w io.Writer) error {
	return json.NewEncoder(w).Encode(m.state)
}

// Load deserializes learned state.
func (m *LogisticClassifier) Load(r io.Reader) error {
	return json.NewDecoder(r).Decode(&m.state)
}
