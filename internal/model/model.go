package model

import (
	"fmt"
	"io"

	"github.com/haskel/mltrack/internal/dataset"
)

// Kind represents the training algorithm.
type Kind string

const (
	KindLinearRegressor        Kind = "linear-regressor"
	KindShallowDecisionTree    Kind = "shallow-decision-tree"
	KindLogisticClassifier     Kind = "logistic-classifier"
	KindRandomForestClassifier Kind = "random-forest-classifier"
)

// IsValid checks if the kind is valid.
func (k Kind) IsValid() bool {
	switch k {
	case KindLinearRegressor, KindShallowDecisionTree, KindLogisticClassifier, KindRandomForestClassifier:
		return true
	}
	return false
}

// String returns string representation.
func (k Kind) String() string {
	return string(k)
}

// Task returns the task kind this algorithm fits.
func (k Kind) Task() dataset.TaskKind {
	switch k {
	case KindLinearRegressor, KindShallowDecisionTree:
		return dataset.TaskRegression
	default:
		return dataset.TaskClassification
	}
}

// Params holds algorithm hyperparameters. Zero values fall back to
// per-kind defaults at fit time.
type Params struct {
	MaxDepth     int     `json:"max_depth,omitempty"`
	NEstimators  int     `json:"n_estimators,omitempty"`
	MaxIter      int     `json:"max_iter,omitempty"`
	LearningRate float64 `json:"learning_rate,omitempty"`
}

// Config describes one model to train. Immutable once constructed.
type Config struct {
	Kind   Kind
	Name   string
	Params Params
	Seed   int64
}

// ParamMap returns the effective hyperparameters as tracker-loggable
// key/value pairs.
func (c Config) ParamMap() map[string]string {
	p := withDefaults(c.Kind, c.Params)
	out := map[string]string{
		"algorithm": c.Kind.String(),
		"seed":      fmt.Sprintf("%d", c.Seed),
	}
	switch c.Kind {
	case KindShallowDecisionTree:
		out["max_depth"] = fmt.Sprintf("%d", p.MaxDepth)
	case KindLogisticClassifier:
		out["max_iter"] = fmt.Sprintf("%d", p.MaxIter)
		out["learning_rate"] = fmt.Sprintf("%g", p.LearningRate)
	case KindRandomForestClassifier:
		out["n_estimators"] = fmt.Sprintf("%d", p.NEstimators)
		out["max_depth"] = fmt.Sprintf("%d", p.MaxDepth)
	}
	return out
}

const (
	defaultTreeDepth    = 3
	defaultForestDepth  = 10
	defaultNEstimators  = 50
	defaultMaxIter      = 100
	defaultLearningRate = 0.1
)

func withDefaults(k Kind, p Params) Params {
	if p.MaxDepth <= 0 {
		if k == KindRandomForestClassifier {
			p.MaxDepth = defaultForestDepth
		} else {
			p.MaxDepth = defaultTreeDepth
		}
	}
	if p.NEstimators <= 0 {
		p.NEstimators = defaultNEstimators
	}
	if p.MaxIter <= 0 {
		p.MaxIter = defaultMaxIter
	}
	if p.LearningRate <= 0 {
		p.LearningRate = defaultLearningRate
	}
	return p
}

// FittedModel is a trained model bound to the feature schema it was
// fitted on. Classifiers return the predicted class index as a float64.
type FittedModel interface {
	Kind() Kind

	// Predict returns the prediction for a single feature row.
	Predict(row []float64) float64

	// PredictBatch returns predictions for a batch of feature rows.
	PredictBatch(rows [][]float64) []float64

	// Save serializes the learned state to a writer.
	Save(w io.Writer) error

	// Load deserializes learned state from a reader, replacing the
	// current state.
	Load(r io.Reader) error
}

// FitError wraps any failure while fitting a model. Fit errors are fatal
// for the affected model: there is nothing to fall back from.
type FitError struct {
	Kind Kind
	Err  error
}

func (e *FitError) Error() string {
	return fmt.Sprintf("failed to fit %s: %v", e.Kind, e.Err)
}

func (e *FitError) Unwrap() error {
	return e.Err
}
