package model

import (
	"fmt"
	"io"

	"github.com/haskel/mltrack/internal/dataset"
)

// Fit trains one model on the training split. Deterministic for a fixed
// (config, split): all internal randomness is seeded from cfg.Seed.
func Fit(cfg Config, train *dataset.Dataset) (FittedModel, error) {
	if !cfg.Kind.IsValid() {
		return nil, &FitError{Kind: cfg.Kind, Err: fmt.Errorf("unrecognized model kind %q", cfg.Kind)}
	}
	if train == nil || train.Len() == 0 {
		return nil, &FitError{Kind: cfg.Kind, Err: fmt.Errorf("empty training split")}
	}
	if train.Task != cfg.Kind.Task() {
		return nil, &FitError{Kind: cfg.Kind, Err: fmt.Errorf("%s requires a %s dataset, got %s", cfg.Kind, cfg.Kind.Task(), train.Task)}
	}

	m := newModel(cfg.Kind)
	if err := m.fit(cfg, train); err != nil {
		return nil, &FitError{Kind: cfg.Kind, Err: err}
	}
	return m, nil
}

// Load deserializes a fitted model of the given kind.
func Load(kind Kind, r io.Reader) (FittedModel, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("unrecognized model kind %q", kind)
	}
	m := newModel(kind)
	if err := m.Load(r); err != nil {
		return nil, fmt.Errorf("failed to load %s model: %w", kind, err)
	}
	return m, nil
}

// fitter is the internal training entry point each model implements.
type fitter interface {
	FittedModel
	fit(cfg Config, train *dataset.Dataset) error
}

func newModel(kind Kind) fitter {
	switch kind {
	case KindLinearRegressor:
		return &LinearRegressor{}
	case KindShallowDecisionTree:
		return &DecisionTreeRegressor{}
	case KindLogisticClassifier:
		return &LogisticClassifier{}
	case KindRandomForestClassifier:
		return &RandomForestClassifier{}
	}
	return nil
}
