package model

import (
	"errors"
	"testing"

	"github.com/haskel/mltrack/internal/dataset"
)

func TestFit_UnrecognizedKind(t *testing.T) {
	d := dataset.Iris()

	_, err := Fit(Config{Kind: "svm", Name: "x"}, d)
	var fitErr *FitError
	if !errors.As(err, &fitErr) {
		t.Fatalf("expected FitError, got %v", err)
	}
}

func TestFit_EmptyTrainingSplit(t *testing.T) {
	d := &dataset.Dataset{
		Features:   []string{"x"},
		TargetName: "y",
		Task:       dataset.TaskRegression,
	}

	_, err := Fit(Config{Kind: KindLinearRegressor, Name: "lr"}, d)
	var fitErr *FitError
	if !errors.As(err, &fitErr) {
		t.Fatalf("expected FitError for empty split, got %v", err)
	}
}

func TestFit_TaskMismatch(t *testing.T) {
	// Regressor on a classification dataset.
	_, err := Fit(Config{Kind: KindLinearRegressor, Name: "lr"}, dataset.Iris())
	var fitErr *FitError
	if !errors.As(err, &fitErr) {
		t.Fatalf("expected FitError for task mismatch, got %v", err)
	}
}

func TestKind_IsValid(t *testing.T) {
	valid := []Kind{KindLinearRegressor, KindShallowDecisionTree, KindLogisticClassifier, KindRandomForestClassifier}
	for _, k := range valid {
		if !k.IsValid() {
			t.Errorf("expected %q to be valid", k)
		}
	}
	if Kind("gradient-boost").IsValid() {
		t.Error("expected unknown kind to be invalid")
	}
}

func TestKind_Task(t *testing.T) {
	if KindLinearRegressor.Task() != dataset.TaskRegression {
		t.Error("expected linear-regressor to be a regression algorithm")
	}
	if KindRandomForestClassifier.Task() != dataset.TaskClassification {
		t.Error("expected random-forest-classifier to be a classification algorithm")
	}
}

func TestConfig_ParamMap(t *testing.T) {
	cfg := Config{Kind: KindRandomForestClassifier, Name: "rf", Params: Params{NEstimators: 50}, Seed: 42}

	params := cfg.ParamMap()
	if params["algorithm"] != "random-forest-classifier" {
		t.Errorf("unexpected algorithm param %q", params["algorithm"])
	}
	if params["n_estimators"] != "50" {
		t.Errorf("unexpected n_estimators param %q", params["n_estimators"])
	}
	if params["seed"] != "42" {
		t.Errorf("unexpected seed param %q", params["seed"])
	}
}
