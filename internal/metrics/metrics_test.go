package metrics

import (
	"errors"
	"io"
	"math"
	"testing"

	"github.com/haskel/mltrack/internal/dataset"
	"github.com/haskel/mltrack/internal/model"
)

// constModel predicts a fixed value for every row.
type constModel struct {
	value float64
}

func (m constModel) Kind() model.Kind              { return model.KindLinearRegressor }
func (m constModel) Predict(row []float64) float64 { return m.value }
func (m constModel) PredictBatch(rows [][]float64) []float64 {
	out := make([]float64, len(rows))
	for i := range out {
		out[i] = m.value
	}
	return out
}
func (m constModel) Save(w io.Writer) error { return nil }
func (m constModel) Load(r io.Reader) error { return nil }

// echoModel predicts its single feature, used for exact metric checks.
type echoModel struct{}

func (echoModel) Kind() model.Kind              { return model.KindLinearRegressor }
func (echoModel) Predict(row []float64) float64 { return row[0] }
func (echoModel) PredictBatch(rows [][]float64) []float64 {
	out := make([]float64, len(rows))
	for i, row := range rows {
		out[i] = row[0]
	}
	return out
}
func (echoModel) Save(w io.Writer) error { return nil }
func (echoModel) Load(r io.Reader) error { return nil }

func evalSplit(targets []float64) *dataset.Dataset {
	d := &dataset.Dataset{
		Features:   []string{"x"},
		TargetName: "y",
		Task:       dataset.TaskRegression,
	}
	for _, y := range targets {
		d.Rows = append(d.Rows, []float64{0})
		d.Target = append(d.Target, y)
	}
	return d
}

func TestEvaluate_MeanPredictorOnConstantTargets(t *testing.T) {
	// A model predicting the training-set mean, evaluated on a split
	// whose targets all equal that mean: MSE = 0 and R2 = 1.
	rec, err := Evaluate(constModel{value: 4.2}, evalSplit([]float64{4.2, 4.2, 4.2}), dataset.TaskRegression)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec["mse"] != 0 {
		t.Errorf("expected mse 0, got %g", rec["mse"])
	}
	if rec["r2_score"] != 1 {
		t.Errorf("expected r2_score 1, got %g", rec["r2_score"])
	}
}

func TestEvaluate_RegressionKnownValues(t *testing.T) {
	// Predictions [1 2 3] against targets [2 2 2]:
	// mse = (1+0+1)/3, tss = 0 -> constant truth missed, r2 = 0.
	d := &dataset.Dataset{
		Features:   []string{"x"},
		TargetName: "y",
		Task:       dataset.TaskRegression,
		Rows:       [][]float64{{1}, {2}, {3}},
		Target:     []float64{2, 2, 2},
	}

	rec, err := Evaluate(echoModel{}, d, dataset.TaskRegression)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := 2.0 / 3.0; math.Abs(rec["mse"]-want) > 1e-12 {
		t.Errorf("expected mse %g, got %g", want, rec["mse"])
	}
	if rec["r2_score"] != 0 {
		t.Errorf("expected r2_score 0, got %g", rec["r2_score"])
	}
}

func TestEvaluate_RegressionR2(t *testing.T) {
	// Perfect predictions give r2 = 1.
	d := &dataset.Dataset{
		Features:   []string{"x"},
		TargetName: "y",
		Task:       dataset.TaskRegression,
		Rows:       [][]float64{{1}, {2}, {3}, {4}},
		Target:     []float64{1, 2, 3, 4},
	}

	rec, err := Evaluate(echoModel{}, d, dataset.TaskRegression)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec["mse"] != 0 || rec["r2_score"] != 1 {
		t.Errorf("expected perfect fit, got mse=%g r2=%g", rec["mse"], rec["r2_score"])
	}
}

func TestEvaluate_ClassificationMetrics(t *testing.T) {
	// Truth:       0 0 1 1 2
	// Predictions: 0 1 1 1 2 (echo of the feature)
	d := &dataset.Dataset{
		Features:   []string{"x"},
		TargetName: "target",
		Task:       dataset.TaskClassification,
		Rows:       [][]float64{{0}, {1}, {1}, {1}, {2}},
		Target:     []float64{0, 0, 1, 1, 2},
	}

	rec, err := Evaluate(echoModel{}, d, dataset.TaskClassification)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if want := 0.8; math.Abs(rec["accuracy"]-want) > 1e-12 {
		t.Errorf("expected accuracy %g, got %g", want, rec["accuracy"])
	}

	// Per-class F1: class0 2/3 (p=1, r=0.5), class1 0.8 (p=2/3, r=1),
	// class2 1. Weighted by supports 2,2,1 over 5 rows.
	want := (2.0/3.0)*(2.0/5.0) + 0.8*(2.0/5.0) + 1.0*(1.0/5.0)
	if math.Abs(rec["f1_score"]-want) > 1e-12 {
		t.Errorf("expected f1_score %g, got %g", want, rec["f1_score"])
	}
}

func TestEvaluate_PerfectClassifier(t *testing.T) {
	d := &dataset.Dataset{
		Features:   []string{"x"},
		TargetName: "target",
		Task:       dataset.TaskClassification,
		Rows:       [][]float64{{0}, {1}, {2}},
		Target:     []float64{0, 1, 2},
	}

	rec, err := Evaluate(echoModel{}, d, dataset.TaskClassification)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec["accuracy"] != 1 || rec["f1_score"] != 1 {
		t.Errorf("expected perfect scores, got accuracy=%g f1=%g", rec["accuracy"], rec["f1_score"])
	}
}

func TestEvaluate_EmptySplit(t *testing.T) {
	d := &dataset.Dataset{
		Features:   []string{"x"},
		TargetName: "y",
		Task:       dataset.TaskRegression,
	}

	_, err := Evaluate(echoModel{}, d, dataset.TaskRegression)
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError for empty split, got %v", err)
	}
}

func TestEvaluate_UnknownTask(t *testing.T) {
	_, err := Evaluate(echoModel{}, evalSplit([]float64{1}), dataset.TaskKind("ranking"))
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError for unknown task, got %v", err)
	}
}
