package metrics

import (
	"fmt"
	"math"

	"github.com/haskel/mltrack/internal/dataset"
	"github.com/haskel/mltrack/internal/model"
)

// Record maps metric names to values, computed once per successful fit.
type Record map[string]float64

// EvaluationError reports a failed metric computation. Fatal for the
// affected model.
type EvaluationError struct {
	Reason string
	Err    error
}

func (e *EvaluationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("evaluation failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("evaluation failed: %s", e.Reason)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}

// Evaluate computes task-appropriate metrics from the model's predictions
// on the eval split. Regression: mse, r2_score. Classification: accuracy,
// f1_score (weighted average over classes). The eval split is never
// mutated.
func Evaluate(m model.FittedModel, eval *dataset.Dataset, task dataset.TaskKind) (Record, error) {
	if eval == nil || eval.Len() == 0 {
		return nil, &EvaluationError{Reason: "empty eval split"}
	}

	preds := m.PredictBatch(eval.Rows)
	if len(preds) != len(eval.Target) {
		return nil, &EvaluationError{Reason: fmt.Sprintf("prediction count %d does not match target count %d", len(preds), len(eval.Target))}
	}

	switch task {
	case dataset.TaskRegression:
		return regressionMetrics(preds, eval.Target), nil
	case dataset.TaskClassification:
		return classificationMetrics(preds, eval.Target), nil
	}
	return nil, &EvaluationError{Reason: fmt.Sprintf("unrecognized task kind %q", task)}
}

func regressionMetrics(preds, truth []float64) Record {
	n := float64(len(truth))

	var mseSum, mean float64
	for i := range truth {
		diff := truth[i] - preds[i]
		mseSum += diff * diff
		mean += truth[i]
	}
	mean /= n

	var tss float64
	for _, y := range truth {
		diff := y - mean
		tss += diff * diff
	}

	r2 := 1.0
	if tss > 0 {
		r2 = 1 - mseSum/tss
	} else if mseSum > 0 {
		// Constant truth the model failed to hit.
		r2 = 0
	}

	return Record{
		"mse":      mseSum / n,
		"r2_score": r2,
	}
}

func classificationMetrics(preds, truth []float64) Record {
	classes := 0
	for _, y := range truth {
		if int(y) >= classes {
			classes = int(y) + 1
		}
	}
	for _, y := range preds {
		if int(y) >= classes {
			classes = int(y) + 1
		}
	}

	correct := 0
	tp := make([]float64, classes)
	fp := make([]float64, classes)
	fn := make([]float64, classes)
	support := make([]float64, classes)

	for i := range truth {
		t, p := int(truth[i]), int(preds[i])
		support[t]++
		if t == p {
			correct++
			tp[t]++
		} else {
			fp[p]++
			fn[t]++
		}
	}

	// Weighted-average F1: per-class F1 weighted by class support.
	var f1 float64
	n := float64(len(truth))
	for c := 0; c < classes; c++ {
		if support[c] == 0 {
			continue
		}
		var classF1 float64
		if denom := 2*tp[c] + fp[c] + fn[c]; denom > 0 {
			classF1 = 2 * tp[c] / denom
		}
		f1 += classF1 * support[c] / n
	}

	acc := float64(correct) / n
	if math.IsNaN(acc) {
		acc = 0
	}

	return Record{
		"accuracy": acc,
		"f1_score": f1,
	}
}
