package tracking

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/haskel/mltrack/internal/dataset"
	"github.com/haskel/mltrack/internal/logger"
	"github.com/haskel/mltrack/internal/model"
)

func testStore(t *testing.T) *FileStore {
	t.Helper()
	log := logger.NewWithWriter(io.Discard, "error", "text")
	return NewFileStore(t.TempDir(), "iris-experiment", log)
}

func fitClassifier(t *testing.T) model.FittedModel {
	t.Helper()
	fitted, err := model.Fit(model.Config{
		Kind:   model.KindLogisticClassifier,
		Name:   "LogisticRegression",
		Params: model.Params{MaxIter: 20},
		Seed:   42,
	}, dataset.Iris())
	if err != nil {
		t.Fatalf("failed to fit model: %v", err)
	}
	return fitted
}

func irisRecord(m model.FittedModel) RunRecord {
	return RunRecord{
		Name:     "LogisticRegression",
		Params:   map[string]string{"algorithm": "logistic-classifier", "max_iter": "20"},
		Metrics:  map[string]float64{"accuracy": 0.95, "f1_score": 0.94},
		Features: dataset.Iris().Features,
	}
}

func TestFileStore_LogRunLayout(t *testing.T) {
	store := testStore(t)
	m := fitClassifier(t)
	sample := dataset.Iris().Rows[:1]

	h, err := store.LogRun(irisRecord(m), m, sample)
	if err != nil {
		t.Fatalf("log run failed: %v", err)
	}
	if h.RunID == "" || h.ExperimentID != "0" {
		t.Fatalf("unexpected handle %+v", h)
	}

	runDir := filepath.Join(store.Root(), h.ExperimentID, h.RunID)

	data, err := os.ReadFile(filepath.Join(runDir, "meta.yaml"))
	if err != nil {
		t.Fatalf("missing run meta: %v", err)
	}
	if !strings.Contains(string(data), "status: "+StatusFinished) {
		t.Errorf("expected FINISHED status in meta, got:\n%s", data)
	}

	for entry, want := range map[string]string{
		filepath.Join("params", "model_name"): "LogisticRegression",
		filepath.Join("params", "max_iter"):   "20",
		filepath.Join("tags", "mlflow.runName"): "LogisticRegression",
	} {
		data, err := os.ReadFile(filepath.Join(runDir, entry))
		if err != nil {
			t.Errorf("missing %s: %v", entry, err)
			continue
		}
		if got := strings.TrimSpace(string(data)); got != want {
			t.Errorf("%s: expected %q, got %q", entry, want, got)
		}
	}

	data, err = os.ReadFile(filepath.Join(runDir, "metrics", "accuracy"))
	if err != nil {
		t.Fatalf("missing accuracy metric: %v", err)
	}
	fields := strings.Fields(strings.TrimSpace(string(data)))
	if len(fields) != 3 || fields[1] != "0.95" {
		t.Errorf("unexpected metric line %q", data)
	}

	for _, name := range []string{"model.json", "signature.json", "input_example.json"} {
		path := filepath.Join(h.ArtifactPath, name)
		if _, err := os.Stat(path); err != nil {
			t.Errorf("missing artifact %s: %v", name, err)
		}
	}
}

func TestFileStore_ListRuns(t *testing.T) {
	store := testStore(t)
	m := fitClassifier(t)

	if _, err := store.LogRun(irisRecord(m), m, nil); err != nil {
		t.Fatalf("log run failed: %v", err)
	}
	if _, err := store.LogRun(irisRecord(m), m, nil); err != nil {
		t.Fatalf("log run failed: %v", err)
	}

	runs, err := store.ListRuns()
	if err != nil {
		t.Fatalf("list runs failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	for _, run := range runs {
		if run.Status != StatusFinished {
			t.Errorf("run %s: expected FINISHED, got %s", run.RunID, run.Status)
		}
		if run.Metrics["accuracy"] != 0.95 {
			t.Errorf("run %s: expected accuracy 0.95, got %g", run.RunID, run.Metrics["accuracy"])
		}
		if run.Params["model_name"] != "LogisticRegression" {
			t.Errorf("run %s: unexpected model_name %q", run.RunID, run.Params["model_name"])
		}
	}
}

func TestFileStore_ListRunsEmpty(t *testing.T) {
	runs, err := testStore(t).ListRuns()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestFileStore_RegisterModelVersions(t *testing.T) {
	store := testStore(t)
	m := fitClassifier(t)

	h, err := store.LogRun(irisRecord(m), m, nil)
	if err != nil {
		t.Fatalf("log run failed: %v", err)
	}

	if err := store.RegisterModel(h, "IrisClassifierModel"); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	if err := store.RegisterModel(h, "IrisClassifierModel"); err != nil {
		t.Fatalf("second registration failed: %v", err)
	}

	dir := filepath.Join(store.Root(), "models", "IrisClassifierModel")
	for _, version := range []string{"version-1", "version-2"} {
		if _, err := os.Stat(filepath.Join(dir, version, "meta.yaml")); err != nil {
			t.Errorf("missing %s: %v", version, err)
		}
	}
}

func TestFileStore_RegisterModelError(t *testing.T) {
	store := testStore(t)

	err := store.RegisterModel(RunHandle{RunID: "abc"}, "")
	var regErr *RegistrationError
	if !errors.As(err, &regErr) {
		t.Fatalf("expected RegistrationError, got %v", err)
	}
}

func TestFileStore_LogRunUnreachableRoot(t *testing.T) {
	// A regular file in place of the tracking root makes every write fail.
	tmp := t.TempDir()
	blocker := filepath.Join(tmp, "mlruns")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatalf("failed to create blocker file: %v", err)
	}

	log := logger.NewWithWriter(io.Discard, "error", "text")
	store := NewFileStore(blocker, "default", log)
	m := fitClassifier(t)

	_, err := store.LogRun(irisRecord(m), m, nil)
	var trackErr *TrackingError
	if !errors.As(err, &trackErr) {
		t.Fatalf("expected TrackingError, got %v", err)
	}
}
