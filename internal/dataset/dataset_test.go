package dataset

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test csv: %v", err)
	}
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeCSV(t, "a,b,y\n1,2,10\n3,4,20\n")

	d, err := LoadCSV(path, "y", TaskRegression)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(d.Features, []string{"a", "b"}) {
		t.Errorf("unexpected features: %v", d.Features)
	}
	if d.TargetName != "y" {
		t.Errorf("expected target name 'y', got %q", d.TargetName)
	}
	if d.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", d.Len())
	}
	if !reflect.DeepEqual(d.Rows[0], []float64{1, 2}) || d.Target[0] != 10 {
		t.Errorf("unexpected first row %v target %g", d.Rows[0], d.Target[0])
	}
}

func TestLoadCSV_TargetInMiddle(t *testing.T) {
	path := writeCSV(t, "a,y,b\n1,10,2\n3,20,4\n")

	d, err := LoadCSV(path, "y", TaskRegression)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(d.Features, []string{"a", "b"}) {
		t.Errorf("unexpected features: %v", d.Features)
	}
	if !reflect.DeepEqual(d.Rows[1], []float64{3, 4}) || d.Target[1] != 20 {
		t.Errorf("unexpected second row %v target %g", d.Rows[1], d.Target[1])
	}
}

func TestLoadCSV_MissingTarget(t *testing.T) {
	path := writeCSV(t, "a,b\n1,2\n")

	_, err := LoadCSV(path, "y", TaskRegression)
	if err == nil || !strings.Contains(err.Error(), "target column") {
		t.Errorf("expected missing target error, got %v", err)
	}
}

func TestLoadCSV_NonNumeric(t *testing.T) {
	path := writeCSV(t, "a,y\nfoo,10\n")

	_, err := LoadCSV(path, "y", TaskRegression)
	if err == nil || !strings.Contains(err.Error(), "non-numeric") {
		t.Errorf("expected non-numeric error, got %v", err)
	}
}

func TestLoadCSV_NoRows(t *testing.T) {
	path := writeCSV(t, "a,y\n")

	_, err := LoadCSV(path, "y", TaskRegression)
	if err == nil {
		t.Error("expected error for header-only file")
	}
}

func TestIris(t *testing.T) {
	d := Iris()

	if d.Len() != 150 {
		t.Errorf("expected 150 rows, got %d", d.Len())
	}
	if d.NumFeatures() != 4 {
		t.Errorf("expected 4 features, got %d", d.NumFeatures())
	}
	if d.Classes() != 3 {
		t.Errorf("expected 3 classes, got %d", d.Classes())
	}
	if d.Task != TaskClassification {
		t.Errorf("expected classification task, got %s", d.Task)
	}
	if err := d.Validate(); err != nil {
		t.Errorf("iris dataset failed validation: %v", err)
	}

	// Balanced classes.
	counts := make(map[int]int)
	for _, y := range d.Target {
		counts[int(y)]++
	}
	for class, n := range counts {
		if n != 50 {
			t.Errorf("expected 50 rows for class %d, got %d", class, n)
		}
	}
}

func TestIris_Deterministic(t *testing.T) {
	d1 := Iris()
	d2 := Iris()

	if !reflect.DeepEqual(d1.Rows, d2.Rows) {
		t.Error("expected identical rows on repeated calls")
	}
	if !reflect.DeepEqual(d1.Target, d2.Target) {
		t.Error("expected identical targets on repeated calls")
	}
}

func TestValidate_RaggedRow(t *testing.T) {
	d := &Dataset{
		Features:   []string{"a", "b"},
		TargetName: "y",
		Task:       TaskRegression,
		Rows:       [][]float64{{1, 2}, {3}},
		Target:     []float64{1, 2},
	}
	if err := d.Validate(); err == nil {
		t.Error("expected validation error for ragged row")
	}
}
