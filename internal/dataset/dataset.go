package dataset

import "fmt"

// TaskKind describes what the target column represents.
type TaskKind string

const (
	TaskRegression     TaskKind = "regression"
	TaskClassification TaskKind = "classification"
)

// IsValid checks if the task kind is valid.
func (t TaskKind) IsValid() bool {
	switch t {
	case TaskRegression, TaskClassification:
		return true
	}
	return false
}

// String returns string representation.
func (t TaskKind) String() string {
	return string(t)
}

// Dataset is an ordered table of numeric feature rows plus one target
// column. Classification targets are integer class indexes stored as
// float64. The target column is never part of Features.
type Dataset struct {
	Features   []string
	TargetName string
	Task       TaskKind

	Rows   [][]float64
	Target []float64
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// NumFeatures returns the number of feature columns.
func (d *Dataset) NumFeatures() int {
	return len(d.Features)
}

// Classes returns the number of distinct target classes.
// Only meaningful for classification datasets.
func (d *Dataset) Classes() int {
	seen := make(map[int]struct{})
	for _, y := range d.Target {
		seen[int(y)] = struct{}{}
	}
	return len(seen)
}

// Validate checks basic table invariants: every row has all feature
// columns and the target column has one value per row.
func (d *Dataset) Validate() error {
	if len(d.Features) == 0 {
		return fmt.Errorf("dataset has no feature columns")
	}
	if !d.Task.IsValid() {
		return fmt.Errorf("invalid task kind %q", d.Task)
	}
	if len(d.Rows) != len(d.Target) {
		return fmt.Errorf("row count %d does not match target count %d", len(d.Rows), len(d.Target))
	}
	for i, row := range d.Rows {
		if len(row) != len(d.Features) {
			return fmt.Errorf("row %d has %d values, expected %d", i, len(row), len(d.Features))
		}
	}
	return nil
}

// subset returns a new Dataset sharing feature metadata and containing
// the rows at the given indexes. Row slices are shared, not copied;
// callers treat datasets as read-only.
func (d *Dataset) subset(idx []int) *Dataset {
	s := &Dataset{
		Features:   d.Features,
		TargetName: d.TargetName,
		Task:       d.Task,
		Rows:       make([][]float64, 0, len(idx)),
		Target:     make([]float64, 0, len(idx)),
	}
	for _, i := range idx {
		s.Rows = append(s.Rows, d.Rows[i])
		s.Target = append(s.Target, d.Target[i])
	}
	return s
}
