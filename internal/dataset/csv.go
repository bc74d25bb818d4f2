package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// LoadCSV reads a headered CSV file into a Dataset. Every column except
// targetName becomes a feature, in header order. All cells must be
// numeric.
func LoadCSV(path, targetName string, task TaskKind) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("dataset file %s has no data rows", path)
	}

	header := records[0]
	targetCol := -1
	features := make([]string, 0, len(header)-1)
	for i, name := range header {
		if name == targetName {
			targetCol = i
			continue
		}
		features = append(features, name)
	}
	if targetCol == -1 {
		return nil, fmt.Errorf("target column %q not found in header", targetName)
	}

	d := &Dataset{
		Features:   features,
		TargetName: targetName,
		Task:       task,
		Rows:       make([][]float64, 0, len(records)-1),
		Target:     make([]float64, 0, len(records)-1),
	}

	for lineNo, rec := range records[1:] {
		if len(rec) != len(header) {
			return nil, fmt.Errorf("row %d has %d columns, expected %d", lineNo+2, len(rec), len(header))
		}
		row := make([]float64, 0, len(features))
		for i, cell := range rec {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: non-numeric value %q", lineNo+2, header[i], cell)
			}
			if i == targetCol {
				d.Target = append(d.Target, v)
			} else {
				row = append(row, v)
			}
		}
		d.Rows = append(d.Rows, row)
	}

	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dataset %s: %w", path, err)
	}
	return d, nil
}
