package tracking

// Signature is the declared input/output schema of a logged model: one
// column per feature plus the single numeric prediction output.
type Signature struct {
	Inputs  []ColumnSpec `json:"inputs"`
	Outputs []ColumnSpec `json:"outputs"`
}

// ColumnSpec describes one column of a signature.
type ColumnSpec struct {
	Name string `json:"name,omitempty"`
	Type string `json:"type"`
}

// InputExample is a small sample of model input stored next to the
// artifact.
type InputExample struct {
	Columns []string    `json:"columns"`
	Data    [][]float64 `json:"data"`
}

// inferSignature builds a Signature from the feature names of the sample
// input. All models predict a single float64, so every column is a double.
func inferSignature(features []string) Signature {
	sig := Signature{
		Inputs:  make([]ColumnSpec, 0, len(features)),
		Outputs: []ColumnSpec{{Type: "double"}},
	}
	for _, name := range features {
		sig.Inputs = append(sig.Inputs, ColumnSpec{Name: name, Type: "double"})
	}
	return sig
}
