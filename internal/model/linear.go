package model

import (
	"encoding/json"
	"fmt"
	"io"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/haskel/mltrack/internal/dataset"
)

// LinearRegressor is an ordinary least squares regressor with intercept,
// solved by thin SVD. Rank-deficient designs (collinear feature columns)
// get the minimum-norm solution.
type LinearRegressor struct {
	state linearState
}

type linearState struct {
	Weights   []float64 `json:"weights"`
	Intercept float64   `json:"intercept"`
}

// Kind returns the model kind.
func (m *LinearRegressor) Kind() Kind {
	return KindLinearRegressor
}

func (m *LinearRegressor) fit(cfg Config, train *dataset.Dataset) error {
	n := train.Len()
	p := train.NumFeatures()
	if n <= p {
		return fmt.Errorf("need more than %d rows to fit %d coefficients, got %d", p, p+1, n)
	}

	// Design matrix with a leading intercept column.
	x := mat.NewDense(n, p+1, nil)
	for i, row := range train.Rows {
		x.Set(i, 0, 1)
		for j, v := range row {
			x.Set(i, j+1, v)
		}
	}

	var svd mat.SVD
	if !svd.Factorize(x, mat.SVDThin) {
		return fmt.Errorf("svd factorization did not converge")
	}

	vals := svd.Values(nil)
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	// Pseudo-inverse solve: singular values below the tolerance are
	// treated as zero, which keeps collinear columns from blowing up
	// the coefficients.
	tol := float64(n) * 1e-15 * vals[0]
	scaled := make([]float64, len(vals))
	for j := range vals {
		if vals[j] <= tol {
			continue
		}
		var dot float64
		for i := 0; i < n; i++ {
			dot += u.At(i, j) * train.Target[i]
		}
		scaled[j] = dot / vals[j]
	}

	coef := make([]float64, p+1)
	for i := range coef {
		coef[i] = floats.Dot(v.RawRowView(i), scaled)
	}

	m.state.Intercept = coef[0]
	m.state.Weights = coef[1:]
	return nil
}

// Predict returns the linear prediction for one feature row.
func (m *LinearRegressor) Predict(row []float64) float64 {
	return m.state.Intercept + floats.Dot(m.state.Weights, row)
}

// PredictBatch returns predictions for a batch of feature rows.
func (m *LinearRegressor) PredictBatch(rows [][]float64) []float64 {
	out := make([]float64, len(rows))
	for i, row := range rows {
		out[i] = m.Predict(row)
	}
	return out
}

// Save serializes the learned coefficients.
func (m *LinearRegressor) Save(w io.Writer) error {
	return json.NewEncoder(w).Encode(m.state)
}

// Load deserializes learned coefficients.
func (m *LinearRegressor) Load(r io.Reader) error {
	return json.NewDecoder(r).Decode(&m.state)
}
