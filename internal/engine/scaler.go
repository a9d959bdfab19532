package engine

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Scaler is a per-column zero-mean unit-variance transform. Columns with zero
// variance keep Std=0 and scale to exactly 0, so degenerate inputs cannot
// push NaN into downstream models.
type Scaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// FitScaler computes column statistics over the training matrix.
func FitScaler(X [][]float64) *Scaler {
	if len(X) == 0 {
		return &Scaler{}
	}
	dim := len(X[0])
	s := &Scaler{
		Mean: make([]float64, dim),
		Std:  make([]float64, dim),
	}
	col := make([]float64, len(X))
	for j := 0; j < dim; j++ {
		for i, row := range X {
			v := row[j]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				v = 0
			}
			col[i] = v
		}
		mean, std := stat.MeanStdDev(col, nil)
		if math.IsNaN(std) || std == 0 {
			std = 0 // constant column, contributes 0 after scaling
		}
		s.Mean[j] = mean
		s.Std[j] = std
	}
	return s
}

// Apply scales a single row. Inputs out of the fitted width are truncated or
// zero-padded; non-finite values are treated as 0 before centering.
func (s *Scaler) Apply(x []float64) []float64 {
	out := make([]float64, len(s.Mean))
	for j := range out {
		var v float64
		if j < len(x) {
			v = x[j]
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		if s.Std[j] == 0 {
			out[j] = 0
			continue
		}
		out[j] = (v - s.Mean[j]) / s.Std[j]
	}
	return out
}

// ApplyMatrix scales every row of X.
func (s *Scaler) ApplyMatrix(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i, row := range X {
		out[i] = s.Apply(row)
	}
	return out
}
