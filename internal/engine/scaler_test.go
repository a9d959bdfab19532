package engine

import (
	"math"
	"testing"
)

func TestFitScalerStats(t *testing.T) {
	X := [][]float64{
		{1, 10},
		{3, 10},
		{5, 10},
	}
	s := FitScaler(X)
	if s.Mean[0] != 3 {
		t.Errorf("Mean[0] = %v, want 3", s.Mean[0])
	}
	if s.Std[0] == 0 {
		t.Error("Std[0] = 0 for a varying column")
	}
	// Constant column keeps Std=0.
	if s.Std[1] != 0 {
		t.Errorf("Std[1] = %v, want 0 for constant column", s.Std[1])
	}
}

func TestScalerZeroVarianceColumn(t *testing.T) {
	s := FitScaler([][]float64{{7, 1}, {7, 2}, {7, 3}})
	out := s.Apply([]float64{7, 2})
	if out[0] != 0 {
		t.Errorf("zero-variance column scaled to %v, want exactly 0", out[0])
	}
	if out[1] != 0 {
		t.Errorf("mean input scaled to %v, want 0", out[1])
	}
}

func TestScalerNonFiniteInputs(t *testing.T) {
	s := FitScaler([][]float64{{1, 1}, {2, 2}, {3, 3}})
	out := s.Apply([]float64{math.NaN(), math.Inf(-1)})
	for j, v := range out {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("column %d scaled to non-finite %v", j, v)
		}
	}
}

func TestScalerWidthMismatch(t *testing.T) {
	s := FitScaler([][]float64{{1, 2, 3}, {4, 5, 6}})
	// Short rows zero-pad, long rows truncate.
	if got := len(s.Apply([]float64{1})); got != 3 {
		t.Errorf("short row scaled to width %d, want 3", got)
	}
	if got := len(s.Apply([]float64{1, 2, 3, 4, 5})); got != 3 {
		t.Errorf("long row scaled to width %d, want 3", got)
	}
}
