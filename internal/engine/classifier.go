// Package engine implements the hierarchical ensemble prediction engine: four
// specialist sub-ensembles (funding stage, time horizon, industry sector and
// an unsupervised pattern analyzer) whose calibrated outputs are stacked into
// a final combiner. Training flows strictly bottom-up; every trained artifact
// is immutable afterwards, so concurrent scoring needs no locking.
package engine

import (
	"fmt"
	"math"
)

// Classifier is a binary probabilistic classifier. Implementations must be
// deterministic at prediction time: the same input against the same fitted
// parameters yields bit-identical output.
type Classifier interface {
	Fit(X [][]float64, y []int) error
	PredictProba(x []float64) float64
}

// Logit is a regularized logistic-regression classifier trained by
// full-batch gradient descent over internally standardized features.
// Zero-initialized weights and a fixed schedule keep training deterministic.
type Logit struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
	Scaler  *Scaler   `json:"scaler"`

	Epochs int     `json:"epochs,omitempty"`
	Rate   float64 `json:"rate,omitempty"`
	L2     float64 `json:"l2,omitempty"`
}

// NewLogit returns a classifier with the default training schedule.
func NewLogit() *Logit {
	return &Logit{Epochs: 300, Rate: 0.3, L2: 1e-3}
}

// Fit trains the classifier on X against binary labels y.
func (l *Logit) Fit(X [][]float64, y []int) error {
	if len(X) == 0 {
		return fmt.Errorf("logit: empty training set")
	}
	if len(X) != len(y) {
		return fmt.Errorf("logit: %d rows vs %d labels", len(X), len(y))
	}
	dim := len(X[0])
	if dim == 0 {
		return fmt.Errorf("logit: zero-width rows")
	}
	if l.Epochs == 0 {
		l.Epochs = 300
	}
	if l.Rate == 0 {
		l.Rate = 0.3
	}

	l.Scaler = FitScaler(X)
	scaled := make([][]float64, len(X))
	for i, row := range X {
		scaled[i] = l.Scaler.Apply(row)
	}

	w := make([]float64, dim)
	b := 0.0
	n := float64(len(scaled))

	grad := make([]float64, dim)
	for epoch := 0; epoch < l.Epochs; epoch++ {
		for j := range grad {
			grad[j] = 0
		}
		gb := 0.0
		for i, row := range scaled {
			p := sigmoid(dot(w, row) + b)
			diff := p - float64(y[i])
			for j, v := range row {
				grad[j] += diff * v
			}
			gb += diff
		}
		for j := range w {
			w[j] -= l.Rate * (grad[j]/n + l.L2*w[j])
		}
		b -= l.Rate * gb / n
	}

	l.Weights = w
	l.Bias = b
	return nil
}

// PredictProba returns P(y=1 | x) in [0,1]. Non-finite inputs contribute 0
// after scaling, so the output is always a well-formed probability.
func (l *Logit) PredictProba(x []float64) float64 {
	if l.Scaler == nil || len(l.Weights) == 0 {
		return 0.5
	}
	row := l.Scaler.Apply(x)
	p := sigmoid(dot(l.Weights, row) + l.Bias)
	if math.IsNaN(p) {
		return 0.5
	}
	return clamp01(p)
}

func dot(w, x []float64) float64 {
	n := len(w)
	if len(x) < n {
		n = len(x)
	}
	s := 0.0
	for i := 0; i < n; i++ {
		s += w[i] * x[i]
	}
	return s
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

func clamp01(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
