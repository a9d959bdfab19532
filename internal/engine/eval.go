package engine

import (
	"sort"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"

	"campscore/internal/schema"
)

// EvalResult summarizes scoring quality on a labeled holdout set.
type EvalResult struct {
	Rows     int     `json:"rows"`
	AUC      float64 `json:"auc"`
	Accuracy float64 `json:"accuracy"`
	Brier    float64 `json:"brier"`
}

// Evaluate scores every holdout record and reports AUC, accuracy at the 0.5
// cut and the Brier score.
func (e *Engine) Evaluate(records []schema.Record, labels []int) EvalResult {
	n := len(records)
	scores := make([]float64, n)
	for i := range records {
		scores[i] = e.Score(records[i])
	}

	correct := 0
	brier := 0.0
	for i, s := range scores {
		pred := 0
		if s >= 0.5 {
			pred = 1
		}
		if pred == labels[i] {
			correct++
		}
		d := s - float64(labels[i])
		brier += d * d
	}

	res := EvalResult{Rows: n, AUC: AUC(scores, labels)}
	if n > 0 {
		res.Accuracy = float64(correct) / float64(n)
		res.Brier = brier / float64(n)
	}
	return res
}

// AUC computes the area under the ROC curve. stat.ROC requires scores in
// ascending order with their classes alongside.
func AUC(scores []float64, labels []int) float64 {
	n := len(scores)
	if n == 0 {
		return 0
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return scores[idx[a]] < scores[idx[b]] })

	y := make([]float64, n)
	classes := make([]bool, n)
	for k, i := range idx {
		y[k] = scores[i]
		classes[k] = labels[i] == 1
	}
	tpr, fpr, _ := stat.ROC(nil, y, classes, nil)
	return integrate.Trapezoidal(fpr, tpr)
}
