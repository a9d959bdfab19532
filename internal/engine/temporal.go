package engine

import (
	"fmt"
	"sync"

	"campscore/internal/schema"
)

// Horizon column subsets. Unlike the stage and industry ensembles the
// temporal experts split by feature columns, not rows: all three see every
// training record.
var horizonColumns = map[string][]string{
	"short": {
		"cash_on_hand_usd",
		"monthly_burn_usd",
		"runway_months",
		"burn_multiple",
		"customer_churn_rate_pct",
	},
	"medium": {
		"user_growth_rate_pct",
		"revenue_growth_rate_pct",
		"net_dollar_retention_pct",
		"product_retention_30d",
		"product_retention_90d",
		"dau_mau_ratio",
		"gross_margin_pct",
	},
	"long": {
		"tam_size_usd",
		"sam_size_usd",
		"market_growth_rate_pct",
		"tech_differentiation_score",
		"switching_cost_score",
		"brand_strength_score",
		"years_experience_avg",
		"domain_expertise_years_avg",
		"prior_successful_exits",
	},
}

// horizons is the fixed evaluation order; the calibrator's input columns
// follow it.
var horizons = []string{"short", "medium", "long"}

// TemporalEnsemble trains one expert per time horizon on a restricted column
// view of the full row set, then calibrates the three horizon scores jointly.
type TemporalEnsemble struct {
	Experts    map[string]*Logit `json:"experts"`
	Calibrator *Logit            `json:"calibrator"`
}

func newTemporalEnsemble() *TemporalEnsemble {
	return &TemporalEnsemble{Experts: make(map[string]*Logit)}
}

func horizonVector(r *schema.Record, horizon string) []float64 {
	cols := horizonColumns[horizon]
	v := make([]float64, len(cols))
	full := r.Vector()
	for i, name := range cols {
		v[i] = full[schema.Index(name)]
	}
	return v
}

func (e *TemporalEnsemble) train(records []schema.Record, labels []int) error {
	var wg sync.WaitGroup
	var mu sync.Mutex
	errs := make([]error, len(horizons))
	for hi, h := range horizons {
		wg.Add(1)
		go func(hi int, h string) {
			defer wg.Done()
			X := make([][]float64, len(records))
			for i := range records {
				X[i] = horizonVector(&records[i], h)
			}
			m := NewLogit()
			if err := m.Fit(X, labels); err != nil {
				errs[hi] = fmt.Errorf("temporal expert %s: %w", h, err)
				return
			}
			mu.Lock()
			e.Experts[h] = m
			mu.Unlock()
		}(hi, h)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	meta := make([][]float64, len(records))
	for i := range records {
		meta[i] = e.rawScores(&records[i])
	}
	cal := NewLogit()
	if err := cal.Fit(meta, labels); err != nil {
		return fmt.Errorf("temporal calibrator: %w", err)
	}
	e.Calibrator = cal
	return nil
}

func (e *TemporalEnsemble) rawScores(r *schema.Record) []float64 {
	out := make([]float64, len(horizons))
	for i, h := range horizons {
		out[i] = e.Experts[h].PredictProba(horizonVector(r, h))
	}
	return out
}

// Score returns the calibrated combination of the three horizon scores.
func (e *TemporalEnsemble) Score(r *schema.Record) float64 {
	return e.Calibrator.PredictProba(e.rawScores(r))
}

// Detail exposes the per-horizon raw scores for attribution.
func (e *TemporalEnsemble) Detail(r *schema.Record) EnsembleDetail {
	raw := e.rawScores(r)
	d := EnsembleDetail{
		Raw:        make(map[string]float64, len(horizons)),
		Calibrated: e.Calibrator.PredictProba(raw),
	}
	for i, h := range horizons {
		d.Raw[h] = raw[i]
	}
	return d
}
