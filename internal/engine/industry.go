package engine

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"campscore/internal/schema"
)

// sectorExtras names the sector-specific feature emphasis appended to the
// canonical vector for that sector's expert. The general expert sees the
// canonical vector only, so each expert's input width is fixed per partition.
var sectorExtras = map[string][]string{
	"saas":        {"net_dollar_retention_pct", "gross_margin_pct", "customer_churn_rate_pct"},
	"fintech":     {"regulatory_advantage_score", "ltv_cac_ratio", "customer_concentration_pct"},
	"healthtech":  {"regulatory_advantage_score", "patent_count", "domain_expertise_years_avg"},
	"ecommerce":   {"gross_margin_pct", "customer_churn_rate_pct", "dau_mau_ratio"},
	"ai-ml":       {"tech_differentiation_score", "data_moat_score", "patent_count"},
	"marketplace": {"network_effect_score", "dau_mau_ratio", "user_growth_rate_pct"},
	"edtech":      {"product_retention_90d", "user_growth_rate_pct", "customer_churn_rate_pct"},
}

// IndustryEnsemble trains one expert per sector with enough rows, plus a
// shared general expert for everything else. Unlike the stage ensemble the
// fallback is a real model trained on the complementary rows, not an average.
type IndustryEnsemble struct {
	MinSamples int               `json:"min_samples"`
	Experts    map[string]*Logit `json:"experts"`
	General    *Logit            `json:"general"`
	Calibrator *Logit            `json:"calibrator"`
}

func newIndustryEnsemble(minSamples int) *IndustryEnsemble {
	return &IndustryEnsemble{
		MinSamples: minSamples,
		Experts:    make(map[string]*Logit),
	}
}

func sectorVector(r *schema.Record, sector string) []float64 {
	full := r.Vector()
	extras := sectorExtras[sector]
	if len(extras) == 0 {
		return full
	}
	v := make([]float64, 0, len(full)+len(extras))
	v = append(v, full...)
	for _, name := range extras {
		v = append(v, full[schema.Index(name)])
	}
	return v
}

func (e *IndustryEnsemble) train(records []schema.Record, labels []int) ([]PartitionIssue, error) {
	bySector := make(map[string][]int)
	for i := range records {
		s := schema.CanonicalSector(records[i].Sector)
		bySector[s] = append(bySector[s], i)
	}

	var issues []PartitionIssue
	dedicated := make(map[string]bool)
	type fitJob struct {
		sector string
		rows   []int
	}
	var jobs []fitJob
	for _, sector := range schema.Sectors {
		if sector == schema.SectorGeneral {
			continue // the general bucket is always served by the shared expert
		}
		rows := bySector[sector]
		if len(rows) < e.MinSamples {
			issues = append(issues, PartitionIssue{
				Ensemble:  "industry",
				Partition: sector,
				Rows:      len(rows),
				Threshold: e.MinSamples,
			})
			continue
		}
		dedicated[sector] = true
		jobs = append(jobs, fitJob{sector: sector, rows: rows})
	}

	// The general expert trains on every row without a dedicated expert.
	var generalRows []int
	for i := range records {
		if !dedicated[schema.CanonicalSector(records[i].Sector)] {
			generalRows = append(generalRows, i)
		}
	}
	if len(generalRows) == 0 {
		// Every sector has its own expert; train the shared fallback on the
		// full row set so unseen sectors at score time still get a model.
		generalRows = make([]int, len(records))
		for i := range generalRows {
			generalRows[i] = i
		}
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	errs := make([]error, len(jobs)+1)
	for ji, job := range jobs {
		wg.Add(1)
		go func(ji int, job fitJob) {
			defer wg.Done()
			X := make([][]float64, len(job.rows))
			y := make([]int, len(job.rows))
			for k, idx := range job.rows {
				X[k] = sectorVector(&records[idx], job.sector)
				y[k] = labels[idx]
			}
			m := NewLogit()
			if err := m.Fit(X, y); err != nil {
				errs[ji] = fmt.Errorf("industry expert %s: %w", job.sector, err)
				return
			}
			mu.Lock()
			e.Experts[job.sector] = m
			mu.Unlock()
		}(ji, job)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		X := make([][]float64, len(generalRows))
		y := make([]int, len(generalRows))
		for k, idx := range generalRows {
			X[k] = records[idx].Vector()
			y[k] = labels[idx]
		}
		m := NewLogit()
		if err := m.Fit(X, y); err != nil {
			errs[len(jobs)] = fmt.Errorf("industry general expert: %w", err)
			return
		}
		mu.Lock()
		e.General = m
		mu.Unlock()
	}()
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return issues, err
		}
	}

	log.Debug().
		Int("experts", len(e.Experts)).
		Int("general_rows", len(generalRows)).
		Int("skipped", len(issues)).
		Msg("industry experts trained")

	meta := make([][]float64, len(records))
	for i := range records {
		s, _, _ := e.rawScore(&records[i])
		meta[i] = []float64{s}
	}
	cal := NewLogit()
	if err := cal.Fit(meta, labels); err != nil {
		return issues, fmt.Errorf("industry calibrator: %w", err)
	}
	e.Calibrator = cal
	return issues, nil
}

func (e *IndustryEnsemble) rawScore(r *schema.Record) (score float64, partition string, fellBack bool) {
	sector := schema.CanonicalSector(r.Sector)
	if m, ok := e.Experts[sector]; ok {
		return m.PredictProba(sectorVector(r, sector)), sector, false
	}
	return e.General.PredictProba(r.Vector()), sector, true
}

// Score returns the calibrated industry probability.
func (e *IndustryEnsemble) Score(r *schema.Record) float64 {
	raw, _, _ := e.rawScore(r)
	return e.Calibrator.PredictProba([]float64{raw})
}

// Detail exposes the routed sector and raw expert score for attribution.
func (e *IndustryEnsemble) Detail(r *schema.Record) EnsembleDetail {
	raw, partition, fellBack := e.rawScore(r)
	key := partition
	if fellBack {
		key = "general"
	}
	return EnsembleDetail{
		Partition:  partition,
		Raw:        map[string]float64{key: raw},
		Fallback:   fellBack,
		Calibrated: e.Calibrator.PredictProba([]float64{raw}),
	}
}
