package engine

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"campscore/internal/schema"
)

// StageEnsemble routes each record to an expert trained on its canonical
// funding-stage bucket. Buckets below the sample threshold get no expert;
// records landing in them are scored with the average across all trained
// experts, and a single-column calibrator corrects the routed score.
type StageEnsemble struct {
	MinSamples int               `json:"min_samples"`
	Experts    map[string]*Logit `json:"experts"`
	Calibrator *Logit            `json:"calibrator"`
}

func newStageEnsemble(minSamples int) *StageEnsemble {
	return &StageEnsemble{
		MinSamples: minSamples,
		Experts:    make(map[string]*Logit),
	}
}

func (e *StageEnsemble) train(records []schema.Record, labels []int) ([]PartitionIssue, error) {
	byBucket := make(map[string][]int)
	for i := range records {
		b := schema.CanonicalStage(records[i].FundingStage)
		byBucket[b] = append(byBucket[b], i)
	}

	var issues []PartitionIssue
	type fitJob struct {
		bucket string
		rows   []int
	}
	var jobs []fitJob
	for _, bucket := range schema.Stages {
		rows := byBucket[bucket]
		if len(rows) < e.MinSamples {
			issues = append(issues, PartitionIssue{
				Ensemble:  "stage",
				Partition: bucket,
				Rows:      len(rows),
				Threshold: e.MinSamples,
			})
			continue
		}
		jobs = append(jobs, fitJob{bucket: bucket, rows: rows})
	}

	if len(jobs) == 0 {
		for i := range issues {
			issues[i].Fatal = true
		}
		return issues, fmt.Errorf("stage ensemble: no viable stage partitions: %w",
			&InsufficiencyError{Issues: issues})
	}

	// Bucket experts are independent; fit them concurrently.
	var wg sync.WaitGroup
	var mu sync.Mutex
	errs := make([]error, len(jobs))
	for ji, job := range jobs {
		wg.Add(1)
		go func(ji int, job fitJob) {
			defer wg.Done()
			X := make([][]float64, len(job.rows))
			y := make([]int, len(job.rows))
			for k, idx := range job.rows {
				X[k] = records[idx].Vector()
				y[k] = labels[idx]
			}
			m := NewLogit()
			if err := m.Fit(X, y); err != nil {
				errs[ji] = fmt.Errorf("stage expert %s: %w", job.bucket, err)
				return
			}
			mu.Lock()
			e.Experts[job.bucket] = m
			mu.Unlock()
		}(ji, job)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return issues, err
		}
	}

	log.Debug().
		Int("experts", len(e.Experts)).
		Int("skipped", len(issues)).
		Msg("stage experts trained")

	// Calibrator joins after every expert has finished.
	meta := make([][]float64, len(records))
	for i := range records {
		s, _, _ := e.rawScore(&records[i])
		meta[i] = []float64{s}
	}
	cal := NewLogit()
	if err := cal.Fit(meta, labels); err != nil {
		return issues, fmt.Errorf("stage calibrator: %w", err)
	}
	e.Calibrator = cal
	return issues, nil
}

// rawScore routes the record to its bucket expert, or to the documented
// average-of-trained-experts fallback when that bucket has no expert.
func (e *StageEnsemble) rawScore(r *schema.Record) (score float64, partition string, fellBack bool) {
	bucket := schema.CanonicalStage(r.FundingStage)
	if m, ok := e.Experts[bucket]; ok {
		return m.PredictProba(r.Vector()), bucket, false
	}
	sum := 0.0
	for _, stage := range schema.Stages {
		if m, ok := e.Experts[stage]; ok {
			sum += m.PredictProba(r.Vector())
		}
	}
	return sum / float64(len(e.Experts)), bucket, true
}

// Score returns the calibrated stage probability.
func (e *StageEnsemble) Score(r *schema.Record) float64 {
	raw, _, _ := e.rawScore(r)
	return e.Calibrator.PredictProba([]float64{raw})
}

// Detail exposes the routed partition and raw expert score for attribution.
func (e *StageEnsemble) Detail(r *schema.Record) EnsembleDetail {
	raw, partition, fellBack := e.rawScore(r)
	return EnsembleDetail{
		Partition:  partition,
		Raw:        map[string]float64{partition: raw},
		Fallback:   fellBack,
		Calibrated: e.Calibrator.PredictProba([]float64{raw}),
	}
}
