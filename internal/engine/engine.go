package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"campscore/internal/schema"
)

// Engine is a fully-trained prediction engine. It is immutable after Train
// or Restore, so any number of goroutines may call Score concurrently.
// Retraining builds a fresh Engine; callers swap the value atomically.
type Engine struct {
	params Params

	stage    *StageEnsemble
	temporal *TemporalEnsemble
	industry *IndustryEnsemble
	dna      *DNAAnalyzer
	combiner *Logit

	report *Report
}

// EnsembleDetail is one sub-ensemble's contribution to a score, exposed for
// downstream attribution.
type EnsembleDetail struct {
	Partition  string             `json:"partition,omitempty"`
	Raw        map[string]float64 `json:"raw"`
	Fallback   bool               `json:"fallback,omitempty"`
	Calibrated float64            `json:"calibrated"`
}

// Explanation carries the final probability together with every intermediate
// the explanation layer needs.
type Explanation struct {
	Probability float64                   `json:"probability"`
	Outputs     [4]float64                `json:"ensemble_outputs"` // stage, temporal, industry, dna
	Details     map[string]EnsembleDetail `json:"details"`
}

// Train fits the four sub-ensembles concurrently, then stacks their
// calibrated outputs into the combiner. Any sub-ensemble failure aborts the
// whole run: a partially-usable engine is never returned.
func Train(records []schema.Record, labels []int, params Params) (*Engine, error) {
	params = params.withDefaults()
	rec := params.Metrics
	start := time.Now()
	if rec != nil {
		rec.TrainingRunsInc()
		defer func() { rec.TrainingDurationObserve(time.Since(start).Seconds()) }()
	}

	fail := func(err error) (*Engine, error) {
		if rec != nil {
			rec.TrainingFailuresInc()
		}
		return nil, err
	}

	if len(records) != len(labels) {
		return fail(fmt.Errorf("train: %d records vs %d labels", len(records), len(labels)))
	}
	if len(records) < params.MinTrainingRows {
		return fail(fmt.Errorf("train: %d rows below minimum %d: %w",
			len(records), params.MinTrainingRows, ErrInsufficientData))
	}
	// Work on a copy so canonicalization never mutates caller data.
	records = append([]schema.Record(nil), records...)
	positives := 0
	for i := range records {
		schema.Canonicalize(&records[i])
		if labels[i] == 1 {
			positives++
		}
	}
	if positives == 0 || positives == len(labels) {
		return fail(fmt.Errorf("train: labels are single-class (%d positives of %d): %w",
			positives, len(labels), ErrInsufficientData))
	}

	eng := &Engine{
		params:   params,
		stage:    newStageEnsemble(params.MinBucketSamples),
		temporal: newTemporalEnsemble(),
		industry: newIndustryEnsemble(params.MinSectorSamples),
		dna:      newDNAAnalyzer(params),
	}

	// The four sub-ensembles are mutually independent; train them in
	// parallel and join before the combiner.
	var wg sync.WaitGroup
	var stageIssues, industryIssues []PartitionIssue
	errs := make([]error, 4)

	wg.Add(4)
	go func() {
		defer wg.Done()
		stageIssues, errs[0] = eng.stage.train(records, labels)
	}()
	go func() {
		defer wg.Done()
		errs[1] = eng.temporal.train(records, labels)
	}()
	go func() {
		defer wg.Done()
		industryIssues, errs[2] = eng.industry.train(records, labels)
	}()
	go func() {
		defer wg.Done()
		errs[3] = eng.dna.train(records, labels)
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return fail(fmt.Errorf("train: %w", err))
		}
	}

	meta := make([][]float64, len(records))
	for i := range records {
		v := eng.outputVector(&records[i])
		meta[i] = v[:]
	}
	combiner := NewLogit()
	if err := combiner.Fit(meta, labels); err != nil {
		return fail(fmt.Errorf("train: combiner: %w", err))
	}
	eng.combiner = combiner

	eng.report = &Report{
		TrainedAt: time.Now().UTC(),
		Rows:      len(records),
		Positives: positives,
		Skipped:   append(stageIssues, industryIssues...),
	}

	log.Info().
		Int("rows", len(records)).
		Int("positives", positives).
		Int("skipped_partitions", len(eng.report.Skipped)).
		Dur("elapsed", time.Since(start)).
		Msg("engine trained")

	return eng, nil
}

// outputVector builds the 4-element ensemble output vector, the sole input
// of the combiner. Order: stage, temporal, industry, dna.
func (e *Engine) outputVector(r *schema.Record) [4]float64 {
	return [4]float64{
		e.stage.Score(r),
		e.temporal.Score(r),
		e.industry.Score(r),
		e.dna.Score(r),
	}
}

// Score returns the final success probability in [0,1]. It never fails for a
// well-formed record: unknown categoricals resolve through the documented
// fallback routing.
func (e *Engine) Score(r schema.Record) float64 {
	start := time.Now()
	schema.Canonicalize(&r)
	v := e.outputVector(&r)
	p := e.combiner.PredictProba(v[:])

	if rec := e.params.Metrics; rec != nil {
		rec.PredictionsInc()
		rec.PredictionScoreObserve(p)
		rec.ScoreLatencyObserve(time.Since(start).Seconds())
		if _, _, fellBack := e.stage.rawScore(&r); fellBack {
			rec.RoutingFallbackInc()
		}
	}
	return p
}

// Explain returns the final probability plus the ensemble output vector and
// each ensemble's internal per-partition scalars.
func (e *Engine) Explain(r schema.Record) Explanation {
	schema.Canonicalize(&r)
	details := map[string]EnsembleDetail{
		"stage":    e.stage.Detail(&r),
		"temporal": e.temporal.Detail(&r),
		"industry": e.industry.Detail(&r),
		"dna":      e.dna.Detail(&r),
	}
	v := [4]float64{
		details["stage"].Calibrated,
		details["temporal"].Calibrated,
		details["industry"].Calibrated,
		details["dna"].Calibrated,
	}
	return Explanation{
		Probability: e.combiner.PredictProba(v[:]),
		Outputs:     v,
		Details:     details,
	}
}

// Report returns the metadata of the training run that produced this engine.
func (e *Engine) Report() *Report {
	return e.report
}
