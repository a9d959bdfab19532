package metrics

import "time"

// Recorder adapts Metrics to the method set the engine records through.
// Keeping the adapter here avoids an import cycle: the engine declares the
// interface, this package satisfies it structurally.
type Recorder struct {
	m *Metrics
}

// NewRecorder wraps a Metrics instance for consumption by the engine.
func NewRecorder(m *Metrics) *Recorder {
	return &Recorder{m: m}
}

func (r *Recorder) PredictionsInc()                  { r.m.Predictions.Inc() }
func (r *Recorder) PredictionScoreObserve(v float64) { r.m.PredictionScores.Observe(v) }
func (r *Recorder) ScoreLatencyObserve(v float64)    { r.m.ScoreLatency.Observe(v) }
func (r *Recorder) RoutingFallbackInc()              { r.m.RoutingFallbacks.Inc() }
func (r *Recorder) TrainingRunsInc()                 { r.m.TrainingRuns.Inc() }
func (r *Recorder) TrainingFailuresInc()             { r.m.TrainingFailures.Inc() }
func (r *Recorder) TrainingDurationObserve(v float64) {
	r.m.TrainingDuration.Observe(v)
}

// SetBundleAge records the age of the active bundle.
func (r *Recorder) SetBundleAge(createdAt time.Time) {
	r.m.BundleAge.Set(time.Since(createdAt).Seconds())
}
