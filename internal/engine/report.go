package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Params tunes the training run. Zero values fall back to the defaults used
// in production config.
type Params struct {
	MinTrainingRows  int `yaml:"minTrainingRows" json:"min_training_rows"`
	MinBucketSamples int `yaml:"minBucketSamples" json:"min_bucket_samples"`
	MinSectorSamples int `yaml:"minSectorSamples" json:"min_sector_samples"`
	ProjectionDims   int `yaml:"projectionDims" json:"projection_dims"`
	MaxClusters      int `yaml:"maxClusters" json:"max_clusters"`
	MinClusterRows   int `yaml:"minClusterRows" json:"min_cluster_rows"`

	// Metrics is optional; a nil recorder disables instrumentation.
	Metrics Recorder `yaml:"-" json:"-"`
}

func (p Params) withDefaults() Params {
	if p.MinTrainingRows == 0 {
		p.MinTrainingRows = 100
	}
	if p.MinBucketSamples == 0 {
		p.MinBucketSamples = 100
	}
	if p.MinSectorSamples == 0 {
		p.MinSectorSamples = 100
	}
	if p.ProjectionDims == 0 {
		p.ProjectionDims = 10
	}
	if p.MaxClusters == 0 {
		p.MaxClusters = 5
	}
	if p.MinClusterRows == 0 {
		p.MinClusterRows = 10
	}
	return p
}

// Recorder is the metrics surface the engine reports into. The concrete
// implementation lives in internal/metrics; tests use mocks.
type Recorder interface {
	PredictionsInc()
	PredictionScoreObserve(float64)
	ScoreLatencyObserve(float64)
	RoutingFallbackInc()
	TrainingRunsInc()
	TrainingFailuresInc()
	TrainingDurationObserve(float64)
}

// PartitionIssue records one partition that could not support its own expert.
type PartitionIssue struct {
	Ensemble  string `json:"ensemble"`
	Partition string `json:"partition"`
	Rows      int    `json:"rows"`
	Threshold int    `json:"threshold"`
	Fatal     bool   `json:"fatal"`
}

func (i PartitionIssue) String() string {
	sev := "skipped"
	if i.Fatal {
		sev = "fatal"
	}
	return fmt.Sprintf("%s/%s: %d rows < threshold %d (%s)", i.Ensemble, i.Partition, i.Rows, i.Threshold, sev)
}

// Report is the itemized outcome of a training run. It is embedded in the
// persisted bundle so skipped partitions are never lost silently.
type Report struct {
	TrainedAt time.Time        `json:"trained_at"`
	Rows      int              `json:"rows"`
	Positives int              `json:"positives"`
	Skipped   []PartitionIssue `json:"skipped,omitempty"`
}

// ErrInsufficientData marks every training-data-insufficiency failure.
var ErrInsufficientData = errors.New("insufficient training data")

// InsufficiencyError aggregates every partition and threshold that failed a
// training run into one actionable report.
type InsufficiencyError struct {
	Issues []PartitionIssue
}

func (e *InsufficiencyError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		parts[i] = is.String()
	}
	return fmt.Sprintf("%v: %s", ErrInsufficientData, strings.Join(parts, "; "))
}

func (e *InsufficiencyError) Unwrap() error { return ErrInsufficientData }
