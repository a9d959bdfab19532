package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRecorder(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewWithRegistry(registry)
	rec := NewRecorder(m)

	if rec == nil {
		t.Fatal("NewRecorder returned nil")
	}
	if rec.m != m {
		t.Error("Recorder does not wrap the provided metrics instance")
	}
}

func TestRecorder_Counters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewWithRegistry(registry)
	rec := NewRecorder(m)

	if v := testutil.ToFloat64(m.Predictions); v != 0 {
		t.Errorf("Expected initial predictions 0, got %f", v)
	}

	rec.PredictionsInc()
	rec.PredictionsInc()
	if v := testutil.ToFloat64(m.Predictions); v != 2 {
		t.Errorf("Expected 2 predictions after two increments, got %f", v)
	}

	rec.RoutingFallbackInc()
	if v := testutil.ToFloat64(m.RoutingFallbacks); v != 1 {
		t.Errorf("Expected 1 routing fallback, got %f", v)
	}

	rec.TrainingRunsInc()
	rec.TrainingFailuresInc()
	if v := testutil.ToFloat64(m.TrainingRuns); v != 1 {
		t.Errorf("Expected 1 training run, got %f", v)
	}
	if v := testutil.ToFloat64(m.TrainingFailures); v != 1 {
		t.Errorf("Expected 1 training failure, got %f", v)
	}
}

func TestRecorder_Observations(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewWithRegistry(registry)
	rec := NewRecorder(m)

	rec.PredictionScoreObserve(0.73)
	rec.ScoreLatencyObserve(0.002)
	rec.TrainingDurationObserve(12.5)

	// Histograms do not expose values directly; verify via the registry.
	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	seen := map[string]bool{}
	for _, f := range families {
		seen[f.GetName()] = true
	}
	for _, name := range []string{"prediction_scores", "score_latency_seconds", "training_duration_seconds"} {
		if !seen[name] {
			t.Errorf("Expected histogram %q to be registered and observed", name)
		}
	}
}

func TestRecorder_BundleAge(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewWithRegistry(registry)
	rec := NewRecorder(m)

	rec.SetBundleAge(time.Now().Add(-time.Hour))
	if v := testutil.ToFloat64(m.BundleAge); v < 3590 || v > 3700 {
		t.Errorf("Expected bundle age near 3600s, got %f", v)
	}
}
