package engine

import (
	"testing"

	"campscore/internal/schema"
)

func TestTraitVectorWidth(t *testing.T) {
	var r schema.Record
	want := 0
	for _, g := range traitGroupOrder {
		want += len(traitGroups[g])
	}
	if got := len(traitVector(&r)); got != want {
		t.Fatalf("traitVector width = %d, want %d", got, want)
	}
	for _, g := range traitGroupOrder {
		for _, name := range traitGroups[g] {
			if schema.Index(name) < 0 {
				t.Errorf("trait group %s references unknown field %q", g, name)
			}
		}
	}
}

func TestDNAEmptySuccessSide(t *testing.T) {
	// 5 positives stay under the clustering minimum, so the success side must
	// be left empty and its distance sub-features pinned to the sentinel.
	records, _ := makeDataset(100, 31)
	labels := make([]int, len(records))
	for i := 0; i < 5; i++ {
		labels[i] = 1
	}

	a := newDNAAnalyzer(testParams())
	if err := a.train(records, labels); err != nil {
		t.Fatalf("train: %v", err)
	}
	if !a.Success.Empty() {
		t.Fatalf("success side has %d centroids, want empty", len(a.Success.Centroids))
	}
	if a.Failure.Empty() {
		t.Fatal("failure side unexpectedly empty")
	}

	for i := 0; i < 10; i++ {
		d := a.Detail(&records[i])
		if d.Raw["success_min_dist"] != 0 || d.Raw["success_mean_dist"] != 0 || d.Raw["success_nearest"] != 0 {
			t.Fatalf("record %d success features = %v, want sentinel zeros", i, d.Raw)
		}
		if d.Raw["failure_mean_dist"] <= 0 {
			t.Fatalf("record %d failure mean dist = %v, want positive", i, d.Raw["failure_mean_dist"])
		}
	}
}

func TestDNAScoreFrozenArtifacts(t *testing.T) {
	records, labels := makeDataset(300, 13)
	a := newDNAAnalyzer(testParams())
	if err := a.train(records, labels); err != nil {
		t.Fatalf("train: %v", err)
	}

	probe := records[7]
	first := a.Score(&probe)
	for i := 0; i < 5; i++ {
		if got := a.Score(&probe); got != first {
			t.Fatalf("score drifted from %v to %v on call %d", first, got, i)
		}
	}
}
