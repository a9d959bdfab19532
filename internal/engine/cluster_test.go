package engine

import (
	"math"
	"math/rand"
	"testing"
)

func clusteredRows(seed int64, n int) [][]float64 {
	rnd := rand.New(rand.NewSource(seed))
	rows := make([][]float64, 0, n)
	centers := [][]float64{{0, 0}, {10, 10}, {-10, 5}}
	for i := 0; i < n; i++ {
		c := centers[i%len(centers)]
		rows = append(rows, []float64{
			c[0] + rnd.NormFloat64(),
			c[1] + rnd.NormFloat64(),
		})
	}
	return rows
}

func TestFitKMeansDeterministic(t *testing.T) {
	rows := clusteredRows(3, 90)
	a := fitKMeans(rows, 3)
	b := fitKMeans(rows, 3)
	if len(a.Centroids) != len(b.Centroids) {
		t.Fatalf("centroid counts differ: %d vs %d", len(a.Centroids), len(b.Centroids))
	}
	for i := range a.Centroids {
		for j := range a.Centroids[i] {
			if a.Centroids[i][j] != b.Centroids[i][j] {
				t.Fatalf("centroid %d dim %d differs: %v vs %v",
					i, j, a.Centroids[i][j], b.Centroids[i][j])
			}
		}
	}
}

func TestFitKMeansFindsCenters(t *testing.T) {
	rows := clusteredRows(5, 150)
	cs := fitKMeans(rows, 3)
	if len(cs.Centroids) != 3 {
		t.Fatalf("got %d centroids, want 3", len(cs.Centroids))
	}
	// Each true center should have a fitted centroid nearby.
	for _, center := range [][]float64{{0, 0}, {10, 10}, {-10, 5}} {
		best := math.Inf(1)
		for _, cent := range cs.Centroids {
			if d := math.Sqrt(sqDistance(center, cent)); d < best {
				best = d
			}
		}
		if best > 2 {
			t.Errorf("no centroid within 2 of true center %v (nearest %v)", center, best)
		}
	}
}

func TestFitKMeansClampsK(t *testing.T) {
	rows := [][]float64{{1, 1}, {2, 2}}
	cs := fitKMeans(rows, 5)
	if len(cs.Centroids) != 2 {
		t.Errorf("got %d centroids, want k clamped to 2", len(cs.Centroids))
	}
}

func TestFitKMeansEmptyInput(t *testing.T) {
	if cs := fitKMeans(nil, 3); !cs.Empty() {
		t.Error("empty input should yield an empty set")
	}
	if cs := fitKMeans([][]float64{{1}}, 0); !cs.Empty() {
		t.Error("k < 1 should yield an empty set")
	}
}

func TestDistanceFeaturesEmptySet(t *testing.T) {
	minD, meanD, nearest := distanceFeatures([]float64{1, 2}, &ClusterSet{})
	if minD != 0 || meanD != 0 || nearest != 0 {
		t.Errorf("empty set features = (%v, %v, %v), want sentinel zeros", minD, meanD, nearest)
	}
	minD, meanD, nearest = distanceFeatures([]float64{1, 2}, nil)
	if minD != 0 || meanD != 0 || nearest != 0 {
		t.Errorf("nil set features = (%v, %v, %v), want sentinel zeros", minD, meanD, nearest)
	}
}

func TestDistanceFeatures(t *testing.T) {
	cs := &ClusterSet{Centroids: [][]float64{{0, 0}, {3, 4}}}
	minD, meanD, nearest := distanceFeatures([]float64{3, 4}, cs)
	if minD != 0 {
		t.Errorf("minD = %v, want 0", minD)
	}
	if nearest != 1 {
		t.Errorf("nearest = %v, want 1", nearest)
	}
	if meanD != 2.5 {
		t.Errorf("meanD = %v, want 2.5", meanD)
	}
}
