package engine

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// ClusterSet holds the centroids discovered for one label side. The empty
// variant is explicit: distance features against an empty set are the
// sentinel 0, never an index into a missing centroid.
type ClusterSet struct {
	Centroids [][]float64 `json:"centroids"`
}

// Empty reports whether the set has no centroids.
func (cs *ClusterSet) Empty() bool {
	return cs == nil || len(cs.Centroids) == 0
}

// kmeansSeed fixes the initialization stream so that training the same rows
// always yields the same centroids, regardless of which goroutine runs it.
const kmeansSeed = 1

// fitKMeans clusters the projected rows into k centroids using k-means++
// initialization and Lloyd iterations. k is clamped to the row count.
func fitKMeans(X [][]float64, k int) *ClusterSet {
	if len(X) == 0 || k < 1 {
		return &ClusterSet{}
	}
	if k > len(X) {
		k = len(X)
	}
	dim := len(X[0])
	rng := rand.New(rand.NewSource(kmeansSeed))

	centroids := initPlusPlus(X, k, rng)
	assign := make([]int, len(X))

	for iter := 0; iter < 100; iter++ {
		changed := false
		for i, row := range X {
			best, bestD := 0, math.Inf(1)
			for c, cent := range centroids {
				d := sqDistance(row, cent)
				if d < bestD {
					best, bestD = c, d
				}
			}
			if assign[i] != best {
				assign[i] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		counts := make([]int, k)
		sums := make([][]float64, k)
		for c := range sums {
			sums[c] = make([]float64, dim)
		}
		for i, row := range X {
			c := assign[i]
			counts[c]++
			floats.Add(sums[c], row)
		}
		for c := range centroids {
			if counts[c] == 0 {
				continue // keep previous position for an orphaned centroid
			}
			for j := range sums[c] {
				sums[c][j] /= float64(counts[c])
			}
			centroids[c] = sums[c]
		}
	}

	return &ClusterSet{Centroids: centroids}
}

func initPlusPlus(X [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	first := append([]float64(nil), X[rng.Intn(len(X))]...)
	centroids = append(centroids, first)

	dists := make([]float64, len(X))
	for len(centroids) < k {
		total := 0.0
		for i, row := range X {
			d := math.Inf(1)
			for _, cent := range centroids {
				if sd := sqDistance(row, cent); sd < d {
					d = sd
				}
			}
			dists[i] = d
			total += d
		}
		if total == 0 {
			// All remaining points coincide with a centroid.
			centroids = append(centroids, append([]float64(nil), X[0]...))
			continue
		}
		target := rng.Float64() * total
		acc := 0.0
		pick := len(X) - 1
		for i, d := range dists {
			acc += d
			if acc >= target {
				pick = i
				break
			}
		}
		centroids = append(centroids, append([]float64(nil), X[pick]...))
	}
	return centroids
}

func sqDistance(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return s
}

// distanceFeatures derives the three distance sub-features against one
// centroid set: minimum distance, mean distance and the index of the nearest
// centroid. An empty set yields the sentinel 0 for all three.
func distanceFeatures(x []float64, cs *ClusterSet) (minD, meanD, nearest float64) {
	if cs.Empty() {
		return 0, 0, 0
	}
	minD = math.Inf(1)
	sum := 0.0
	for i, cent := range cs.Centroids {
		d := math.Sqrt(sqDistance(x, cent))
		sum += d
		if d < minD {
			minD = d
			nearest = float64(i)
		}
	}
	meanD = sum / float64(len(cs.Centroids))
	return minD, meanD, nearest
}
