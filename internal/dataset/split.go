package dataset

import (
	"math"
	"math/rand"

	"campscore/internal/schema"
)

// Split shuffles and partitions a labeled dataset into train and holdout
// sets. The shuffle is seeded so splits are reproducible across runs.
func Split(records []schema.Record, labels []int, holdoutRatio float64, seed int64) (
	trainX []schema.Record, trainY []int, testX []schema.Record, testY []int,
) {
	if holdoutRatio <= 0 || holdoutRatio >= 1 {
		holdoutRatio = 0.2
	}
	rnd := rand.New(rand.NewSource(seed))
	indices := rnd.Perm(len(records))

	split := int(math.Round(float64(len(records)) * (1 - holdoutRatio)))
	for i, idx := range indices {
		if i < split {
			trainX = append(trainX, records[idx])
			trainY = append(trainY, labels[idx])
		} else {
			testX = append(testX, records[idx])
			testY = append(testY, labels[idx])
		}
	}
	return trainX, trainY, testX, testY
}
