package engine

import (
	"encoding/json"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitProjectionReducesWidth(t *testing.T) {
	rnd := rand.New(rand.NewSource(9))
	X := make([][]float64, 100)
	for i := range X {
		// Two latent factors spread across six observed columns.
		a, b := rnd.NormFloat64(), rnd.NormFloat64()
		X[i] = []float64{
			a, 2 * a, a + 0.01*rnd.NormFloat64(),
			b, -b, b + 0.01*rnd.NormFloat64(),
		}
	}

	p, err := FitProjection(X, 2)
	require.NoError(t, err)
	assert.Equal(t, 6, p.Dim)
	assert.Equal(t, 2, p.K)

	out := p.Apply(X[0])
	require.Len(t, out, 2)
	for _, v := range out {
		assert.False(t, math.IsNaN(v))
	}
}

func TestFitProjectionClampsK(t *testing.T) {
	X := [][]float64{{1, 2, 3}, {4, 5, 6}, {7, 8, 10}}

	p, err := FitProjection(X, 10)
	require.NoError(t, err)
	assert.LessOrEqual(t, p.K, 3)

	p, err = FitProjection(X, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, p.K)
}

func TestFitProjectionEmptyMatrix(t *testing.T) {
	_, err := FitProjection(nil, 3)
	require.Error(t, err)
}

func TestPassthroughProjection(t *testing.T) {
	p := passthroughProjection(4, 2)
	out := p.Apply([]float64{10, 20, 30, 40})
	assert.Equal(t, []float64{10, 20}, out)
}

func TestProjectionJSONRoundTrip(t *testing.T) {
	rnd := rand.New(rand.NewSource(21))
	X := make([][]float64, 50)
	for i := range X {
		X[i] = []float64{rnd.NormFloat64(), rnd.NormFloat64(), rnd.NormFloat64()}
	}
	p, err := FitProjection(X, 2)
	require.NoError(t, err)

	blob, err := json.Marshal(p)
	require.NoError(t, err)
	var back Projection
	require.NoError(t, json.Unmarshal(blob, &back))

	row := []float64{0.5, -1.5, 2.5}
	assert.Equal(t, p.Apply(row), back.Apply(row))
}
