package engine

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Projection is a fitted linear dimensionality reduction. Components are
// stored row-major as a dim x k matrix so the artifact survives a JSON
// round-trip without gonum types.
type Projection struct {
	Dim        int         `json:"dim"`
	K          int         `json:"k"`
	Components [][]float64 `json:"components"`
}

// FitProjection computes the top-k principal components of the (already
// scaled) matrix X. If the decomposition degenerates, the projection falls
// back to passing through the first k columns so callers always get a usable
// transform.
func FitProjection(X [][]float64, k int) (*Projection, error) {
	n := len(X)
	if n == 0 {
		return nil, fmt.Errorf("projection: empty matrix")
	}
	dim := len(X[0])
	if k > dim {
		k = dim
	}
	if k > n {
		k = n
	}
	if k < 1 {
		k = 1
	}

	flat := make([]float64, 0, n*dim)
	for _, row := range X {
		flat = append(flat, row...)
	}
	m := mat.NewDense(n, dim, flat)

	var pc stat.PC
	if ok := pc.PrincipalComponents(m, nil); !ok {
		return passthroughProjection(dim, k), nil
	}

	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	_, cols := vecs.Dims()
	if cols < k {
		k = cols
	}

	p := &Projection{Dim: dim, K: k, Components: make([][]float64, dim)}
	for i := 0; i < dim; i++ {
		p.Components[i] = make([]float64, k)
		for j := 0; j < k; j++ {
			p.Components[i][j] = vecs.At(i, j)
		}
	}
	return p, nil
}

// passthroughProjection selects the first k coordinates unchanged.
func passthroughProjection(dim, k int) *Projection {
	p := &Projection{Dim: dim, K: k, Components: make([][]float64, dim)}
	for i := 0; i < dim; i++ {
		p.Components[i] = make([]float64, k)
		if i < k {
			p.Components[i][i] = 1
		}
	}
	return p
}

// Apply projects one row into the reduced space.
func (p *Projection) Apply(x []float64) []float64 {
	out := make([]float64, p.K)
	for i := 0; i < p.Dim && i < len(x); i++ {
		v := x[i]
		if v == 0 {
			continue
		}
		for j := 0; j < p.K; j++ {
			out[j] += v * p.Components[i][j]
		}
	}
	return out
}

// ApplyMatrix projects every row of X.
func (p *Projection) ApplyMatrix(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i, row := range X {
		out[i] = p.Apply(row)
	}
	return out
}
