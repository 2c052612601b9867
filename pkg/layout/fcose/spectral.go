package fcose

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r2"
)

// maxSpectralNodes bounds the dense eigendecomposition.
const maxSpectralNodes = 1500

// spectral places n nodes on the Laplacian eigenvectors of the second and
// third smallest eigenvalues, scaled so the drawing spans roughly
// ideal*sqrt(n), plus jitter. Falls back to a seeded scatter when the
// decomposition is not available.
func spectral(n int, edges [][2]int, ideal float64, rnd *rand.Rand) []r2.Vec {
	pos := make([]r2.Vec, n)
	switch n {
	case 1:
		return pos
	case 2:
		pos[0] = r2.Vec{X: -ideal / 2}
		pos[1] = r2.Vec{X: ideal / 2}
		return pos
	}

	extent := ideal * math.Sqrt(float64(n))
	jitter := func() float64 { return (rnd.Float64() - 0.5) * ideal * 0.1 }

	xs, ys, ok := laplacianCoords(n, edges)
	if !ok {
		for i := range pos {
			pos[i] = r2.Vec{X: (rnd.Float64() - 0.5) * extent, Y: (rnd.Float64() - 0.5) * extent}
		}
		return pos
	}
	sx, sy := spread(xs), spread(ys)
	for i := range pos {
		pos[i] = r2.Vec{X: xs[i]/sx*extent/2 + jitter(), Y: ys[i]/sy*extent/2 + jitter()}
	}
	return pos
}

func laplacianCoords(n int, edges [][2]int) (xs, ys []float64, ok bool) {
	if n > maxSpectralNodes {
		return nil, nil, false
	}
	lap := mat.NewSymDense(n, nil)
	for _, e := range edges {
		a, b := e[0], e[1]
		lap.SetSym(a, b, lap.At(a, b)-1)
		lap.SetSym(a, a, lap.At(a, a)+1)
		lap.SetSym(b, b, lap.At(b, b)+1)
	}
	var eig mat.EigenSym
	if !eig.Factorize(lap, true) {
		return nil, nil, false
	}
	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	xs = mat.Col(nil, 1, &vecs)
	ys = mat.Col(nil, 2, &vecs)
	return xs, ys, true
}

// spread returns the max absolute value of v, or 1 when v is all zeros.
func spread(v []float64) float64 {
	m := 0.0
	for _, x := range v {
		m = math.Max(m, math.Abs(x))
	}
	if m == 0 {
		return 1
	}
	return m
}
