package planar

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/optimize"
)

// Segment weights pull long dummy chains straight before anything else.
const (
	weightRealReal   = 1
	weightRealDummy  = 2
	weightDummyDummy = 8

	separationPenalty = 100
	anchorPenalty     = 1e-6
)

type segment struct {
	u, v int
	w    float64
}

// coordinates assigns x to every vertex. The objective is
//
//	Σ w(u,v)·(x_u − x_v)² + μ·Σ max(0, gap(a,b) − (x_b − x_a))² + ε·Σ x²
//
// over segments and adjacent layer neighbours, minimised with L-BFGS from
// an evenly spaced start. A final sweep enforces every gap exactly and the
// drawing is centred on the real vertices.
func (lg *layered) coordinates(sep float64) []float64 {
	n := len(lg.layer)
	if n == 0 {
		return nil
	}

	var segs []segment
	for u, ws := range lg.down {
		for _, v := range ws {
			segs = append(segs, segment{u, v, lg.weight(u, v)})
		}
	}

	x0 := make([]float64, n)
	for _, order := range lg.layers {
		offset := float64(len(order)-1) * sep / 2
		for i, v := range order {
			x0[v] = float64(i)*sep - offset
		}
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			var f float64
			for _, s := range segs {
				d := x[s.u] - x[s.v]
				f += s.w * d * d
			}
			for _, order := range lg.layers {
				for i := 1; i < len(order); i++ {
					a, b := order[i-1], order[i]
					if viol := lg.gap(a, b, sep) - (x[b] - x[a]); viol > 0 {
						f += separationPenalty * viol * viol
					}
				}
			}
			for _, xi := range x {
				f += anchorPenalty * xi * xi
			}
			return f
		},
		Grad: func(grad, x []float64) {
			for i, xi := range x {
				grad[i] = 2 * anchorPenalty * xi
			}
			for _, s := range segs {
				d := 2 * s.w * (x[s.u] - x[s.v])
				grad[s.u] += d
				grad[s.v] -= d
			}
			for _, order := range lg.layers {
				for i := 1; i < len(order); i++ {
					a, b := order[i-1], order[i]
					if viol := lg.gap(a, b, sep) - (x[b] - x[a]); viol > 0 {
						grad[a] += 2 * separationPenalty * viol
						grad[b] -= 2 * separationPenalty * viol
					}
				}
			}
		},
	}

	x := x0
	settings := &optimize.Settings{
		MajorIterations:   500,
		GradientThreshold: 1e-6,
	}
	// A failed line search still reports its best location.
	res, _ := optimize.Minimize(problem, slices.Clone(x0), settings, &optimize.LBFGS{})
	if res != nil && len(res.X) == n && finite(res.X) {
		x = res.X
	}

	for _, order := range lg.layers {
		for i := 1; i < len(order); i++ {
			a, b := order[i-1], order[i]
			if need := x[a] + lg.gap(a, b, sep); x[b] < need {
				x[b] = need
			}
		}
	}

	var mean float64
	for v := range lg.real {
		mean += x[v]
	}
	mean /= float64(max(lg.real, 1))
	for i := range x {
		x[i] -= mean
	}
	return x
}

func (lg *layered) weight(u, v int) float64 {
	switch du, dv := lg.isDummy(u), lg.isDummy(v); {
	case du && dv:
		return weightDummyDummy
	case du || dv:
		return weightRealDummy
	}
	return weightRealReal
}

// gap is the minimum distance between layer neighbours a and b. Dummies
// take half the separation.
func (lg *layered) gap(a, b int, sep float64) float64 {
	if lg.isDummy(a) || lg.isDummy(b) {
		return sep / 2
	}
	return sep
}

func finite(xs []float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
