package pso

import "math"

// RandPop generates n randomly positioned points in the boxed bounds defined
// by low and up.  The number of dimensions is equal to len(low).  Returned
// points have their values initialized to +infinity.  Coordinates are drawn
// point by point, dimension by dimension, so a fixed-seed rng reproduces the
// same population; a nil rng falls back to the package Rand.
func RandPop(n int, low, up []float64, rng Rng) []Point {
	if len(low) != len(up) {
		panic("pso: low and up vectors are not same length")
	}
	if rng == nil {
		rng = Rand
	}

	ndims := len(low)

	points := make([]Point, n)
	for i := 0; i < n; i++ {
		pos := make([]float64, ndims)
		for j := range pos {
			pos[j] = low[j] + rng.Float64()*(up[j]-low[j])
		}
		points[i] = NewPoint(pos, math.Inf(1))
	}
	return points
}
