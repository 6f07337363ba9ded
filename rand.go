package pso

import "math/rand"

// Rand is the random number source used by the pso package and its
// subpackages unless overridden per component.  Replace it (e.g. with a
// differently seeded generator) before building populations or solvers to
// change run determinism globally.
var Rand Rng = rand.New(rand.NewSource(1))

type Rng interface {
	Float64() float64
}

func RandFloat() float64 { return Rand.Float64() }
