package pso

import (
	"fmt"
	"math"
	"math/rand"
)

// Config collects the parameters of a standard swarm run.  It is a plain
// value: constructors consume it and nothing holds process-wide state, so two
// runs with different configs can coexist in one program.
type Config struct {
	NumParticles int `yaml:"particles"`
	NumDims      int `yaml:"dims"`
	MaxIter      int `yaml:"max_iter"`

	Inertia   float64 `yaml:"inertia"`
	Cognition float64 `yaml:"cognition"`
	Social    float64 `yaml:"social"`

	// Scalar box bounds, expanded to every dimension by LowUp.
	LowerBound float64 `yaml:"lower_bound"`
	UpperBound float64 `yaml:"upper_bound"`

	// KnownMin and Tol enable the early convergence stop: the run converges
	// once |best - KnownMin| <= Tol.  They must be set together.
	KnownMin *float64 `yaml:"known_min,omitempty"`
	Tol      *float64 `yaml:"tol,omitempty"`

	// VmaxFrac > 0 clamps each velocity component to
	// VmaxFrac*(UpperBound-LowerBound).  Zero or negative disables clamping.
	VmaxFrac float64 `yaml:"vmax_frac,omitempty"`

	// Seed for a dedicated random source.  Zero means use the package-level
	// Rand.
	Seed int64 `yaml:"seed,omitempty"`

	// MaxNoImprove stops the run as exhausted after this many consecutive
	// iterations without strict global-best improvement.  Zero disables the
	// stagnation stop.
	MaxNoImprove int `yaml:"max_no_improve,omitempty"`
}

// DefaultConfig returns the reference Michalewicz run: 100 particles in 5
// dimensions over [0, pi], 1000 iterations, w=0.1, c1=c2=2, converging within
// 1e-3 of the known minimum -4.687658.
func DefaultConfig() Config {
	knownMin := -4.687658
	tol := 1e-3
	return Config{
		NumParticles: 100,
		NumDims:      5,
		MaxIter:      1000,
		Inertia:      0.1,
		Cognition:    2,
		Social:       2,
		LowerBound:   0,
		UpperBound:   math.Pi,
		KnownMin:     &knownMin,
		Tol:          &tol,
	}
}

// Validate checks the config and returns the first violation found, wrapped
// around one of the package sentinel errors.
func (c Config) Validate() error {
	if c.NumParticles <= 0 {
		return fmt.Errorf("%w: got %v", ErrBadSwarmSize, c.NumParticles)
	}
	if c.NumDims <= 0 {
		return fmt.Errorf("%w: got %v", ErrBadDims, c.NumDims)
	}
	if c.MaxIter <= 0 {
		return fmt.Errorf("%w: got %v", ErrBadIter, c.MaxIter)
	}
	if !(c.LowerBound < c.UpperBound) {
		return fmt.Errorf("%w: got [%v, %v]", ErrBadBounds, c.LowerBound, c.UpperBound)
	}
	if (c.KnownMin == nil) != (c.Tol == nil) {
		return ErrTargetPair
	}
	if c.Tol != nil && !(*c.Tol >= 0) {
		return fmt.Errorf("%w: got %v", ErrBadTol, *c.Tol)
	}
	return nil
}

// LowUp expands the scalar bounds to per-dimension vectors.
func (c Config) LowUp() (low, up []float64) {
	low = make([]float64, c.NumDims)
	up = make([]float64, c.NumDims)
	for i := range low {
		low[i] = c.LowerBound
		up[i] = c.UpperBound
	}
	return low, up
}

// Vmax returns the per-dimension velocity clamp implied by VmaxFrac, or nil
// when clamping is disabled.
func (c Config) Vmax() []float64 {
	if c.VmaxFrac <= 0 {
		return nil
	}
	vs := make([]float64, c.NumDims)
	for i := range vs {
		vs[i] = c.VmaxFrac * (c.UpperBound - c.LowerBound)
	}
	return vs
}

// NewRng returns the random source implied by the config: a generator seeded
// with Seed, or the shared package Rand when Seed is zero.
func (c Config) NewRng() Rng {
	if c.Seed == 0 {
		return Rand
	}
	return rand.New(rand.NewSource(c.Seed))
}
