package swarm

import (
	"database/sql"
	"math"

	"github.com/swarmlab/pso"
	"gonum.org/v1/gonum/stat"
)

// These params are calculated using a constriction factor originally
// described in:
//
//     Clerc and M.  “The swarm and the queen: towards a deterministic and
//     adaptive particle swarm optimization” Proc. 1999 Congress on
//     Evolutionary Computation, pp. 1951-1957
//
// The cognition and social parameters correspond to c1 and c2 values of 2.05
// that have been multiplied by their constriction coeffient - i.e.
// DefaultSocial = Constriction(2.05, 2.05)*2.05.  DefaultInertia is set equal
// to the constriction coefficient.
const (
	DefaultCognition = 1.496179765663133
	DefaultSocial    = 1.496179765663133
	DefaultInertia   = 0.7298437881283576
)

// Constriction calculates the constriction coefficient for the given c1 and
// c2 for the particle velocity equation:
//
//    v_next = k(v_curr + c1*rand*(p_glob-x) + c2*rand*(p_personal-x))
//
//    or
//
//    v_next = w*v_curr + b1*rand*(p_glob-x) + b2*rand*(p_personal-x)
//
//    (with constriction coefficient multiplied through.
//
// c1+c2 should usually be greater than (but close to) 4.  'w = k' is often
// referred to as the inertia in the traditional swarm equation
func Constriction(c1, c2 float64) float64 {
	phi := c1 + c2
	return 2 / math.Abs(2-phi-math.Sqrt(phi*phi-4*phi))
}

type Particle struct {
	Id int
	pso.Point
	Vel  []float64
	Best pso.Point
}

// UpdateVelocity recomputes the particle's velocity from its current
// velocity, its personal best, and the swarm-wide best gbest.  If vmax is
// non-nil, each velocity component is truncated to |v[i]| <= vmax[i].
func (p *Particle) UpdateVelocity(gbest pso.Point, inertia, cognition, social float64, vmax []float64, rng pso.Rng) {
	for i, currv := range p.Vel {
		// random numbers r1 and r2 MUST go inside this loop and be generated
		// uniquely for each dimension of p's velocity.
		r1 := rng.Float64()
		r2 := rng.Float64()
		p.Vel[i] = inertia*currv +
			cognition*r1*(p.Best.At(i)-p.At(i)) +
			social*r2*(gbest.At(i)-p.At(i))
		if vmax != nil && math.Abs(p.Vel[i]) > vmax[i] {
			p.Vel[i] = math.Copysign(vmax[i], p.Vel[i])
		}
	}
}

// UpdatePosition moves the particle by its velocity and truncates the new
// position into the box [low, up].  Only the position is clamped; the
// velocity keeps whatever value the update gave it.  The moved point's value
// is +infinity until the next evaluation fills it in.
func (p *Particle) UpdatePosition(low, up []float64) {
	pos := make([]float64, p.Len())
	for i := range pos {
		pos[i] = p.At(i) + p.Vel[i]
		if pos[i] < low[i] {
			pos[i] = low[i]
		} else if pos[i] > up[i] {
			pos[i] = up[i]
		}
	}
	p.Point = pso.NewPoint(pos, math.Inf(1))
}

// Update records the evaluation result for the particle's current position.
// The personal best is overwritten only on strict improvement; an equal value
// leaves it alone.
func (p *Particle) Update(newp pso.Point) {
	p.Val = newp.Val
	if newp.Val < p.Best.Val {
		p.Best = newp
	}
}

type Population []*Particle

// NewPopulation wraps the given points into particles at rest: velocities are
// zero and each particle's personal best starts at its initial point.  Values
// are not computed here; Iterator.Init performs the initial evaluation.
func NewPopulation(points []pso.Point) Population {
	pop := make(Population, len(points))
	for i, p := range points {
		pop[i] = &Particle{
			Id:    i,
			Point: p,
			Best:  p,
			Vel:   make([]float64, p.Len()),
		}
	}
	return pop
}

// NewPopulationRand creates a population of n randomly positioned particles
// uniformly distributed in the box-bounds described by low and up, drawing
// coordinates from rng (nil means the package-level pso.Rand).
func NewPopulationRand(n int, low, up []float64, rng pso.Rng) Population {
	return NewPopulation(pso.RandPop(n, low, up, rng))
}

func (pop Population) Points() []pso.Point {
	points := make([]pso.Point, 0, len(pop))
	for _, p := range pop {
		points = append(points, p.Point)
	}
	return points
}

// Best returns the particle with the lowest personal-best value.  Ties keep
// the earlier particle.
func (pop Population) Best() *Particle {
	if len(pop) == 0 {
		return nil
	}

	best := pop[0]
	for _, p := range pop[1:] {
		if p.Best.Val < best.Best.Val {
			best = p
		}
	}
	return best
}

// MeanBest returns the mean personal-best value over the population.
func (pop Population) MeanBest() float64 {
	vals := make([]float64, len(pop))
	for i, p := range pop {
		vals[i] = p.Best.Val
	}
	return stat.Mean(vals, nil)
}

// Diversity returns the mean euclidean distance over all unordered particle
// pairs - a collapse measure: it is never negative and hits exactly zero iff
// every particle occupies the same position.  The scan is quadratic in the
// population size.
func (pop Population) Diversity() float64 {
	if len(pop) < 2 {
		return 0
	}

	tot := 0.0
	npairs := 0
	for i, p1 := range pop {
		for _, p2 := range pop[i+1:] {
			tot += pso.L2Dist(p1.Point, p2.Point)
			npairs++
		}
	}
	return tot / float64(npairs)
}

type Option func(*Iterator)

func Vmax(vmaxes []float64) Option {
	return func(it *Iterator) {
		it.Vmax = vmaxes
	}
}

func VmaxAll(vmax float64) Option {
	return func(it *Iterator) {
		it.Vmax = make([]float64, len(it.Low))
		for i := range it.Vmax {
			it.Vmax[i] = vmax
		}
	}
}

// VmaxBounds sets the maximum particle speed for each dimension equal to
// the bounded range for the problem - i.e. up[i]-low[i] for each dimension.
// This is a good rule of thumb given in:
//
//     Eberhart, R.C.; Yuhui Shi, "Particle swarm optimization: developments,
//     applications and resources," Evolutionary Computation, 2001. Proceedings of
//     the 2001 Congress on , vol.1, no., pp.81,86 vol. 1, 2001 doi:
//     10.1109/CEC.2001.934374
func VmaxBounds(low, up []float64) Option {
	return func(it *Iterator) {
		it.Vmax = vmaxfrombounds(low, up)
	}
}

func LearnFactors(cognition, social float64) Option {
	return func(it *Iterator) {
		it.Cognition = cognition
		it.Social = social
	}
}

// LinInertia sets particle inertia for velocity updates to varry linearly
// from the start (high) to end (low) values from 0 to maxiter.  Common values
// are start = 0.9 and end = 0.4 - for details see:
//
//     Eberhart, R.C.; Yuhui Shi, "Particle swarm optimization: developments,
//     applications and resources," Evolutionary Computation, 2001. Proceedings of
//     the 2001 Congress on , vol.1, no., pp.81,86 vol. 1, 2001 doi:
//     10.1109/CEC.2001.934374
func LinInertia(start, end float64, maxiter int) Option {
	return func(it *Iterator) {
		it.InertiaFn = func(iter int) float64 {
			return start - (start-end)*float64(iter)/float64(maxiter)
		}
	}
}

func FixedInertia(v float64) Option {
	return func(it *Iterator) {
		it.InertiaFn = func(iter int) float64 { return v }
	}
}

// Rand sets the random source used for population moves, so runs with their
// own seeded generator don't share state through the package-level pso.Rand.
func Rand(rng pso.Rng) Option {
	return func(it *Iterator) {
		it.Rng = rng
	}
}

// Elites attaches an archive that is fed every evaluated point, accumulating
// the best distinct solutions seen across the run.
func Elites(a *pso.Archive) Option {
	return func(it *Iterator) {
		it.Elites = a
	}
}

// Iterator drives one particle swarm: each Iterate moves every particle,
// evaluates the moved positions, and folds the results into personal and
// global bests.  It implements pso.Iterator and pso.Measurer.
type Iterator struct {
	Pop Population
	pso.Evaler
	Cognition float64
	Social    float64
	InertiaFn func(iter int) float64
	// Vmax is the speed limit per dimension for particles.  If nil, no limit
	// is applied.
	Vmax []float64
	// Low and Up are the box bounds particle positions are truncated into
	// after every move.
	Low []float64
	Up  []float64
	Rng pso.Rng
	// Elites, when set, receives every evaluated point.
	Elites *pso.Archive
	// Db, when set, receives per-iteration particle state, personal bests,
	// and the global best.  Tables are created on first write.
	Db *sql.DB

	dbdone bool
	count  int
	best   pso.Point
}

func NewIterator(e pso.Evaler, pop Population, low, up []float64, opts ...Option) *Iterator {
	if e == nil {
		e = pso.SerialEvaler{}
	}
	if len(pop) == 0 {
		panic("swarm: population must not be empty")
	}
	if len(low) != len(up) || len(low) != pop[0].Len() {
		panic("swarm: bounds must match the population dimensions")
	}

	it := &Iterator{
		Pop:       pop,
		Evaler:    e,
		Cognition: DefaultCognition,
		Social:    DefaultSocial,
		InertiaFn: func(iter int) float64 { return DefaultInertia },
		Low:       low,
		Up:        up,
		Rng:       pso.Rand,
		best:      pop.Best().Best,
	}

	for _, opt := range opts {
		opt(it)
	}
	return it
}

// AddPoint injects a pre-evaluated point as a global-best candidate, e.g. to
// warm-start the swarm from a previous run's result.
func (it *Iterator) AddPoint(p pso.Point) {
	if p.Val < it.best.Val {
		it.best = p
	}
}

// Init evaluates the initial population and computes the starting global
// best from the initial personal bests.  No particle moves.
func (it *Iterator) Init(obj pso.Objectiver) (best pso.Point, n int, err error) {
	results, n, err := it.Evaler.Eval(obj, it.Pop.Points()...)
	if err != nil {
		return pso.Point{Val: math.Inf(1)}, n, err
	}
	it.absorb(results)

	if err := it.updateDb(); err != nil {
		return it.best, n, err
	}
	return it.best, n, nil
}

// Iterate runs a single swarm step: move every particle (velocity update,
// position update, bounds truncation), evaluate the moved positions, then
// update personal bests and the global best.  All particles read the same
// global-best snapshot, so the order they move in is immaterial.  The Eval
// call is the only concurrency point; its return is the barrier before any
// best is touched.
func (it *Iterator) Iterate(obj pso.Objectiver) (best pso.Point, n int, err error) {
	it.count++

	gbest := it.best
	inertia := it.InertiaFn(it.count)
	for _, p := range it.Pop {
		p.UpdateVelocity(gbest, inertia, it.Cognition, it.Social, it.Vmax, it.Rng)
		p.UpdatePosition(it.Low, it.Up)
	}

	results, n, err := it.Evaler.Eval(obj, it.Pop.Points()...)
	if err != nil {
		return pso.Point{Val: math.Inf(1)}, n, err
	}
	it.absorb(results)

	if err := it.updateDb(); err != nil {
		return it.best, n, err
	}
	return it.best, n, nil
}

// absorb folds evaluation results into personal bests and reduces the global
// best.  The global best never regresses: it moves only on strict
// improvement.
func (it *Iterator) absorb(results []pso.Point) {
	for i := range results {
		it.Pop[i].Update(results[i])
		if it.Elites != nil {
			it.Elites.Add(results[i])
		}
	}

	pbest := it.Pop.Best()
	if pbest != nil && pbest.Best.Val < it.best.Val {
		it.best = pbest.Best
	}
}

// MeanBest implements pso.Measurer.
func (it *Iterator) MeanBest() float64 { return it.Pop.MeanBest() }

// Diversity implements pso.Measurer.
func (it *Iterator) Diversity() float64 { return it.Pop.Diversity() }

func vmaxfrombounds(low, up []float64) []float64 {
	vmax := make([]float64, len(low))
	for i := range vmax {
		// Eberhart et al. suggest this: (up-low)/2 - removing divide by two
		// seems to help swarm avoid premature convergence in difficult
		// problems.
		vmax[i] = (up[i] - low[i])
	}
	return vmax
}
