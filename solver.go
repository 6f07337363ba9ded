// Package pso provides a particle swarm optimization engine: a Solver that
// drives pluggable Iterators against pluggable objective functions, with
// serial, parallel, and caching evaluation strategies.  The swarm subpackage
// supplies the standard global-best iterator; bench supplies objective
// functions to test against.
package pso

import (
	"context"
	"fmt"
	"math"
)

// State is the lifecycle phase of a Solver run.  The zero value is Running.
type State int

const (
	// Running means the loop can take further iterations (also the state of
	// a run aborted by an objective error, which is neither success nor an
	// exhausted budget).
	Running State = iota
	// Converged means the best value came within Tol of the known optimum.
	Converged
	// Exhausted means an iteration, evaluation, or stagnation budget was
	// spent first.  The best point found is still valid as a best effort.
	Exhausted
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Converged:
		return "converged"
	case Exhausted:
		return "exhausted"
	}
	return fmt.Sprintf("state(%v)", int(s))
}

type Iterator interface {
	// Init evaluates the iterator's starting population and returns the
	// initial best point and the number of evaluations spent.  It runs once,
	// before the first Iterate; it is not an iteration.
	Init(obj Objectiver) (best Point, n int, err error)

	// Iterate runs a single iteration of a solver and reports the number of
	// function evaluations n and the best point.
	Iterate(obj Objectiver) (best Point, n int, err error)

	// AddPoint injects a pre-evaluated point into the iterator's population,
	// e.g. to warm-start from a previous run's best.
	AddPoint(p Point)
}

// Measurer is an optional interface for iterators that can report swarm-wide
// metrics.  When the Solver's Iterator implements it, every history Snapshot
// carries the measures; otherwise those fields are NaN.
type Measurer interface {
	// MeanBest is the mean personal-best objective value over the swarm.
	MeanBest() float64
	// Diversity is the mean pairwise euclidean distance between particle
	// positions.
	Diversity() float64
}

// Snapshot records the observable state of a run after one completed
// iteration.  Iter counts from 1.
type Snapshot struct {
	Iter      int
	Best      float64
	MeanBest  float64
	Diversity float64
}

// Solver drives an Iterator against an objective until a stop condition is
// reached:
//
//	solv := &pso.Solver{Iter: it, Obj: obj, MaxIter: 1000}
//	for solv.Next() {
//	}
//	fmt.Println(solv.Best())
//
// The zero budgets mean: MaxIter 0 stops the run immediately after
// initialization (the initial best is still computed and reported); MaxEval 0
// and MaxNoImprove 0 disable their respective stops.
type Solver struct {
	Iter Iterator
	Obj  Objectiver

	MaxIter int
	MaxEval int

	// MaxNoImprove stops the run as Exhausted after this many consecutive
	// iterations without strict improvement of the best value.
	MaxNoImprove int

	// UseTarget enables the convergence test |best - Optimum| <= Tol after
	// each iteration.  It is a separate flag because zero is a legitimate
	// Optimum.
	UseTarget bool
	Optimum   float64
	Tol       float64

	best    Point
	state   State
	niter   int
	neval   int
	nstall  int
	inited  bool
	err     error
	history []Snapshot
}

// NewSolver builds a Solver for cfg, whose Validate must already have passed.
// The iterator is used as-is; target stopping is wired when the config
// carries KnownMin and Tol.
func NewSolver(it Iterator, obj Objectiver, cfg Config) *Solver {
	s := &Solver{
		Iter:         it,
		Obj:          obj,
		MaxIter:      cfg.MaxIter,
		MaxNoImprove: cfg.MaxNoImprove,
	}
	if cfg.KnownMin != nil && cfg.Tol != nil {
		s.UseTarget = true
		s.Optimum = *cfg.KnownMin
		s.Tol = *cfg.Tol
	}
	return s
}

// Next advances the run by one iteration and reports whether more iterations
// remain.  The first call also initializes the population (evaluating it
// once); initialization does not count as an iteration.  Once the run has
// stopped, Next returns false without doing any work.
//
// An objective error stops the run immediately: Err reports it and the state
// stays Running, since an aborted run neither converged nor spent its budget.
func (s *Solver) Next() bool {
	if s.state != Running || s.err != nil {
		return false
	}

	if !s.inited {
		s.inited = true
		s.history = make([]Snapshot, 0, max(s.MaxIter, 0))
		best, n, err := s.Iter.Init(s.Obj)
		s.neval += n
		if err != nil {
			s.err = err
			return false
		}
		s.best = best
		// the budget can be spent before the first iteration
		if s.niter >= s.MaxIter || (s.MaxEval > 0 && s.neval >= s.MaxEval) {
			s.state = Exhausted
			return false
		}
	}

	best, n, err := s.Iter.Iterate(s.Obj)
	s.neval += n
	if err != nil {
		s.err = err
		return false
	}
	s.niter++

	if best.Val < s.best.Val {
		s.best = best
		s.nstall = 0
	} else {
		s.nstall++
	}
	s.record()

	switch {
	case s.UseTarget && math.Abs(s.best.Val-s.Optimum) <= s.Tol:
		s.state = Converged
	case s.MaxNoImprove > 0 && s.nstall >= s.MaxNoImprove:
		s.state = Exhausted
	case s.niter >= s.MaxIter:
		s.state = Exhausted
	case s.MaxEval > 0 && s.neval >= s.MaxEval:
		s.state = Exhausted
	}
	return s.state == Running
}

func (s *Solver) record() {
	snap := Snapshot{
		Iter:      s.niter,
		Best:      s.best.Val,
		MeanBest:  math.NaN(),
		Diversity: math.NaN(),
	}
	if m, ok := s.Iter.(Measurer); ok {
		snap.MeanBest = m.MeanBest()
		snap.Diversity = m.Diversity()
	}
	s.history = append(s.history, snap)
}

// Run drives Next until the run stops, checking ctx between iterations.  On
// cancellation it returns ctx.Err() together with the partial result; an
// objective error is returned the same way.
func (s *Solver) Run(ctx context.Context) (Result, error) {
	for {
		select {
		case <-ctx.Done():
			return s.Result(), ctx.Err()
		default:
		}
		if !s.Next() {
			break
		}
	}
	return s.Result(), s.err
}

// Best returns the best point found so far.  It never regresses: a later
// iteration can only replace it with a strictly better value.
func (s *Solver) Best() Point { return s.best }

func (s *Solver) State() State { return s.state }

// Niter returns the number of completed iterations (initialization excluded).
func (s *Solver) Niter() int { return s.niter }

// Neval returns the total number of objective evaluations, including the
// initial population evaluation.
func (s *Solver) Neval() int { return s.neval }

// Err returns the objective error that aborted the run, if any.
func (s *Solver) Err() error { return s.err }

// History returns one Snapshot per completed iteration, in order.  The slice
// is owned by the solver; callers must not modify it.
func (s *Solver) History() []Snapshot { return s.history }

// Result bundles the outcome of a run for reporting.
type Result struct {
	Best    Point
	State   State
	Niter   int
	Neval   int
	History []Snapshot
}

func (s *Solver) Result() Result {
	return Result{
		Best:    s.best,
		State:   s.state,
		Niter:   s.niter,
		Neval:   s.neval,
		History: s.history,
	}
}
