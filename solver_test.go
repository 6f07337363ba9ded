package pso

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// scriptIter plays back a fixed sequence of best values, one per Iterate
// call, repeating the last value once the script runs out.  Each returned
// point carries its value in position 0 so tests can tell points apart.
type scriptIter struct {
	initVal float64
	initN   int
	initErr error
	vals    []float64
	calls   int
	errAt   int // 1-based Iterate call that fails, 0 for never
}

func (it *scriptIter) Init(obj Objectiver) (Point, int, error) {
	if it.initErr != nil {
		return Point{}, 0, it.initErr
	}
	return NewPoint([]float64{it.initVal}, it.initVal), it.initN, nil
}

func (it *scriptIter) Iterate(obj Objectiver) (Point, int, error) {
	it.calls++
	if it.errAt > 0 && it.calls >= it.errAt {
		return Point{Val: math.Inf(1)}, 1, errors.New("fake error")
	}
	v := it.vals[len(it.vals)-1]
	if it.calls <= len(it.vals) {
		v = it.vals[it.calls-1]
	}
	return NewPoint([]float64{v}, v), 1, nil
}

func (it *scriptIter) AddPoint(p Point) {}

// measuredIter adds constant swarm metrics to a scriptIter.
type measuredIter struct {
	*scriptIter
}

func (it measuredIter) MeanBest() float64  { return 42 }
func (it measuredIter) Diversity() float64 { return 7 }

func TestSolverExhaustsIterBudget(t *testing.T) {
	it := &scriptIter{initVal: 10, initN: 5, vals: []float64{9, 8, 7, 6, 5}}
	s := &Solver{Iter: it, MaxIter: 3}

	for s.Next() {
	}

	require.Equal(t, Exhausted, s.State())
	require.Equal(t, 3, s.Niter())
	require.Equal(t, 8, s.Neval(), "5 init evals plus 1 per iteration")
	require.Equal(t, 7.0, s.Best().Val)
	require.Len(t, s.History(), 3)
}

func TestSolverInitialBestOnly(t *testing.T) {
	it := &scriptIter{initVal: 10, initN: 5, vals: []float64{1}}
	s := &Solver{Iter: it, MaxIter: 0}

	require.False(t, s.Next())
	require.Equal(t, Exhausted, s.State())
	require.Equal(t, 0, s.Niter())
	require.Equal(t, 5, s.Neval())
	require.Equal(t, 10.0, s.Best().Val, "initial best must still be reported")
	require.Empty(t, s.History())
	require.Equal(t, 0, it.calls, "Iterate must never run")

	require.False(t, s.Next(), "a stopped solver stays stopped")
}

func TestSolverBestMonotone(t *testing.T) {
	it := &scriptIter{initVal: 6, initN: 1, vals: []float64{5, 7, 3, 8, 2}}
	s := &Solver{Iter: it, MaxIter: 5}

	for s.Next() {
	}

	hist := s.History()
	require.Len(t, hist, 5)
	want := []float64{5, 5, 3, 3, 2}
	for i, snap := range hist {
		require.Equal(t, i+1, snap.Iter)
		require.Equal(t, want[i], snap.Best, "iteration %v", i+1)
	}
	require.Equal(t, 2.0, s.Best().Val)
	require.Equal(t, 2.0, s.Best().At(0), "best point must be the improving point, not just its value")
}

func TestSolverTargetConverges(t *testing.T) {
	it := &scriptIter{initVal: 9, initN: 1, vals: []float64{3, 0.4, 0.1}}
	s := &Solver{Iter: it, MaxIter: 100, UseTarget: true, Optimum: 0, Tol: 0.5}

	for s.Next() {
	}

	require.Equal(t, Converged, s.State())
	require.Equal(t, 2, s.Niter())
	require.Equal(t, 0.4, s.Best().Val)
}

func TestSolverTargetBoundary(t *testing.T) {
	// exactly Tol away counts as converged
	it := &scriptIter{initVal: 9, initN: 1, vals: []float64{0.5}}
	s := &Solver{Iter: it, MaxIter: 100, UseTarget: true, Optimum: 0, Tol: 0.5}

	for s.Next() {
	}

	require.Equal(t, Converged, s.State())
	require.Equal(t, 1, s.Niter())
}

func TestSolverHugeTol(t *testing.T) {
	it := &scriptIter{initVal: 1e6, initN: 1, vals: []float64{1e6}}
	s := &Solver{Iter: it, MaxIter: 100, UseTarget: true, Optimum: 0, Tol: 1e30}

	for s.Next() {
	}

	require.Equal(t, Converged, s.State())
	require.Equal(t, 1, s.Niter(), "a huge tolerance converges on the first iteration")
	require.Len(t, s.History(), 1)
}

func TestSolverStagnates(t *testing.T) {
	it := &scriptIter{initVal: 10, initN: 1, vals: []float64{5, 5, 5, 5, 5, 5}}
	s := &Solver{Iter: it, MaxIter: 100, MaxNoImprove: 3}

	for s.Next() {
	}

	// iteration 1 improves on the initial best, then three equal values
	// in a row stall out (ties are not improvements)
	require.Equal(t, Exhausted, s.State())
	require.Equal(t, 4, s.Niter())
	require.Equal(t, 5.0, s.Best().Val)
}

func TestSolverMaxEval(t *testing.T) {
	it := &scriptIter{initVal: 10, initN: 5, vals: []float64{9, 8, 7, 6}}
	s := &Solver{Iter: it, MaxIter: 100, MaxEval: 7}

	for s.Next() {
	}

	require.Equal(t, Exhausted, s.State())
	require.Equal(t, 2, s.Niter())
	require.Equal(t, 7, s.Neval())
}

func TestSolverObjectiveError(t *testing.T) {
	it := &scriptIter{initVal: 10, initN: 1, vals: []float64{5, 4, 3}, errAt: 2}
	s := &Solver{Iter: it, MaxIter: 100}

	for s.Next() {
	}

	require.Error(t, s.Err())
	require.Equal(t, Running, s.State(), "an aborted run is neither converged nor exhausted")
	require.Equal(t, 1, s.Niter(), "the failed iteration does not count")
	require.Len(t, s.History(), 1)
	require.Equal(t, 5.0, s.Best().Val)
	require.False(t, s.Next(), "an errored solver stays stopped")
}

func TestSolverInitError(t *testing.T) {
	it := &scriptIter{initErr: errors.New("fake error")}
	s := &Solver{Iter: it, MaxIter: 100}

	require.False(t, s.Next())
	require.Error(t, s.Err())
	require.Equal(t, Running, s.State())
	require.Equal(t, 0, s.Niter())
	require.Equal(t, 0, it.calls)
}

func TestSolverRun(t *testing.T) {
	it := &scriptIter{initVal: 10, initN: 1, vals: []float64{3, 2, 1}}
	s := &Solver{Iter: it, MaxIter: 3}

	res, err := s.Run(context.Background())

	require.NoError(t, err)
	require.Equal(t, Exhausted, res.State)
	require.Equal(t, 3, res.Niter)
	require.Equal(t, 1.0, res.Best.Val)
	require.Len(t, res.History, 3)
}

func TestSolverRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	it := &scriptIter{initVal: 10, initN: 1, vals: []float64{1}}
	s := &Solver{Iter: it, MaxIter: 100}

	res, err := s.Run(ctx)

	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 0, res.Niter)
	require.Equal(t, 0, s.Neval(), "cancellation before the first Next does no work")
}

func TestSolverMetrics(t *testing.T) {
	it := measuredIter{&scriptIter{initVal: 10, initN: 1, vals: []float64{5}}}
	s := &Solver{Iter: it, MaxIter: 1}

	for s.Next() {
	}

	hist := s.History()
	require.Len(t, hist, 1)
	require.Equal(t, 42.0, hist[0].MeanBest)
	require.Equal(t, 7.0, hist[0].Diversity)
}

func TestSolverMetricsUnmeasured(t *testing.T) {
	it := &scriptIter{initVal: 10, initN: 1, vals: []float64{5}}
	s := &Solver{Iter: it, MaxIter: 1}

	for s.Next() {
	}

	hist := s.History()
	require.Len(t, hist, 1)
	require.True(t, math.IsNaN(hist[0].MeanBest))
	require.True(t, math.IsNaN(hist[0].Diversity))
}

func TestNewSolverTarget(t *testing.T) {
	cfg := DefaultConfig()
	s := NewSolver(&scriptIter{}, nil, cfg)

	require.True(t, s.UseTarget)
	require.Equal(t, *cfg.KnownMin, s.Optimum)
	require.Equal(t, *cfg.Tol, s.Tol)
	require.Equal(t, cfg.MaxIter, s.MaxIter)

	cfg.KnownMin = nil
	cfg.Tol = nil
	require.False(t, NewSolver(&scriptIter{}, nil, cfg).UseTarget)
}

func TestStateString(t *testing.T) {
	require.Equal(t, "running", Running.String())
	require.Equal(t, "converged", Converged.String())
	require.Equal(t, "exhausted", Exhausted.String())
}
