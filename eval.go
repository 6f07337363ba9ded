package pso

import (
	"crypto/sha1"
	"fmt"
	"io"
	"os"
)

type Objectiver interface {
	// Objective evaluates the variables in v and returns the objective
	// function value.  The objective function must be framed so that lower
	// values are better.  If the evaluation fails, positive infinity should be
	// returned along with an error.
	Objective(v []float64) (float64, error)
}

// Func adapts an ordinary objective function to the Objectiver interface.
type Func func([]float64) float64

func (f Func) Objective(v []float64) (float64, error) { return f(v), nil }

// ObjectivePrinter wraps an Objectiver and prints every evaluation (count,
// position, value) to W as it happens.  Useful for eyeballing small runs.
type ObjectivePrinter struct {
	Objectiver
	Count int
	W     io.Writer
}

func NewObjectivePrinter(obj Objectiver) *ObjectivePrinter {
	return &ObjectivePrinter{Objectiver: obj, W: os.Stdout}
}

func (op *ObjectivePrinter) Objective(v []float64) (float64, error) {
	val, err := op.Objectiver.Objective(v)

	op.Count++
	fmt.Fprint(op.W, op.Count, " ")
	for _, x := range v {
		fmt.Fprint(op.W, x, " ")
	}
	fmt.Fprintln(op.W, "    ", val)

	return val, err
}

type Evaler interface {
	// Eval evaluates each point using obj and returns the values and number
	// of function evaluations n.  Results preserve the order of the given
	// points; unevaluated points are not included in the results slice.
	Eval(obj Objectiver, points ...Point) (results []Point, n int, err error)
}

// SerialEvaler evaluates points one at a time, in order.  Unless
// ContinueOnErr is set, evaluation stops at the first objective error and the
// partial results (ending with the failed point) are returned along with the
// error.
type SerialEvaler struct {
	ContinueOnErr bool
}

func (ev SerialEvaler) Eval(obj Objectiver, points ...Point) (results []Point, n int, err error) {
	results = make([]Point, 0, len(points))
	for _, p := range points {
		p.Val, err = obj.Objective(p.Pos())
		results = append(results, p)
		if err != nil && !ev.ContinueOnErr {
			return results, len(results), err
		}
	}
	return results, len(results), nil
}

// CacheEvaler wraps another Evaler and memoizes objective values by position
// hash, so re-evaluating an already visited position costs nothing.  This
// pays off late in a run when the swarm has collapsed onto few distinct
// positions.
type CacheEvaler struct {
	ev    Evaler
	cache map[[sha1.Size]byte]float64
}

func NewCacheEvaler(ev Evaler) *CacheEvaler {
	return &CacheEvaler{
		ev:    ev,
		cache: map[[sha1.Size]byte]float64{},
	}
}

func (ev *CacheEvaler) Eval(obj Objectiver, points ...Point) (results []Point, n int, err error) {
	fromnew := make([]int, 0, len(points))
	newp := make([]Point, 0, len(points))
	for i, p := range points {
		if val, ok := ev.cache[p.Hash()]; ok {
			points[i].Val = val
		} else {
			fromnew = append(fromnew, i)
			newp = append(newp, p)
		}
	}

	newresults, n, err := ev.ev.Eval(obj, newp...)
	for _, p := range newresults {
		ev.cache[p.Hash()] = p.Val
	}

	for i, p := range newresults {
		points[fromnew[i]].Val = p.Val
	}

	// shrink if an error resulted in fewer new results being returned
	if len(newresults) < len(fromnew) {
		points = points[:fromnew[len(newresults)]]
	}

	return points, n, err
}
