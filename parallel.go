package pso

import (
	"runtime"

	"github.com/sourcegraph/conc/pool"
)

// ParallelEvaler evaluates points concurrently on a bounded goroutine pool.
// It only makes sense for objectives that are expensive relative to the
// scheduling overhead and that are safe to call from multiple goroutines.
//
// Unlike SerialEvaler, every point is always evaluated; if one or more
// evaluations fail, the full results are returned together with the error
// from the earliest failed point.
type ParallelEvaler struct {
	// NWorkers bounds the number of concurrent objective evaluations.  Zero
	// means runtime.GOMAXPROCS(0).
	NWorkers int
}

func (ev ParallelEvaler) Eval(obj Objectiver, points ...Point) (results []Point, n int, err error) {
	nw := ev.NWorkers
	if nw <= 0 {
		nw = runtime.GOMAXPROCS(0)
	}

	results = make([]Point, len(points))
	errs := make([]error, len(points))

	p := pool.New().WithMaxGoroutines(nw)
	for i, point := range points {
		i, point := i, point
		p.Go(func() {
			point.Val, errs[i] = obj.Objective(point.Pos())
			results[i] = point
		})
	}
	p.Wait()

	for _, e := range errs {
		if e != nil {
			return results, len(results), e
		}
	}
	return results, len(results), nil
}
