// Package bench provides tools for testing solvers against benchmark
// optimization functions from
// http://en.wikipedia.org/wiki/Test_functions_for_optimization.
package bench

import (
	"fmt"
	"math"

	"github.com/swarmlab/pso"
)

var (
	sin  = math.Sin
	cos  = math.Cos
	abs  = math.Abs
	exp  = math.Exp
	sqrt = math.Sqrt
)

var AllFuncs = []Func{
	Michalewicz{NDim: 2},
	Michalewicz{NDim: 5},
	Michalewicz{NDim: 10},
	Ackley{},
	CrossTray{},
	Eggholder{},
	HolderTable{},
	Schaffer2{},
	Sphere{NDim: 2},
	Sphere{NDim: 10},
	Styblinski{NDim: 1},
	Styblinski{NDim: 10},
	Styblinski{NDim: 100},
	Rosenbrock{NDim: 2},
	Rosenbrock{NDim: 10},
}

type Func interface {
	Eval(v []float64) float64
	Bounds() (low, up []float64)
	Optima() []pso.Point
	Name() string
}

// Michalewicz is a steep multimodal function with d! local minima in d
// dimensions.  M controls the steepness of the valleys (zero means the
// standard 10); larger values make the search harder.
type Michalewicz struct {
	NDim int
	M    float64
}

func (fn Michalewicz) Name() string { return fmt.Sprintf("Michalewicz_%vD", fn.NDim) }

func (fn Michalewicz) Eval(v []float64) float64 {
	if !InsideBounds(v, fn) {
		return math.Inf(1)
	}

	m := fn.M
	if m == 0 {
		m = 10
	}

	tot := 0.0
	for i, x := range v {
		tot += sin(x) * math.Pow(sin(float64(i+1)*x*x/math.Pi), 2*m)
	}
	return -tot
}

func (fn Michalewicz) Bounds() (low, up []float64) {
	low = make([]float64, fn.NDim)
	up = make([]float64, fn.NDim)
	for i := range up {
		up[i] = math.Pi
	}
	return low, up
}

// Optima returns the known global minimum for 2, 5, and 10 dimensions (the
// minimum position has only been published for the 2d case) and nil for any
// other dimensionality.
func (fn Michalewicz) Optima() []pso.Point {
	switch fn.NDim {
	case 2:
		return []pso.Point{
			pso.NewPoint([]float64{2.202906, 1.570796}, -1.8013),
		}
	case 5:
		return []pso.Point{
			pso.NewPoint(nil, -4.687658),
		}
	case 10:
		return []pso.Point{
			pso.NewPoint(nil, -9.66015),
		}
	}
	return nil
}

type Ackley struct{}

func (fn Ackley) Name() string { return "Ackley" }

func (fn Ackley) Eval(v []float64) float64 {
	if !InsideBounds(v, fn) {
		return math.Inf(1)
	}

	x := v[0]
	y := v[1]
	return -20*math.Exp(-0.2*math.Sqrt(0.5*(x*x+y*y))) -
		math.Exp(0.5*(math.Cos(2*math.Pi*x)+math.Cos(2*math.Pi*y))) +
		20 + math.E
}

func (fn Ackley) Bounds() (low, up []float64) {
	return []float64{-5, -5}, []float64{5, 5}
}

func (fn Ackley) Optima() []pso.Point {
	return []pso.Point{
		pso.NewPoint([]float64{0, 0}, 0),
	}
}

type CrossTray struct{}

func (fn CrossTray) Name() string { return "CrossTray" }

func (fn CrossTray) Eval(v []float64) float64 {
	if !InsideBounds(v, fn) {
		return math.Inf(1)
	}

	x := v[0]
	y := v[1]
	return -.0001 * math.Pow(abs(sin(x)*sin(y)*exp(abs(100-sqrt(x*x+y*y)/math.Pi)))+1, 0.1)
}

func (fn CrossTray) Bounds() (low, up []float64) {
	return []float64{-10, -10}, []float64{10, 10}
}

func (fn CrossTray) Optima() []pso.Point {
	return []pso.Point{
		pso.NewPoint([]float64{1.34941, -1.34941}, -2.06261),
		pso.NewPoint([]float64{1.34941, 1.34941}, -2.06261),
		pso.NewPoint([]float64{-1.34941, 1.34941}, -2.06261),
		pso.NewPoint([]float64{-1.34941, -1.34941}, -2.06261),
	}
}

type Eggholder struct{}

func (fn Eggholder) Name() string { return "Eggholder" }

func (fn Eggholder) Eval(v []float64) float64 {
	if !InsideBounds(v, fn) {
		return math.Inf(1)
	}

	x := v[0]
	y := v[1]
	return -(y+47)*sin(sqrt(abs(y+x/2+47))) - x*sin(sqrt(abs(x-(y+47))))
}

func (fn Eggholder) Bounds() (low, up []float64) {
	return []float64{-512, -512}, []float64{512, 512}
}

func (fn Eggholder) Optima() []pso.Point {
	return []pso.Point{
		pso.NewPoint([]float64{512, 404.2319}, -959.6407),
	}
}

type HolderTable struct{}

func (fn HolderTable) Name() string { return "HolderTable" }

func (fn HolderTable) Eval(v []float64) float64 {
	if !InsideBounds(v, fn) {
		return math.Inf(1)
	}

	x := v[0]
	y := v[1]
	return -abs(sin(x) * cos(y) * exp(abs(1-sqrt(x*x+y*y)/math.Pi)))
}

func (fn HolderTable) Bounds() (low, up []float64) {
	return []float64{-10, -10}, []float64{10, 10}
}

func (fn HolderTable) Optima() []pso.Point {
	return []pso.Point{
		pso.NewPoint([]float64{8.05502, 9.66459}, -19.2085),
		pso.NewPoint([]float64{-8.05502, 9.66459}, -19.2085),
		pso.NewPoint([]float64{8.05502, -9.66459}, -19.2085),
		pso.NewPoint([]float64{-8.05502, -9.66459}, -19.2085),
	}
}

type Schaffer2 struct{}

func (fn Schaffer2) Name() string { return "Schaffer2" }

func (fn Schaffer2) Eval(v []float64) float64 {
	if !InsideBounds(v, fn) {
		return math.Inf(1)
	}

	x := v[0]
	y := v[1]
	return 0.5 + (math.Pow(sin(x*x-y*y), 2)-0.5)/math.Pow(1+.0001*(x*x+y*y), 2)
}

func (fn Schaffer2) Bounds() (low, up []float64) {
	return []float64{-100, -100}, []float64{100, 100}
}

func (fn Schaffer2) Optima() []pso.Point {
	return []pso.Point{
		pso.NewPoint([]float64{0, 0}, 0),
	}
}

type Sphere struct {
	NDim int
}

func (fn Sphere) Name() string { return fmt.Sprintf("Sphere_%vD", fn.NDim) }

func (fn Sphere) Eval(x []float64) float64 {
	if !InsideBounds(x, fn) {
		return math.Inf(1)
	}

	tot := 0.0
	for _, v := range x {
		tot += v * v
	}
	return tot
}

func (fn Sphere) Bounds() (low, up []float64) {
	low = make([]float64, fn.NDim)
	up = make([]float64, fn.NDim)
	for i := range low {
		low[i] = -5.12
		up[i] = 5.12
	}
	return low, up
}

func (fn Sphere) Optima() []pso.Point {
	return []pso.Point{
		pso.NewPoint(make([]float64, fn.NDim), 0),
	}
}

type Styblinski struct {
	NDim int
}

func (fn Styblinski) Name() string { return fmt.Sprintf("Styblinski_%vD", fn.NDim) }

func (fn Styblinski) Eval(x []float64) float64 {
	if !InsideBounds(x, fn) {
		return math.Inf(1)
	}

	tot := 0.0
	for _, v := range x {
		tot += math.Pow(v, 4) - 16*math.Pow(v, 2) + 5*v
	}
	return tot / 2
}

func (fn Styblinski) Bounds() (low, up []float64) {
	low = make([]float64, fn.NDim)
	up = make([]float64, fn.NDim)
	for i := range low {
		low[i] = -5
		up[i] = 5
	}
	return low, up
}

func (fn Styblinski) Optima() []pso.Point {
	pos := make([]float64, fn.NDim)
	for i := range pos {
		pos[i] = -2.903534
	}
	return []pso.Point{
		pso.NewPoint(pos, -39.16599*float64(fn.NDim)),
	}
}

type Rosenbrock struct {
	NDim int
}

func (fn Rosenbrock) Name() string { return fmt.Sprintf("Rosenbrock_%vD", fn.NDim) }

func (fn Rosenbrock) Eval(x []float64) float64 {
	if !InsideBounds(x, fn) {
		return math.Inf(1)
	}

	tot := 0.0
	for i := 0; i < fn.NDim-1; i++ {
		tot += 100*math.Pow(x[i+1]-x[i]*x[i], 2) + math.Pow(x[i]-1, 2)
	}
	return tot
}

func (fn Rosenbrock) Bounds() (low, up []float64) {
	low = make([]float64, fn.NDim)
	up = make([]float64, fn.NDim)
	for i := range low {
		low[i] = -1000
		up[i] = 1000
	}
	return low, up
}

func (fn Rosenbrock) Optima() []pso.Point {
	pos := make([]float64, fn.NDim)
	for i := range pos {
		pos[i] = 1
	}
	return []pso.Point{
		pso.NewPoint(pos, 0),
	}
}

// Benchmark binds fn as solv's objective and drives the run to completion,
// stopping early once the best value comes within the pass threshold
// max(tol*|optimum|, 0.001) of fn's known optimum.  It reports the best
// point found and whether the threshold was met.
func Benchmark(solv *pso.Solver, fn Func, tol float64) (best pso.Point, ok bool, err error) {
	solv.Obj = pso.Func(fn.Eval)

	optimum := fn.Optima()[0].Val
	thresh := tol * abs(optimum)
	if 0.001 > thresh {
		thresh = 0.001
	}

	for solv.Next() {
		if abs(optimum-solv.Best().Val) < thresh {
			break
		}
	}
	if err := solv.Err(); err != nil {
		return solv.Best(), false, err
	}

	best = solv.Best()
	return best, abs(optimum-best.Val) < thresh, nil
}

func InsideBounds(p []float64, fn Func) bool {
	low, up := fn.Bounds()
	for i := range p {
		if p[i] < low[i] || p[i] > up[i] {
			return false
		}
	}
	return true
}
