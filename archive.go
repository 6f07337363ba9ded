package pso

import (
	"crypto/sha1"
	"math"

	"github.com/petar/GoLLRB/llrb"
)

type entry struct {
	Point
}

func (e1 entry) Less(than llrb.Item) bool {
	e2 := than.(entry)
	return e1.Val < e2.Val
}

// Archive retains the k best distinct points seen during a run, ordered by
// objective value.  Distinctness is by position hash, so repeat visits to the
// same position do not crowd out other solutions.  Attach one to a swarm
// iterator to get a ranked solution set rather than the single best point.
type Archive struct {
	cap  int
	tree *llrb.LLRB
	seen map[[sha1.Size]byte]struct{}
}

// NewArchive returns an archive retaining the k best distinct points.  It
// panics if k < 1.
func NewArchive(k int) *Archive {
	if k < 1 {
		panic("pso: archive capacity must be positive")
	}
	return &Archive{
		cap:  k,
		tree: llrb.New(),
		seen: map[[sha1.Size]byte]struct{}{},
	}
}

// Add offers p to the archive.  Points at an already archived position are
// ignored; otherwise p is inserted and the worst entry evicted if the
// capacity is exceeded.
func (a *Archive) Add(p Point) {
	h := p.Hash()
	if _, ok := a.seen[h]; ok {
		return
	}
	a.seen[h] = struct{}{}
	a.tree.InsertNoReplace(entry{p})
	for a.tree.Len() > a.cap {
		worst := a.tree.DeleteMax().(entry)
		delete(a.seen, worst.Hash())
	}
}

func (a *Archive) Len() int { return a.tree.Len() }

// Best returns the archived points in ascending value order (best first).
func (a *Archive) Best() []Point {
	points := make([]Point, 0, a.tree.Len())
	a.tree.AscendGreaterOrEqual(entry{Point{Val: math.Inf(-1)}}, func(i llrb.Item) bool {
		points = append(points, i.(entry).Point)
		return true
	})
	return points
}
