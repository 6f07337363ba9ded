package pso

import (
	"crypto/sha1"
	"encoding/binary"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Point is a position in the search space together with its objective value.
// The position is copied on construction and on access so that a Point can be
// shared (e.g. as a global-best snapshot) without aliasing live particle
// state.
type Point struct {
	pos []float64
	Val float64
}

func NewPoint(pos []float64, val float64) Point {
	cpos := make([]float64, len(pos))
	copy(cpos, pos)
	return Point{pos: cpos, Val: val}
}

func (p Point) At(i int) float64 { return p.pos[i] }

func (p Point) Len() int { return len(p.pos) }

func (p Point) Pos() []float64 {
	pos := make([]float64, len(p.pos))
	copy(pos, p.pos)
	return pos
}

// Hash returns a digest of the point's position (not its value).  Two points
// hash equal iff their positions are bit-for-bit identical.
func (p Point) Hash() [sha1.Size]byte {
	data := make([]byte, p.Len()*8)
	for i := 0; i < p.Len(); i++ {
		binary.BigEndian.PutUint64(data[i*8:], math.Float64bits(p.At(i)))
	}
	return sha1.Sum(data)
}

// L2Dist returns the euclidean distance between the positions of p1 and p2.
func L2Dist(p1, p2 Point) float64 {
	return floats.Distance(p1.pos, p2.pos, 2)
}
