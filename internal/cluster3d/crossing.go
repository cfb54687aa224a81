package cluster3d

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/banshee-data/cluster3d/internal/hits"
)

// ErrParallelWires is returned by CrossingXY when two wires do not cross.
var ErrParallelWires = errors.New("wires are parallel")

// parallelLimit is the smallest |sin| of the crossing angle that is still
// treated as a crossing.
const parallelLimit = 1e-9

// CrossingXY returns the point in the transverse plane where the wires of
// h1 and h2 cross. The wire directions need not be normalised.
func CrossingXY(h1, h2 *hits.Hit1D) (r2.Vec, error) {
	// Solve p1 + s*d1 = p2 + t*d2 for s: crossing both sides with d2
	// gives s = ((p2-p1) x d2) / (d1 x d2).
	d1, d2 := h1.WireDir, h2.WireDir
	denom := r2.Cross(d1, d2)
	n1, n2 := r2.Norm(d1), r2.Norm(d2)
	if n1 == 0 || n2 == 0 || math.Abs(denom) <= parallelLimit*n1*n2 {
		return r2.Vec{}, ErrParallelWires
	}
	s := r2.Cross(r2.Sub(h2.Position, h1.Position), d2) / denom
	p := r2.Add(h1.Position, r2.Scale(s, d1))
	if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
		return r2.Vec{}, ErrParallelWires
	}
	return p, nil
}
