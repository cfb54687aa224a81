package cluster3d

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/cluster3d/internal/hits"
)

// PlaneStats summarises the wire hit charge on one plane.
type PlaneStats struct {
	Plane hits.Plane
	Hits  int
	Mean  float64
	RMS   float64
	Total float64
}

// planeStats computes the charge mean, population RMS and total of the
// hits in idx. An empty plane yields zeros.
func planeStats(a *hits.Arena, plane hits.Plane, idx []hits.HitIndex) PlaneStats {
	ps := PlaneStats{Plane: plane, Hits: len(idx)}
	if len(idx) == 0 {
		return ps
	}
	q := make([]float64, len(idx))
	for i, h := range idx {
		q[i] = a.Hit(h).Charge
	}
	ps.Mean, ps.RMS = stat.PopMeanStdDev(q, nil)
	ps.Total = floats.Sum(q)
	return ps
}
