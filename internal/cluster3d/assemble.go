package cluster3d

import (
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/cluster3d/internal/hits"
)

// Cluster is a named group of 3D hits handed to downstream stages.
type Cluster struct {
	Name string
	Hits []Hit3D
	// Position is the charge weighted centroid of the hits.
	Position r3.Vec
	// EDeposit is the summed hit charge.
	EDeposit float64
	// Energy is EDeposit converted with the energy per charge.
	Energy float64
}

// NewCluster builds a cluster from hits.
func NewCluster(name string, h []Hit3D, energyPerCharge float64) *Cluster {
	c := &Cluster{Name: name, Hits: h}
	if len(h) == 0 {
		return c
	}
	xs := make([]float64, len(h))
	ys := make([]float64, len(h))
	zs := make([]float64, len(h))
	w := make([]float64, len(h))
	for i := range h {
		xs[i], ys[i], zs[i] = h[i].Position.X, h[i].Position.Y, h[i].Position.Z
		w[i] = h[i].Charge
		c.EDeposit += h[i].Charge
	}
	if c.EDeposit > 0 {
		c.Position = r3.Vec{X: stat.Mean(xs, w), Y: stat.Mean(ys, w), Z: stat.Mean(zs, w)}
	} else {
		c.Position = r3.Vec{X: stat.Mean(xs, nil), Y: stat.Mean(ys, nil), Z: stat.Mean(zs, nil)}
	}
	c.Energy = energyPerCharge * c.EDeposit
	return c
}

// Result is the output of one Process call.
type Result struct {
	TimeZero float64

	// Arena holds the wire hits that the indexes below refer to.
	Arena *hits.Arena

	// Final is the "clustered" group of 3D hits that survived the charge
	// cut.
	Final *Cluster

	// Used and Unused partition the wire hits by whether a retained 3D hit
	// uses them. Both stay empty for events at or over the hit limit.
	Used   *hits.IndexSet
	Unused *hits.IndexSet

	// Shares exposes the per wire hit charge shares, nil when sharing is
	// disabled.
	Shares *ChargeShare

	Planes  [3]PlaneStats
	Invalid int
	Stats   MatchStats
	// Candidates counts 3D hits before the charge cut.
	Candidates int
}

// Hits returns the final 3D hits.
func (r *Result) Hits() []Hit3D {
	if r.Final == nil {
		return nil
	}
	return r.Final.Hits
}

// assemble applies the charge cut and fills the bookkeeping selections.
func assemble(p Params, a *hits.Arena, hits3d []Hit3D) (*Cluster, *hits.IndexSet, *hits.IndexSet) {
	kept := make([]Hit3D, 0, len(hits3d))
	for _, h := range hits3d {
		// Hits that had their charge taken away by sharing are dropped, and
		// so is a NaN charge.
		if !(h.Charge >= p.MinCharge) {
			continue
		}
		kept = append(kept, h)
	}

	used := hits.NewIndexSet("used")
	unused := hits.NewIndexSet("unused")
	if a.Len() < p.HitLimit {
		for _, h := range kept {
			for _, c := range h.Constituents {
				used.Add(c)
			}
		}
		for _, idx := range a.Indexes() {
			if !used.Contains(idx) {
				unused.Add(idx)
			}
		}
	}

	return NewCluster("clustered", kept, p.EnergyPerCharge), used, unused
}
