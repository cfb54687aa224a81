package cluster3d

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/cluster3d/internal/drift"
	"github.com/banshee-data/cluster3d/internal/hits"
)

// Hit3D is a 3D point built from one X, one V and one U wire hit.
type Hit3D struct {
	// Position is corrected to the event time zero.
	Position r3.Vec
	// Time is the event time zero once fused.
	Time            float64
	TimeUncertainty float64
	TimeRMS         float64
	// DriftTime is the fused drift time before the time zero correction.
	DriftTime float64

	Charge            float64
	ChargeUncertainty float64

	RMS         r3.Vec
	Uncertainty r3.Vec

	// Constituents are the X, V and U wire hits, in that order.
	Constituents [3]hits.HitIndex
}

// Fuser turns matched triplets into 3D hits.
type Fuser struct {
	Params Params
	Drift  drift.Model
}

// NewFuser creates a Fuser.
func NewFuser(p Params, m drift.Model) *Fuser {
	return &Fuser{Params: p, Drift: m}
}

// Fuse combines the three wire hits of tr into a Hit3D at time zero t0.
func (f *Fuser) Fuse(a *hits.Arena, tr Triplet, t0 float64) Hit3D {
	hs := [3]*hits.Hit1D{a.Hit(tr.X), a.Hit(tr.V), a.Hit(tr.U)}
	times := []float64{tr.TX, tr.TV, tr.TU}

	h := Hit3D{Constituents: [3]hits.HitIndex{tr.X, tr.V, tr.U}}

	switch f.Params.TimeFusion {
	case TimeFusionBest:
		// The same charge is measured three times, so take the wire with
		// the best time measurement rather than averaging correlated ones.
		best := 0
		for i := 1; i < 3; i++ {
			if hs[i].TimeUncertainty < hs[best].TimeUncertainty {
				best = i
			}
		}
		h.DriftTime = times[best]
		h.TimeUncertainty = hs[best].TimeUncertainty
	default:
		w := inverseVariance(hs[0].TimeUncertainty, hs[1].TimeUncertainty, hs[2].TimeUncertainty)
		h.DriftTime = stat.Mean(times, w)
		// sqrt(3) for the correlations between the three measurements.
		h.TimeUncertainty = math.Sqrt(3.0 / floats.Sum(w))
	}

	// The narrowest hit bounds the RMS when all three are correlated.
	h.TimeRMS = math.Min(hs[0].TimeRMS, math.Min(hs[1].TimeRMS, hs[2].TimeRMS))

	h.Charge, h.ChargeUncertainty = weightedCharge(
		[]float64{hs[0].Charge, hs[1].Charge, hs[2].Charge},
		[]float64{hs[0].ChargeUncertainty, hs[1].ChargeUncertainty, hs[2].ChargeUncertainty},
	)

	centre := r2.Scale(1.0/3.0, r2.Add(tr.XV, r2.Add(tr.XU, tr.VU)))
	pos := r3.Vec{X: centre.X, Y: centre.Y, Z: 0}

	spread := crossingSpread(tr)
	xyRMS := 0.0
	for _, c := range hs {
		xyRMS += c.RMS.X * c.RMS.X
	}
	xyRMS /= 3.0
	xyRMS = math.Sqrt(2*xyRMS + spread*spread)

	v := f.Drift.AverageDriftVelocity()
	h.RMS = r3.Vec{X: xyRMS, Y: xyRMS, Z: v * h.TimeRMS}
	// Uniform position distribution across the crossing region.
	xyUnc := 2.0 * xyRMS / math.Sqrt(12.0)
	h.Uncertainty = r3.Vec{X: xyUnc, Y: xyUnc, Z: v * h.TimeUncertainty}

	h.Position = f.Drift.Position(pos, h.DriftTime, t0)
	h.Time = t0
	return h
}

// crossingSpread is the largest distance between two of the three
// crossing points.
func crossingSpread(tr Triplet) float64 {
	d := tr.Dist
	d = math.Max(d, r2.Norm(r2.Sub(tr.VU, tr.XV)))
	d = math.Max(d, r2.Norm(r2.Sub(tr.VU, tr.XU)))
	return d
}

func inverseVariance(sigmas ...float64) []float64 {
	w := make([]float64, len(sigmas))
	for i, s := range sigmas {
		w[i] = 1.0 / (s * s)
	}
	return w
}

// weightedCharge returns the 1/sigma^2 weighted mean of values and its
// uncertainty sqrt(1/sum(w)).
func weightedCharge(values, sigmas []float64) (float64, float64) {
	w := inverseVariance(sigmas...)
	return stat.Mean(values, w), math.Sqrt(1.0 / floats.Sum(w))
}
