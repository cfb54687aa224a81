package cluster3d

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/banshee-data/cluster3d/internal/hits"
	"github.com/banshee-data/cluster3d/internal/units"
)

func fuseOne(t *testing.T, p Params, in []hits.Hit1D, t0 float64) Hit3D {
	t.Helper()
	got, _, a := matchHits(t, p, in)
	if len(got) != 1 {
		t.Fatalf("got %d triplets, want 1", len(got))
	}
	return NewFuser(p, testDrift(t)).Fuse(a, got[0], t0)
}

func TestFuse_WeightedTimeAndCharge(t *testing.T) {
	p := r2.Vec{X: 12, Y: 7}
	in := []hits.Hit1D{
		wireHit(hits.PlaneX, p, 8000, 120),
		wireHit(hits.PlaneV, p, 8100, 80),
		wireHit(hits.PlaneU, p, 7950, 100),
	}
	in[0].TimeUncertainty, in[1].TimeUncertainty, in[2].TimeUncertainty = 40, 80, 60
	in[0].ChargeUncertainty, in[1].ChargeUncertainty, in[2].ChargeUncertainty = 10, 20, 15
	in[0].TimeRMS, in[1].TimeRMS, in[2].TimeRMS = 210, 180, 240

	t0 := 1000.0
	h := fuseOne(t, DefaultParams(), in, t0)

	var tw, tsum, qw, qsum float64
	for _, c := range in {
		w := 1 / (c.TimeUncertainty * c.TimeUncertainty)
		tw += w
		tsum += c.Time * w
		wq := 1 / (c.ChargeUncertainty * c.ChargeUncertainty)
		qw += wq
		qsum += c.Charge * wq
	}
	wantTime := tsum / tw
	if !floatEquals(h.DriftTime, wantTime, 1e-9) {
		t.Errorf("DriftTime = %v, want %v", h.DriftTime, wantTime)
	}
	if !floatEquals(h.TimeUncertainty, math.Sqrt(3/tw), 1e-12) {
		t.Errorf("TimeUncertainty = %v, want %v", h.TimeUncertainty, math.Sqrt(3/tw))
	}
	if h.TimeRMS != 180 {
		t.Errorf("TimeRMS = %v, want the minimum 180", h.TimeRMS)
	}
	if !floatEquals(h.Charge, qsum/qw, 1e-9) {
		t.Errorf("Charge = %v, want %v", h.Charge, qsum/qw)
	}
	if !floatEquals(h.ChargeUncertainty, math.Sqrt(1/qw), 1e-12) {
		t.Errorf("ChargeUncertainty = %v, want %v", h.ChargeUncertainty, math.Sqrt(1/qw))
	}

	// Time is replaced by time zero and Z by the drift distance.
	if h.Time != t0 {
		t.Errorf("Time = %v, want t0 %v", h.Time, t0)
	}
	v := testDrift(t).AverageDriftVelocity()
	if !floatEquals(h.Position.Z, -(wantTime-t0)*v, 1e-9) {
		t.Errorf("Z = %v, want %v", h.Position.Z, -(wantTime-t0)*v)
	}
	if !floatEquals(h.Position.X, p.X, 1e-9) || !floatEquals(h.Position.Y, p.Y, 1e-9) {
		t.Errorf("XY = (%v, %v), want %v", h.Position.X, h.Position.Y, p)
	}

	// All crossings coincide, so the XY RMS comes only from the hit RMS.
	wantXY := math.Sqrt(2 * 1.5 * 1.5)
	if !floatEquals(h.RMS.X, wantXY, 1e-9) || h.RMS.X != h.RMS.Y {
		t.Errorf("RMS = %v, want XY %v", h.RMS, wantXY)
	}
	if !floatEquals(h.RMS.Z, 180*v, 1e-12) {
		t.Errorf("RMS.Z = %v, want %v", h.RMS.Z, 180*v)
	}
	if !floatEquals(h.Uncertainty.X, 2*wantXY/math.Sqrt(12), 1e-9) {
		t.Errorf("Uncertainty.X = %v", h.Uncertainty.X)
	}
	if !floatEquals(h.Uncertainty.Z, h.TimeUncertainty*v, 1e-12) {
		t.Errorf("Uncertainty.Z = %v", h.Uncertainty.Z)
	}
	if h.Constituents != [3]hits.HitIndex{0, 1, 2} {
		t.Errorf("Constituents = %v", h.Constituents)
	}
}

func TestFuse_BestTime(t *testing.T) {
	p := r2.Vec{}
	in := pointHits(p, 6000, 100, 100, 100)
	in[1].Time = 6200
	in[0].TimeUncertainty, in[1].TimeUncertainty, in[2].TimeUncertainty = 60, 20, 40

	params := DefaultParams()
	params.TimeFusion = TimeFusionBest
	h := fuseOne(t, params, in, 0)
	if h.DriftTime != 6200 {
		t.Errorf("DriftTime = %v, want the V time 6200", h.DriftTime)
	}
	if h.TimeUncertainty != 20 {
		t.Errorf("TimeUncertainty = %v, want 20", h.TimeUncertainty)
	}
}

func TestFuse_CrossingSpread(t *testing.T) {
	// Shift the U wire so the three crossings no longer coincide.
	p := r2.Vec{}
	in := pointHits(p, 5000, 100, 100, 100)
	in[2] = wireHit(hits.PlaneU, r2.Vec{X: 1 * units.MM}, 5000, 100)

	got, _, a := matchHits(t, DefaultParams(), in)
	if len(got) != 1 {
		t.Fatalf("got %d triplets, want 1", len(got))
	}
	tr := got[0]
	h := NewFuser(DefaultParams(), testDrift(t)).Fuse(a, tr, 0)

	spread := math.Max(tr.Dist, math.Max(r2.Norm(r2.Sub(tr.VU, tr.XV)), r2.Norm(r2.Sub(tr.VU, tr.XU))))
	// The shifted U wire makes an equilateral triangle with 1/sqrt(3) sides.
	if !floatEquals(spread, 1/math.Sqrt(3), 1e-9) {
		t.Fatalf("spread = %v, want %v", spread, 1/math.Sqrt(3))
	}
	want := math.Sqrt(2*1.5*1.5 + spread*spread)
	if !floatEquals(h.RMS.X, want, 1e-9) {
		t.Errorf("RMS.X = %v, want %v", h.RMS.X, want)
	}
	centre := r2.Scale(1.0/3, r2.Add(tr.XV, r2.Add(tr.XU, tr.VU)))
	if !floatEquals(h.Position.X, centre.X, 1e-12) || !floatEquals(h.Position.Y, centre.Y, 1e-12) {
		t.Errorf("XY = (%v, %v), want %v", h.Position.X, h.Position.Y, centre)
	}
}
