package cluster3d

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/banshee-data/cluster3d/internal/hits"
)

func TestChargeShare_Solve(t *testing.T) {
	s := NewChargeShare()
	g1 := s.AddGroup(0, 1)
	g1.AddMeasurement(7, 100)
	g1.AddMeasurement(8, 40)
	g2 := s.AddGroup(1, 3)
	g2.AddMeasurement(7, 100)

	s.Solve()

	groups := s.Groups()
	if got := groups[0].Links[0].Charge; !floatEquals(got, 25, 1e-12) {
		t.Errorf("group 0 share of hit 7 = %v, want 25", got)
	}
	if got := groups[1].Links[0].Charge; !floatEquals(got, 75, 1e-12) {
		t.Errorf("group 1 share of hit 7 = %v, want 75", got)
	}
	if got := groups[0].Links[1].Charge; got != 40 {
		t.Errorf("unshared hit 8 = %v, want 40", got)
	}
	if groups[0].Links[0].Measured != 100 {
		t.Errorf("Measured changed to %v", groups[0].Links[0].Measured)
	}
}

func TestChargeShare_ZeroWeights(t *testing.T) {
	s := NewChargeShare()
	for i := 0; i < 4; i++ {
		s.AddGroup(i, 0).AddMeasurement(1, 60)
	}
	s.Solve()
	for i, g := range s.Groups() {
		if got := g.Links[0].Charge; got != 15 {
			t.Errorf("group %d share = %v, want 15", i, got)
		}
	}
}

// sharedVEvent has one X and one V hit that both cross two nearby U wires.
func sharedVEvent() []hits.Hit1D {
	p := r2.Vec{X: 5, Y: 5}
	return []hits.Hit1D{
		wireHit(hits.PlaneX, p, 5000, 200),
		wireHit(hits.PlaneV, p, 5000, 180),
		wireHit(hits.PlaneU, p, 5000, 100),
		wireHit(hits.PlaneU, r2.Add(p, r2.Vec{X: 0.8}), 5050, 90),
	}
}

func TestShareCharge_SharedHitSumsToCharge(t *testing.T) {
	got, _, a := matchHits(t, DefaultParams(), sharedVEvent())
	if len(got) != 2 {
		t.Fatalf("got %d triplets, want 2", len(got))
	}
	fuser := NewFuser(DefaultParams(), testDrift(t))
	hits3d := []Hit3D{fuser.Fuse(a, got[0], 0), fuser.Fuse(a, got[1], 0)}
	// Make the groups unequal so the split is not just half and half.
	hits3d[1].ChargeUncertainty *= 2

	share := ShareCharge(a, hits3d)

	sums := map[hits.HitIndex]float64{}
	for _, g := range share.Groups() {
		for _, l := range g.Links {
			sums[l.Hit] += l.Charge
		}
	}
	for idx, sum := range sums {
		want := a.Hit(idx).Charge
		if !floatEquals(sum, want, 1e-9*want) {
			t.Errorf("hit %d shares sum to %v, want %v", idx, sum, want)
		}
	}

	// Group 0 has four times the weight of group 1.
	vShare0 := share.Groups()[0].Links[1].Charge
	if !floatEquals(vShare0, 0.8*180, 1e-9) {
		t.Errorf("V share of first hit = %v, want %v", vShare0, 0.8*180)
	}

	// Each 3D hit charge is the weighted mean of its shares.
	for i, g := range share.Groups() {
		var num, den float64
		for _, l := range g.Links {
			s := a.Hit(l.Hit).ChargeUncertainty
			num += l.Charge / (s * s)
			den += 1 / (s * s)
		}
		if !floatEquals(hits3d[i].Charge, num/den, 1e-9) {
			t.Errorf("hit3d %d charge = %v, want %v", i, hits3d[i].Charge, num/den)
		}
		if !floatEquals(hits3d[i].ChargeUncertainty, math.Sqrt(1/den), 1e-12) {
			t.Errorf("hit3d %d charge uncertainty = %v", i, hits3d[i].ChargeUncertainty)
		}
	}
}
