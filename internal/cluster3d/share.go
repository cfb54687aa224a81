package cluster3d

import (
	"math"

	"github.com/banshee-data/cluster3d/internal/hits"
)

// ShareLink is one wire hit's contribution to a ShareGroup.
type ShareLink struct {
	Hit hits.HitIndex
	// Measured is the wire hit's full charge.
	Measured float64
	// Charge is the share of Measured assigned to this group.
	Charge float64
}

// ShareGroup collects the wire hits used by one 3D hit.
type ShareGroup struct {
	// Object is the index of the 3D hit in the slice passed to ShareCharge.
	Object int
	// Weight decides how much of a shared wire hit this group receives.
	Weight float64
	Links  []ShareLink
}

// AddMeasurement links a wire hit and its measured charge to the group.
func (g *ShareGroup) AddMeasurement(hit hits.HitIndex, charge float64) {
	g.Links = append(g.Links, ShareLink{Hit: hit, Measured: charge, Charge: charge})
}

type linkRef struct {
	group, link int
}

// ChargeShare distributes each wire hit's charge over the groups that
// reference it.
type ChargeShare struct {
	groups []*ShareGroup
	byHit  map[hits.HitIndex][]linkRef
	order  []hits.HitIndex
}

// NewChargeShare creates an empty solver.
func NewChargeShare() *ChargeShare {
	return &ChargeShare{byHit: make(map[hits.HitIndex][]linkRef)}
}

// AddGroup starts a new group for the 3D hit at object.
func (s *ChargeShare) AddGroup(object int, weight float64) *ShareGroup {
	g := &ShareGroup{Object: object, Weight: weight}
	s.groups = append(s.groups, g)
	return g
}

// Groups returns the groups in the order they were added.
func (s *ChargeShare) Groups() []*ShareGroup { return s.groups }

// index builds the inverted hit -> links index. Hits are visited in order
// of first appearance.
func (s *ChargeShare) index() {
	s.byHit = make(map[hits.HitIndex][]linkRef)
	s.order = s.order[:0]
	for gi, g := range s.groups {
		for li, l := range g.Links {
			if _, seen := s.byHit[l.Hit]; !seen {
				s.order = append(s.order, l.Hit)
			}
			s.byHit[l.Hit] = append(s.byHit[l.Hit], linkRef{gi, li})
		}
	}
}

// Solve splits every wire hit's measured charge over its groups in
// proportion to the group weights, so the shares of a hit always add up to
// its measured charge. This is one pass, not a converged fit: the weights
// are fixed before any sharing happens.
func (s *ChargeShare) Solve() {
	s.index()
	for _, hit := range s.order {
		refs := s.byHit[hit]
		total := 0.0
		for _, r := range refs {
			total += s.groups[r.group].Weight
		}
		for _, r := range refs {
			l := &s.groups[r.group].Links[r.link]
			if total > 0 && !math.IsInf(total, 0) {
				l.Charge = l.Measured * s.groups[r.group].Weight / total
			} else {
				l.Charge = l.Measured / float64(len(refs))
			}
		}
	}
}

// ShareCharge replaces the charge of every 3D hit with the 1/sigma^2
// weighted mean of its wire hits' shares, so a wire hit used by several 3D
// hits is not counted more than once. The returned solver exposes the
// shares.
func ShareCharge(a *hits.Arena, hits3d []Hit3D) *ChargeShare {
	share := NewChargeShare()
	for i := range hits3d {
		g := share.AddGroup(i, groupWeight(hits3d[i]))
		for _, c := range hits3d[i].Constituents {
			g.AddMeasurement(c, a.Hit(c).Charge)
		}
	}

	share.Solve()

	for _, g := range share.Groups() {
		totalCharge := 0.0
		totalSigma := 0.0
		for _, l := range g.Links {
			// The sigma is not reduced by the share. It stands in for the
			// extra error from sharing but is not formally correct.
			sigma := a.Hit(l.Hit).ChargeUncertainty
			totalCharge += l.Charge / (sigma * sigma)
			totalSigma += 1.0 / (sigma * sigma)
		}
		h := &hits3d[g.Object]
		h.Charge = totalCharge / totalSigma
		h.ChargeUncertainty = math.Sqrt(1.0 / totalSigma)
	}
	return share
}

// groupWeight is the inverse variance of the 3D hit's unshared charge.
func groupWeight(h Hit3D) float64 {
	if h.ChargeUncertainty <= 0 {
		return 0
	}
	return 1.0 / (h.ChargeUncertainty * h.ChargeUncertainty)
}
