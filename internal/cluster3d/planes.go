package cluster3d

import (
	"math"
	"sort"

	"github.com/banshee-data/cluster3d/internal/hits"
	"github.com/banshee-data/cluster3d/internal/monitoring"
)

// PlaneSplit holds the wire hits of each plane, sorted by time.
type PlaneSplit struct {
	X, V, U []hits.HitIndex
	// Invalid counts hits skipped for an unrecognised plane or for a time
	// or charge uncertainty that cannot be used as a weight.
	Invalid int
}

// SplitPlanes partitions the arena by wire plane. Each list is sorted by
// ascending hit time; equal times keep arena order.
func SplitPlanes(a *hits.Arena) PlaneSplit {
	var s PlaneSplit
	for _, idx := range a.Indexes() {
		h := a.Hit(idx)
		if h.Plane.Valid() && !usableUncertainty(h) {
			s.Invalid++
			monitoring.Errorf("Unusable uncertainty for hit %d: time %g charge %g", idx, h.TimeUncertainty, h.ChargeUncertainty)
			continue
		}
		switch h.Plane {
		case hits.PlaneX:
			s.X = append(s.X, idx)
		case hits.PlaneV:
			s.V = append(s.V, idx)
		case hits.PlaneU:
			s.U = append(s.U, idx)
		default:
			s.Invalid++
			monitoring.Errorf("Invalid wire plane %v for hit %d", h.Plane, idx)
		}
	}
	for _, plane := range [][]hits.HitIndex{s.X, s.V, s.U} {
		sortByTime(a, plane)
	}
	return s
}

// usableUncertainty reports whether both uncertainties are finite and
// positive, so 1/sigma^2 weights stay finite.
func usableUncertainty(h *hits.Hit1D) bool {
	return positiveFinite(h.TimeUncertainty) && positiveFinite(h.ChargeUncertainty)
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

func sortByTime(a *hits.Arena, idx []hits.HitIndex) {
	sort.SliceStable(idx, func(i, j int) bool {
		return a.Hit(idx[i]).Time < a.Hit(idx[j]).Time
	})
}
