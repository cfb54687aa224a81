package cluster3d

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/banshee-data/cluster3d/internal/drift"
	"github.com/banshee-data/cluster3d/internal/hits"
)

// Triplet is one X/V/U combination that passed every consistency check.
type Triplet struct {
	X, V, U hits.HitIndex

	// Drift corrected times of the three wire hits.
	TX, TV, TU float64

	// Crossing points of the X-V, X-U and V-U wire pairs.
	XV, XU, VU r2.Vec
	// Dist is the distance between the X-V and X-U crossings.
	Dist float64
}

// MatchStats counts the work done by one Match call.
type MatchStats struct {
	Trials    int
	Parallel  int
	MaxDeltaT float64
}

// Matcher searches the plane-sorted wire hits for X/V/U triplets.
type Matcher struct {
	Params Params
	Drift  drift.Model
}

// NewMatcher creates a Matcher.
func NewMatcher(p Params, m drift.Model) *Matcher {
	return &Matcher{Params: p, Drift: m}
}

// searchWindow returns the time window used for the plane cursors.
func (m *Matcher) searchWindow(a *hits.Arena, s PlaneSplit) float64 {
	if !m.Params.LimitSearch {
		return m.Params.MaxDeltaT
	}
	// The full search is close to cubic in the number of hits, so large
	// events can restrict it to a few times the widest hit.
	maxRMS := 0.0
	for _, plane := range [][]hits.HitIndex{s.X, s.V, s.U} {
		for _, idx := range plane {
			maxRMS = math.Max(maxRMS, a.Hit(idx).TimeRMS)
		}
	}
	if w := m.Params.LimitSearchRMS * maxRMS; w > 0 {
		return w
	}
	return m.Params.MaxDeltaT
}

// Match returns every triplet whose pairwise drift times overlap and whose
// wires cross at one point. The planes in s must be sorted by time.
// Triplets come out in scan order: by X, then V, then U.
func (m *Matcher) Match(a *hits.Arena, s PlaneSplit) ([]Triplet, MatchStats) {
	maxDeltaT := m.searchWindow(a, s)
	stats := MatchStats{MaxDeltaT: maxDeltaT}

	times := make([]float64, a.Len())
	for _, idx := range a.Indexes() {
		times[idx] = m.Drift.Time(a.Hit(idx))
	}

	var out []Triplet
	vBegin, uBegin := 0, 0
	for _, xi := range s.X {
		stats.Trials++
		xh := a.Hit(xi)
		xTime := times[xi]
		for vBegin < len(s.V) && times[s.V[vBegin]]-xTime < -maxDeltaT {
			vBegin++
		}
		for uBegin < len(s.U) && times[s.U[uBegin]]-xTime < -maxDeltaT {
			uBegin++
		}

		for _, vi := range s.V[vBegin:] {
			stats.Trials++
			vTime := times[vi]
			if vTime-xTime > maxDeltaT {
				break
			}
			vh := a.Hit(vi)

			for _, ui := range s.U[uBegin:] {
				stats.Trials++
				uTime := times[ui]
				if uTime-xTime > maxDeltaT {
					break
				}
				if math.Abs(vTime-uTime) > maxDeltaT {
					continue
				}
				uh := a.Hit(ui)

				if !m.overlaps(xTime, uTime, m.Params.XSeparation*xh.TimeRMS, m.Params.USeparation*uh.TimeRMS) {
					continue
				}
				if !m.overlaps(xTime, vTime, m.Params.XSeparation*xh.TimeRMS, m.Params.VSeparation*vh.TimeRMS) {
					continue
				}
				if !m.overlaps(uTime, vTime, m.Params.USeparation*uh.TimeRMS, m.Params.VSeparation*vh.TimeRMS) {
					continue
				}

				tr, ok := m.cross(xh, vh, uh)
				if !ok {
					stats.Parallel++
					continue
				}
				if tr.Dist > m.Params.CrossingTolerance {
					continue
				}
				tr.X, tr.V, tr.U = xi, vi, ui
				tr.TX, tr.TV, tr.TU = xTime, vTime, uTime
				out = append(out, tr)
			}
		}
	}
	return out, stats
}

func (m *Matcher) overlaps(t1, t2, rms1, rms2 float64) bool {
	return math.Abs(t1-t2) <= m.Params.Overlap.OverlapTime(rms1, rms2, m.Params.MinSeparation)
}

// cross fills the crossing points of a candidate. ok is false when any pair
// of wires is parallel.
func (m *Matcher) cross(xh, vh, uh *hits.Hit1D) (Triplet, bool) {
	var tr Triplet
	var err error
	if tr.XV, err = CrossingXY(xh, vh); err != nil {
		return tr, false
	}
	if tr.XU, err = CrossingXY(xh, uh); err != nil {
		return tr, false
	}
	if tr.VU, err = CrossingXY(vh, uh); err != nil {
		return tr, false
	}
	tr.Dist = r2.Norm(r2.Sub(tr.XU, tr.XV))
	return tr, true
}
