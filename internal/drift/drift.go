// Package drift maps measured wire-hit times onto a common drift reference
// and drifted times back onto positions.
package drift

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/cluster3d/internal/config"
	"github.com/banshee-data/cluster3d/internal/hits"
	"github.com/banshee-data/cluster3d/internal/units"
)

// DefaultVelocity is the average electron drift velocity in liquid argon at
// the nominal field, in mm/ns.
const DefaultVelocity = 1.6 * units.MM / units.Microsecond

// Model is the drift collaborator used by the clusterer.
type Model interface {
	// Time returns the hit time corrected to the Z=0 reference plane.
	Time(h *hits.Hit1D) float64
	// Position moves a point measured at Z=0 with drift-corrected time t
	// to where the charge was deposited, given the event time zero t0.
	Position(pos r3.Vec, t, t0 float64) r3.Vec
	// AverageDriftVelocity is used to turn time spreads into Z spreads.
	AverageDriftVelocity() float64
}

// ConstantVelocity is a uniform-field drift model. PlaneOffsets holds the
// distance of each wire plane above the Z=0 reference; charge reaches a
// plane that sits higher later, so its hit times are pulled back.
type ConstantVelocity struct {
	Velocity     float64
	PlaneOffsets map[hits.Plane]float64
}

// NewConstantVelocity returns a model with the given velocity and no plane
// offsets.
func NewConstantVelocity(velocity float64) (*ConstantVelocity, error) {
	if velocity <= 0 {
		return nil, fmt.Errorf("drift velocity must be positive, got %g", velocity)
	}
	return &ConstantVelocity{Velocity: velocity, PlaneOffsets: map[hits.Plane]float64{}}, nil
}

// FromConfig builds the drift model described by the clusterer config.
func FromConfig(cfg *config.ClusterConfig) (*ConstantVelocity, error) {
	m, err := NewConstantVelocity(cfg.GetDriftVelocityMMPerMicrosecond() * units.MM / units.Microsecond)
	if err != nil {
		return nil, err
	}
	for _, p := range []hits.Plane{hits.PlaneX, hits.PlaneV, hits.PlaneU} {
		if off := cfg.GetPlaneOffsetMM(p.String()); off != 0 {
			m.PlaneOffsets[p] = off * units.MM
		}
	}
	return m, nil
}

// Time implements Model.
func (m *ConstantVelocity) Time(h *hits.Hit1D) float64 {
	return h.Time - m.PlaneOffsets[h.Plane]/m.Velocity
}

// Position implements Model. Charge drifts up towards the wires, so later
// arrival means a deeper (more negative) Z.
func (m *ConstantVelocity) Position(pos r3.Vec, t, t0 float64) r3.Vec {
	pos.Z -= (t - t0) * m.Velocity
	return pos
}

// AverageDriftVelocity implements Model.
func (m *ConstantVelocity) AverageDriftVelocity() float64 { return m.Velocity }
