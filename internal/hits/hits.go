// Package hits defines the one-dimensional wire and trigger measurements
// consumed by the 3D clusterer.
//
// A Hit1D is immutable once produced upstream. Derived objects never own
// hits: they refer to them by HitIndex into an Arena that lives for one
// event.
package hits

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Plane identifies the wire plane a hit was measured on.
type Plane int

const (
	PlaneUnknown Plane = iota
	PlaneX             // A
	PlaneV             // B
	PlaneU             // C
)

// String returns the plane letter used in logs and event files.
func (p Plane) String() string {
	switch p {
	case PlaneX:
		return "X"
	case PlaneV:
		return "V"
	case PlaneU:
		return "U"
	default:
		return fmt.Sprintf("Plane(%d)", int(p))
	}
}

// Valid reports whether p is one of the three wire planes.
func (p Plane) Valid() bool { return p == PlaneX || p == PlaneV || p == PlaneU }

// ParsePlane maps a plane letter back to a Plane. Unknown letters map to
// PlaneUnknown.
func ParsePlane(s string) Plane {
	switch s {
	case "X", "x", "A", "a":
		return PlaneX
	case "V", "v", "B", "b":
		return PlaneV
	case "U", "u", "C", "c":
		return PlaneU
	}
	return PlaneUnknown
}

// Hit1D is a calibrated single-wire measurement (or a trigger hit, for
// which only Time is meaningful).
type Hit1D struct {
	Plane Plane

	// Position is the wire's position in the transverse plane and WireDir
	// the unit vector along the wire.
	Position r2.Vec
	WireDir  r2.Vec

	Time            float64
	TimeRMS         float64
	TimeUncertainty float64

	Charge            float64
	ChargeUncertainty float64

	// RMS is the hit's spatial extent. X is perpendicular to the wire.
	RMS r3.Vec
}

// Selection is a named list of hits, the unit of exchange with the
// surrounding application.
type Selection struct {
	Name string
	Hits []Hit1D
}

// NewSelection creates a named selection.
func NewSelection(name string, h ...Hit1D) *Selection {
	return &Selection{Name: name, Hits: h}
}

// Len returns the number of hits, treating a nil selection as empty.
func (s *Selection) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Hits)
}
