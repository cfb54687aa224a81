// Package units provides the unit system shared by the clusterer.
//
// Values are stored in base units: lengths in millimetres, times in
// nanoseconds and charge in photo-electron equivalents (pe). Multiply a
// number by a unit constant to convert it into base units, divide to read it
// back: 16*units.Microsecond, x/units.CM.
package units

import (
	"fmt"
	"math"
)

// Base units and common multiples.
const (
	MM = 1.0
	CM = 10 * MM
	M  = 1000 * MM

	NS          = 1.0
	Microsecond = 1000 * NS
	MS          = 1000 * Microsecond

	PE = 1.0

	EV  = 1.0e-6 * MeV
	KeV = 1.0e-3 * MeV
	MeV = 1.0
)

// Unit type names accepted by AsString.
const (
	Length = "length"
	Time   = "time"
	Charge = "pe"
	Energy = "energy"
)

type scale struct {
	factor float64
	label  string
}

// Scales for each unit type, largest first.
var scales = map[string][]scale{
	Length: {{M, "m"}, {CM, "cm"}, {MM, "mm"}},
	Time:   {{MS, "ms"}, {Microsecond, "us"}, {NS, "ns"}},
	Charge: {{PE, "pe"}},
	Energy: {{MeV, "MeV"}, {KeV, "keV"}, {EV, "eV"}},
}

func pick(value float64, unit string) scale {
	ss, ok := scales[unit]
	if !ok {
		return scale{1, ""}
	}
	a := math.Abs(value)
	for _, s := range ss {
		if a >= s.factor {
			return s
		}
	}
	return ss[len(ss)-1]
}

// AsString formats a value in base units using a readable multiple of the
// unit type, e.g. AsString(1500, Time) = "1.5 us". Unknown unit types print
// the bare number.
func AsString(value float64, unit string) string {
	s := pick(value, unit)
	if s.label == "" {
		return fmt.Sprintf("%.4g", value)
	}
	return fmt.Sprintf("%.4g %s", value/s.factor, s.label)
}

// AsStringWithError formats a value and its uncertainty in the same multiple.
func AsStringWithError(value, uncertainty float64, unit string) string {
	s := pick(value, unit)
	if s.label == "" {
		return fmt.Sprintf("%.4g +- %.2g", value, uncertainty)
	}
	return fmt.Sprintf("%.4g +- %.2g %s", value/s.factor, uncertainty/s.factor, s.label)
}
