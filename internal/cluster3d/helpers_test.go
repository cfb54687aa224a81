package cluster3d

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/cluster3d/internal/drift"
	"github.com/banshee-data/cluster3d/internal/hits"
	"github.com/banshee-data/cluster3d/internal/monitoring"
)

// Wire angles used by the test geometry, in degrees from the +X axis.
const (
	angleX = 90.0
	angleV = 30.0
	angleU = 150.0
)

func planeAngle(p hits.Plane) float64 {
	switch p {
	case hits.PlaneV:
		return angleV
	case hits.PlaneU:
		return angleU
	default:
		return angleX
	}
}

// wireHit returns a hit on plane whose wire passes through p.
func wireHit(plane hits.Plane, p r2.Vec, time, charge float64) hits.Hit1D {
	a := planeAngle(plane) * math.Pi / 180
	dir := r2.Vec{X: math.Cos(a), Y: math.Sin(a)}
	return hits.Hit1D{
		Plane:             plane,
		Position:          r2.Sub(p, r2.Scale(25, dir)),
		WireDir:           dir,
		Time:              time,
		TimeRMS:           200,
		TimeUncertainty:   50,
		Charge:            charge,
		ChargeUncertainty: 10,
		RMS:               r3.Vec{X: 1.5, Y: 1.5},
	}
}

// pointHits returns one X, V and U hit for a deposit at p.
func pointHits(p r2.Vec, time float64, qx, qv, qu float64) []hits.Hit1D {
	return []hits.Hit1D{
		wireHit(hits.PlaneX, p, time, qx),
		wireHit(hits.PlaneV, p, time, qv),
		wireHit(hits.PlaneU, p, time, qu),
	}
}

func triggerHits(times ...float64) []hits.Hit1D {
	out := make([]hits.Hit1D, len(times))
	for i, t := range times {
		out[i] = hits.Hit1D{Time: t}
	}
	return out
}

func testDrift(t *testing.T) *drift.ConstantVelocity {
	t.Helper()
	m, err := drift.NewConstantVelocity(drift.DefaultVelocity)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func quietLogs(t *testing.T) {
	t.Helper()
	original := monitoring.Logf
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.SetLogger(original) })
}

func floatEquals(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}
