package cluster3d

import (
	"fmt"
	"math"

	"github.com/banshee-data/cluster3d/internal/config"
	"github.com/banshee-data/cluster3d/internal/units"
)

// OverlapPolicy selects how two hits' time tolerances are combined.
type OverlapPolicy int

const (
	// OverlapMax takes the largest of the two RMS terms and the floor.
	OverlapMax OverlapPolicy = iota
	// OverlapQuadrature adds both RMS terms and the floor in quadrature.
	OverlapQuadrature
)

// String returns the configuration name of the policy.
func (p OverlapPolicy) String() string {
	if p == OverlapQuadrature {
		return config.OverlapQuadrature
	}
	return config.OverlapMax
}

// OverlapTime is the largest time difference at which two hits with
// scaled RMS r1 and r2 are still considered to overlap.
func (p OverlapPolicy) OverlapTime(r1, r2, step float64) float64 {
	if p == OverlapQuadrature {
		return math.Sqrt(r1*r1 + r2*r2 + step*step)
	}
	return math.Max(r1, math.Max(r2, step))
}

// TimeFusion selects how the 3D hit time is taken from its wire hits.
type TimeFusion int

const (
	// TimeFusionWeighted averages the three drift times with 1/sigma^2 weights.
	TimeFusionWeighted TimeFusion = iota
	// TimeFusionBest takes the time of the wire hit with the smallest
	// time uncertainty.
	TimeFusionBest
)

// String returns the configuration name of the fusion mode.
func (f TimeFusion) String() string {
	if f == TimeFusionBest {
		return config.TimeFusionBest
	}
	return config.TimeFusionWeighted
}

// Params holds the runtime clusterer parameters in base units.
type Params struct {
	XSeparation float64
	VSeparation float64
	USeparation float64

	// MinSeparation is the digitizer tick, the floor of every overlap.
	MinSeparation float64
	// MaxDeltaT bounds the drift time difference of any X/V/U pair that is
	// even looked at.
	MaxDeltaT float64
	// CrossingTolerance is the largest distance allowed between the X-V
	// and X-U crossing points. It depends on the wire pitch.
	CrossingTolerance float64

	Overlap    OverlapPolicy
	TimeFusion TimeFusion

	ShareCharge bool
	// MinCharge drops 3D hits left with less charge after sharing.
	MinCharge float64
	// HitLimit disables the used/unused bookkeeping for events with at
	// least this many wire hits.
	HitLimit int

	LimitSearch    bool
	LimitSearchRMS float64

	EnergyPerCharge float64
}

// DefaultParams returns the production defaults.
func DefaultParams() Params {
	return ParamsFromConfig(config.EmptyClusterConfig())
}

// ParamsFromConfig converts a tuning config into runtime parameters.
func ParamsFromConfig(cfg *config.ClusterConfig) Params {
	p := Params{
		XSeparation:       cfg.GetXSeparation(),
		VSeparation:       cfg.GetVSeparation(),
		USeparation:       cfg.GetUSeparation(),
		MinSeparation:     cfg.GetMinSeparationNanos() * units.NS,
		MaxDeltaT:         cfg.GetMaxDeltaTNanos() * units.NS,
		CrossingTolerance: cfg.GetCrossingToleranceMM() * units.MM,
		ShareCharge:       cfg.GetShareCharge(),
		MinCharge:         cfg.GetMinChargePE() * units.PE,
		HitLimit:          cfg.GetHitLimit(),
		LimitSearch:       cfg.GetLimitSearch(),
		LimitSearchRMS:    cfg.GetLimitSearchRMS(),
		EnergyPerCharge:   cfg.GetEnergyPerChargeMeV() * units.MeV,
	}
	if cfg.GetOverlapPolicy() == config.OverlapQuadrature {
		p.Overlap = OverlapQuadrature
	}
	if cfg.GetTimeFusion() == config.TimeFusionBest {
		p.TimeFusion = TimeFusionBest
	}
	return p
}

// Validate checks the parameters can drive a search.
func (p Params) Validate() error {
	if p.MaxDeltaT <= 0 {
		return fmt.Errorf("max delta t must be positive, got %g", p.MaxDeltaT)
	}
	if p.CrossingTolerance <= 0 {
		return fmt.Errorf("crossing tolerance must be positive, got %g", p.CrossingTolerance)
	}
	if p.XSeparation < 0 || p.VSeparation < 0 || p.USeparation < 0 || p.MinSeparation < 0 {
		return fmt.Errorf("separations must be non-negative")
	}
	if p.LimitSearch && p.LimitSearchRMS <= 0 {
		return fmt.Errorf("limit search rms must be positive, got %g", p.LimitSearchRMS)
	}
	return nil
}
