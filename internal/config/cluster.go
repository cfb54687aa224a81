package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical clusterer defaults file.
const DefaultConfigPath = "config/cluster3d.defaults.json"

// Overlap policy names.
const (
	OverlapMax        = "max"
	OverlapQuadrature = "quadrature"
)

// Time fusion names.
const (
	TimeFusionWeighted = "weighted"
	TimeFusionBest     = "best"
)

// ClusterConfig holds the 3D clusterer parameters. Every field is optional;
// the Get* accessors supply the defaults for anything left out of the file.
// Times are in ns, lengths in mm and charge in pe.
type ClusterConfig struct {
	// Per-plane separation coefficients applied to each hit's time RMS.
	XSeparation *float64 `json:"x_separation,omitempty"`
	VSeparation *float64 `json:"v_separation,omitempty"`
	USeparation *float64 `json:"u_separation,omitempty"`

	// Digitizer tick; the floor for any time overlap tolerance.
	MinSeparationNanos  *float64 `json:"min_separation_ns,omitempty"`
	MaxDeltaTNanos      *float64 `json:"max_delta_t_ns,omitempty"`
	CrossingToleranceMM *float64 `json:"crossing_tolerance_mm,omitempty"`

	OverlapPolicy *string `json:"overlap_policy,omitempty"` // "max" or "quadrature"
	TimeFusion    *string `json:"time_fusion,omitempty"`    // "weighted" or "best"

	ShareCharge *bool    `json:"share_charge,omitempty"`
	MinChargePE *float64 `json:"min_charge_pe,omitempty"`

	// Used/unused hit selections are only filled below this many wire hits.
	HitLimit *int `json:"hit_limit,omitempty"`

	// Narrow the search window to LimitSearchRMS times the largest hit RMS.
	LimitSearch    *bool    `json:"limit_search,omitempty"`
	LimitSearchRMS *float64 `json:"limit_search_rms,omitempty"`

	// Drift model parameters.
	DriftVelocityMMPerMicrosecond *float64           `json:"drift_velocity_mm_per_us,omitempty"`
	PlaneOffsetsMM                map[string]float64 `json:"plane_offsets_mm,omitempty"`

	EnergyPerChargeMeV *float64 `json:"energy_per_charge_mev,omitempty"`
}

// EmptyClusterConfig returns a ClusterConfig with all fields unset.
func EmptyClusterConfig() *ClusterConfig {
	return &ClusterConfig{}
}

// LoadClusterConfig loads a ClusterConfig from a JSON file.
// The file must have a .json extension and be under 1MB.
// Fields omitted from the file fall back to the Get* defaults.
func LoadClusterConfig(path string) (*ClusterConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyClusterConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical defaults from DefaultConfigPath,
// searching the current directory and its parents up to the repo root.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *ClusterConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadClusterConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *ClusterConfig) Validate() error {
	for name, v := range map[string]*float64{
		"x_separation":      c.XSeparation,
		"v_separation":      c.VSeparation,
		"u_separation":      c.USeparation,
		"min_separation_ns": c.MinSeparationNanos,
		"limit_search_rms":  c.LimitSearchRMS,
		"min_charge_pe":     c.MinChargePE,
	} {
		if v != nil && *v < 0 {
			return fmt.Errorf("%s must be non-negative, got %g", name, *v)
		}
	}
	for name, v := range map[string]*float64{
		"max_delta_t_ns":           c.MaxDeltaTNanos,
		"crossing_tolerance_mm":    c.CrossingToleranceMM,
		"drift_velocity_mm_per_us": c.DriftVelocityMMPerMicrosecond,
	} {
		if v != nil && *v <= 0 {
			return fmt.Errorf("%s must be positive, got %g", name, *v)
		}
	}

	if c.OverlapPolicy != nil {
		switch *c.OverlapPolicy {
		case OverlapMax, OverlapQuadrature:
		default:
			return fmt.Errorf("overlap_policy must be %q or %q, got %q", OverlapMax, OverlapQuadrature, *c.OverlapPolicy)
		}
	}
	if c.TimeFusion != nil {
		switch *c.TimeFusion {
		case TimeFusionWeighted, TimeFusionBest:
		default:
			return fmt.Errorf("time_fusion must be %q or %q, got %q", TimeFusionWeighted, TimeFusionBest, *c.TimeFusion)
		}
	}

	if c.HitLimit != nil && *c.HitLimit < 0 {
		return fmt.Errorf("hit_limit must be non-negative, got %d", *c.HitLimit)
	}

	for plane := range c.PlaneOffsetsMM {
		switch plane {
		case "X", "V", "U":
		default:
			return fmt.Errorf("plane_offsets_mm: unknown plane %q", plane)
		}
	}

	return nil
}

func getFloat(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

// GetXSeparation returns the x_separation value or the default.
func (c *ClusterConfig) GetXSeparation() float64 { return getFloat(c.XSeparation, 2.0) }

// GetVSeparation returns the v_separation value or the default.
func (c *ClusterConfig) GetVSeparation() float64 { return getFloat(c.VSeparation, 2.0) }

// GetUSeparation returns the u_separation value or the default.
func (c *ClusterConfig) GetUSeparation() float64 { return getFloat(c.USeparation, 2.0) }

// GetMinSeparationNanos returns the min_separation_ns value or the default.
func (c *ClusterConfig) GetMinSeparationNanos() float64 { return getFloat(c.MinSeparationNanos, 500) }

// GetMaxDeltaTNanos returns the max_delta_t_ns value or the default (16us).
func (c *ClusterConfig) GetMaxDeltaTNanos() float64 { return getFloat(c.MaxDeltaTNanos, 16000) }

// GetCrossingToleranceMM returns the crossing_tolerance_mm value or the default.
func (c *ClusterConfig) GetCrossingToleranceMM() float64 { return getFloat(c.CrossingToleranceMM, 2.0) }

// GetOverlapPolicy returns the overlap_policy value or the default.
func (c *ClusterConfig) GetOverlapPolicy() string {
	if c.OverlapPolicy == nil || *c.OverlapPolicy == "" {
		return OverlapMax
	}
	return *c.OverlapPolicy
}

// GetTimeFusion returns the time_fusion value or the default.
func (c *ClusterConfig) GetTimeFusion() string {
	if c.TimeFusion == nil || *c.TimeFusion == "" {
		return TimeFusionWeighted
	}
	return *c.TimeFusion
}

// GetShareCharge returns the share_charge value or the default.
func (c *ClusterConfig) GetShareCharge() bool {
	if c.ShareCharge == nil {
		return true
	}
	return *c.ShareCharge
}

// GetMinChargePE returns the min_charge_pe value or the default.
func (c *ClusterConfig) GetMinChargePE() float64 { return getFloat(c.MinChargePE, 10) }

// GetHitLimit returns the hit_limit value or the default.
func (c *ClusterConfig) GetHitLimit() int {
	if c.HitLimit == nil {
		return 3000
	}
	return *c.HitLimit
}

// GetLimitSearch returns the limit_search value or the default (disabled).
func (c *ClusterConfig) GetLimitSearch() bool {
	if c.LimitSearch == nil {
		return false
	}
	return *c.LimitSearch
}

// GetLimitSearchRMS returns the limit_search_rms value or the default.
func (c *ClusterConfig) GetLimitSearchRMS() float64 { return getFloat(c.LimitSearchRMS, 2.0) }

// GetDriftVelocityMMPerMicrosecond returns the drift_velocity_mm_per_us value or the default.
func (c *ClusterConfig) GetDriftVelocityMMPerMicrosecond() float64 {
	return getFloat(c.DriftVelocityMMPerMicrosecond, 1.6)
}

// GetPlaneOffsetMM returns the offset for one plane ("X", "V" or "U"), zero if unset.
func (c *ClusterConfig) GetPlaneOffsetMM(plane string) float64 {
	return c.PlaneOffsetsMM[plane]
}

// GetEnergyPerChargeMeV returns the energy_per_charge_mev value or the default.
func (c *ClusterConfig) GetEnergyPerChargeMeV() float64 { return getFloat(c.EnergyPerChargeMeV, 3.4e-5) }

// Resolved returns a copy of c with every field set from its Get* accessor,
// so the result records the values a run actually used.
func (c *ClusterConfig) Resolved() *ClusterConfig {
	f := func(v float64) *float64 { return &v }
	s := func(v string) *string { return &v }
	b := func(v bool) *bool { return &v }
	hitLimit := c.GetHitLimit()
	return &ClusterConfig{
		XSeparation:                   f(c.GetXSeparation()),
		VSeparation:                   f(c.GetVSeparation()),
		USeparation:                   f(c.GetUSeparation()),
		MinSeparationNanos:            f(c.GetMinSeparationNanos()),
		MaxDeltaTNanos:                f(c.GetMaxDeltaTNanos()),
		CrossingToleranceMM:           f(c.GetCrossingToleranceMM()),
		OverlapPolicy:                 s(c.GetOverlapPolicy()),
		TimeFusion:                    s(c.GetTimeFusion()),
		ShareCharge:                   b(c.GetShareCharge()),
		MinChargePE:                   f(c.GetMinChargePE()),
		HitLimit:                      &hitLimit,
		LimitSearch:                   b(c.GetLimitSearch()),
		LimitSearchRMS:                f(c.GetLimitSearchRMS()),
		DriftVelocityMMPerMicrosecond: f(c.GetDriftVelocityMMPerMicrosecond()),
		PlaneOffsetsMM: map[string]float64{
			"X": c.GetPlaneOffsetMM("X"),
			"V": c.GetPlaneOffsetMM("V"),
			"U": c.GetPlaneOffsetMM("U"),
		},
		EnergyPerChargeMeV: f(c.GetEnergyPerChargeMeV()),
	}
}
