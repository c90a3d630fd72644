package risk

// Config holds floors and normalization references.
type Config struct {
	Floor             float64            `yaml:"floor"`
	Floors            map[string]float64 `yaml:"floors"`
	Visibility        float64            `yaml:"visibility"`
	EvidenceWindowSec float64            `yaml:"evidence_window_seconds"`

	BrakingPreSec    float64 `yaml:"braking_pre_seconds"`
	BrakingPostSec   float64 `yaml:"braking_post_seconds"`
	BrakingJerkRef   float64 `yaml:"braking_jerk_ref"`
	BrakingTravelMin float64 `yaml:"braking_travel_min"`
	BrakingLowCap    float64 `yaml:"braking_low_travel_cap"`

	KneePostSec      float64 `yaml:"knee_post_seconds"`
	KneeCollapseRef  float64 `yaml:"knee_collapse_ref_deg"`
	KneePelvisDrop   float64 `yaml:"knee_pelvis_drop_ref"`
	SnapWindowSec    float64 `yaml:"snap_window_seconds"`
	SnapRef          float64 `yaml:"snap_ref"`
	MismatchRef      float64 `yaml:"mismatch_ref"`
	MixedBoost       float64 `yaml:"mixed_boost"`
	LeanRef          float64 `yaml:"lean_ref"`
	LeanStaticMin    float64 `yaml:"lean_static_min"`
	LeanStaticDrift  float64 `yaml:"lean_static_drift"`
	LeanMonitorCap   float64 `yaml:"lean_monitor_cap"`
	FootLineLow      float64 `yaml:"foot_line_low"`
	FootLineMed      float64 `yaml:"foot_line_med"`
	FootLineCollapse float64 `yaml:"foot_line_collapse"`
}

// DefaultConfig returns the risk defaults.
func DefaultConfig() Config {
	return Config{
		Floor:             0.15,
		Visibility:        0.5,
		EvidenceWindowSec: 0.2,
		BrakingPreSec:     0.2,
		BrakingPostSec:    0.15,
		BrakingJerkRef:    60,
		BrakingTravelMin:  0.02,
		BrakingLowCap:     0.3,
		KneePostSec:       0.3,
		KneeCollapseRef:   15,
		KneePelvisDrop:    0.04,
		SnapWindowSec:     0.2,
		SnapRef:           750,
		MismatchRef:       6,
		MixedBoost:        1.15,
		LeanRef:           0.25,
		LeanStaticMin:     0.15,
		LeanStaticDrift:   0.05,
		LeanMonitorCap:    0.35,
		FootLineLow:       0.08,
		FootLineMed:       0.15,
		FootLineCollapse:  0.035,
	}
}

// FloorFor returns the floor for id, honouring per-risk overrides.
func (c Config) FloorFor(id ID) float64 {
	if f, ok := c.Floors[string(id)]; ok && f >= 0 && f <= 1 {
		return f
	}
	return c.Floor
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	for _, p := range []struct {
		v   *float64
		def float64
	}{
		{&c.Floor, d.Floor},
		{&c.Visibility, d.Visibility},
		{&c.EvidenceWindowSec, d.EvidenceWindowSec},
		{&c.BrakingPreSec, d.BrakingPreSec},
		{&c.BrakingPostSec, d.BrakingPostSec},
		{&c.BrakingJerkRef, d.BrakingJerkRef},
		{&c.BrakingTravelMin, d.BrakingTravelMin},
		{&c.BrakingLowCap, d.BrakingLowCap},
		{&c.KneePostSec, d.KneePostSec},
		{&c.KneeCollapseRef, d.KneeCollapseRef},
		{&c.KneePelvisDrop, d.KneePelvisDrop},
		{&c.SnapWindowSec, d.SnapWindowSec},
		{&c.SnapRef, d.SnapRef},
		{&c.MismatchRef, d.MismatchRef},
		{&c.MixedBoost, d.MixedBoost},
		{&c.LeanRef, d.LeanRef},
		{&c.LeanStaticMin, d.LeanStaticMin},
		{&c.LeanStaticDrift, d.LeanStaticDrift},
		{&c.LeanMonitorCap, d.LeanMonitorCap},
		{&c.FootLineLow, d.FootLineLow},
		{&c.FootLineMed, d.FootLineMed},
		{&c.FootLineCollapse, d.FootLineCollapse},
	} {
		if *p.v <= 0 {
			*p.v = p.def
		}
	}
	return c
}
