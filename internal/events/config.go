package events

// Config holds detector tunables. Durations are seconds and are scaled by
// fps at run time.
type Config struct {
	MinFrames         int     `yaml:"min_frames"`
	ReleaseVisibility float64 `yaml:"release_visibility"`
	FootVisibility    float64 `yaml:"foot_visibility"`

	// RELEASE
	ReleaseMinAfterSec float64 `yaml:"release_min_after_seconds"`
	ReleaseMaxAfterSec float64 `yaml:"release_max_after_seconds"`
	WristShoulderTol   float64 `yaml:"wrist_shoulder_tolerance"`
	FollowThroughTol   float64 `yaml:"follow_through_tolerance"`
	VelocityDropRatio  float64 `yaml:"velocity_drop_ratio"`
	ApexMargin         float64 `yaml:"apex_margin"`
	SmoothingSec       float64 `yaml:"smoothing_seconds"`

	// UAH
	UAHLookbackSec float64 `yaml:"uah_lookback_seconds"`
	UAHMinSepSec   float64 `yaml:"uah_min_separation_seconds"`
	UAHBandLow     float64 `yaml:"uah_band_low_deg"`
	UAHBandHigh    float64 `yaml:"uah_band_high_deg"`

	// FFC / BFC
	FFCLookbackSec    float64 `yaml:"ffc_lookback_seconds"`
	FFCWidenedSec     float64 `yaml:"ffc_widened_lookback_seconds"`
	FFCMinGapSec      float64 `yaml:"ffc_min_gap_seconds"`
	BFCLookbackSec    float64 `yaml:"bfc_lookback_seconds"`
	BFCOffsetSec      float64 `yaml:"bfc_offset_seconds"`
	GroundPercentile  float64 `yaml:"ground_percentile"`
	GroundTolerance   float64 `yaml:"ground_tolerance"`
	GroundVelocityTol float64 `yaml:"ground_velocity_tolerance"`
	JitterTolerance   float64 `yaml:"jitter_tolerance"`
	JitterSec         float64 `yaml:"jitter_seconds"`

	ClampPenaltyCap float64 `yaml:"clamp_penalty_cap"`
}

// DefaultConfig returns the tuned detector defaults.
func DefaultConfig() Config {
	return Config{
		MinFrames:          10,
		ReleaseVisibility:  0.25,
		FootVisibility:     0.35,
		ReleaseMinAfterSec: 0.05,
		ReleaseMaxAfterSec: 0.10,
		WristShoulderTol:   0.04,
		FollowThroughTol:   0.10,
		VelocityDropRatio:  0.80,
		ApexMargin:         0.01,
		SmoothingSec:       0.03,
		UAHLookbackSec:     0.6,
		UAHMinSepSec:       0.03,
		UAHBandLow:         70,
		UAHBandHigh:        110,
		FFCLookbackSec:     0.6,
		FFCWidenedSec:      1.2,
		FFCMinGapSec:       0.10,
		BFCLookbackSec:     0.5,
		BFCOffsetSec:       0.14,
		GroundPercentile:   90,
		GroundTolerance:    0.02,
		GroundVelocityTol:  0.3,
		JitterTolerance:    0.005,
		JitterSec:          0.12,
		ClampPenaltyCap:    0.35,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	setInt := func(v *int, def int) {
		if *v <= 0 {
			*v = def
		}
	}
	setF := func(v *float64, def float64) {
		if *v <= 0 {
			*v = def
		}
	}
	setInt(&c.MinFrames, d.MinFrames)
	setF(&c.ReleaseVisibility, d.ReleaseVisibility)
	setF(&c.FootVisibility, d.FootVisibility)
	setF(&c.ReleaseMinAfterSec, d.ReleaseMinAfterSec)
	setF(&c.ReleaseMaxAfterSec, d.ReleaseMaxAfterSec)
	setF(&c.WristShoulderTol, d.WristShoulderTol)
	setF(&c.FollowThroughTol, d.FollowThroughTol)
	setF(&c.VelocityDropRatio, d.VelocityDropRatio)
	setF(&c.ApexMargin, d.ApexMargin)
	setF(&c.SmoothingSec, d.SmoothingSec)
	setF(&c.UAHLookbackSec, d.UAHLookbackSec)
	setF(&c.UAHMinSepSec, d.UAHMinSepSec)
	setF(&c.UAHBandLow, d.UAHBandLow)
	setF(&c.UAHBandHigh, d.UAHBandHigh)
	setF(&c.FFCLookbackSec, d.FFCLookbackSec)
	setF(&c.FFCWidenedSec, d.FFCWidenedSec)
	setF(&c.FFCMinGapSec, d.FFCMinGapSec)
	setF(&c.BFCLookbackSec, d.BFCLookbackSec)
	setF(&c.BFCOffsetSec, d.BFCOffsetSec)
	setF(&c.GroundPercentile, d.GroundPercentile)
	setF(&c.GroundTolerance, d.GroundTolerance)
	setF(&c.GroundVelocityTol, d.GroundVelocityTol)
	setF(&c.JitterTolerance, d.JitterTolerance)
	setF(&c.JitterSec, d.JitterSec)
	setF(&c.ClampPenaltyCap, d.ClampPenaltyCap)
	return c
}
