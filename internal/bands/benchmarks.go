package bands

// Benchmark describes what a risk is compared against.
type Benchmark struct {
	RiskID      string   `json:"risk_id"`
	Title       string   `json:"title"`
	AnchorEvent string   `json:"anchor_event"`
	Framework   string   `json:"reference_framework"`
	Primary     []string `json:"impact_primary"`
	Secondary   []string `json:"impact_secondary"`
	MetricKey   string   `json:"metric_key"`
}

// Region keys.
const (
	FrontKnee   = "front_knee"
	Ankle       = "ankle"
	Hip         = "hip"
	LowerBack   = "lower_back"
	Groin       = "groin"
	Core        = "core"
	OppositeHip = "opposite_hip"
)

// Benchmarks holds one definition per risk id.
var Benchmarks = map[string]Benchmark{
	"front_foot_braking_shock": {
		RiskID:      "front_foot_braking_shock",
		Title:       "Front-Foot Braking Shock",
		AnchorEvent: "FFC",
		Framework:   "force_time_front_foot_contact",
		Primary:     []string{FrontKnee, Ankle},
		Secondary:   []string{Hip, LowerBack},
		MetricKey:   "ffbs_loading_proxy",
	},
	"foot_line_deviation": {
		RiskID:      "foot_line_deviation",
		Title:       "Foot Line Deviation",
		AnchorEvent: "FFC",
		Framework:   "lower_limb_alignment_at_contact",
		Primary:     []string{FrontKnee, Groin},
		Secondary:   []string{Hip},
		MetricKey:   "fld_alignment_proxy",
	},
	"knee_brace_failure": {
		RiskID:      "knee_brace_failure",
		Title:       "Knee Brace Failure",
		AnchorEvent: "FFC->RELEASE",
		Framework:   "front_leg_stiffness_force_transfer",
		Primary:     []string{FrontKnee},
		Secondary:   []string{Hip, LowerBack},
		MetricKey:   "kbf_brace_proxy",
	},
	"lateral_trunk_lean": {
		RiskID:      "lateral_trunk_lean",
		Title:       "Lateral Trunk Lean",
		AnchorEvent: "RELEASE",
		Framework:   "spinal_side_flexion_control",
		Primary:     []string{LowerBack},
		Secondary:   []string{OppositeHip},
		MetricKey:   "ltl_lean_proxy",
	},
	"hip_shoulder_mismatch": {
		RiskID:      "hip_shoulder_mismatch",
		Title:       "Hip-Shoulder Mismatch",
		AnchorEvent: "FFC->RELEASE",
		Framework:   "kinetic_chain_sequencing",
		Primary:     []string{Groin, LowerBack},
		Secondary:   []string{Core},
		MetricKey:   "hsm_timing_proxy",
	},
	"trunk_rotation_snap": {
		RiskID:      "trunk_rotation_snap",
		Title:       "Trunk Rotation Snap",
		AnchorEvent: "RELEASE",
		Framework:   "torsional_load_around_release",
		Primary:     []string{LowerBack},
		Secondary:   []string{Core, Hip},
		MetricKey:   "trs_rotation_proxy",
	},
}
