// Package action classifies bowling-action style. Back-foot toe direction at
// BFC declares the intent; hip orientation around FFC validates it.
package action

import (
	"log/slog"

	"github.com/actionlab/actionlab/internal/events"
	"github.com/actionlab/actionlab/internal/logging"
	"github.com/actionlab/actionlab/internal/pose"
	"github.com/actionlab/actionlab/internal/signal"
)

// Intent is the declared action style.
type Intent string

const (
	SideOn   Intent = "SIDE_ON"
	SemiOpen Intent = "SEMI_OPEN"
	FrontOn  Intent = "FRONT_ON"
	Unknown  Intent = "UNKNOWN"
)

// Mixed is the type reported when hip evidence contradicts the intent.
const Mixed = "MIXED"

// Corridor is an expected hip-angle range in degrees.
type Corridor struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Contains is inclusive on both ends.
func (c Corridor) Contains(v float64) bool { return v >= c.Low && v <= c.High }

// Result is the classifier output.
type Result struct {
	Intent     Intent  `json:"intent"`
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
	Compliance float64 `json:"compliance"`
	Debug      Debug   `json:"debug"`
}

// Debug carries the measurements behind a result.
type Debug struct {
	ToeDeg         float64    `json:"toe_bfc_deg"`
	HipDeg         float64    `json:"hip_ffc_deg"`
	ToeSamples     int        `json:"toe_samples"`
	HipSamples     int        `json:"hip_samples"`
	Violations     int        `json:"violations"`
	ViolationRatio float64    `json:"violation_ratio"`
	Corridor       Corridor   `json:"corridor"`
	Structure      *Structure `json:"structure,omitempty"`
}

// Config holds classifier tunables.
type Config struct {
	BFCWindow      int      `yaml:"bfc_window_frames"`
	FFCWindow      int      `yaml:"ffc_window_frames"`
	Sigma          float64  `yaml:"sigma"`
	FootVisibility float64  `yaml:"foot_visibility"`
	HipVisibility  float64  `yaml:"hip_visibility"`
	MinSamples     int      `yaml:"min_samples"`
	SideOnMinDeg   float64  `yaml:"side_on_min_deg"`
	SemiOpenMinDeg float64  `yaml:"semi_open_min_deg"`
	SideOnHips     Corridor `yaml:"side_on_corridor"`
	SemiOpenHips   Corridor `yaml:"semi_open_corridor"`
	FrontOnHips    Corridor `yaml:"front_on_corridor"`
}

// DefaultConfig returns the classifier defaults.
func DefaultConfig() Config {
	return Config{
		BFCWindow:      3,
		FFCWindow:      5,
		Sigma:          1,
		FootVisibility: 0.35,
		HipVisibility:  0.5,
		MinSamples:     2,
		SideOnMinDeg:   60,
		SemiOpenMinDeg: 30,
		SideOnHips:     Corridor{45, 90},
		SemiOpenHips:   Corridor{25, 70},
		FrontOnHips:    Corridor{0, 40},
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.BFCWindow <= 0 {
		c.BFCWindow = d.BFCWindow
	}
	if c.FFCWindow <= 0 {
		c.FFCWindow = d.FFCWindow
	}
	if c.Sigma <= 0 {
		c.Sigma = d.Sigma
	}
	if c.FootVisibility <= 0 {
		c.FootVisibility = d.FootVisibility
	}
	if c.HipVisibility <= 0 {
		c.HipVisibility = d.HipVisibility
	}
	if c.MinSamples <= 0 {
		c.MinSamples = d.MinSamples
	}
	if c.SideOnMinDeg <= 0 {
		c.SideOnMinDeg = d.SideOnMinDeg
	}
	if c.SemiOpenMinDeg <= 0 {
		c.SemiOpenMinDeg = d.SemiOpenMinDeg
	}
	if c.SideOnHips == (Corridor{}) {
		c.SideOnHips = d.SideOnHips
	}
	if c.SemiOpenHips == (Corridor{}) {
		c.SemiOpenHips = d.SemiOpenHips
	}
	if c.FrontOnHips == (Corridor{}) {
		c.FrontOnHips = d.FrontOnHips
	}
	return c
}

// Classifier assigns an action type.
type Classifier struct {
	cfg Config
	log *slog.Logger
}

// NewClassifier returns a classifier; zero config fields take defaults.
func NewClassifier(cfg Config) *Classifier {
	return &Classifier{cfg: cfg.withDefaults(), log: logging.New("action")}
}

func unknown() Result {
	return Result{Intent: Unknown, Type: string(Unknown)}
}

// IntentFor maps a toe angle to an intent and its hip corridor.
func (c *Classifier) IntentFor(toeDeg float64) (Intent, Corridor) {
	switch {
	case toeDeg >= c.cfg.SideOnMinDeg:
		return SideOn, c.cfg.SideOnHips
	case toeDeg >= c.cfg.SemiOpenMinDeg:
		return SemiOpen, c.cfg.SemiOpenHips
	default:
		return FrontOn, c.cfg.FrontOnHips
	}
}

func (c *Classifier) collect(ex *signal.Extractor, centre, radius int, a, b pose.Role, vis float64) []float64 {
	var out []float64
	for i := centre - radius; i <= centre+radius; i++ {
		if i < 0 || i >= ex.Len() {
			continue
		}
		pa, ok1 := ex.Flat(i, a, vis)
		pb, ok2 := ex.Flat(i, b, vis)
		if ok1 && ok2 {
			out = append(out, signal.FoldedAngle(pa, pb))
		}
	}
	return out
}

// Classify runs the two-signal rule. MIXED requires a strict majority of
// hip samples outside the corridor.
func (c *Classifier) Classify(frames []pose.Frame, hand pose.Hand, set events.Set) Result {
	bfc, ok := set.Frame(events.BFC)
	if !ok || bfc < 0 || bfc >= len(frames) {
		return unknown()
	}
	ex := signal.NewExtractor(frames)
	back := hand.BackFoot()

	toe := c.collect(ex, bfc, c.cfg.BFCWindow, pose.Heel(back), pose.FootIndex(back), c.cfg.FootVisibility)
	if len(toe) < c.cfg.MinSamples {
		c.log.Debug("toe direction not recoverable at BFC", "samples", len(toe))
		return unknown()
	}
	toeDeg, _ := signal.GaussianMean(toe, c.cfg.Sigma)
	intent, corridor := c.IntentFor(toeDeg)

	res := Result{
		Intent: intent,
		Type:   string(intent),
		Debug:  Debug{ToeDeg: toeDeg, ToeSamples: len(toe), Corridor: corridor},
	}

	ffc, ok := set.Frame(events.FFC)
	if !ok || ffc < 0 || ffc >= len(frames) {
		res.Confidence, res.Compliance = 0.5, 0.5
		return res
	}
	res.Debug.Structure = structure(ex, bfc, ffc)

	bowl := hand.Bowling()
	hips := c.collect(ex, ffc, c.cfg.FFCWindow, pose.Hip(bowl), pose.Shoulder(bowl.Other()), c.cfg.HipVisibility)
	res.Debug.HipSamples = len(hips)
	violations := 0
	for _, v := range hips {
		if !corridor.Contains(v) {
			violations++
		}
	}
	res.Debug.Violations = violations

	if len(hips) < c.cfg.MinSamples {
		res.Confidence, res.Compliance = 0.5, 0.5
		if len(hips) > 0 && violations == 0 {
			res.Confidence, res.Compliance = 0.7, 0.7
		}
		return res
	}

	res.Debug.HipDeg, _ = signal.GaussianMean(hips, c.cfg.Sigma)
	res.Debug.ViolationRatio = float64(violations) / float64(len(hips))
	res.Confidence = 0.9
	if 2*violations > len(hips) {
		res.Type = Mixed
		res.Compliance = 0
	} else {
		res.Compliance = 1
	}
	c.log.Debug("action classified", "intent", res.Intent, "type", res.Type, "toe_deg", toeDeg, "violations", violations, "hip_samples", len(hips))
	return res
}
