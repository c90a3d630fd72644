// Package basics produces coaching diagnostics that are not injury risks:
// things a club bowler can work on in the nets.
package basics

import (
	"log/slog"
	"math"

	"github.com/actionlab/actionlab/internal/action"
	"github.com/actionlab/actionlab/internal/events"
	"github.com/actionlab/actionlab/internal/logging"
	"github.com/actionlab/actionlab/internal/pose"
	"github.com/actionlab/actionlab/internal/signal"
)

// Status values.
const (
	StatusUnknown  = "unknown"
	StatusOK       = "ok"
	StatusWarn     = "warn"
	StatusBad      = "bad"
	StatusAligned  = "aligned"
	StatusSemiOpen = "semi_open"
	StatusOpen     = "open"
)

// Cue keys.
const (
	CueFrontKneeBrace = "front_knee_brace"
	CueBackFootPlant  = "back_foot_plant"
	CueFrontToeLine   = "front_toe_line"
)

// Check is one diagnostic.
type Check struct {
	Status     string             `json:"status"`
	Confidence float64            `json:"confidence"`
	Debug      map[string]float64 `json:"debug,omitempty"`
}

// Report is the basics block of an analysis.
type Report struct {
	KneeBrace    Check    `json:"knee_brace_proxy"`
	BackFoot     Check    `json:"back_foot_stability"`
	ToeAlignment Check    `json:"front_foot_toe_alignment"`
	CoachCues    []string `json:"coach_cues"`
	UserCues     []string `json:"user_cues"`
}

// Config holds diagnostic thresholds.
type Config struct {
	KneePostFrames int     `yaml:"knee_post_frames"`
	KneeDropWarn   float64 `yaml:"knee_drop_warn"`
	KneeDropBad    float64 `yaml:"knee_drop_bad"`
	BackPreFrames  int     `yaml:"back_pre_frames"`
	JitterWarn     float64 `yaml:"jitter_warn"`
	JitterBad      float64 `yaml:"jitter_bad"`
	MinVisible     int     `yaml:"min_visible_frames"`
	Visibility     float64 `yaml:"visibility"`
	SemiOpenMinDeg float64 `yaml:"semi_open_min_deg"`
	FrontOnMinDeg  float64 `yaml:"front_on_min_deg"`
}

// DefaultConfig returns the diagnostic defaults.
func DefaultConfig() Config {
	return Config{
		KneePostFrames: 8,
		KneeDropWarn:   0.02,
		KneeDropBad:    0.04,
		BackPreFrames:  8,
		JitterWarn:     0.006,
		JitterBad:      0.012,
		MinVisible:     5,
		Visibility:     0.5,
		SemiOpenMinDeg: 35,
		FrontOnMinDeg:  65,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.KneePostFrames <= 0 {
		c.KneePostFrames = d.KneePostFrames
	}
	if c.KneeDropWarn <= 0 {
		c.KneeDropWarn = d.KneeDropWarn
	}
	if c.KneeDropBad <= 0 {
		c.KneeDropBad = d.KneeDropBad
	}
	if c.BackPreFrames <= 0 {
		c.BackPreFrames = d.BackPreFrames
	}
	if c.JitterWarn <= 0 {
		c.JitterWarn = d.JitterWarn
	}
	if c.JitterBad <= 0 {
		c.JitterBad = d.JitterBad
	}
	if c.MinVisible <= 0 {
		c.MinVisible = d.MinVisible
	}
	if c.Visibility <= 0 {
		c.Visibility = d.Visibility
	}
	if c.SemiOpenMinDeg <= 0 {
		c.SemiOpenMinDeg = d.SemiOpenMinDeg
	}
	if c.FrontOnMinDeg <= 0 {
		c.FrontOnMinDeg = d.FrontOnMinDeg
	}
	return c
}

// Analyzer runs the diagnostics.
type Analyzer struct {
	cfg Config
	log *slog.Logger
}

// NewAnalyzer returns an analyzer; zero config fields take defaults.
func NewAnalyzer(cfg Config) *Analyzer {
	return &Analyzer{cfg: cfg.withDefaults(), log: logging.New("basics")}
}

func unknown() Check { return Check{Status: StatusUnknown} }

// grade maps a value onto ok/warn/bad.
func grade(v, warn, bad float64) string {
	switch {
	case v >= bad:
		return StatusBad
	case v >= warn:
		return StatusWarn
	}
	return StatusOK
}

// Analyze runs all three diagnostics.
func (a *Analyzer) Analyze(frames []pose.Frame, hand pose.Hand, set events.Set) Report {
	ex := signal.NewExtractor(frames)
	r := Report{
		KneeBrace:    a.kneeBrace(ex, set),
		BackFoot:     a.backFoot(ex, hand, set),
		ToeAlignment: a.toeAlignment(ex, hand, set),
		CoachCues:    []string{},
		UserCues:     []string{},
	}
	var cues []string
	if s := r.KneeBrace.Status; s == StatusWarn || s == StatusBad {
		cues = append(cues, CueFrontKneeBrace)
	}
	if s := r.BackFoot.Status; s == StatusWarn || s == StatusBad {
		cues = append(cues, CueBackFootPlant)
	}
	if s := r.ToeAlignment.Status; s == StatusSemiOpen || s == StatusOpen {
		cues = append(cues, CueFrontToeLine)
	}
	for _, c := range dedupe(cues) {
		r.CoachCues = append(r.CoachCues, "coach."+c)
		r.UserCues = append(r.UserCues, "user."+c)
	}
	a.log.Debug("basics", "knee", r.KneeBrace.Status, "back_foot", r.BackFoot.Status, "toe", r.ToeAlignment.Status)
	return r
}

// kneeBrace reads pelvis sink after front-foot contact.
func (a *Analyzer) kneeBrace(ex *signal.Extractor, set events.Set) Check {
	ffc, ok := set.Frame(events.FFC)
	if !ok || ffc < 0 || ffc >= ex.Len() {
		return unknown()
	}
	end := min(ex.Len()-1, ffc+a.cfg.KneePostFrames)
	ys, _ := ex.PelvisSeries(1, a.cfg.Visibility).Window(ffc, end)
	if len(ys) < a.cfg.MinVisible {
		return unknown()
	}
	top, _, _ := signal.Max(ys)
	drop := top - ys[0]
	return Check{
		Status:     grade(drop, a.cfg.KneeDropWarn, a.cfg.KneeDropBad),
		Confidence: signal.Clamp01(float64(len(ys)) / float64(end-ffc+1)),
		Debug:      map[string]float64{"pelvis_drop": drop, "frames_used": float64(len(ys))},
	}
}

// backFoot reads back-ankle jitter in the frames up to upper-arm-horizontal.
func (a *Analyzer) backFoot(ex *signal.Extractor, hand pose.Hand, set events.Set) Check {
	uah, ok := set.Frame(events.UAH)
	if !ok || uah < 0 || uah >= ex.Len() {
		return unknown()
	}
	start := max(0, uah-a.cfg.BackPreFrames)
	ankle := pose.Ankle(hand.BackFoot())
	var xs, zs []float64
	for i := start; i <= uah; i++ {
		if p, ok := ex.Point(i, ankle, a.cfg.Visibility); ok {
			xs = append(xs, p[0])
			zs = append(zs, p[2])
		}
	}
	if len(xs) < a.cfg.MinVisible {
		return unknown()
	}
	jitter := math.Hypot(signal.PopStdDev(xs), signal.PopStdDev(zs))
	return Check{
		Status:     grade(jitter, a.cfg.JitterWarn, a.cfg.JitterBad),
		Confidence: signal.Clamp01(float64(len(xs)) / float64(uah-start+1)),
		Debug:      map[string]float64{"ankle_jitter": jitter, "frames_used": float64(len(xs))},
	}
}

// toeAlignment compares the planted foot's heel→toe line with the batsman
// axis at back-foot contact.
func (a *Analyzer) toeAlignment(ex *signal.Extractor, hand pose.Hand, set events.Set) Check {
	bfc, ok := set.Frame(events.BFC)
	if !ok || bfc < 0 || bfc >= ex.Len() {
		return unknown()
	}
	back := hand.BackFoot()
	heel, ok1 := ex.Flat(bfc, pose.Heel(back), a.cfg.Visibility)
	toe, ok2 := ex.Flat(bfc, pose.FootIndex(back), a.cfg.Visibility)
	if !ok1 || !ok2 {
		return unknown()
	}
	axis := action.BatsmanAxis(ex, bfc)
	ang, ok := signal.AngleBetween(toe.Sub(heel), axis)
	if !ok {
		return unknown()
	}
	if ang > 90 {
		ang = 180 - ang
	}
	status := StatusAligned
	switch {
	case ang >= a.cfg.FrontOnMinDeg:
		status = StatusOpen
	case ang >= a.cfg.SemiOpenMinDeg:
		status = StatusSemiOpen
	}
	vis := math.Min(ex.Visibility(bfc, pose.Heel(back)), ex.Visibility(bfc, pose.FootIndex(back)))
	return Check{Status: status, Confidence: signal.Clamp01(vis), Debug: map[string]float64{"toe_angle_deg": ang}}
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := items[:0]
	for _, it := range items {
		if seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	return out
}
