// Package elbow measures bowling-arm elbow extension between UAH and
// release and turns it into a legality verdict.
package elbow

import (
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/actionlab/actionlab/internal/events"
	"github.com/actionlab/actionlab/internal/logging"
	"github.com/actionlab/actionlab/internal/pose"
	"github.com/actionlab/actionlab/internal/signal"
)

// Verdict is the legality outcome.
type Verdict string

const (
	Legal      Verdict = "LEGAL"
	Borderline Verdict = "BORDERLINE"
	Illegal    Verdict = "ILLEGAL"
)

// Window is the inclusive frame range that was evaluated.
type Window struct {
	StartFrame int `json:"start_frame"`
	EndFrame   int `json:"end_frame"`
}

// Legality is the evaluator output.
type Legality struct {
	Verdict       Verdict `json:"verdict"`
	ExtensionDeg  float64 `json:"extension_deg"`
	BaselineDeg   float64 `json:"baseline_angle_deg"`
	PeakDeg       float64 `json:"peak_angle_deg"`
	Confidence    float64 `json:"confidence"`
	Window        Window  `json:"window"`
	Samples       int     `json:"samples"`
	FilteredCount int     `json:"filtered_samples"`
	Reason        string  `json:"reason,omitempty"`
}

// Config holds thresholds and sampling rules.
type Config struct {
	LegalDeg             float64 `yaml:"legal_deg"`
	BorderlineDeg        float64 `yaml:"borderline_deg"`
	Visibility           float64 `yaml:"visibility"`
	MaxJumpDeg           float64 `yaml:"max_jump_deg"`
	ReleaseTrimFrames    int     `yaml:"release_trim_frames"`
	MADZ                 float64 `yaml:"mad_z"`
	MinSamples           int     `yaml:"min_samples"`
	BaselineSamples      int     `yaml:"baseline_samples"`
	PercentileMinSamples int     `yaml:"percentile_min_samples"`
	PeakPercentile       float64 `yaml:"peak_percentile"`
	TargetWindowSec      float64 `yaml:"target_window_seconds"`
}

// DefaultConfig uses the 15°/20° rule cutoffs.
func DefaultConfig() Config {
	return Config{
		LegalDeg:             15,
		BorderlineDeg:        20,
		Visibility:           0.5,
		MaxJumpDeg:           25,
		MADZ:                 6,
		MinSamples:           3,
		BaselineSamples:      4,
		PercentileMinSamples: 5,
		PeakPercentile:       90,
		TargetWindowSec:      0.2,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.LegalDeg <= 0 {
		c.LegalDeg = d.LegalDeg
	}
	if c.BorderlineDeg <= 0 {
		c.BorderlineDeg = d.BorderlineDeg
	}
	if c.Visibility <= 0 {
		c.Visibility = d.Visibility
	}
	if c.MaxJumpDeg <= 0 {
		c.MaxJumpDeg = d.MaxJumpDeg
	}
	if c.ReleaseTrimFrames < 0 {
		c.ReleaseTrimFrames = 0
	}
	if c.MADZ <= 0 {
		c.MADZ = d.MADZ
	}
	if c.MinSamples <= 0 {
		c.MinSamples = d.MinSamples
	}
	if c.BaselineSamples <= 0 {
		c.BaselineSamples = d.BaselineSamples
	}
	if c.PercentileMinSamples <= 0 {
		c.PercentileMinSamples = d.PercentileMinSamples
	}
	if c.PeakPercentile <= 0 {
		c.PeakPercentile = d.PeakPercentile
	}
	if c.TargetWindowSec <= 0 {
		c.TargetWindowSec = d.TargetWindowSec
	}
	return c
}

var handWeights = []struct {
	role   func(pose.Side) pose.Role
	weight float64
}{
	{pose.Wrist, 0.55},
	{pose.Index, 0.20},
	{pose.Pinky, 0.15},
	{pose.Thumb, 0.10},
}

// Evaluator scores elbow legality.
type Evaluator struct {
	cfg Config
	log *slog.Logger
}

// NewEvaluator returns an evaluator; zero config fields take defaults.
func NewEvaluator(cfg Config) *Evaluator {
	return &Evaluator{cfg: cfg.withDefaults(), log: logging.New("elbow")}
}

// Signal is the bowling-arm interior angle shoulder–elbow–hand per frame,
// with physically implausible jumps soft-clamped. The hand point is a
// visibility-gated weighted centroid of wrist and finger landmarks.
func (e *Evaluator) Signal(frames []pose.Frame, hand pose.Hand) signal.Series {
	ex := signal.NewExtractor(frames)
	side := hand.Bowling()
	vis := e.cfg.Visibility
	out := signal.NewSeries(len(frames))
	for i := range frames {
		s, ok1 := ex.Point(i, pose.Shoulder(side), vis)
		el, ok2 := ex.Point(i, pose.Elbow(side), vis)
		if !ok1 || !ok2 {
			continue
		}
		var sum mgl64.Vec3
		var wsum float64
		for _, hw := range handWeights {
			if p, ok := ex.Point(i, hw.role(side), vis); ok {
				sum = sum.Add(p.Mul(hw.weight))
				wsum += hw.weight
			}
		}
		if wsum < 1e-9 {
			continue
		}
		if ang, ok := signal.InteriorAngle(s, el, sum.Mul(1/wsum)); ok {
			out.Set(i, ang)
		}
	}
	return signal.EnforceContinuity(out, e.cfg.MaxJumpDeg)
}

// Evaluate computes the signal and assesses it against the anchors.
func (e *Evaluator) Evaluate(frames []pose.Frame, hand pose.Hand, fps float64, set events.Set) Legality {
	uah, okU := set.Frame(events.UAH)
	rel, okR := set.Frame(events.Release)
	if !okU || !okR {
		return Legality{Verdict: Legal, Confidence: 0.25, Reason: "events_missing_assumed_legal"}
	}
	res := e.Assess(e.Signal(frames, hand), uah, rel, fps)
	e.log.Debug("elbow legality", "verdict", res.Verdict, "extension_deg", res.ExtensionDeg, "confidence", res.Confidence, "samples", res.Samples)
	return res
}

// Assess evaluates a precomputed angle series over [uah, release).
func (e *Evaluator) Assess(s signal.Series, uah, release int, fps float64) Legality {
	cfg := e.cfg
	end := release - cfg.ReleaseTrimFrames - 1
	if end < uah {
		return Legality{Verdict: Legal, Confidence: 0.25, Reason: "event_window_too_short", Window: Window{uah, end}}
	}
	win := Window{StartFrame: uah, EndFrame: end}
	raw, _ := s.Window(uah, end)
	res := Legality{Window: win, Samples: len(raw)}

	vals := signal.MADFilter(raw, cfg.MADZ)
	res.FilteredCount = len(vals)
	if len(vals) < cfg.MinSamples {
		res.Verdict = Legal
		res.Confidence = 0.30
		res.Reason = "insufficient_signal_density"
		return res
	}

	b := cfg.BaselineSamples
	if b > len(vals)-1 {
		b = len(vals) - 1
	}
	baseline, _ := signal.Median(vals[:b])
	rest := vals[b:]
	var peak float64
	if len(rest) >= cfg.PercentileMinSamples {
		peak, _ = signal.Percentile(rest, cfg.PeakPercentile)
	} else {
		peak, _, _ = signal.Max(rest)
	}

	res.BaselineDeg = baseline
	res.PeakDeg = peak
	res.ExtensionDeg = math.Max(0, peak-baseline)
	res.Verdict = Classify(res.ExtensionDeg, cfg.LegalDeg, cfg.BorderlineDeg)

	frames := float64(end - uah + 1)
	density := float64(len(raw)) / frames
	duration := 1.0
	if fps > 0 {
		duration = math.Min(1, frames/fps/cfg.TargetWindowSec)
	}
	res.Confidence = signal.Clamp(0.30+0.60*density*duration, 0.30, 0.90)
	return res
}

// Classify maps an extension to a verdict: below legal is LEGAL, up to and
// including borderline is BORDERLINE, above is ILLEGAL.
func Classify(extension, legal, borderline float64) Verdict {
	switch {
	case extension < legal:
		return Legal
	case extension <= borderline:
		return Borderline
	default:
		return Illegal
	}
}
