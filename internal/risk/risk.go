// Package risk computes the six bounded injury-risk signals of a delivery.
// Every run emits all six, in a fixed order, never below the configured
// floor.
package risk

import (
	"log/slog"
	"math"

	"github.com/actionlab/actionlab/internal/action"
	"github.com/actionlab/actionlab/internal/bands"
	"github.com/actionlab/actionlab/internal/events"
	"github.com/actionlab/actionlab/internal/logging"
	"github.com/actionlab/actionlab/internal/pose"
	"github.com/actionlab/actionlab/internal/signal"
)

// ID identifies a risk.
type ID string

const (
	FrontFootBrakingShock ID = "front_foot_braking_shock"
	KneeBraceFailure      ID = "knee_brace_failure"
	TrunkRotationSnap     ID = "trunk_rotation_snap"
	HipShoulderMismatch   ID = "hip_shoulder_mismatch"
	LateralTrunkLean      ID = "lateral_trunk_lean"
	FootLineDeviation     ID = "foot_line_deviation"
)

// IDs lists every risk in output order.
var IDs = []ID{
	FrontFootBrakingShock,
	KneeBraceFailure,
	TrunkRotationSnap,
	HipShoulderMismatch,
	LateralTrunkLean,
	FootLineDeviation,
}

// Window is an inclusive frame range.
type Window struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Signal is one risk result.
type Signal struct {
	ID             ID                 `json:"risk_id"`
	Strength       float64            `json:"signal_strength"`
	Confidence     float64            `json:"confidence"`
	Mode           string             `json:"mode,omitempty"`
	AnchorFrame    *int               `json:"anchor_frame,omitempty"`
	EvidenceWindow *Window            `json:"evidence_window,omitempty"`
	Debug          map[string]float64 `json:"debug"`
	Deviation      *bands.Deviation   `json:"deviation,omitempty"`
}

// Input is everything a risk computation may read.
type Input struct {
	Frames    []pose.Frame
	Events    events.Set
	FPS       float64
	Hand      pose.Hand
	HandKnown bool
	Action    action.Result
}

// measurement is the raw output of one computation. anchored is false when
// a required anchor is missing.
type measurement struct {
	strength   float64
	confidence float64
	mode       string
	debug      map[string]float64
	anchored   bool
}

func unanchored() measurement { return measurement{} }

// Engine runs the risk computations.
type Engine struct {
	cfg Config
	log *slog.Logger
}

// NewEngine returns an engine; zero config fields take defaults.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg.withDefaults(), log: logging.New("risk")}
}

type run struct {
	in  Input
	ex  *signal.Extractor
	cfg Config
}

// Run computes all six signals.
func (e *Engine) Run(in Input) []Signal {
	r := &run{in: in, ex: signal.NewExtractor(in.Frames), cfg: e.cfg}
	compute := map[ID]func() measurement{
		FrontFootBrakingShock: r.brakingShock,
		KneeBraceFailure:      r.kneeBrace,
		TrunkRotationSnap:     r.trunkSnap,
		HipShoulderMismatch:   r.hipShoulderMismatch,
		LateralTrunkLean:      r.lateralLean,
		FootLineDeviation:     r.footLine,
	}
	out := make([]Signal, 0, len(IDs))
	for _, id := range IDs {
		m := compute[id]()
		s := e.emit(id, m)
		if f, ok := visualAnchor(id, in.Events); ok && m.anchored {
			s.AnchorFrame = &f
			pad := signal.Frames(math.Max(1, in.FPS), e.cfg.EvidenceWindowSec, 1)
			s.EvidenceWindow = &Window{Start: max(0, f-pad), End: min(len(in.Frames)-1, f+pad)}
		}
		e.log.Debug("risk", "id", id, "strength", s.Strength, "confidence", s.Confidence, "mode", s.Mode)
		out = append(out, s)
	}
	return out
}

// emit enforces the floor and bounds.
func (e *Engine) emit(id ID, m measurement) Signal {
	floor := e.cfg.FloorFor(id)
	s := Signal{ID: id, Strength: floor, Debug: m.debug}
	if s.Debug == nil {
		s.Debug = map[string]float64{}
	}
	if !m.anchored {
		return s
	}
	if !math.IsNaN(m.strength) {
		s.Strength = signal.Clamp(m.strength, floor, 1)
	}
	s.Confidence = signal.Clamp01(m.confidence)
	s.Mode = m.mode
	return s
}

// visualAnchor picks the event frame used for visual evidence.
func visualAnchor(id ID, set events.Set) (int, bool) {
	first := func(kinds ...events.Kind) (int, bool) {
		for _, k := range kinds {
			if f, ok := set.Frame(k); ok {
				return f, true
			}
		}
		return 0, false
	}
	switch id {
	case FrontFootBrakingShock, KneeBraceFailure, FootLineDeviation:
		return first(events.FFC)
	case TrunkRotationSnap, HipShoulderMismatch:
		return first(events.UAH, events.Release)
	case LateralTrunkLean:
		return first(events.Release, events.FFC)
	}
	return first(events.Release, events.FFC, events.BFC, events.UAH)
}

// support scales confidence by sample count against the count wanted.
func support(n, want int) float64 {
	if want <= 0 {
		return 1
	}
	return math.Min(1, float64(n)/float64(want))
}

func (r *run) frames(seconds float64, min int) int {
	return signal.Frames(r.in.FPS, seconds, min)
}

func (r *run) meanVis(lo, hi int, roles ...pose.Role) float64 {
	var vals []float64
	for i := max(0, lo); i <= hi && i < r.ex.Len(); i++ {
		if r.ex.Frame(i).Missing() {
			continue
		}
		v := 1.0
		for _, role := range roles {
			v = math.Min(v, r.ex.Visibility(i, role))
		}
		vals = append(vals, v)
	}
	return signal.Mean(vals)
}
