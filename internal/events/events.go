// Package events detects the four temporal anchors of a delivery: RELEASE,
// UAH (upper arm horizontal), FFC and BFC (front/back foot contact).
//
// Detection runs in dependency order RELEASE → UAH → FFC → BFC. Each stage
// is an ordered list of strategies; the first one that succeeds wins and its
// name becomes the event's method tag.
package events

import (
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/actionlab/actionlab/internal/logging"
	"github.com/actionlab/actionlab/internal/pose"
	"github.com/actionlab/actionlab/internal/signal"
)

// Kind names an anchor.
type Kind string

const (
	Release Kind = "RELEASE"
	UAH     Kind = "UAH"
	FFC     Kind = "FFC"
	BFC     Kind = "BFC"
)

// Event is one detected anchor.
type Event struct {
	Kind       Kind    `json:"type"`
	Frame      int     `json:"frame"`
	Confidence float64 `json:"confidence"`
	Method     string  `json:"method"`
}

// Set holds the anchors of one run. Absent anchors are nil.
type Set struct {
	Release *Event `json:"release,omitempty"`
	UAH     *Event `json:"uah,omitempty"`
	FFC     *Event `json:"ffc,omitempty"`
	BFC     *Event `json:"bfc,omitempty"`
}

// Frame returns the frame of kind k when present.
func (s Set) Frame(k Kind) (int, bool) {
	var e *Event
	switch k {
	case Release:
		e = s.Release
	case UAH:
		e = s.UAH
	case FFC:
		e = s.FFC
	case BFC:
		e = s.BFC
	}
	if e == nil {
		return 0, false
	}
	return e.Frame, true
}

// Count is the number of detected anchors.
func (s Set) Count() int {
	n := 0
	for _, e := range []*Event{s.Release, s.UAH, s.FFC, s.BFC} {
		if e != nil {
			n++
		}
	}
	return n
}

// strategy is one rung of a fallback ladder.
type strategy struct {
	name string
	find func() (frame int, conf float64, ok bool)
}

func firstSuccess(kind Kind, ladder []strategy) (Event, bool) {
	for _, s := range ladder {
		if f, c, ok := s.find(); ok {
			return Event{Kind: kind, Frame: f, Confidence: signal.Clamp01(c), Method: s.name}, true
		}
	}
	return Event{}, false
}

// clampAtMost enforces frame ≤ limit (and ≥ floor), penalizing confidence
// when the frame had to move.
func clampAtMost(e *Event, limit, floor int, penaltyCap float64) {
	if e.Frame <= limit && e.Frame >= floor {
		return
	}
	if e.Frame > limit {
		e.Frame = limit
	}
	if e.Frame < floor {
		e.Frame = floor
	}
	e.Confidence = math.Min(e.Confidence, penaltyCap)
	e.Method += "+clamped"
}

// Detector finds anchors in a clip.
type Detector struct {
	cfg Config
	log *slog.Logger
}

// NewDetector returns a detector; zero config fields take defaults.
func NewDetector(cfg Config) *Detector {
	return &Detector{cfg: cfg.withDefaults(), log: logging.New("events")}
}

// clip bundles per-run derived data shared by the stages.
type clip struct {
	ex      *signal.Extractor
	n       int
	fps     float64
	hand    pose.Hand
	forward mgl64.Vec2
}

// Detect runs every stage. It never fails; missing evidence yields absent
// or low-confidence anchors.
func (d *Detector) Detect(frames []pose.Frame, hand pose.Hand, fps float64) Set {
	var set Set
	c := &clip{ex: signal.NewExtractor(frames), n: len(frames), fps: fps, hand: hand}
	if c.n < d.cfg.MinFrames {
		d.log.Debug("too few frames for anchor detection", "frames", c.n)
		return set
	}
	c.forward = c.ex.ForwardAxis(0, c.n-1, d.cfg.ReleaseVisibility)

	rel, ok := d.detectRelease(c)
	if !ok {
		d.log.Debug("release not detected")
		return set
	}
	set.Release = &rel

	if uah, ok := d.detectUAH(c, rel.Frame); ok {
		set.UAH = &uah
	}

	if rel.Frame < 2 {
		return set
	}
	ffc := d.detectFFC(c, rel.Frame)
	clampAtMost(&ffc, rel.Frame-1, 1, d.cfg.ClampPenaltyCap)
	set.FFC = &ffc

	bfc := d.detectBFC(c, ffc.Frame)
	clampAtMost(&bfc, ffc.Frame-1, 0, d.cfg.ClampPenaltyCap)
	set.BFC = &bfc

	for _, e := range []*Event{set.Release, set.UAH, set.FFC, set.BFC} {
		if e != nil {
			d.log.Debug("anchor", "type", e.Kind, "frame", e.Frame, "confidence", e.Confidence, "method", e.Method)
		}
	}
	return set
}

func (c *clip) wristAbove(i int, vis, tol float64) bool {
	w, ok := c.ex.Flat(i, pose.Wrist(c.hand.Bowling()), vis)
	if !ok {
		return false
	}
	s, ok := c.ex.Flat(i, pose.Shoulder(c.hand.Bowling()), vis)
	if !ok {
		return false
	}
	return w[1] <= s[1]+tol
}

func (c *clip) wristBelow(i int, vis, tol float64) bool {
	w, ok := c.ex.Flat(i, pose.Wrist(c.hand.Bowling()), vis)
	if !ok {
		return false
	}
	s, ok := c.ex.Flat(i, pose.Shoulder(c.hand.Bowling()), vis)
	if !ok {
		return false
	}
	return w[1] > s[1]+tol
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
