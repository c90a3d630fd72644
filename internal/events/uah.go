package events

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/actionlab/actionlab/internal/pose"
	"github.com/actionlab/actionlab/internal/signal"
)

// uahWindow bounds the backward search from release.
func (d *Detector) uahWindow(c *clip, release int) (lo, hi int) {
	minSep := signal.Frames(c.fps, d.cfg.UAHMinSepSec, 1)
	lookback := signal.Clamp(d.cfg.UAHLookbackSec, 0.3, 0.9)
	maxSep := signal.Frames(c.fps, lookback, minSep+1)
	hi = release - minSep
	if hi < 0 {
		hi = release - 1
	}
	if hi < 0 {
		hi = 0
	}
	lo = release - maxSep
	if lo < 0 {
		lo = 0
	}
	if lo > hi {
		lo = hi
	}
	return lo, hi
}

// upperArmAngles is the smoothed angle between the bowling upper arm
// (shoulder→elbow) and the forward axis, in degrees.
func upperArmAngles(c *clip, vis, sigma float64) signal.Series {
	bowl := c.hand.Bowling()
	fwd := mgl64.Vec3{c.forward[0], c.forward[1], 0}
	out := signal.NewSeries(c.n)
	for i := 0; i < c.n; i++ {
		s, ok1 := c.ex.Point(i, pose.Shoulder(bowl), vis)
		e, ok2 := c.ex.Point(i, pose.Elbow(bowl), vis)
		if !ok1 || !ok2 {
			continue
		}
		v := e.Sub(s)
		m := v.Len()
		if m < 1e-6 {
			continue
		}
		cos := signal.Clamp(v.Mul(1/m).Dot(fwd), -1, 1)
		out.Set(i, mgl64.RadToDeg(math.Acos(cos)))
	}
	return signal.Smooth(out, sigma)
}

func (d *Detector) detectUAH(c *clip, release int) (Event, bool) {
	cfg := d.cfg
	vis := cfg.ReleaseVisibility
	lo, hi := d.uahWindow(c, release)
	theta := upperArmAngles(c, vis, signal.SigmaFrames(c.fps, cfg.SmoothingSec, 1.2))

	closest := func(accept func(i int, v float64) bool) (int, bool) {
		best, bestScore := -1, math.Inf(1)
		for i := hi; i >= lo; i-- {
			v, ok := theta.At(i)
			if !ok || !accept(i, v) {
				continue
			}
			if s := math.Abs(v - 90); s < bestScore {
				best, bestScore = i, s
			}
		}
		return best, best >= 0
	}

	ladder := []strategy{
		{"arm_horizontal_band", func() (int, float64, bool) {
			f, ok := closest(func(i int, v float64) bool {
				return v >= cfg.UAHBandLow && v <= cfg.UAHBandHigh && c.wristAbove(i, vis, cfg.WristShoulderTol)
			})
			return f, 0.85, ok
		}},
		{"closest_to_horizontal", func() (int, float64, bool) {
			f, ok := closest(func(int, float64) bool { return true })
			return f, 0.60, ok
		}},
		{"lookback_offset", func() (int, float64, bool) {
			return clampInt(release-signal.Frames(c.fps, 0.1, 1), lo, hi), 0.30, true
		}},
	}
	ev, ok := firstSuccess(UAH, ladder)
	if !ok {
		return Event{}, false
	}
	clampAtMost(&ev, hi, lo, cfg.ClampPenaltyCap)
	if ev.Frame >= release {
		return Event{}, false
	}
	return ev, true
}
