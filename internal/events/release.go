package events

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/actionlab/actionlab/internal/pose"
	"github.com/actionlab/actionlab/internal/signal"
)

// detectRelease picks a frame shortly after the peak forward wrist
// velocity. Release happens as torque transfer stops, not at zero velocity.
func (d *Detector) detectRelease(c *clip) (Event, bool) {
	cfg := d.cfg
	vis := cfg.ReleaseVisibility
	bowl := c.hand.Bowling()

	wrist := c.ex.ProjectedSeries(func(i int) (mgl64.Vec2, bool) {
		return c.ex.Flat(i, pose.Wrist(bowl), vis)
	}, c.forward)
	vel := signal.Smooth(signal.Velocity(wrist, c.fps), signal.SigmaFrames(c.fps, cfg.SmoothingSec, 1))
	if vel.Count() == 0 {
		return Event{}, false
	}

	peak, peakVal := -1, math.Inf(-1)
	for i, v := range vel.Values {
		if vel.Valid[i] && v > peakVal {
			peak, peakVal = i, v
		}
	}

	minAfter := signal.Frames(c.fps, cfg.ReleaseMinAfterSec, 2)
	maxAfter := signal.Frames(c.fps, cfg.ReleaseMaxAfterSec, 4)
	last := c.n - 1

	ladder := []strategy{
		{"non_bowling_elbow_apex", func() (int, float64, bool) {
			f, ok := elbowApex(c, peak, clampInt(peak+maxAfter, 0, last), vis, cfg.ApexMargin)
			return f, 0.90, ok
		}},
		{"wrist_shoulder_crossing", func() (int, float64, bool) {
			hi := clampInt(peak+2*maxAfter, 0, last-1)
			for i := hi; i >= peak; i-- {
				if c.wristAbove(i, vis, cfg.WristShoulderTol) && c.wristBelow(i+1, vis, cfg.WristShoulderTol) {
					return i, 0.80, true
				}
			}
			return 0, 0, false
		}},
		{"velocity_drop", func() (int, float64, bool) {
			if peakVal <= 0 {
				return 0, 0, false
			}
			hi := clampInt(peak+2*maxAfter, 0, last)
			for i := peak + 1; i <= hi; i++ {
				if v, ok := vel.At(i); ok && v <= cfg.VelocityDropRatio*peakVal {
					return i, 0.65, true
				}
			}
			return 0, 0, false
		}},
		{"peak_offset", func() (int, float64, bool) {
			return clampInt(peak+minAfter, 0, last), 0.40, true
		}},
	}

	ev, ok := firstSuccess(Release, ladder)
	if !ok {
		return Event{}, false
	}

	// A frame already in follow-through walks back to the last frame with
	// the wrist still at shoulder height.
	if c.wristBelow(ev.Frame, vis, cfg.FollowThroughTol) {
		for j := ev.Frame - 1; j >= peak && j >= 0; j-- {
			if c.wristAbove(j, vis, cfg.WristShoulderTol) {
				ev.Frame = j
				ev.Confidence *= 0.9
				ev.Method += "+walkback"
				break
			}
		}
	}
	ev.Frame = clampInt(ev.Frame, 1, last)
	return ev, true
}

// elbowApex finds a strict vertical apex (minimum image y) of the
// non-bowling elbow inside [lo, hi].
func elbowApex(c *clip, lo, hi int, vis, margin float64) (int, bool) {
	ys := c.ex.CoordSeries(pose.Elbow(c.hand.NonBowling()), 1, vis)
	vals, frames := ys.Window(lo, hi)
	if len(vals) < 3 {
		return 0, false
	}
	minV, j, _ := signal.Min(vals)
	if j == 0 || j == len(vals)-1 {
		return 0, false
	}
	if vals[0]-minV < margin || vals[len(vals)-1]-minV < margin {
		return 0, false
	}
	return frames[j], true
}
