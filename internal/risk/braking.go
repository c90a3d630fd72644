package risk

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/actionlab/actionlab/internal/events"
	"github.com/actionlab/actionlab/internal/pose"
	"github.com/actionlab/actionlab/internal/signal"
)

// brakingShock is the peak jerk of forward pelvis travel around front-foot
// contact.
func (r *run) brakingShock() measurement {
	ffc, ok := r.in.Events.Frame(events.FFC)
	if !ok {
		return unanchored()
	}
	vis := r.cfg.Visibility
	fps := r.in.FPS
	m := measurement{anchored: true, debug: map[string]float64{"ffc": float64(ffc)}}

	fwd := r.ex.ForwardAxis(0, r.ex.Len()-1, vis)
	disp := r.ex.ProjectedSeries(func(i int) (mgl64.Vec2, bool) { return r.ex.Pelvis(i, vis) }, fwd)
	disp = signal.Smooth(disp, signal.SigmaFrames(fps, 0.03, 1))

	lo := max(0, ffc-r.frames(r.cfg.BrakingPreSec, 1))
	hi := min(r.ex.Len()-1, ffc+r.frames(r.cfg.BrakingPostSec, 1))

	peak, n := 0.0, 0
	for i := max(lo, 3); i <= hi; i++ {
		if !disp.Valid[i] || !disp.Valid[i-1] || !disp.Valid[i-2] || !disp.Valid[i-3] {
			continue
		}
		v := disp.Values
		j := (v[i] - 3*v[i-1] + 3*v[i-2] - v[i-3]) * fps * fps * fps
		peak = math.Max(peak, math.Abs(j))
		n++
	}
	m.debug["samples"] = float64(n)
	if n == 0 {
		return m
	}

	vals, _ := disp.Window(lo, hi)
	top, _, _ := signal.Max(vals)
	bottom, _, _ := signal.Min(vals)
	travel := top - bottom

	m.strength = peak / r.cfg.BrakingJerkRef
	if travel < r.cfg.BrakingTravelMin {
		m.strength = math.Min(m.strength, r.cfg.BrakingLowCap)
		m.debug["low_travel"] = 1
	}
	m.confidence = support(n, 6) * r.meanVis(lo, hi, pose.LeftHip, pose.RightHip)
	m.debug["peak_jerk"] = peak
	m.debug["travel"] = travel
	return m
}
