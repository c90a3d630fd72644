package risk

import (
	"math"
	"strings"

	"github.com/actionlab/actionlab/internal/action"
	"github.com/actionlab/actionlab/internal/events"
	"github.com/actionlab/actionlab/internal/pose"
	"github.com/actionlab/actionlab/internal/signal"
)

// Lean modes.
const (
	ModeAcute              = "ACUTE"
	ModeLongTermMonitoring = "LONG_TERM_MONITORING"
)

// trunkSnap is the peak angular acceleration of the shoulder line around
// front-foot contact and upper-arm-horizontal.
func (r *run) trunkSnap() measurement {
	var anchors []int
	names := map[int]string{}
	for _, k := range []events.Kind{events.FFC, events.UAH} {
		if f, ok := r.in.Events.Frame(k); ok {
			anchors = append(anchors, f)
			names[len(anchors)-1] = "snap_" + strings.ToLower(string(k))
		}
	}
	if len(anchors) == 0 {
		return unanchored()
	}
	vis := r.cfg.Visibility
	fps := r.in.FPS
	m := measurement{anchored: true, debug: map[string]float64{}}
	theta := r.ex.LineAngleSeries(pose.LeftShoulder, pose.RightShoulder, vis)
	w := r.frames(r.cfg.SnapWindowSec, 2)

	peak, n := 0.0, 0
	lo, hi := r.ex.Len(), 0
	for ai, a := range anchors {
		local := 0.0
		for i := max(1, a-w); i <= min(r.ex.Len()-2, a+w); i++ {
			if !theta.Valid[i-1] || !theta.Valid[i] || !theta.Valid[i+1] {
				continue
			}
			v := theta.Values
			acc := math.Abs(v[i+1]-2*v[i]+v[i-1]) * fps * fps
			local = math.Max(local, acc)
			n++
		}
		m.debug[names[ai]] = local
		peak = math.Max(peak, local)
		lo, hi = min(lo, a-w), max(hi, a+w)
	}
	m.debug["peak_rad_s2"] = peak
	m.debug["samples"] = float64(n)
	if n == 0 {
		return m
	}
	m.strength = peak / r.cfg.SnapRef
	m.confidence = 0.7 * support(n, 5) * r.meanVis(lo, hi, pose.LeftShoulder, pose.RightShoulder)
	return m
}

// hipShoulderMismatch is the mean difference between hip-line and
// shoulder-line angular speed from front-foot contact to release.
func (r *run) hipShoulderMismatch() measurement {
	ffc, ok1 := r.in.Events.Frame(events.FFC)
	rel, ok2 := r.in.Events.Frame(events.Release)
	if !ok1 || !ok2 || ffc >= rel {
		return unanchored()
	}
	vis := r.cfg.Visibility
	fps := r.in.FPS
	m := measurement{anchored: true, debug: map[string]float64{}}
	hip := signal.Velocity(r.ex.LineAngleSeries(pose.LeftHip, pose.RightHip, vis), fps)
	sh := signal.Velocity(r.ex.LineAngleSeries(pose.LeftShoulder, pose.RightShoulder, vis), fps)

	var diffs []float64
	for i := ffc + 1; i <= rel && i < r.ex.Len(); i++ {
		h, ok1 := hip.At(i)
		s, ok2 := sh.At(i)
		if ok1 && ok2 {
			diffs = append(diffs, math.Abs(h-s))
		}
	}
	m.debug["samples"] = float64(len(diffs))
	if len(diffs) < 3 {
		return m
	}
	mean := signal.Mean(diffs)
	m.debug["mean_rad_s"] = mean
	m.strength = mean / r.cfg.MismatchRef
	if r.in.Action.Type == action.Mixed {
		m.strength *= r.cfg.MixedBoost
		m.debug["mixed_action"] = 1
	}
	m.confidence = 0.8 * support(len(diffs), 6) *
		r.meanVis(ffc, rel, pose.LeftHip, pose.RightHip, pose.LeftShoulder, pose.RightShoulder)
	return m
}

// lateralLean is the trunk tilt change from back-foot contact through
// release. Tilt is the horizontal shoulder-over-pelvis offset over trunk
// length.
func (r *run) lateralLean() measurement {
	ffc, ok1 := r.in.Events.Frame(events.FFC)
	rel, ok2 := r.in.Events.Frame(events.Release)
	if !ok1 || !ok2 {
		return unanchored()
	}
	vis := r.cfg.Visibility
	m := measurement{anchored: true, debug: map[string]float64{}}

	tilt := signal.NewSeries(r.ex.Len())
	for i := 0; i < r.ex.Len(); i++ {
		s, ok1 := r.ex.ShoulderMid(i, vis)
		p, ok2 := r.ex.Pelvis(i, vis)
		if !ok1 || !ok2 {
			continue
		}
		d := s.Sub(p)
		if l := d.Len(); l > 1e-6 {
			tilt.Set(i, d[0]/l)
		}
	}

	base := ffc
	if bfc, ok := r.in.Events.Frame(events.BFC); ok {
		base = bfc
	} else {
		m.debug["baseline_from_ffc"] = 1
	}
	bvals, _ := tilt.Window(base-3, base+3)
	if len(bvals) == 0 {
		return m
	}
	baseline := signal.Mean(bvals)

	vals, _ := tilt.Window(ffc, rel)
	if len(vals) == 0 {
		return m
	}
	drift := 0.0
	for _, v := range vals {
		drift = math.Max(drift, math.Abs(v-baseline))
	}
	m.debug["baseline_tilt"] = baseline
	m.debug["drift"] = drift
	m.debug["samples"] = float64(len(vals))

	m.strength = drift / r.cfg.LeanRef
	m.mode = ModeAcute
	if math.Abs(baseline) >= r.cfg.LeanStaticMin && drift < r.cfg.LeanStaticDrift {
		m.mode = ModeLongTermMonitoring
		m.strength = math.Min(r.cfg.LeanMonitorCap, math.Max(m.strength, math.Abs(baseline)/r.cfg.LeanRef))
	}
	m.confidence = 0.8 * support(len(vals)+len(bvals), 8) *
		r.meanVis(min(base, ffc), rel, pose.LeftHip, pose.RightHip, pose.LeftShoulder, pose.RightShoulder)
	return m
}
