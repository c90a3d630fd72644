package risk

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/actionlab/actionlab/internal/events"
	"github.com/actionlab/actionlab/internal/pose"
	"github.com/actionlab/actionlab/internal/signal"
)

// Foot-line modes.
const (
	ModeInwardCross = "INWARD_CROSS"
	ModeOutwardStep = "OUTWARD_STEP"
)

// footLine measures where the front foot lands relative to the line of
// progression. A toe that crosses while the heel stays out is external
// rotation, not a crossed plant.
func (r *run) footLine() measurement {
	bfc, ok1 := r.in.Events.Frame(events.BFC)
	ffc, ok2 := r.in.Events.Frame(events.FFC)
	if !ok1 || !ok2 {
		return unanchored()
	}
	vis := r.cfg.Visibility
	m := measurement{anchored: true, mode: ModeOutwardStep, debug: map[string]float64{}}

	front, back := r.in.Hand.FrontFoot(), r.in.Hand.BackFoot()
	handConf := 1.0
	if !r.in.HandKnown {
		handConf = 0.35
	}
	at := func(i int, role pose.Role) (mgl64.Vec2, bool) { return r.ex.Flat(i, role, vis) }

	backToe, okB := at(bfc, pose.FootIndex(back))
	frontToe, okF := at(ffc, pose.FootIndex(front))
	lh, okL := at(ffc, pose.LeftHip)
	rh, okR := at(ffc, pose.RightHip)

	var dir mgl64.Vec2
	haveDir := false
	if pb, ok := r.ex.Pelvis(bfc, vis); ok {
		if pf, ok := r.ex.Pelvis(ffc, vis); ok {
			dir, haveDir = signal.Unit(pf.Sub(pb))
		}
	}
	if !haveDir && okB && okF {
		dir, haveDir = signal.Unit(frontToe.Sub(backToe))
	}
	if !haveDir || !okB || !okF || !okL || !okR {
		return m
	}
	hipW := lh.Sub(rh).Len()
	if hipW < 1e-9 {
		return m
	}

	offset := func(role pose.Role) (float64, bool) {
		p, ok := at(ffc, role)
		if !ok {
			return 0, false
		}
		return signal.Cross(dir, p.Sub(backToe)), true
	}
	toeOff := signal.Cross(dir, frontToe.Sub(backToe))
	heelOff, okHeel := offset(pose.Heel(front))
	ankOff, okAnk := offset(pose.Ankle(front))
	kneeOff, okKnee := offset(pose.Knee(front))

	inward := toeOff > 0
	votes, checks := 0, 0
	for _, c := range []struct {
		off float64
		ok  bool
	}{{heelOff, okHeel}, {ankOff, okAnk}} {
		if !c.ok {
			continue
		}
		checks++
		if (c.off > 0) == inward {
			votes++
		}
	}

	toeOnly := false
	if inward {
		switch {
		case okHeel:
			toeOnly = heelOff <= 0
		case okAnk:
			toeOnly = ankOff <= 0
		}
	}

	collapse, hasCollapse := 0.0, false
	if okKnee && okAnk {
		collapse = math.Abs(kneeOff-ankOff) / hipW
		hasCollapse = collapse >= r.cfg.FootLineCollapse && (kneeOff > 0) == inward && (ankOff > 0) == inward
	}
	confirmed := checks > 0 && votes >= checks

	if inward && (confirmed || hasCollapse) {
		m.mode = ModeInwardCross
	}

	offs := []float64{math.Abs(toeOff)}
	if okHeel {
		offs = append(offs, math.Abs(heelOff))
	}
	if okAnk {
		offs = append(offs, math.Abs(ankOff))
	}
	med, _ := signal.Median(offs)
	norm := med / hipW
	if toeOnly && m.mode == ModeOutwardStep {
		norm *= 0.35
	}
	if hasCollapse && m.mode == ModeInwardCross {
		norm *= 1.15
	}

	levels := [3]float64{0.10, 0.18, 0.25}
	if m.mode == ModeInwardCross {
		levels = [3]float64{0.20, 0.45, 0.70}
	}
	switch {
	case norm <= r.cfg.FootLineLow:
		m.strength = levels[0]
	case norm <= r.cfg.FootLineMed:
		m.strength = levels[1]
	default:
		m.strength = levels[2]
	}

	geom := 1.0
	if !okHeel && !okAnk {
		geom *= 0.55
	}
	if !okKnee && m.mode == ModeInwardCross {
		geom *= 0.75
	}
	if toeOnly && m.mode == ModeOutwardStep {
		geom *= 0.70
	}
	m.confidence = handConf * geom

	m.debug["offset_norm"] = norm
	m.debug["collapse_norm"] = collapse
	m.debug["plant_checks"] = float64(checks)
	m.debug["plant_votes"] = float64(votes)
	if toeOnly {
		m.debug["toe_only"] = 1
	}
	return m
}
