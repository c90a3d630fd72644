package risk

import (
	"math"

	"github.com/actionlab/actionlab/internal/events"
	"github.com/actionlab/actionlab/internal/pose"
	"github.com/actionlab/actionlab/internal/signal"
)

// kneeBrace is the front-knee flexion lost after contact. Without a usable
// knee it falls back to pelvis drop at reduced confidence.
func (r *run) kneeBrace() measurement {
	ffc, ok := r.in.Events.Frame(events.FFC)
	if !ok {
		return unanchored()
	}
	vis := r.cfg.Visibility
	m := measurement{anchored: true, debug: map[string]float64{"ffc": float64(ffc)}}
	hi := min(r.ex.Len()-1, ffc+r.frames(r.cfg.KneePostSec, 3))

	front := r.in.Hand.FrontFoot()
	hip, knee, ankle := pose.Hip(front), pose.Knee(front), pose.Ankle(front)
	angles := r.ex.JointAngleSeries(hip, knee, ankle, vis)
	if start, ok := angles.At(ffc); ok {
		vals, _ := angles.Window(ffc, hi)
		if len(vals) >= 3 {
			low, _, _ := signal.Min(vals)
			loss := math.Max(0, start-low)
			m.strength = loss / r.cfg.KneeCollapseRef
			m.confidence = r.meanVis(ffc, hi, hip, knee, ankle) * support(len(vals), 5)
			m.debug["knee_at_ffc_deg"] = start
			m.debug["knee_min_deg"] = low
			m.debug["flexion_loss_deg"] = loss
			m.debug["samples"] = float64(len(vals))
			return m
		}
	}

	ys := r.ex.PelvisSeries(1, vis)
	y0, ok := ys.At(ffc)
	vals, _ := ys.Window(ffc, hi)
	if !ok || len(vals) < 3 {
		return m
	}
	top, _, _ := signal.Max(vals)
	drop := math.Max(0, top-y0)
	m.strength = drop / r.cfg.KneePelvisDrop
	m.confidence = 0.6 * r.meanVis(ffc, hi, pose.LeftHip, pose.RightHip) * support(len(vals), 5)
	m.debug["pelvis_drop"] = drop
	m.debug["fallback"] = 1
	m.debug["samples"] = float64(len(vals))
	return m
}
