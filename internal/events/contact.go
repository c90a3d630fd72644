package events

import (
	"math"

	"github.com/actionlab/actionlab/internal/pose"
	"github.com/actionlab/actionlab/internal/signal"
)

// footScorer rates how grounded a foot looks at a frame, 0..3: near the
// ground line, low vertical velocity, low positional jitter.
type footScorer struct {
	c      *clip
	side   pose.Side
	cfg    Config
	ground float64
	k      int
	ok     bool
}

func (d *Detector) newFootScorer(c *clip, side pose.Side, lo, hi int) *footScorer {
	fs := &footScorer{c: c, side: side, cfg: d.cfg, k: signal.Frames(c.fps, d.cfg.JitterSec, 3)}
	var ys []float64
	for i := lo; i <= hi; i++ {
		if p, _, ok := c.ex.FootCentre(i, side, d.cfg.FootVisibility); ok {
			ys = append(ys, p[1])
		}
	}
	if g, ok := signal.Percentile(ys, d.cfg.GroundPercentile); ok {
		fs.ground, fs.ok = g, true
	}
	return fs
}

func (fs *footScorer) score(i int) int {
	if !fs.ok {
		return 0
	}
	vis := fs.cfg.FootVisibility
	p, _, ok := fs.c.ex.FootCentre(i, fs.side, vis)
	if !ok {
		return 0
	}
	s := 0
	if p[1] >= fs.ground-fs.cfg.GroundTolerance {
		s++
	}
	if prev, _, ok := fs.c.ex.FootCentre(i-1, fs.side, vis); ok {
		if math.Abs(p[1]-prev[1])*fs.c.fps <= fs.cfg.GroundVelocityTol {
			s++
		}
	}
	var moved float64
	steps := 0
	last := p
	for j := i + 1; j <= i+fs.k && j < fs.c.n; j++ {
		q, _, ok := fs.c.ex.FootCentre(j, fs.side, vis)
		if !ok {
			continue
		}
		moved += q.Sub(last).Len()
		last = q
		steps++
	}
	if steps > 0 && moved/float64(steps) <= fs.cfg.JitterTolerance {
		s++
	}
	return s
}

// lastRunStart finds the grounded run (score ≥ thr) closest to hi and
// returns its first frame.
func (fs *footScorer) lastRunStart(lo, hi, thr int) (int, bool) {
	for j := hi; j >= lo; j-- {
		if fs.score(j) < thr {
			continue
		}
		start := j
		for start-1 >= lo && fs.score(start-1) >= thr {
			start--
		}
		return start, true
	}
	return 0, false
}

func (c *clip) footDensity(side pose.Side, lo, hi int, vis float64) float64 {
	if hi < lo {
		return 0
	}
	n := 0
	for i := lo; i <= hi; i++ {
		if _, _, ok := c.ex.FootCentre(i, side, vis); ok {
			n++
		}
	}
	return float64(n) / float64(hi-lo+1)
}

// rotationOnset is the earliest frame in [lo, hi] where the pelvis turns
// fast relative to its travel.
func (d *Detector) rotationOnset(c *clip, lo, hi int) (int, bool) {
	vis := d.cfg.ReleaseVisibility
	theta := c.ex.LineAngleSeries(pose.LeftHip, pose.RightHip, vis)
	ratio := signal.NewSeries(c.n)
	for i := 1; i < c.n; i++ {
		t0, ok0 := theta.At(i - 1)
		t1, ok1 := theta.At(i)
		p0, okp0 := c.ex.Pelvis(i-1, vis)
		p1, okp1 := c.ex.Pelvis(i, vis)
		if !ok0 || !ok1 || !okp0 || !okp1 {
			continue
		}
		ang := math.Abs(t1-t0) * c.fps
		lin := p1.Sub(p0).Len() * c.fps
		ratio.Set(i, ang/(lin+1e-3))
	}
	ratio = signal.Smooth(ratio, signal.SigmaFrames(c.fps, d.cfg.SmoothingSec, 1))
	vals, frames := ratio.Window(lo, hi)
	if len(vals) < 3 {
		return 0, false
	}
	med, _ := signal.Median(vals)
	maxV, _, _ := signal.Max(vals)
	if maxV-med < 1e-9 {
		return 0, false
	}
	thr := med + 0.5*(maxV-med)
	for k, v := range vals {
		if v >= thr {
			return frames[k], true
		}
	}
	return 0, false
}

func (d *Detector) detectFFC(c *clip, release int) Event {
	cfg := d.cfg
	front := c.hand.FrontFoot()
	minGap := signal.Frames(c.fps, cfg.FFCMinGapSec, 2)

	hi := release - minGap
	if hi < 1 {
		hi = 1
	}
	lo := release - signal.Frames(c.fps, cfg.FFCLookbackSec, minGap+1)
	if lo < 1 {
		lo = 1
	}
	if lo > hi {
		lo = hi
	}

	regionLo := lo
	if onset, ok := d.rotationOnset(c, lo, hi); ok {
		regionLo = clampInt(onset-signal.Frames(c.fps, 0.1, 1), lo, hi)
	}

	density := c.footDensity(front, lo, hi, cfg.FootVisibility)
	scaled := func(base float64) float64 { return math.Max(0.2, base*density) }

	wideLo := release - signal.Frames(c.fps, cfg.FFCWidenedSec, minGap+1)
	if wideLo < 1 {
		wideLo = 1
	}
	if wideLo > lo {
		wideLo = lo
	}

	ladder := []strategy{
		{"grounded_strict", func() (int, float64, bool) {
			f, ok := d.newFootScorer(c, front, lo, hi).lastRunStart(regionLo, hi, 3)
			return f, scaled(0.85), ok
		}},
		{"grounded_relaxed", func() (int, float64, bool) {
			f, ok := d.newFootScorer(c, front, lo, hi).lastRunStart(lo, hi, 2)
			return f, scaled(0.65), ok
		}},
		{"grounded_widened", func() (int, float64, bool) {
			f, ok := d.newFootScorer(c, front, wideLo, hi).lastRunStart(wideLo, hi, 2)
			return f, scaled(0.50), ok
		}},
		{"window_fraction", func() (int, float64, bool) {
			f := lo + int(math.Round(0.6*float64(hi-lo)))
			if density == 0 {
				return f, 0.15, true
			}
			return f, 0.30, true
		}},
	}
	ev, _ := firstSuccess(FFC, ladder)
	return ev
}

func (d *Detector) detectBFC(c *clip, ffc int) Event {
	cfg := d.cfg
	back := c.hand.BackFoot()
	hi := ffc - 1
	if hi < 0 {
		hi = 0
	}
	lo := ffc - signal.Frames(c.fps, cfg.BFCLookbackSec, 2)
	if lo < 0 {
		lo = 0
	}

	fs := d.newFootScorer(c, back, lo, hi)
	best := 0
	for i := lo; i <= hi; i++ {
		if s := fs.score(i); s > best {
			best = s
		}
	}

	ladder := []strategy{
		{"back_foot_grounded", func() (int, float64, bool) {
			if best == 0 {
				return 0, 0, false
			}
			f, ok := fs.lastRunStart(lo, hi, best)
			return f, 0.40 + 0.15*float64(best), ok
		}},
		{"ffc_offset", func() (int, float64, bool) {
			return clampInt(ffc-signal.Frames(c.fps, cfg.BFCOffsetSec, 1), 0, hi), 0.30, true
		}},
	}
	ev, _ := firstSuccess(BFC, ladder)
	return ev
}
