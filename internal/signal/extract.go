package signal

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/actionlab/actionlab/internal/pose"
)

// Extractor reads landmark geometry out of a frame slice.
type Extractor struct {
	frames []pose.Frame
}

// NewExtractor wraps frames without copying them.
func NewExtractor(frames []pose.Frame) *Extractor {
	return &Extractor{frames: frames}
}

// Len is the frame count.
func (e *Extractor) Len() int { return len(e.frames) }

// Frame returns frame i, or a missing frame when out of range.
func (e *Extractor) Frame(i int) pose.Frame {
	if i < 0 || i >= len(e.frames) {
		return pose.Frame{Index: i}
	}
	return e.frames[i]
}

// Point returns the 3D position of role at frame i when visible.
func (e *Extractor) Point(i int, r pose.Role, minVis float64) (mgl64.Vec3, bool) {
	lm, ok := e.Frame(i).Visible(r, minVis)
	if !ok {
		return mgl64.Vec3{}, false
	}
	return mgl64.Vec3{lm.X, lm.Y, lm.Z}, true
}

// Flat returns the image-plane position of role (z dropped).
func (e *Extractor) Flat(i int, r pose.Role, minVis float64) (mgl64.Vec2, bool) {
	p, ok := e.Point(i, r, minVis)
	if !ok {
		return mgl64.Vec2{}, false
	}
	return mgl64.Vec2{p[0], p[1]}, true
}

// Visibility of role at frame i, zero when absent.
func (e *Extractor) Visibility(i int, r pose.Role) float64 {
	lm, ok := e.Frame(i).At(r)
	if !ok {
		return 0
	}
	return lm.Visibility
}

// Mid returns the image-plane midpoint of a and b when both are visible.
func (e *Extractor) Mid(i int, a, b pose.Role, minVis float64) (mgl64.Vec2, bool) {
	pa, ok := e.Flat(i, a, minVis)
	if !ok {
		return mgl64.Vec2{}, false
	}
	pb, ok := e.Flat(i, b, minVis)
	if !ok {
		return mgl64.Vec2{}, false
	}
	return pa.Add(pb).Mul(0.5), true
}

// Pelvis is the hip midpoint.
func (e *Extractor) Pelvis(i int, minVis float64) (mgl64.Vec2, bool) {
	return e.Mid(i, pose.LeftHip, pose.RightHip, minVis)
}

// ShoulderMid is the shoulder midpoint.
func (e *Extractor) ShoulderMid(i int, minVis float64) (mgl64.Vec2, bool) {
	return e.Mid(i, pose.LeftShoulder, pose.RightShoulder, minVis)
}

// FootCentre averages whichever of heel, toe and ankle are visible.
func (e *Extractor) FootCentre(i int, s pose.Side, minVis float64) (mgl64.Vec2, float64, bool) {
	var sum mgl64.Vec2
	var vis float64
	n := 0
	for _, r := range []pose.Role{pose.Heel(s), pose.FootIndex(s), pose.Ankle(s)} {
		if p, ok := e.Flat(i, r, minVis); ok {
			sum = sum.Add(p)
			vis += e.Visibility(i, r)
			n++
		}
	}
	if n == 0 {
		return mgl64.Vec2{}, 0, false
	}
	return sum.Mul(1 / float64(n)), vis / float64(n), true
}

// InteriorAngle is the angle at b formed by a-b-c in degrees. Degenerate
// segments yield false.
func InteriorAngle(a, b, c mgl64.Vec3) (float64, bool) {
	ba := a.Sub(b)
	bc := c.Sub(b)
	m1, m2 := ba.Len(), bc.Len()
	if m1 < 1e-6 || m2 < 1e-6 {
		return 0, false
	}
	cos := Clamp(ba.Dot(bc)/(m1*m2), -1, 1)
	return mgl64.RadToDeg(math.Acos(cos)), true
}

// FoldedAngle is the image-plane orientation of a→b folded into [0°, 90°]:
// 0 is horizontal, 90 vertical.
func FoldedAngle(a, b mgl64.Vec2) float64 {
	d := b.Sub(a)
	ang := math.Abs(mgl64.RadToDeg(math.Atan2(d[1], d[0])))
	if ang > 90 {
		return 180 - ang
	}
	return ang
}

// AngleBetween is the unsigned angle between two image-plane vectors in
// degrees.
func AngleBetween(u, v mgl64.Vec2) (float64, bool) {
	m1, m2 := u.Len(), v.Len()
	if m1 < 1e-9 || m2 < 1e-9 {
		return 0, false
	}
	return mgl64.RadToDeg(math.Acos(Clamp(u.Dot(v)/(m1*m2), -1, 1))), true
}

// Unit normalizes v, false for a zero vector.
func Unit(v mgl64.Vec2) (mgl64.Vec2, bool) {
	l := v.Len()
	if l < 1e-9 {
		return mgl64.Vec2{}, false
	}
	return v.Mul(1 / l), true
}

// Cross is the z component of the 2D cross product.
func Cross(u, v mgl64.Vec2) float64 {
	return u[0]*v[1] - u[1]*v[0]
}

// JointAngleSeries is the interior angle at b for every frame where a, b and
// c are visible.
func (e *Extractor) JointAngleSeries(a, b, c pose.Role, minVis float64) Series {
	out := NewSeries(e.Len())
	for i := range e.frames {
		pa, ok1 := e.Point(i, a, minVis)
		pb, ok2 := e.Point(i, b, minVis)
		pc, ok3 := e.Point(i, c, minVis)
		if !ok1 || !ok2 || !ok3 {
			continue
		}
		if ang, ok := InteriorAngle(pa, pb, pc); ok {
			out.Set(i, ang)
		}
	}
	return out
}

// LineAngleSeries is the unwrapped image-plane orientation (radians) of the
// a→b line.
func (e *Extractor) LineAngleSeries(a, b pose.Role, minVis float64) Series {
	out := NewSeries(e.Len())
	for i := range e.frames {
		pa, ok1 := e.Flat(i, a, minVis)
		pb, ok2 := e.Flat(i, b, minVis)
		if !ok1 || !ok2 {
			continue
		}
		d := pb.Sub(pa)
		if d.Len() < 1e-9 {
			continue
		}
		out.Set(i, math.Atan2(d[1], d[0]))
	}
	return Unwrap(out)
}

// CoordSeries is one image coordinate (0 = x, 1 = y) of role.
func (e *Extractor) CoordSeries(r pose.Role, axis int, minVis float64) Series {
	out := NewSeries(e.Len())
	for i := range e.frames {
		if p, ok := e.Flat(i, r, minVis); ok {
			out.Set(i, p[axis])
		}
	}
	return out
}

// PelvisSeries is one image coordinate of the hip midpoint.
func (e *Extractor) PelvisSeries(axis int, minVis float64) Series {
	out := NewSeries(e.Len())
	for i := range e.frames {
		if p, ok := e.Pelvis(i, minVis); ok {
			out.Set(i, p[axis])
		}
	}
	return out
}

// ForwardAxis is the unit direction of net pelvis travel over [lo, hi],
// summed over consecutive visible frames. It defaults to +x.
func (e *Extractor) ForwardAxis(lo, hi int, minVis float64) mgl64.Vec2 {
	if lo < 0 {
		lo = 0
	}
	if hi > e.Len()-1 {
		hi = e.Len() - 1
	}
	var sum mgl64.Vec2
	prev, havePrev := mgl64.Vec2{}, false
	for i := lo; i <= hi; i++ {
		p, ok := e.Pelvis(i, minVis)
		if !ok {
			havePrev = false
			continue
		}
		if havePrev {
			sum = sum.Add(p.Sub(prev))
		}
		prev, havePrev = p, true
	}
	if u, ok := Unit(sum); ok {
		return u
	}
	return mgl64.Vec2{1, 0}
}

// ProjectedSeries projects the image-plane position of point(i) onto axis.
func (e *Extractor) ProjectedSeries(point func(i int) (mgl64.Vec2, bool), axis mgl64.Vec2) Series {
	out := NewSeries(e.Len())
	for i := range e.frames {
		if p, ok := point(i); ok {
			out.Set(i, p.Dot(axis))
		}
	}
	return out
}
