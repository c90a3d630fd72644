package action

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/actionlab/actionlab/internal/pose"
	"github.com/actionlab/actionlab/internal/signal"
)

const (
	structureVisibility = 0.5
	hipLeadLimitDeg     = 15.0
	separationLimitDeg  = 35.0
	counterRotationMin  = 30.0
	counterRotationMax  = 90.0
)

// Structure compares hip and shoulder lines against the batsman axis. It is
// diagnostic only and never changes the classification.
type Structure struct {
	BatsmanAxis      [2]float64 `json:"batsman_axis"`
	ShoulderAngleBFC float64    `json:"shoulder_angle_bfc_deg"`
	HipAngleBFC      float64    `json:"hip_angle_bfc_deg"`
	DeltaDeg         float64    `json:"delta_deg"`
	CounterRotation  float64    `json:"scr_deg"`
	StructuralOK     bool       `json:"structural_ok"`
	StructuralScore  float64    `json:"structural_score"`
	DynamicScore     float64    `json:"dynamic_score"`
	OverallScore     float64    `json:"overall_score"`
}

// BatsmanAxis is the median hip-centre displacement over the run-in to
// BFC, normalized. It falls back to net pelvis travel.
func BatsmanAxis(ex *signal.Extractor, bfc int) mgl64.Vec2 {
	var dx, dy []float64
	for i := bfc - 12 + 1; i <= bfc+2; i++ {
		p0, ok0 := ex.Pelvis(i-1, structureVisibility)
		p1, ok1 := ex.Pelvis(i, structureVisibility)
		if ok0 && ok1 {
			d := p1.Sub(p0)
			dx = append(dx, d[0])
			dy = append(dy, d[1])
		}
	}
	mx, okx := signal.Median(dx)
	my, oky := signal.Median(dy)
	if okx && oky {
		if u, ok := signal.Unit(mgl64.Vec2{mx, my}); ok {
			return u
		}
	}
	return ex.ForwardAxis(0, ex.Len()-1, structureVisibility)
}

func signedAngle(v, axis mgl64.Vec2) float64 {
	return mgl64.RadToDeg(math.Atan2(signal.Cross(axis, v), axis.Dot(v)))
}

func lineVec(ex *signal.Extractor, i int, a, b pose.Role) (mgl64.Vec2, bool) {
	pa, ok1 := ex.Flat(i, a, structureVisibility)
	pb, ok2 := ex.Flat(i, b, structureVisibility)
	if !ok1 || !ok2 {
		return mgl64.Vec2{}, false
	}
	return pa.Sub(pb), true
}

func structure(ex *signal.Extractor, bfc, ffc int) *Structure {
	shB, ok1 := lineVec(ex, bfc, pose.LeftShoulder, pose.RightShoulder)
	hipB, ok2 := lineVec(ex, bfc, pose.LeftHip, pose.RightHip)
	shF, ok3 := lineVec(ex, ffc, pose.LeftShoulder, pose.RightShoulder)
	if !ok1 || !ok2 || !ok3 {
		return nil
	}
	axis := BatsmanAxis(ex, bfc)
	s := &Structure{BatsmanAxis: [2]float64{axis[0], axis[1]}}
	s.ShoulderAngleBFC = signedAngle(shB, axis)
	s.HipAngleBFC = signedAngle(hipB, axis)
	s.DeltaDeg = s.HipAngleBFC - s.ShoulderAngleBFC
	s.StructuralOK = !(s.DeltaDeg > hipLeadLimitDeg || math.Abs(s.DeltaDeg) > separationLimitDeg)
	s.CounterRotation = math.Abs(signedAngle(shF, axis) - s.ShoulderAngleBFC)

	s.DynamicScore = 1
	if s.CounterRotation > counterRotationMin {
		s.DynamicScore = math.Max(0, 1-(s.CounterRotation-counterRotationMin)/(counterRotationMax-counterRotationMin))
	}
	if s.StructuralOK {
		s.StructuralScore = 1
	}
	s.OverallScore = 0.7*s.StructuralScore + 0.3*s.DynamicScore
	return s
}
