// Package posetest builds synthetic landmark clips for tests.
package posetest

import (
	"math"

	"github.com/actionlab/actionlab/internal/pose"
)

// Builder edits a fixed-length run of complete frames.
type Builder struct {
	frames []pose.Frame
}

// New returns n fully visible frames with every landmark at (0.5, 0.5).
func New(n int) *Builder {
	b := &Builder{frames: make([]pose.Frame, n)}
	for i := range b.frames {
		lms := make([]pose.Landmark, pose.NumRoles)
		for j := range lms {
			lms[j] = pose.Landmark{X: 0.5, Y: 0.5, Visibility: 1}
		}
		b.frames[i] = pose.Frame{Index: i, Landmarks: lms}
	}
	return b
}

// Set places role at (x, y) in frame i.
func (b *Builder) Set(i int, r pose.Role, x, y float64) *Builder {
	if lms := b.frames[i].Landmarks; lms != nil {
		lms[r].X, lms[r].Y = x, y
	}
	return b
}

// SetVis overrides the visibility of role in frame i.
func (b *Builder) SetVis(i int, r pose.Role, vis float64) *Builder {
	if lms := b.frames[i].Landmarks; lms != nil {
		lms[r].Visibility = vis
	}
	return b
}

// Blank turns frame i into an occluded (nil) frame.
func (b *Builder) Blank(i int) *Builder {
	b.frames[i].Landmarks = nil
	return b
}

// Frames returns the built frames.
func (b *Builder) Frames() []pose.Frame { return b.frames }

// Empty returns n fully occluded frames.
func Empty(n int) []pose.Frame {
	out := make([]pose.Frame, n)
	for i := range out {
		out[i] = pose.Frame{Index: i}
	}
	return out
}

// Key frames of the synthetic delivery.
const (
	DeliveryFrames   = 150
	DeliveryFPS      = 30
	WristPeakFrame   = 100
	LastAboveFrame   = 102
	UAHFrame         = 95
	FrontPlantFrame  = 88
	BackPlantFrame   = 82
	BackLiftFrame    = 96
	groundY          = 0.90
	airborneLift     = 0.10
	shoulderY        = 0.35
	hipY             = 0.55
	upperArmLength   = 0.12
	footStepPerFrame = 0.01
)

// PelvisX is the hip-centre x position at frame i: steady run-up that
// slows after front-foot plant.
func PelvisX(i int) float64 {
	if i <= FrontPlantFrame+1 {
		return 0.20 + 0.003*float64(i)
	}
	return 0.20 + 0.003*float64(FrontPlantFrame+1) + 0.001*float64(i-FrontPlantFrame-1)
}

// WristX integrates a forward wrist speed that peaks at WristPeakFrame.
func WristX(i int) float64 {
	x := 0.10
	for k := 1; k <= i; k++ {
		d := float64(k - WristPeakFrame)
		x += 0.002 + 0.03*math.Exp(-d*d/8)
	}
	return x
}

// UpperArmDeg is the bowling upper-arm angle to the forward axis; it
// sweeps through horizontal (90°) at UAHFrame.
func UpperArmDeg(i int) float64 {
	return math.Max(10, math.Min(170, 90-4*float64(i-UAHFrame)))
}

func setFoot(b *Builder, i int, s pose.Side, x, lift float64) {
	y := groundY - lift
	b.Set(i, pose.Heel(s), x-0.02, y)
	b.Set(i, pose.FootIndex(s), x+0.03, y+0.01)
	b.Set(i, pose.Ankle(s), x-0.01, y-0.04)
}

// Delivery is a clean right-handed delivery at 30 fps: forward wrist speed
// peaks at frame 100, the wrist drops below the shoulder after frame 102,
// the back foot plants at 82 and the front foot at 88.
func Delivery() pose.Clip {
	b := New(DeliveryFrames)
	for i := 0; i < DeliveryFrames; i++ {
		px := PelvisX(i)
		for r := pose.Nose; r <= pose.MouthRight; r++ {
			b.Set(i, r, px, 0.22)
		}
		b.Set(i, pose.LeftHip, px-0.03, hipY)
		b.Set(i, pose.RightHip, px+0.03, hipY)
		b.Set(i, pose.LeftShoulder, px-0.04, shoulderY)
		b.Set(i, pose.RightShoulder, px+0.04, shoulderY)

		// Non-bowling arm held still relative to the body.
		b.Set(i, pose.LeftElbow, px-0.10, 0.40)
		for _, r := range []pose.Role{pose.LeftWrist, pose.LeftPinky, pose.LeftIndex, pose.LeftThumb} {
			b.Set(i, r, px-0.12, 0.48)
		}

		th := UpperArmDeg(i) * math.Pi / 180
		sx := px + 0.04
		b.Set(i, pose.RightElbow, sx+upperArmLength*math.Cos(th), shoulderY-upperArmLength*math.Sin(th))
		wy := 0.25
		if i > LastAboveFrame {
			wy = 0.50
		}
		for _, r := range []pose.Role{pose.RightWrist, pose.RightPinky, pose.RightIndex, pose.RightThumb} {
			b.Set(i, r, WristX(i), wy)
		}

		// Front (left) foot swings in and plants.
		fx, flift := 0.55, 0.0
		if i < FrontPlantFrame {
			fx, flift = 0.55-footStepPerFrame*float64(FrontPlantFrame-i), airborneLift
		}
		setFoot(b, i, pose.Left, fx, flift)

		// Back (right) foot is grounded between its plant and lift frames.
		bx, blift := 0.42, 0.0
		switch {
		case i < BackPlantFrame:
			bx, blift = 0.42-footStepPerFrame*float64(BackPlantFrame-i), airborneLift
		case i >= BackLiftFrame:
			bx, blift = 0.42+footStepPerFrame*float64(i-BackLiftFrame+1), airborneLift
		}
		setFoot(b, i, pose.Right, bx, blift)

		b.Set(i, pose.LeftKnee, (px-0.03+fx-0.01)/2+0.01, (hipY+groundY-flift-0.04)/2)
		b.Set(i, pose.RightKnee, (px+0.03+bx-0.01)/2+0.01, (hipY+groundY-blift-0.04)/2)
	}
	return pose.Clip{FPS: DeliveryFPS, Hand: "R", Frames: b.Frames()}
}
