package events

import (
	"strings"
	"testing"

	"github.com/actionlab/actionlab/internal/pose"
	"github.com/actionlab/actionlab/internal/pose/posetest"
)

func detectDelivery(t *testing.T) Set {
	t.Helper()
	clip := posetest.Delivery()
	hand, _ := pose.ParseHand(clip.Hand)
	return NewDetector(DefaultConfig()).Detect(clip.Frames, hand, clip.FPS)
}

func TestDeliveryRelease(t *testing.T) {
	set := detectDelivery(t)
	if set.Release == nil {
		t.Fatalf("release not detected")
	}
	if f := set.Release.Frame; f < posetest.WristPeakFrame || f > posetest.WristPeakFrame+4 {
		t.Fatalf("release frame %d outside [100,104]", f)
	}
	if set.Release.Frame != posetest.LastAboveFrame {
		t.Fatalf("expected wrist/shoulder crossing at %d, got %d (%s)", posetest.LastAboveFrame, set.Release.Frame, set.Release.Method)
	}
	if set.Release.Method != "wrist_shoulder_crossing" || set.Release.Confidence != 0.80 {
		t.Fatalf("unexpected release tier %s conf %.2f", set.Release.Method, set.Release.Confidence)
	}
}

func TestDeliveryUAH(t *testing.T) {
	set := detectDelivery(t)
	if set.UAH == nil || set.Release == nil {
		t.Fatalf("missing anchors: %+v", set)
	}
	if set.UAH.Frame >= set.Release.Frame {
		t.Fatalf("UAH %d not before release %d", set.UAH.Frame, set.Release.Frame)
	}
	if set.Release.Frame-set.UAH.Frame > 18 {
		t.Fatalf("UAH %d outside lookback window", set.UAH.Frame)
	}
	if set.UAH.Frame != posetest.UAHFrame || set.UAH.Method != "arm_horizontal_band" {
		t.Fatalf("UAH = %d (%s), want %d", set.UAH.Frame, set.UAH.Method, posetest.UAHFrame)
	}
}

func TestDeliveryFootContacts(t *testing.T) {
	set := detectDelivery(t)
	if set.FFC == nil || set.BFC == nil {
		t.Fatalf("foot contacts missing: %+v", set)
	}
	if !(set.BFC.Frame < set.FFC.Frame && set.FFC.Frame < set.Release.Frame) {
		t.Fatalf("ordering violated: bfc=%d ffc=%d release=%d", set.BFC.Frame, set.FFC.Frame, set.Release.Frame)
	}
	if set.FFC.Frame != posetest.FrontPlantFrame+1 || set.FFC.Method != "grounded_strict" {
		t.Fatalf("FFC = %d (%s)", set.FFC.Frame, set.FFC.Method)
	}
	if set.BFC.Frame != posetest.BackPlantFrame+1 || set.BFC.Method != "back_foot_grounded" {
		t.Fatalf("BFC = %d (%s)", set.BFC.Frame, set.BFC.Method)
	}
	if set.Count() != 4 {
		t.Fatalf("expected 4 anchors, got %d", set.Count())
	}
}

func TestAllOccludedYieldsNoAnchors(t *testing.T) {
	set := NewDetector(DefaultConfig()).Detect(posetest.Empty(150), pose.HandRight, 30)
	if set.Count() != 0 {
		t.Fatalf("expected no anchors, got %+v", set)
	}
}

func TestTooFewFrames(t *testing.T) {
	clip := posetest.Delivery()
	set := NewDetector(DefaultConfig()).Detect(clip.Frames[:9], pose.HandRight, 30)
	if set.Count() != 0 {
		t.Fatalf("expected no anchors for 9 frames, got %+v", set)
	}
}

func TestOccludedFeetStillOrdered(t *testing.T) {
	clip := posetest.Delivery()
	for i := range clip.Frames {
		for _, s := range []pose.Side{pose.Left, pose.Right} {
			for _, r := range []pose.Role{pose.Heel(s), pose.FootIndex(s), pose.Ankle(s)} {
				clip.Frames[i].Landmarks[r].Visibility = 0
			}
		}
	}
	set := NewDetector(DefaultConfig()).Detect(clip.Frames, pose.HandRight, clip.FPS)
	if set.FFC == nil || set.BFC == nil {
		t.Fatalf("fallback ladder must still return foot contacts: %+v", set)
	}
	if set.FFC.Method != "window_fraction" || set.FFC.Confidence != 0.15 {
		t.Fatalf("FFC fallback = %s %.2f", set.FFC.Method, set.FFC.Confidence)
	}
	if set.BFC.Method != "ffc_offset" {
		t.Fatalf("BFC fallback = %s", set.BFC.Method)
	}
	if !(set.BFC.Frame < set.FFC.Frame && set.FFC.Frame < set.Release.Frame) {
		t.Fatalf("ordering violated: bfc=%d ffc=%d release=%d", set.BFC.Frame, set.FFC.Frame, set.Release.Frame)
	}
}

func TestVelocityDropWhenArmHidden(t *testing.T) {
	clip := posetest.Delivery()
	// Hide the bowling shoulder so the crossing tier has nothing to compare.
	for i := range clip.Frames {
		clip.Frames[i].Landmarks[pose.RightShoulder].Visibility = 0
	}
	set := NewDetector(DefaultConfig()).Detect(clip.Frames, pose.HandRight, clip.FPS)
	if set.Release == nil {
		t.Fatalf("release not detected")
	}
	if set.Release.Method != "velocity_drop" {
		t.Fatalf("expected velocity_drop tier, got %s", set.Release.Method)
	}
	if f := set.Release.Frame; f <= posetest.WristPeakFrame || f > posetest.WristPeakFrame+8 {
		t.Fatalf("release %d not shortly after peak", f)
	}
}

func TestClampAtMost(t *testing.T) {
	e := Event{Kind: FFC, Frame: 50, Confidence: 0.8, Method: "grounded_strict"}
	clampAtMost(&e, 40, 1, 0.35)
	if e.Frame != 40 || e.Confidence != 0.35 || !strings.HasSuffix(e.Method, "+clamped") {
		t.Fatalf("unexpected clamp result %+v", e)
	}
	ok := Event{Kind: FFC, Frame: 10, Confidence: 0.8, Method: "m"}
	clampAtMost(&ok, 40, 1, 0.35)
	if ok.Frame != 10 || ok.Confidence != 0.8 || ok.Method != "m" {
		t.Fatalf("in-range event must not change: %+v", ok)
	}
}
