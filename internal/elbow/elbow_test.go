package elbow

import (
	"math"
	"testing"

	"github.com/actionlab/actionlab/internal/events"
	"github.com/actionlab/actionlab/internal/pose"
	"github.com/actionlab/actionlab/internal/pose/posetest"
	"github.com/actionlab/actionlab/internal/signal"
)

// windowSeries places vals at frames 10.. of a 40-frame series.
func windowSeries(vals ...float64) signal.Series {
	s := signal.NewSeries(40)
	for i, v := range vals {
		s.Set(10+i, v)
	}
	return s
}

func TestAssessVerdicts(t *testing.T) {
	ev := NewEvaluator(DefaultConfig())
	cases := []struct {
		name    string
		rest    float64
		verdict Verdict
		ext     float64
	}{
		{"legal", 160, Legal, 10},
		{"borderline", 167, Borderline, 17},
		{"illegal", 178, Illegal, 28},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := windowSeries(150, 150, 150, 150, tc.rest, tc.rest, tc.rest, tc.rest, tc.rest, tc.rest)
			res := ev.Assess(s, 10, 20, 30)
			if res.Verdict != tc.verdict {
				t.Fatalf("verdict = %s, want %s (ext %.2f)", res.Verdict, tc.verdict, res.ExtensionDeg)
			}
			if math.Abs(res.ExtensionDeg-tc.ext) > 1e-9 {
				t.Fatalf("extension = %.4f, want %.4f", res.ExtensionDeg, tc.ext)
			}
			if res.BaselineDeg != 150 {
				t.Fatalf("baseline = %.2f", res.BaselineDeg)
			}
			if res.Window != (Window{StartFrame: 10, EndFrame: 19}) {
				t.Fatalf("window = %+v", res.Window)
			}
			if math.Abs(res.Confidence-0.90) > 1e-9 {
				t.Fatalf("full-density confidence = %.3f", res.Confidence)
			}
		})
	}
}

func TestAssessIsIdempotent(t *testing.T) {
	ev := NewEvaluator(DefaultConfig())
	s := windowSeries(150, 151, 149, 150, 170, 175, 178, 178, 178, 178)
	a := ev.Assess(s, 10, 20, 30)
	b := ev.Assess(s, 10, 20, 30)
	if a != b {
		t.Fatalf("assessments differ: %+v vs %+v", a, b)
	}
}

func TestExtensionNeverNegative(t *testing.T) {
	ev := NewEvaluator(DefaultConfig())
	s := windowSeries(170, 170, 170, 170, 150, 150, 150, 150)
	res := ev.Assess(s, 10, 18, 30)
	if res.ExtensionDeg != 0 || res.Verdict != Legal {
		t.Fatalf("flexing arm: ext %.2f verdict %s", res.ExtensionDeg, res.Verdict)
	}
}

func TestSparseWindowDefaultsLegal(t *testing.T) {
	ev := NewEvaluator(DefaultConfig())
	s := windowSeries(150, math.NaN(), math.NaN(), 175)
	res := ev.Assess(s, 10, 20, 30)
	if res.Verdict != Legal || res.Confidence != 0.30 || res.Reason != "insufficient_signal_density" {
		t.Fatalf("sparse result = %+v", res)
	}
}

func TestMissingEventsDefaultsLegal(t *testing.T) {
	ev := NewEvaluator(DefaultConfig())
	res := ev.Evaluate(posetest.Empty(50), pose.HandRight, 30, events.Set{})
	if res.Verdict != Legal || res.Confidence != 0.25 {
		t.Fatalf("missing events result = %+v", res)
	}
}

func TestShortWindow(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ReleaseTrimFrames = 2
	res := NewEvaluator(cfg).Assess(windowSeries(150, 150), 10, 11, 30)
	if res.Verdict != Legal || res.Reason != "event_window_too_short" {
		t.Fatalf("short window result = %+v", res)
	}
}

func TestConfigurableThresholds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LegalDeg, cfg.BorderlineDeg = 18, 22
	s := windowSeries(150, 150, 150, 150, 167, 167, 167, 167, 167, 167)
	if res := NewEvaluator(cfg).Assess(s, 10, 20, 30); res.Verdict != Legal {
		t.Fatalf("17° with 18/22 cutoffs should be legal, got %s", res.Verdict)
	}
}

func TestClassifyBoundaries(t *testing.T) {
	cases := []struct {
		ext  float64
		want Verdict
	}{
		{0, Legal},
		{14.99, Legal},
		{15, Borderline},
		{20, Borderline},
		{20.01, Illegal},
	}
	for _, tc := range cases {
		if got := Classify(tc.ext, 15, 20); got != tc.want {
			t.Fatalf("Classify(%.2f) = %s, want %s", tc.ext, got, tc.want)
		}
	}
}

func TestSignalClampsSpike(t *testing.T) {
	b := posetest.New(3)
	// Shoulder above elbow, hand placed to give 20°, 90°, 20° interior angles.
	angles := []float64{20, 90, 20}
	for i, deg := range angles {
		b.Set(i, pose.RightShoulder, 0.5, 0.3)
		b.Set(i, pose.RightElbow, 0.5, 0.5)
		th := deg * math.Pi / 180
		hx, hy := 0.5+0.2*math.Sin(th), 0.5-0.2*math.Cos(th)
		for _, r := range []pose.Role{pose.RightWrist, pose.RightIndex, pose.RightPinky, pose.RightThumb} {
			b.Set(i, r, hx, hy)
		}
	}
	s := NewEvaluator(DefaultConfig()).Signal(b.Frames(), pose.HandRight)
	if s.Count() != 3 {
		t.Fatalf("expected 3 valid samples, got %d", s.Count())
	}
	if math.Abs(s.Values[0]-20) > 1e-6 || math.Abs(s.Values[1]-45) > 1e-6 || math.Abs(s.Values[2]-20) > 1e-6 {
		t.Fatalf("clamped series = %v", s.Values)
	}
}

func TestSignalIgnoresLowVisibilityFingers(t *testing.T) {
	b := posetest.New(1)
	b.Set(0, pose.RightShoulder, 0.5, 0.3)
	b.Set(0, pose.RightElbow, 0.5, 0.5)
	b.Set(0, pose.RightWrist, 0.5, 0.7)
	// A stray finger far off axis, below the visibility gate.
	b.Set(0, pose.RightIndex, 0.9, 0.5).SetVis(0, pose.RightIndex, 0.2)
	b.Set(0, pose.RightPinky, 0.5, 0.7)
	b.Set(0, pose.RightThumb, 0.5, 0.7)
	s := NewEvaluator(DefaultConfig()).Signal(b.Frames(), pose.HandRight)
	if v, ok := s.At(0); !ok || math.Abs(v-180) > 1e-4 {
		t.Fatalf("straight arm angle = %.3f ok=%v", v, ok)
	}
}
